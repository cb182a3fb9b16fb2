package game

import (
	"github.com/3jesters/opentcg-server-go/internal/game/state"
)

// LegalActions computes the action types the given seat may submit in
// the match's current (state, phase, turn-owner) tuple. The same table
// gates incoming actions and feeds the per-player view.
func LegalActions(m *Match, seat state.PlayerIdentifier) []state.PlayerActionType {
	if m.State.Terminal() {
		return nil
	}

	var out []state.PlayerActionType
	add := func(actions ...state.PlayerActionType) {
		out = append(out, actions...)
	}

	switch m.State {
	case MatchCreated, MatchWaitingForPlayers, MatchDeckValidation, MatchApproval,
		MatchDrawingCards, MatchSetPrizeCards:
		// Pre-board states are driven by setup RPCs, not turn actions.
		return nil

	case MatchSelectActivePokemon:
		add(state.ActionConcede)
		if !m.setupFor(seat).ActiveSelected {
			add(state.ActionSetActivePokemon)
		}

	case MatchSelectBenchPokemon:
		add(state.ActionConcede)
		if !m.setupFor(seat).BenchConfirmed {
			add(state.ActionPlayPokemon, state.ActionConfirmSetup)
		}

	case MatchFirstPlayerSelection:
		add(state.ActionConcede, state.ActionGenerateCoinFlip)

	case MatchPlayerTurn:
		add(state.ActionConcede)
		if n := pendingPrizeSelections(m.Game, seat); n > 0 {
			add(state.ActionSelectPrize)
		}
		if needsActiveReplacement(m.Game, seat) {
			add(state.ActionSetActivePokemon)
		}
		if seat != m.CurrentPlayer {
			break
		}
		switch m.Game.Phase {
		case state.PhaseMain:
			add(state.ActionAttack, state.ActionEvolvePokemon, state.ActionPlayPokemon,
				state.ActionRetreat, state.ActionUseAbility, state.ActionUseTrainer,
				state.ActionEndTurn)
			if !m.Game.Player(seat).HasAttachedEnergyThisTurn {
				add(state.ActionAttachEnergy)
			}
		case state.PhaseAttack:
			if m.Game.CoinFlip != nil {
				if m.Game.CoinFlip.Status == state.CoinFlipReady {
					add(state.ActionGenerateCoinFlip)
				} else {
					add(state.ActionAttack)
				}
			}
		case state.PhaseEnd:
			if !hasPendingSelections(m) {
				add(state.ActionEndTurn)
			}
		}

	case MatchBetweenTurns:
		add(state.ActionConcede)
		if n := pendingPrizeSelections(m.Game, seat); n > 0 {
			add(state.ActionSelectPrize)
		}
		if needsActiveReplacement(m.Game, seat) {
			add(state.ActionSetActivePokemon)
		}
	}

	return out
}

// isActionLegal reports whether the action type appears in the seat's
// legal set.
func isActionLegal(m *Match, seat state.PlayerIdentifier, action state.PlayerActionType) bool {
	for _, legal := range LegalActions(m, seat) {
		if legal == action {
			return true
		}
	}
	return false
}

// pendingPrizeSelections counts knockouts credited to the seat that
// have not yet been answered with a SELECT_PRIZE. Knockout entries are
// attributed to the beneficiary (the prize taker) in the log.
func pendingPrizeSelections(gs state.GameState, seat state.PlayerIdentifier) int {
	knockouts, prizes := 0, 0
	for _, entry := range gs.ActionHistory {
		switch {
		case entry.Bool("isKnockedOut") && entry.Player == seat:
			knockouts++
		case entry.ActionType == state.ActionSelectPrize && entry.Player == seat:
			prizes++
		}
	}
	if knockouts <= prizes {
		return 0
	}
	return knockouts - prizes
}

// needsActiveReplacement reports whether the seat lost its active
// Pokémon and can promote from the bench.
func needsActiveReplacement(gs state.GameState, seat state.PlayerIdentifier) bool {
	player := gs.Player(seat)
	return player.Active == nil && len(player.Bench) > 0
}

// hasPendingSelections reports whether either seat still owes a prize
// selection or an active replacement.
func hasPendingSelections(m *Match) bool {
	for _, seat := range []state.PlayerIdentifier{state.PlayerOne, state.PlayerTwo} {
		if pendingPrizeSelections(m.Game, seat) > 0 || needsActiveReplacement(m.Game, seat) {
			return true
		}
	}
	return false
}
