package game

import (
	"context"

	"github.com/3jesters/opentcg-server-go/internal/game/state"
)

// EndTurnHandler closes the current player's turn and moves the match
// into between-turns processing. The orchestrator runs status ticks,
// knockout handling and the turn handover after the END_TURN entry is
// in the log, so the log's turn boundary always precedes the synthetic
// knockout entries it produces.
type EndTurnHandler struct{}

func (EndTurnHandler) Handle(_ context.Context, m *Match, seat state.PlayerIdentifier, _ ActionData) (state.GameState, map[string]any, error) {
	if err := requireTurn(m, seat); err != nil {
		return m.Game, nil, err
	}
	if err := requirePhase(m, state.PhaseMain, state.PhaseEnd); err != nil {
		return m.Game, nil, err
	}
	if hasPendingSelections(m) {
		return m.Game, nil, illegalTransitionf("cannot end turn with pending selections")
	}
	if err := m.BeginBetweenTurns(); err != nil {
		return m.Game, nil, err
	}
	gs := m.Game.WithPhase(state.PhaseBetweenTurns).WithCoinFlip(nil)
	gs = gs.WithPlayer(seat, gs.Player(seat).WithAttachedEnergyFlag(false))
	m.Game = gs
	return gs, summaryData("turnNumber", gs.TurnNumber), nil
}

// SelectPrizeHandler takes one face-down prize card into hand after a
// knockout credited to the selecting player.
type SelectPrizeHandler struct{}

func (SelectPrizeHandler) Handle(_ context.Context, m *Match, seat state.PlayerIdentifier, data ActionData) (state.GameState, map[string]any, error) {
	if err := m.requireState(MatchPlayerTurn, MatchBetweenTurns); err != nil {
		return m.Game, nil, err
	}
	if pendingPrizeSelections(m.Game, seat) == 0 {
		return m.Game, nil, illegalTransitionf("%s has no prize selection pending", m.PlayerID(seat))
	}
	player, cardID, err := m.Game.Player(seat).WithPrizeTaken(data.PrizeIndex)
	if err != nil {
		return m.Game, nil, validationf("cannot take prize %d: %v", data.PrizeIndex, err)
	}
	player = player.WithCardsAddedToHand(cardID)
	gs := m.Game.WithPlayer(seat, player)
	return gs, summaryData(
		"prizeIndex", data.PrizeIndex,
		"cardId", cardID,
		"prizesRemaining", len(player.Prizes),
	), nil
}

// ConcedeHandler forfeits the match. During setup the match is
// cancelled; during play the opponent wins.
type ConcedeHandler struct{}

func (ConcedeHandler) Handle(_ context.Context, m *Match, seat state.PlayerIdentifier, _ ActionData) (state.GameState, map[string]any, error) {
	if m.State.Terminal() {
		return m.Game, nil, illegalTransitionf("match %s already ended", m.ID)
	}
	switch m.State {
	case MatchPlayerTurn, MatchBetweenTurns:
		winner := m.PlayerID(seat.Opponent())
		if err := m.End(winner, "concession"); err != nil {
			return m.Game, nil, err
		}
		return m.Game, summaryData("conceded", true, "winnerId", winner), nil
	default:
		if err := m.Cancel("concession during setup"); err != nil {
			return m.Game, nil, err
		}
		return m.Game, summaryData("conceded", true), nil
	}
}
