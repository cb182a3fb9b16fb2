package game

import (
	"context"
	"fmt"

	"github.com/3jesters/opentcg-server-go/internal/catalog"
	"github.com/3jesters/opentcg-server-go/internal/game/state"
)

// ActionData is the per-action payload of an incoming request. Fields
// are populated per action type; unused fields are ignored by handlers
// after validation.
type ActionData struct {
	AttackName       string   `json:"attackName,omitempty"`
	CardID           string   `json:"cardId,omitempty"`
	InstanceID       string   `json:"instanceId,omitempty"`
	TargetInstanceID string   `json:"targetInstanceId,omitempty"`
	BenchInstanceID  string   `json:"benchInstanceId,omitempty"`
	PrizeIndex       int      `json:"prizeIndex,omitempty"`
	EnergyCardIDs    []string `json:"energyCardIds,omitempty"`
	CardIDs          []string `json:"cardIds,omitempty"`
}

// ActionHandler validates and applies one action type against the
// match. Handlers return the updated game state plus the summary
// payload; the orchestrator owns appending the ActionSummary, so a
// failed handler leaves no trace in the log.
type ActionHandler interface {
	Handle(ctx context.Context, m *Match, seat state.PlayerIdentifier, data ActionData) (state.GameState, map[string]any, error)
}

// attachedEnergyTypes resolves the energy types provided by the cards
// attached to an instance.
func attachedEnergyTypes(ctx context.Context, cat catalog.CardCatalog, instance state.CardInstance) ([]catalog.EnergyType, error) {
	out := make([]catalog.EnergyType, 0, len(instance.AttachedEnergy))
	for _, cardID := range instance.AttachedEnergy {
		meta, err := cat.Get(ctx, cardID)
		if err != nil {
			return nil, invariantf("attached card %s missing from catalog: %v", cardID, err)
		}
		if meta.Supertype != catalog.SupertypeEnergy {
			return nil, invariantf("attached card %s is not an energy card", cardID)
		}
		out = append(out, meta.ProvidesEnergy)
	}
	return out, nil
}

// requireTurn checks that the match is in an active turn owned by seat.
func requireTurn(m *Match, seat state.PlayerIdentifier) error {
	if err := m.requireState(MatchPlayerTurn); err != nil {
		return err
	}
	if m.CurrentPlayer != seat {
		return illegalTransitionf("it is not %s's turn", m.PlayerID(seat))
	}
	return nil
}

// requirePhase checks the game's current turn phase.
func requirePhase(m *Match, phases ...state.TurnPhase) error {
	for _, p := range phases {
		if m.Game.Phase == p {
			return nil
		}
	}
	return illegalTransitionf("action not legal in phase %s", m.Game.Phase)
}

// replaceInPlay swaps an updated in-play instance into its owner's
// side of the board.
func replaceInPlay(gs state.GameState, owner state.PlayerIdentifier, instance state.CardInstance) (state.GameState, error) {
	player, err := gs.Player(owner).WithPokemonReplaced(instance)
	if err != nil {
		return gs, invariantf("instance %s is not in play for %s: %v", instance.InstanceID, owner, err)
	}
	return gs.WithPlayer(owner, player), nil
}

// discardKnockedOut moves a knocked-out instance's cards (current card,
// prior evolutions, attached energy) to its owner's discard pile and
// removes it from play.
func discardKnockedOut(gs state.GameState, owner state.PlayerIdentifier, instance state.CardInstance) (state.GameState, error) {
	player := gs.Player(owner)

	cards := append([]string(nil), instance.EvolutionChain...)
	cards = append(cards, instance.CardID)
	cards = append(cards, instance.AttachedEnergy...)

	if player.Active != nil && player.Active.InstanceID == instance.InstanceID {
		player = player.WithActive(nil)
	} else {
		var err error
		player, _, err = player.WithBenchRemoved(instance.InstanceID)
		if err != nil {
			return gs, invariantf("knocked-out instance %s is not in play: %v", instance.InstanceID, err)
		}
	}
	player = player.WithDiscarded(cards...)
	return gs.WithPlayer(owner, player), nil
}

// statusAppliedRecently reports whether the condition was applied to
// the instance within the current turn or the one before it, using the
// bounded action-log scan (two END_TURN boundaries back). Conditions
// applied earlier are treated as expired at the point of use.
func statusAppliedRecently(gs state.GameState, instanceID string, condition state.StatusEffect) bool {
	boundaries := 0
	for i := len(gs.ActionHistory) - 1; i >= 0; i-- {
		entry := gs.ActionHistory[i]
		if entry.ActionType == state.ActionEndTurn {
			boundaries++
			if boundaries >= 2 {
				return false
			}
			continue
		}
		if entry.String("statusApplied") == string(condition) &&
			entry.String("targetInstanceId") == instanceID {
			return true
		}
	}
	return false
}

func summaryData(pairs ...any) map[string]any {
	out := make(map[string]any, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			panic(fmt.Sprintf("summaryData key %v is not a string", pairs[i]))
		}
		out[key] = pairs[i+1]
	}
	return out
}
