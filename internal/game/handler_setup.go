package game

import (
	"context"

	"github.com/google/uuid"

	"github.com/3jesters/opentcg-server-go/internal/catalog"
	"github.com/3jesters/opentcg-server-go/internal/game/state"
)

// SetActivePokemonHandler covers both uses of SET_ACTIVE_POKEMON: the
// initial active selection during setup (a basic Pokémon from hand) and
// promoting a benched Pokémon after the active was knocked out.
type SetActivePokemonHandler struct {
	catalog catalog.CardCatalog
}

func (h SetActivePokemonHandler) Handle(ctx context.Context, m *Match, seat state.PlayerIdentifier, data ActionData) (state.GameState, map[string]any, error) {
	if m.State == MatchSelectActivePokemon {
		return h.selectInitial(ctx, m, seat, data)
	}
	return h.promoteFromBench(m, seat, data)
}

func (h SetActivePokemonHandler) selectInitial(ctx context.Context, m *Match, seat state.PlayerIdentifier, data ActionData) (state.GameState, map[string]any, error) {
	if m.setupFor(seat).ActiveSelected {
		return m.Game, nil, illegalTransitionf("%s already selected an active pokemon", m.PlayerID(seat))
	}
	if data.CardID == "" {
		return m.Game, nil, validationf("cardId is required to select the active pokemon")
	}
	player := m.Game.Player(seat)
	meta, err := h.catalog.Get(ctx, data.CardID)
	if err != nil {
		return m.Game, nil, validationf("unknown card %s: %v", data.CardID, err)
	}
	if !meta.IsBasic() {
		return m.Game, nil, validationf("card %s is not a basic pokemon", data.CardID)
	}
	player, err = player.WithCardRemovedFromHand(data.CardID)
	if err != nil {
		return m.Game, nil, validationf("card %s is not in hand: %v", data.CardID, err)
	}
	instance := state.NewCardInstance(uuid.New().String(), data.CardID, state.PositionActive, meta.HP)
	player = player.WithActive(&instance)

	if err := m.MarkActiveSelected(seat); err != nil {
		return m.Game, nil, err
	}
	gs := m.Game.WithPlayer(seat, player)
	return gs, summaryData("cardId", data.CardID, "instanceId", instance.InstanceID), nil
}

func (h SetActivePokemonHandler) promoteFromBench(m *Match, seat state.PlayerIdentifier, data ActionData) (state.GameState, map[string]any, error) {
	player := m.Game.Player(seat)
	if player.Active != nil {
		return m.Game, nil, illegalTransitionf("%s already has an active pokemon", m.PlayerID(seat))
	}
	if data.InstanceID == "" {
		return m.Game, nil, validationf("instanceId is required to promote a benched pokemon")
	}
	player, promoted, err := player.WithBenchRemoved(data.InstanceID)
	if err != nil {
		return m.Game, nil, validationf("pokemon %s is not on the bench: %v", data.InstanceID, err)
	}
	promoted = promoted.WithPosition(state.PositionActive)
	player = player.WithActive(&promoted)
	gs := m.Game.WithPlayer(seat, player)
	return gs, summaryData("instanceId", promoted.InstanceID, "cardId", promoted.CardID), nil
}

// PlayPokemonHandler places a basic Pokémon from hand onto the first
// open bench slot, during setup bench selection or the owner's main
// phase.
type PlayPokemonHandler struct {
	catalog catalog.CardCatalog
}

func (h PlayPokemonHandler) Handle(ctx context.Context, m *Match, seat state.PlayerIdentifier, data ActionData) (state.GameState, map[string]any, error) {
	switch m.State {
	case MatchSelectBenchPokemon:
		if m.setupFor(seat).BenchConfirmed {
			return m.Game, nil, illegalTransitionf("%s already confirmed their bench", m.PlayerID(seat))
		}
	case MatchPlayerTurn:
		if err := requireTurn(m, seat); err != nil {
			return m.Game, nil, err
		}
		if err := requirePhase(m, state.PhaseMain); err != nil {
			return m.Game, nil, err
		}
	default:
		return m.Game, nil, illegalTransitionf("cannot play a pokemon in state %s", m.State)
	}
	if data.CardID == "" {
		return m.Game, nil, validationf("cardId is required to play a pokemon")
	}
	meta, err := h.catalog.Get(ctx, data.CardID)
	if err != nil {
		return m.Game, nil, validationf("unknown card %s: %v", data.CardID, err)
	}
	if !meta.IsBasic() {
		return m.Game, nil, validationf("card %s is not a basic pokemon", data.CardID)
	}
	player := m.Game.Player(seat)
	player, err = player.WithCardRemovedFromHand(data.CardID)
	if err != nil {
		return m.Game, nil, validationf("card %s is not in hand: %v", data.CardID, err)
	}
	instance := state.NewCardInstance(uuid.New().String(), data.CardID, state.PositionBench0, meta.HP)
	player, err = player.WithBenchAdded(instance)
	if err != nil {
		return m.Game, nil, validationf("cannot bench %s: %v", data.CardID, err)
	}
	gs := m.Game.WithPlayer(seat, player)
	return gs, summaryData("cardId", data.CardID, "instanceId", instance.InstanceID), nil
}

// ConfirmSetupHandler locks in a player's bench during setup. When both
// players have confirmed the match advances to the first-player coin
// toss.
type ConfirmSetupHandler struct{}

func (ConfirmSetupHandler) Handle(_ context.Context, m *Match, seat state.PlayerIdentifier, _ ActionData) (state.GameState, map[string]any, error) {
	if err := m.ConfirmBench(seat); err != nil {
		return m.Game, nil, err
	}
	return m.Game, summaryData("benchConfirmed", true), nil
}
