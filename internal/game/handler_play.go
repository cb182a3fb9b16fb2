package game

import (
	"context"
	"strings"

	"github.com/3jesters/opentcg-server-go/internal/catalog"
	"github.com/3jesters/opentcg-server-go/internal/game/state"
)

// AttachEnergyHandler attaches one energy card from hand to an in-play
// Pokémon. One attachment per turn.
type AttachEnergyHandler struct {
	catalog catalog.CardCatalog
}

func (h AttachEnergyHandler) Handle(ctx context.Context, m *Match, seat state.PlayerIdentifier, data ActionData) (state.GameState, map[string]any, error) {
	if err := requireTurn(m, seat); err != nil {
		return m.Game, nil, err
	}
	if err := requirePhase(m, state.PhaseMain); err != nil {
		return m.Game, nil, err
	}
	player := m.Game.Player(seat)
	if player.HasAttachedEnergyThisTurn {
		return m.Game, nil, validationf("%s already attached an energy card this turn", m.PlayerID(seat))
	}
	if data.CardID == "" || data.TargetInstanceID == "" {
		return m.Game, nil, validationf("cardId and targetInstanceId are required to attach energy")
	}
	meta, err := h.catalog.Get(ctx, data.CardID)
	if err != nil {
		return m.Game, nil, validationf("unknown card %s: %v", data.CardID, err)
	}
	if meta.Supertype != catalog.SupertypeEnergy {
		return m.Game, nil, validationf("card %s is not an energy card", data.CardID)
	}
	target, ok := player.PokemonByInstanceID(data.TargetInstanceID)
	if !ok {
		return m.Game, nil, validationf("pokemon %s is not in play", data.TargetInstanceID)
	}
	player, err = player.WithCardRemovedFromHand(data.CardID)
	if err != nil {
		return m.Game, nil, validationf("card %s is not in hand: %v", data.CardID, err)
	}
	player, err = player.WithPokemonReplaced(target.WithAttachedEnergy(data.CardID))
	if err != nil {
		return m.Game, nil, err
	}
	player = player.WithAttachedEnergyFlag(true)
	gs := m.Game.WithPlayer(seat, player)
	return gs, summaryData(
		"cardId", data.CardID,
		"targetInstanceId", data.TargetInstanceID,
		"energyType", string(meta.ProvidesEnergy),
	), nil
}

// EvolvePokemonHandler evolves an in-play Pokémon with a card from
// hand: the evolution must name the current card, sit exactly one stage
// above it, and the instance must not have evolved this turn. Damage
// and attached energy carry over; special conditions are removed.
type EvolvePokemonHandler struct {
	catalog catalog.CardCatalog
}

func (h EvolvePokemonHandler) Handle(ctx context.Context, m *Match, seat state.PlayerIdentifier, data ActionData) (state.GameState, map[string]any, error) {
	if err := requireTurn(m, seat); err != nil {
		return m.Game, nil, err
	}
	if err := requirePhase(m, state.PhaseMain); err != nil {
		return m.Game, nil, err
	}
	if data.CardID == "" || data.InstanceID == "" {
		return m.Game, nil, validationf("cardId and instanceId are required to evolve")
	}
	player := m.Game.Player(seat)
	target, ok := player.PokemonByInstanceID(data.InstanceID)
	if !ok {
		return m.Game, nil, validationf("pokemon %s is not in play", data.InstanceID)
	}
	if target.EvolvedAt == m.Game.TurnNumber || m.Game.HasEvolvedThisTurn(target.InstanceID) {
		return m.Game, nil, validationf("pokemon %s already evolved this turn", target.InstanceID)
	}
	current, err := h.catalog.Get(ctx, target.CardID)
	if err != nil {
		return m.Game, nil, invariantf("in-play card %s missing from catalog: %v", target.CardID, err)
	}
	evolution, err := h.catalog.Get(ctx, data.CardID)
	if err != nil {
		return m.Game, nil, validationf("unknown card %s: %v", data.CardID, err)
	}
	if !evolution.IsPokemon() {
		return m.Game, nil, validationf("card %s is not a pokemon", data.CardID)
	}
	if !strings.EqualFold(evolution.EvolvesFrom, current.Name) {
		return m.Game, nil, validationf("%s does not evolve from %s", evolution.Name, current.Name)
	}
	if catalog.StageLevel(evolution.Stage) != catalog.StageLevel(current.Stage)+1 {
		return m.Game, nil, validationf("%s is not exactly one stage above %s", evolution.Name, current.Name)
	}
	player, err = player.WithCardRemovedFromHand(data.CardID)
	if err != nil {
		return m.Game, nil, validationf("card %s is not in hand: %v", data.CardID, err)
	}
	evolved := target.WithEvolution(data.CardID, evolution.HP, m.Game.TurnNumber)
	player, err = player.WithPokemonReplaced(evolved)
	if err != nil {
		return m.Game, nil, err
	}
	gs := m.Game.WithPlayer(seat, player)
	return gs, summaryData(
		"cardId", data.CardID,
		"instanceId", target.InstanceID,
		"evolvedFrom", target.CardID,
	), nil
}

// RetreatHandler swaps the active Pokémon with a benched one, paying
// the retreat cost by discarding attached energy cards. Asleep and
// paralyzed Pokémon cannot retreat; retreating removes all special
// conditions from the retreating Pokémon.
type RetreatHandler struct {
	catalog catalog.CardCatalog
}

func (h RetreatHandler) Handle(ctx context.Context, m *Match, seat state.PlayerIdentifier, data ActionData) (state.GameState, map[string]any, error) {
	if err := requireTurn(m, seat); err != nil {
		return m.Game, nil, err
	}
	if err := requirePhase(m, state.PhaseMain); err != nil {
		return m.Game, nil, err
	}
	player := m.Game.Player(seat)
	if player.Active == nil {
		return m.Game, nil, validationf("no active pokemon to retreat")
	}
	active := *player.Active
	for _, condition := range []state.StatusEffect{state.StatusAsleep, state.StatusParalyzed} {
		if active.HasStatus(condition) && statusAppliedRecently(m.Game, active.InstanceID, condition) {
			return m.Game, nil, validationf("cannot retreat while %s", strings.ToLower(string(condition)))
		}
	}
	if data.BenchInstanceID == "" {
		return m.Game, nil, validationf("benchInstanceId is required to retreat")
	}
	meta, err := h.catalog.Get(ctx, active.CardID)
	if err != nil {
		return m.Game, nil, invariantf("in-play card %s missing from catalog: %v", active.CardID, err)
	}
	if len(data.EnergyCardIDs) != meta.RetreatCost {
		return m.Game, nil, validationf("retreat costs %d energy, got %d", meta.RetreatCost, len(data.EnergyCardIDs))
	}
	detached, removed := active.WithoutEnergy(data.EnergyCardIDs...)
	if len(removed) != len(data.EnergyCardIDs) {
		return m.Game, nil, validationf("not all energy cards are attached to the active pokemon")
	}
	active = detached
	player, incoming, err := player.WithBenchRemoved(data.BenchInstanceID)
	if err != nil {
		return m.Game, nil, validationf("pokemon %s is not on the bench: %v", data.BenchInstanceID, err)
	}
	retreated := active.WithoutAllStatus()
	incoming = incoming.WithPosition(state.PositionActive)
	player = player.WithActive(&incoming)
	player, err = player.WithBenchAdded(retreated)
	if err != nil {
		return m.Game, nil, err
	}
	player = player.WithDiscarded(data.EnergyCardIDs...)
	gs := m.Game.WithPlayer(seat, player)
	return gs, summaryData(
		"instanceId", retreated.InstanceID,
		"benchInstanceId", incoming.InstanceID,
		"energyDiscarded", len(data.EnergyCardIDs),
	), nil
}
