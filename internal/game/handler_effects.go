package game

import (
	"context"

	"github.com/3jesters/opentcg-server-go/internal/catalog"
	"github.com/3jesters/opentcg-server-go/internal/game/effects"
	"github.com/3jesters/opentcg-server-go/internal/game/state"
)

// effectChoices maps the action payload onto the targets the decoded
// effects leave open.
func effectChoices(data ActionData) effects.Choices {
	target := data.TargetInstanceID
	if target == "" {
		target = data.InstanceID
	}
	return effects.Choices{
		InstanceID:      target,
		BenchInstanceID: data.BenchInstanceID,
		CardIDs:         data.CardIDs,
	}
}

// recordAppliedStatus copies any condition a decoded effect batch
// placed on the opponent's active Pokémon into the summary payload,
// under the same keys the attack handler uses. The point-of-use expiry
// scan reads those keys, so an effect-inflicted sleep or paralysis must
// be logged the same way an attack-inflicted one is.
func recordAppliedStatus(gs state.GameState, seat state.PlayerIdentifier, decoded []effects.Effect, summary map[string]any) {
	opponent := gs.Player(seat.Opponent())
	if opponent.Active == nil {
		return
	}
	for _, effect := range decoded {
		if sc, ok := effect.(effects.StatusCondition); ok {
			summary["statusApplied"] = string(sc.Condition)
			summary["targetInstanceId"] = opponent.Active.InstanceID
		}
	}
}

// UseAbilityHandler activates an in-play Pokémon's ability, once per
// instance per turn. All decoded effects validate before any applies.
type UseAbilityHandler struct {
	catalog  catalog.CardCatalog
	executor *effects.AbilityExecutor
}

func (h UseAbilityHandler) Handle(ctx context.Context, m *Match, seat state.PlayerIdentifier, data ActionData) (state.GameState, map[string]any, error) {
	if err := requireTurn(m, seat); err != nil {
		return m.Game, nil, err
	}
	if err := requirePhase(m, state.PhaseMain); err != nil {
		return m.Game, nil, err
	}
	if data.InstanceID == "" {
		return m.Game, nil, validationf("instanceId is required to use an ability")
	}
	source, ok := m.Game.Player(seat).PokemonByInstanceID(data.InstanceID)
	if !ok {
		return m.Game, nil, validationf("pokemon %s is not in play", data.InstanceID)
	}
	meta, err := h.catalog.Get(ctx, source.CardID)
	if err != nil {
		return m.Game, nil, invariantf("in-play card %s missing from catalog: %v", source.CardID, err)
	}
	if meta.Ability == nil || len(meta.AbilityEffects) == 0 {
		return m.Game, nil, validationf("%s has no usable ability", meta.Name)
	}
	for _, entry := range m.Game.ActionsThisTurn() {
		if entry.ActionType == state.ActionUseAbility && entry.String("instanceId") == source.InstanceID {
			return m.Game, nil, validationf("ability of %s already used this turn", source.InstanceID)
		}
	}

	decoded, err := effects.Decode(meta.AbilityEffects, effectChoices(data))
	if err != nil {
		return m.Game, nil, validationf("ability %s: %v", meta.Ability.Name, err)
	}
	gs, err := h.executor.Execute(ctx, m.Game, seat, decoded)
	if err != nil {
		return m.Game, nil, err
	}
	m.Game = gs
	summary := summaryData(
		"instanceId", source.InstanceID,
		"abilityName", meta.Ability.Name,
	)
	recordAppliedStatus(gs, seat, decoded, summary)
	return gs, summary, nil
}

// UseTrainerHandler plays a trainer card from hand: its effects
// validate as a batch, apply in priority order, and the card goes to
// the discard pile.
type UseTrainerHandler struct {
	catalog  catalog.CardCatalog
	executor *effects.TrainerExecutor
}

func (h UseTrainerHandler) Handle(ctx context.Context, m *Match, seat state.PlayerIdentifier, data ActionData) (state.GameState, map[string]any, error) {
	if err := requireTurn(m, seat); err != nil {
		return m.Game, nil, err
	}
	if err := requirePhase(m, state.PhaseMain); err != nil {
		return m.Game, nil, err
	}
	if data.CardID == "" {
		return m.Game, nil, validationf("cardId is required to play a trainer")
	}
	meta, err := h.catalog.Get(ctx, data.CardID)
	if err != nil {
		return m.Game, nil, validationf("unknown card %s: %v", data.CardID, err)
	}
	if meta.Supertype != catalog.SupertypeTrainer {
		return m.Game, nil, validationf("card %s is not a trainer card", data.CardID)
	}
	if len(meta.TrainerEffects) == 0 {
		return m.Game, nil, validationf("trainer %s has no playable effects", meta.Name)
	}
	player := m.Game.Player(seat)
	player, err = player.WithCardRemovedFromHand(data.CardID)
	if err != nil {
		return m.Game, nil, validationf("card %s is not in hand: %v", data.CardID, err)
	}

	decoded, err := effects.Decode(meta.TrainerEffects, effectChoices(data))
	if err != nil {
		return m.Game, nil, validationf("trainer %s: %v", meta.Name, err)
	}
	gs := m.Game.WithPlayer(seat, player)
	gs, err = h.executor.Execute(ctx, gs, seat, decoded)
	if err != nil {
		return m.Game, nil, err
	}
	gs = gs.WithPlayer(seat, gs.Player(seat).WithDiscarded(data.CardID))
	m.Game = gs
	summary := summaryData("cardId", data.CardID, "trainerName", meta.Name)
	recordAppliedStatus(gs, seat, decoded, summary)
	return gs, summary, nil
}
