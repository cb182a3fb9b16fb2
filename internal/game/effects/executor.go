package effects

import (
	"context"
	"fmt"

	"github.com/3jesters/opentcg-server-go/internal/catalog"
	"github.com/3jesters/opentcg-server-go/internal/game/state"
	"go.uber.org/zap"
)

// Executor validates and applies decoded effects for one acting player.
// Validation for the whole batch runs before any state is produced, so
// a failing effect list never partially applies.
type Executor struct {
	catalog catalog.CardCatalog
	logger  *zap.Logger
}

// NewExecutor creates an effect executor backed by the card catalog.
func NewExecutor(cat catalog.CardCatalog, logger *zap.Logger) *Executor {
	return &Executor{catalog: cat, logger: logger}
}

// AbilityExecutor runs the effect lists behind Pokémon abilities.
type AbilityExecutor struct {
	*Executor
}

// NewAbilityExecutor creates the ability-side executor.
func NewAbilityExecutor(cat catalog.CardCatalog, logger *zap.Logger) *AbilityExecutor {
	return &AbilityExecutor{Executor: NewExecutor(cat, logger)}
}

// TrainerExecutor runs the effect lists behind trainer cards.
type TrainerExecutor struct {
	*Executor
}

// NewTrainerExecutor creates the trainer-side executor.
func NewTrainerExecutor(cat catalog.CardCatalog, logger *zap.Logger) *TrainerExecutor {
	return &TrainerExecutor{Executor: NewExecutor(cat, logger)}
}

// Execute validates every effect against the current state, then
// applies them in priority order (hand/deck manipulation first, board
// mutation second, passive trackers last) and returns the new state.
func (e *Executor) Execute(ctx context.Context, gs state.GameState, actor state.PlayerIdentifier, effectList []Effect) (state.GameState, error) {
	if err := e.ValidateAll(ctx, gs, actor, effectList); err != nil {
		return gs, err
	}

	var err error
	for _, effect := range orderForExecution(effectList) {
		gs, err = e.apply(ctx, gs, actor, effect)
		if err != nil {
			// Validation should have caught this; surfacing it keeps the
			// invariant violation observable instead of half-applying.
			return gs, fmt.Errorf("applying validated effect: %w", err)
		}
	}
	return gs, nil
}

// ValidateAll checks every effect against the unmodified state and
// short-circuits with the first offending index named in the error.
func (e *Executor) ValidateAll(ctx context.Context, gs state.GameState, actor state.PlayerIdentifier, effectList []Effect) error {
	for i, effect := range effectList {
		if err := e.validate(ctx, gs, actor, effect); err != nil {
			return fmt.Errorf("effect at index %d: %w", i, err)
		}
	}
	return nil
}

func (e *Executor) validate(ctx context.Context, gs state.GameState, actor state.PlayerIdentifier, effect Effect) error {
	player := gs.Player(actor)
	opponent := gs.Player(actor.Opponent())

	switch v := effect.(type) {
	case Heal:
		if v.Amount <= 0 {
			return fmt.Errorf("heal amount must be positive, got %d", v.Amount)
		}
		if _, ok := player.PokemonByInstanceID(v.InstanceID); !ok {
			return fmt.Errorf("no Pokémon in play with instance id %s", v.InstanceID)
		}
	case Draw:
		if v.Count <= 0 {
			return fmt.Errorf("draw count must be positive, got %d", v.Count)
		}
		if len(player.Deck) == 0 {
			return fmt.Errorf("cannot draw: deck is empty")
		}
	case SearchDeck:
		if !contains(player.Deck, v.CardID) {
			return fmt.Errorf("card %s is not in deck", v.CardID)
		}
	case RetrieveFromDiscard:
		if !contains(player.Discard, v.CardID) {
			return fmt.Errorf("card %s is not in the discard pile", v.CardID)
		}
	case AttachFromDiscard:
		if !contains(player.Discard, v.EnergyCardID) {
			return fmt.Errorf("card %s is not in the discard pile", v.EnergyCardID)
		}
		if err := e.requireEnergyCard(ctx, v.EnergyCardID); err != nil {
			return err
		}
		if _, ok := player.PokemonByInstanceID(v.InstanceID); !ok {
			return fmt.Errorf("no Pokémon in play with instance id %s", v.InstanceID)
		}
	case Switch:
		if player.Active == nil {
			return fmt.Errorf("no active Pokémon to switch out")
		}
		if _, onBench := benchInstance(player, v.BenchInstanceID); !onBench {
			return fmt.Errorf("instance %s is not on the bench", v.BenchInstanceID)
		}
	case StatusCondition:
		if opponent.Active == nil {
			return fmt.Errorf("opponent has no active Pokémon")
		}
	case EnergyAcceleration:
		if !contains(player.Hand, v.EnergyCardID) {
			return fmt.Errorf("card %s is not in hand", v.EnergyCardID)
		}
		if err := e.requireEnergyCard(ctx, v.EnergyCardID); err != nil {
			return err
		}
		if _, ok := player.PokemonByInstanceID(v.InstanceID); !ok {
			return fmt.Errorf("no Pokémon in play with instance id %s", v.InstanceID)
		}
	case DiscardFromHand:
		if len(v.CardIDs) == 0 {
			return fmt.Errorf("no cards named to discard")
		}
		remaining := append([]string(nil), player.Hand...)
		for _, id := range v.CardIDs {
			var ok bool
			remaining, ok = removeFirstID(remaining, id)
			if !ok {
				return fmt.Errorf("card %s is not in hand", id)
			}
		}
	case BoostHP:
		if v.Amount <= 0 {
			return fmt.Errorf("HP boost must be positive, got %d", v.Amount)
		}
		if _, ok := player.PokemonByInstanceID(v.InstanceID); !ok {
			return fmt.Errorf("no Pokémon in play with instance id %s", v.InstanceID)
		}
	case BoostAttack:
		if v.Amount <= 0 {
			return fmt.Errorf("attack boost must be positive, got %d", v.Amount)
		}
		if _, ok := player.PokemonByInstanceID(v.InstanceID); !ok {
			return fmt.Errorf("no Pokémon in play with instance id %s", v.InstanceID)
		}
	case PreventDamage:
		if v.Amount <= 0 {
			return fmt.Errorf("prevention amount must be positive, got %d", v.Amount)
		}
		if _, ok := player.PokemonByInstanceID(v.InstanceID); !ok {
			return fmt.Errorf("no Pokémon in play with instance id %s", v.InstanceID)
		}
	case ReduceDamage:
		if v.Amount <= 0 {
			return fmt.Errorf("reduction amount must be positive, got %d", v.Amount)
		}
		if _, ok := player.PokemonByInstanceID(v.InstanceID); !ok {
			return fmt.Errorf("no Pokémon in play with instance id %s", v.InstanceID)
		}
	default:
		return fmt.Errorf("unhandled effect variant %T", effect)
	}
	return nil
}

func (e *Executor) apply(ctx context.Context, gs state.GameState, actor state.PlayerIdentifier, effect Effect) (state.GameState, error) {
	player := gs.Player(actor)

	switch v := effect.(type) {
	case Heal:
		instance, ok := player.PokemonByInstanceID(v.InstanceID)
		if !ok {
			return gs, fmt.Errorf("instance %s vanished", v.InstanceID)
		}
		updated, err := player.WithPokemonReplaced(instance.WithHealing(v.Amount))
		if err != nil {
			return gs, err
		}
		return gs.WithPlayer(actor, updated), nil

	case Draw:
		n := v.Count
		if n > len(player.Deck) {
			n = len(player.Deck)
		}
		updated, _, err := player.WithDrawnCards(n)
		if err != nil {
			return gs, err
		}
		return gs.WithPlayer(actor, updated), nil

	case SearchDeck:
		updated, err := player.WithCardRemovedFromDeck(v.CardID)
		if err != nil {
			return gs, err
		}
		return gs.WithPlayer(actor, updated.WithCardsAddedToHand(v.CardID)), nil

	case RetrieveFromDiscard:
		updated, err := player.WithCardRemovedFromDiscard(v.CardID)
		if err != nil {
			return gs, err
		}
		return gs.WithPlayer(actor, updated.WithCardsAddedToHand(v.CardID)), nil

	case AttachFromDiscard:
		updated, err := player.WithCardRemovedFromDiscard(v.EnergyCardID)
		if err != nil {
			return gs, err
		}
		instance, ok := updated.PokemonByInstanceID(v.InstanceID)
		if !ok {
			return gs, fmt.Errorf("instance %s vanished", v.InstanceID)
		}
		updated, err = updated.WithPokemonReplaced(instance.WithAttachedEnergy(v.EnergyCardID))
		if err != nil {
			return gs, err
		}
		return gs.WithPlayer(actor, updated), nil

	case Switch:
		return applySwitch(gs, actor, v.BenchInstanceID)

	case StatusCondition:
		opponent := gs.Player(actor.Opponent())
		updated, err := opponent.WithPokemonReplaced(opponent.Active.WithStatus(v.Condition))
		if err != nil {
			return gs, err
		}
		return gs.WithPlayer(actor.Opponent(), updated), nil

	case EnergyAcceleration:
		updated, err := player.WithCardRemovedFromHand(v.EnergyCardID)
		if err != nil {
			return gs, err
		}
		instance, ok := updated.PokemonByInstanceID(v.InstanceID)
		if !ok {
			return gs, fmt.Errorf("instance %s vanished", v.InstanceID)
		}
		updated, err = updated.WithPokemonReplaced(instance.WithAttachedEnergy(v.EnergyCardID))
		if err != nil {
			return gs, err
		}
		return gs.WithPlayer(actor, updated), nil

	case DiscardFromHand:
		updated := player
		var err error
		for _, id := range v.CardIDs {
			updated, err = updated.WithCardRemovedFromHand(id)
			if err != nil {
				return gs, err
			}
			updated = updated.WithDiscarded(id)
		}
		return gs.WithPlayer(actor, updated), nil

	case BoostHP:
		instance, ok := player.PokemonByInstanceID(v.InstanceID)
		if !ok {
			return gs, fmt.Errorf("instance %s vanished", v.InstanceID)
		}
		boosted := instance
		boosted.MaxHP += v.Amount
		boosted.CurrentHP += v.Amount
		updated, err := player.WithPokemonReplaced(boosted)
		if err != nil {
			return gs, err
		}
		return gs.WithPlayer(actor, updated), nil

	case BoostAttack:
		return gs.WithAttackBoost(v.InstanceID, v.Amount), nil

	case PreventDamage:
		return gs.WithDamagePrevention(v.InstanceID, v.Amount), nil

	case ReduceDamage:
		return gs.WithDamageReduction(v.InstanceID, v.Amount), nil

	default:
		return gs, fmt.Errorf("unhandled effect variant %T", effect)
	}
}

// applySwitch benches the active Pokémon (clearing its conditions) and
// promotes the chosen benched instance.
func applySwitch(gs state.GameState, actor state.PlayerIdentifier, benchInstanceID string) (state.GameState, error) {
	player := gs.Player(actor)
	oldActive := *player.Active

	updated, incoming, err := player.WithBenchRemoved(benchInstanceID)
	if err != nil {
		return gs, err
	}
	updated = updated.WithActive(&incoming)
	updated, err = updated.WithBenchAdded(oldActive.WithoutAllStatus())
	if err != nil {
		return gs, err
	}
	return gs.WithPlayer(actor, updated), nil
}

// requireEnergyCard checks through the catalog that the card is an
// energy card.
func (e *Executor) requireEnergyCard(ctx context.Context, cardID string) error {
	meta, err := e.catalog.Get(ctx, cardID)
	if err != nil {
		return fmt.Errorf("resolving card %s: %w", cardID, err)
	}
	if meta.Supertype != catalog.SupertypeEnergy {
		return fmt.Errorf("card %s is not an energy card", cardID)
	}
	return nil
}

func benchInstance(p state.PlayerGameState, instanceID string) (state.CardInstance, bool) {
	for _, b := range p.Bench {
		if b.InstanceID == instanceID {
			return b, true
		}
	}
	return state.CardInstance{}, false
}

func contains(seq []string, id string) bool {
	for _, v := range seq {
		if v == id {
			return true
		}
	}
	return false
}

func removeFirstID(seq []string, id string) ([]string, bool) {
	for i, v := range seq {
		if v == id {
			return append(append([]string(nil), seq[:i]...), seq[i+1:]...), true
		}
	}
	return seq, false
}
