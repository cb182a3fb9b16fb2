package effects

import (
	"fmt"

	"github.com/3jesters/opentcg-server-go/internal/catalog"
	"github.com/3jesters/opentcg-server-go/internal/game/state"
)

// Effect kind names used by catalog EffectSpec records.
const (
	KindHeal                = "HEAL"
	KindDraw                = "DRAW"
	KindSearchDeck          = "SEARCH_DECK"
	KindRetrieveFromDiscard = "RETRIEVE_FROM_DISCARD"
	KindAttachFromDiscard   = "ATTACH_FROM_DISCARD"
	KindSwitch              = "SWITCH"
	KindStatusCondition     = "STATUS_CONDITION"
	KindEnergyAcceleration  = "ENERGY_ACCELERATION"
	KindDiscardFromHand     = "DISCARD_FROM_HAND"
	KindBoostAttack         = "BOOST_ATTACK"
	KindBoostHP             = "BOOST_HP"
	KindPreventDamage       = "PREVENT_DAMAGE"
	KindReduceDamage        = "REDUCE_DAMAGE"
)

// Choices carries the caller-selected targets an effect spec leaves
// open: which Pokémon to heal, which cards to discard, which bench slot
// to switch in. Populated from the action's payload.
type Choices struct {
	InstanceID      string
	BenchInstanceID string
	CardIDs         []string
}

// Decode turns catalog effect specs into executable effects, resolving
// open targets from the caller's choices. An unknown kind is an error
// naming the offending index, never a silent no-op.
func Decode(specs []catalog.EffectSpec, choices Choices) ([]Effect, error) {
	out := make([]Effect, 0, len(specs))
	for i, spec := range specs {
		effect, err := decodeOne(spec, choices)
		if err != nil {
			return nil, fmt.Errorf("effect at index %d: %w", i, err)
		}
		out = append(out, effect)
	}
	return out, nil
}

func decodeOne(spec catalog.EffectSpec, choices Choices) (Effect, error) {
	switch spec.Kind {
	case KindHeal:
		return Heal{InstanceID: choices.InstanceID, Amount: spec.Amount}, nil
	case KindDraw:
		return Draw{Count: spec.Count}, nil
	case KindSearchDeck:
		cardID := spec.CardID
		if cardID == "" && len(choices.CardIDs) > 0 {
			cardID = choices.CardIDs[0]
		}
		return SearchDeck{CardID: cardID}, nil
	case KindRetrieveFromDiscard:
		cardID := spec.CardID
		if cardID == "" && len(choices.CardIDs) > 0 {
			cardID = choices.CardIDs[0]
		}
		return RetrieveFromDiscard{CardID: cardID}, nil
	case KindAttachFromDiscard:
		cardID := spec.CardID
		if cardID == "" && len(choices.CardIDs) > 0 {
			cardID = choices.CardIDs[0]
		}
		return AttachFromDiscard{EnergyCardID: cardID, InstanceID: choices.InstanceID}, nil
	case KindSwitch:
		return Switch{BenchInstanceID: choices.BenchInstanceID}, nil
	case KindStatusCondition:
		condition := state.StatusEffect(spec.Condition)
		switch condition {
		case state.StatusPoisoned, state.StatusBurned, state.StatusAsleep,
			state.StatusParalyzed, state.StatusConfused:
			return StatusCondition{Condition: condition}, nil
		default:
			return nil, fmt.Errorf("unknown status condition %q", spec.Condition)
		}
	case KindEnergyAcceleration:
		cardID := spec.CardID
		if cardID == "" && len(choices.CardIDs) > 0 {
			cardID = choices.CardIDs[0]
		}
		return EnergyAcceleration{EnergyCardID: cardID, InstanceID: choices.InstanceID}, nil
	case KindDiscardFromHand:
		return DiscardFromHand{CardIDs: choices.CardIDs}, nil
	case KindBoostAttack:
		return BoostAttack{InstanceID: choices.InstanceID, Amount: spec.Amount}, nil
	case KindBoostHP:
		return BoostHP{InstanceID: choices.InstanceID, Amount: spec.Amount}, nil
	case KindPreventDamage:
		return PreventDamage{InstanceID: choices.InstanceID, Amount: spec.Amount}, nil
	case KindReduceDamage:
		return ReduceDamage{InstanceID: choices.InstanceID, Amount: spec.Amount}, nil
	default:
		return nil, fmt.Errorf("unknown effect kind %q", spec.Kind)
	}
}
