// Package effects interprets the structured effect variants carried by
// abilities and trainer cards against the game state. Effects form a
// closed tagged union, execute in a fixed priority order, and are fully
// validated before any state is produced.
package effects

import (
	"sort"

	"github.com/3jesters/opentcg-server-go/internal/game/state"
)

// Effect is the closed union of executable effect variants.
type Effect interface {
	isEffect()
	priority() int
}

// Priority classes. Hand and deck manipulation resolves first, board
// mutation second, passive damage trackers last, so a
// discard-then-search combo cannot be reordered by caller intent.
const (
	priorityHand    = 0
	priorityBoard   = 1
	priorityPassive = 2
)

// DiscardFromHand discards the named cards from the actor's hand.
type DiscardFromHand struct {
	CardIDs []string
}

// Draw moves up to Count cards from the top of the actor's deck to hand.
type Draw struct {
	Count int
}

// SearchDeck moves a named card from the actor's deck to hand.
type SearchDeck struct {
	CardID string
}

// RetrieveFromDiscard moves a named card from the actor's discard pile
// to hand.
type RetrieveFromDiscard struct {
	CardID string
}

// Heal restores HP on one of the actor's Pokémon in play.
type Heal struct {
	InstanceID string
	Amount     int
}

// Switch swaps the actor's active Pokémon with a benched one.
type Switch struct {
	BenchInstanceID string
}

// StatusCondition places a special condition on the opponent's active
// Pokémon.
type StatusCondition struct {
	Condition state.StatusEffect
}

// EnergyAcceleration attaches an energy card from the actor's hand,
// bypassing the once-per-turn attachment rule.
type EnergyAcceleration struct {
	EnergyCardID string
	InstanceID   string
}

// AttachFromDiscard attaches an energy card from the actor's discard
// pile to one of their Pokémon in play.
type AttachFromDiscard struct {
	EnergyCardID string
	InstanceID   string
}

// BoostHP raises the maximum (and current) HP of one of the actor's
// Pokémon.
type BoostHP struct {
	InstanceID string
	Amount     int
}

// BoostAttack records bonus damage for the instance's next attack.
type BoostAttack struct {
	InstanceID string
	Amount     int
}

// PreventDamage records a prevention amount against the next attack on
// the instance.
type PreventDamage struct {
	InstanceID string
	Amount     int
}

// ReduceDamage records a reduction amount against the next attack on
// the instance.
type ReduceDamage struct {
	InstanceID string
	Amount     int
}

func (DiscardFromHand) isEffect()     {}
func (Draw) isEffect()                {}
func (SearchDeck) isEffect()          {}
func (RetrieveFromDiscard) isEffect() {}
func (Heal) isEffect()                {}
func (Switch) isEffect()              {}
func (StatusCondition) isEffect()     {}
func (EnergyAcceleration) isEffect()  {}
func (AttachFromDiscard) isEffect()   {}
func (BoostHP) isEffect()             {}
func (BoostAttack) isEffect()         {}
func (PreventDamage) isEffect()       {}
func (ReduceDamage) isEffect()        {}

func (DiscardFromHand) priority() int     { return priorityHand }
func (Draw) priority() int                { return priorityHand }
func (SearchDeck) priority() int          { return priorityHand }
func (RetrieveFromDiscard) priority() int { return priorityHand }
func (Heal) priority() int                { return priorityBoard }
func (Switch) priority() int              { return priorityBoard }
func (StatusCondition) priority() int     { return priorityBoard }
func (EnergyAcceleration) priority() int  { return priorityBoard }
func (AttachFromDiscard) priority() int   { return priorityBoard }
func (BoostHP) priority() int             { return priorityBoard }
func (BoostAttack) priority() int         { return priorityPassive }
func (PreventDamage) priority() int       { return priorityPassive }
func (ReduceDamage) priority() int        { return priorityPassive }

// orderForExecution returns the effects sorted by priority class,
// preserving the declared order within a class.
func orderForExecution(effectList []Effect) []Effect {
	out := append([]Effect(nil), effectList...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].priority() < out[j].priority()
	})
	return out
}
