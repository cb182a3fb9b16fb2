// Package status ticks between-turns status-effect damage (poison,
// burn) and synthesizes knockout log entries for the orchestrator's
// prize flow. Sleep, paralysis and confusion gate actions at the point
// of use and are not processed here.
package status

import (
	"time"

	"github.com/3jesters/opentcg-server-go/internal/game/state"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultPoisonDamage is applied per tick unless the instance records
// its own amount (some attacks poison for 20).
const DefaultPoisonDamage = 10

// DefaultBurnDamage is applied per burn tick.
const DefaultBurnDamage = 20

// Knockout reports a Pokémon knocked out by status damage.
type Knockout struct {
	Owner      state.PlayerIdentifier
	InstanceID string
	CardID     string
}

// Processor applies between-turns status damage.
type Processor struct {
	logger *zap.Logger
}

// NewProcessor creates a status effect processor.
func NewProcessor(logger *zap.Logger) *Processor {
	return &Processor{logger: logger}
}

// ProcessEndOfTurn ticks poison and burn on every Pokémon in play for
// both players. Each Pokémon reduced to zero HP produces a synthetic
// knockout ActionSummary (actionType ATTACK, knockoutSource
// STATUS_EFFECT) appended to the returned state; the orchestrator
// watches these entries to run the prize-then-reselection sub-flow.
func (p *Processor) ProcessEndOfTurn(gs state.GameState, now time.Time) (state.GameState, []Knockout) {
	var knockouts []Knockout

	for _, seat := range []state.PlayerIdentifier{state.PlayerOne, state.PlayerTwo} {
		player := gs.Player(seat)
		for _, instance := range player.AllPokemon() {
			ticked, total := p.tick(instance)
			if total == 0 {
				continue
			}

			updated, err := player.WithPokemonReplaced(ticked)
			if err != nil {
				// Instance disappeared between iteration and replacement;
				// an invariant violation, surfaced loudly.
				if p.logger != nil {
					p.logger.Error("status tick lost track of instance",
						zap.String("instance_id", instance.InstanceID),
						zap.Error(err),
					)
				}
				continue
			}
			player = updated
			gs = gs.WithPlayer(seat, player)

			if p.logger != nil {
				p.logger.Debug("status damage applied",
					zap.String("player", string(seat)),
					zap.String("instance_id", instance.InstanceID),
					zap.Int("damage", total),
					zap.Int("remaining_hp", ticked.CurrentHP),
				)
			}

			if ticked.IsKnockedOut() && !instance.IsKnockedOut() {
				knockouts = append(knockouts, Knockout{
					Owner:      seat,
					InstanceID: ticked.InstanceID,
					CardID:     ticked.CardID,
				})
				gs = gs.WithAction(state.ActionSummary{
					ActionID:   uuid.New().String(),
					Player:     seat.Opponent(),
					ActionType: state.ActionAttack,
					Timestamp:  now,
					Data: map[string]any{
						"isKnockedOut":     true,
						"knockoutSource":   state.KnockoutSourceStatusEffect,
						"knockedOutPlayer": string(seat),
						"instanceId":       ticked.InstanceID,
						"cardId":           ticked.CardID,
						"damage":           total,
					},
				})
			}
		}
	}

	return gs, knockouts
}

// tick returns the instance with one round of poison/burn damage
// applied, plus the total damage dealt.
func (p *Processor) tick(instance state.CardInstance) (state.CardInstance, int) {
	total := 0
	if instance.HasStatus(state.StatusPoisoned) {
		amount := instance.PoisonDamageAmount
		if amount <= 0 {
			amount = DefaultPoisonDamage
		}
		total += amount
	}
	if instance.HasStatus(state.StatusBurned) {
		total += DefaultBurnDamage
	}
	if total == 0 {
		return instance, 0
	}
	return instance.WithDamage(total), total
}
