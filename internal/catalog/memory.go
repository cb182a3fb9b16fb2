package catalog

import (
	"context"
	"fmt"
	"sync"
)

// MemoryCatalog is an in-memory CardCatalog keyed by card id. It backs
// tests and engine-only deployments; production wiring can substitute a
// database-backed catalog behind the same interface.
type MemoryCatalog struct {
	mu    sync.RWMutex
	cards map[string]CardMetadata
}

// NewMemoryCatalog creates a catalog preloaded with the given cards.
func NewMemoryCatalog(cards ...CardMetadata) *MemoryCatalog {
	c := &MemoryCatalog{cards: make(map[string]CardMetadata, len(cards))}
	for _, card := range cards {
		c.cards[card.ID] = card
	}
	return c
}

// Put registers or replaces a card definition.
func (c *MemoryCatalog) Put(card CardMetadata) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cards[card.ID] = card
}

// Get returns the metadata for cardID. The returned value is a copy;
// callers cannot mutate catalog state through it.
func (c *MemoryCatalog) Get(_ context.Context, cardID string) (CardMetadata, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	card, ok := c.cards[cardID]
	if !ok {
		return CardMetadata{}, fmt.Errorf("card %s not found in catalog", cardID)
	}

	// Deep-copy slice and pointer fields so the stored record stays immutable.
	out := card
	if len(card.Attacks) > 0 {
		out.Attacks = make([]Attack, len(card.Attacks))
		copy(out.Attacks, card.Attacks)
		for i := range out.Attacks {
			out.Attacks[i].Cost = append([]EnergyType(nil), card.Attacks[i].Cost...)
		}
	}
	if card.Ability != nil {
		ability := *card.Ability
		out.Ability = &ability
	}
	if card.Weakness != nil {
		weakness := *card.Weakness
		out.Weakness = &weakness
	}
	if card.Resistance != nil {
		resistance := *card.Resistance
		out.Resistance = &resistance
	}
	out.AbilityEffects = append([]EffectSpec(nil), card.AbilityEffects...)
	out.TrainerEffects = append([]EffectSpec(nil), card.TrainerEffects...)
	return out, nil
}
