package state

// CardInstance is a Pokémon in play. The instance id is stable across
// position changes and evolutions; all mutation goes through With
// producers that return a modified copy.
type CardInstance struct {
	InstanceID     string         `json:"instanceId"`
	CardID         string         `json:"cardId"`
	Position       BoardPosition  `json:"position"`
	CurrentHP      int            `json:"currentHp"`
	MaxHP          int            `json:"maxHp"`
	AttachedEnergy []string       `json:"attachedEnergy,omitempty"`
	StatusEffects  []StatusEffect `json:"statusEffects,omitempty"`

	// EvolutionChain holds the card ids of prior forms, oldest first,
	// kept for devolution effects and auditing.
	EvolutionChain []string `json:"evolutionChain,omitempty"`

	// PoisonDamageAmount overrides the default between-turns poison
	// damage when > 0 (some attacks poison for 20).
	PoisonDamageAmount int `json:"poisonDamageAmount,omitempty"`

	// EvolvedAt is the turn number of the most recent evolution of this
	// instance, 0 if it has never evolved.
	EvolvedAt int `json:"evolvedAt,omitempty"`
}

// NewCardInstance creates a Pokémon in play at full HP.
func NewCardInstance(instanceID, cardID string, position BoardPosition, maxHP int) CardInstance {
	return CardInstance{
		InstanceID: instanceID,
		CardID:     cardID,
		Position:   position,
		CurrentHP:  maxHP,
		MaxHP:      maxHP,
	}
}

func (c CardInstance) clone() CardInstance {
	out := c
	out.AttachedEnergy = append([]string(nil), c.AttachedEnergy...)
	out.StatusEffects = append([]StatusEffect(nil), c.StatusEffects...)
	out.EvolutionChain = append([]string(nil), c.EvolutionChain...)
	return out
}

// DamageCounters returns the number of 10-damage counters on the Pokémon.
func (c CardInstance) DamageCounters() int {
	damage := c.MaxHP - c.CurrentHP
	if damage <= 0 {
		return 0
	}
	return damage / 10
}

// IsKnockedOut reports whether the Pokémon has no HP left.
func (c CardInstance) IsKnockedOut() bool {
	return c.CurrentHP <= 0
}

// HasStatus reports whether the given condition is on the Pokémon.
func (c CardInstance) HasStatus(effect StatusEffect) bool {
	for _, s := range c.StatusEffects {
		if s == effect {
			return true
		}
	}
	return false
}

// WithPosition returns a copy at the given board position.
func (c CardInstance) WithPosition(position BoardPosition) CardInstance {
	out := c.clone()
	out.Position = position
	return out
}

// WithDamage returns a copy with amount damage applied. HP never drops
// below zero.
func (c CardInstance) WithDamage(amount int) CardInstance {
	out := c.clone()
	out.CurrentHP -= amount
	if out.CurrentHP < 0 {
		out.CurrentHP = 0
	}
	return out
}

// WithHealing returns a copy with amount HP restored, capped at MaxHP.
func (c CardInstance) WithHealing(amount int) CardInstance {
	out := c.clone()
	out.CurrentHP += amount
	if out.CurrentHP > out.MaxHP {
		out.CurrentHP = out.MaxHP
	}
	return out
}

// WithAttachedEnergy returns a copy with the energy card attached.
func (c CardInstance) WithAttachedEnergy(energyCardID string) CardInstance {
	out := c.clone()
	out.AttachedEnergy = append(out.AttachedEnergy, energyCardID)
	return out
}

// WithoutEnergy returns a copy with the first occurrence of each given
// energy card id removed, plus the ids actually removed.
func (c CardInstance) WithoutEnergy(energyCardIDs ...string) (CardInstance, []string) {
	out := c.clone()
	removed := make([]string, 0, len(energyCardIDs))
	for _, id := range energyCardIDs {
		var ok bool
		out.AttachedEnergy, ok = removeFirst(out.AttachedEnergy, id)
		if ok {
			removed = append(removed, id)
		}
	}
	return out, removed
}

// WithStatus returns a copy with the condition applied. Asleep,
// paralyzed and confused displace one another; poison and burn stack.
func (c CardInstance) WithStatus(effect StatusEffect) CardInstance {
	out := c.clone()
	if effect.exclusive() {
		kept := out.StatusEffects[:0]
		for _, s := range out.StatusEffects {
			if !s.exclusive() {
				kept = append(kept, s)
			}
		}
		out.StatusEffects = kept
	} else if out.HasStatus(effect) {
		return out
	}
	out.StatusEffects = append(out.StatusEffects, effect)
	return out
}

// WithoutStatus returns a copy with the condition removed.
func (c CardInstance) WithoutStatus(effect StatusEffect) CardInstance {
	out := c.clone()
	kept := out.StatusEffects[:0]
	for _, s := range out.StatusEffects {
		if s != effect {
			kept = append(kept, s)
		}
	}
	out.StatusEffects = kept
	return out
}

// WithoutAllStatus returns a copy cleared of every condition.
func (c CardInstance) WithoutAllStatus() CardInstance {
	out := c.clone()
	out.StatusEffects = nil
	return out
}

// WithPoisonAmount returns a copy with an overridden per-tick poison
// damage amount.
func (c CardInstance) WithPoisonAmount(amount int) CardInstance {
	out := c.clone()
	out.PoisonDamageAmount = amount
	return out
}

// WithEvolution returns a copy evolved into the card evolvedCardID.
// Damage and attached energy carry over, the prior card id is recorded
// in the evolution chain, and all special conditions are removed.
func (c CardInstance) WithEvolution(evolvedCardID string, newMaxHP, turnNumber int) CardInstance {
	out := c.clone()
	damage := out.MaxHP - out.CurrentHP
	out.EvolutionChain = append(out.EvolutionChain, out.CardID)
	out.CardID = evolvedCardID
	out.MaxHP = newMaxHP
	out.CurrentHP = newMaxHP - damage
	if out.CurrentHP < 0 {
		out.CurrentHP = 0
	}
	out.StatusEffects = nil
	out.EvolvedAt = turnNumber
	return out
}

// removeFirst removes the first occurrence of id from seq, returning a
// new slice and whether the id was present.
func removeFirst(seq []string, id string) ([]string, bool) {
	for i, v := range seq {
		if v == id {
			out := make([]string, 0, len(seq)-1)
			out = append(out, seq[:i]...)
			out = append(out, seq[i+1:]...)
			return out, true
		}
	}
	return seq, false
}
