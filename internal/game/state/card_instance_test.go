package state

import "testing"

func TestWithDamageFloorsAtZero(t *testing.T) {
	c := NewCardInstance("inst-1", "base1-58", PositionActive, 50)

	c = c.WithDamage(30)
	if c.CurrentHP != 20 {
		t.Errorf("Expected 20 HP after 30 damage, got %d", c.CurrentHP)
	}
	if c.DamageCounters() != 3 {
		t.Errorf("Expected 3 damage counters, got %d", c.DamageCounters())
	}

	c = c.WithDamage(100)
	if c.CurrentHP != 0 {
		t.Errorf("Expected HP floored at 0, got %d", c.CurrentHP)
	}
	if !c.IsKnockedOut() {
		t.Error("Expected knockout at 0 HP")
	}
}

func TestWithHealingCapsAtMaxHP(t *testing.T) {
	c := NewCardInstance("inst-1", "base1-58", PositionActive, 50).WithDamage(20)

	c = c.WithHealing(10)
	if c.CurrentHP != 40 {
		t.Errorf("Expected 40 HP, got %d", c.CurrentHP)
	}

	c = c.WithHealing(100)
	if c.CurrentHP != 50 {
		t.Errorf("Expected healing capped at MaxHP 50, got %d", c.CurrentHP)
	}
}

func TestWithStatusExclusiveDisplacement(t *testing.T) {
	c := NewCardInstance("inst-1", "base1-58", PositionActive, 50)

	c = c.WithStatus(StatusAsleep)
	c = c.WithStatus(StatusPoisoned)
	c = c.WithStatus(StatusParalyzed)

	if c.HasStatus(StatusAsleep) {
		t.Error("Paralysis should displace sleep")
	}
	if !c.HasStatus(StatusParalyzed) {
		t.Error("Expected paralysis to remain")
	}
	if !c.HasStatus(StatusPoisoned) {
		t.Error("Poison should survive displacement of exclusive conditions")
	}

	// Poison does not duplicate.
	c = c.WithStatus(StatusPoisoned)
	count := 0
	for _, s := range c.StatusEffects {
		if s == StatusPoisoned {
			count++
		}
	}
	if count != 1 {
		t.Errorf("Expected poison recorded once, got %d", count)
	}
}

func TestWithoutEnergyRemovesFirstOccurrence(t *testing.T) {
	c := NewCardInstance("inst-1", "base1-58", PositionActive, 50).
		WithAttachedEnergy("energy-a").
		WithAttachedEnergy("energy-a").
		WithAttachedEnergy("energy-b")

	c, removed := c.WithoutEnergy("energy-a", "energy-c")
	if len(removed) != 1 || removed[0] != "energy-a" {
		t.Fatalf("Expected only energy-a removed, got %v", removed)
	}
	if len(c.AttachedEnergy) != 2 {
		t.Errorf("Expected 2 energy remaining, got %d", len(c.AttachedEnergy))
	}
}

func TestWithEvolutionCarriesDamageAndClearsStatus(t *testing.T) {
	c := NewCardInstance("inst-1", "base1-63", PositionActive, 40).
		WithDamage(20).
		WithStatus(StatusAsleep).
		WithAttachedEnergy("energy-a")

	evolved := c.WithEvolution("base1-35", 70, 3)

	if evolved.CardID != "base1-35" {
		t.Errorf("Expected card id base1-35, got %s", evolved.CardID)
	}
	if evolved.InstanceID != "inst-1" {
		t.Error("Instance id must be stable across evolution")
	}
	if evolved.CurrentHP != 50 {
		t.Errorf("Expected 70 max HP minus 20 carried damage = 50, got %d", evolved.CurrentHP)
	}
	if len(evolved.StatusEffects) != 0 {
		t.Errorf("Evolution should clear conditions, got %v", evolved.StatusEffects)
	}
	if len(evolved.EvolutionChain) != 1 || evolved.EvolutionChain[0] != "base1-63" {
		t.Errorf("Expected evolution chain [base1-63], got %v", evolved.EvolutionChain)
	}
	if len(evolved.AttachedEnergy) != 1 {
		t.Error("Evolution should keep attached energy")
	}
	if evolved.EvolvedAt != 3 {
		t.Errorf("Expected EvolvedAt 3, got %d", evolved.EvolvedAt)
	}
}
