package catalog

import (
	"context"
	"testing"
)

func TestMemoryCatalogGet(t *testing.T) {
	cat := NewMemoryCatalog(CardMetadata{
		ID:        "base1-58",
		Name:      "Pikachu",
		Supertype: SupertypePokemon,
		Type:      EnergyLightning,
		HP:        40,
		Stage:     StageBasic,
		Attacks: []Attack{
			{Name: "Gnaw", Cost: []EnergyType{EnergyColorless}, Damage: "10"},
		},
		Weakness: &TypeModifier{Type: EnergyFighting, Modifier: "×2"},
	})

	card, err := cat.Get(context.Background(), "base1-58")
	if err != nil {
		t.Fatalf("Expected card, got error %v", err)
	}
	if card.Name != "Pikachu" {
		t.Errorf("Expected Pikachu, got %s", card.Name)
	}
	if !card.IsBasic() {
		t.Error("Expected a basic pokemon")
	}

	if _, err := cat.Get(context.Background(), "missing"); err == nil {
		t.Error("Expected an error for an unknown card")
	}
}

func TestMemoryCatalogReturnsDetachedCopies(t *testing.T) {
	cat := NewMemoryCatalog(CardMetadata{
		ID:        "base1-58",
		Supertype: SupertypePokemon,
		Attacks:   []Attack{{Name: "Gnaw", Cost: []EnergyType{EnergyColorless}}},
		Weakness:  &TypeModifier{Type: EnergyFighting, Modifier: "×2"},
	})

	card, err := cat.Get(context.Background(), "base1-58")
	if err != nil {
		t.Fatal(err)
	}
	card.Attacks[0].Name = "Mutated"
	card.Attacks[0].Cost[0] = EnergyFire
	card.Weakness.Modifier = "+100"

	clean, err := cat.Get(context.Background(), "base1-58")
	if err != nil {
		t.Fatal(err)
	}
	if clean.Attacks[0].Name != "Gnaw" {
		t.Error("Catalog record mutated through a returned attack")
	}
	if clean.Attacks[0].Cost[0] != EnergyColorless {
		t.Error("Catalog record mutated through a returned cost slice")
	}
	if clean.Weakness.Modifier != "×2" {
		t.Error("Catalog record mutated through a returned weakness pointer")
	}
}

func TestMemoryCatalogPutReplaces(t *testing.T) {
	cat := NewMemoryCatalog()
	cat.Put(CardMetadata{ID: "x", Name: "First"})
	cat.Put(CardMetadata{ID: "x", Name: "Second"})

	card, err := cat.Get(context.Background(), "x")
	if err != nil {
		t.Fatal(err)
	}
	if card.Name != "Second" {
		t.Errorf("Expected the replacement record, got %s", card.Name)
	}
}

func TestStageLevel(t *testing.T) {
	tests := []struct {
		stage Stage
		want  int
	}{
		{StageBasic, 0},
		{StageOne, 1},
		{StageTwo, 2},
		{Stage("UNKNOWN"), -1},
	}
	for _, tt := range tests {
		if got := StageLevel(tt.stage); got != tt.want {
			t.Errorf("StageLevel(%s): expected %d, got %d", tt.stage, tt.want, got)
		}
	}
}
