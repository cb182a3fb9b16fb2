package text

import "testing"

func TestParseDamage(t *testing.T) {
	tests := []struct {
		input    string
		base     int
		modifier DamageModifier
		err      bool
	}{
		{"", 0, DamageFixed, false},
		{"10", 10, DamageFixed, false},
		{"30", 30, DamageFixed, false},
		{"30+", 30, DamagePlus, false},
		{"30×", 30, DamageTimes, false},
		{"30x", 30, DamageTimes, false},
		{"30X", 30, DamageTimes, false},
		{"50-", 50, DamageMinus, false},
		{" 40 ", 40, DamageFixed, false},
		{"abc", 0, DamageFixed, true},
		{"thirty", 0, DamageFixed, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			base, modifier, err := ParseDamage(tt.input)
			if tt.err {
				if err == nil {
					t.Errorf("Expected error for %q, got nil", tt.input)
				}
				return
			}
			if err != nil {
				t.Errorf("Unexpected error for %q: %v", tt.input, err)
				return
			}
			if base != tt.base {
				t.Errorf("Base: expected %d, got %d", tt.base, base)
			}
			if modifier != tt.modifier {
				t.Errorf("Modifier: expected %q, got %q", tt.modifier, modifier)
			}
		})
	}
}
