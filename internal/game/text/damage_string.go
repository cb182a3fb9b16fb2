package text

import (
	"fmt"
	"strconv"
	"strings"
)

// DamageModifier is the suffix on a printed damage value.
type DamageModifier string

const (
	DamageFixed DamageModifier = ""  // plain number
	DamagePlus  DamageModifier = "+" // text adds bonus damage
	DamageTimes DamageModifier = "×" // damage multiplied (coin flips etc.)
	DamageMinus DamageModifier = "-" // text reduces damage
)

// ParseDamage parses a printed attack damage string: "30", "30+",
// "30×", "50-" or "" for attacks without direct damage.
func ParseDamage(damage string) (int, DamageModifier, error) {
	s := strings.TrimSpace(damage)
	if s == "" {
		return 0, DamageFixed, nil
	}

	modifier := DamageFixed
	switch {
	case strings.HasSuffix(s, "+"):
		modifier = DamagePlus
		s = strings.TrimSuffix(s, "+")
	case strings.HasSuffix(s, "×"):
		modifier = DamageTimes
		s = strings.TrimSuffix(s, "×")
	case strings.HasSuffix(s, "x"), strings.HasSuffix(s, "X"):
		modifier = DamageTimes
		s = s[:len(s)-1]
	case strings.HasSuffix(s, "-"):
		modifier = DamageMinus
		s = strings.TrimSuffix(s, "-")
	}

	base, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, DamageFixed, fmt.Errorf("unparseable damage string %q", damage)
	}
	if base < 0 {
		return 0, DamageFixed, fmt.Errorf("negative damage string %q", damage)
	}
	return base, modifier, nil
}
