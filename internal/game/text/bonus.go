package text

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/3jesters/opentcg-server-go/internal/catalog"
)

// BonusRule describes a "+" attack's extra damage: N more damage per
// qualifying unit, where the unit is an attached energy of a given type
// beyond the attack's printed cost.
type BonusRule struct {
	PerUnit    int
	EnergyType catalog.EnergyType
}

// ReductionRule describes a "-" attack's damage reduction: N less
// damage per damage counter on the attacking Pokémon.
type ReductionRule struct {
	PerCounter int
}

var (
	bonusPerEnergyRe = regexp.MustCompile(`(?i)(\d+) more damage for each ([A-Za-z]+) Energy`)
	minusPerCounterRe = regexp.MustCompile(`(?i)minus (\d+) damage for each damage counter`)
	lessPerCounterRe  = regexp.MustCompile(`(?i)(\d+) less damage for each damage counter`)
)

var energyTypeNames = map[string]catalog.EnergyType{
	"colorless": catalog.EnergyColorless,
	"fire":      catalog.EnergyFire,
	"water":     catalog.EnergyWater,
	"grass":     catalog.EnergyGrass,
	"lightning": catalog.EnergyLightning,
	"psychic":   catalog.EnergyPsychic,
	"fighting":  catalog.EnergyFighting,
	"darkness":  catalog.EnergyDarkness,
	"metal":     catalog.EnergyMetal,
}

// ParseBonus extracts the bonus-damage rule behind a "+" damage string.
// The second return is false when the text encodes no recognized rule.
func ParseBonus(text string) (BonusRule, bool) {
	m := bonusPerEnergyRe.FindStringSubmatch(text)
	if m == nil {
		return BonusRule{}, false
	}
	perUnit, _ := strconv.Atoi(m[1])
	energyType, ok := energyTypeNames[strings.ToLower(m[2])]
	if !ok {
		return BonusRule{}, false
	}
	return BonusRule{PerUnit: perUnit, EnergyType: energyType}, true
}

// ParseReduction extracts the self-damage-counter reduction rule behind
// a "-" damage string ("minus 10 damage for each damage counter on this
// Pokémon"). The second return is false when no rule is recognized.
func ParseReduction(text string) (ReductionRule, bool) {
	if m := minusPerCounterRe.FindStringSubmatch(text); m != nil {
		perCounter, _ := strconv.Atoi(m[1])
		return ReductionRule{PerCounter: perCounter}, true
	}
	if m := lessPerCounterRe.FindStringSubmatch(text); m != nil {
		perCounter, _ := strconv.Atoi(m[1])
		return ReductionRule{PerCounter: perCounter}, true
	}
	return ReductionRule{}, false
}
