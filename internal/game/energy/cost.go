// Package energy implements attack cost accounting: checking that the
// energy attached to a Pokémon can pay an attack's printed cost, and
// counting the surplus energy that "+" attacks feed on.
package energy

import (
	"fmt"

	"github.com/3jesters/opentcg-server-go/internal/catalog"
)

// CountByType tallies energy by type.
func CountByType(energies []catalog.EnergyType) map[catalog.EnergyType]int {
	counts := make(map[catalog.EnergyType]int, len(energies))
	for _, e := range energies {
		counts[e]++
	}
	return counts
}

// ValidateCost checks that the attached energy can pay the attack cost.
// Typed requirements are matched by exact type first; colorless
// requirements are paid by whatever remains. Errors name the missing
// energy type.
func ValidateCost(cost, attached []catalog.EnergyType) error {
	available := CountByType(attached)

	colorless := 0
	for _, required := range cost {
		if required == catalog.EnergyColorless {
			colorless++
			continue
		}
		if available[required] <= 0 {
			return fmt.Errorf("insufficient %s energy for attack cost", required)
		}
		available[required]--
	}

	remaining := 0
	for _, n := range available {
		remaining += n
	}
	if remaining < colorless {
		return fmt.Errorf("insufficient energy: %d more needed for colorless cost", colorless-remaining)
	}
	return nil
}

// QualifyingExtra counts attached energy of the given type beyond what
// the attack cost requires of that type. This is the unit count the
// damage pipeline caps and multiplies for "+" attacks.
func QualifyingExtra(cost, attached []catalog.EnergyType, typ catalog.EnergyType) int {
	required := 0
	for _, c := range cost {
		if c == typ {
			required++
		}
	}
	have := 0
	for _, a := range attached {
		if a == typ {
			have++
		}
	}
	extra := have - required
	if extra < 0 {
		return 0
	}
	return extra
}
