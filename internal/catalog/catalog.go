package catalog

import "context"

// EnergyType enumerates the energy colors used by attack costs,
// weakness/resistance matching and energy card provision.
type EnergyType string

const (
	EnergyColorless EnergyType = "COLORLESS"
	EnergyFire      EnergyType = "FIRE"
	EnergyWater     EnergyType = "WATER"
	EnergyGrass     EnergyType = "GRASS"
	EnergyLightning EnergyType = "LIGHTNING"
	EnergyPsychic   EnergyType = "PSYCHIC"
	EnergyFighting  EnergyType = "FIGHTING"
	EnergyDarkness  EnergyType = "DARKNESS"
	EnergyMetal     EnergyType = "METAL"
)

// Supertype distinguishes the three broad card categories.
type Supertype string

const (
	SupertypePokemon Supertype = "POKEMON"
	SupertypeTrainer Supertype = "TRAINER"
	SupertypeEnergy  Supertype = "ENERGY"
)

// Stage is the evolution stage of a Pokémon card.
type Stage string

const (
	StageBasic  Stage = "BASIC"
	StageOne    Stage = "STAGE_1"
	StageTwo    Stage = "STAGE_2"
)

// StageLevel maps a stage to its numeric level for "exactly one level
// above" evolution checks. Unknown stages map to -1.
func StageLevel(s Stage) int {
	switch s {
	case StageBasic:
		return 0
	case StageOne:
		return 1
	case StageTwo:
		return 2
	default:
		return -1
	}
}

// Attack is one attack printed on a Pokémon card.
// Damage is the printed damage string: "30", "30+", "30×", "50-" or ""
// for attacks that deal no direct damage. Text carries the rules text
// the parsers interpret. EnergyBonusCap, when > 0, caps the number of
// extra qualifying energy counted by "+" attacks.
type Attack struct {
	Name           string       `json:"name"`
	Cost           []EnergyType `json:"cost"`
	Damage         string       `json:"damage"`
	Text           string       `json:"text"`
	EnergyBonusCap int          `json:"energyBonusCap,omitempty"`
}

// Ability is a once-per-activation Pokémon power.
type Ability struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// TypeModifier is a weakness or resistance entry: the attacking energy
// type it applies against and the printed modifier ("×2", "+10", "-30").
type TypeModifier struct {
	Type     EnergyType `json:"type"`
	Modifier string     `json:"modifier"`
}

// EffectSpec is the structured, data-only description of one effect a
// trainer card or ability carries. The effects package decodes specs
// into its executable variants; unknown kinds are decoding errors, not
// silent no-ops.
type EffectSpec struct {
	Kind       string     `json:"kind"`
	Amount     int        `json:"amount,omitempty"`
	Count      int        `json:"count,omitempty"`
	CardID     string     `json:"cardId,omitempty"`
	EnergyType EnergyType `json:"energyType,omitempty"`
	Condition  string     `json:"condition,omitempty"`
}

// CardMetadata is the immutable catalog record for a card. The engine
// reads it through the CardCatalog port and never mutates it.
type CardMetadata struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Supertype   Supertype     `json:"supertype"`
	Type        EnergyType    `json:"type,omitempty"`
	HP          int           `json:"hp,omitempty"`
	Stage       Stage         `json:"stage,omitempty"`
	EvolvesFrom string        `json:"evolvesFrom,omitempty"`
	Attacks     []Attack      `json:"attacks,omitempty"`
	Ability     *Ability      `json:"ability,omitempty"`
	Weakness    *TypeModifier `json:"weakness,omitempty"`
	Resistance  *TypeModifier `json:"resistance,omitempty"`
	RetreatCost int           `json:"retreatCost,omitempty"`

	// AbilityEffects and TrainerEffects are the structured effect lists
	// behind the ability text / trainer card text.
	AbilityEffects []EffectSpec `json:"abilityEffects,omitempty"`
	TrainerEffects []EffectSpec `json:"trainerEffects,omitempty"`

	// ProvidesEnergy is set for energy cards: the type a single copy
	// provides when attached.
	ProvidesEnergy EnergyType `json:"providesEnergy,omitempty"`
}

// IsPokemon reports whether the card can be put in play as a Pokémon.
func (m CardMetadata) IsPokemon() bool {
	return m.Supertype == SupertypePokemon
}

// IsBasic reports whether the card is a Basic Pokémon.
func (m CardMetadata) IsBasic() bool {
	return m.Supertype == SupertypePokemon && m.Stage == StageBasic
}

// AttackByName returns the attack with the given name, if present.
func (m CardMetadata) AttackByName(name string) (Attack, bool) {
	for _, atk := range m.Attacks {
		if atk.Name == name {
			return atk, true
		}
	}
	return Attack{}, false
}

// CardCatalog resolves a card id to its immutable metadata.
// Implementations are read-only from the engine's point of view.
type CardCatalog interface {
	Get(ctx context.Context, cardID string) (CardMetadata, error)
}
