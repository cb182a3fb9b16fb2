package state

import "fmt"

// PlayerIdentifier names one of the two seats in a match.
type PlayerIdentifier string

const (
	PlayerOne PlayerIdentifier = "PLAYER_ONE"
	PlayerTwo PlayerIdentifier = "PLAYER_TWO"
)

// Opponent returns the other seat.
func (p PlayerIdentifier) Opponent() PlayerIdentifier {
	if p == PlayerOne {
		return PlayerTwo
	}
	return PlayerOne
}

// Valid reports whether p is one of the two known seats.
func (p PlayerIdentifier) Valid() bool {
	return p == PlayerOne || p == PlayerTwo
}

// TurnPhase is the sub-state within a player's turn.
type TurnPhase string

const (
	PhaseDraw         TurnPhase = "DRAW"
	PhaseMain         TurnPhase = "MAIN_PHASE"
	PhaseAttack       TurnPhase = "ATTACK"
	PhaseEnd          TurnPhase = "END"
	PhaseSelectActive TurnPhase = "SELECT_ACTIVE_POKEMON"
	PhaseBetweenTurns TurnPhase = "BETWEEN_TURNS"
)

// PlayerActionType enumerates every action a player can submit.
type PlayerActionType string

const (
	ActionAttack           PlayerActionType = "ATTACK"
	ActionEvolvePokemon    PlayerActionType = "EVOLVE_POKEMON"
	ActionAttachEnergy     PlayerActionType = "ATTACH_ENERGY"
	ActionPlayPokemon      PlayerActionType = "PLAY_POKEMON"
	ActionRetreat          PlayerActionType = "RETREAT"
	ActionSetActivePokemon PlayerActionType = "SET_ACTIVE_POKEMON"
	ActionSelectPrize      PlayerActionType = "SELECT_PRIZE"
	ActionEndTurn          PlayerActionType = "END_TURN"
	ActionGenerateCoinFlip PlayerActionType = "GENERATE_COIN_FLIP"
	ActionUseAbility       PlayerActionType = "USE_ABILITY"
	ActionUseTrainer       PlayerActionType = "USE_TRAINER"
	ActionConcede          PlayerActionType = "CONCEDE"

	// ActionConfirmSetup finishes a player's bench placement during the
	// pre-game setup flow.
	ActionConfirmSetup PlayerActionType = "CONFIRM_SETUP"
)

// BoardPosition is a slot on a player's side of the board.
type BoardPosition string

const (
	PositionActive BoardPosition = "ACTIVE"
	PositionBench0 BoardPosition = "BENCH_0"
	PositionBench1 BoardPosition = "BENCH_1"
	PositionBench2 BoardPosition = "BENCH_2"
	PositionBench3 BoardPosition = "BENCH_3"
	PositionBench4 BoardPosition = "BENCH_4"
)

// BenchSize is the maximum number of benched Pokémon per player.
const BenchSize = 5

// BenchPosition returns the position for bench index i.
func BenchPosition(i int) (BoardPosition, error) {
	if i < 0 || i >= BenchSize {
		return "", fmt.Errorf("bench index %d out of range [0,%d)", i, BenchSize)
	}
	return BoardPosition(fmt.Sprintf("BENCH_%d", i)), nil
}

// BenchIndex returns the bench index encoded in p, or false when p is
// not a bench position.
func (p BoardPosition) BenchIndex() (int, bool) {
	switch p {
	case PositionBench0:
		return 0, true
	case PositionBench1:
		return 1, true
	case PositionBench2:
		return 2, true
	case PositionBench3:
		return 3, true
	case PositionBench4:
		return 4, true
	default:
		return 0, false
	}
}

// StatusEffect is a special condition on a Pokémon instance.
type StatusEffect string

const (
	StatusPoisoned  StatusEffect = "POISONED"
	StatusBurned    StatusEffect = "BURNED"
	StatusAsleep    StatusEffect = "ASLEEP"
	StatusParalyzed StatusEffect = "PARALYZED"
	StatusConfused  StatusEffect = "CONFUSED"
)

// exclusive reports whether the condition displaces the other
// rotation conditions (asleep/paralyzed/confused replace one another;
// poison and burn stack alongside).
func (s StatusEffect) exclusive() bool {
	return s == StatusAsleep || s == StatusParalyzed || s == StatusConfused
}

// KnockoutSourceStatusEffect marks a knockout synthesized by
// between-turns status processing rather than an attack.
const KnockoutSourceStatusEffect = "STATUS_EFFECT"

// KnockoutSourceAttack marks a knockout caused by attack damage.
const KnockoutSourceAttack = "ATTACK"
