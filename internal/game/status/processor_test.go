package status

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3jesters/opentcg-server-go/internal/game/state"
)

func boardWith(seat state.PlayerIdentifier, active state.CardInstance) state.GameState {
	player := state.PlayerGameState{}.WithActive(&active)
	gs := state.GameState{TurnNumber: 2, CurrentPlayer: seat}
	return gs.WithPlayer(seat, player)
}

func TestProcessEndOfTurnPoisonTick(t *testing.T) {
	active := state.NewCardInstance("inst-1", "base1-58", state.PositionActive, 50).
		WithStatus(state.StatusPoisoned)
	gs := boardWith(state.PlayerOne, active)

	out, knockouts := NewProcessor(nil).ProcessEndOfTurn(gs, time.Now())

	require.Empty(t, knockouts)
	ticked, ok := out.Player(state.PlayerOne).PokemonByInstanceID("inst-1")
	require.True(t, ok)
	assert.Equal(t, 40, ticked.CurrentHP)
}

func TestProcessEndOfTurnPoisonAmountOverride(t *testing.T) {
	active := state.NewCardInstance("inst-1", "base1-58", state.PositionActive, 50).
		WithStatus(state.StatusPoisoned).
		WithPoisonAmount(20)
	gs := boardWith(state.PlayerOne, active)

	out, _ := NewProcessor(nil).ProcessEndOfTurn(gs, time.Now())

	ticked, ok := out.Player(state.PlayerOne).PokemonByInstanceID("inst-1")
	require.True(t, ok)
	assert.Equal(t, 30, ticked.CurrentHP)
}

func TestProcessEndOfTurnPoisonAndBurnStack(t *testing.T) {
	active := state.NewCardInstance("inst-1", "base1-58", state.PositionActive, 50).
		WithStatus(state.StatusPoisoned).
		WithStatus(state.StatusBurned)
	gs := boardWith(state.PlayerTwo, active)

	out, _ := NewProcessor(nil).ProcessEndOfTurn(gs, time.Now())

	ticked, ok := out.Player(state.PlayerTwo).PokemonByInstanceID("inst-1")
	require.True(t, ok)
	assert.Equal(t, 20, ticked.CurrentHP, "10 poison + 20 burn")
}

func TestProcessEndOfTurnKnockoutSynthesizesLogEntry(t *testing.T) {
	active := state.NewCardInstance("inst-1", "base1-58", state.PositionActive, 50).
		WithDamage(40).
		WithStatus(state.StatusPoisoned)
	gs := boardWith(state.PlayerOne, active)

	now := time.Now()
	out, knockouts := NewProcessor(nil).ProcessEndOfTurn(gs, now)

	require.Len(t, knockouts, 1)
	assert.Equal(t, state.PlayerOne, knockouts[0].Owner)
	assert.Equal(t, "inst-1", knockouts[0].InstanceID)
	assert.Equal(t, "base1-58", knockouts[0].CardID)

	require.NotNil(t, out.LastAction)
	entry := *out.LastAction
	// The synthetic entry credits the opponent, who takes the prize.
	assert.Equal(t, state.PlayerTwo, entry.Player)
	assert.True(t, entry.Bool("isKnockedOut"))
	assert.Equal(t, state.KnockoutSourceStatusEffect, entry.String("knockoutSource"))
	assert.Equal(t, string(state.PlayerOne), entry.String("knockedOutPlayer"))
	assert.Equal(t, "inst-1", entry.String("instanceId"))
}

func TestProcessEndOfTurnIgnoresPointOfUseConditions(t *testing.T) {
	active := state.NewCardInstance("inst-1", "base1-58", state.PositionActive, 50).
		WithStatus(state.StatusAsleep)
	gs := boardWith(state.PlayerOne, active)

	out, knockouts := NewProcessor(nil).ProcessEndOfTurn(gs, time.Now())

	require.Empty(t, knockouts)
	unchanged, ok := out.Player(state.PlayerOne).PokemonByInstanceID("inst-1")
	require.True(t, ok)
	assert.Equal(t, 50, unchanged.CurrentHP)
}

func TestProcessEndOfTurnTicksBenchToo(t *testing.T) {
	active := state.NewCardInstance("inst-1", "base1-58", state.PositionActive, 50)
	benched := state.NewCardInstance("inst-2", "base1-46", state.PositionBench0, 40).
		WithStatus(state.StatusBurned)

	player := state.PlayerGameState{}.WithActive(&active)
	player, err := player.WithBenchAdded(benched)
	if err != nil {
		t.Fatal(err)
	}
	gs := state.GameState{TurnNumber: 2}.WithPlayer(state.PlayerOne, player)

	out, _ := NewProcessor(nil).ProcessEndOfTurn(gs, time.Now())

	ticked, ok := out.Player(state.PlayerOne).PokemonByInstanceID("inst-2")
	require.True(t, ok)
	assert.Equal(t, 20, ticked.CurrentHP)
}
