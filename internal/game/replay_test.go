package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3jesters/opentcg-server-go/internal/game/state"
)

func snapshotAtTurn(turn int) state.GameState {
	return state.GameState{TurnNumber: turn, Phase: state.PhaseMain, CurrentPlayer: state.PlayerOne}
}

func TestReplayPlayback(t *testing.T) {
	replay := NewReplay("match-1")
	for turn := 1; turn <= 3; turn++ {
		replay.RecordState(snapshotAtTurn(turn))
	}
	assert.Equal(t, 3, replay.Size())

	replay.Start()
	for turn := 1; turn <= 3; turn++ {
		gs, ok := replay.Next()
		require.True(t, ok)
		assert.Equal(t, turn, gs.TurnNumber)
	}
	_, ok := replay.Next()
	assert.False(t, ok, "playback past the end")

	gs, ok := replay.Previous()
	require.True(t, ok)
	assert.Equal(t, 3, gs.TurnNumber)
}

func TestReplaySkipClamps(t *testing.T) {
	replay := NewReplay("match-1")
	for turn := 1; turn <= 5; turn++ {
		replay.RecordState(snapshotAtTurn(turn))
	}
	replay.Start()

	gs, ok := replay.Skip(2)
	require.True(t, ok)
	assert.Equal(t, 3, gs.TurnNumber)

	gs, ok = replay.Skip(100)
	require.True(t, ok)
	assert.Equal(t, 5, gs.TurnNumber, "forward skip clamps to the last snapshot")

	gs, ok = replay.Skip(-100)
	require.True(t, ok)
	assert.Equal(t, 1, gs.TurnNumber, "backward skip clamps to the first snapshot")
}

func TestReplayStateAt(t *testing.T) {
	replay := NewReplay("match-1")
	replay.RecordState(snapshotAtTurn(1))
	replay.RecordState(snapshotAtTurn(2))

	gs, ok := replay.StateAt(1)
	require.True(t, ok)
	assert.Equal(t, 2, gs.TurnNumber)

	_, ok = replay.StateAt(5)
	assert.False(t, ok)
	_, ok = replay.StateAt(-1)
	assert.False(t, ok)
}

func TestReplaySaveAndLoad(t *testing.T) {
	dir := t.TempDir()

	replay := NewReplay("match-1")
	for turn := 1; turn <= 4; turn++ {
		replay.RecordState(snapshotAtTurn(turn))
	}
	require.NoError(t, replay.SaveToFile(dir))

	loaded, err := LoadReplayFromFile(dir, "match-1")
	require.NoError(t, err)
	assert.Equal(t, "match-1", loaded.MatchID)
	assert.Equal(t, 4, loaded.Size())

	gs, ok := loaded.StateAt(3)
	require.True(t, ok)
	assert.Equal(t, 4, gs.TurnNumber)
}

func TestLoadReplayMissingFile(t *testing.T) {
	_, err := LoadReplayFromFile(t.TempDir(), "no-such-match")
	require.Error(t, err)
}

func TestReplayRecorderLifecycle(t *testing.T) {
	dir := t.TempDir()
	recorder := NewReplayRecorder(nil, dir)

	recorder.StartRecording("match-1")
	assert.True(t, recorder.IsRecording("match-1"))

	recorder.RecordState("match-1", snapshotAtTurn(1))
	recorder.RecordState("match-1", snapshotAtTurn(2))

	recorder.StopRecording("match-1")
	assert.False(t, recorder.IsRecording("match-1"))
	recorder.RecordState("match-1", snapshotAtTurn(3))

	replay, exists := recorder.Replay("match-1")
	require.True(t, exists)
	assert.Equal(t, 2, replay.Size(), "states after StopRecording are dropped")

	require.NoError(t, recorder.SaveReplay("match-1"))
	_, exists = recorder.Replay("match-1")
	assert.False(t, exists, "saving evicts the in-memory replay")

	loaded, err := recorder.LoadReplay("match-1")
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Size())
}

func TestReplayRecorderIgnoresUnknownMatch(t *testing.T) {
	recorder := NewReplayRecorder(nil, t.TempDir())

	recorder.RecordState("unknown", snapshotAtTurn(1))
	_, exists := recorder.Replay("unknown")
	assert.False(t, exists)

	require.Error(t, recorder.SaveReplay("unknown"))
}
