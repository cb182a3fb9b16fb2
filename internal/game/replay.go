package game

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/3jesters/opentcg-server-go/internal/game/state"
)

// Replay holds the sequential game states of one match for playback.
// Every successful action appends a snapshot, so stepping through the
// replay reproduces the match move by move.
type Replay struct {
	MatchID      string
	States       []state.GameState
	CurrentIndex int
	mu           sync.RWMutex
}

// NewReplay creates an empty replay for a match.
func NewReplay(matchID string) *Replay {
	return &Replay{MatchID: matchID}
}

// RecordState appends a snapshot to the replay.
func (r *Replay) RecordState(gs state.GameState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.States = append(r.States, gs)
}

// Start resets playback to the beginning.
func (r *Replay) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.CurrentIndex = 0
}

// Next returns the next snapshot, or false at the end.
func (r *Replay) Next() (state.GameState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.CurrentIndex >= len(r.States) {
		return state.GameState{}, false
	}
	gs := r.States[r.CurrentIndex]
	r.CurrentIndex++
	return gs, true
}

// Previous steps playback back one snapshot.
func (r *Replay) Previous() (state.GameState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.CurrentIndex == 0 {
		return state.GameState{}, false
	}
	r.CurrentIndex--
	return r.States[r.CurrentIndex], true
}

// Skip moves playback forward or backward by count snapshots, clamped
// to the recorded range.
func (r *Replay) Skip(count int) (state.GameState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	next := r.CurrentIndex + count
	if next >= len(r.States) {
		next = len(r.States) - 1
	}
	if next < 0 {
		next = 0
	}
	r.CurrentIndex = next
	if next >= len(r.States) {
		return state.GameState{}, false
	}
	return r.States[next], true
}

// Size returns the number of recorded snapshots.
func (r *Replay) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.States)
}

// StateAt returns the snapshot at the given index.
func (r *Replay) StateAt(index int) (state.GameState, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if index < 0 || index >= len(r.States) {
		return state.GameState{}, false
	}
	return r.States[index], true
}

// replayFile is the on-disk form: metadata followed by the snapshots.
type replayFile struct {
	MatchID    string            `json:"matchId"`
	Timestamp  time.Time         `json:"timestamp"`
	Version    int               `json:"version"`
	StateCount int               `json:"stateCount"`
	States     []state.GameState `json:"states"`
}

const replayFileVersion = 1

// SaveToFile writes the replay as a gzipped JSON file named after the
// match.
func (r *Replay) SaveToFile(directory string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := os.MkdirAll(directory, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	filename := filepath.Join(directory, fmt.Sprintf("%s.replay", r.MatchID))
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	defer gzipWriter.Close()

	payload := replayFile{
		MatchID:    r.MatchID,
		Timestamp:  time.Now().UTC(),
		Version:    replayFileVersion,
		StateCount: len(r.States),
		States:     r.States,
	}
	if err := json.NewEncoder(gzipWriter).Encode(&payload); err != nil {
		return fmt.Errorf("failed to encode replay: %w", err)
	}
	return nil
}

// LoadReplayFromFile restores a replay saved by SaveToFile.
func LoadReplayFromFile(directory, matchID string) (*Replay, error) {
	filename := filepath.Join(directory, fmt.Sprintf("%s.replay", matchID))
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	gzipReader, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gzipReader.Close()

	var payload replayFile
	if err := json.NewDecoder(gzipReader).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode replay: %w", err)
	}
	if payload.Version != replayFileVersion {
		return nil, fmt.Errorf("unsupported replay version: %d", payload.Version)
	}
	replay := NewReplay(payload.MatchID)
	replay.States = payload.States
	return replay, nil
}

// ReplayRecorder manages per-match replay recording.
type ReplayRecorder struct {
	logger  *zap.Logger
	mu      sync.RWMutex
	replays map[string]*Replay
	enabled map[string]bool
	saveDir string
}

// NewReplayRecorder creates a recorder that saves files under saveDir.
func NewReplayRecorder(logger *zap.Logger, saveDir string) *ReplayRecorder {
	return &ReplayRecorder{
		logger:  logger,
		replays: make(map[string]*Replay),
		enabled: make(map[string]bool),
		saveDir: saveDir,
	}
}

// StartRecording begins recording a match.
func (rr *ReplayRecorder) StartRecording(matchID string) {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	rr.replays[matchID] = NewReplay(matchID)
	rr.enabled[matchID] = true
	if rr.logger != nil {
		rr.logger.Info("started replay recording", zap.String("match_id", matchID))
	}
}

// StopRecording stops recording without discarding what was recorded.
func (rr *ReplayRecorder) StopRecording(matchID string) {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	rr.enabled[matchID] = false
	if rr.logger != nil {
		rr.logger.Info("stopped replay recording", zap.String("match_id", matchID))
	}
}

// RecordState appends a snapshot when recording is enabled for the
// match.
func (rr *ReplayRecorder) RecordState(matchID string, gs state.GameState) {
	rr.mu.RLock()
	enabled := rr.enabled[matchID]
	replay := rr.replays[matchID]
	rr.mu.RUnlock()

	if !enabled || replay == nil {
		return
	}
	replay.RecordState(gs)
	if rr.logger != nil {
		rr.logger.Debug("recorded replay state",
			zap.String("match_id", matchID),
			zap.Int("state_count", replay.Size()))
	}
}

// Replay returns the in-memory replay for a match.
func (rr *ReplayRecorder) Replay(matchID string) (*Replay, bool) {
	rr.mu.RLock()
	defer rr.mu.RUnlock()
	replay, exists := rr.replays[matchID]
	return replay, exists
}

// SaveReplay writes a replay to disk and drops it from memory.
func (rr *ReplayRecorder) SaveReplay(matchID string) error {
	rr.mu.Lock()
	replay, exists := rr.replays[matchID]
	if !exists {
		rr.mu.Unlock()
		return fmt.Errorf("no replay found for match %s", matchID)
	}
	delete(rr.replays, matchID)
	delete(rr.enabled, matchID)
	rr.mu.Unlock()

	if err := replay.SaveToFile(rr.saveDir); err != nil {
		return fmt.Errorf("failed to save replay: %w", err)
	}
	if rr.logger != nil {
		rr.logger.Info("saved replay to disk",
			zap.String("match_id", matchID),
			zap.Int("state_count", replay.Size()),
			zap.String("directory", rr.saveDir))
	}
	return nil
}

// LoadReplay reads a previously saved replay from disk.
func (rr *ReplayRecorder) LoadReplay(matchID string) (*Replay, error) {
	replay, err := LoadReplayFromFile(rr.saveDir, matchID)
	if err != nil {
		return nil, err
	}
	if rr.logger != nil {
		rr.logger.Info("loaded replay from disk",
			zap.String("match_id", matchID),
			zap.Int("state_count", replay.Size()))
	}
	return replay, nil
}

// ClearReplay drops a replay from memory without saving it.
func (rr *ReplayRecorder) ClearReplay(matchID string) {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	delete(rr.replays, matchID)
	delete(rr.enabled, matchID)
}

// IsRecording reports whether the match is being recorded.
func (rr *ReplayRecorder) IsRecording(matchID string) bool {
	rr.mu.RLock()
	defer rr.mu.RUnlock()
	return rr.enabled[matchID]
}
