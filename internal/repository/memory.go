package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/3jesters/opentcg-server-go/internal/game"
)

// MemoryMatchRepository keeps matches in memory with the same version
// semantics as the postgres store. Matches are stored serialized so
// callers never share state with the stored copy.
type MemoryMatchRepository struct {
	mu      sync.RWMutex
	matches map[string][]byte
	version map[string]int
}

// NewMemoryMatchRepository creates an empty in-memory match store.
func NewMemoryMatchRepository() *MemoryMatchRepository {
	return &MemoryMatchRepository{
		matches: make(map[string][]byte),
		version: make(map[string]int),
	}
}

// Create stores a new match at version 1.
func (r *MemoryMatchRepository) Create(_ context.Context, m *game.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.matches[m.ID]; exists {
		return fmt.Errorf("match %s already exists", m.ID)
	}
	m.Version = 1
	data, err := m.SerializeToBytes()
	if err != nil {
		return err
	}
	r.matches[m.ID] = data
	r.version[m.ID] = m.Version
	return nil
}

// Get returns a detached copy of the match.
func (r *MemoryMatchRepository) Get(_ context.Context, id string) (*game.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	data, ok := r.matches[id]
	if !ok {
		return nil, fmt.Errorf("match %s: %w", id, ErrNotFound)
	}
	m, err := game.DeserializeFromBytes(data)
	if err != nil {
		return nil, err
	}
	m.Version = r.version[id]
	return m, nil
}

// Update replaces the stored match, enforcing the optimistic version
// check.
func (r *MemoryMatchRepository) Update(_ context.Context, m *game.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.version[m.ID]
	if !ok {
		return fmt.Errorf("match %s: %w", m.ID, ErrNotFound)
	}
	if current != m.Version {
		return fmt.Errorf("match %s at version %d: %w", m.ID, m.Version, ErrVersionConflict)
	}
	m.Version = current + 1
	data, err := m.SerializeToBytes()
	if err != nil {
		m.Version = current
		return err
	}
	r.matches[m.ID] = data
	r.version[m.ID] = m.Version
	return nil
}
