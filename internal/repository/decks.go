package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
)

// PostgresDeckRepository reads deck lists from the decks table. Card
// order is preserved; it is the draw order.
type PostgresDeckRepository struct {
	db *DB
}

// NewPostgresDeckRepository creates a deck store on the given pool.
func NewPostgresDeckRepository(db *DB) *PostgresDeckRepository {
	return &PostgresDeckRepository{db: db}
}

// Deck returns the ordered card ids of a deck.
func (r *PostgresDeckRepository) Deck(ctx context.Context, deckID string) ([]string, error) {
	var cards []string
	err := r.db.Pool().QueryRow(ctx,
		`SELECT card_ids FROM decks WHERE id = $1`, deckID).Scan(&cards)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("deck %s: %w", deckID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load deck %s: %w", deckID, err)
	}
	return cards, nil
}

// Save upserts a deck list.
func (r *PostgresDeckRepository) Save(ctx context.Context, deckID string, cards []string) error {
	_, err := r.db.Pool().Exec(ctx, `
		INSERT INTO decks (id, card_ids) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET card_ids = EXCLUDED.card_ids`,
		deckID, cards)
	if err != nil {
		return fmt.Errorf("failed to save deck %s: %w", deckID, err)
	}
	return nil
}

// MemoryDeckRepository keeps deck lists in memory, for tests and for
// running without a database.
type MemoryDeckRepository struct {
	mu    sync.RWMutex
	decks map[string][]string
}

// NewMemoryDeckRepository creates an empty in-memory deck store.
func NewMemoryDeckRepository() *MemoryDeckRepository {
	return &MemoryDeckRepository{decks: make(map[string][]string)}
}

// Deck returns the ordered card ids of a deck.
func (r *MemoryDeckRepository) Deck(_ context.Context, deckID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cards, ok := r.decks[deckID]
	if !ok {
		return nil, fmt.Errorf("deck %s: %w", deckID, ErrNotFound)
	}
	return append([]string(nil), cards...), nil
}

// Save stores a deck list.
func (r *MemoryDeckRepository) Save(_ context.Context, deckID string, cards []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decks[deckID] = append([]string(nil), cards...)
	return nil
}
