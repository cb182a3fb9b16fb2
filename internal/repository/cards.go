package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/3jesters/opentcg-server-go/internal/catalog"
)

// PostgresCardCatalog resolves card metadata from the cards table,
// where each card is stored as a jsonb document.
type PostgresCardCatalog struct {
	db *DB
}

// NewPostgresCardCatalog creates a catalog backed by the cards table.
func NewPostgresCardCatalog(db *DB) *PostgresCardCatalog {
	return &PostgresCardCatalog{db: db}
}

// Get loads one card's metadata.
func (c *PostgresCardCatalog) Get(ctx context.Context, cardID string) (catalog.CardMetadata, error) {
	var data []byte
	err := c.db.Pool().QueryRow(ctx,
		`SELECT data FROM cards WHERE id = $1`, cardID).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return catalog.CardMetadata{}, fmt.Errorf("card %s: %w", cardID, ErrNotFound)
	}
	if err != nil {
		return catalog.CardMetadata{}, fmt.Errorf("failed to load card %s: %w", cardID, err)
	}
	var meta catalog.CardMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return catalog.CardMetadata{}, fmt.Errorf("failed to decode card %s: %w", cardID, err)
	}
	return meta, nil
}

// Put upserts a card's metadata, for imports and tests.
func (c *PostgresCardCatalog) Put(ctx context.Context, meta catalog.CardMetadata) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to encode card %s: %w", meta.ID, err)
	}
	_, err = c.db.Pool().Exec(ctx, `
		INSERT INTO cards (id, name, data) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, data = EXCLUDED.data`,
		meta.ID, meta.Name, data)
	if err != nil {
		return fmt.Errorf("failed to save card %s: %w", meta.ID, err)
	}
	return nil
}
