package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/3jesters/opentcg-server-go/internal/game"
)

// PostgresMatchRepository persists matches as jsonb documents with an
// optimistic version column. The engine state lives entirely in the
// document; the extracted columns exist for querying.
type PostgresMatchRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewPostgresMatchRepository creates a match store on the given pool.
func NewPostgresMatchRepository(db *DB, logger *zap.Logger) *PostgresMatchRepository {
	return &PostgresMatchRepository{db: db, logger: logger}
}

// Create inserts a new match at version 1.
func (r *PostgresMatchRepository) Create(ctx context.Context, m *game.Match) error {
	m.Version = 1
	data, err := m.SerializeToBytes()
	if err != nil {
		return err
	}
	_, err = r.db.Pool().Exec(ctx, `
		INSERT INTO matches (id, state, player_one_id, player_two_id, version, data, created_at, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8)`,
		m.ID, string(m.State), m.PlayerOneID, m.PlayerTwoID, m.Version, data, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert match %s: %w", m.ID, err)
	}
	return nil
}

// Get loads a match by id.
func (r *PostgresMatchRepository) Get(ctx context.Context, id string) (*game.Match, error) {
	var data []byte
	var version int
	err := r.db.Pool().QueryRow(ctx,
		`SELECT data, version FROM matches WHERE id = $1`, id).Scan(&data, &version)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("match %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load match %s: %w", id, err)
	}
	m, err := game.DeserializeFromBytes(data)
	if err != nil {
		return nil, err
	}
	m.Version = version
	return m, nil
}

// Update writes the match back, guarded by the version read at load
// time. A stale version means a concurrent writer won.
func (r *PostgresMatchRepository) Update(ctx context.Context, m *game.Match) error {
	previous := m.Version
	m.Version = previous + 1
	data, err := m.SerializeToBytes()
	if err != nil {
		m.Version = previous
		return err
	}
	tag, err := r.db.Pool().Exec(ctx, `
		UPDATE matches
		SET state = $2, player_two_id = NULLIF($3, ''), version = $4, data = $5, updated_at = $6
		WHERE id = $1 AND version = $7`,
		m.ID, string(m.State), m.PlayerTwoID, m.Version, data, m.UpdatedAt, previous)
	if err != nil {
		m.Version = previous
		return fmt.Errorf("failed to update match %s: %w", m.ID, err)
	}
	if tag.RowsAffected() == 0 {
		m.Version = previous
		if r.logger != nil {
			r.logger.Warn("match version conflict",
				zap.String("match_id", m.ID),
				zap.Int("version", previous))
		}
		return fmt.Errorf("match %s at version %d: %w", m.ID, previous, ErrVersionConflict)
	}
	return nil
}
