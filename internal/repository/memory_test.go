package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3jesters/opentcg-server-go/internal/game"
)

func TestMemoryMatchRepositoryCRUD(t *testing.T) {
	repo := NewMemoryMatchRepository()
	ctx := context.Background()

	m := game.NewMatch("match-1", "alice", "deck-a", time.Now())
	require.NoError(t, repo.Create(ctx, m))
	assert.Equal(t, 1, m.Version)

	require.Error(t, repo.Create(ctx, m), "duplicate create is rejected")

	loaded, err := repo.Get(ctx, "match-1")
	require.NoError(t, err)
	assert.Equal(t, "alice", loaded.PlayerOneID)
	assert.Equal(t, 1, loaded.Version)

	// The stored copy is detached from the caller's object.
	loaded.PlayerTwoID = "bob"
	again, err := repo.Get(ctx, "match-1")
	require.NoError(t, err)
	assert.Empty(t, again.PlayerTwoID)

	_, err = repo.Get(ctx, "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestMemoryMatchRepositoryOptimisticVersioning(t *testing.T) {
	repo := NewMemoryMatchRepository()
	ctx := context.Background()

	m := game.NewMatch("match-1", "alice", "deck-a", time.Now())
	require.NoError(t, repo.Create(ctx, m))

	first, err := repo.Get(ctx, "match-1")
	require.NoError(t, err)
	second, err := repo.Get(ctx, "match-1")
	require.NoError(t, err)

	require.NoError(t, repo.Update(ctx, first))
	assert.Equal(t, 2, first.Version)

	err = repo.Update(ctx, second)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrVersionConflict), "stale writer loses")

	err = repo.Update(ctx, game.NewMatch("missing", "alice", "deck-a", time.Now()))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestMemoryDeckRepository(t *testing.T) {
	repo := NewMemoryDeckRepository()
	ctx := context.Background()

	cards := []string{"a", "b", "c"}
	require.NoError(t, repo.Save(ctx, "deck-1", cards))

	loaded, err := repo.Deck(ctx, "deck-1")
	require.NoError(t, err)
	assert.Equal(t, cards, loaded)

	// The returned slice is a copy; mutating it never touches the store.
	loaded[0] = "z"
	again, err := repo.Deck(ctx, "deck-1")
	require.NoError(t, err)
	assert.Equal(t, "a", again[0])

	_, err = repo.Deck(ctx, "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}
