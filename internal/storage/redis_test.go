package storage

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcosta/eldrida-engine/pkg/state"
)

func setupTestStorage(t *testing.T) (*RedisStorage, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	s := NewRedisStorage(mr.Addr(), t.TempDir(), logger)
	t.Cleanup(func() { _ = s.Close() })

	return s, mr
}

func TestGameStateRoundTrip(t *testing.T) {
	s, _ := setupTestStorage(t)
	ctx := context.Background()

	gs := state.NewGameState()
	gs.Location.Name = "Eldrida"
	gs.Resources["potions"] = 2

	require.NoError(t, s.SaveGameState(ctx, gs.ID, gs))

	loaded, err := s.LoadGameState(ctx, gs.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, gs.ID, loaded.ID)
	assert.Equal(t, "Eldrida", loaded.Location.Name)
	assert.Equal(t, 2, loaded.Resources["potions"])
	assert.False(t, loaded.UpdatedAt.IsZero())
}

func TestLoadGameStateNotFound(t *testing.T) {
	s, _ := setupTestStorage(t)

	loaded, err := s.LoadGameState(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestLoadGameStateRejectsCorrupt(t *testing.T) {
	s, mr := setupTestStorage(t)
	id := uuid.New()
	mr.Set(gameStateKey(id), "{not json")

	_, err := s.LoadGameState(context.Background(), id)
	assert.Error(t, err)
}

func TestDeleteGameState(t *testing.T) {
	s, _ := setupTestStorage(t)
	ctx := context.Background()

	gs := state.NewGameState()
	require.NoError(t, s.SaveGameState(ctx, gs.ID, gs))
	require.NoError(t, s.DeleteGameState(ctx, gs.ID))

	loaded, err := s.LoadGameState(ctx, gs.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded)

	assert.Error(t, s.DeleteGameState(ctx, gs.ID))
}

func TestGetWorldAndHeroSpec(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	dataDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dataDir, "worlds"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dataDir, "heroes"), 0o755))

	worldYAML := `
name: Eldrida
start: Eldrida
locations:
  Eldrida:
    description: A vibrant city.
    exits: []
`
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "worlds", "eldrida.yaml"), []byte(worldYAML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "heroes", "rian.json"), []byte(`{"name":"Rian","max_hp":10}`), 0o644))

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	s := NewRedisStorage(mr.Addr(), dataDir, logger)
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()

	w, err := s.GetWorld(ctx, "eldrida")
	require.NoError(t, err)
	require.NotNil(t, w)
	assert.Equal(t, "Eldrida", w.Name)

	missing, err := s.GetWorld(ctx, "nowhere")
	require.NoError(t, err)
	assert.Nil(t, missing)

	spec, err := s.GetHeroSpec(ctx, "rian")
	require.NoError(t, err)
	require.NotNil(t, spec)
	assert.Equal(t, "rian", spec.ID)
	assert.Equal(t, 10, spec.MaxHP)

	noHero, err := s.GetHeroSpec(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, noHero)
}
