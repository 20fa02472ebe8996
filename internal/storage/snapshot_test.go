package storage

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcosta/eldrida-engine/pkg/chat"
	"github.com/rcosta/eldrida-engine/pkg/state"
)

func testSnapshotter(t *testing.T) *Snapshotter {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewSnapshotter(t.TempDir(), logger)
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := testSnapshotter(t)
	ctx := context.Background()

	gs := state.NewGameState()
	gs.Location.Name = "Eldrida"
	gs.AppendHistory(chat.ChatRoleUser, "look around")

	require.NoError(t, s.Snapshot(ctx, gs))

	loaded, err := s.Load(gs.ID.String())
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, gs.ID, loaded.ID)
	assert.Equal(t, "Eldrida", loaded.Location.Name)
}

func TestSnapshotSkipsUnchangedHistory(t *testing.T) {
	s := testSnapshotter(t)
	ctx := context.Background()

	gs := state.NewGameState()
	gs.AppendHistory(chat.ChatRoleUser, "look around")
	require.NoError(t, s.Snapshot(ctx, gs))

	path := filepath.Join(s.dir, gs.ID.String()+".json")
	require.NoError(t, os.Remove(path))

	// Same history length, so the second snapshot is a no-op.
	require.NoError(t, s.Snapshot(ctx, gs))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// New history forces a write.
	gs.AppendHistory(chat.ChatRoleAgent, "You see a tavern.")
	require.NoError(t, s.Snapshot(ctx, gs))
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestSnapshotLoadMissing(t *testing.T) {
	s := testSnapshotter(t)

	loaded, err := s.Load("does-not-exist")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}
