package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/rcosta/eldrida-engine/pkg/state"
)

// Snapshotter writes periodic JSON snapshots of game states to disk.
// Snapshots are a recovery aid alongside Redis; a turn that fails to
// snapshot is logged but not failed.
type Snapshotter struct {
	dir    string
	logger *slog.Logger

	mu       sync.Mutex
	lastLens map[string]int
}

func NewSnapshotter(dir string, logger *slog.Logger) *Snapshotter {
	return &Snapshotter{
		dir:      dir,
		logger:   logger,
		lastLens: make(map[string]int),
	}
}

// Snapshot writes the game state to <dir>/<id>.json, retrying transient
// filesystem errors. The write is skipped when the history has not grown
// since the last snapshot of the same game.
func (s *Snapshotter) Snapshot(ctx context.Context, gs *state.GameState) error {
	id := gs.ID.String()

	s.mu.Lock()
	last, seen := s.lastLens[id]
	s.mu.Unlock()
	if seen && last == len(gs.History) {
		return nil
	}

	data, err := json.MarshalIndent(gs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot dir: %w", err)
	}

	path := filepath.Join(s.dir, id+".json")
	write := func() (struct{}, error) {
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 100 * time.Millisecond
	if _, err := backoff.Retry(ctx, write,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(3),
	); err != nil {
		return fmt.Errorf("failed to write snapshot after retries: %w", err)
	}

	s.mu.Lock()
	s.lastLens[id] = len(gs.History)
	s.mu.Unlock()

	s.logger.Debug("Game state snapshot written", "game_id", id, "path", path)
	return nil
}

// Load reads a snapshot back from disk, nil when none exists.
func (s *Snapshotter) Load(id string) (*state.GameState, error) {
	path := filepath.Join(s.dir, id+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var gs state.GameState
	if err := json.Unmarshal(data, &gs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &gs, nil
}
