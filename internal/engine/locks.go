package engine

import (
	"sync"

	"github.com/google/uuid"
)

// gameLocks serializes turns per game. Two concurrent requests for the
// same game would otherwise race on load-mutate-save.
type gameLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newGameLocks() *gameLocks {
	return &gameLocks{locks: make(map[uuid.UUID]*lockEntry)}
}

// lock acquires the per-game mutex and returns its release function.
// Entries are dropped once no turn holds or awaits them.
func (g *gameLocks) lock(id uuid.UUID) func() {
	g.mu.Lock()
	entry, ok := g.locks[id]
	if !ok {
		entry = &lockEntry{}
		g.locks[id] = entry
	}
	entry.refs++
	g.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		g.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(g.locks, id)
		}
		g.mu.Unlock()
	}
}
