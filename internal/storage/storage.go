package storage

import (
	"context"

	"github.com/google/uuid"
	"github.com/rcosta/eldrida-engine/pkg/actor"
	"github.com/rcosta/eldrida-engine/pkg/state"
	"github.com/rcosta/eldrida-engine/pkg/world"
)

// HealthChecker verifies the storage backend is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Closer releases storage resources.
type Closer interface {
	Close() error
}

// Storage persists game states and serves static game resources.
// Game states live in Redis; world templates and hero specs are files.
type Storage interface {
	HealthChecker
	Closer

	SaveGameState(ctx context.Context, id uuid.UUID, gs *state.GameState) error
	LoadGameState(ctx context.Context, id uuid.UUID) (*state.GameState, error)
	DeleteGameState(ctx context.Context, id uuid.UUID) error

	GetWorld(ctx context.Context, name string) (*world.World, error)
	GetHeroSpec(ctx context.Context, name string) (*actor.HeroSpec, error)
}
