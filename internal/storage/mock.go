package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/rcosta/eldrida-engine/pkg/actor"
	"github.com/rcosta/eldrida-engine/pkg/state"
	"github.com/rcosta/eldrida-engine/pkg/world"
)

// MockStorage is an in-memory Storage implementation for testing.
type MockStorage struct {
	mu         sync.Mutex
	gameStates map[uuid.UUID]*state.GameState
	worlds     map[string]*world.World
	heroes     map[string]*actor.HeroSpec

	pingErr error
	saveErr error
	loadErr error
}

// Ensure MockStorage implements Storage interface
var _ Storage = (*MockStorage)(nil)

func NewMockStorage() *MockStorage {
	return &MockStorage{
		gameStates: make(map[uuid.UUID]*state.GameState),
		worlds:     make(map[string]*world.World),
		heroes:     make(map[string]*actor.HeroSpec),
	}
}

func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingErr = err
}

func (m *MockStorage) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveErr = err
}

func (m *MockStorage) SetLoadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadErr = err
}

func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pingErr
}

func (m *MockStorage) Close() error {
	return nil
}

func (m *MockStorage) SaveGameState(ctx context.Context, id uuid.UUID, gs *state.GameState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	cp, err := gs.DeepCopy()
	if err != nil {
		return err
	}
	m.gameStates[id] = cp
	return nil
}

func (m *MockStorage) LoadGameState(ctx context.Context, id uuid.UUID) (*state.GameState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	gs, ok := m.gameStates[id]
	if !ok {
		return nil, nil
	}
	return gs.DeepCopy()
}

func (m *MockStorage) DeleteGameState(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.gameStates[id]; !ok {
		return fmt.Errorf("gamestate not found: %s", id)
	}
	delete(m.gameStates, id)
	return nil
}

func (m *MockStorage) GetWorld(ctx context.Context, name string) (*world.World, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.worlds[name], nil
}

func (m *MockStorage) AddWorld(name string, w *world.World) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.worlds[name] = w
}

func (m *MockStorage) GetHeroSpec(ctx context.Context, name string) (*actor.HeroSpec, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.heroes[name], nil
}

func (m *MockStorage) AddHeroSpec(name string, spec *actor.HeroSpec) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.heroes[name] = spec
}
