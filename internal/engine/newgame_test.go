package engine

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcosta/eldrida-engine/internal/services"
	"github.com/rcosta/eldrida-engine/internal/storage"
	"github.com/rcosta/eldrida-engine/pkg/chat"
	"github.com/rcosta/eldrida-engine/pkg/state"
	"github.com/rcosta/eldrida-engine/pkg/world"
)

const objectiveResponse = `{
	"objective": "Magistrate Veyl plans to sell the Sunstone to the northern raiders.",
	"true_clue": {"content": "The magistrate's seal was found on the raiders' charts.", "id": "clue-seal"},
	"npcs": [
		{"name": "Mira", "status": "Allied", "description": "a sharp-eyed archivist"},
		{"name": "Brak", "status": "Hostile", "description": "the magistrate's bodyguard"},
		{"name": "Sela", "status": "Neutral", "description": "a dockside fence"}
	],
	"welcome_message": "You arrive in Eldrida as the lamps are lit.",
	"initial_map": {
		"Harbor": {"description": "salt air and creaking hulls", "exits": ["Old Town"]},
		"Old Town": {"description": "narrow lanes and older secrets", "exits": ["Harbor"]}
	}
}`

func testWorld() *world.World {
	return &world.World{
		Name:  "Eldrida",
		Start: "Eldrida",
		Locations: map[string]world.Location{
			"Eldrida": {Description: "a city of canals and rumor", Exits: []string{}},
		},
		StartingResources: map[string]int{"wands": 2, "potions": 2, "energy": 5},
	}
}

func newGameEngine(t *testing.T, llm *services.MockLLMService) *Engine {
	t.Helper()
	return New(Deps{
		LLM:    llm,
		Store:  storage.NewMockStorage(),
		World:  testWorld(),
		Logger: testLogger(),
		Rand:   rand.New(rand.NewSource(1)),
	}, testParams())
}

func TestNewGame(t *testing.T) {
	llm := services.NewMockLLMService()
	llm.Queue(objectiveResponse)
	e := newGameEngine(t, llm)

	gs, err := e.NewGame(context.Background())
	require.NoError(t, err)
	require.NotNil(t, gs)

	assert.Equal(t, 1, gs.Stage())
	assert.InDelta(t, state.MaxHealth, gs.Health, 1e-9)
	assert.InDelta(t, startingSkill, gs.Skill, 1e-9)
	assert.Equal(t, "Magistrate Veyl plans to sell the Sunstone to the northern raiders.", gs.GameObjective)

	assert.Equal(t, 2, gs.Resource("wands"))
	assert.Equal(t, 2, gs.Resource("potions"))
	assert.Equal(t, 5, gs.Resource("energy"))

	require.Len(t, gs.NPCStatus, 3)
	assert.Equal(t, state.NPCAllied, gs.NPCStatus["Mira"].Status)
	assert.Equal(t, state.NPCHostile, gs.NPCStatus["Brak"].Status)
	assert.Equal(t, state.NPCNeutral, gs.NPCStatus["Sela"].Status)
	for _, npc := range gs.NPCStatus {
		assert.Equal(t, state.SupposedNeutral, npc.SupposedStatus)
	}

	assert.Equal(t, "Eldrida", gs.Location.Name)
	assert.Contains(t, gs.KnownMap, "Eldrida")
	assert.Contains(t, gs.KnownMap, "Harbor")
	assert.Contains(t, gs.KnownMap, "Old Town")

	assert.Equal(t, 1, gs.TrueClueCount())

	require.Len(t, gs.History, 1)
	assert.Equal(t, chat.ChatRoleAgent, gs.History[0].Role)
	assert.Contains(t, gs.History[0].Content, "lamps are lit")

	require.NoError(t, gs.Validate())
}

func TestNewGameDistinctObjectives(t *testing.T) {
	llm := services.NewMockLLMService()
	llm.Queue(objectiveResponse, objectiveResponse)
	e := newGameEngine(t, llm)

	a, err := e.NewGame(context.Background())
	require.NoError(t, err)
	b, err := e.NewGame(context.Background())
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
}

func TestNewGameModelError(t *testing.T) {
	llm := services.NewMockLLMService()
	llm.GenerateFunc = func(ctx context.Context, messages []chat.ChatMessage, temperature float64) (string, error) {
		return "", fmt.Errorf("model unavailable")
	}
	e := newGameEngine(t, llm)

	_, err := e.NewGame(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to generate game objective")
}

func TestNewGameIncompletePayload(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "once upon a time"},
		{"no npcs", `{"objective": "something", "npcs": [], "welcome_message": "hi"}`},
		{"no objective", `{"npcs": [{"name": "Mira", "status": "Allied"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := services.NewMockLLMService()
			llm.Queue(tt.raw)
			e := newGameEngine(t, llm)

			_, err := e.NewGame(context.Background())
			require.Error(t, err)
		})
	}
}

func TestNewGameWithoutWorldFallsBack(t *testing.T) {
	llm := services.NewMockLLMService()
	llm.Queue(objectiveResponse)
	e, _ := newTestEngine(t, llm, 1)

	gs, err := e.NewGame(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, gs.Location.Name)
	assert.Contains(t, gs.KnownMap, gs.Location.Name)
	assert.Equal(t, 2, gs.Resource("wands"))
}
