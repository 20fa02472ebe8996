package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcosta/eldrida-engine/internal/engine"
	"github.com/rcosta/eldrida-engine/internal/services"
	"github.com/rcosta/eldrida-engine/internal/storage"
	"github.com/rcosta/eldrida-engine/pkg/chat"
	"github.com/rcosta/eldrida-engine/pkg/state"
)

const objectiveResponse = `{
	"objective": "Magistrate Veyl plans to sell the Sunstone to the northern raiders.",
	"true_clue": {"content": "The magistrate's seal was found on the raiders' charts.", "id": "clue-seal"},
	"npcs": [
		{"name": "Mira", "status": "Allied", "description": "a sharp-eyed archivist"},
		{"name": "Brak", "status": "Hostile", "description": "the magistrate's bodyguard"}
	],
	"welcome_message": "You arrive in Eldrida as the lamps are lit.",
	"initial_map": {
		"Harbor": {"description": "salt air and creaking hulls", "exits": []}
	}
}`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSetup(t *testing.T) (*engine.Engine, *storage.MockStorage, *services.MockLLMService) {
	t.Helper()
	llm := services.NewMockLLMService()
	store := storage.NewMockStorage()
	e := engine.New(engine.Deps{
		LLM:    llm,
		Store:  store,
		Logger: testLogger(),
		Rand:   rand.New(rand.NewSource(1)),
	}, engine.Params{
		EventChance:  0.3,
		MaxTries:     3,
		MaxFalseClue: 3,
		MaxTrueClue:  3,
		MaxFalseAlly: 2,
		MaxTrick:     2,
		MaxAttacks:   2,
		HistoryLimit: 20,
	})
	return e, store, llm
}

func seedGameState(t *testing.T, store *storage.MockStorage) *state.GameState {
	t.Helper()
	gs := state.NewGameState()
	gs.Location.Name = "Eldrida"
	gs.GameObjective = "find the traitor"
	require.NoError(t, store.SaveGameState(context.Background(), gs.ID, gs))
	return gs
}

func TestHealthHandler(t *testing.T) {
	_, store, _ := testSetup(t)
	handler := NewHealthHandler(store, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "eldrida-engine", resp.Service)
	assert.Equal(t, "healthy", resp.Components["storage"])
}

func TestHealthHandlerStorageDown(t *testing.T) {
	_, store, _ := testSetup(t)
	store.SetPingError(fmt.Errorf("connection refused"))
	handler := NewHealthHandler(store, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "unhealthy", resp.Status)
}

func TestGameStateHandlerCreate(t *testing.T) {
	e, store, llm := testSetup(t)
	llm.Queue(objectiveResponse)
	handler := NewGameStateHandler(e, store, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/v1/gamestate", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var gs state.GameState
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&gs))
	assert.NotEqual(t, uuid.Nil, gs.ID)
	assert.Equal(t, 1, gs.Stage())
	assert.NotEmpty(t, gs.GameObjective)
	require.Len(t, gs.History, 1)

	saved, err := store.LoadGameState(context.Background(), gs.ID)
	require.NoError(t, err)
	assert.NotNil(t, saved)
}

func TestGameStateHandlerCreateModelFailure(t *testing.T) {
	e, store, llm := testSetup(t)
	llm.GenerateFunc = func(ctx context.Context, messages []chat.ChatMessage, temperature float64) (string, error) {
		return "", fmt.Errorf("model unavailable")
	}
	handler := NewGameStateHandler(e, store, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/v1/gamestate", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGameStateHandlerRead(t *testing.T) {
	e, store, _ := testSetup(t)
	gs := seedGameState(t, store)
	handler := NewGameStateHandler(e, store, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/gamestate/"+gs.ID.String(), nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got state.GameState
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, gs.ID, got.ID)
	assert.Equal(t, "Eldrida", got.Location.Name)
}

func TestGameStateHandlerReadNotFound(t *testing.T) {
	e, store, _ := testSetup(t)
	handler := NewGameStateHandler(e, store, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/gamestate/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGameStateHandlerInvalidID(t *testing.T) {
	e, store, _ := testSetup(t)
	handler := NewGameStateHandler(e, store, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/gamestate/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGameStateHandlerDelete(t *testing.T) {
	e, store, _ := testSetup(t)
	gs := seedGameState(t, store)
	handler := NewGameStateHandler(e, store, testLogger())

	req := httptest.NewRequest(http.MethodDelete, "/v1/gamestate/"+gs.ID.String(), nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)

	saved, err := store.LoadGameState(context.Background(), gs.ID)
	require.NoError(t, err)
	assert.Nil(t, saved)
}

func TestGameStateHandlerMethodNotAllowed(t *testing.T) {
	e, store, _ := testSetup(t)
	handler := NewGameStateHandler(e, store, testLogger())

	req := httptest.NewRequest(http.MethodPut, "/v1/gamestate", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestCommandHandler(t *testing.T) {
	e, store, llm := testSetup(t)
	gs := seedGameState(t, store)
	llm.Queue(
		`{"action_type": "generic", "details": {}, "suggestion": ""}`,
		"The evening crowd parts around you.",
		`{"itemUpdates": []}`,
	)
	handler := NewCommandHandler(e, testLogger())

	body, err := json.Marshal(chat.CommandRequest{GameStateID: gs.ID, Command: "walk to the square"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/command", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp chat.CommandResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, gs.ID, resp.GameStateID)
	assert.Contains(t, resp.Narrative, "evening crowd")
	require.NotNil(t, resp.Stage)
	assert.Equal(t, 1, *resp.Stage)
}

func TestCommandHandlerValidation(t *testing.T) {
	e, _, _ := testSetup(t)
	handler := NewCommandHandler(e, testLogger())

	tests := []struct {
		name string
		body string
		want int
	}{
		{"not json", "not json", http.StatusBadRequest},
		{"missing command", fmt.Sprintf(`{"gamestate_id": %q}`, uuid.NewString()), http.StatusBadRequest},
		{"missing id", `{"command": "look"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/command", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestCommandHandlerGameNotFound(t *testing.T) {
	e, _, _ := testSetup(t)
	handler := NewCommandHandler(e, testLogger())

	body, err := json.Marshal(chat.CommandRequest{GameStateID: uuid.New(), Command: "look"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/command", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCommandHandlerMethodNotAllowed(t *testing.T) {
	e, _, _ := testSetup(t)
	handler := NewCommandHandler(e, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/command", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
