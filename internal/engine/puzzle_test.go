package engine

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcosta/eldrida-engine/internal/services"
	"github.com/rcosta/eldrida-engine/pkg/chat"
	"github.com/rcosta/eldrida-engine/pkg/state"
)

func activeRiddle() *state.Puzzle {
	return &state.Puzzle{
		Content:  "What has a bed but never sleeps?",
		Solution: "a river",
		Clues:    []string{"It runs through the city.", "Boats ride on it."},
	}
}

func TestResolvePuzzleSolved(t *testing.T) {
	llm := services.NewMockLLMService()
	e, _ := newTestEngine(t, llm, 1)

	llm.Queue(`{"solved": true}`)

	gs := newTestGameState()
	gs.ActivePuzzle = activeRiddle()

	narrative := e.resolvePuzzle(context.Background(), gs, "it is a river")

	assert.Contains(t, narrative, "rings true")
	assert.Nil(t, gs.ActivePuzzle)
	require.Len(t, gs.PuzzleResults, 1)
	assert.True(t, gs.PuzzleResults[0].Solved)
}

func TestResolvePuzzleWrongAnswerSurfacesHint(t *testing.T) {
	llm := services.NewMockLLMService()
	e, _ := newTestEngine(t, llm, 1)

	llm.Queue(`{"solved": false}`)

	gs := newTestGameState()
	gs.ActivePuzzle = activeRiddle()

	narrative := e.resolvePuzzle(context.Background(), gs, "a clock?")

	assert.Contains(t, narrative, "Attempt 2/3")
	assert.Contains(t, narrative, "It runs through the city.")
	require.NotNil(t, gs.ActivePuzzle)
	assert.Equal(t, 1, gs.ActivePuzzle.Tries)
	assert.Empty(t, gs.PuzzleResults)
}

func TestResolvePuzzleExhaustsAttempts(t *testing.T) {
	llm := services.NewMockLLMService()
	e, _ := newTestEngine(t, llm, 1)

	gs := newTestGameState()
	gs.ActivePuzzle = activeRiddle()

	for i := 0; i < e.params.MaxTries; i++ {
		llm.Queue(`{"solved": false}`)
		narrative := e.resolvePuzzle(context.Background(), gs, fmt.Sprintf("wrong guess %d", i))
		assert.NotEmpty(t, narrative)
	}

	assert.Nil(t, gs.ActivePuzzle)
	require.Len(t, gs.PuzzleResults, 1)
	assert.False(t, gs.PuzzleResults[0].Solved)
}

// When the judge call fails, naming the solution outright still counts.
func TestJudgeSolutionHeuristicFallback(t *testing.T) {
	llm := services.NewMockLLMService()
	llm.GenerateFunc = func(ctx context.Context, messages []chat.ChatMessage, temperature float64) (string, error) {
		return "", fmt.Errorf("model unavailable")
	}
	e, _ := newTestEngine(t, llm, 1)

	gs := newTestGameState()
	puzzle := activeRiddle()

	assert.True(t, e.judgeSolution(context.Background(), gs, puzzle, "I think it is A River."))
	assert.False(t, e.judgeSolution(context.Background(), gs, puzzle, "a mountain"))
}
