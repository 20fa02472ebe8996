package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/rcosta/eldrida-engine/internal/services"
	"github.com/rcosta/eldrida-engine/pkg/chat"
	"github.com/rcosta/eldrida-engine/pkg/extract"
	"github.com/rcosta/eldrida-engine/pkg/prompts"
	"github.com/rcosta/eldrida-engine/pkg/state"
)

// judgeSolution asks the backend model whether the attempt solves the
// riddle, with a substring heuristic as the fallback parser.
func (e *Engine) judgeSolution(ctx context.Context, gs *state.GameState, puzzle *state.Puzzle, attempt string) bool {
	prompt := prompts.PuzzleJudgePrompt(puzzle.Content, puzzle.Solution, attempt)

	raw, err := e.llm.Generate(ctx, []chat.ChatMessage{
		{Role: chat.ChatRoleUser, Content: prompt},
	}, services.BackendTemperature)
	if err == nil {
		var payload struct {
			Solved bool `json:"solved"`
		}
		if jsonErr := extract.JSON(raw, &payload); jsonErr == nil {
			return payload.Solved
		}
	} else {
		e.logger.Warn("Solution judgment failed", "game_id", gs.ID, "error", err)
	}

	// Last-resort heuristic: the attempt names the solution outright.
	return strings.Contains(strings.ToLower(attempt), strings.ToLower(puzzle.Solution))
}

// resolvePuzzle runs one riddle attempt.
func (e *Engine) resolvePuzzle(ctx context.Context, gs *state.GameState, command string) string {
	puzzle := gs.ActivePuzzle
	puzzle.Tries++

	if e.judgeSolution(ctx, gs, puzzle, command) {
		e.finishPuzzle(gs, puzzle, true)
		return "The answer rings true. The riddle yields, and the way forward is clear."
	}

	if puzzle.Tries >= e.params.MaxTries {
		e.finishPuzzle(gs, puzzle, false)
		return "The riddle's meaning slips away for good. Whatever secret it guarded is lost to you."
	}

	hint := ""
	if puzzle.Tries-1 < len(puzzle.Clues) {
		hint = puzzle.Clues[puzzle.Tries-1]
	}
	narrative := fmt.Sprintf("Not quite. The riddle stands unsolved. (Attempt %d/%d)", puzzle.Tries+1, e.params.MaxTries)
	if hint != "" {
		narrative = fmt.Sprintf("%s\nA hint surfaces: %s", narrative, hint)
	}
	return narrative
}

func (e *Engine) finishPuzzle(gs *state.GameState, puzzle *state.Puzzle, solved bool) {
	gs.PuzzleResults = append(gs.PuzzleResults, state.PuzzleResult{
		Riddle: puzzle.Content,
		Solved: solved,
	})
	gs.ActivePuzzle = nil
}
