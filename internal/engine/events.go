package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/rcosta/eldrida-engine/internal/services"
	"github.com/rcosta/eldrida-engine/pkg/chat"
	"github.com/rcosta/eldrida-engine/pkg/extract"
	"github.com/rcosta/eldrida-engine/pkg/prompts"
	"github.com/rcosta/eldrida-engine/pkg/state"
)

type eventType string

const (
	eventFalseClue eventType = "false_clue"
	eventTrick     eventType = "trick"
	eventAttack    eventType = "attack"
)

// eventCandidates returns the event types still allowed at the current
// stage, respecting per-type caps.
func (e *Engine) eventCandidates(gs *state.GameState) []eventType {
	var out []eventType

	stage := gs.Stage()
	switch {
	case stage <= 2:
		if gs.FalseClueCount() < e.params.MaxFalseClue {
			out = append(out, eventFalseClue)
		}
		if len(gs.PuzzleResults) < e.params.MaxTrick {
			out = append(out, eventTrick)
		}
		if len(gs.CombatResults) < e.params.MaxAttacks {
			out = append(out, eventAttack)
		}
	case stage <= 4:
		if len(gs.PuzzleResults) < e.params.MaxTrick {
			out = append(out, eventTrick)
		}
		if len(gs.CombatResults) < e.params.MaxAttacks {
			out = append(out, eventAttack)
		}
	}
	return out
}

// triggerEvent produces at most one scripted encounter. The second return
// reports whether the event suspends normal action handling this turn.
func (e *Engine) triggerEvent(ctx context.Context, gs *state.GameState) (string, bool) {
	candidates := e.eventCandidates(gs)
	if len(candidates) == 0 {
		return "", false
	}

	chosen := candidates[e.randomIntn(len(candidates))]
	e.logger.Debug("Event triggered", "game_id", gs.ID, "event", chosen)

	var narrative string
	var skip bool
	switch chosen {
	case eventFalseClue:
		narrative = e.plantFalseClue(ctx, gs)
	case eventTrick:
		narrative = e.startRiddle(ctx, gs)
		skip = narrative != ""
	case eventAttack:
		narrative = e.startAttack(ctx, gs)
		skip = narrative != ""
	}

	gs.EventResult = narrative
	return narrative, skip
}

// plantFalseClue plants a misleading clue and a small inventory token.
func (e *Engine) plantFalseClue(ctx context.Context, gs *state.GameState) string {
	prompt := prompts.FalseCluePrompt(gs.Location.Name, prompts.FormatHistory(gs, e.params.HistoryLimit))
	raw, err := e.llm.Generate(ctx, []chat.ChatMessage{
		{Role: chat.ChatRoleUser, Content: prompt},
	}, services.BackendTemperature)
	if err != nil {
		e.logger.Warn("False clue generation failed", "game_id", gs.ID, "error", err)
		return ""
	}

	var payload struct {
		Clue string `json:"clue"`
		ID   string `json:"id"`
	}
	if err := extract.JSON(raw, &payload); err != nil || payload.Clue == "" {
		e.logger.Warn("False clue payload malformed", "game_id", gs.ID, "error", err)
		return ""
	}
	if payload.ID == "" {
		payload.ID = uuid.NewString()
	}

	clue := state.Clue{Content: payload.Clue, ID: payload.ID, False: true}
	gs.AddClue(clue)
	gs.RecentClue = &clue
	gs.ApplyItemUpdates([]state.ItemUpdate{{Item: "mysterious_note", Change: 1}}, e.logger)

	return fmt.Sprintf("Among the shadows you find something: %s A crumpled note finds its way into your pack.", payload.Clue)
}

// addTrueClue appends a genuine clue, rejecting duplicate ids.
func (e *Engine) addTrueClue(gs *state.GameState, content, id string) bool {
	if id == "" {
		id = uuid.NewString()
	}
	clue := state.Clue{Content: content, ID: id, False: false}
	if !gs.AddClue(clue) {
		e.logger.Debug("Duplicate true clue discarded", "game_id", gs.ID, "clue_id", id)
		return false
	}
	gs.RecentClue = &clue
	return true
}

// generateTrueClue asks the backend model for a genuine clue derived from
// the game objective.
func (e *Engine) generateTrueClue(ctx context.Context, gs *state.GameState) (string, bool) {
	prompt := prompts.TrueCluePrompt(gs.GameObjective, gs.TrueClueCount() == 0)
	raw, err := e.llm.Generate(ctx, []chat.ChatMessage{
		{Role: chat.ChatRoleUser, Content: prompt},
	}, services.BackendTemperature)
	if err != nil {
		e.logger.Warn("True clue generation failed", "game_id", gs.ID, "error", err)
		return "", false
	}

	var payload struct {
		Clue string `json:"clue"`
		ID   string `json:"id"`
	}
	if err := extract.JSON(raw, &payload); err != nil || payload.Clue == "" {
		e.logger.Warn("True clue payload malformed", "game_id", gs.ID, "error", err)
		return "", false
	}

	if !e.addTrueClue(gs, payload.Clue, payload.ID) {
		return "", false
	}
	return payload.Clue, true
}

// startRiddle generates a riddle and suspends normal handling until it
// is solved or exhausted.
func (e *Engine) startRiddle(ctx context.Context, gs *state.GameState) string {
	prompt := prompts.TrickPrompt(prompts.FormatHistory(gs, e.params.HistoryLimit))
	raw, err := e.llm.Generate(ctx, []chat.ChatMessage{
		{Role: chat.ChatRoleUser, Content: prompt},
	}, services.BackendTemperature)
	if err != nil {
		e.logger.Warn("Trick generation failed", "game_id", gs.ID, "error", err)
		return ""
	}

	var payload struct {
		Trick    string   `json:"trick"`
		Solution string   `json:"solution"`
		Clues    []string `json:"clues"`
	}
	if err := extract.JSON(raw, &payload); err != nil || payload.Trick == "" || payload.Solution == "" {
		e.logger.Warn("Trick payload malformed", "game_id", gs.ID, "error", err)
		return ""
	}

	gs.ActivePuzzle = &state.Puzzle{
		Content:  payload.Trick,
		Solution: payload.Solution,
		Clues:    payload.Clues,
		Tries:    0,
	}

	return fmt.Sprintf("%s\n\nSolve it to proceed.", payload.Trick)
}

// startAttack starts a surprise combat of a stage-appropriate type.
func (e *Engine) startAttack(ctx context.Context, gs *state.GameState) string {
	combatType := e.combatTypeForStage(gs.Stage())

	prompt := prompts.AttackPrompt(combatType, prompts.FormatHistory(gs, e.params.HistoryLimit))
	raw, err := e.llm.Generate(ctx, []chat.ChatMessage{
		{Role: chat.ChatRoleUser, Content: prompt},
	}, services.BackendTemperature)
	if err != nil {
		e.logger.Warn("Attack generation failed", "game_id", gs.ID, "error", err)
		return ""
	}

	var payload struct {
		Description string `json:"description"`
		Clue        string `json:"clue"`
	}
	if err := extract.JSON(raw, &payload); err != nil || payload.Description == "" {
		e.logger.Warn("Attack payload malformed", "game_id", gs.ID, "error", err)
		return ""
	}

	gs.ActiveCombat = &state.Combat{
		Content:    payload.Description,
		Clue:       payload.Clue,
		Tries:      0,
		CombatType: combatType,
	}
	if e.params.SoundsEnabled && e.world != nil {
		if sound := e.world.Sounds["combat"]; sound != "" {
			gs.AmbientSound = sound
		}
	}

	return fmt.Sprintf("%s\n\nHint: %s", payload.Description, payload.Clue)
}

// combatTypeForStage biases early stages toward social confrontations and
// late stages toward physical ones.
func (e *Engine) combatTypeForStage(stage int) state.CombatType {
	switch {
	case stage <= 2:
		if e.random() < 0.5 {
			return state.CombatOral
		}
		return state.CombatProfessional
	case stage <= 4:
		if e.random() < 0.5 {
			return state.CombatProfessional
		}
		return state.CombatPhysical
	default:
		return state.CombatPhysical
	}
}
