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

// ActionType classifies what the player is trying to do.
type ActionType string

const (
	ActionDialogue    ActionType = "dialogue"
	ActionExploration ActionType = "exploration"
	ActionCombat      ActionType = "combat"
	ActionPuzzle      ActionType = "puzzle"
	ActionUseItem     ActionType = "use_item"
	ActionInvestigate ActionType = "investigate"
	ActionGeneric     ActionType = "generic"
)

// Action is the interpreter's classification of a player command.
type Action struct {
	Type       ActionType        `json:"action_type"`
	Details    map[string]string `json:"details"`
	Suggestion string            `json:"suggestion"`
}

var validActionTypes = map[ActionType]bool{
	ActionDialogue:    true,
	ActionExploration: true,
	ActionCombat:      true,
	ActionPuzzle:      true,
	ActionUseItem:     true,
	ActionInvestigate: true,
	ActionGeneric:     true,
}

// interpret classifies the command via the backend model. Malformed
// output degrades to a generic action rather than failing the turn.
func (e *Engine) interpret(ctx context.Context, gs *state.GameState, command string) Action {
	eventInfo := gs.EventResult
	if eventInfo == "" {
		eventInfo = "none"
	}

	prompt := fmt.Sprintf(prompts.InterpreterPrompt,
		prompts.StateContext(gs),
		eventInfo,
		command,
	)

	raw, err := e.llm.Generate(ctx, []chat.ChatMessage{
		{Role: chat.ChatRoleSystem, Content: prompts.SystemPrompt},
		{Role: chat.ChatRoleUser, Content: prompt},
	}, services.BackendTemperature)
	if err != nil {
		e.logger.Warn("Command interpretation failed", "game_id", gs.ID, "error", err)
		return genericAction()
	}

	var action Action
	if err := extract.JSON(raw, &action); err != nil {
		e.logger.Warn("Interpreter returned malformed JSON", "game_id", gs.ID, "error", err)
		return genericAction()
	}

	// Accept the long-form investigate tag some models emit.
	if action.Type == "investigate_npc" {
		action.Type = ActionInvestigate
	}
	action.Type = ActionType(strings.ToLower(string(action.Type)))
	if !validActionTypes[action.Type] {
		return genericAction()
	}
	if action.Details == nil {
		action.Details = make(map[string]string)
	}
	return action
}

func genericAction() Action {
	return Action{
		Type:       ActionGeneric,
		Details:    make(map[string]string),
		Suggestion: "Your intent is unclear. Try exploring the city or speaking with its inhabitants.",
	}
}
