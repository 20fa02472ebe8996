package chat

import (
	"fmt"

	"github.com/google/uuid"
)

const (
	ChatRoleUser   = "user"      // The player
	ChatRoleAgent  = "assistant" // The game master / narrator
	ChatRoleSystem = "system"    // Engine instructions
)

// ChatMessage is a single message in the conversation history.
// The role/content shape matches what the chat-completion APIs expect,
// so history entries can be sent to the LLM without translation.
type ChatMessage struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// CommandRequest is a player command submitted to the engine API.
type CommandRequest struct {
	GameStateID uuid.UUID `json:"gamestate_id"`
	Command     string    `json:"command"`
}

// CommandResponse is the engine's answer to one player command.
type CommandResponse struct {
	GameStateID  uuid.UUID `json:"gamestate_id,omitempty"`
	Narrative    string    `json:"narrative,omitempty"`
	OutputImage  string    `json:"output_image,omitempty"`
	AmbientSound string    `json:"ambient_sound,omitempty"`
	Stage        *int      `json:"current_state,omitempty"`
	Error        string    `json:"error,omitempty"`
}

// ChatResponse is a raw narrative response from an LLM backend.
type ChatResponse struct {
	Message string `json:"message,omitempty"`
}

func (cr *CommandRequest) Validate() error {
	if cr.Command == "" {
		return fmt.Errorf("command cannot be empty")
	}
	if cr.GameStateID == uuid.Nil {
		return fmt.Errorf("gamestate_id is required")
	}
	return nil
}
