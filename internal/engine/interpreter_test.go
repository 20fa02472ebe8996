package engine

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rcosta/eldrida-engine/internal/services"
	"github.com/rcosta/eldrida-engine/pkg/chat"
)

func TestInterpret(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want ActionType
	}{
		{
			name: "exploration",
			raw:  `{"action_type": "exploration", "details": {"location": "the docks"}, "suggestion": ""}`,
			want: ActionExploration,
		},
		{
			name: "dialogue",
			raw:  `{"action_type": "dialogue", "details": {"npc": "Mira"}, "suggestion": ""}`,
			want: ActionDialogue,
		},
		{
			name: "long form investigate tag",
			raw:  `{"action_type": "investigate_npc", "details": {"npc": "Brak"}, "suggestion": ""}`,
			want: ActionInvestigate,
		},
		{
			name: "mixed case is normalized",
			raw:  `{"action_type": "Use_Item", "details": {"item": "potion"}, "suggestion": ""}`,
			want: ActionUseItem,
		},
		{
			name: "json fenced in prose is salvaged",
			raw:  "Sure, here is the classification:\n{\"action_type\": \"generic\", \"details\": {}, \"suggestion\": \"\"}",
			want: ActionGeneric,
		},
		{
			name: "unknown type degrades to generic",
			raw:  `{"action_type": "teleport", "details": {}, "suggestion": ""}`,
			want: ActionGeneric,
		},
		{
			name: "garbage degrades to generic",
			raw:  "no structure at all",
			want: ActionGeneric,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := services.NewMockLLMService()
			e, _ := newTestEngine(t, llm, 1)
			llm.Queue(tt.raw)

			gs := newTestGameState()
			action := e.interpret(context.Background(), gs, "do something")

			assert.Equal(t, tt.want, action.Type)
			assert.NotNil(t, action.Details)
		})
	}
}

func TestInterpretModelError(t *testing.T) {
	llm := services.NewMockLLMService()
	llm.GenerateFunc = func(ctx context.Context, messages []chat.ChatMessage, temperature float64) (string, error) {
		return "", fmt.Errorf("model unavailable")
	}
	e, _ := newTestEngine(t, llm, 1)

	gs := newTestGameState()
	action := e.interpret(context.Background(), gs, "do something")

	assert.Equal(t, ActionGeneric, action.Type)
	assert.NotEmpty(t, action.Suggestion)
}

func TestInterpretDetailsPreserved(t *testing.T) {
	llm := services.NewMockLLMService()
	llm.Queue(`{"action_type": "exploration", "details": {"location": "the old mill"}, "suggestion": ""}`)
	e, _ := newTestEngine(t, llm, 1)

	gs := newTestGameState()
	action := e.interpret(context.Background(), gs, "search the old mill")

	assert.Equal(t, "the old mill", action.Details["location"])
}

func TestInterpretUsesBackendTemperature(t *testing.T) {
	llm := services.NewMockLLMService()
	llm.Queue(interpJSON("generic"))
	e, _ := newTestEngine(t, llm, 1)

	gs := newTestGameState()
	e.interpret(context.Background(), gs, "hmm")

	assert.Len(t, llm.GenerateCalls, 1)
	assert.Equal(t, services.BackendTemperature, llm.GenerateCalls[0].Temperature)
}
