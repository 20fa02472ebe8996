package services

import (
	"context"

	"github.com/rcosta/eldrida-engine/pkg/chat"
)

// Temperature presets. Narrative calls use the creative default; backend
// calls that must emit strict JSON run cold.
const (
	NarrativeTemperature = 0.7
	BackendTemperature   = 0.0
)

// LLMService defines the interface for interacting with an LLM provider.
type LLMService interface {
	// InitModel initializes the model on startup.
	InitModel(ctx context.Context, modelName string) error

	// Chat generates a narrative chat response.
	Chat(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error)

	// Generate runs a single completion at the given temperature and
	// returns the raw text. Backend JSON calls go through this.
	Generate(ctx context.Context, messages []chat.ChatMessage, temperature float64) (string, error)
}

// ImageService generates a scene illustration, returning a path or URL
// servable to the client.
type ImageService interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
}
