package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/rcosta/eldrida-engine/pkg/chat"
)

// GeminiService implements LLMService against the Google Gemini API.
type GeminiService struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

var _ LLMService = (*GeminiService)(nil)

// NewGeminiService creates a Gemini-backed LLM service.
func NewGeminiService(ctx context.Context, apiKey, modelName string) (*GeminiService, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiService{
		client: client,
		model:  client.GenerativeModel(modelName),
	}, nil
}

// InitModel initializes the model (Gemini requires no explicit initialization)
func (s *GeminiService) InitModel(ctx context.Context, modelName string) error {
	s.model = s.client.GenerativeModel(modelName)
	return nil
}

func (s *GeminiService) Close() error {
	return s.client.Close()
}

// flatten renders chat messages as a single prompt. Gemini's multi-turn
// API expects alternating roles, which the engine's backend calls do not
// guarantee.
func flatten(messages []chat.ChatMessage) string {
	var b strings.Builder
	for _, m := range messages {
		if m.Role == chat.ChatRoleSystem {
			b.WriteString(m.Content)
			b.WriteString("\n\n")
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Content)
	}
	return b.String()
}

func (s *GeminiService) generateText(ctx context.Context, messages []chat.ChatMessage, temperature float64) (string, error) {
	s.model.SetTemperature(float32(temperature))

	resp, err := s.model.GenerateContent(ctx, genai.Text(flatten(messages)))
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return msgNoResponse, nil
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("unexpected response type from gemini")
	}

	return strings.TrimSpace(string(text)), nil
}

// Chat generates a narrative response
func (s *GeminiService) Chat(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error) {
	content, err := s.generateText(ctx, messages, NarrativeTemperature)
	if err != nil {
		return nil, err
	}
	return &chat.ChatResponse{Message: content}, nil
}

// Generate runs a single completion at the given temperature
func (s *GeminiService) Generate(ctx context.Context, messages []chat.ChatMessage, temperature float64) (string, error) {
	return s.generateText(ctx, messages, temperature)
}
