package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rcosta/eldrida-engine/pkg/chat"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestSafetyCheck(t *testing.T) {
	tests := []struct {
		name           string
		response       string
		wantSafe       bool
		wantViolations string
	}{
		{
			name:     "safe content",
			response: "'safe'\n'none'",
			wantSafe: true,
		},
		{
			name:           "unsafe content",
			response:       "'unsafe'\n'violence, inappropriate language'",
			wantSafe:       false,
			wantViolations: "violence, inappropriate language",
		},
		{
			name:           "unsafe without violation line",
			response:       "unsafe",
			wantSafe:       false,
			wantViolations: "content policy",
		},
		{
			name:     "garbage output fails open",
			response: "I cannot classify this",
			wantSafe: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockLLMService()
			mock.Queue(tt.response)

			s := NewSafetyService(mock, testLogger())
			safe, violations := s.Check(context.Background(), "player input")

			assert.Equal(t, tt.wantSafe, safe)
			assert.Equal(t, tt.wantViolations, violations)
		})
	}
}

func TestSafetyCheckFailsOpenOnError(t *testing.T) {
	mock := NewMockLLMService()
	mock.GenerateFunc = func(ctx context.Context, _ []chat.ChatMessage, _ float64) (string, error) {
		return "", fmt.Errorf("provider unavailable")
	}

	s := NewSafetyService(mock, testLogger())
	safe, violations := s.Check(context.Background(), "player input")

	assert.True(t, safe)
	assert.Empty(t, violations)
}

func TestSafetyCheckProfanityShortCircuits(t *testing.T) {
	mock := NewMockLLMService()

	s := NewSafetyService(mock, testLogger())
	safe, violations := s.Check(context.Background(), "go to hell, magistrate")

	assert.False(t, safe)
	assert.Equal(t, "inappropriate language", violations)
	assert.Equal(t, 0, mock.GenerateCallCount())
}
