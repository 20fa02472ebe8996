package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rcosta/eldrida-engine/pkg/chat"
	"github.com/rcosta/eldrida-engine/pkg/prompts"
	"github.com/rcosta/eldrida-engine/pkg/textfilter"
)

// SafetyService screens player input against the content policy before it
// reaches the narrative pipeline.
type SafetyService struct {
	llm    LLMService
	filter *textfilter.Filter
	logger *slog.Logger
}

func NewSafetyService(llm LLMService, logger *slog.Logger) *SafetyService {
	return &SafetyService{llm: llm, filter: textfilter.New(), logger: logger}
}

// Check returns whether the content is safe, plus the reported violations.
// Malformed classifier output fails open: gameplay must not stall on a
// flaky moderation call.
func (s *SafetyService) Check(ctx context.Context, content string) (bool, string) {
	// Cheap lexical screen first; the classifier only sees input that
	// passes it.
	if s.filter.ContainsProfanity(content) {
		return false, "inappropriate language"
	}

	prompt := fmt.Sprintf(prompts.SafetyPrompt, prompts.ContentPolicy, content)
	raw, err := s.llm.Generate(ctx, []chat.ChatMessage{
		{Role: chat.ChatRoleUser, Content: prompt},
	}, BackendTemperature)
	if err != nil {
		s.logger.Warn("Safety check failed, allowing content", "error", err)
		return true, ""
	}

	lines := strings.Split(strings.TrimSpace(raw), "\n")
	if len(lines) == 0 {
		return true, ""
	}

	verdict := strings.ToLower(strings.Trim(strings.TrimSpace(lines[0]), "'\""))
	if verdict != "unsafe" {
		return true, ""
	}

	violations := "content policy"
	if len(lines) > 1 {
		violations = strings.Trim(strings.TrimSpace(lines[1]), "'\"")
	}
	return false, violations
}
