// Package extract recovers structured payloads from LLM text output.
// Models are instructed to answer with bare JSON, but they routinely wrap
// the object in prose or markdown fences; every structured call in the
// engine goes through this package before giving up on a response.
package extract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// objectPattern matches the outermost JSON object in a blob of text.
var objectPattern = regexp.MustCompile(`(?s)\{.*\}`)

// JSON decodes raw model output into v. A direct unmarshal is attempted
// first; on failure the first-to-last-brace span is salvaged and retried.
func JSON(raw string, v any) error {
	cleaned := stripFences(raw)

	if err := json.Unmarshal([]byte(cleaned), v); err == nil {
		return nil
	}

	match := objectPattern.FindString(cleaned)
	if match == "" {
		return fmt.Errorf("no JSON object found in response")
	}
	if err := json.Unmarshal([]byte(match), v); err != nil {
		return fmt.Errorf("failed to parse salvaged JSON: %w", err)
	}
	return nil
}

// stripFences removes markdown code fences that some models insist on
// adding around JSON output.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
