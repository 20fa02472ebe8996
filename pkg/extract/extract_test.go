package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cluePayload struct {
	Clue string `json:"clue"`
	ID   string `json:"id"`
}

func TestJSON_CleanObject(t *testing.T) {
	var p cluePayload
	err := JSON(`{"clue":"The miller lies","id":"clue-7"}`, &p)
	require.NoError(t, err)
	assert.Equal(t, "The miller lies", p.Clue)
	assert.Equal(t, "clue-7", p.ID)
}

func TestJSON_SalvagesEmbeddedObject(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{
			name: "leading prose",
			raw:  `Here is the clue you asked for: {"clue":"The miller lies","id":"clue-7"}`,
		},
		{
			name: "trailing prose",
			raw:  `{"clue":"The miller lies","id":"clue-7"} I hope this helps!`,
		},
		{
			name: "markdown fences",
			raw:  "```json\n{\"clue\":\"The miller lies\",\"id\":\"clue-7\"}\n```",
		},
		{
			name: "nested braces",
			raw:  `Sure: {"clue":"The miller lies","id":"clue-7"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p cluePayload
			err := JSON(tt.raw, &p)
			require.NoError(t, err)
			assert.Equal(t, "clue-7", p.ID)
		})
	}
}

func TestJSON_NoObject(t *testing.T) {
	var p cluePayload
	err := JSON("I cannot answer that.", &p)
	assert.Error(t, err)
}

func TestJSON_MalformedObject(t *testing.T) {
	var p cluePayload
	err := JSON(`{"clue": "unterminated`, &p)
	assert.Error(t, err)
}
