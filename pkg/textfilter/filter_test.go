package textfilter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReplaceProfanity(t *testing.T) {
	f := New()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "lowercase word",
			input: "what the hell is that",
			want:  "what the heck is that",
		},
		{
			name:  "uppercase is preserved",
			input: "DAMN the torpedoes",
			want:  "DANG the torpedoes",
		},
		{
			name:  "title case is preserved",
			input: "Damn, a trap",
			want:  "Dang, a trap",
		},
		{
			name:  "word boundaries are respected",
			input: "the assassin passes",
			want:  "the assassin passes",
		},
		{
			name:  "clean text is untouched",
			input: "the tavern falls silent",
			want:  "the tavern falls silent",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.ReplaceProfanity(tt.input))
		})
	}
}

func TestContainsProfanity(t *testing.T) {
	f := New()
	assert.True(t, f.ContainsProfanity("what the hell"))
	assert.False(t, f.ContainsProfanity("a quiet evening in Eldrida"))
}

func TestStripForeign(t *testing.T) {
	f := New()

	assert.Equal(t, "the rune glows", f.StripForeign("the rune глифы glows"))
	assert.Equal(t, "Eldrida's gate, at dawn.", f.StripForeign("Eldrida's gate, at dawn."))
	assert.Equal(t, "the sigil", f.StripForeign("the sigil 封印"))
}

func TestClean(t *testing.T) {
	f := New()
	assert.Equal(t, "dang runes", f.Clean("damn runes 符文"))
}
