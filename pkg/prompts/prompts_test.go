package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rcosta/eldrida-engine/pkg/chat"
	"github.com/rcosta/eldrida-engine/pkg/state"
)

func TestAttackPromptUsesCombatType(t *testing.T) {
	oral := AttackPrompt(state.CombatOral, "the market was tense")
	assert.Contains(t, oral, "verbal confrontation")
	assert.Contains(t, oral, "the market was tense")

	// Unknown types fall back to a physical fight.
	unknown := AttackPrompt(state.CombatType("arcane"), "context")
	assert.Contains(t, unknown, "physical fight")
}

func TestCombatResolutionPromptCentersPlayerAction(t *testing.T) {
	p := CombatResolutionPrompt("a brawl at the gate", "I swing my staff", "victory", "recent context", state.CombatPhysical)
	assert.Contains(t, p, "a brawl at the gate")
	assert.Contains(t, p, "'I swing my staff'")
	assert.Contains(t, p, "Result: victory")
}

func TestTrueCluePromptVariants(t *testing.T) {
	first := TrueCluePrompt("the objective", true)
	assert.Contains(t, first, "first true clue")

	second := TrueCluePrompt("the objective", false)
	assert.Contains(t, second, "second true clue")
}

func TestFormatInventory(t *testing.T) {
	assert.Equal(t, "empty", FormatInventory(nil))
	assert.Equal(t, "potions x2, wands x1", FormatInventory(map[string]int{"wands": 1, "potions": 2}))
}

func TestFormatHistory(t *testing.T) {
	gs := state.NewGameState()
	assert.Equal(t, "The adventure is just beginning.", FormatHistory(gs, 5))

	gs.AppendHistory(chat.ChatRoleUser, "look around")
	gs.AppendHistory(chat.ChatRoleAgent, "You see a tavern.")
	got := FormatHistory(gs, 5)
	assert.Contains(t, got, "user: look around")
	assert.Contains(t, got, "assistant: You see a tavern.")
}

func TestStateContext(t *testing.T) {
	gs := state.NewGameState()
	gs.Location.Name = "Eldrida"
	gs.Location.ExploringLocation = "the old mill"
	gs.Resources = map[string]int{"potions": 2}

	ctx := StateContext(gs)
	assert.Contains(t, ctx, "Location: Eldrida.")
	assert.Contains(t, ctx, "the old mill")
	assert.Contains(t, ctx, "Story stage: 1 of 5.")
	assert.Contains(t, ctx, "potions x2")
}

func TestFormatClues(t *testing.T) {
	assert.Equal(t, "none", FormatClues(nil))
	got := FormatClues([]state.Clue{{Content: "a torn letter"}, {Content: "muddy boots"}})
	assert.Equal(t, "a torn letter; muddy boots", got)
}
