package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/rcosta/eldrida-engine/internal/services"
	"github.com/rcosta/eldrida-engine/pkg/chat"
	"github.com/rcosta/eldrida-engine/pkg/extract"
	"github.com/rcosta/eldrida-engine/pkg/prompts"
	"github.com/rcosta/eldrida-engine/pkg/state"
)

// Narrative suffixes appended exactly once per stage transition.
var stageNarratives = map[int]string{
	2: "The rumors harden into certainty. Somewhere in Eldrida, a traitor moves against the city. Your search has truly begun.",
	3: "The false trails fall away. You know now which threads are real, and the traitor's shadow grows sharper.",
	4: "With a trusted ally at your side and your suspects marked, the net begins to close.",
	5: "Everything points to one confrontation. The traitor knows you are coming. It ends soon.",
}

const finalNarrative = "The traitor falls, and the relic's power is broken. Eldrida is safe, and your name passes into its stories. *.*.*. THE END .*.*.*"

// advanceStage evaluates the progression conditions and advances the
// stage at most one step per turn. Returns the transition narrative, or
// empty when no transition fires. Stages never regress, and re-checking
// an already-transitioned state appends nothing.
func (e *Engine) advanceStage(gs *state.GameState, wonCombat bool) string {
	if gs.CurrentStage == nil {
		return ""
	}
	stage := *gs.CurrentStage

	switch stage {
	case 1:
		// The hunt starts in earnest once betrayal enters the story.
		if e.betrayalMentioned(gs) {
			return e.setStage(gs, 2)
		}
	case 2:
		if gs.FalseClueCount() >= e.params.MaxFalseClue && gs.TrueClueCount() >= 2 {
			return e.setStage(gs, 3)
		}
	case 3:
		if gs.HasConfirmedAlly() && gs.SuspectCount() >= e.params.MaxFalseAlly {
			return e.setStage(gs, 4)
		}
	case 4:
		if gs.TrueClueCount() >= 2 {
			return e.setStage(gs, 5)
		}
	case 5:
		if wonCombat && gs.HasConfirmedAlly() && gs.TrueClueCount() >= 2 {
			gs.CurrentStage = nil
			return finalNarrative
		}
	}
	return ""
}

func (e *Engine) setStage(gs *state.GameState, stage int) string {
	gs.CurrentStage = &stage
	e.logger.Info("Stage advanced", "game_id", gs.ID, "stage", stage)
	return stageNarratives[stage]
}

// betrayalMentioned scans the recent story for talk of the traitor.
func (e *Engine) betrayalMentioned(gs *state.GameState) bool {
	keywords := []string{"traitor", "betray", "treason"}
	for _, msg := range gs.RecentHistory(e.params.HistoryLimit) {
		lowered := strings.ToLower(msg.Content)
		for _, kw := range keywords {
			if strings.Contains(lowered, kw) {
				return true
			}
		}
	}
	return false
}

// detectInventoryChanges asks the backend model which items changed hands
// in the narrative and applies the result to the ledger.
func (e *Engine) detectInventoryChanges(ctx context.Context, gs *state.GameState, narrative string) {
	prompt := fmt.Sprintf(prompts.InventoryPrompt, narrative, prompts.FormatInventory(gs.Resources))
	raw, err := e.llm.Generate(ctx, []chat.ChatMessage{
		{Role: chat.ChatRoleUser, Content: prompt},
	}, services.BackendTemperature)
	if err != nil {
		e.logger.Warn("Inventory detection failed", "game_id", gs.ID, "error", err)
		return
	}

	var payload struct {
		ItemUpdates []state.ItemUpdate `json:"itemUpdates"`
	}
	if err := extract.JSON(raw, &payload); err != nil {
		e.logger.Debug("Inventory detection returned no updates", "game_id", gs.ID)
		return
	}

	gs.ApplyItemUpdates(payload.ItemUpdates, e.logger)
}
