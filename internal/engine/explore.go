package engine

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rcosta/eldrida-engine/internal/services"
	"github.com/rcosta/eldrida-engine/pkg/chat"
	"github.com/rcosta/eldrida-engine/pkg/extract"
	"github.com/rcosta/eldrida-engine/pkg/prompts"
	"github.com/rcosta/eldrida-engine/pkg/state"
)

// explorationOption is one of the three choices presented to the player.
type explorationOption struct {
	Text    string `json:"text"`
	Outcome string `json:"outcome"`
}

// chooseRewardType draws the reward for this exploration. Once the true
// clue cap is reached, true clues are forced off the table.
func (e *Engine) chooseRewardType(gs *state.GameState) state.RewardType {
	r := e.random()
	var reward state.RewardType
	switch {
	case r < 0.35:
		reward = state.RewardTrueClue
	case r < 0.60:
		reward = state.RewardFalseClue
	case r < 0.85:
		reward = state.RewardItem
	default:
		reward = state.RewardNone
	}

	if reward == state.RewardTrueClue && gs.TrueClueCount() >= e.params.MaxTrueClue {
		reward = state.RewardFalseClue
	}
	return reward
}

// startExploration begins the three-option guessing game for a
// sub-location. Exactly one shuffled option is the hidden success.
func (e *Engine) startExploration(ctx context.Context, gs *state.GameState, target string) string {
	if target == "" {
		target = gs.Location.Name
	}
	gs.Location.ExploringLocation = target

	narrative := e.explorationNarrative(ctx, gs, target)
	reward := e.chooseRewardType(gs)
	options := e.explorationOptions(ctx, gs, narrative)

	// Fisher-Yates, tracking where the success option lands.
	successIdx := -1
	for i := range options {
		if options[i].Outcome == "success" {
			successIdx = i
		}
	}
	for i := len(options) - 1; i > 0; i-- {
		j := e.randomIntn(i + 1)
		options[i], options[j] = options[j], options[i]
		switch successIdx {
		case i:
			successIdx = j
		case j:
			successIdx = i
		}
	}

	texts := make([]string, len(options))
	for i, opt := range options {
		texts[i] = opt.Text
	}

	gs.ActiveOptions = texts
	gs.WaitingForOption = true
	gs.ExplorationSuccess = &state.ExplorationSuccess{
		Index:             successIdx,
		RewardType:        reward,
		ExploringLocation: target,
	}

	var b strings.Builder
	b.WriteString(narrative)
	b.WriteString("\n\nWhere do you look?")
	for i, text := range texts {
		fmt.Fprintf(&b, "\n%d. %s", i+1, text)
	}
	b.WriteString("\n\nAnswer with 1, 2 or 3.")
	return b.String()
}

// explorationNarrative asks the narrative model to set the scene.
func (e *Engine) explorationNarrative(ctx context.Context, gs *state.GameState, target string) string {
	prompt := prompts.ExplorationPrompt(target,
		prompts.FormatHistory(gs, e.params.HistoryLimit),
		prompts.FormatClues(gs.Clues),
	)
	raw, err := e.llm.Generate(ctx, []chat.ChatMessage{
		{Role: chat.ChatRoleSystem, Content: prompts.SystemPrompt},
		{Role: chat.ChatRoleUser, Content: prompt},
	}, services.NarrativeTemperature)
	if err != nil {
		e.logger.Warn("Exploration narrative failed", "game_id", gs.ID, "error", err)
		return fmt.Sprintf("You begin searching %s. The place holds its secrets close.", target)
	}

	var payload struct {
		Description string `json:"description"`
	}
	if jsonErr := extract.JSON(raw, &payload); jsonErr != nil || payload.Description == "" {
		return fmt.Sprintf("You begin searching %s. The place holds its secrets close.", target)
	}
	return payload.Description
}

// explorationOptions requests three tagged options and validates that
// exactly one carries the success tag, falling back to a stock template.
func (e *Engine) explorationOptions(ctx context.Context, gs *state.GameState, narrative string) []explorationOption {
	prompt := prompts.TaggedOptionsPrompt(narrative)

	raw, err := e.llm.Generate(ctx, []chat.ChatMessage{
		{Role: chat.ChatRoleUser, Content: prompt},
	}, services.BackendTemperature)
	if err != nil {
		e.logger.Warn("Exploration options failed", "game_id", gs.ID, "error", err)
		return fallbackOptions()
	}

	var payload struct {
		Options []explorationOption `json:"options"`
	}
	if jsonErr := extract.JSON(raw, &payload); jsonErr != nil {
		e.logger.Warn("Exploration options malformed", "game_id", gs.ID, "error", jsonErr)
		return fallbackOptions()
	}

	if len(payload.Options) != 3 || countSuccess(payload.Options) != 1 {
		return fallbackOptions()
	}
	return payload.Options
}

func countSuccess(options []explorationOption) int {
	n := 0
	for _, opt := range options {
		if opt.Outcome == "success" {
			n++
		}
	}
	return n
}

func fallbackOptions() []explorationOption {
	return []explorationOption{
		{Text: "Search behind the weathered stacks of crates.", Outcome: "success"},
		{Text: "Inspect the scorch marks on the far wall.", Outcome: "none"},
		{Text: "Listen at the narrow door to the cellar.", Outcome: "none"},
	}
}

// resolveOption handles the player's numeric answer to a pending
// exploration choice. Invalid input re-prompts without mutating state.
func (e *Engine) resolveOption(ctx context.Context, gs *state.GameState, command string) string {
	choice, err := strconv.Atoi(strings.TrimSpace(command))
	if err != nil || choice < 1 || choice > len(gs.ActiveOptions) {
		return fmt.Sprintf("Answer with a number between 1 and %d.", len(gs.ActiveOptions))
	}

	success := gs.ExplorationSuccess
	defer gs.ClearExploration()

	// Options generated for another place are stale and yield nothing.
	if success.ExploringLocation != gs.Location.ExploringLocation {
		return "The moment has passed. Whatever you glimpsed there is gone."
	}

	if choice-1 != success.Index {
		return "You search carefully, but find nothing of note."
	}

	return e.grantReward(ctx, gs, success.RewardType)
}

// grantReward materializes the reward behind a winning choice.
func (e *Engine) grantReward(ctx context.Context, gs *state.GameState, reward state.RewardType) string {
	switch reward {
	case state.RewardTrueClue:
		clue, ok := e.generateTrueClue(ctx, gs)
		if !ok {
			return "You sense you were close to something real, but it eludes you."
		}
		return fmt.Sprintf("Your instincts were right. You uncover a genuine lead: %s", clue)

	case state.RewardFalseClue:
		if narrative := e.plantFalseClue(ctx, gs); narrative != "" {
			return narrative
		}
		return "You find scuffed tracks that lead nowhere."

	case state.RewardItem:
		items := []string{"potion", "coin", "mysterious_note"}
		item := items[e.randomIntn(len(items))]
		gs.ApplyItemUpdates([]state.ItemUpdate{{Item: item, Change: 1}}, e.logger)
		return fmt.Sprintf("Tucked out of sight you find a %s. It may prove useful.", strings.ReplaceAll(item, "_", " "))

	default:
		return "Your search turns up nothing this time."
	}
}
