package engine

import (
	"context"
	"fmt"

	"github.com/rcosta/eldrida-engine/internal/services"
	"github.com/rcosta/eldrida-engine/pkg/chat"
	"github.com/rcosta/eldrida-engine/pkg/extract"
	"github.com/rcosta/eldrida-engine/pkg/prompts"
	"github.com/rcosta/eldrida-engine/pkg/state"
)

// Combat resolution weights. Win probability combines the player's
// condition with a flat bonus for using the supplied hint and, in the
// final stage, for fighting alongside a confirmed ally.
const (
	combatBaseRate  = 0.3
	healthWeight    = 0.4
	skillWeight     = 0.3
	intellectWeight = 0.2
	strengthWeight  = 0.1
	clueBonus       = 0.2
	allyBonus       = 0.15

	skillGrowth       = 1.1
	physicalHealthHit = 0.9
)

// winProbability computes the chance of winning this attempt.
func (e *Engine) winProbability(gs *state.GameState, usedClue bool) float64 {
	healthFrac := gs.Health / state.MaxHealth
	skillFrac := gs.Skill / 100.0
	intFrac := float64(e.hero.Intelligence()) / 100.0
	strFrac := float64(e.hero.Strength()) / 100.0

	p := combatBaseRate * (healthFrac*healthWeight + skillFrac*skillWeight +
		intFrac*intellectWeight + strFrac*strengthWeight)
	if usedClue {
		p += clueBonus
	}
	if gs.Stage() == 5 && gs.HasConfirmedAlly() {
		p += allyBonus
	}

	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	return p
}

// checkClueUsed asks the backend model whether the player's action used
// the combat hint. Malformed output counts as not used.
func (e *Engine) checkClueUsed(ctx context.Context, gs *state.GameState, action, clue string) bool {
	if clue == "" {
		return false
	}

	raw, err := e.llm.Generate(ctx, []chat.ChatMessage{
		{Role: chat.ChatRoleUser, Content: prompts.CheckCluePrompt(action, clue)},
	}, services.BackendTemperature)
	if err != nil {
		e.logger.Warn("Clue usage check failed", "game_id", gs.ID, "error", err)
		return false
	}

	var payload struct {
		UsedClue bool `json:"used_clue"`
	}
	if err := extract.JSON(raw, &payload); err != nil {
		return false
	}
	return payload.UsedClue
}

// resolveCombat runs one combat attempt. The second return reports a win,
// which the stage controller needs for the final confrontation.
func (e *Engine) resolveCombat(ctx context.Context, gs *state.GameState, command string) (string, bool) {
	combat := gs.ActiveCombat
	combat.Tries++

	usedClue := e.checkClueUsed(ctx, gs, command, combat.Clue)
	p := e.winProbability(gs, usedClue)
	won := e.random() < p

	// Skill sharpens with every exchange. Physical combat also wears the
	// player down.
	gs.Skill *= skillGrowth
	if combat.CombatType == state.CombatPhysical && !won {
		gs.SetHealth(gs.Health * physicalHealthHit)
	}
	if combat.CombatType != state.CombatPhysical {
		gs.SpendResource("energy")
	}

	switch {
	case won:
		result := "victory"
		if gs.Stage() == 5 && gs.HasConfirmedAlly() {
			result = "final victory"
		}
		narrative := e.combatNarrative(ctx, gs, combat, command, result)
		e.finishCombat(gs, combat, true)
		return narrative, true

	case combat.Tries >= e.params.MaxTries:
		narrative := e.combatNarrative(ctx, gs, combat, command, "defeat")
		e.finishCombat(gs, combat, false)
		return narrative, false

	default:
		narrative := e.combatNarrative(ctx, gs, combat, command, "ongoing")
		e.refreshCombatClue(ctx, gs, combat)
		if combat.Clue != "" {
			narrative = fmt.Sprintf("%s\n\nHint: %s", narrative, combat.Clue)
		}
		return fmt.Sprintf("%s\n\n(Attempt %d/%d)", narrative, combat.Tries+1, e.params.MaxTries), false
	}
}

// refreshCombatClue fetches a new hint for the next attempt, so each
// exchange offers a different opening. The old hint stays in place when
// generation fails.
func (e *Engine) refreshCombatClue(ctx context.Context, gs *state.GameState, combat *state.Combat) {
	prompt := prompts.AttackPrompt(combat.CombatType, prompts.FormatHistory(gs, e.params.HistoryLimit))
	raw, err := e.llm.Generate(ctx, []chat.ChatMessage{
		{Role: chat.ChatRoleUser, Content: prompt},
	}, services.BackendTemperature)
	if err != nil {
		e.logger.Warn("Combat clue refresh failed", "game_id", gs.ID, "error", err)
		return
	}

	var payload struct {
		Description string `json:"description"`
		Clue        string `json:"clue"`
	}
	if err := extract.JSON(raw, &payload); err != nil || payload.Clue == "" {
		return
	}
	combat.Clue = payload.Clue
}

// finishCombat records the outcome, clears the encounter and restores the
// ambient sound for the current location.
func (e *Engine) finishCombat(gs *state.GameState, combat *state.Combat, won bool) {
	gs.CombatResults = append(gs.CombatResults, state.CombatResult{
		Enemy: combat.Content,
		Won:   won,
	})
	gs.ActiveCombat = nil

	if e.params.SoundsEnabled && e.world != nil {
		gs.AmbientSound = e.world.SoundFor(gs.Location.Name)
	}
}

// combatNarrative narrates an attempt, falling back to a stock line if
// the model call fails.
func (e *Engine) combatNarrative(ctx context.Context, gs *state.GameState, combat *state.Combat, command, result string) string {
	prompt := prompts.CombatResolutionPrompt(
		combat.Content,
		command,
		result,
		prompts.FormatHistory(gs, e.params.HistoryLimit),
		combat.CombatType,
	)
	resp, err := e.llm.Chat(ctx, []chat.ChatMessage{
		{Role: chat.ChatRoleSystem, Content: prompts.SystemPrompt},
		{Role: chat.ChatRoleUser, Content: prompt},
	})
	if err != nil {
		e.logger.Warn("Combat narrative failed", "game_id", gs.ID, "error", err)
		switch result {
		case "victory", "final victory":
			return "Your opponent falters and yields. The confrontation is won."
		case "defeat":
			return "Your opponent overwhelms you. This confrontation is lost."
		default:
			return "The confrontation continues. You may try again."
		}
	}
	return resp.Message
}
