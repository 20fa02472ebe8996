package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rcosta/eldrida-engine/pkg/chat"
	"github.com/rcosta/eldrida-engine/pkg/prompts"
	"github.com/rcosta/eldrida-engine/pkg/state"
)

// performAction dispatches a classified action to its handler.
func (e *Engine) performAction(ctx context.Context, gs *state.GameState, action Action, command string) string {
	switch action.Type {
	case ActionExploration:
		return e.startExploration(ctx, gs, action.Details["location"])
	case ActionDialogue:
		return e.handleDialogue(ctx, gs, action.Details["npc"], command)
	case ActionInvestigate:
		return e.handleInvestigate(gs, action.Details["npc"])
	case ActionUseItem:
		return e.handleUseItem(ctx, gs, action.Details["item"], command)
	default:
		return e.narrate(ctx, gs, command)
	}
}

// narrate produces a plain narrative turn from the main model.
func (e *Engine) narrate(ctx context.Context, gs *state.GameState, command string) string {
	messages := []chat.ChatMessage{
		{Role: chat.ChatRoleSystem, Content: prompts.SystemPrompt},
		{Role: chat.ChatRoleSystem, Content: prompts.StateContext(gs)},
	}
	messages = append(messages, gs.RecentHistory(e.params.HistoryLimit)...)
	messages = append(messages, chat.ChatMessage{Role: chat.ChatRoleUser, Content: command})

	resp, err := e.llm.Chat(ctx, messages)
	if err != nil {
		e.logger.Warn("Narrative generation failed", "game_id", gs.ID, "error", err)
		return "The world seems to hold its breath. Nothing comes of it."
	}
	return resp.Message
}

// handleDialogue runs a conversation turn with a known NPC. Advancing the
// player's belief about the NPC happens here: first contact marks them
// Contacted, and talking to a true ally past first contact can confirm
// the alliance.
func (e *Engine) handleDialogue(ctx context.Context, gs *state.GameState, npcName, command string) string {
	npc, ok := e.findNPC(gs, npcName)
	if !ok {
		return fmt.Sprintf("No one by that name is known in Eldrida. You know of: %s.", e.knownNPCNames(gs))
	}

	switch npc.SupposedStatus {
	case state.SupposedNeutral:
		npc.SupposedStatus = state.SupposedContacted
	case state.SupposedContacted, state.SupposedSuspected:
		if npc.Status == state.NPCAllied {
			npc.SupposedStatus = state.SupposedAllied
			gs.NPCStatus[npc.Name] = npc

			prompt := prompts.AllyConfirmationPrompt(npc.Name, prompts.FormatHistory(gs, e.params.HistoryLimit))
			resp, err := e.llm.Chat(ctx, []chat.ChatMessage{
				{Role: chat.ChatRoleSystem, Content: prompts.SystemPrompt},
				{Role: chat.ChatRoleUser, Content: prompt},
			})
			if err == nil {
				return resp.Message
			}
			e.logger.Warn("Ally confirmation narrative failed", "game_id", gs.ID, "error", err)
			return fmt.Sprintf("%s lowers their voice. \"I know of the traitor's plan, and I want to stop it. You have my help.\"", npc.Name)
		}
	}
	gs.NPCStatus[npc.Name] = npc

	return e.narrate(ctx, gs, command)
}

// handleInvestigate marks an NPC as a suspect in the player's eyes.
func (e *Engine) handleInvestigate(gs *state.GameState, npcName string) string {
	npc, ok := e.findNPC(gs, npcName)
	if !ok {
		return fmt.Sprintf("No one by that name is known in Eldrida. You know of: %s.", e.knownNPCNames(gs))
	}

	if npc.SupposedStatus == state.SupposedAllied {
		return fmt.Sprintf("You trust %s. Suspecting them now would take stronger evidence than a hunch.", npc.Name)
	}

	npc.SupposedStatus = state.SupposedSuspected
	gs.NPCStatus[npc.Name] = npc
	return fmt.Sprintf("You quietly mark %s as a suspect. You watch their movements more closely from now on.", npc.Name)
}

// handleUseItem consumes an item from the ledger and narrates its use.
// Potions restore health.
func (e *Engine) handleUseItem(ctx context.Context, gs *state.GameState, item, command string) string {
	item = strings.ToLower(strings.TrimSpace(item))
	if item == "" || gs.Resource(item) == 0 {
		return fmt.Sprintf("You carry no such thing. Your pack holds: %s.", prompts.FormatInventory(gs.Resources))
	}

	gs.SpendResource(item)
	if item == "potion" || item == "potions" {
		gs.SetHealth(gs.Health + 3)
		return "You drink the potion. Warmth spreads through your limbs and your wounds begin to close."
	}

	return e.narrate(ctx, gs, command)
}

// findNPC resolves an NPC by name, case-insensitively, accepting partial
// first-name matches.
func (e *Engine) findNPC(gs *state.GameState, name string) (state.NPC, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return state.NPC{}, false
	}
	for key, npc := range gs.NPCStatus {
		lowered := strings.ToLower(key)
		if lowered == name || strings.HasPrefix(lowered, name) || strings.Contains(lowered, name) {
			return npc, true
		}
	}
	return state.NPC{}, false
}

func (e *Engine) knownNPCNames(gs *state.GameState) string {
	names := make([]string, 0, len(gs.NPCStatus))
	for name := range gs.NPCStatus {
		names = append(names, name)
	}
	if len(names) == 0 {
		return "no one yet"
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
