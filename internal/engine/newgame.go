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

// Starting condition for a fresh adventurer.
const (
	startingSkill = 50.0
)

var defaultStartingResources = map[string]int{
	"wands":   2,
	"potions": 2,
	"energy":  5,
}

// objectivePayload is the JSON shape returned by the objective generator.
type objectivePayload struct {
	Objective string `json:"objective"`
	TrueClue  struct {
		Content string `json:"content"`
		ID      string `json:"id"`
	} `json:"true_clue"`
	NPCs []struct {
		Name        string `json:"name"`
		Status      string `json:"status"`
		Description string `json:"description"`
	} `json:"npcs"`
	WelcomeMessage string `json:"welcome_message"`
	InitialMap     map[string]struct {
		Description string   `json:"description"`
		Exits       []string `json:"exits"`
	} `json:"initial_map"`
}

// NewGame generates the hidden objective and builds a fresh game state.
// The welcome message is the first narrative entry in the history.
func (e *Engine) NewGame(ctx context.Context) (*state.GameState, error) {
	raw, err := e.llm.Generate(ctx, []chat.ChatMessage{
		{Role: chat.ChatRoleUser, Content: prompts.GameObjectivePrompt()},
	}, services.BackendTemperature)
	if err != nil {
		return nil, fmt.Errorf("failed to generate game objective: %w", err)
	}

	var payload objectivePayload
	if err := extract.JSON(raw, &payload); err != nil {
		return nil, fmt.Errorf("objective payload malformed: %w", err)
	}
	if payload.Objective == "" || len(payload.NPCs) == 0 {
		return nil, fmt.Errorf("objective payload incomplete")
	}

	gs := state.NewGameState()
	gs.GameObjective = payload.Objective
	gs.Skill = startingSkill

	for item, qty := range defaultStartingResources {
		gs.Resources[item] = qty
	}
	if e.world != nil && len(e.world.StartingResources) > 0 {
		gs.Resources = make(map[string]int)
		for item, qty := range e.world.StartingResources {
			gs.Resources[item] = qty
		}
	}

	for _, npc := range payload.NPCs {
		gs.NPCStatus[npc.Name] = state.NPC{
			Name:           npc.Name,
			Status:         parseNPCStatus(npc.Status),
			SupposedStatus: state.SupposedNeutral,
			Description:    npc.Description,
		}
	}

	// The world template seeds the map; the generated payload layers
	// invented places on top of it.
	if e.world != nil {
		for name, loc := range e.world.Locations {
			gs.KnownMap[name] = state.MapLocation{Description: loc.Description, Exits: loc.Exits}
		}
		gs.Location.Name = e.world.Start
	}
	for name, loc := range payload.InitialMap {
		gs.KnownMap[name] = state.MapLocation{Description: loc.Description, Exits: loc.Exits}
	}
	if gs.Location.Name == "" {
		for name := range payload.InitialMap {
			gs.Location.Name = name
			break
		}
	}
	if gs.Location.Name == "" {
		gs.Location.Name = "Eldrida"
		gs.KnownMap["Eldrida"] = state.MapLocation{Description: "A vibrant city under a shadow of betrayal."}
	}

	if payload.TrueClue.Content != "" {
		e.addTrueClue(gs, payload.TrueClue.Content, payload.TrueClue.ID)
	}

	welcome := payload.WelcomeMessage
	if welcome == "" {
		welcome = "You arrive in Eldrida as dusk settles. In the taverns, voices drop to whispers of betrayal."
	}
	gs.AppendHistory(chat.ChatRoleAgent, welcome)

	if e.params.SoundsEnabled && e.world != nil {
		gs.AmbientSound = e.world.SoundFor(gs.Location.Name)
	}

	if err := gs.Validate(); err != nil {
		return nil, fmt.Errorf("generated game state invalid: %w", err)
	}

	e.logger.Info("New game created", "game_id", gs.ID, "npcs", len(gs.NPCStatus))
	return gs, nil
}

func parseNPCStatus(s string) state.NPCStatusValue {
	switch s {
	case "Hostile":
		return state.NPCHostile
	case "Allied":
		return state.NPCAllied
	default:
		return state.NPCNeutral
	}
}
