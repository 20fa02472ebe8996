package state

// NPCStatusValue is the NPC's true disposition toward the player.
type NPCStatusValue string

const (
	NPCHostile NPCStatusValue = "Hostile"
	NPCAllied  NPCStatusValue = "Allied"
	NPCNeutral NPCStatusValue = "Neutral"
)

// SupposedStatusValue is the player's working belief about an NPC,
// advanced by dialogue and events independently of the NPC's real status.
type SupposedStatusValue string

const (
	SupposedNeutral   SupposedStatusValue = "Neutral"
	SupposedContacted SupposedStatusValue = "Contacted"
	SupposedSuspected SupposedStatusValue = "Suspected"
	SupposedAllied    SupposedStatusValue = "Allied"
)

// NPC is one non-player character the player knows about.
type NPC struct {
	Name           string              `json:"name"`
	Status         NPCStatusValue      `json:"status"`
	SupposedStatus SupposedStatusValue `json:"supposed_status"`
	Description    string              `json:"description,omitempty"`
}

// SuspectCount counts NPCs the player currently suspects.
func (gs *GameState) SuspectCount() int {
	n := 0
	for _, npc := range gs.NPCStatus {
		if npc.SupposedStatus == SupposedSuspected {
			n++
		}
	}
	return n
}

// ConfirmedAllyCount counts NPCs that are both truly allied and believed
// allied by the player.
func (gs *GameState) ConfirmedAllyCount() int {
	n := 0
	for _, npc := range gs.NPCStatus {
		if npc.Status == NPCAllied && npc.SupposedStatus == SupposedAllied {
			n++
		}
	}
	return n
}

// FalseAllyCount counts NPCs the player believes allied that are not.
func (gs *GameState) FalseAllyCount() int {
	n := 0
	for _, npc := range gs.NPCStatus {
		if npc.SupposedStatus == SupposedAllied && npc.Status != NPCAllied {
			n++
		}
	}
	return n
}

// HasConfirmedAlly reports whether at least one true ally is known.
func (gs *GameState) HasConfirmedAlly() bool {
	return gs.ConfirmedAllyCount() > 0
}
