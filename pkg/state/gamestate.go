package state

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rcosta/eldrida-engine/pkg/chat"
)

// MaxHealth is the ceiling for player health. Health is clamped to
// [0, MaxHealth] on every mutation.
const MaxHealth = 10.0

// Location is the player's position: the current settlement, and the
// sub-location being searched while an exploration is in progress.
type Location struct {
	Name              string `json:"name"`
	ExploringLocation string `json:"exploring_location,omitempty"`
}

// MapLocation is one entry in the player's known map.
type MapLocation struct {
	Description string   `json:"description"`
	Exits       []string `json:"exits"`
}

// Clue is a narrative hint. False clues are planted by the engine to
// mislead; true clues point at the real antagonist.
type Clue struct {
	Content string `json:"content"`
	ID      string `json:"id"`
	False   bool   `json:"false"`
}

// CombatResult records the outcome of one finished combat.
type CombatResult struct {
	Enemy string `json:"enemy"`
	Won   bool   `json:"won"`
}

// PuzzleResult records the outcome of one finished riddle.
type PuzzleResult struct {
	Riddle string `json:"riddle"`
	Solved bool   `json:"solved"`
}

// CombatType tilts the narrative and the resource cost of a combat.
type CombatType string

const (
	CombatPhysical     CombatType = "physical"
	CombatOral         CombatType = "oral"
	CombatProfessional CombatType = "professional"
)

// Combat is a suspended combat mini-game awaiting the player's next attempt.
type Combat struct {
	Content    string     `json:"content"`
	Clue       string     `json:"clue"`
	Tries      int        `json:"tries"`
	CombatType CombatType `json:"combat_type"`
}

// Puzzle is a suspended riddle awaiting the player's next attempt.
// Clues holds one hint per allowed attempt.
type Puzzle struct {
	Content  string   `json:"content"`
	Solution string   `json:"solution"`
	Clues    []string `json:"clues"`
	Tries    int      `json:"tries"`
}

// RewardType is what a winning exploration choice materializes.
type RewardType string

const (
	RewardTrueClue  RewardType = "true_clue"
	RewardFalseClue RewardType = "false_clue"
	RewardItem      RewardType = "item"
	RewardNone      RewardType = "none"
)

// ExplorationSuccess is the hidden answer to a pending exploration choice.
// Index is the post-shuffle position (0-based) of the winning option.
// ExploringLocation guards against answering with an option set generated
// for a different place.
type ExplorationSuccess struct {
	Index             int        `json:"index"`
	RewardType        RewardType `json:"reward_type"`
	ExploringLocation string     `json:"exploring_location"`
}

// GameState is the full persistent state of one player's game. It is
// loaded, mutated exactly once per player command, and saved back.
type GameState struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`

	History  []chat.ChatMessage     `json:"history"`
	Location Location               `json:"location"`
	KnownMap map[string]MapLocation `json:"known_map,omitempty"`

	// CurrentStage is the story stage (1..5). It becomes nil when the
	// final confrontation is won, and never otherwise decreases.
	CurrentStage *int `json:"current_state"`

	Health    float64        `json:"health"`
	Resources map[string]int `json:"resources"`
	Skill     float64        `json:"skill"`

	Clues     []Clue `json:"clues"`
	TrueClues []Clue `json:"true_clues"`

	NPCStatus map[string]NPC `json:"npc_status"`

	CombatResults []CombatResult `json:"combat_results"`
	PuzzleResults []PuzzleResult `json:"puzzle_results"`

	ActiveCombat *Combat `json:"active_combat"`
	ActivePuzzle *Puzzle `json:"active_puzzle"`

	// Pending exploration choice. These three fields live and die
	// together: set when options are presented, cleared when resolved.
	ActiveOptions      []string            `json:"active_options,omitempty"`
	WaitingForOption   bool                `json:"waiting_for_option,omitempty"`
	ExplorationSuccess *ExplorationSuccess `json:"exploration_success,omitempty"`

	// GameObjective is generated once at game creation and never changes.
	GameObjective string `json:"game_objective,omitempty"`

	// EventResult is the last event's narrative, fed back to the command
	// interpreter as context for the next turn.
	EventResult string `json:"event_result,omitempty"`

	// RecentClue is surfaced to dialogue prompts so NPCs can comment on
	// the player's latest find.
	RecentClue *Clue `json:"recent_clue,omitempty"`

	OutputImage  string `json:"output_image,omitempty"`
	AmbientSound string `json:"ambient_sound,omitempty"`
}

// NewGameState creates an empty game at stage 1. Callers are expected to
// seed the map, NPCs, resources and objective before first use.
func NewGameState() *GameState {
	stage := 1
	now := time.Now()
	return &GameState{
		ID:            uuid.New(),
		CreatedAt:     now,
		UpdatedAt:     now,
		History:       make([]chat.ChatMessage, 0),
		KnownMap:      make(map[string]MapLocation),
		CurrentStage:  &stage,
		Health:        MaxHealth,
		Resources:     make(map[string]int),
		Clues:         make([]Clue, 0),
		TrueClues:     make([]Clue, 0),
		NPCStatus:     make(map[string]NPC),
		CombatResults: make([]CombatResult, 0),
		PuzzleResults: make([]PuzzleResult, 0),
	}
}

// Validate rejects game states that violate structural invariants. It is
// called at the deserialization boundary so the engine never has to guard
// against half-formed states mid-turn.
func (gs *GameState) Validate() error {
	if gs.ID == uuid.Nil {
		return fmt.Errorf("game state has no id")
	}
	if gs.CurrentStage != nil && (*gs.CurrentStage < 1 || *gs.CurrentStage > 5) {
		return fmt.Errorf("current_state out of range: %d", *gs.CurrentStage)
	}
	if gs.Health < 0 || gs.Health > MaxHealth {
		return fmt.Errorf("health out of range: %f", gs.Health)
	}
	for item, qty := range gs.Resources {
		if qty <= 0 {
			return fmt.Errorf("resource %q has non-positive quantity %d", item, qty)
		}
	}
	if gs.ActiveCombat != nil && gs.ActivePuzzle != nil {
		return fmt.Errorf("combat and puzzle cannot both be active")
	}
	if gs.WaitingForOption && (len(gs.ActiveOptions) == 0 || gs.ExplorationSuccess == nil) {
		return fmt.Errorf("waiting for option without a pending option set")
	}
	return nil
}

// DeepCopy returns an independent copy of the game state via a JSON
// round-trip.
func (gs *GameState) DeepCopy() (*GameState, error) {
	data, err := json.Marshal(gs)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal game state: %w", err)
	}
	var cp GameState
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game state copy: %w", err)
	}
	return &cp, nil
}

// AppendHistory adds one message to the conversation history.
func (gs *GameState) AppendHistory(role, content string) {
	gs.History = append(gs.History, chat.ChatMessage{Role: role, Content: content})
}

// RecentHistory returns the last n history messages.
func (gs *GameState) RecentHistory(n int) []chat.ChatMessage {
	if n <= 0 || len(gs.History) <= n {
		return gs.History
	}
	return gs.History[len(gs.History)-n:]
}

// AddClue appends a clue to the ledger. True clues must carry an ID that
// is unique among existing true clues; duplicates are rejected.
func (gs *GameState) AddClue(c Clue) bool {
	if !c.False {
		for _, existing := range gs.TrueClues {
			if existing.ID == c.ID {
				return false
			}
		}
		gs.TrueClues = append(gs.TrueClues, c)
	}
	gs.Clues = append(gs.Clues, c)
	return true
}

// FalseClueCount counts the planted clues collected so far.
func (gs *GameState) FalseClueCount() int {
	n := 0
	for _, c := range gs.Clues {
		if c.False {
			n++
		}
	}
	return n
}

// TrueClueCount counts genuine clues collected so far.
func (gs *GameState) TrueClueCount() int {
	return len(gs.TrueClues)
}

// SetHealth clamps and stores the player's health.
func (gs *GameState) SetHealth(h float64) {
	if h < 0 {
		h = 0
	}
	if h > MaxHealth {
		h = MaxHealth
	}
	gs.Health = h
}

// ClearExploration drops any pending exploration choice.
func (gs *GameState) ClearExploration() {
	gs.ActiveOptions = nil
	gs.WaitingForOption = false
	gs.ExplorationSuccess = nil
	gs.Location.ExploringLocation = ""
}

// Stage returns the current stage, or 0 if the game has been won.
func (gs *GameState) Stage() int {
	if gs.CurrentStage == nil {
		return 0
	}
	return *gs.CurrentStage
}

// IsWon reports whether the final confrontation has been won.
func (gs *GameState) IsWon() bool {
	return gs.CurrentStage == nil
}
