package prompts

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rcosta/eldrida-engine/pkg/state"
)

// ContentPolicy is appended to every generation prompt. Content must stay
// suitable for a general audience.
const ContentPolicy = `Content must be safe and appropriate for everyone. Avoid explicit violence, sexual content, hate speech, or any offensive material.`

// SystemPrompt frames every narrative call. The narrator is the Game
// Master of a fantasy mystery set in the realm of Arkonix.
const SystemPrompt = `You are the Game Master of a fantasy RPG set in Arkonix. The player hunts a traitor in the city of Eldrida. Provide immersive but concise narrative responses with an epic tone. Include brief descriptions of locations, NPCs and events. Respond in English with at most 100 words.`

// SafetyPrompt asks the model to classify content against the policy.
// The reply must be exactly two lines: a verdict and a violation list.
const SafetyPrompt = `Analyze the content below and determine whether it is safe according to the policy.
Return EXACTLY two lines:
Line 1: 'safe' or 'unsafe'
Line 2: A list of violations (e.g. 'violence'), or 'none' when there are no violations.

VALID EXAMPLE:
'safe'
'none'

BOTH LINES ARE REQUIRED.
INVALID EXAMPLE:
'safe'

VALID EXAMPLE:
'unsafe'
'violence, inappropriate language'

Do not answer the content's question, only judge whether it is safe.
Do not respond with additional text, only the two requested lines.

Policy: %s

Content: %s`

// InterpreterPrompt classifies the player's raw command into an action type.
const InterpreterPrompt = `Interpret the player's command in the context of an RPG set in Eldrida. Return ONLY a JSON object with:
- "action_type": one of ("dialogue", "exploration", "combat", "puzzle", "use_item", "investigate", "generic")
- "details": an object with specifics (e.g. {"npc": "Lyra"}, {"location": "Tavern"}, {"item": "potion"})
- "suggestion": a string with one relevant action suggestion (e.g. "Explore the city and talk to its inhabitants") if the command is vague, otherwise empty ("")
Respond in English with at most 100 words. Do not include text outside the JSON.

Context: %s
Recent events: %s
Command: %s`

// InventoryPrompt detects item changes implied by a narrative turn.
const InventoryPrompt = `Analyze the story and detect inventory changes (wands, potions, energy and other items).
Return JSON with the changes.
Return ONLY a JSON object
(example: {"itemUpdates": [{"item": "wands", "change": 1}]}).

Story: %s
Current inventory: %s`

// FalseCluePrompt plants a misleading clue in the current location.
func FalseCluePrompt(location, recentHistory string) string {
	return fmt.Sprintf(`Create a false clue for a fantasy RPG in %s, Eldrida.
Base it on the recent context: %s.
Return ONLY a JSON object: {"clue": "false clue", "id": "unique id"}.
Do not include text outside the JSON.
Use common words and avoid jargon.
At most 50 words.
%s`, location, recentHistory, ContentPolicy)
}

// CheckCluePrompt asks whether the player's message used the hint.
func CheckCluePrompt(message, clue string) string {
	return fmt.Sprintf(`Evaluate whether the hint was used in the message.
HINT: %s
MESSAGE: %s
Return ONLY a JSON object: {"used_clue": true} or {"used_clue": false}.
Do not include text outside the JSON.
Make sure the JSON is complete and well-formed.`, clue, message)
}

var combatDescriptions = map[state.CombatType]string{
	state.CombatOral:         "a verbal confrontation where the player must persuade or convince the opponent with arguments or evidence",
	state.CombatProfessional: "a contest of skill where the player must demonstrate greater competence or strategy",
	state.CombatPhysical:     "a physical fight where the player faces the opponent in battle",
}

// AttackPrompt generates a surprise combat encounter of the given type.
func AttackPrompt(combatType state.CombatType, recentHistory string) string {
	desc, ok := combatDescriptions[combatType]
	if !ok {
		desc = combatDescriptions[state.CombatPhysical]
	}
	return fmt.Sprintf(`Generate a situation of the kind: %s, based on the recent context: %s.
Briefly describe the opponent and setting (1-2 sentences).
Generate a hint that makes victory easier (e.g. evidence for a verbal confrontation, a tactic for a contest of skill, a weakness for a fight).
Return ONLY a JSON object: {"description": "description", "clue": "hint to win"}.
Do not include text outside the JSON.
The description and the hint must each be at most 50 words.
Make sure the JSON is complete and well-formed.
%s`, desc, recentHistory, ContentPolicy)
}

var combatInstructions = map[state.CombatType]string{
	state.CombatOral:         "Describe a verbal debate where the player uses arguments or evidence to persuade the opponent. For victories, highlight the successful persuasion. For defeats, indicate the arguments did not convince.",
	state.CombatProfessional: "Describe a contest of skill where the player demonstrates competence. For victories, highlight the player's superiority. For defeats, indicate the opponent was more skilled.",
	state.CombatPhysical:     "Describe a physical fight with intense action. For victories, highlight the triumph in battle. For defeats, indicate the player was physically overpowered. If the result is 'final victory', include the ally helping to win.",
}

// CombatResolutionPrompt narrates one combat attempt and its outcome.
func CombatResolutionPrompt(combatContent, action, result, storyContext string, combatType state.CombatType) string {
	instruction, ok := combatInstructions[combatType]
	if !ok {
		instruction = combatInstructions[state.CombatPhysical]
	}
	return fmt.Sprintf(`Create an immersive narrative response for the resolution of an encounter.
Type: %s. %s
Encounter: %s
Player action: %s
Result: %s
Recent context: %s
Base the narrative PRIMARILY on the player action provided: '%s'.
Use the recent context ONLY for atmosphere (e.g. location, tone of the story), without incorporating earlier actions from the history.
For ongoing encounters, indicate the player may try again, without mentioning specific attempt counts.
For victories or defeats, focus on the player's most recent action and its impact on the result.
Avoid mentioning health, skill, or the provided hint.
Return a plain string with the narration (2-5 sentences) in English, no JSON.
At most 100 words.
%s`, combatType, instruction, combatContent, action, result, storyContext, action, ContentPolicy)
}

// PuzzleJudgePrompt asks whether an attempt solves the riddle.
func PuzzleJudgePrompt(riddle, solution, attempt string) string {
	return fmt.Sprintf(`Judge whether the player's attempt solves the riddle.
RIDDLE: %s
CANONICAL SOLUTION: %s
ATTEMPT: %s
Return ONLY a JSON object: {"solved": true} or {"solved": false}.
Do not include text outside the JSON.
Make sure the JSON is complete and well-formed.`, riddle, solution, attempt)
}

// TrickPrompt generates a riddle with a solution and three graded hints.
func TrickPrompt(recentHistory string) string {
	return fmt.Sprintf(`Create a riddle in Eldrida based on the recent context: %s.
Provide a short narrative description (1-2 sentences).
Return JSON: {"trick": "description", "solution": "solution", "clues": ["hint1", "hint2", "hint3"]}.
Return ONLY JSON. Do not include text outside the JSON.
The riddle must be thematic (e.g. runes, a guard).
Respond in English with at most 100 words.
%s`, recentHistory, ContentPolicy)
}

// ExplorationPrompt narrates a search of a sub-location.
func ExplorationPrompt(location, recentHistory, clues string) string {
	return fmt.Sprintf(`Create an immersive narrative for an exploration action in %s in Eldrida, in the context of a fantasy RPG.
Base it on the recent context: %s.
Current clues: %s.
Return ONLY a JSON object: {"description": "narrative (1-2 sentences)", "item": "item found (mysterious_note, coin, potion) or empty", "clue": "clue found or empty"}.
Do not include text outside the JSON.
The narrative must be thematic and include clues or items when relevant.
At most 100 words.
%s`, location, recentHistory, clues, ContentPolicy)
}

// TaggedOptionsPrompt requests three search options with exactly one
// hidden success tag.
func TaggedOptionsPrompt(scene string) string {
	return fmt.Sprintf(`Based on the exploration scene: '%s', generate exactly 3 short search options for the player.
Exactly ONE option must be tagged "success"; the other two must be tagged "none".
Return ONLY a JSON object: {"options": [{"text": "option text", "outcome": "success"|"none"}, ...]}.
Do not include text outside the JSON.
Each option text must be at most 15 words.
%s`, scene, ContentPolicy)
}

// ExplorationOptionsPrompt produces follow-up choices after an exploration.
func ExplorationOptionsPrompt(explorationResult, recentHistory string) string {
	return fmt.Sprintf(`Based on the exploration: '%s' and recent context: '%s',
generate action options for the player in Eldrida.
Include up to 4 options, with at least one of each: dialogue (talk to an NPC), exploration (visit a place), use an item, and investigate (mark an NPC as suspect).
Return ONLY a JSON object: {"options": [{"action": "type", "details": {"npc": "name" | "location": "place" | "item": "item"}}, ...]}.
Do not include text outside the JSON.
%s`, explorationResult, recentHistory, ContentPolicy)
}

// GameObjectivePrompt generates the hidden objective, cast and starting map
// for a new game.
func GameObjectivePrompt() string {
	return fmt.Sprintf(`Create a game objective for a fantasy RPG in Eldrida. Structure the response ONLY as a JSON object with the fields below. Use plain English, no special characters or jargon.
Return ONLY a JSON object. Do not include text outside the JSON.
- "objective": An epic narrative (150-200 words) about a traitor (e.g. Lyrien Darkscale), a secret relic (e.g. EnterWealther), and a trustworthy ally (e.g. Eira Shadowglow). Include the traitor's plan (e.g. a ritual at the solstice) and mention three supporting NPCs with roles in the plot (e.g. a sage, a merchant, a druid).
- "true_clue": An object with "content" (a clue about the traitor, e.g. "Lyrien seeks EnterWealther") and "id" (a unique string, e.g. "clue1").
- "npcs": A list of objects, each with "name" (e.g. Lyrien Darkscale), "status" (Hostile, Allied, Neutral), and "description" (10-15 words describing the NPC without spoilers, e.g. "Lyrien: A shadowy mage with piercing eyes."). Include the traitor, the ally, and the three supporting NPCs.
- "welcome_message": An opening message (20-30 words) introducing Eldrida and a vague rumor of betrayal, without spoilers (e.g. "You arrive in Eldrida and hear rumors of betrayal...").
- "initial_map": An object with one starting location "Eldrida" containing "description" (e.g. "A vibrant city") and "exits" (a list of 3-4 exits, e.g. ["Forest", "Castle"]).

Example format:
{
    "objective": "text",
    "true_clue": {"content": "clue", "id": "clue1"},
    "npcs": [{"name": "Name", "status": "Neutral", "description": "text"}],
    "welcome_message": "text",
    "initial_map": {"Eldrida": {"description": "text", "exits": ["place1", "place2"]}}
}

%s`, ContentPolicy)
}

// TrueCluePrompt extracts or derives a genuine clue from the objective.
func TrueCluePrompt(objective string, isFirst bool) string {
	instruction := "Generate a second true clue, revealing the traitor's plan (e.g. 'The traitor plans to use the relic at the solstice')."
	if isFirst {
		instruction = "Extract the first true clue from the objective, indicating the existence of the secret relic (e.g. 'The traitor has seized a secret relic')."
	}
	return fmt.Sprintf(`%s
Objective: %s
Return ONLY a JSON object: {"clue": "true clue", "id": "unique id"}.
Do not include text outside the JSON.
The clue must be at most 50 words, in plain English, no special characters.
Make sure the JSON is complete and well-formed.
%s`, instruction, objective, ContentPolicy)
}

// AllyConfirmationPrompt stages the dialogue where a true ally reveals
// themselves to the player.
func AllyConfirmationPrompt(npc, storyContext string) string {
	return fmt.Sprintf(`Create a dialogue in English confirming %s as a trustworthy ally in Eldrida.
Context: %s.
Show %s revealing their opposition to the traitor (e.g. 'I know of the traitor's plan and I want to stop it').
Return only the dialogue (e.g. %s: "Text..." You: "Text..."), no narration or brackets.
At most 3 exchanges, 80 words.
%s`, npc, storyContext, npc, npc, ContentPolicy)
}

// StateContext renders a compact textual summary of the game state for
// prompt context.
func StateContext(gs *state.GameState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Location: %s.", gs.Location.Name)
	if gs.Location.ExploringLocation != "" {
		fmt.Fprintf(&b, " Currently searching: %s.", gs.Location.ExploringLocation)
	}
	if stage := gs.Stage(); stage > 0 {
		fmt.Fprintf(&b, " Story stage: %d of 5.", stage)
	}
	if len(gs.Resources) > 0 {
		fmt.Fprintf(&b, " Inventory: %s.", FormatInventory(gs.Resources))
	}
	if n := len(gs.Clues); n > 0 {
		fmt.Fprintf(&b, " Clues collected: %d.", n)
	}
	return b.String()
}

// FormatInventory renders a resource map as "item xN" pairs in a stable
// human-readable form.
func FormatInventory(resources map[string]int) string {
	if len(resources) == 0 {
		return "empty"
	}
	parts := make([]string, 0, len(resources))
	for _, item := range sortedKeys(resources) {
		parts = append(parts, fmt.Sprintf("%s x%d", item, resources[item]))
	}
	return strings.Join(parts, ", ")
}

// FormatHistory renders recent chat messages as "role: content" lines.
func FormatHistory(gs *state.GameState, n int) string {
	msgs := gs.RecentHistory(n)
	if len(msgs) == 0 {
		return "The adventure is just beginning."
	}
	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		lines = append(lines, fmt.Sprintf("%s: %s", m.Role, m.Content))
	}
	return strings.Join(lines, "\n")
}

// FormatClues renders the clue ledger as a semicolon-joined list.
func FormatClues(clues []state.Clue) string {
	if len(clues) == 0 {
		return "none"
	}
	parts := make([]string, 0, len(clues))
	for _, c := range clues {
		parts = append(parts, c.Content)
	}
	return strings.Join(parts, "; ")
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
