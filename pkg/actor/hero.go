package actor

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"github.com/jwebster45206/d20"
)

// Default ability scores for a fresh adventurer.
const (
	DefaultIntelligence = 50
	DefaultStrength     = 50
	DefaultSkill        = 50
)

// Stats represents the core ability scores used by combat resolution.
// Scores are on a 0-100 scale.
type Stats struct {
	Intelligence int `json:"intelligence"`
	Strength     int `json:"strength"`
	Charisma     int `json:"charisma"`
	Perception   int `json:"perception"`
}

// ToAttributes converts Stats to a map for d20.Actor compatibility
func (s *Stats) ToAttributes() map[string]int {
	return map[string]int{
		"intelligence": s.Intelligence,
		"strength":     s.Strength,
		"charisma":     s.Charisma,
		"perception":   s.Perception,
	}
}

// HeroSpec is the serializable specification for the player's hero
type HeroSpec struct {
	ID              string         `json:"id"`
	Name            string         `json:"name,omitempty"`
	Class           string         `json:"class,omitempty"`
	Pronouns        string         `json:"pronouns,omitempty"`
	Description     string         `json:"description,omitempty"`
	Background      string         `json:"background,omitempty"`
	Stats           Stats          `json:"stats,omitempty"`
	HP              int            `json:"hp,omitempty"`
	MaxHP           int            `json:"max_hp,omitempty"`
	AC              int            `json:"ac,omitempty"`
	CombatModifiers map[string]int `json:"combat_modifiers,omitempty"`
	Attributes      map[string]int `json:"attributes,omitempty"`
	Inventory       map[string]int `json:"inventory,omitempty"`
}

// Hero is the runtime representation of the player character
type Hero struct {
	Spec  *HeroSpec
	Actor *d20.Actor // Built at runtime from HeroSpec
}

// NewHeroFromSpec creates a Hero from a HeroSpec.
// This is the preferred way to construct heroes after loading from storage.
func NewHeroFromSpec(spec *HeroSpec) (*Hero, error) {
	if spec == nil {
		return nil, fmt.Errorf("spec cannot be nil")
	}

	allAttrs := spec.Stats.ToAttributes()
	maps.Copy(allAttrs, spec.Attributes)

	actor, err := d20.NewActor(spec.ID).
		WithHP(spec.MaxHP).
		WithAC(spec.AC).
		WithAttributes(allAttrs).
		WithCombatModifiers(spec.CombatModifiers).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build actor: %w", err)
	}

	if spec.HP != spec.MaxHP && spec.HP > 0 {
		if err := actor.SetHP(spec.HP); err != nil {
			return nil, fmt.Errorf("failed to set HP: %w", err)
		}
	}

	return &Hero{Spec: spec, Actor: actor}, nil
}

// LoadHero loads a hero from a JSON file and builds its d20.Actor.
// The filename (without .json extension) overrides any ID in the JSON.
func LoadHero(path string) (*Hero, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read hero file: %w", err)
	}

	var spec HeroSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal hero spec: %w", err)
	}

	spec.ID = strings.TrimSuffix(filepath.Base(path), ".json")
	return NewHeroFromSpec(&spec)
}

// Intelligence returns the hero's intelligence score, falling back to the
// default when the actor carries no such attribute.
func (h *Hero) Intelligence() int {
	if h == nil || h.Actor == nil {
		return DefaultIntelligence
	}
	if val, ok := h.Actor.Attribute("intelligence"); ok {
		return val
	}
	return DefaultIntelligence
}

// Strength returns the hero's strength score, falling back to the default
// when the actor carries no such attribute.
func (h *Hero) Strength() int {
	if h == nil || h.Actor == nil {
		return DefaultStrength
	}
	if val, ok := h.Actor.Attribute("strength"); ok {
		return val
	}
	return DefaultStrength
}

// MarshalJSON converts Hero back to HeroSpec format for API responses,
// reading current runtime state from the Actor.
func (h *Hero) MarshalJSON() ([]byte, error) {
	if h == nil {
		return []byte("null"), nil
	}
	if h.Actor == nil {
		return json.Marshal(h.Spec)
	}

	getAttr := func(key string) int {
		if val, ok := h.Actor.Attribute(key); ok {
			return val
		}
		return 0
	}

	type HeroResponse struct {
		ID              string         `json:"id"`
		Name            string         `json:"name"`
		Class           string         `json:"class"`
		Pronouns        string         `json:"pronouns,omitempty"`
		Description     string         `json:"description,omitempty"`
		Background      string         `json:"background,omitempty"`
		Stats           Stats          `json:"stats"`
		HP              int            `json:"hp"`
		MaxHP           int            `json:"max_hp"`
		AC              int            `json:"ac"`
		CombatModifiers map[string]int `json:"combat_modifiers,omitempty"`
		Inventory       map[string]int `json:"inventory,omitempty"`
	}

	resp := HeroResponse{
		ID:          h.Spec.ID,
		Name:        h.Spec.Name,
		Class:       h.Spec.Class,
		Pronouns:    h.Spec.Pronouns,
		Description: h.Spec.Description,
		Background:  h.Spec.Background,
		Inventory:   h.Spec.Inventory,
	}

	resp.HP = h.Actor.HP()
	resp.MaxHP = h.Actor.MaxHP()
	resp.AC = h.Actor.AC()

	resp.Stats = Stats{
		Intelligence: getAttr("intelligence"),
		Strength:     getAttr("strength"),
		Charisma:     getAttr("charisma"),
		Perception:   getAttr("perception"),
	}

	resp.CombatModifiers = make(map[string]int)
	for _, mod := range h.Actor.GetCombatModifiers() {
		resp.CombatModifiers[mod.Reason] = mod.Value
	}

	return json.Marshal(resp)
}
