// Package world loads the static world template that seeds new games.
package world

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Location is one place the player can visit.
type Location struct {
	Description string   `yaml:"description" json:"description"`
	Exits       []string `yaml:"exits" json:"exits"`
	// Sound names an ambient sound cue for this location, resolved
	// against the world's sound table.
	Sound string `yaml:"sound,omitempty" json:"sound,omitempty"`
}

// NPCTemplate is a stock character available to the objective generator.
type NPCTemplate struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// World is the static template for a game setting. It seeds the starting
// map and resources; the objective generator invents the cast and plot on
// top of it.
type World struct {
	Name        string              `yaml:"name" json:"name"`
	Description string              `yaml:"description,omitempty" json:"description,omitempty"`
	Start       string              `yaml:"start" json:"start"`
	Locations   map[string]Location `yaml:"locations" json:"locations"`
	NPCs        []NPCTemplate       `yaml:"npcs,omitempty" json:"npcs,omitempty"`

	// Sounds maps cue names to audio file paths served to the client.
	Sounds map[string]string `yaml:"sounds,omitempty" json:"sounds,omitempty"`

	// StartingResources is the player's initial inventory.
	StartingResources map[string]int `yaml:"starting_resources,omitempty" json:"starting_resources,omitempty"`
}

// Load reads and validates a world template from a YAML file.
func Load(path string) (*World, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read world file: %w", err)
	}

	var w World
	if err := yaml.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("failed to parse world file: %w", err)
	}

	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &w, nil
}

// Validate checks structural requirements: a named start location must
// exist, and every exit must point at a defined location.
func (w *World) Validate() error {
	if w.Name == "" {
		return fmt.Errorf("world has no name")
	}
	if w.Start == "" {
		return fmt.Errorf("world %q has no start location", w.Name)
	}
	if _, ok := w.Locations[w.Start]; !ok {
		return fmt.Errorf("start location %q is not defined", w.Start)
	}
	for name, loc := range w.Locations {
		for _, exit := range loc.Exits {
			if _, ok := w.Locations[exit]; !ok {
				return fmt.Errorf("location %q has exit to undefined location %q", name, exit)
			}
		}
		if loc.Sound != "" {
			if _, ok := w.Sounds[loc.Sound]; !ok {
				return fmt.Errorf("location %q references undefined sound %q", name, loc.Sound)
			}
		}
	}
	return nil
}

// SoundFor resolves the ambient sound path for a location, empty when the
// location has no cue.
func (w *World) SoundFor(location string) string {
	loc, ok := w.Locations[location]
	if !ok || loc.Sound == "" {
		return ""
	}
	return w.Sounds[loc.Sound]
}
