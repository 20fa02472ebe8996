package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rcosta/eldrida-engine/pkg/world"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <world.yaml>\n", os.Args[0])
		os.Exit(1)
	}

	filename := os.Args[1]
	validator := &WorldValidator{}

	if err := validator.validateFile(filename); err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("World file is valid!")
}

type WorldValidator struct {
	errors []string
}

func (v *WorldValidator) validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	baseName := filepath.Base(filename)
	if !strings.HasSuffix(baseName, ".yaml") && !strings.HasSuffix(baseName, ".yml") {
		return fmt.Errorf("world file must have .yaml extension: %s", baseName)
	}

	nameWithoutExt := strings.TrimSuffix(strings.TrimSuffix(baseName, ".yaml"), ".yml")
	if !isValidWorldFilename(nameWithoutExt) {
		return fmt.Errorf("world filename '%s' must be lowercase snake_case (e.g., my_world.yaml, not my-world.yaml or MyWorld.yaml)", baseName)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	v.errors = nil

	// Strict decode catches misspelled keys that a plain unmarshal
	// would silently drop.
	var w world.World
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&w); err != nil {
		return fmt.Errorf("file %s failed strict YAML unmarshaling: %w", filename, err)
	}

	if err := w.Validate(); err != nil {
		return fmt.Errorf("file %s: %w", filename, err)
	}

	v.validateWorld(&w)

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}

	return nil
}

func (v *WorldValidator) validateWorld(w *world.World) {
	for name, loc := range w.Locations {
		if loc.Description == "" {
			v.addError(fmt.Sprintf("location '%s' has no description", name))
		}
	}

	for _, npc := range w.NPCs {
		if npc.Name == "" {
			v.addError("npc entry has no name")
		}
	}

	for cue, path := range w.Sounds {
		if path == "" {
			v.addError(fmt.Sprintf("sound '%s' has an empty path", cue))
		}
	}
	// Combat narration falls back to this cue when a location has none.
	if len(w.Sounds) > 0 {
		if _, ok := w.Sounds["combat"]; !ok {
			v.addError("sounds table has no 'combat' cue")
		}
	}

	for item, qty := range w.StartingResources {
		if !isValidResourceName(item) {
			v.addError(fmt.Sprintf("starting resource '%s' should be lowercase snake_case", item))
		}
		if qty <= 0 {
			v.addError(fmt.Sprintf("starting resource '%s' has non-positive quantity %d", item, qty))
		}
	}

	v.validateReachability(w)
}

// validateReachability walks exits from the start location and reports
// locations the player could never walk to. The objective generator can
// still teleport the map open, so these are warnings worth fixing, not
// load failures.
func (v *WorldValidator) validateReachability(w *world.World) {
	seen := map[string]bool{w.Start: true}
	queue := []string{w.Start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, exit := range w.Locations[current].Exits {
			if !seen[exit] {
				seen[exit] = true
				queue = append(queue, exit)
			}
		}
	}

	for name := range w.Locations {
		if !seen[name] {
			v.addError(fmt.Sprintf("location '%s' is not reachable from start '%s'", name, w.Start))
		}
	}
}

func (v *WorldValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

var (
	validResourceRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)
	validFilenameRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)
)

func isValidResourceName(name string) bool {
	return validResourceRegex.MatchString(name)
}

func isValidWorldFilename(name string) bool {
	// Allow 'x.' prefix for experimental worlds
	name = strings.TrimPrefix(name, "x.")
	return validFilenameRegex.MatchString(name)
}
