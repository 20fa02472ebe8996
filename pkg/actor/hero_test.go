package actor

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHeroSpec() *HeroSpec {
	return &HeroSpec{
		ID:    "rian",
		Name:  "Rian",
		Class: "investigator",
		Stats: Stats{
			Intelligence: 50,
			Strength:     50,
			Charisma:     40,
			Perception:   60,
		},
		HP:    10,
		MaxHP: 10,
		AC:    12,
		Attributes: map[string]int{
			"stealth": 30,
		},
		Inventory: map[string]int{"potions": 2},
	}
}

func TestNewHeroFromSpec(t *testing.T) {
	hero, err := NewHeroFromSpec(testHeroSpec())
	require.NoError(t, err)
	require.NotNil(t, hero.Actor)

	assert.Equal(t, 10, hero.Actor.HP())
	assert.Equal(t, 12, hero.Actor.AC())
	assert.Equal(t, 50, hero.Intelligence())
	assert.Equal(t, 50, hero.Strength())

	stealth, ok := hero.Actor.Attribute("stealth")
	require.True(t, ok)
	assert.Equal(t, 30, stealth)
}

func TestNewHeroFromSpecNil(t *testing.T) {
	_, err := NewHeroFromSpec(nil)
	assert.Error(t, err)
}

func TestHeroDefaults(t *testing.T) {
	var hero *Hero
	assert.Equal(t, DefaultIntelligence, hero.Intelligence())
	assert.Equal(t, DefaultStrength, hero.Strength())
}

func TestLoadHeroFilenameOverridesID(t *testing.T) {
	dir := t.TempDir()
	spec := testHeroSpec()
	spec.ID = "something-else"

	data, err := json.Marshal(spec)
	require.NoError(t, err)

	path := filepath.Join(dir, "rian.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	hero, err := LoadHero(path)
	require.NoError(t, err)
	assert.Equal(t, "rian", hero.Spec.ID)
}

func TestHeroMarshalJSON(t *testing.T) {
	hero, err := NewHeroFromSpec(testHeroSpec())
	require.NoError(t, err)

	data, err := json.Marshal(hero)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "Rian", out["name"])
	assert.Equal(t, float64(10), out["hp"])

	stats, ok := out["stats"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(50), stats["intelligence"])
}
