package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "together", cfg.LLMProvider)
	assert.Equal(t, 0.3, cfg.EventChance)
	assert.Equal(t, 3, cfg.MaxTries)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LLM_PROVIDER", "mock")
	t.Setenv("EVENT_CHANCE", "0.5")
	t.Setenv("MAX_TRIES", "5")
	t.Setenv("IMAGES_ENABLED", "true")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "mock", cfg.LLMProvider)
	assert.Equal(t, 0.5, cfg.EventChance)
	assert.Equal(t, 5, cfg.MaxTries)
	assert.True(t, cfg.ImagesEnabled)
}

func TestInvalidNumericEnvFallsBack(t *testing.T) {
	t.Setenv("EVENT_CHANCE", "often")
	t.Setenv("MAX_TRIES", "many")

	cfg := Load()

	assert.Equal(t, 0.3, cfg.EventChance)
	assert.Equal(t, 3, cfg.MaxTries)
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelWarn, parseLogLevel("WARNING"))
	assert.Equal(t, slog.LevelError, parseLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLogLevel("bogus"))
}
