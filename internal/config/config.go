package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the runtime configuration for the engine and its API.
// Values come from environment variables, with a .env file loaded first
// when present.
type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	// LLM provider selection: "together", "gemini" or "mock".
	LLMProvider    string
	TogetherAPIKey string
	GeminiAPIKey   string
	ModelName      string
	BackendModel   string
	ImageModelName string

	RedisURL    string
	DataDir     string
	SnapshotDir string

	OTLPEndpoint string

	// Gameplay tuning.
	EventChance   float64
	MaxTries      int
	MaxFalseClue  int
	MaxTrueClue   int
	MaxFalseAlly  int
	MaxTrick      int
	MaxAttacks    int
	HistoryLimit  int
	ImagesEnabled bool
	SoundsEnabled bool
}

func Load() *Config {
	// Missing .env is fine; real environments set variables directly.
	_ = godotenv.Load()

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),

		LLMProvider:    getEnv("LLM_PROVIDER", "together"),
		TogetherAPIKey: getEnv("TOGETHER_API_KEY", ""),
		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		ModelName:      getEnv("MODEL_NAME", "meta-llama/Llama-3.3-70B-Instruct-Turbo"),
		BackendModel:   getEnv("BACKEND_MODEL_NAME", "meta-llama/Llama-3.3-70B-Instruct-Turbo"),
		ImageModelName: getEnv("IMAGE_MODEL_NAME", "black-forest-labs/FLUX.1-schnell"),

		RedisURL:    getEnv("REDIS_URL", "localhost:6379"),
		DataDir:     getEnv("DATA_DIR", "./data"),
		SnapshotDir: getEnv("SNAPSHOT_DIR", "./snapshots"),

		OTLPEndpoint: getEnv("OTLP_ENDPOINT", ""),

		EventChance:   getEnvFloat("EVENT_CHANCE", 0.3),
		MaxTries:      getEnvInt("MAX_TRIES", 3),
		MaxFalseClue:  getEnvInt("MAX_FALSE_CLUE", 3),
		MaxTrueClue:   getEnvInt("MAX_TRUE_CLUE", 3),
		MaxFalseAlly:  getEnvInt("MAX_FALSE_ALLY", 3),
		MaxTrick:      getEnvInt("MAX_TRICK", 3),
		MaxAttacks:    getEnvInt("MAX_ATTACKS", 3),
		HistoryLimit:  getEnvInt("HISTORY_LIMIT", 10),
		ImagesEnabled: getEnvBool("IMAGES_ENABLED", false),
		SoundsEnabled: getEnvBool("SOUNDS_ENABLED", true),
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
