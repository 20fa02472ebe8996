package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rcosta/eldrida-engine/internal/config"
	"github.com/rcosta/eldrida-engine/internal/engine"
	"github.com/rcosta/eldrida-engine/internal/handlers"
	"github.com/rcosta/eldrida-engine/internal/logger"
	"github.com/rcosta/eldrida-engine/internal/middleware"
	"github.com/rcosta/eldrida-engine/internal/services"
	"github.com/rcosta/eldrida-engine/internal/storage"
	"github.com/rcosta/eldrida-engine/internal/telemetry"
	"github.com/rcosta/eldrida-engine/pkg/actor"
	"github.com/rcosta/eldrida-engine/pkg/world"
)

const (
	worldName = "eldrida"
	heroName  = "rian"
)

func main() {
	cfg := config.Load()

	log := logger.Setup(cfg)

	log.Info("Starting Eldrida Engine API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"llm_provider", cfg.LLMProvider,
		"model_name", cfg.ModelName)

	ctx := context.Background()

	if cfg.OTLPEndpoint != "" {
		shutdownTelemetry, err := telemetry.Setup(ctx)
		if err != nil {
			log.Error("Failed to initialize telemetry", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := shutdownTelemetry(context.Background()); err != nil {
				log.Error("Failed to shut down telemetry", "error", err)
			}
		}()
		log.Info("Telemetry enabled", "endpoint", cfg.OTLPEndpoint)
	}

	var llmService services.LLMService
	switch strings.ToLower(cfg.LLMProvider) {
	case "together":
		if cfg.TogetherAPIKey == "" {
			log.Error("Together API key is required when using together provider")
			os.Exit(1)
		}
		llmService = services.NewTogetherService(cfg.TogetherAPIKey, cfg.ModelName, cfg.BackendModel, cfg.ImageModelName, filepath.Join(cfg.DataDir, "images"))
		log.Info("Using Together LLM provider")
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			log.Error("Gemini API key is required when using gemini provider")
			os.Exit(1)
		}
		var err error
		llmService, err = services.NewGeminiService(ctx, cfg.GeminiAPIKey, cfg.ModelName)
		if err != nil {
			log.Error("Failed to initialize Gemini service", "error", err)
			os.Exit(1)
		}
		log.Info("Using Gemini LLM provider")
	case "mock":
		llmService = services.NewMockLLMService()
		log.Warn("Using mock LLM provider; narratives will be canned")
	default:
		log.Error("Invalid LLM provider specified", "provider", cfg.LLMProvider, "supported", []string{"together", "gemini", "mock"})
		os.Exit(1)
	}

	store := storage.NewRedisStorage(cfg.RedisURL, cfg.DataDir, log)
	storageCtx, storageCancel := context.WithTimeout(ctx, 2*time.Minute)
	defer storageCancel()

	if err := store.WaitForConnection(storageCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}
	log.Info("Storage connection established successfully")

	initCtx, initCancel := context.WithTimeout(ctx, 10*time.Minute)
	defer initCancel()
	if err := llmService.InitModel(initCtx, cfg.ModelName); err != nil {
		log.Error("Failed to initialize LLM model", "error", err, "model", cfg.ModelName)
		os.Exit(1)
	}

	w, err := world.Load(filepath.Join(cfg.DataDir, "worlds", worldName+".yaml"))
	if err != nil {
		log.Error("Failed to load world template", "error", err)
		os.Exit(1)
	}

	hero, err := actor.LoadHero(filepath.Join(cfg.DataDir, "heroes", heroName+".json"))
	if err != nil {
		log.Warn("Failed to load hero spec, using defaults", "error", err)
		hero = nil
	}

	var images services.ImageService
	if cfg.ImagesEnabled {
		if svc, ok := llmService.(services.ImageService); ok {
			images = svc
		} else {
			log.Warn("Images enabled but provider cannot generate them", "provider", cfg.LLMProvider)
		}
	}

	eng := engine.New(engine.Deps{
		LLM:       llmService,
		Images:    images,
		Safety:    services.NewSafetyService(llmService, log),
		Store:     store,
		Snapshots: storage.NewSnapshotter(cfg.SnapshotDir, log),
		World:     w,
		Hero:      hero,
		Logger:    log,
		Tracer:    telemetry.Tracer("engine"),
	}, engine.ParamsFromConfig(cfg))

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(store, log)
	mux.Handle("/health", healthHandler)

	gameStateHandler := handlers.NewGameStateHandler(eng, store, log)
	mux.Handle("/v1/gamestate", gameStateHandler)
	mux.Handle("/v1/gamestate/", gameStateHandler)

	commandHandler := handlers.NewCommandHandler(eng, log)
	mux.Handle("/v1/command", commandHandler)

	handler := middleware.Logger(mux)
	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("Server exited")
}
