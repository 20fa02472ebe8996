package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/rcosta/eldrida-engine/internal/engine"
	"github.com/rcosta/eldrida-engine/pkg/chat"
)

// commandTimeout bounds one full turn, including every LLM round-trip.
const commandTimeout = 120 * time.Second

// CommandHandler runs player commands through the game engine.
type CommandHandler struct {
	engine *engine.Engine
	logger *slog.Logger
}

func NewCommandHandler(engine *engine.Engine, logger *slog.Logger) *CommandHandler {
	return &CommandHandler{
		engine: engine,
		logger: logger,
	}
}

// ServeHTTP handles POST /v1/command.
func (h *CommandHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		h.logger.Warn("Method not allowed for command endpoint",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr)
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported.")
		return
	}

	var request chat.CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body. Expected JSON with 'gamestate_id' and 'command' fields.")
		return
	}

	if err := request.Validate(); err != nil {
		h.logger.Warn("Invalid command request", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.Info("Command received",
		"game_id", request.GameStateID,
		"remote_addr", r.RemoteAddr)

	ctx, cancel := context.WithTimeout(r.Context(), commandTimeout)
	defer cancel()

	response, err := h.engine.ProcessCommand(ctx, request.GameStateID, request.Command)
	if err != nil {
		if errors.Is(err, engine.ErrGameNotFound) {
			h.logger.Warn("Command for unknown game", "game_id", request.GameStateID)
			writeError(w, h.logger, http.StatusNotFound, "Game state not found")
			return
		}
		h.logger.Error("Failed to process command", "game_id", request.GameStateID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to process command. Please try again.")
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("Failed to encode command response", "error", err)
	}
}
