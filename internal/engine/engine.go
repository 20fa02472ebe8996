// Package engine implements the game turn loop: command interpretation,
// scripted events, combat and puzzle resolution, exploration encounters
// and story stage progression.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/rcosta/eldrida-engine/internal/config"
	"github.com/rcosta/eldrida-engine/internal/services"
	"github.com/rcosta/eldrida-engine/internal/storage"
	"github.com/rcosta/eldrida-engine/internal/telemetry"
	"github.com/rcosta/eldrida-engine/pkg/actor"
	"github.com/rcosta/eldrida-engine/pkg/chat"
	"github.com/rcosta/eldrida-engine/pkg/state"
	"github.com/rcosta/eldrida-engine/pkg/textfilter"
	"github.com/rcosta/eldrida-engine/pkg/world"
)

// Returned to the player when a turn fails in a way the engine cannot
// recover from. The underlying game state is left unmodified.
const errNarrative = "A strange fog clouds your mind for a moment. When it clears, the world is as it was. Try again."

// ErrGameNotFound is returned when a command references a game that does
// not exist or has been deleted.
var ErrGameNotFound = errors.New("game state not found")

// Params are the gameplay tuning knobs.
type Params struct {
	EventChance  float64
	MaxTries     int
	MaxFalseClue int
	MaxTrueClue  int
	MaxFalseAlly int
	MaxTrick     int
	MaxAttacks   int
	HistoryLimit int

	ImagesEnabled bool
	SoundsEnabled bool
}

// ParamsFromConfig copies the gameplay knobs out of the app config.
func ParamsFromConfig(cfg *config.Config) Params {
	return Params{
		EventChance:   cfg.EventChance,
		MaxTries:      cfg.MaxTries,
		MaxFalseClue:  cfg.MaxFalseClue,
		MaxTrueClue:   cfg.MaxTrueClue,
		MaxFalseAlly:  cfg.MaxFalseAlly,
		MaxTrick:      cfg.MaxTrick,
		MaxAttacks:    cfg.MaxAttacks,
		HistoryLimit:  cfg.HistoryLimit,
		ImagesEnabled: cfg.ImagesEnabled,
		SoundsEnabled: cfg.SoundsEnabled,
	}
}

// Deps are the engine's collaborators. LLM, Store and Logger are
// required; the rest are optional features.
type Deps struct {
	LLM       services.LLMService
	Images    services.ImageService
	Safety    *services.SafetyService
	Store     storage.Storage
	Snapshots *storage.Snapshotter
	World     *world.World
	Hero      *actor.Hero
	Logger    *slog.Logger
	Tracer    trace.Tracer

	// Rand overrides the PRNG, for deterministic tests.
	Rand *rand.Rand
}

// Engine runs one player command at a time against a game state.
type Engine struct {
	llm       services.LLMService
	images    services.ImageService
	safety    *services.SafetyService
	store     storage.Storage
	snapshots *storage.Snapshotter
	world     *world.World
	hero      *actor.Hero
	filter    *textfilter.Filter
	logger    *slog.Logger
	tracer    trace.Tracer
	params    Params
	locks     *gameLocks

	rngMu sync.Mutex
	rng   *rand.Rand
}

func New(deps Deps, params Params) *Engine {
	rng := deps.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	tracer := deps.Tracer
	if tracer == nil {
		tracer = telemetry.NoopTracer()
	}
	return &Engine{
		llm:       deps.LLM,
		images:    deps.Images,
		safety:    deps.Safety,
		store:     deps.Store,
		snapshots: deps.Snapshots,
		world:     deps.World,
		hero:      deps.Hero,
		filter:    textfilter.New(),
		logger:    deps.Logger,
		tracer:    tracer,
		params:    params,
		locks:     newGameLocks(),
		rng:       rng,
	}
}

// random returns a uniform draw in [0,1).
func (e *Engine) random() float64 {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	return e.rng.Float64()
}

// randomIntn returns a uniform draw in [0,n).
func (e *Engine) randomIntn(n int) int {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	return e.rng.Intn(n)
}

// ProcessCommand loads the game state, runs one turn under the per-game
// lock, and persists the result. Turns for the same game never interleave.
func (e *Engine) ProcessCommand(ctx context.Context, id uuid.UUID, command string) (*chat.CommandResponse, error) {
	ctx, span := e.tracer.Start(ctx, "engine.ProcessCommand",
		trace.WithAttributes(attribute.String("game_id", id.String())))
	defer span.End()

	unlock := e.locks.lock(id)
	defer unlock()

	gs, err := e.store.LoadGameState(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load game state: %w", err)
	}
	if gs == nil {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, id)
	}

	narrative := e.RunAction(ctx, gs, command)

	if err := e.store.SaveGameState(ctx, id, gs); err != nil {
		return nil, fmt.Errorf("failed to save game state: %w", err)
	}

	if e.snapshots != nil {
		if err := e.snapshots.Snapshot(ctx, gs); err != nil {
			e.logger.Warn("Failed to snapshot game state", "game_id", id, "error", err)
		}
	}

	return &chat.CommandResponse{
		GameStateID:  id,
		Narrative:    narrative,
		OutputImage:  gs.OutputImage,
		AmbientSound: gs.AmbientSound,
		Stage:        gs.CurrentStage,
	}, nil
}

// RunAction runs a single turn against the game state and returns the
// narrative. It never panics outward; any failure inside the turn yields
// an in-character error narrative and leaves the state as it was.
func (e *Engine) RunAction(ctx context.Context, gs *state.GameState, command string) (narrative string) {
	backup, backupErr := gs.DeepCopy()

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Turn panicked", "game_id", gs.ID, "panic", r)
			if backupErr == nil {
				*gs = *backup
			}
			narrative = errNarrative
		}
	}()

	ctx, span := e.tracer.Start(ctx, "engine.RunAction")
	defer span.End()

	narrative = e.runTurn(ctx, gs, command)
	narrative = e.filter.Clean(narrative)
	return narrative
}

// runTurn is the turn pipeline: safety, interpret (or resolve a pending
// choice), event, pending mini-game, action, inventory, history, stage
// transition, media.
func (e *Engine) runTurn(ctx context.Context, gs *state.GameState, command string) string {
	if gs.IsWon() {
		return "Your tale in Eldrida is already told. The traitor has fallen, and the city sings your name."
	}

	if e.safety != nil {
		if safe, violations := e.safety.Check(ctx, command); !safe {
			e.logger.Info("Command rejected by safety filter", "game_id", gs.ID, "violations", violations)
			return "The Game Master frowns. Such words have no place in Eldrida. Choose another course."
		}
	}

	// A pending numbered choice bypasses the interpreter and takes the
	// place of this turn's action; the rest of the turn proceeds as usual.
	wonCombat := false
	resolvedChoice := false
	eventNarrative := ""
	suggestion := ""
	var actionNarrative string

	if gs.WaitingForOption {
		actionNarrative = e.resolveOption(ctx, gs, command)
		if gs.WaitingForOption {
			// Invalid answer: re-prompt and leave the choice pending.
			return actionNarrative
		}
		resolvedChoice = true
	} else {
		action := e.interpret(ctx, gs, command)

		skipAction := false
		if gs.ActiveCombat == nil && gs.ActivePuzzle == nil && action.Type == ActionExploration {
			if e.random() < e.params.EventChance {
				var skip bool
				eventNarrative, skip = e.triggerEvent(ctx, gs)
				skipAction = skip
			}
		}

		switch {
		case gs.ActiveCombat != nil:
			actionNarrative, wonCombat = e.resolveCombat(ctx, gs, command)
		case gs.ActivePuzzle != nil:
			actionNarrative = e.resolvePuzzle(ctx, gs, command)
		case skipAction:
			// The event replaced this turn's action.
		default:
			actionNarrative = e.performAction(ctx, gs, action, command)
		}

		// Suggestions only accompany vague commands, and never while an
		// encounter is unfolding.
		if action.Suggestion != "" && action.Type == ActionGeneric && eventNarrative == "" &&
			gs.ActiveCombat == nil && gs.ActivePuzzle == nil {
			suggestion = action.Suggestion
		}
	}

	narrative := joinNarrative(eventNarrative, actionNarrative)
	if narrative == "" {
		narrative = "The streets of Eldrida hum quietly around you. Nothing of note happens."
	}
	if suggestion != "" {
		narrative = narrative + "\n\n" + suggestion
	}

	// Exploration rewards go through the ledger directly; scanning their
	// narrative again would grant the item twice.
	if !resolvedChoice {
		e.detectInventoryChanges(ctx, gs, narrative)
	}

	gs.AppendHistory(chat.ChatRoleUser, command)

	if suffix := e.advanceStage(gs, wonCombat); suffix != "" {
		narrative = narrative + "\n\n" + suffix
	}

	gs.AppendHistory(chat.ChatRoleAgent, narrative)

	e.updateMedia(ctx, gs, narrative)

	return narrative
}

// joinNarrative concatenates non-empty narrative fragments.
func joinNarrative(parts ...string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += "\n\n"
		}
		out += p
	}
	return out
}

// updateMedia refreshes the ambient sound cue and, when enabled, the
// scene image. Media failures never fail the turn.
func (e *Engine) updateMedia(ctx context.Context, gs *state.GameState, narrative string) {
	if e.params.SoundsEnabled && e.world != nil && gs.ActiveCombat == nil {
		if sound := e.world.SoundFor(gs.Location.Name); sound != "" {
			gs.AmbientSound = sound
		}
	}

	if e.params.ImagesEnabled && e.images != nil {
		path, err := e.images.GenerateImage(ctx, "Fantasy illustration, city of Eldrida: "+narrative)
		if err != nil {
			e.logger.Warn("Image generation failed", "game_id", gs.ID, "error", err)
			return
		}
		gs.OutputImage = path
	}
}
