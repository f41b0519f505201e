package game

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game/events"
	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game/mapgen"
	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game/rules"
	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game/states"
)

// EnvInitializer handles the construction of an environment
type EnvInitializer struct {
	config EnvConfig
	logger zerolog.Logger
}

// NewEnvInitializer creates a new environment initializer
func NewEnvInitializer(cfg EnvConfig) *EnvInitializer {
	logger := cfg.Logger.With().Str("component", "Env").Logger()
	return &EnvInitializer{
		config: cfg,
		logger: logger,
	}
}

// Initialize validates the configuration, generates the first maze and
// returns an environment in PhaseReady.
func (ei *EnvInitializer) Initialize(ctx context.Context) (*Env, error) {
	select {
	case <-ctx.Done():
		ei.logger.Error().Err(ctx.Err()).Msg("Environment creation cancelled before start")
		return nil, ctx.Err()
	default:
	}

	if err := ei.config.Validate(); err != nil {
		return nil, err
	}

	seed := ei.setupDefaults()

	source, err := ei.mazeSource()
	if err != nil {
		return nil, err
	}

	env := ei.createEnv(source, seed)

	maze, err := source.CreateMaze(seed)
	if err != nil {
		return nil, fmt.Errorf("initial maze: %w", err)
	}
	if err := env.startEpisode(maze, seed, "initial episode"); err != nil {
		return nil, fmt.Errorf("state machine initialization failed: %w", err)
	}

	ei.logger.Info().
		Int("rows", maze.Rows()).
		Int("cols", maze.Cols()).
		Int64("seed", seed).
		Int("max_episode_steps", ei.config.MaxEpisodeSteps).
		Msg("Environment created")

	return env, nil
}

// setupDefaults fills optional fields and returns the first episode seed.
func (ei *EnvInitializer) setupDefaults() int64 {
	if ei.config.EventBus == nil {
		bus := events.NewEventBus()
		bus.SetLogger(ei.config.Logger)
		ei.config.EventBus = bus
	}

	if ei.config.ExperienceCollector != nil {
		ei.logger.Info().Msg("Experience collection enabled")
	}

	if ei.config.Seed != nil {
		return *ei.config.Seed
	}
	seed := rand.New(rand.NewSource(time.Now().UnixNano())).Int63n(maxDrawnSeed)
	ei.logger.Debug().Int64("seed", seed).Msg("No seed provided, drew one")
	return seed
}

func (ei *EnvInitializer) mazeSource() (MazeSource, error) {
	if ei.config.MazeSource != nil {
		return ei.config.MazeSource, nil
	}
	return mapgen.NewFactory(ei.config.Maze, ei.config.Logger)
}

// createEnv wires the environment components together
func (ei *EnvInitializer) createEnv(source MazeSource, seed int64) *Env {
	episodeCtx := states.NewEpisodeContext("", ei.config.MaxEpisodeSteps, ei.logger)

	return &Env{
		config:       ei.config,
		mazes:        source,
		rewards:      ei.config.Rewards,
		seed:         seed,
		rng:          rand.New(rand.NewSource(seed)),
		logger:       ei.logger,
		episodeCtx:   episodeCtx,
		stateMachine: states.NewStateMachine(episodeCtx, ei.config.EventBus),
		eventBus:     ei.config.EventBus,
		collector:    ei.config.ExperienceCollector,
		legalMoves:   rules.NewLegalMoveCalculator(),
		termination:  rules.NewTerminationChecker(ei.config.Logger, ei.config.MaxEpisodeSteps),
	}
}
