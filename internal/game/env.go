package game

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game/core"
	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game/events"
	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game/rules"
	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game/spaces"
	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game/states"
)

// Environment is the capability surface shared by local and remote
// environments.
type Environment interface {
	Step(action core.Action) (StepResult, error)
	Reset(seed *int64) (*core.Grid, error)
	ObservationSpace() spaces.Box
	ActionSpace() spaces.Discrete
}

var _ Environment = (*Env)(nil)

// Env is a single-agent labyrinth episode runner. It is not safe for
// concurrent use.
type Env struct {
	config  EnvConfig
	mazes   MazeSource
	rewards RewardSchema

	maze   *core.Maze
	player *core.Player
	obs    *core.Grid

	// seed is the last seed handed to the maze source.
	seed int64
	rng  *rand.Rand

	logger       zerolog.Logger
	episodeCtx   *states.EpisodeContext
	stateMachine *states.StateMachine
	eventBus     events.Bus
	collector    ExperienceCollector
	legalMoves   *rules.LegalMoveCalculator
	termination  *rules.TerminationChecker

	stats EpisodeStats
}

// NewEnv creates an environment and generates its first episode.
func NewEnv(ctx context.Context, cfg EnvConfig) (*Env, error) {
	return NewEnvInitializer(cfg).Initialize(ctx)
}

// Step applies one action. Collisions are outcomes, not errors; errors are
// reserved for invalid action values and steps after the episode ended.
func (e *Env) Step(action core.Action) (StepResult, error) {
	if !action.IsValid() {
		return StepResult{}, core.WrapActionError(action, core.ErrInvalidAction)
	}

	phase := e.stateMachine.CurrentPhase()
	if !phase.CanReceiveActions() {
		return StepResult{}, core.WrapActionError(action, core.ErrEpisodeDone)
	}
	if phase == states.PhaseReady {
		if err := e.stateMachine.TransitionTo(states.PhaseStepping, "first action"); err != nil {
			return StepResult{}, fmt.Errorf("failed to start stepping: %w", err)
		}
	}

	e.episodeCtx.Steps++
	step := e.episodeCtx.Steps
	prevObs := e.obs
	from := e.player.Position
	potential := e.player.PotentialNextPosition(action)

	result := StepResult{Info: Info{Steps: step}}
	if !e.maze.IsWalkable(potential) {
		result.Reward = e.rewards.WallCollision
		result.Info.Outcome = OutcomeCollision
		result.Info.Message = MessageInvalidMove
		e.eventBus.Publish(events.NewWallCollisionEvent(e.episodeCtx.EpisodeID, step, action, from, potential, result.Reward))
	} else {
		e.player.MoveTo(potential)
		e.obs = e.maze.Observation(potential)
		result.Reward = e.rewards.Neutral
		result.Info.Outcome = OutcomeMoved
	}
	result.Info.Position = e.player.Position

	result.Done, result.Truncated = e.termination.Check(e.maze, e.player.Position, step)
	if result.Done {
		result.Reward = e.rewards.TargetReached
		result.Info.Outcome = OutcomeTargetReached
		result.Info.Message = MessageTargetReached
	}
	if result.Info.Outcome != OutcomeCollision {
		e.eventBus.Publish(events.NewPlayerMovedEvent(e.episodeCtx.EpisodeID, step, action, from, potential, result.Reward))
	}
	result.Observation = e.obs.Clone()
	e.stats.record(result)

	e.logger.Debug().
		Int("step", step).
		Str("action", action.String()).
		Str("outcome", result.Info.Outcome.String()).
		Str("position", result.Info.Position.String()).
		Float64("reward", result.Reward).
		Msg("Step processed")

	if e.collector != nil {
		e.collector.OnStep(e.episodeCtx.EpisodeID, prevObs, action, result)
	}

	switch {
	case result.Done:
		if err := e.stateMachine.TransitionTo(states.PhaseDone, "target reached"); err != nil {
			e.logger.Error().Err(err).Msg("Failed to transition to done")
		}
		e.eventBus.Publish(events.NewTargetReachedEvent(e.episodeCtx.EpisodeID, step, e.stats.Collisions, e.stats.Return))
		e.finishEpisode()
	case result.Truncated:
		if err := e.stateMachine.TransitionTo(states.PhaseTruncated, "step limit reached"); err != nil {
			e.logger.Error().Err(err).Msg("Failed to transition to truncated")
		}
		e.eventBus.Publish(events.NewEpisodeTruncatedEvent(e.episodeCtx.EpisodeID, step, e.stats.Return))
		e.finishEpisode()
	}

	return result, nil
}

func (e *Env) finishEpisode() {
	e.logger.Info().
		Str("episode_id", e.stats.EpisodeID).
		Int("steps", e.stats.Steps).
		Int("collisions", e.stats.Collisions).
		Int("optimal_steps", e.stats.OptimalSteps).
		Float64("return", e.stats.Return).
		Bool("solved", e.stats.Solved).
		Msg("Episode ended")

	if e.collector != nil {
		e.collector.OnEpisodeEnd(e.stats)
	}
}

// Reset starts a new episode. An explicit seed wins for this call; otherwise
// the previous seed is incremented. The seed advances even when generation
// fails, in which case the current episode is left untouched.
func (e *Env) Reset(seed *int64) (*core.Grid, error) {
	next := e.seed + 1
	if seed != nil {
		next = *seed
	}
	e.seed = next
	prev, ended := e.stats, e.IsDone()

	maze, err := e.mazes.CreateMaze(next)
	if err != nil {
		e.logger.Warn().Err(err).Int64("seed", next).Msg("Reset failed, keeping current episode")
		return nil, fmt.Errorf("reset with seed %d: %w", next, err)
	}

	if err := e.startEpisode(maze, next, "reset"); err != nil {
		return nil, err
	}
	if e.collector != nil && !ended && prev.Steps > 0 {
		e.collector.OnEpisodeAbandoned(prev.EpisodeID)
	}
	return e.obs.Clone(), nil
}

// startEpisode installs maze as the current episode and enters PhaseReady.
func (e *Env) startEpisode(maze *core.Maze, seed int64, reason string) error {
	prevID, prevSeed := e.episodeCtx.EpisodeID, e.episodeCtx.Seed
	episodeID := uuid.New().String()
	e.episodeCtx.EpisodeID = episodeID
	e.episodeCtx.Seed = seed

	if err := e.stateMachine.TransitionTo(states.PhaseReady, reason); err != nil {
		e.episodeCtx.EpisodeID, e.episodeCtx.Seed = prevID, prevSeed
		return fmt.Errorf("failed to enter ready phase: %w", err)
	}

	e.maze = maze
	e.player = core.NewPlayer(maze.Start())
	e.obs = maze.Observation(e.player.Position)
	e.stats = newEpisodeStats(episodeID, seed, maze, rules.Distance(maze, maze.Start(), maze.Target()))

	e.eventBus.Publish(events.NewEpisodeStartedEvent(episodeID, seed, maze))

	e.logger.Info().
		Str("episode_id", episodeID).
		Int64("seed", seed).
		Str("start", maze.Start().String()).
		Str("target", maze.Target().String()).
		Int("rooms", len(maze.Rooms())).
		Int("optimal_steps", e.stats.OptimalSteps).
		Msg("Episode started")
	return nil
}

// ObservationSpace describes the observation grid of the current maze.
func (e *Env) ObservationSpace() spaces.Box {
	return spaces.ObservationBox(e.maze.Rows(), e.maze.Cols())
}

func (e *Env) ActionSpace() spaces.Discrete {
	return spaces.NewDiscrete(core.NumActions)
}

// SampleAction draws a uniform action from the environment's own stream.
func (e *Env) SampleAction() core.Action {
	return core.Action(e.ActionSpace().Sample(e.rng))
}

// LegalActionMask marks the actions that would not collide from the
// current position.
func (e *Env) LegalActionMask() []bool {
	return e.legalMoves.GetLegalActionMask(e.maze, e.player.Position)
}

// Public accessors
func (e *Env) Maze() *core.Maze             { return e.maze }
func (e *Env) Position() core.Coordinate    { return e.player.Position }
func (e *Env) Observation() *core.Grid      { return e.obs.Clone() }
func (e *Env) Phase() states.EpisodePhase   { return e.stateMachine.CurrentPhase() }
func (e *Env) IsDone() bool                 { return e.Phase().IsTerminal() }
func (e *Env) Seed() int64                  { return e.episodeCtx.Seed }
func (e *Env) EpisodeID() string            { return e.episodeCtx.EpisodeID }
func (e *Env) Stats() EpisodeStats          { return e.stats }
func (e *Env) Rewards() RewardSchema        { return e.rewards }
func (e *Env) EventBus() events.Bus         { return e.eventBus }
func (e *Env) History() []states.Transition { return e.stateMachine.GetHistory() }
