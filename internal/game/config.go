package game

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game/core"
	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game/events"
	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game/mapgen"
)

// Info messages attached to step outcomes.
const (
	MessageInvalidMove   = "Invalid move!"
	MessageTargetReached = "Reached the target!"
)

// maxDrawnSeed bounds the seed drawn when none is configured.
const maxDrawnSeed = 1_000_000

// RewardSchema holds the three scalar rewards of the environment.
type RewardSchema struct {
	Neutral       float64 `mapstructure:"neutral" json:"neutral"`
	WallCollision float64 `mapstructure:"wall_collision" json:"wall_collision"`
	TargetReached float64 `mapstructure:"target_reached" json:"target_reached"`
}

func DefaultRewardSchema() RewardSchema {
	return RewardSchema{
		Neutral:       -0.01,
		WallCollision: -1,
		TargetReached: 10,
	}
}

func (r RewardSchema) validate() error {
	for name, v := range map[string]float64{
		"neutral":        r.Neutral,
		"wall_collision": r.WallCollision,
		"target_reached": r.TargetReached,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: reward %s must be finite, got %v", mapgen.ErrInvalidConfig, name, v)
		}
	}
	return nil
}

// MazeSource produces the maze for an episode seed. *mapgen.Factory is the
// production implementation.
type MazeSource interface {
	CreateMaze(seed int64) (*core.Maze, error)
}

// EnvConfig holds the construction parameters of an Env.
type EnvConfig struct {
	// Maze configures the generator. Ignored when MazeSource is set.
	Maze    mapgen.Config
	Rewards RewardSchema

	// Seed of the first episode. A seed in [0, 1e6) is drawn when nil.
	Seed *int64

	// MaxEpisodeSteps truncates episodes when positive.
	MaxEpisodeSteps int

	Logger              zerolog.Logger
	EventBus            events.Bus
	ExperienceCollector ExperienceCollector
	MazeSource          MazeSource
}

// DefaultEnvConfig returns the default configuration for a rows x cols maze.
func DefaultEnvConfig(rows, cols int) EnvConfig {
	return EnvConfig{
		Maze:    mapgen.DefaultConfig(rows, cols),
		Rewards: DefaultRewardSchema(),
		Logger:  zerolog.Nop(),
	}
}

// Validate checks the configuration without generating anything.
func (c EnvConfig) Validate() error {
	if c.MaxEpisodeSteps < 0 {
		return fmt.Errorf("%w: max episode steps must be >= 0, got %d", mapgen.ErrInvalidConfig, c.MaxEpisodeSteps)
	}
	if err := c.Rewards.validate(); err != nil {
		return err
	}
	if c.MazeSource == nil {
		return c.Maze.Validate()
	}
	return nil
}

// Seed returns a pointer to v, for EnvConfig.Seed and Env.Reset.
func Seed(v int64) *int64 { return &v }
