package rules

import (
	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game/core"
	"github.com/rs/zerolog"
)

// TerminationChecker decides whether an episode ends after a move.
type TerminationChecker struct {
	logger   zerolog.Logger
	maxSteps int
}

// NewTerminationChecker creates a checker. A non-positive maxSteps disables
// truncation.
func NewTerminationChecker(logger zerolog.Logger, maxSteps int) *TerminationChecker {
	return &TerminationChecker{
		logger:   logger.With().Str("component", "TerminationChecker").Logger(),
		maxSteps: maxSteps,
	}
}

func (tc *TerminationChecker) MaxSteps() int { return tc.maxSteps }

// Check returns (done, truncated) for the player standing on pos after
// `steps` steps. Reaching the target takes precedence over the step limit.
func (tc *TerminationChecker) Check(maze *core.Maze, pos core.Coordinate, steps int) (bool, bool) {
	if maze != nil && pos == maze.Target() {
		tc.logger.Debug().Int("steps", steps).Str("position", pos.String()).Msg("Target reached")
		return true, false
	}
	if tc.maxSteps > 0 && steps >= tc.maxSteps {
		tc.logger.Debug().Int("steps", steps).Int("max_steps", tc.maxSteps).Msg("Step limit reached")
		return false, true
	}
	return false, false
}
