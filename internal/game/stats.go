package game

import "github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game/core"

// EpisodeStats accumulates per-episode counters.
type EpisodeStats struct {
	EpisodeID  string
	Seed       int64
	Start      core.Coordinate
	Target     core.Coordinate
	Steps      int
	Moves      int
	Collisions int
	Return     float64
	Solved     bool
	Truncated  bool
	// OptimalSteps is the shortest walk from start to target.
	OptimalSteps int
}

func newEpisodeStats(episodeID string, seed int64, maze *core.Maze, optimal int) EpisodeStats {
	return EpisodeStats{
		EpisodeID:    episodeID,
		Seed:         seed,
		Start:        maze.Start(),
		Target:       maze.Target(),
		OptimalSteps: optimal,
	}
}

// record folds one step into the counters.
func (s *EpisodeStats) record(result StepResult) {
	s.Steps = result.Info.Steps
	s.Return += result.Reward
	switch result.Info.Outcome {
	case OutcomeCollision:
		s.Collisions++
	case OutcomeMoved, OutcomeTargetReached:
		s.Moves++
	}
	s.Solved = s.Solved || result.Done
	s.Truncated = s.Truncated || result.Truncated
}

// Efficiency is OptimalSteps/Steps for a solved episode and 0 otherwise.
func (s EpisodeStats) Efficiency() float64 {
	if !s.Solved || s.Steps == 0 {
		return 0
	}
	return float64(s.OptimalSteps) / float64(s.Steps)
}
