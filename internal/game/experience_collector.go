package game

import "github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game/core"

// ExperienceCollector is an interface for collecting experiences during episodes
type ExperienceCollector interface {
	// OnStep is called after every accepted action with the observation
	// the action was taken from
	OnStep(episodeID string, prevObs *core.Grid, action core.Action, result StepResult)

	// OnEpisodeEnd is called once when an episode is done or truncated
	OnEpisodeEnd(stats EpisodeStats)

	// OnEpisodeAbandoned is called when Reset replaces an episode that took
	// steps but never ended
	OnEpisodeAbandoned(episodeID string)
}
