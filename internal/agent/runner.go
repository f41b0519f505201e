package agent

import (
	"context"
	"fmt"

	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game"
	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game/core"
)

// EpisodeSummary is what Run reports for one episode.
type EpisodeSummary struct {
	Steps      int
	Collisions int
	Return     float64
	Done       bool
	Truncated  bool
}

// StepObserver is called after every step with the action taken.
type StepObserver func(action core.Action, result game.StepResult)

// Run plays policy from obs until the episode ends, maxSteps steps were
// taken (when positive) or ctx is cancelled. obs is the observation the
// episode currently shows, normally the one returned by Reset.
func Run(ctx context.Context, env game.Environment, policy Policy, obs *core.Grid, maxSteps int, observe StepObserver) (EpisodeSummary, error) {
	var summary EpisodeSummary
	for maxSteps <= 0 || summary.Steps < maxSteps {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		action, err := policy.Act(obs)
		if err != nil {
			return summary, fmt.Errorf("policy %s: %w", policy.Name(), err)
		}
		result, err := env.Step(action)
		if err != nil {
			return summary, err
		}

		summary.Steps++
		summary.Return += result.Reward
		if result.Info.Outcome == game.OutcomeCollision {
			summary.Collisions++
		}
		if observe != nil {
			observe(action, result)
		}

		obs = result.Observation
		if result.Done || result.Truncated {
			summary.Done, summary.Truncated = result.Done, result.Truncated
			break
		}
	}
	return summary, nil
}
