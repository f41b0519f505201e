package game

import "github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game/core"

// Outcome classifies what a step did.
type Outcome int

const (
	OutcomeMoved Outcome = iota
	OutcomeCollision
	OutcomeTargetReached
)

func (o Outcome) String() string {
	switch o {
	case OutcomeMoved:
		return "moved"
	case OutcomeCollision:
		return "collision"
	case OutcomeTargetReached:
		return "target_reached"
	default:
		return "unknown"
	}
}

// ParseOutcome is the inverse of Outcome.String.
func ParseOutcome(s string) (Outcome, bool) {
	for _, o := range []Outcome{OutcomeMoved, OutcomeCollision, OutcomeTargetReached} {
		if o.String() == s {
			return o, true
		}
	}
	return 0, false
}

// Info is the auxiliary step information.
type Info struct {
	Outcome  Outcome
	Message  string
	Position core.Coordinate
	Steps    int
}

// Map flattens the info into plain values, e.g. for structpb.
func (i Info) Map() map[string]interface{} {
	m := map[string]interface{}{
		"outcome":  i.Outcome.String(),
		"position": []interface{}{i.Position.Row, i.Position.Col},
		"steps":    i.Steps,
	}
	if i.Message != "" {
		m["message"] = i.Message
	}
	return m
}

// StepResult is what Step returns for an accepted action.
type StepResult struct {
	Observation *core.Grid
	Reward      float64
	Done        bool
	Truncated   bool
	Info        Info
}

// Ended reports whether the episode is over after this step.
func (r StepResult) Ended() bool { return r.Done || r.Truncated }
