// Package agent contains simple policies that act on labyrinth observations
// and a runner that plays them against any game.Environment.
package agent

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game/core"
	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game/rules"
)

var (
	// ErrNoPlan is returned when the planner cannot find the target
	ErrNoPlan = errors.New("no plan to target")
	// ErrUnknownPolicy is returned by ParsePolicy
	ErrUnknownPolicy = errors.New("unknown policy")
)

// Policy chooses an action from an observation.
type Policy interface {
	Name() string
	Act(obs *core.Grid) (core.Action, error)
}

// RandomPolicy acts uniformly at random. With legalOnly set it only picks
// actions that do not walk into a wall.
type RandomPolicy struct {
	rng        *rand.Rand
	legalOnly  bool
	legalMoves *rules.LegalMoveCalculator
}

func NewRandomPolicy(rng *rand.Rand, legalOnly bool) *RandomPolicy {
	return &RandomPolicy{rng: rng, legalOnly: legalOnly, legalMoves: rules.NewLegalMoveCalculator()}
}

func (p *RandomPolicy) Name() string {
	if p.legalOnly {
		return "legal"
	}
	return "random"
}

func (p *RandomPolicy) Act(obs *core.Grid) (core.Action, error) {
	if p.legalOnly {
		mask := p.legalMoves.GetObservationActionMask(obs)
		legal := make([]core.Action, 0, core.NumActions)
		for i, ok := range mask {
			if ok {
				legal = append(legal, core.Action(i))
			}
		}
		if len(legal) > 0 {
			return legal[p.rng.Intn(len(legal))], nil
		}
	}
	return core.Action(p.rng.Intn(core.NumActions)), nil
}

// PlannerPolicy follows a shortest walk to the target visible in the
// observation. Ties go to the earliest action in action order.
type PlannerPolicy struct{}

func NewPlannerPolicy() *PlannerPolicy { return &PlannerPolicy{} }

func (p *PlannerPolicy) Name() string { return "planner" }

func (p *PlannerPolicy) Act(obs *core.Grid) (core.Action, error) {
	players, targets := obs.Find(core.CellPlayer), obs.Find(core.CellTarget)
	if len(players) != 1 || len(targets) != 1 {
		return 0, fmt.Errorf("%w: observation needs one player and one target", ErrNoPlan)
	}

	pos := players[0]
	dist := obs.Distances(targets[0])
	here := dist[pos.ToIndex(obs.Cols())]
	if here <= 0 {
		return 0, fmt.Errorf("%w: target unreachable from %s", ErrNoPlan, pos)
	}
	for _, a := range core.AllActions() {
		next := pos.Move(a)
		if obs.InBounds(next) && dist[next.ToIndex(obs.Cols())] == here-1 {
			return a, nil
		}
	}
	return 0, fmt.Errorf("%w: stuck at %s", ErrNoPlan, pos)
}

// ParsePolicy builds a policy by name: "random", "legal" or "planner".
func ParsePolicy(name string, rng *rand.Rand) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "random":
		return NewRandomPolicy(rng, false), nil
	case "legal":
		return NewRandomPolicy(rng, true), nil
	case "planner", "shortest", "shortest_path":
		return NewPlannerPolicy(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
	}
}
