package experience

import (
	"time"

	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game/core"
)

// Transition is one (observation, action, reward, next observation) tuple.
// Observations are stored as row-major cell codes.
type Transition struct {
	ID              string  `json:"id"`
	EpisodeID       string  `json:"episode_id"`
	Step            int     `json:"step"`
	Rows            int     `json:"rows"`
	Cols            int     `json:"cols"`
	Observation     []uint8 `json:"observation"`
	Action          int     `json:"action"`
	Reward          float64 `json:"reward"`
	NextObservation []uint8 `json:"next_observation"`
	Done            bool    `json:"done"`
	Truncated       bool    `json:"truncated"`
	ActionMask      []bool  `json:"action_mask"`
	// ReturnToGo is the discounted return from this step, filled in when
	// the episode ends or the collector closes.
	ReturnToGo  float64   `json:"return_to_go"`
	CollectedAt time.Time `json:"collected_at"`
}

// Ended reports whether the transition closes its episode.
func (t *Transition) Ended() bool { return t.Done || t.Truncated }

func (t *Transition) ObservationGrid() (*core.Grid, error) {
	return core.GridFromFlat(t.Rows, t.Cols, t.Observation)
}

func (t *Transition) NextObservationGrid() (*core.Grid, error) {
	return core.GridFromFlat(t.Rows, t.Cols, t.NextObservation)
}
