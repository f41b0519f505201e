package rules

import "github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game/core"

// LegalMoveCalculator computes which actions move the player without a collision
type LegalMoveCalculator struct{}

// NewLegalMoveCalculator creates a new legal move calculator
func NewLegalMoveCalculator() *LegalMoveCalculator {
	return &LegalMoveCalculator{}
}

// GetLegalActionMask returns a boolean mask indexed by action value.
// - Index = action (0=up, 1=right, 2=down, 3=left)
// - true = the move lands on a walkable cell, false = it would collide
// Every entry is false when pos lies outside the maze.
func (lmc *LegalMoveCalculator) GetLegalActionMask(maze *core.Maze, pos core.Coordinate) []bool {
	mask := make([]bool, core.NumActions)
	if maze == nil || !pos.IsValid(maze.Rows(), maze.Cols()) {
		return mask
	}

	for _, action := range core.AllActions() {
		mask[action] = maze.IsWalkable(pos.Move(action))
	}
	return mask
}

// GetLegalActions returns the non-colliding actions in action order.
func (lmc *LegalMoveCalculator) GetLegalActions(maze *core.Maze, pos core.Coordinate) []core.Action {
	mask := lmc.GetLegalActionMask(maze, pos)
	actions := make([]core.Action, 0, core.NumActions)
	for i, legal := range mask {
		if legal {
			actions = append(actions, core.Action(i))
		}
	}
	return actions
}

// GetObservationActionMask derives the mask from an observation alone,
// treating the PLAYER cell as the current position. Every entry is false
// when obs does not hold exactly one player.
func (lmc *LegalMoveCalculator) GetObservationActionMask(obs *core.Grid) []bool {
	mask := make([]bool, core.NumActions)
	if obs == nil {
		return mask
	}
	players := obs.Find(core.CellPlayer)
	if len(players) != 1 {
		return mask
	}
	for _, action := range core.AllActions() {
		mask[action] = obs.At(players[0].Move(action)).IsWalkable()
	}
	return mask
}

// LegalActionMask is a shorthand for the stateless calculator.
func LegalActionMask(maze *core.Maze, pos core.Coordinate) []bool {
	return NewLegalMoveCalculator().GetLegalActionMask(maze, pos)
}
