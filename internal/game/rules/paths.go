package rules

import (
	"errors"
	"fmt"

	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game/core"
)

// ErrNoPath is returned when two cells are not connected by walkable cells.
var ErrNoPath = errors.New("no path between cells")

// Distance returns the number of moves on a shortest walk from one cell to
// another, or -1 when no such walk exists.
func Distance(maze *core.Maze, from, to core.Coordinate) int {
	if maze == nil || !maze.IsWalkable(from) || !maze.IsWalkable(to) {
		return -1
	}
	return maze.Distances(to)[from.ToIndex(maze.Cols())]
}

// ShortestPath returns the actions of a shortest walk from `from` to `to`.
// Among equally short walks it prefers actions earlier in action order at
// every step, so the result is deterministic.
func ShortestPath(maze *core.Maze, from, to core.Coordinate) ([]core.Action, error) {
	if maze == nil {
		return nil, fmt.Errorf("%w: nil maze", ErrNoPath)
	}
	if !maze.IsWalkable(from) || !maze.IsWalkable(to) {
		return nil, fmt.Errorf("%w: %s to %s", ErrNoPath, from, to)
	}

	cols := maze.Cols()
	dist := maze.Distances(to)
	remaining := dist[from.ToIndex(cols)]
	if remaining < 0 {
		return nil, fmt.Errorf("%w: %s to %s", ErrNoPath, from, to)
	}

	path := make([]core.Action, 0, remaining)
	cur := from
	for remaining > 0 {
		advanced := false
		for _, action := range core.AllActions() {
			next := cur.Move(action)
			if !maze.IsWalkable(next) || dist[next.ToIndex(cols)] != remaining-1 {
				continue
			}
			path = append(path, action)
			cur = next
			remaining--
			advanced = true
			break
		}
		if !advanced {
			// Unreachable with a consistent distance field.
			return nil, fmt.Errorf("%w: stuck at %s", ErrNoPath, cur)
		}
	}
	return path, nil
}
