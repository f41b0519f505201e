package core

import "fmt"

// Maze is an immutable, validated labyrinth: a structural grid of walls and
// paths plus distinct start and target cells. Every path cell is reachable
// from the start.
type Maze struct {
	grid   *Grid
	start  Coordinate
	target Coordinate
	rooms  []Room
}

// NewMaze validates the layout and returns a maze owning a private copy of grid.
func NewMaze(grid *Grid, start, target Coordinate, rooms []Room) (*Maze, error) {
	if grid == nil || grid.Size() == 0 {
		return nil, ErrInvalidDimensions
	}
	for i, code := range grid.cells {
		if code != CellWall && code != CellPath {
			return nil, fmt.Errorf("cell %s holds %s: %w", FromIndex(i, grid.cols), code, ErrMalformedLayout)
		}
	}
	for _, c := range []Coordinate{start, target} {
		if !grid.InBounds(c) {
			return nil, fmt.Errorf("endpoint %s: %w", c, ErrInvalidCoordinates)
		}
		if grid.At(c) != CellPath {
			return nil, fmt.Errorf("endpoint %s: %w", c, ErrNotPath)
		}
	}
	if start == target {
		return nil, ErrSameStartTarget
	}
	if !grid.IsConnected(start) {
		return nil, ErrDisconnected
	}

	m := &Maze{grid: grid.Clone(), start: start, target: target}
	m.rooms = make([]Room, len(rooms))
	for i, r := range rooms {
		m.rooms[i] = r.clone()
	}
	return m, nil
}

// ParseMaze builds a maze from ASCII rows: '#' wall, '.' path, 'S' start,
// 'T' target. Rooms are not recorded.
func ParseMaze(lines ...string) (*Maze, error) {
	g, err := ParseGrid(lines...)
	if err != nil {
		return nil, err
	}
	starts, targets := g.Find(CellStart), g.Find(CellTarget)
	if len(starts) != 1 || len(targets) != 1 {
		return nil, fmt.Errorf("need exactly one S and one T: %w", ErrMalformedLayout)
	}
	g.Set(starts[0], CellPath)
	g.Set(targets[0], CellPath)
	return NewMaze(g, starts[0], targets[0], nil)
}

func (m *Maze) Rows() int          { return m.grid.rows }
func (m *Maze) Cols() int          { return m.grid.cols }
func (m *Maze) Start() Coordinate  { return m.start }
func (m *Maze) Target() Coordinate { return m.target }

// Grid returns a copy of the structural grid.
func (m *Maze) Grid() *Grid { return m.grid.Clone() }

// At returns the structural code at c; outside cells read as walls.
func (m *Maze) At(c Coordinate) CellCode { return m.grid.At(c) }

// IsWalkable reports whether c is inside the maze and not a wall.
func (m *Maze) IsWalkable(c Coordinate) bool {
	return m.grid.InBounds(c) && m.grid.At(c) == CellPath
}

// PathCount is the number of walkable cells.
func (m *Maze) PathCount() int { return m.grid.Count(CellPath) }

// Rooms returns a deep copy of the placed rooms.
func (m *Maze) Rooms() []Room {
	out := make([]Room, len(m.rooms))
	for i, r := range m.rooms {
		out[i] = r.clone()
	}
	return out
}

// Distances returns BFS distances from c over the structural grid.
func (m *Maze) Distances(c Coordinate) []int { return m.grid.Distances(c) }

// Observation overlays START, TARGET and PLAYER, in that order, onto a copy
// of the structural grid.
func (m *Maze) Observation(player Coordinate) *Grid {
	obs := m.grid.Clone()
	obs.Set(m.start, CellStart)
	obs.Set(m.target, CellTarget)
	obs.Set(player, CellPlayer)
	return obs
}

func (m *Maze) Equal(other *Maze) bool {
	if other == nil {
		return false
	}
	return m.start == other.start && m.target == other.target && m.grid.Equal(other.grid)
}

// String renders the maze with its start and target marked, in the form
// accepted by ParseMaze.
func (m *Maze) String() string {
	g := m.grid.Clone()
	g.Set(m.start, CellStart)
	g.Set(m.target, CellTarget)
	return g.String()
}
