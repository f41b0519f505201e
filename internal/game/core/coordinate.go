package core

import "fmt"

// Coordinate represents a cell position as (row, column)
type Coordinate struct {
	Row, Col int
}

// NewCoordinate creates a new coordinate with the given row and column
func NewCoordinate(row, col int) Coordinate {
	return Coordinate{Row: row, Col: col}
}

// FromIndex creates a coordinate from a grid array index using row-major ordering
func FromIndex(idx, cols int) Coordinate {
	return Coordinate{
		Row: idx / cols,
		Col: idx % cols,
	}
}

// IsValid checks if the coordinate is within the given bounds
func (c Coordinate) IsValid(rows, cols int) bool {
	return c.Row >= 0 && c.Row < rows && c.Col >= 0 && c.Col < cols
}

// ToIndex converts the coordinate to a grid array index using row-major ordering
func (c Coordinate) ToIndex(cols int) int {
	return c.Row*cols + c.Col
}

// DistanceTo calculates the Manhattan distance to another coordinate
func (c Coordinate) DistanceTo(other Coordinate) int {
	dr := c.Row - other.Row
	dc := c.Col - other.Col
	if dr < 0 {
		dr = -dr
	}
	if dc < 0 {
		dc = -dc
	}
	return dr + dc
}

// IsAdjacentTo checks if this coordinate is orthogonally adjacent to another
func (c Coordinate) IsAdjacentTo(other Coordinate) bool {
	return c.DistanceTo(other) == 1
}

// Neighbors returns the four orthogonal neighbors in action order (up, right, down, left)
func (c Coordinate) Neighbors() [NumActions]Coordinate {
	var out [NumActions]Coordinate
	for a, d := range ActionVectors {
		out[a] = c.Add(d)
	}
	return out
}

// ValidNeighbors returns only the neighbors that are within the given bounds
func (c Coordinate) ValidNeighbors(rows, cols int) []Coordinate {
	valid := make([]Coordinate, 0, NumActions)
	for _, n := range c.Neighbors() {
		if n.IsValid(rows, cols) {
			valid = append(valid, n)
		}
	}
	return valid
}

// Add returns a new coordinate that is the sum of this coordinate and another
func (c Coordinate) Add(other Coordinate) Coordinate {
	return Coordinate{
		Row: c.Row + other.Row,
		Col: c.Col + other.Col,
	}
}

// Sub returns a new coordinate that is the difference between this coordinate and another
func (c Coordinate) Sub(other Coordinate) Coordinate {
	return Coordinate{
		Row: c.Row - other.Row,
		Col: c.Col - other.Col,
	}
}

// Move returns a new coordinate moved one step by the given action.
// Invalid actions leave the coordinate unchanged.
func (c Coordinate) Move(action Action) Coordinate {
	return c.Add(action.Delta())
}

// ActionTo returns the action leading from this coordinate to an adjacent one.
// Returns false if the coordinates are not adjacent.
func (c Coordinate) ActionTo(other Coordinate) (Action, bool) {
	d := other.Sub(c)
	for a, v := range ActionVectors {
		if v == d {
			return Action(a), true
		}
	}
	return 0, false
}

// String returns a string representation of the coordinate
func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}
