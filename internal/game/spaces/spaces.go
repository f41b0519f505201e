// Package spaces describes the shapes of actions and observations exchanged
// with an environment.
package spaces

import (
	"fmt"
	"math/rand"

	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game/core"
)

// Discrete is the set {0, 1, ..., N-1}.
type Discrete struct {
	N int
}

func NewDiscrete(n int) Discrete { return Discrete{N: n} }

// Sample draws a uniform element. It panics when N is not positive, like
// rand.Intn.
func (d Discrete) Sample(rng *rand.Rand) int {
	return rng.Intn(d.N)
}

func (d Discrete) Contains(x int) bool {
	return x >= 0 && x < d.N
}

func (d Discrete) String() string {
	return fmt.Sprintf("Discrete(%d)", d.N)
}

// Box is a rows x cols grid of cell codes bounded by [Low, High].
type Box struct {
	Low  uint8
	High uint8
	Rows int
	Cols int
}

func NewBox(low, high uint8, rows, cols int) Box {
	return Box{Low: low, High: high, Rows: rows, Cols: cols}
}

// ObservationBox is the space of labyrinth observations of the given size.
func ObservationBox(rows, cols int) Box {
	return NewBox(uint8(core.CellWall), uint8(core.NumCellCodes-1), rows, cols)
}

func (b Box) Shape() []int { return []int{b.Rows, b.Cols} }

func (b Box) Size() int { return b.Rows * b.Cols }

// Contains reports whether g has the box shape and every cell lies within
// the bounds.
func (b Box) Contains(g *core.Grid) bool {
	if g == nil || g.Rows() != b.Rows || g.Cols() != b.Cols {
		return false
	}
	for _, v := range g.Flat() {
		if v < b.Low || v > b.High {
			return false
		}
	}
	return true
}

func (b Box) String() string {
	return fmt.Sprintf("Box(%d, %d, (%d, %d))", b.Low, b.High, b.Rows, b.Cols)
}
