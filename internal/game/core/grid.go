package core

import "strings"

// Grid is a rows x cols matrix of cell codes stored in row-major order.
type Grid struct {
	rows, cols int
	cells      []CellCode
}

// NewGrid allocates a grid with every cell set to fill.
// Non-positive dimensions yield an empty grid.
func NewGrid(rows, cols int, fill CellCode) *Grid {
	if rows <= 0 || cols <= 0 {
		return &Grid{}
	}
	g := &Grid{rows: rows, cols: cols, cells: make([]CellCode, rows*cols)}
	if fill != 0 {
		for i := range g.cells {
			g.cells[i] = fill
		}
	}
	return g
}

func (g *Grid) Rows() int { return g.rows }
func (g *Grid) Cols() int { return g.cols }
func (g *Grid) Size() int { return len(g.cells) }

// InBounds checks if the coordinate lies inside the grid
func (g *Grid) InBounds(c Coordinate) bool {
	return c.IsValid(g.rows, g.cols)
}

// At returns the code at c. Cells outside the grid read as walls.
func (g *Grid) At(c Coordinate) CellCode {
	if !g.InBounds(c) {
		return CellWall
	}
	return g.cells[c.ToIndex(g.cols)]
}

// Set writes code at c and reports whether c was inside the grid.
func (g *Grid) Set(c Coordinate, code CellCode) bool {
	if !g.InBounds(c) {
		return false
	}
	g.cells[c.ToIndex(g.cols)] = code
	return true
}

// Fill writes code into every cell of r that lies inside the grid.
func (g *Grid) Fill(r Rect, code CellCode) {
	for row := r.Row; row < r.Row+r.Height; row++ {
		for col := r.Col; col < r.Col+r.Width; col++ {
			g.Set(Coordinate{Row: row, Col: col}, code)
		}
	}
}

func (g *Grid) Clone() *Grid {
	out := &Grid{rows: g.rows, cols: g.cols, cells: make([]CellCode, len(g.cells))}
	copy(out.cells, g.cells)
	return out
}

// Count returns the number of cells holding code.
func (g *Grid) Count(code CellCode) int {
	n := 0
	for _, c := range g.cells {
		if c == code {
			n++
		}
	}
	return n
}

// Find returns the coordinates holding code in row-major order.
func (g *Grid) Find(code CellCode) []Coordinate {
	var out []Coordinate
	for i, c := range g.cells {
		if c == code {
			out = append(out, FromIndex(i, g.cols))
		}
	}
	return out
}

// Matrix returns the grid as nested rows of raw codes.
func (g *Grid) Matrix() [][]uint8 {
	out := make([][]uint8, g.rows)
	for r := 0; r < g.rows; r++ {
		row := make([]uint8, g.cols)
		for c := 0; c < g.cols; c++ {
			row[c] = uint8(g.cells[r*g.cols+c])
		}
		out[r] = row
	}
	return out
}

// Flat returns a copy of the row-major cell codes.
func (g *Grid) Flat() []uint8 {
	out := make([]uint8, len(g.cells))
	for i, c := range g.cells {
		out[i] = uint8(c)
	}
	return out
}

// GridFromFlat rebuilds a grid from row-major codes.
func GridFromFlat(rows, cols int, flat []uint8) (*Grid, error) {
	if rows <= 0 || cols <= 0 || len(flat) != rows*cols {
		return nil, ErrInvalidDimensions
	}
	g := NewGrid(rows, cols, CellWall)
	for i, v := range flat {
		code := CellCode(v)
		if !code.IsValid() {
			return nil, ErrMalformedLayout
		}
		g.cells[i] = code
	}
	return g, nil
}

func (g *Grid) Equal(other *Grid) bool {
	if other == nil || g.rows != other.rows || g.cols != other.cols {
		return false
	}
	for i := range g.cells {
		if g.cells[i] != other.cells[i] {
			return false
		}
	}
	return true
}

// String renders one glyph per cell, rows separated by newlines.
func (g *Grid) String() string {
	var sb strings.Builder
	sb.Grow(g.rows * (g.cols + 1))
	for r := 0; r < g.rows; r++ {
		if r > 0 {
			sb.WriteByte('\n')
		}
		for c := 0; c < g.cols; c++ {
			sb.WriteRune(g.cells[r*g.cols+c].Glyph())
		}
	}
	return sb.String()
}

// ParseGrid reads the glyph form produced by String.
func ParseGrid(lines ...string) (*Grid, error) {
	if len(lines) == 0 || len(lines[0]) == 0 {
		return nil, ErrInvalidDimensions
	}
	rows, cols := len(lines), len([]rune(lines[0]))
	g := NewGrid(rows, cols, CellWall)
	for r, line := range lines {
		runes := []rune(line)
		if len(runes) != cols {
			return nil, ErrMalformedLayout
		}
		for c, ch := range runes {
			code, ok := CellFromGlyph(ch)
			if !ok {
				return nil, ErrMalformedLayout
			}
			g.cells[r*cols+c] = code
		}
	}
	return g, nil
}
