package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGrid(t *testing.T) {
	tests := []struct {
		name       string
		rows, cols int
		fill       CellCode
		size       int
	}{
		{"walls", 3, 4, CellWall, 12},
		{"paths", 5, 5, CellPath, 25},
		{"zero rows", 0, 4, CellPath, 0},
		{"negative cols", 3, -1, CellPath, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGrid(tt.rows, tt.cols, tt.fill)
			assert.Equal(t, tt.size, g.Size())
			assert.Equal(t, tt.size, g.Count(tt.fill))
		})
	}
}

func TestGrid_AtOutsideReadsAsWall(t *testing.T) {
	g := NewGrid(2, 2, CellPath)
	assert.Equal(t, CellPath, g.At(Coordinate{1, 1}))
	assert.Equal(t, CellWall, g.At(Coordinate{-1, 0}))
	assert.Equal(t, CellWall, g.At(Coordinate{0, 2}))
}

func TestGrid_SetAndClone(t *testing.T) {
	g := NewGrid(3, 3, CellWall)
	assert.True(t, g.Set(Coordinate{1, 1}, CellPath))
	assert.False(t, g.Set(Coordinate{3, 0}, CellPath))

	clone := g.Clone()
	require.True(t, clone.Equal(g))

	clone.Set(Coordinate{0, 0}, CellPath)
	assert.Equal(t, CellWall, g.At(Coordinate{0, 0}), "clone must not share storage")
	assert.False(t, clone.Equal(g))
}

func TestGrid_Fill(t *testing.T) {
	g := NewGrid(4, 4, CellWall)
	g.Fill(Rect{Row: 1, Col: 1, Height: 2, Width: 5}, CellPath)
	assert.Equal(t, 6, g.Count(CellPath))
	assert.Equal(t, CellWall, g.At(Coordinate{1, 0}))
	assert.Equal(t, CellPath, g.At(Coordinate{2, 3}))
}

func TestGrid_MatrixAndFlat(t *testing.T) {
	g, err := ParseGrid(
		"#.T",
		"S@#",
	)
	require.NoError(t, err)

	assert.Equal(t, [][]uint8{{0, 1, 2}, {3, 4, 0}}, g.Matrix())
	assert.Equal(t, []uint8{0, 1, 2, 3, 4, 0}, g.Flat())

	back, err := GridFromFlat(2, 3, g.Flat())
	require.NoError(t, err)
	assert.True(t, back.Equal(g))

	_, err = GridFromFlat(2, 2, g.Flat())
	assert.ErrorIs(t, err, ErrInvalidDimensions)
	_, err = GridFromFlat(1, 2, []uint8{0, 9})
	assert.ErrorIs(t, err, ErrMalformedLayout)
}

func TestGrid_StringRoundTrip(t *testing.T) {
	lines := []string{
		"#####",
		"#S..#",
		"#.#T#",
		"#####",
	}
	g, err := ParseGrid(lines...)
	require.NoError(t, err)
	assert.Equal(t, "#####\n#S..#\n#.#T#\n#####", g.String())
}

func TestParseGrid_Errors(t *testing.T) {
	_, err := ParseGrid()
	assert.ErrorIs(t, err, ErrInvalidDimensions)

	_, err = ParseGrid("###", "##")
	assert.ErrorIs(t, err, ErrMalformedLayout)

	_, err = ParseGrid("#x#")
	assert.ErrorIs(t, err, ErrMalformedLayout)
}

func TestGrid_Find(t *testing.T) {
	g, err := ParseGrid(
		".#.",
		"#.#",
	)
	require.NoError(t, err)
	assert.Equal(t, []Coordinate{{0, 0}, {0, 2}, {1, 1}}, g.Find(CellPath))
}

func TestCellCode(t *testing.T) {
	assert.Equal(t, CellCode(0), CellWall)
	assert.Equal(t, CellCode(4), CellPlayer)
	assert.False(t, CellWall.IsWalkable())
	for _, c := range []CellCode{CellPath, CellTarget, CellStart, CellPlayer} {
		assert.True(t, c.IsWalkable(), c.String())
		back, ok := CellFromGlyph(c.Glyph())
		require.True(t, ok)
		assert.Equal(t, c, back)
	}
	assert.False(t, CellCode(7).IsWalkable())
	assert.Equal(t, "CellCode(7)", CellCode(7).String())
}
