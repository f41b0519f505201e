package core

import "fmt"

// CellCode is the value stored in a grid cell. The numeric order is shared
// with every renderer and with the observation space: 0..4.
type CellCode uint8

const (
	CellWall CellCode = iota
	CellPath
	CellTarget
	CellStart
	CellPlayer
)

// NumCellCodes is the number of distinct cell codes.
const NumCellCodes = 5

var cellGlyphs = [NumCellCodes]rune{
	CellWall:   '#',
	CellPath:   '.',
	CellTarget: 'T',
	CellStart:  'S',
	CellPlayer: '@',
}

func (c CellCode) IsValid() bool { return c < NumCellCodes }

// IsWalkable reports whether an agent may stand on a cell holding this code.
// Only walls block; overlay codes sit on path cells.
func (c CellCode) IsWalkable() bool { return c.IsValid() && c != CellWall }

// Glyph returns the single-character ASCII form used by Grid.String and ParseMaze.
func (c CellCode) Glyph() rune {
	if !c.IsValid() {
		return '?'
	}
	return cellGlyphs[c]
}

func (c CellCode) String() string {
	switch c {
	case CellWall:
		return "WALL"
	case CellPath:
		return "PATH"
	case CellTarget:
		return "TARGET"
	case CellStart:
		return "START"
	case CellPlayer:
		return "PLAYER"
	default:
		return fmt.Sprintf("CellCode(%d)", uint8(c))
	}
}

// CellFromGlyph is the inverse of Glyph.
func CellFromGlyph(r rune) (CellCode, bool) {
	for code, g := range cellGlyphs {
		if g == r {
			return CellCode(code), true
		}
	}
	return 0, false
}
