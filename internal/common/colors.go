package common

import (
	"image/color"

	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game/core"
)

// Palette is the color scheme shared by the graphical and terminal clients.
type Palette struct {
	Cells      [core.NumCellCodes]color.RGBA
	Background color.RGBA
	GridLines  color.RGBA
	Text       color.RGBA
}

// DefaultPalette matches the colors shipped in config.yaml.
var DefaultPalette = Palette{
	Cells: [core.NumCellCodes]color.RGBA{
		core.CellWall:   {60, 60, 70, 255},
		core.CellPath:   {220, 220, 220, 255},
		core.CellTarget: {50, 200, 80, 255},
		core.CellStart:  {220, 200, 60, 255},
		core.CellPlayer: {60, 160, 230, 255},
	},
	Background: color.RGBA{0, 0, 0, 255},
	GridLines:  color.RGBA{40, 40, 40, 255},
	Text:       color.RGBA{255, 255, 255, 255},
}

// Cell returns the color for code. Unknown codes render in the wall color.
func (p Palette) Cell(code core.CellCode) color.RGBA {
	if !code.IsValid() {
		return p.Cells[core.CellWall]
	}
	return p.Cells[code]
}

// RGB converts a configured triple into an opaque color, clamping each
// channel to a byte.
func RGB(v [3]int) color.RGBA {
	return color.RGBA{ClampByte(v[0]), ClampByte(v[1]), ClampByte(v[2]), 255}
}

// Lighten returns c with amount added to every channel.
func Lighten(c color.RGBA, amount int) color.RGBA {
	return color.RGBA{
		ClampByte(int(c.R) + amount),
		ClampByte(int(c.G) + amount),
		ClampByte(int(c.B) + amount),
		c.A,
	}
}
