package renderer

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font"

	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/common"
	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game/core"
)

// GridRenderer draws an observation as colored squares. The grid's top-left
// corner sits at the configured offset so that a HUD fits above it.
type GridRenderer struct {
	cellSize         int
	offsetX, offsetY int
	palette          common.Palette
	face             font.Face
}

// NewGridRenderer returns a renderer ready to use.
func NewGridRenderer(cellSize, offsetX, offsetY int, palette common.Palette, f font.Face) *GridRenderer {
	return &GridRenderer{
		cellSize: cellSize,
		offsetX:  offsetX,
		offsetY:  offsetY,
		palette:  palette,
		face:     f,
	}
}

func (gr *GridRenderer) CellSize() int { return gr.cellSize }

// CellRect is the screen rectangle covered by c.
func (gr *GridRenderer) CellRect(c core.Coordinate) image.Rectangle {
	x := gr.offsetX + c.Col*gr.cellSize
	y := gr.offsetY + c.Row*gr.cellSize
	return image.Rect(x, y, x+gr.cellSize, y+gr.cellSize)
}

// Bounds is the screen rectangle covered by a rows x cols grid.
func (gr *GridRenderer) Bounds(rows, cols int) image.Rectangle {
	return image.Rect(gr.offsetX, gr.offsetY, gr.offsetX+cols*gr.cellSize, gr.offsetY+rows*gr.cellSize)
}

// CellAt returns the grid cell under a screen position. The result may lie
// outside the grid.
func (gr *GridRenderer) CellAt(x, y int) core.Coordinate {
	return common.CellAt(x, y, gr.offsetX, gr.offsetY, gr.cellSize)
}

// Draw renders obs on the supplied Ebiten screen.
func (gr *GridRenderer) Draw(screen *ebiten.Image, obs *core.Grid) {
	if obs == nil {
		return
	}

	for r := 0; r < obs.Rows(); r++ {
		for c := 0; c < obs.Cols(); c++ {
			pos := core.NewCoordinate(r, c)
			gr.drawCell(screen, pos, obs.At(pos))
		}
	}

	b := gr.Bounds(obs.Rows(), obs.Cols())
	vector.StrokeRect(screen, float32(b.Min.X), float32(b.Min.Y), float32(b.Dx()), float32(b.Dy()), 1, gr.palette.GridLines, false)
}

func (gr *GridRenderer) drawCell(screen *ebiten.Image, pos core.Coordinate, code core.CellCode) {
	rect := gr.CellRect(pos)
	x, y := float32(rect.Min.X), float32(rect.Min.Y)
	size := float32(gr.cellSize)

	switch code {
	case core.CellPlayer:
		// the player stands on a path cell
		vector.DrawFilledRect(screen, x, y, size, size, gr.palette.Cell(core.CellPath), false)
		player := gr.palette.Cell(core.CellPlayer)
		vector.DrawFilledCircle(screen, x+size/2, y+size/2, size*0.35, player, true)
		vector.StrokeCircle(screen, x+size/2, y+size/2, size*0.35, 2, common.Lighten(player, 60), true)
	default:
		vector.DrawFilledRect(screen, x, y, size, size, gr.palette.Cell(code), false)
	}

	if code != core.CellWall {
		vector.StrokeRect(screen, x, y, size, size, 1, gr.palette.GridLines, false)
	}

	if (code == core.CellStart || code == core.CellTarget) && gr.face != nil {
		gr.drawLabel(screen, rect, string(code.Glyph()), color.Black)
	}
}

// drawLabel centres s inside rect.
func (gr *GridRenderer) drawLabel(screen *ebiten.Image, rect image.Rectangle, s string, clr color.Color) {
	b := text.BoundString(gr.face, s)
	x := rect.Min.X + (rect.Dx()-b.Dx())/2 - b.Min.X
	y := rect.Min.Y + (rect.Dy()-b.Dy())/2 - b.Min.Y
	text.Draw(screen, s, gr.face, x, y, clr)
}
