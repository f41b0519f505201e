package renderer

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font"

	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/common"
	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game/core"
)

var (
	HintColor      = color.RGBA{100, 255, 100, 64} // Semi-transparent green
	HoverColor     = color.RGBA{255, 255, 255, 64} // Semi-transparent white
	CollisionColor = color.RGBA{255, 60, 60, 160}  // Semi-transparent red
)

// collisionFrames is how long a bumped wall stays highlighted.
const collisionFrames = 20

// OverlayRenderer draws the grid plus interaction overlays: the hovered
// cell, the moves available from the player and a flash on bumped walls.
type OverlayRenderer struct {
	*GridRenderer

	hover    core.Coordinate
	hasHover bool
	hints    []core.Coordinate

	flash       core.Coordinate
	flashFrames int
}

func NewOverlayRenderer(cellSize, offsetX, offsetY int, palette common.Palette, f font.Face) *OverlayRenderer {
	return &OverlayRenderer{GridRenderer: NewGridRenderer(cellSize, offsetX, offsetY, palette, f)}
}

func (o *OverlayRenderer) SetHover(c core.Coordinate, ok bool) {
	o.hover, o.hasHover = c, ok
}

// SetHints marks the cells the player can step onto. mask is indexed by
// action, as returned by Env.LegalActionMask.
func (o *OverlayRenderer) SetHints(player core.Coordinate, mask []bool) {
	o.hints = HintCells(player, mask)
}

// Flash highlights a cell for a short while.
func (o *OverlayRenderer) Flash(c core.Coordinate) {
	o.flash, o.flashFrames = c, collisionFrames
}

// Tick advances overlay animations by one frame.
func (o *OverlayRenderer) Tick() {
	if o.flashFrames > 0 {
		o.flashFrames--
	}
}

func (o *OverlayRenderer) Flashing() bool { return o.flashFrames > 0 }

func (o *OverlayRenderer) Draw(screen *ebiten.Image, obs *core.Grid) {
	// First draw the base grid
	o.GridRenderer.Draw(screen, obs)
	if obs == nil {
		return
	}

	for _, c := range o.hints {
		o.drawCellOverlay(screen, c, HintColor)
	}
	if o.hasHover && obs.InBounds(o.hover) {
		o.drawCellOverlay(screen, o.hover, HoverColor)
	}
	if o.flashFrames > 0 && obs.InBounds(o.flash) {
		o.drawCellOverlay(screen, o.flash, CollisionColor)
	}
}

func (o *OverlayRenderer) drawCellOverlay(screen *ebiten.Image, c core.Coordinate, clr color.Color) {
	rect := o.CellRect(c)
	vector.DrawFilledRect(screen, float32(rect.Min.X), float32(rect.Min.Y), float32(rect.Dx()), float32(rect.Dy()), clr, false)
}

// HintCells lists the neighbours of player reachable by a legal action.
func HintCells(player core.Coordinate, mask []bool) []core.Coordinate {
	var cells []core.Coordinate
	for _, a := range core.AllActions() {
		if int(a) < len(mask) && mask[a] {
			cells = append(cells, player.Move(a))
		}
	}
	return cells
}
