package game

import (
	"fmt"
	"strings"

	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game/core"
)

// ANSI color codes
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorCyan   = "\033[36m"
	ColorWhite  = "\033[37m"
	ColorGray   = "\033[90m"
)

var cellColors = [core.NumCellCodes]string{
	core.CellWall:   ColorGray,
	core.CellPath:   ColorWhite,
	core.CellTarget: ColorGreen,
	core.CellStart:  ColorYellow,
	core.CellPlayer: ColorCyan,
}

// Render draws an observation one glyph per cell. With color set every
// glyph is wrapped in its ANSI color.
func Render(obs *core.Grid, color bool) string {
	if !color {
		return obs.String()
	}

	var sb strings.Builder
	// glyph plus two escape sequences per cell
	sb.Grow(obs.Size()*(len(ColorReset)+8) + obs.Rows())
	for r := 0; r < obs.Rows(); r++ {
		if r > 0 {
			sb.WriteByte('\n')
		}
		for c := 0; c < obs.Cols(); c++ {
			code := obs.At(core.NewCoordinate(r, c))
			colorCode := ColorRed
			if code.IsValid() {
				colorCode = cellColors[code]
			}
			sb.WriteString(colorCode)
			sb.WriteRune(code.Glyph())
			sb.WriteString(ColorReset)
		}
	}
	return sb.String()
}

// Render draws the current observation under a one-line status header.
func (e *Env) Render(color bool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "seed=%d step=%d phase=%s return=%.2f\n",
		e.Seed(), e.stats.Steps, e.Phase(), e.stats.Return)
	sb.WriteString(Render(e.obs, color))
	sb.WriteString("\n")
	sb.WriteString(legend)
	return sb.String()
}

const legend = "#=wall .=path S=start T=target @=player\n"
