package common

import "github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game/core"

// ValidRGB reports whether every channel of v fits in a byte.
func ValidRGB(v [3]int) bool {
	for _, c := range v {
		if c < 0 || c > 255 {
			return false
		}
	}
	return true
}

// CellAt maps a pixel position onto the grid cell drawn there when cells
// are size pixels wide and the grid starts at (offsetX, offsetY).
func CellAt(x, y, offsetX, offsetY, size int) core.Coordinate {
	if size <= 0 {
		return core.NewCoordinate(-1, -1)
	}
	dx, dy := x-offsetX, y-offsetY
	if dx < 0 || dy < 0 {
		return core.NewCoordinate(-1, -1)
	}
	return core.NewCoordinate(dy/size, dx/size)
}
