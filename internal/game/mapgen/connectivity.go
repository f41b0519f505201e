package mapgen

import (
	"fmt"

	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game/core"
)

// repairConnectivity reconnects corridor pieces cut apart by room rings.
// It opens random wall cells that border two different components until a
// single component remains. Cells on or inside a room ring are never
// opened, so every room keeps exactly its access points.
func (g *Generator) repairConnectivity(grid *core.Grid, rooms []core.Room) error {
	for {
		labels, count := grid.Components()
		if count <= 1 {
			return nil
		}

		candidates := repairCandidates(grid, rooms, labels)
		if len(candidates) == 0 {
			return fmt.Errorf("%w: %d components remain", errNoRepairCell, count)
		}
		pick := candidates[g.rng.Intn(len(candidates))]
		grid.Set(pick, core.CellPath)
		g.logger.Debug().Str("cell", pick.String()).Int("components", count).Msg("Opened wall to join components")
	}
}

func repairCandidates(grid *core.Grid, rooms []core.Room, labels []int) []core.Coordinate {
	var out []core.Coordinate
	for r := 1; r < grid.Rows()-1; r++ {
	cells:
		for c := 1; c < grid.Cols()-1; c++ {
			cell := core.Coordinate{Row: r, Col: c}
			if grid.At(cell) != core.CellWall {
				continue
			}
			for _, room := range rooms {
				if room.Ring().Contains(cell) {
					continue cells
				}
			}

			first := -1
			for _, n := range cell.Neighbors() {
				if !grid.InBounds(n) {
					continue
				}
				label := labels[n.ToIndex(grid.Cols())]
				if label < 0 {
					continue
				}
				if first < 0 {
					first = label
				} else if label != first {
					out = append(out, cell)
					continue cells
				}
			}
		}
	}
	return out
}
