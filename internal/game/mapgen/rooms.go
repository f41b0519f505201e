package mapgen

import (
	"fmt"
	"math"
	"sort"

	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game/core"
)

const (
	// shrinkEvery is the number of rejected placements between two
	// reductions of the target room area.
	shrinkEvery  = 10
	shrinkFactor = 0.75
)

// placeRooms carves exactly p.RoomCount rooms into grid. Placing fewer
// rooms rejects the whole attempt. scale multiplies the area target.
func (g *Generator) placeRooms(grid *core.Grid, p Params, scale float64) ([]core.Room, error) {
	if p.RoomCount == 0 {
		return nil, nil
	}

	area := scale * p.GlobalRoomRatio * float64(grid.Rows()*grid.Cols()) / float64(p.RoomCount)
	rooms := make([]core.Room, 0, p.RoomCount)
	for i := 0; i < p.RoomCount; i++ {
		roomType := g.config.RoomTypes[g.rng.Intn(len(g.config.RoomTypes))]
		room, ok := g.placeRoom(grid, rooms, roomType, area, p)
		if !ok {
			return nil, fmt.Errorf("%w: placed %d of %d", errTooFewRooms, len(rooms), p.RoomCount)
		}
		rooms = append(rooms, room)
	}
	return rooms, nil
}

func (g *Generator) placeRoom(grid *core.Grid, rooms []core.Room, roomType core.RoomType, area float64, p Params) (core.Room, bool) {
	maxH, maxW := lastOdd(grid.Rows()), lastOdd(grid.Cols())
	if maxH < minRoomSide || maxW < minRoomSide {
		return core.Room{}, false
	}

	minArea := float64(minRoomSide * minRoomSide)
	target := math.Max(area, minArea)
	for attempt := 0; attempt < g.config.MaxPlacementAttempts; attempt++ {
		if attempt > 0 && attempt%shrinkEvery == 0 {
			target = math.Max(target*shrinkFactor, minArea)
		}

		h := oddSide(math.Sqrt(target/p.RoomRatio), maxH)
		w := oddSide(math.Sqrt(target/p.RoomRatio)*p.RoomRatio, maxW)
		bounds := core.Rect{
			Row:    1 + 2*g.rng.Intn((maxH-h)/2+1),
			Col:    1 + 2*g.rng.Intn((maxW-w)/2+1),
			Height: h,
			Width:  w,
		}

		if overlapsAny(bounds, rooms) {
			continue
		}
		candidates := accessCandidates(bounds, maxH, maxW)
		if len(candidates) < p.AccessPointsPerRoom {
			continue
		}
		if !exteriorConnected(grid.Rows(), grid.Cols(), rooms, bounds) {
			continue
		}

		g.rng.Shuffle(len(candidates), func(i, j int) {
			candidates[i], candidates[j] = candidates[j], candidates[i]
		})
		access := append([]core.Coordinate(nil), candidates[:p.AccessPointsPerRoom]...)
		sort.Slice(access, func(i, j int) bool {
			if access[i].Row != access[j].Row {
				return access[i].Row < access[j].Row
			}
			return access[i].Col < access[j].Col
		})

		room := core.Room{Bounds: bounds, Type: roomType, AccessPoints: access}
		carveRoom(grid, room)
		return room, true
	}
	return core.Room{}, false
}

// oddSide rounds x to an odd side length in [3, limit]. limit must be odd.
func oddSide(x float64, limit int) int {
	n := int(math.Round(x))
	if n%2 == 0 {
		n--
	}
	if n < minRoomSide {
		n = minRoomSide
	}
	if n > limit {
		n = limit
	}
	return n
}

// overlapsAny rejects a room whose ring plus one cell of margin touches the
// ring of an existing room. This keeps a corridor between any two rooms.
func overlapsAny(bounds core.Rect, rooms []core.Room) bool {
	margin := bounds.Inflate(2)
	for _, r := range rooms {
		if margin.Intersects(r.Ring()) {
			return true
		}
	}
	return false
}

// exteriorConnected reports whether the lattice cells left outside every
// room, including the candidate, still form one 4-connected piece. Rooms
// that would split the corridor network are rejected so that connectivity
// repair never has to cross a room ring.
func exteriorConnected(rows, cols int, rooms []core.Room, candidate core.Rect) bool {
	lr, lc := latticeSize(rows), latticeSize(cols)
	blocked := make([]bool, lr*lc)
	block := func(b core.Rect) {
		for r := b.Row; r <= b.Bottom(); r += 2 {
			for c := b.Col; c <= b.Right(); c += 2 {
				blocked[(r/2)*lc+c/2] = true
			}
		}
	}
	for _, room := range rooms {
		block(room.Bounds)
	}
	block(candidate)

	first, open := -1, 0
	for i, b := range blocked {
		if !b {
			open++
			if first < 0 {
				first = i
			}
		}
	}
	if open == 0 {
		return false
	}

	seen := make([]bool, len(blocked))
	seen[first] = true
	queue := []int{first}
	for head := 0; head < len(queue); head++ {
		r, c := queue[head]/lc, queue[head]%lc
		for _, d := range core.ActionVectors {
			nr, nc := r+d.Row, c+d.Col
			if nr < 0 || nr >= lr || nc < 0 || nc >= lc {
				continue
			}
			idx := nr*lc + nc
			if blocked[idx] || seen[idx] {
				continue
			}
			seen[idx] = true
			queue = append(queue, idx)
		}
	}
	return len(queue) == open
}

// accessCandidates lists the ring cells aligned with the corridor lattice
// whose outer neighbour is a lattice cell inside the grid.
func accessCandidates(b core.Rect, lastRow, lastCol int) []core.Coordinate {
	var out []core.Coordinate
	if b.Row-2 >= 1 {
		for c := b.Col; c <= b.Right(); c += 2 {
			out = append(out, core.Coordinate{Row: b.Row - 1, Col: c})
		}
	}
	if b.Right()+2 <= lastCol {
		for r := b.Row; r <= b.Bottom(); r += 2 {
			out = append(out, core.Coordinate{Row: r, Col: b.Right() + 1})
		}
	}
	if b.Bottom()+2 <= lastRow {
		for c := b.Col; c <= b.Right(); c += 2 {
			out = append(out, core.Coordinate{Row: b.Bottom() + 1, Col: c})
		}
	}
	if b.Col-2 >= 1 {
		for r := b.Row; r <= b.Bottom(); r += 2 {
			out = append(out, core.Coordinate{Row: r, Col: b.Col - 1})
		}
	}
	return out
}

// carveRoom walls the ring, clears the interior, applies the type
// decoration and finally opens the access points.
func carveRoom(grid *core.Grid, room core.Room) {
	b := room.Bounds
	grid.Fill(room.Ring(), core.CellWall)
	grid.Fill(b, core.CellPath)

	switch room.Type {
	case core.RoomPillars:
		for r := b.Row + 1; r < b.Bottom(); r += 2 {
			for c := b.Col + 1; c < b.Right(); c += 2 {
				grid.Set(core.Coordinate{Row: r, Col: c}, core.CellWall)
			}
		}
	case core.RoomCourtyard:
		if b.Height >= 5 && b.Width >= 5 {
			grid.Fill(core.Rect{Row: b.Row + 2, Col: b.Col + 2, Height: b.Height - 4, Width: b.Width - 4}, core.CellWall)
		}
	}

	for _, ap := range room.AccessPoints {
		grid.Set(ap, core.CellPath)
	}
}
