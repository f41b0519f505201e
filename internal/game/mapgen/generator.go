package mapgen

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game/core"
)

var (
	errTooFewRooms      = errors.New("could not place every room")
	errNoRepairCell     = errors.New("no wall joins two corridor components")
	errTooFewPathCells  = errors.New("fewer than two path cells")
	errLatticeExhausted = errors.New("corridor lattice is empty")
)

// Generator handles maze generation with deterministic RNG
type Generator struct {
	config Config
	rng    *rand.Rand
	logger zerolog.Logger

	params Params
}

// NewGenerator creates a new maze generator. The generator draws every
// random choice from rng, so the same config and seed yield the same maze.
func NewGenerator(config Config, rng *rand.Rand) *Generator {
	return &Generator{
		config: config,
		rng:    rng,
		logger: zerolog.Nop(),
	}
}

// SetLogger replaces the default no-op logger.
func (g *Generator) SetLogger(logger zerolog.Logger) {
	g.logger = logger.With().Str("component", "mapgen").Logger()
}

// Params returns the values resolved by the last Generate call.
func (g *Generator) Params() Params { return g.params }

// Generate resolves the parameters once and then builds a maze with them,
// retrying rejected attempts from the continuing random stream. Each retry
// shrinks the room area target; the room count and access points stay
// fixed. A partial maze is never returned.
func (g *Generator) Generate() (*core.Maze, error) {
	if err := g.config.Validate(); err != nil {
		return nil, err
	}

	params := g.resolveParams()
	g.params = params

	var lastErr error
	for attempt := 1; attempt <= g.config.MaxGenerationAttempts; attempt++ {
		maze, err := g.attempt(params, attempt)
		if err == nil {
			g.logger.Debug().
				Int("attempt", attempt).
				Int("rooms", params.RoomCount).
				Int("access_points", params.AccessPointsPerRoom).
				Str("start", maze.Start().String()).
				Str("target", maze.Target().String()).
				Msg("Maze generated")
			return maze, nil
		}
		lastErr = err
		g.logger.Debug().Int("attempt", attempt).Err(err).Msg("Generation attempt rejected")
	}

	g.logger.Warn().
		Int("attempts", g.config.MaxGenerationAttempts).
		Int("rooms", params.RoomCount).
		Int("access_points", params.AccessPointsPerRoom).
		Err(lastErr).
		Msg("Maze generation exhausted its attempt budget")
	return nil, fmt.Errorf("%w after %d attempts: %v", ErrGenerationFailed, g.config.MaxGenerationAttempts, lastErr)
}

// resolveParams draws the non-fixed parameters in a fixed order: room count,
// global room ratio, access points per room, room ratio.
func (g *Generator) resolveParams() Params {
	p := Params{
		RoomCount:           g.config.RoomCount.Resolve(g.rng),
		GlobalRoomRatio:     g.config.GlobalRoomRatio.Resolve(g.rng),
		AccessPointsPerRoom: g.config.AccessPointsPerRoom.Resolve(g.rng),
		RoomRatio:           g.config.RoomRatio.Resolve(g.rng),
	}
	if capacity := RoomCapacity(g.config.Rows, g.config.Cols); p.RoomCount > capacity {
		g.logger.Warn().
			Int("requested", p.RoomCount).
			Int("capacity", capacity).
			Msg("Room count exceeds grid capacity, clamping")
		p.RoomCount = capacity
	}
	if limit := accessLimit(g.config.Rows, g.config.Cols, p.AccessPointsPerRoom); p.RoomCount > 0 && p.AccessPointsPerRoom > limit {
		g.logger.Warn().
			Int("requested", p.AccessPointsPerRoom).
			Int("limit", limit).
			Msg("Access points exceed what a room can offer, clamping")
		p.AccessPointsPerRoom = limit
	}
	return p
}

// attempt builds one candidate maze. Later attempts start room placement
// from a smaller area target.
func (g *Generator) attempt(p Params, n int) (*core.Maze, error) {
	grid := core.NewGrid(g.config.Rows, g.config.Cols, core.CellWall)
	if err := g.carveSkeleton(grid); err != nil {
		return nil, err
	}

	rooms, err := g.placeRooms(grid, p, math.Pow(shrinkFactor, float64(n-1)))
	if err != nil {
		return nil, err
	}

	if err := g.repairConnectivity(grid, rooms); err != nil {
		return nil, err
	}

	start, target, err := g.pickEndpoints(grid)
	if err != nil {
		return nil, err
	}

	return core.NewMaze(grid, start, target, rooms)
}

// carveSkeleton runs an iterative randomized depth-first backtracker over
// the odd lattice. Every lattice cell is carved and consecutive cells are
// joined through the wall between them, which yields a spanning tree.
func (g *Generator) carveSkeleton(grid *core.Grid) error {
	lr, lc := latticeSize(grid.Rows()), latticeSize(grid.Cols())
	if lr == 0 || lc == 0 {
		return errLatticeExhausted
	}

	visited := make([]bool, lr*lc)
	cell := func(i int) core.Coordinate {
		return core.Coordinate{Row: 2*(i/lc) + 1, Col: 2*(i%lc) + 1}
	}

	first := g.rng.Intn(lr * lc)
	visited[first] = true
	grid.Set(cell(first), core.CellPath)
	stack := []int{first}

	var options [core.NumActions]int
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		r, c := cur/lc, cur%lc

		n := 0
		for _, d := range core.ActionVectors {
			nr, nc := r+d.Row, c+d.Col
			if nr < 0 || nr >= lr || nc < 0 || nc >= lc || visited[nr*lc+nc] {
				continue
			}
			options[n] = nr*lc + nc
			n++
		}
		if n == 0 {
			stack = stack[:len(stack)-1]
			continue
		}

		next := options[g.rng.Intn(n)]
		visited[next] = true
		from, to := cell(cur), cell(next)
		grid.Set(core.Coordinate{Row: (from.Row + to.Row) / 2, Col: (from.Col + to.Col) / 2}, core.CellPath)
		grid.Set(to, core.CellPath)
		stack = append(stack, next)
	}
	return nil
}

// pickEndpoints performs a double breadth-first sweep: from a random path
// cell to the farthest cell A, then from A to the farthest cell B.
func (g *Generator) pickEndpoints(grid *core.Grid) (start, target core.Coordinate, err error) {
	paths := grid.Find(core.CellPath)
	if len(paths) < 2 {
		return start, target, errTooFewPathCells
	}

	seed := paths[g.rng.Intn(len(paths))]
	a, _, ok := grid.Farthest(grid.Distances(seed))
	if !ok {
		return start, target, errTooFewPathCells
	}
	b, d, ok := grid.Farthest(grid.Distances(a))
	if !ok || d == 0 {
		return start, target, errTooFewPathCells
	}
	return a, b, nil
}
