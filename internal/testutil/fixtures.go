package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game/core"
)

// CorridorLayout is a 5x5 maze whose only walk from S to T is
// RIGHT, RIGHT, DOWN, DOWN, LEFT, LEFT.
var CorridorLayout = []string{
	"#####",
	"#S..#",
	"###.#",
	"#T..#",
	"#####",
}

// CorridorSolution walks CorridorLayout from start to target.
var CorridorSolution = []core.Action{
	core.ActionRight, core.ActionRight, core.ActionDown,
	core.ActionDown, core.ActionLeft, core.ActionLeft,
}

// RoomLayout is a 7x7 maze with a 3x3 open area in its lower half.
var RoomLayout = []string{
	"#######",
	"#S....#",
	"#####.#",
	"#...#.#",
	"#.T...#",
	"#...#.#",
	"#######",
}

// CreateTestMaze parses an ASCII layout and fails the test on error
func CreateTestMaze(t testing.TB, lines ...string) *core.Maze {
	t.Helper()
	m, err := core.ParseMaze(lines...)
	require.NoError(t, err)
	return m
}

// CorridorMaze returns the maze of CorridorLayout
func CorridorMaze(t testing.TB) *core.Maze {
	return CreateTestMaze(t, CorridorLayout...)
}

// FixedMazeSource serves the same maze for every seed and records the
// seeds it was asked for. Setting Err makes every request fail.
type FixedMazeSource struct {
	mu    sync.Mutex
	Maze  *core.Maze
	Err   error
	seeds []int64
}

func NewFixedMazeSource(m *core.Maze) *FixedMazeSource {
	return &FixedMazeSource{Maze: m}
}

func (s *FixedMazeSource) CreateMaze(seed int64) (*core.Maze, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seeds = append(s.seeds, seed)
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Maze, nil
}

// SetErr changes the failure returned by later requests
func (s *FixedMazeSource) SetErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Err = err
}

// Seeds returns the seeds requested so far
func (s *FixedMazeSource) Seeds() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int64(nil), s.seeds...)
}
