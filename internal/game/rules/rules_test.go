package rules

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game/core"
)

func corridorMaze(t *testing.T) *core.Maze {
	t.Helper()
	m, err := core.ParseMaze(
		"#####",
		"#S..#",
		"###.#",
		"#T..#",
		"#####",
	)
	require.NoError(t, err)
	return m
}

func TestLegalActionMask(t *testing.T) {
	m := corridorMaze(t)
	lmc := NewLegalMoveCalculator()

	tests := []struct {
		name string
		pos  core.Coordinate
		want []bool
	}{
		{"start", core.NewCoordinate(1, 1), []bool{false, true, false, false}},
		{"corner", core.NewCoordinate(1, 3), []bool{false, false, true, true}},
		{"vertical", core.NewCoordinate(2, 3), []bool{true, false, true, false}},
		{"outside", core.NewCoordinate(-1, 0), []bool{false, false, false, false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, lmc.GetLegalActionMask(m, tt.pos))
		})
	}

	assert.Equal(t, []core.Action{core.ActionDown, core.ActionLeft}, lmc.GetLegalActions(m, core.NewCoordinate(1, 3)))
	assert.Equal(t, lmc.GetLegalActionMask(m, m.Start()), LegalActionMask(m, m.Start()))
	assert.Len(t, LegalActionMask(nil, m.Start()), core.NumActions)
}

func TestObservationActionMask(t *testing.T) {
	m := corridorMaze(t)
	lmc := NewLegalMoveCalculator()

	for _, pos := range []core.Coordinate{m.Start(), core.NewCoordinate(1, 3), core.NewCoordinate(3, 2)} {
		assert.Equal(t, lmc.GetLegalActionMask(m, pos), lmc.GetObservationActionMask(m.Observation(pos)), "at %s", pos)
	}
	assert.Equal(t, []bool{false, false, false, false}, lmc.GetObservationActionMask(m.Grid()))
	assert.Equal(t, []bool{false, false, false, false}, lmc.GetObservationActionMask(nil))
}

func TestShortestPath(t *testing.T) {
	m := corridorMaze(t)

	path, err := ShortestPath(m, m.Start(), m.Target())
	require.NoError(t, err)
	assert.Equal(t, []core.Action{
		core.ActionRight, core.ActionRight, core.ActionDown,
		core.ActionDown, core.ActionLeft, core.ActionLeft,
	}, path)
	assert.Equal(t, 6, Distance(m, m.Start(), m.Target()))

	pos := m.Start()
	for _, a := range path {
		pos = pos.Move(a)
		assert.True(t, m.IsWalkable(pos))
	}
	assert.Equal(t, m.Target(), pos)
}

func TestShortestPathPrefersActionOrder(t *testing.T) {
	m, err := core.ParseMaze(
		"####",
		"#S.#",
		"#.T#",
		"####",
	)
	require.NoError(t, err)

	path, err := ShortestPath(m, m.Start(), m.Target())
	require.NoError(t, err)
	assert.Equal(t, []core.Action{core.ActionRight, core.ActionDown}, path)
}

func TestShortestPathSameCell(t *testing.T) {
	m := corridorMaze(t)
	path, err := ShortestPath(m, m.Start(), m.Start())
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, 0, Distance(m, m.Start(), m.Start()))
}

func TestShortestPathErrors(t *testing.T) {
	m := corridorMaze(t)
	wall := core.NewCoordinate(0, 0)

	_, err := ShortestPath(m, wall, m.Target())
	assert.ErrorIs(t, err, ErrNoPath)

	_, err = ShortestPath(m, m.Start(), core.NewCoordinate(9, 9))
	assert.ErrorIs(t, err, ErrNoPath)

	_, err = ShortestPath(nil, m.Start(), m.Target())
	assert.ErrorIs(t, err, ErrNoPath)

	assert.Equal(t, -1, Distance(m, wall, m.Target()))
}

func TestTerminationChecker(t *testing.T) {
	m := corridorMaze(t)

	unlimited := NewTerminationChecker(zerolog.Nop(), 0)
	done, truncated := unlimited.Check(m, m.Start(), 1_000_000)
	assert.False(t, done)
	assert.False(t, truncated)

	done, truncated = unlimited.Check(m, m.Target(), 6)
	assert.True(t, done)
	assert.False(t, truncated)

	limited := NewTerminationChecker(zerolog.Nop(), 3)
	assert.Equal(t, 3, limited.MaxSteps())

	done, truncated = limited.Check(m, m.Start(), 2)
	assert.False(t, done)
	assert.False(t, truncated)

	done, truncated = limited.Check(m, m.Start(), 3)
	assert.False(t, done)
	assert.True(t, truncated)

	done, truncated = limited.Check(m, m.Target(), 3)
	assert.True(t, done, "reaching the target wins over the step limit")
	assert.False(t, truncated)
}
