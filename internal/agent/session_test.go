package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game"
	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game/core"
	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/testutil"
)

func TestSessionManualMoves(t *testing.T) {
	env, _ := newEnv(t, testutil.CorridorLayout, 0)
	s := NewSession(env, nil)

	assert.Equal(t, "ready", s.Message())
	_, ok := s.Last()
	assert.False(t, ok)

	_, err := s.Move(core.ActionUp)
	require.NoError(t, err)
	assert.Equal(t, game.MessageInvalidMove, s.Message())
	wall, ok := s.Bumped()
	assert.True(t, ok)
	assert.Equal(t, core.NewCoordinate(0, 1), wall)

	for _, a := range testutil.CorridorSolution {
		_, err = s.Move(a)
		require.NoError(t, err)
	}
	assert.True(t, s.Ended())
	_, ok = s.Bumped()
	assert.False(t, ok)
	assert.Equal(t, 1, s.Solved())
	assert.Equal(t, "target reached in 7 steps", s.Message())
	assert.Equal(t, core.CellPlayer, s.Observation().At(core.NewCoordinate(3, 1)))

	_, err = s.Move(core.ActionUp)
	assert.ErrorIs(t, err, core.ErrEpisodeDone)

	_, _, err = s.Advance()
	assert.ErrorIs(t, err, ErrNoPolicy)
}

func TestSessionAdvanceRestartsEndedEpisodes(t *testing.T) {
	env, _ := newEnv(t, testutil.CorridorLayout, 0)
	s := NewSession(env, NewPlannerPolicy())

	for i := 0; i < len(testutil.CorridorSolution); i++ {
		_, stepped, err := s.Advance()
		require.NoError(t, err)
		assert.True(t, stepped)
	}
	assert.True(t, s.Ended())
	assert.Equal(t, 1, s.Episodes())

	_, stepped, err := s.Advance()
	require.NoError(t, err)
	assert.False(t, stepped, "an ended episode is reset instead of stepped")
	assert.False(t, s.Ended())
	assert.Equal(t, 2, s.Episodes())
	assert.Equal(t, int64(2), s.Stats().Seed)
	assert.Equal(t, "ready", s.Message())
	assert.Contains(t, s.Status(), "solved 1/2")
	assert.Contains(t, s.Status(), "agent planner")
}

func TestSessionTruncationMessage(t *testing.T) {
	env, _ := newEnv(t, testutil.CorridorLayout, 2)
	s := NewSession(env, nil)

	_, err := s.Move(core.ActionUp)
	require.NoError(t, err)
	res, err := s.Move(core.ActionUp)
	require.NoError(t, err)
	assert.True(t, res.Truncated)
	assert.Equal(t, "truncated after 2 steps", s.Message())
}

func TestRuneCommand(t *testing.T) {
	tests := []struct {
		r        rune
		expected Command
	}{
		{'w', Move(core.ActionUp)},
		{'K', Move(core.ActionUp)},
		{'d', Move(core.ActionRight)},
		{'l', Move(core.ActionRight)},
		{'s', Move(core.ActionDown)},
		{'j', Move(core.ActionDown)},
		{'A', Move(core.ActionLeft)},
		{'h', Move(core.ActionLeft)},
		{'r', Command{Kind: CommandReset}},
		{'p', Command{Kind: CommandToggleAgent}},
		{'Q', Command{Kind: CommandQuit}},
		{'x', Command{}},
		{' ', Command{}},
	}

	for _, tt := range tests {
		t.Run(string(tt.r), func(t *testing.T) {
			assert.Equal(t, tt.expected, RuneCommand(tt.r))
		})
	}
}
