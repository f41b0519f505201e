package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game"
	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game/core"
	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/testutil"
)

func newEnv(t *testing.T, layout []string, maxSteps int) (*game.Env, *core.Grid) {
	t.Helper()
	cfg := game.DefaultEnvConfig(len(layout), len(layout[0]))
	cfg.MazeSource = testutil.NewFixedMazeSource(testutil.CreateTestMaze(t, layout...))
	cfg.Seed = game.Seed(1)
	cfg.MaxEpisodeSteps = maxSteps
	env, err := game.NewEnv(context.Background(), cfg)
	require.NoError(t, err)
	return env, env.Observation()
}

func TestPlannerSolvesCorridor(t *testing.T) {
	env, obs := newEnv(t, testutil.CorridorLayout, 0)

	var actions []core.Action
	summary, err := Run(context.Background(), env, NewPlannerPolicy(), obs, 0, func(a core.Action, _ game.StepResult) {
		actions = append(actions, a)
	})
	require.NoError(t, err)

	assert.Equal(t, testutil.CorridorSolution, actions)
	assert.True(t, summary.Done)
	assert.Equal(t, 6, summary.Steps)
	assert.Zero(t, summary.Collisions)
	assert.InDelta(t, 5*-0.01+10, summary.Return, 1e-9)
}

func TestPlannerSolvesRoom(t *testing.T) {
	env, obs := newEnv(t, testutil.RoomLayout, 0)
	summary, err := Run(context.Background(), env, NewPlannerPolicy(), obs, 0, nil)
	require.NoError(t, err)
	assert.True(t, summary.Done)
	assert.Equal(t, env.Stats().OptimalSteps, summary.Steps)
}

func TestPlannerSolvesGeneratedMazes(t *testing.T) {
	for seed := int64(0); seed < 5; seed++ {
		cfg := game.DefaultEnvConfig(21, 21)
		cfg.Seed = game.Seed(seed)
		env, err := game.NewEnv(context.Background(), cfg)
		require.NoError(t, err)

		summary, err := Run(context.Background(), env, NewPlannerPolicy(), env.Observation(), 0, nil)
		require.NoError(t, err)
		assert.True(t, summary.Done, "seed %d", seed)
		assert.InDelta(t, 1.0, env.Stats().Efficiency(), 1e-9)
	}
}

func TestPlannerErrors(t *testing.T) {
	m := testutil.CorridorMaze(t)
	_, err := NewPlannerPolicy().Act(m.Grid())
	assert.ErrorIs(t, err, ErrNoPlan)
}

func TestLegalRandomPolicyNeverCollides(t *testing.T) {
	env, obs := newEnv(t, testutil.RoomLayout, 200)
	policy := NewRandomPolicy(testutil.NewTestRNG(testutil.DefaultSeed), true)

	summary, err := Run(context.Background(), env, policy, obs, 0, nil)
	require.NoError(t, err)
	assert.Zero(t, summary.Collisions)
	assert.True(t, summary.Done || summary.Truncated)
}

func TestRandomPolicyIsSeeded(t *testing.T) {
	m := testutil.CorridorMaze(t)
	obs := m.Observation(m.Start())
	a := NewRandomPolicy(testutil.NewTestRNG(3), false)
	b := NewRandomPolicy(testutil.NewTestRNG(3), false)
	for i := 0; i < 20; i++ {
		x, err := a.Act(obs)
		require.NoError(t, err)
		y, err := b.Act(obs)
		require.NoError(t, err)
		assert.Equal(t, x, y)
		assert.True(t, x.IsValid())
	}
}

func TestRunStopsAtMaxSteps(t *testing.T) {
	env, obs := newEnv(t, testutil.RoomLayout, 0)
	policy := NewRandomPolicy(testutil.NewTestRNG(1), false)
	summary, err := Run(context.Background(), env, policy, obs, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Steps)
}

func TestRunHonoursContext(t *testing.T) {
	env, obs := newEnv(t, testutil.CorridorLayout, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, env, NewPlannerPolicy(), obs, 0, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParsePolicy(t *testing.T) {
	rng := testutil.NewTestRNG(1)
	for name, want := range map[string]string{
		"random":   "random",
		"Legal":    "legal",
		"planner":  "planner",
		"shortest": "planner",
	} {
		p, err := ParsePolicy(name, rng)
		require.NoError(t, err)
		assert.Equal(t, want, p.Name())
	}
	_, err := ParsePolicy("dqn", rng)
	assert.ErrorIs(t, err, ErrUnknownPolicy)
}
