package game

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game/core"
	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game/events"
	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game/mapgen"
	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game/rules"
	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game/states"
	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/testutil"
)

func newStubEnv(t *testing.T, seed int64) (*Env, *testutil.FixedMazeSource) {
	t.Helper()
	src := testutil.NewFixedMazeSource(testutil.CorridorMaze(t))
	cfg := DefaultEnvConfig(5, 5)
	cfg.MazeSource = src
	cfg.Seed = Seed(seed)
	env, err := NewEnv(context.Background(), cfg)
	require.NoError(t, err)
	return env, src
}

func corridorOnlyConfig(rows, cols int, seed int64) EnvConfig {
	cfg := DefaultEnvConfig(rows, cols)
	cfg.Maze.RoomCount = mapgen.FixedInt(0)
	cfg.Seed = Seed(seed)
	return cfg
}

func TestNewEnv(t *testing.T) {
	cfg := DefaultEnvConfig(21, 21)
	cfg.Seed = Seed(7)
	env, err := NewEnv(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, states.PhaseReady, env.Phase())
	assert.Equal(t, int64(7), env.Seed())
	assert.NotEmpty(t, env.EpisodeID())
	assert.Equal(t, env.Maze().Start(), env.Position())

	obs := env.Observation()
	assert.True(t, env.ObservationSpace().Contains(obs))
	assert.Equal(t, []int{21, 21}, env.ObservationSpace().Shape())
	assert.Equal(t, 4, env.ActionSpace().N)
	assert.Equal(t, 1, obs.Count(core.CellPlayer))
	assert.Equal(t, 1, obs.Count(core.CellTarget))
	assert.Equal(t, 0, obs.Count(core.CellStart), "player covers the start")
	assert.Equal(t, core.CellPlayer, obs.At(env.Maze().Start()))
}

func TestNewEnvDrawsSeed(t *testing.T) {
	cfg := corridorOnlyConfig(9, 9, 0)
	cfg.Seed = nil
	env, err := NewEnv(context.Background(), cfg)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, env.Seed(), int64(0))
	assert.Less(t, env.Seed(), int64(maxDrawnSeed))
}

func TestNewEnvErrors(t *testing.T) {
	t.Run("invalid maze config", func(t *testing.T) {
		cfg := DefaultEnvConfig(2, 9)
		_, err := NewEnv(context.Background(), cfg)
		assert.ErrorIs(t, err, mapgen.ErrInvalidConfig)
	})

	t.Run("negative step limit", func(t *testing.T) {
		cfg := DefaultEnvConfig(9, 9)
		cfg.MaxEpisodeSteps = -1
		_, err := NewEnv(context.Background(), cfg)
		assert.ErrorIs(t, err, mapgen.ErrInvalidConfig)
	})

	t.Run("generation failure", func(t *testing.T) {
		cfg := DefaultEnvConfig(9, 9)
		cfg.MazeSource = &testutil.FixedMazeSource{Err: mapgen.ErrGenerationFailed}
		_, err := NewEnv(context.Background(), cfg)
		assert.ErrorIs(t, err, mapgen.ErrGenerationFailed)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewEnv(ctx, DefaultEnvConfig(9, 9))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestCorridorMazeCollisionFromStart(t *testing.T) {
	env, err := NewEnv(context.Background(), corridorOnlyConfig(5, 5, 42))
	require.NoError(t, err)

	m := env.Maze()
	paths := m.PathCount()
	edges := 0
	g := m.Grid()
	for _, c := range g.Find(core.CellPath) {
		if g.At(c.Move(core.ActionRight)) == core.CellPath {
			edges++
		}
		if g.At(c.Move(core.ActionDown)) == core.CellPath {
			edges++
		}
	}
	assert.Equal(t, paths-1, edges, "a corridor-only maze is a tree")

	blocked := core.Action(-1)
	for _, a := range core.AllActions() {
		if !m.IsWalkable(m.Start().Move(a)) {
			blocked = a
			break
		}
	}
	require.True(t, blocked.IsValid(), "the start of a 5x5 corridor maze has a wall neighbour")

	before := env.Observation()
	res, err := env.Step(blocked)
	require.NoError(t, err)

	assert.Equal(t, DefaultRewardSchema().WallCollision, res.Reward)
	assert.False(t, res.Done)
	assert.False(t, res.Truncated)
	assert.True(t, before.Equal(res.Observation), "collision leaves the observation unchanged")
	assert.Equal(t, m.Start(), env.Position())
	assert.Equal(t, OutcomeCollision, res.Info.Outcome)
	assert.Equal(t, MessageInvalidMove, res.Info.Message)
	assert.Equal(t, states.PhaseStepping, env.Phase())
}

func TestShortestPathWalk(t *testing.T) {
	for _, seed := range []int64{1, 2, 3, 42} {
		cfg := DefaultEnvConfig(15, 21)
		cfg.Seed = Seed(seed)
		env, err := NewEnv(context.Background(), cfg)
		require.NoError(t, err)

		path, err := rules.ShortestPath(env.Maze(), env.Position(), env.Maze().Target())
		require.NoError(t, err)
		require.NotEmpty(t, path)

		rewards := env.Rewards()
		for i, a := range path {
			res, err := env.Step(a)
			require.NoError(t, err)
			if i < len(path)-1 {
				assert.Equal(t, rewards.Neutral, res.Reward, "seed %d step %d", seed, i)
				assert.False(t, res.Done)
				assert.Equal(t, core.CellPlayer, res.Observation.At(env.Position()))
			} else {
				assert.Equal(t, rewards.TargetReached, res.Reward)
				assert.True(t, res.Done)
				assert.Equal(t, MessageTargetReached, res.Info.Message)
				assert.Equal(t, OutcomeTargetReached, res.Info.Outcome)
			}
		}

		stats := env.Stats()
		assert.True(t, stats.Solved)
		assert.Equal(t, len(path), stats.Steps)
		assert.Equal(t, len(path), stats.OptimalSteps)
		assert.InDelta(t, 1.0, stats.Efficiency(), 1e-9)
		assert.InDelta(t, float64(len(path)-1)*rewards.Neutral+rewards.TargetReached, stats.Return, 1e-9)
	}
}

func TestStepAfterDone(t *testing.T) {
	env, _ := newStubEnv(t, 1)
	for _, a := range testutil.CorridorSolution {
		_, err := env.Step(a)
		require.NoError(t, err)
	}
	assert.Equal(t, states.PhaseDone, env.Phase())
	assert.True(t, env.IsDone())

	_, err := env.Step(core.ActionUp)
	assert.ErrorIs(t, err, core.ErrEpisodeDone)
	assert.Equal(t, env.Maze().Target(), env.Position())

	_, err = env.Reset(nil)
	require.NoError(t, err)
	assert.Equal(t, states.PhaseReady, env.Phase())
	assert.Equal(t, env.Maze().Start(), env.Position())
	assert.Zero(t, env.Stats().Steps)
}

func TestInvalidAction(t *testing.T) {
	env, _ := newStubEnv(t, 1)
	for _, a := range []core.Action{-1, 4, 99} {
		_, err := env.Step(a)
		assert.ErrorIs(t, err, core.ErrInvalidAction)
	}
	assert.Equal(t, states.PhaseReady, env.Phase(), "rejected actions do not start the episode")
	assert.Zero(t, env.Stats().Steps)
}

func TestRewardNeutrality(t *testing.T) {
	src := testutil.NewFixedMazeSource(testutil.CorridorMaze(t))
	cfg := DefaultEnvConfig(5, 5)
	cfg.MazeSource = src
	cfg.Seed = Seed(1)
	cfg.Rewards = RewardSchema{Neutral: 0, WallCollision: -5, TargetReached: 1}
	env, err := NewEnv(context.Background(), cfg)
	require.NoError(t, err)

	res, err := env.Step(core.ActionUp)
	require.NoError(t, err)
	assert.Equal(t, -5.0, res.Reward)

	for _, a := range testutil.CorridorSolution[:len(testutil.CorridorSolution)-1] {
		res, err = env.Step(a)
		require.NoError(t, err)
		assert.Equal(t, 0.0, res.Reward)
		assert.Empty(t, res.Info.Message)
	}
	res, err = env.Step(testutil.CorridorSolution[len(testutil.CorridorSolution)-1])
	require.NoError(t, err)
	assert.Equal(t, 1.0, res.Reward)
	assert.Equal(t, 7, res.Info.Steps)
}

func TestResetSeedPolicy(t *testing.T) {
	env, src := newStubEnv(t, 10)

	_, err := env.Reset(nil)
	require.NoError(t, err)
	_, err = env.Reset(Seed(100))
	require.NoError(t, err)
	_, err = env.Reset(nil)
	require.NoError(t, err)

	assert.Equal(t, []int64{10, 11, 100, 101}, src.Seeds())
	assert.Equal(t, int64(101), env.Seed())
}

func TestResetIsDeterministic(t *testing.T) {
	env, err := NewEnv(context.Background(), DefaultEnvConfig(15, 15))
	require.NoError(t, err)

	first, err := env.Reset(Seed(5))
	require.NoError(t, err)
	firstMaze := env.Maze()

	_, err = env.Reset(nil)
	require.NoError(t, err)

	second, err := env.Reset(Seed(5))
	require.NoError(t, err)
	assert.True(t, first.Equal(second))
	assert.True(t, firstMaze.Equal(env.Maze()))
}

func TestResetFailureKeepsEpisode(t *testing.T) {
	env, src := newStubEnv(t, 3)
	_, err := env.Step(core.ActionRight)
	require.NoError(t, err)

	episodeID := env.EpisodeID()
	pos := env.Position()
	obs := env.Observation()

	src.SetErr(mapgen.ErrGenerationFailed)
	_, err = env.Reset(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, mapgen.ErrGenerationFailed)

	assert.Equal(t, episodeID, env.EpisodeID())
	assert.Equal(t, pos, env.Position())
	assert.True(t, obs.Equal(env.Observation()))
	assert.Equal(t, int64(3), env.Seed())
	assert.Equal(t, states.PhaseStepping, env.Phase())

	src.SetErr(nil)
	_, err = env.Reset(nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 4, 5}, src.Seeds(), "the failed seed is skipped")
}

func TestTruncation(t *testing.T) {
	src := testutil.NewFixedMazeSource(testutil.CorridorMaze(t))
	cfg := DefaultEnvConfig(5, 5)
	cfg.MazeSource = src
	cfg.Seed = Seed(1)
	cfg.MaxEpisodeSteps = 2
	env, err := NewEnv(context.Background(), cfg)
	require.NoError(t, err)

	res, err := env.Step(core.ActionRight)
	require.NoError(t, err)
	assert.False(t, res.Truncated)

	res, err = env.Step(core.ActionUp)
	require.NoError(t, err)
	assert.True(t, res.Truncated)
	assert.False(t, res.Done)
	assert.Equal(t, OutcomeCollision, res.Info.Outcome)
	assert.Equal(t, states.PhaseTruncated, env.Phase())
	assert.True(t, env.Stats().Truncated)

	_, err = env.Step(core.ActionRight)
	assert.ErrorIs(t, err, core.ErrEpisodeDone)

	_, err = env.Reset(nil)
	require.NoError(t, err)
	assert.Equal(t, states.PhaseReady, env.Phase())
}

func TestEventsPublished(t *testing.T) {
	bus := events.NewEventBus()
	bus.SetLogger(zerolog.Nop())
	counts := make(map[string]int)
	for _, typ := range []string{
		events.TypeEpisodeStarted,
		events.TypePlayerMoved,
		events.TypeWallCollision,
		events.TypeTargetReached,
		events.TypeStateTransition,
	} {
		typ := typ
		bus.SubscribeFunc(typ, func(events.Event) { counts[typ]++ })
	}

	src := testutil.NewFixedMazeSource(testutil.CorridorMaze(t))
	cfg := DefaultEnvConfig(5, 5)
	cfg.MazeSource = src
	cfg.Seed = Seed(1)
	cfg.EventBus = bus
	env, err := NewEnv(context.Background(), cfg)
	require.NoError(t, err)

	_, err = env.Step(core.ActionUp)
	require.NoError(t, err)
	for _, a := range testutil.CorridorSolution {
		_, err = env.Step(a)
		require.NoError(t, err)
	}

	assert.Equal(t, 1, counts[events.TypeEpisodeStarted])
	assert.Equal(t, 6, counts[events.TypePlayerMoved])
	assert.Equal(t, 1, counts[events.TypeWallCollision])
	assert.Equal(t, 1, counts[events.TypeTargetReached])
	// Uninitialized->Ready, Ready->Stepping, Stepping->Done
	assert.Equal(t, 3, counts[events.TypeStateTransition])
	assert.Len(t, env.History(), 3)
}

type recordingCollector struct {
	steps     []StepResult
	prevObs   []*core.Grid
	actions   []core.Action
	episodes  []EpisodeStats
	abandoned []string
}

func (c *recordingCollector) OnStep(episodeID string, prevObs *core.Grid, action core.Action, result StepResult) {
	c.prevObs = append(c.prevObs, prevObs)
	c.actions = append(c.actions, action)
	c.steps = append(c.steps, result)
}

func (c *recordingCollector) OnEpisodeEnd(stats EpisodeStats) {
	c.episodes = append(c.episodes, stats)
}

func (c *recordingCollector) OnEpisodeAbandoned(episodeID string) {
	c.abandoned = append(c.abandoned, episodeID)
}

func TestExperienceCollectorHooks(t *testing.T) {
	collector := &recordingCollector{}
	cfg := DefaultEnvConfig(5, 5)
	cfg.MazeSource = testutil.NewFixedMazeSource(testutil.CorridorMaze(t))
	cfg.Seed = Seed(1)
	cfg.ExperienceCollector = collector
	env, err := NewEnv(context.Background(), cfg)
	require.NoError(t, err)

	initial := env.Observation()
	for _, a := range testutil.CorridorSolution {
		_, err = env.Step(a)
		require.NoError(t, err)
	}

	require.Len(t, collector.steps, len(testutil.CorridorSolution))
	assert.True(t, initial.Equal(collector.prevObs[0]))
	assert.True(t, collector.steps[0].Observation.Equal(collector.prevObs[1]))
	assert.Equal(t, testutil.CorridorSolution, collector.actions)
	require.Len(t, collector.episodes, 1)
	assert.True(t, collector.episodes[0].Solved)
	assert.Equal(t, env.EpisodeID(), collector.episodes[0].EpisodeID)
}

func TestResetReportsAbandonedEpisode(t *testing.T) {
	collector := &recordingCollector{}
	cfg := DefaultEnvConfig(5, 5)
	cfg.MazeSource = testutil.NewFixedMazeSource(testutil.CorridorMaze(t))
	cfg.Seed = Seed(1)
	cfg.ExperienceCollector = collector
	env, err := NewEnv(context.Background(), cfg)
	require.NoError(t, err)

	// No steps taken: nothing to report.
	_, err = env.Reset(nil)
	require.NoError(t, err)
	assert.Empty(t, collector.abandoned)

	first := env.EpisodeID()
	_, err = env.Step(testutil.CorridorSolution[0])
	require.NoError(t, err)
	_, err = env.Reset(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{first}, collector.abandoned)

	// A finished episode goes through OnEpisodeEnd only.
	for _, a := range testutil.CorridorSolution {
		_, err = env.Step(a)
		require.NoError(t, err)
	}
	_, err = env.Reset(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{first}, collector.abandoned)
	assert.Len(t, collector.episodes, 1)
}

func TestSampleActionIsSeeded(t *testing.T) {
	a, _ := newStubEnv(t, 9)
	b, _ := newStubEnv(t, 9)
	for i := 0; i < 32; i++ {
		x := a.SampleAction()
		assert.True(t, x.IsValid())
		assert.Equal(t, x, b.SampleAction())
	}
}

func TestLegalActionMask(t *testing.T) {
	env, _ := newStubEnv(t, 1)
	assert.Equal(t, []bool{false, true, false, false}, env.LegalActionMask())

	rng := testutil.NewTestRNG(testutil.DefaultSeed)
	for i := 0; i < 50 && !env.IsDone(); i++ {
		var legal []core.Action
		for a, ok := range env.LegalActionMask() {
			if ok {
				legal = append(legal, core.Action(a))
			}
		}
		require.NotEmpty(t, legal)
		res, err := env.Step(legal[rng.Intn(len(legal))])
		require.NoError(t, err)
		assert.NotEqual(t, OutcomeCollision, res.Info.Outcome)
	}
}

func TestInfoMap(t *testing.T) {
	info := Info{Outcome: OutcomeCollision, Message: MessageInvalidMove, Position: core.NewCoordinate(2, 3), Steps: 4}
	m := info.Map()
	assert.Equal(t, "collision", m["outcome"])
	assert.Equal(t, MessageInvalidMove, m["message"])
	assert.Equal(t, []interface{}{2, 3}, m["position"])
	assert.Equal(t, 4, m["steps"])

	_, hasMessage := Info{Outcome: OutcomeMoved}.Map()["message"]
	assert.False(t, hasMessage)

	for _, o := range []Outcome{OutcomeMoved, OutcomeCollision, OutcomeTargetReached} {
		parsed, ok := ParseOutcome(o.String())
		assert.True(t, ok)
		assert.Equal(t, o, parsed)
	}
	_, ok := ParseOutcome("teleported")
	assert.False(t, ok)
}

func TestEnvConfigValidate(t *testing.T) {
	cfg := DefaultEnvConfig(9, 9)
	require.NoError(t, cfg.Validate())

	cfg.Rewards.Neutral = math.NaN()
	assert.True(t, errors.Is(cfg.Validate(), mapgen.ErrInvalidConfig))
}
