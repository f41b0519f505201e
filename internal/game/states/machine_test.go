package states

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game/events"
)

func TestEpisodePhase_String(t *testing.T) {
	tests := []struct {
		phase    EpisodePhase
		expected string
	}{
		{PhaseUninitialized, "Uninitialized"},
		{PhaseReady, "Ready"},
		{PhaseStepping, "Stepping"},
		{PhaseDone, "Done"},
		{PhaseTruncated, "Truncated"},
		{EpisodePhase(99), "Unknown(99)"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.phase.String())
			if tt.phase <= PhaseTruncated {
				assert.Equal(t, tt.phase, ParsePhase(tt.expected))
			}
		})
	}
}

func TestEpisodePhase_Properties(t *testing.T) {
	assert.True(t, PhaseDone.IsTerminal())
	assert.True(t, PhaseTruncated.IsTerminal())
	assert.False(t, PhaseStepping.IsTerminal())

	assert.True(t, PhaseReady.CanReceiveActions())
	assert.True(t, PhaseStepping.CanReceiveActions())
	assert.False(t, PhaseDone.CanReceiveActions())
	assert.False(t, PhaseTruncated.CanReceiveActions())
	assert.False(t, PhaseUninitialized.CanReceiveActions())
}

func TestEpisodePhase_Transitions(t *testing.T) {
	tests := []struct {
		from    EpisodePhase
		allowed []EpisodePhase
	}{
		{PhaseUninitialized, []EpisodePhase{PhaseReady}},
		{PhaseReady, []EpisodePhase{PhaseStepping, PhaseReady}},
		{PhaseStepping, []EpisodePhase{PhaseDone, PhaseTruncated, PhaseReady}},
		{PhaseDone, []EpisodePhase{PhaseReady}},
		{PhaseTruncated, []EpisodePhase{PhaseReady}},
	}

	for _, tt := range tests {
		t.Run(tt.from.String(), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.AllowedTransitions())
			for _, to := range tt.allowed {
				assert.True(t, tt.from.CanTransitionTo(to))
			}
		})
	}

	assert.False(t, PhaseDone.CanTransitionTo(PhaseStepping), "a finished episode needs a reset")
	assert.Empty(t, EpisodePhase(42).AllowedTransitions())
}

func TestStateMachine(t *testing.T) {
	setup := func(maxSteps int) (*StateMachine, *EpisodeContext, *events.EventBus) {
		ctx := NewEpisodeContext("episode-1", maxSteps, zerolog.Nop())
		bus := events.NewEventBus()
		return NewStateMachine(ctx, bus), ctx, bus
	}

	t.Run("NewStateMachine", func(t *testing.T) {
		sm, _, _ := setup(0)
		assert.Equal(t, PhaseUninitialized, sm.CurrentPhase())
		assert.Len(t, sm.states, 4)
	})

	t.Run("Episode lifecycle", func(t *testing.T) {
		sm, ctx, bus := setup(0)
		var published []*events.StateTransitionEvent
		bus.SubscribeFunc(events.TypeStateTransition, func(e events.Event) {
			published = append(published, e.(*events.StateTransitionEvent))
		})

		require.NoError(t, sm.TransitionTo(PhaseReady, "reset"))
		assert.False(t, ctx.StartTime.IsZero())
		ctx.Steps = 3

		require.NoError(t, sm.TransitionTo(PhaseStepping, "first step"))
		require.NoError(t, sm.TransitionTo(PhaseDone, "target reached"))
		assert.False(t, ctx.EndTime.IsZero())
		assert.GreaterOrEqual(t, ctx.GetElapsedTime(), time.Duration(0))

		require.NoError(t, sm.TransitionTo(PhaseReady, "reset"))
		assert.Equal(t, 0, ctx.Steps, "entering Ready clears the step count")
		assert.True(t, ctx.EndTime.IsZero())

		history := sm.GetHistory()
		require.Len(t, history, 4)
		assert.Equal(t, PhaseUninitialized, history[0].From)
		assert.Equal(t, PhaseDone, history[3].From)
		assert.Equal(t, "reset", history[3].Reason)

		require.Len(t, published, 4)
		assert.Equal(t, "Stepping", published[2].FromState)
		assert.Equal(t, "Done", published[2].ToState)
		assert.Equal(t, "episode-1", published[2].EpisodeID())
	})

	t.Run("Invalid transitions", func(t *testing.T) {
		sm, _, _ := setup(0)

		err := sm.TransitionTo(PhaseStepping, "skip reset")
		assert.True(t, errors.Is(err, ErrInvalidTransition))
		assert.Equal(t, PhaseUninitialized, sm.CurrentPhase())

		require.NoError(t, sm.TransitionTo(PhaseReady, "reset"))
		err = sm.TransitionTo(PhaseDone, "skip stepping")
		assert.True(t, errors.Is(err, ErrInvalidTransition))
		assert.False(t, sm.CanTransitionTo(PhaseDone))
		assert.True(t, sm.CanTransitionTo(PhaseStepping))
	})

	t.Run("Truncation requires the step limit", func(t *testing.T) {
		sm, ctx, _ := setup(5)
		require.NoError(t, sm.TransitionTo(PhaseReady, "reset"))
		require.NoError(t, sm.TransitionTo(PhaseStepping, "step"))

		ctx.Steps = 4
		err := sm.TransitionTo(PhaseTruncated, "early")
		assert.Error(t, err)
		assert.Equal(t, PhaseStepping, sm.CurrentPhase())

		ctx.Steps = 5
		require.NoError(t, sm.TransitionTo(PhaseTruncated, "limit"))
		assert.True(t, sm.CurrentPhase().IsTerminal())
	})

	t.Run("Ready requires an episode id", func(t *testing.T) {
		sm, ctx, _ := setup(0)
		ctx.EpisodeID = ""
		assert.Error(t, sm.TransitionTo(PhaseReady, "reset"))
	})

	t.Run("Nil publisher", func(t *testing.T) {
		sm := NewStateMachine(NewEpisodeContext("ep", 0, zerolog.Nop()), nil)
		assert.NoError(t, sm.TransitionTo(PhaseReady, "reset"))
	})
}

type failingState struct{ phase EpisodePhase }

func (s failingState) Phase() EpisodePhase                { return s.phase }
func (s failingState) Enter(ctx *EpisodeContext) error    { return errors.New("enter failed") }
func (s failingState) Exit(ctx *EpisodeContext) error     { return nil }
func (s failingState) Validate(ctx *EpisodeContext) error { return nil }

func TestStateMachine_CustomStates(t *testing.T) {
	sm := NewStateMachine(NewEpisodeContext("ep", 0, zerolog.Nop()), nil)
	sm.RegisterState(failingState{phase: PhaseReady})

	err := sm.TransitionTo(PhaseReady, "reset")
	assert.Error(t, err)
	assert.Equal(t, PhaseUninitialized, sm.CurrentPhase(), "failed enter rolls back")
	assert.Empty(t, sm.GetHistory())
}

func TestStateMachine_HistoryIsBounded(t *testing.T) {
	sm := NewStateMachine(NewEpisodeContext("ep", 0, zerolog.Nop()), nil)
	sm.maxHistorySize = 3
	for i := 0; i < 10; i++ {
		require.NoError(t, sm.TransitionTo(PhaseReady, "reset"))
	}
	assert.Len(t, sm.GetHistory(), 3)
}

func TestEpisodeContext(t *testing.T) {
	ctx := NewEpisodeContext("ep", 10, zerolog.Nop())
	assert.Equal(t, time.Duration(0), ctx.GetElapsedTime())
	assert.False(t, ctx.StepLimitReached())

	ctx.Steps = 10
	assert.True(t, ctx.StepLimitReached())

	ctx.MaxSteps = 0
	assert.False(t, ctx.StepLimitReached(), "zero disables the limit")

	ctx.StartTime = time.Now().Add(-2 * time.Second)
	ctx.EndTime = ctx.StartTime.Add(time.Second)
	assert.Equal(t, time.Second, ctx.GetElapsedTime())
}
