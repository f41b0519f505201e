package states

import (
	"fmt"
	"time"
)

// ReadyState is entered on every reset
type ReadyState struct{}

func NewReadyState() State { return &ReadyState{} }

func (s *ReadyState) Phase() EpisodePhase { return PhaseReady }

func (s *ReadyState) Enter(ctx *EpisodeContext) error {
	ctx.Steps = 0
	ctx.StartTime = time.Now()
	ctx.EndTime = time.Time{}
	ctx.Logger.Debug().Int64("seed", ctx.Seed).Msg("Episode ready")
	return nil
}

func (s *ReadyState) Exit(ctx *EpisodeContext) error { return nil }

func (s *ReadyState) Validate(ctx *EpisodeContext) error {
	if ctx.EpisodeID == "" {
		return fmt.Errorf("episode id is required")
	}
	return nil
}

// SteppingState covers an episode in progress
type SteppingState struct{}

func NewSteppingState() State { return &SteppingState{} }

func (s *SteppingState) Phase() EpisodePhase                { return PhaseStepping }
func (s *SteppingState) Enter(ctx *EpisodeContext) error    { return nil }
func (s *SteppingState) Exit(ctx *EpisodeContext) error     { return nil }
func (s *SteppingState) Validate(ctx *EpisodeContext) error { return nil }

// DoneState is entered when the player reaches the target
type DoneState struct{}

func NewDoneState() State { return &DoneState{} }

func (s *DoneState) Phase() EpisodePhase { return PhaseDone }

func (s *DoneState) Enter(ctx *EpisodeContext) error {
	ctx.EndTime = time.Now()
	ctx.Logger.Debug().
		Int("steps", ctx.Steps).
		Dur("elapsed", ctx.GetElapsedTime()).
		Msg("Episode finished")
	return nil
}

func (s *DoneState) Exit(ctx *EpisodeContext) error     { return nil }
func (s *DoneState) Validate(ctx *EpisodeContext) error { return nil }

// TruncatedState is entered when the step limit ends the episode
type TruncatedState struct{}

func NewTruncatedState() State { return &TruncatedState{} }

func (s *TruncatedState) Phase() EpisodePhase { return PhaseTruncated }

func (s *TruncatedState) Enter(ctx *EpisodeContext) error {
	ctx.EndTime = time.Now()
	ctx.Logger.Debug().Int("steps", ctx.Steps).Msg("Episode truncated")
	return nil
}

func (s *TruncatedState) Exit(ctx *EpisodeContext) error { return nil }

func (s *TruncatedState) Validate(ctx *EpisodeContext) error {
	if !ctx.StepLimitReached() {
		return fmt.Errorf("step limit not reached: %d of %d", ctx.Steps, ctx.MaxSteps)
	}
	return nil
}
