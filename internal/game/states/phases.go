package states

import "fmt"

// EpisodePhase represents the current phase of an episode
type EpisodePhase int

const (
	// PhaseUninitialized - environment created, no maze yet
	PhaseUninitialized EpisodePhase = iota

	// PhaseReady - maze generated, player at start, no step taken
	PhaseReady

	// PhaseStepping - at least one step taken, target not reached
	PhaseStepping

	// PhaseDone - player reached the target
	PhaseDone

	// PhaseTruncated - step limit reached before the target
	PhaseTruncated
)

// String returns the string representation of an EpisodePhase
func (p EpisodePhase) String() string {
	switch p {
	case PhaseUninitialized:
		return "Uninitialized"
	case PhaseReady:
		return "Ready"
	case PhaseStepping:
		return "Stepping"
	case PhaseDone:
		return "Done"
	case PhaseTruncated:
		return "Truncated"
	default:
		return fmt.Sprintf("Unknown(%d)", p)
	}
}

// IsTerminal returns true if the phase only accepts a reset
func (p EpisodePhase) IsTerminal() bool {
	return p == PhaseDone || p == PhaseTruncated
}

// CanReceiveActions returns true if the episode can process steps in this phase
func (p EpisodePhase) CanReceiveActions() bool {
	return p == PhaseReady || p == PhaseStepping
}

// AllowedTransitions returns the valid phases this phase can transition to
func (p EpisodePhase) AllowedTransitions() []EpisodePhase {
	switch p {
	case PhaseUninitialized:
		return []EpisodePhase{PhaseReady}
	case PhaseReady:
		return []EpisodePhase{PhaseStepping, PhaseReady}
	case PhaseStepping:
		return []EpisodePhase{PhaseDone, PhaseTruncated, PhaseReady}
	case PhaseDone:
		return []EpisodePhase{PhaseReady}
	case PhaseTruncated:
		return []EpisodePhase{PhaseReady}
	default:
		return []EpisodePhase{}
	}
}

// CanTransitionTo checks if a transition from this phase to the target phase is allowed
func (p EpisodePhase) CanTransitionTo(target EpisodePhase) bool {
	for _, phase := range p.AllowedTransitions() {
		if phase == target {
			return true
		}
	}
	return false
}

// ParsePhase converts a string to an EpisodePhase
func ParsePhase(s string) EpisodePhase {
	switch s {
	case "Ready":
		return PhaseReady
	case "Stepping":
		return PhaseStepping
	case "Done":
		return PhaseDone
	case "Truncated":
		return PhaseTruncated
	default:
		return PhaseUninitialized
	}
}
