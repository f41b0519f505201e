package states

import (
	"time"

	"github.com/rs/zerolog"
)

// EpisodeContext provides episode information to states for making decisions
type EpisodeContext struct {
	// EpisodeID uniquely identifies the current episode
	EpisodeID string

	// Seed that generated the current maze
	Seed int64

	// Logger for state-specific logging
	Logger zerolog.Logger

	// Steps taken in the current episode
	Steps int

	// MaxSteps truncates the episode when positive
	MaxSteps int

	// StartTime is when the episode entered PhaseReady
	StartTime time.Time

	// EndTime is when the episode entered a terminal phase
	EndTime time.Time
}

// NewEpisodeContext creates a new episode context
func NewEpisodeContext(episodeID string, maxSteps int, logger zerolog.Logger) *EpisodeContext {
	return &EpisodeContext{
		EpisodeID: episodeID,
		MaxSteps:  maxSteps,
		Logger:    logger,
	}
}

// StepLimitReached reports whether a positive step limit has been hit
func (ec *EpisodeContext) StepLimitReached() bool {
	return ec.MaxSteps > 0 && ec.Steps >= ec.MaxSteps
}

// GetElapsedTime returns the wall time spent in the episode so far
func (ec *EpisodeContext) GetElapsedTime() time.Duration {
	if ec.StartTime.IsZero() {
		return 0
	}
	if !ec.EndTime.IsZero() {
		return ec.EndTime.Sub(ec.StartTime)
	}
	return time.Since(ec.StartTime)
}
