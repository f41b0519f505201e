package events

import (
	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game/core"
)

// Event type constants
const (
	TypeEpisodeStarted   = "episode.started"
	TypePlayerMoved      = "step.moved"
	TypeWallCollision    = "step.collided"
	TypeTargetReached    = "target.reached"
	TypeEpisodeTruncated = "episode.truncated"
	TypeStateTransition  = "state.transition"
)

// EpisodeStartedEvent is published after a reset generated a fresh maze
type EpisodeStartedEvent struct {
	BaseEvent
	Seed   int64
	Rows   int
	Cols   int
	Start  core.Coordinate
	Target core.Coordinate
	Rooms  int
}

func NewEpisodeStartedEvent(episodeID string, seed int64, maze *core.Maze) *EpisodeStartedEvent {
	return &EpisodeStartedEvent{
		BaseEvent: newBase(TypeEpisodeStarted, episodeID),
		Seed:      seed,
		Rows:      maze.Rows(),
		Cols:      maze.Cols(),
		Start:     maze.Start(),
		Target:    maze.Target(),
		Rooms:     len(maze.Rooms()),
	}
}

// PlayerMovedEvent is published for every accepted move that did not finish the episode
type PlayerMovedEvent struct {
	BaseEvent
	Step   int
	Action core.Action
	From   core.Coordinate
	To     core.Coordinate
	Reward float64
}

func NewPlayerMovedEvent(episodeID string, step int, action core.Action, from, to core.Coordinate, reward float64) *PlayerMovedEvent {
	return &PlayerMovedEvent{
		BaseEvent: newBase(TypePlayerMoved, episodeID),
		Step:      step,
		Action:    action,
		From:      from,
		To:        to,
		Reward:    reward,
	}
}

// WallCollisionEvent is published when a move is rejected by a wall or the grid edge
type WallCollisionEvent struct {
	BaseEvent
	Step      int
	Action    core.Action
	Position  core.Coordinate
	Attempted core.Coordinate
	Reward    float64
}

func NewWallCollisionEvent(episodeID string, step int, action core.Action, pos, attempted core.Coordinate, reward float64) *WallCollisionEvent {
	return &WallCollisionEvent{
		BaseEvent: newBase(TypeWallCollision, episodeID),
		Step:      step,
		Action:    action,
		Position:  pos,
		Attempted: attempted,
		Reward:    reward,
	}
}

// TargetReachedEvent is published when the player enters the target cell
type TargetReachedEvent struct {
	BaseEvent
	Steps      int
	Collisions int
	Return     float64
}

func NewTargetReachedEvent(episodeID string, steps, collisions int, ret float64) *TargetReachedEvent {
	return &TargetReachedEvent{
		BaseEvent:  newBase(TypeTargetReached, episodeID),
		Steps:      steps,
		Collisions: collisions,
		Return:     ret,
	}
}

// EpisodeTruncatedEvent is published when the step limit ends an episode
type EpisodeTruncatedEvent struct {
	BaseEvent
	Steps  int
	Return float64
}

func NewEpisodeTruncatedEvent(episodeID string, steps int, ret float64) *EpisodeTruncatedEvent {
	return &EpisodeTruncatedEvent{
		BaseEvent: newBase(TypeEpisodeTruncated, episodeID),
		Steps:     steps,
		Return:    ret,
	}
}

// StateTransitionEvent is published by the episode state machine
type StateTransitionEvent struct {
	BaseEvent
	FromState string
	ToState   string
	Reason    string
}

func NewStateTransitionEvent(episodeID, from, to, reason string) *StateTransitionEvent {
	return &StateTransitionEvent{
		BaseEvent: newBase(TypeStateTransition, episodeID),
		FromState: from,
		ToState:   to,
		Reason:    reason,
	}
}
