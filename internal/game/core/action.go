package core

import (
	"fmt"
	"strings"
)

// Action is one of the four cardinal moves. The numeric values are part of
// the public action space: 0=UP, 1=RIGHT, 2=DOWN, 3=LEFT.
type Action int

const (
	ActionUp Action = iota
	ActionRight
	ActionDown
	ActionLeft
)

// NumActions is the size of the discrete action space.
const NumActions = 4

// ActionVectors provides coordinate offsets for each action
var ActionVectors = [NumActions]Coordinate{
	ActionUp:    {Row: -1, Col: 0},
	ActionRight: {Row: 0, Col: 1},
	ActionDown:  {Row: 1, Col: 0},
	ActionLeft:  {Row: 0, Col: -1},
}

// AllActions lists the actions in action-space order.
func AllActions() []Action {
	return []Action{ActionUp, ActionRight, ActionDown, ActionLeft}
}

func (a Action) IsValid() bool {
	return a >= 0 && a < NumActions
}

// Delta returns the unit offset of the action, or the zero offset for
// an invalid action.
func (a Action) Delta() Coordinate {
	if !a.IsValid() {
		return Coordinate{}
	}
	return ActionVectors[a]
}

// Opposite returns the action that undoes a.
func (a Action) Opposite() Action {
	if !a.IsValid() {
		return a
	}
	return (a + 2) % NumActions
}

func (a Action) String() string {
	switch a {
	case ActionUp:
		return "UP"
	case ActionRight:
		return "RIGHT"
	case ActionDown:
		return "DOWN"
	case ActionLeft:
		return "LEFT"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// ParseAction accepts the action names (case-insensitive), their first
// letters, or the numeric action value.
func ParseAction(s string) (Action, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "UP", "U", "0":
		return ActionUp, nil
	case "RIGHT", "R", "1":
		return ActionRight, nil
	case "DOWN", "D", "2":
		return ActionDown, nil
	case "LEFT", "L", "3":
		return ActionLeft, nil
	}
	return 0, fmt.Errorf("parse %q: %w", s, ErrInvalidAction)
}
