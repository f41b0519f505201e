package core

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	ErrInvalidAction      = errors.New("invalid action")
	ErrEpisodeDone        = errors.New("episode is done")
	ErrNotPath            = errors.New("cell is not a path")
	ErrSameStartTarget    = errors.New("start and target coincide")
	ErrDisconnected       = errors.New("maze is not connected")
	ErrInvalidDimensions  = errors.New("invalid grid dimensions")
	ErrMalformedLayout    = errors.New("malformed maze layout")
)

// WrapActionError attaches the offending action to err so that callers can
// still match the sentinel with errors.Is.
func WrapActionError(action Action, err error) error {
	if err == nil {
		return nil
	}
	if action.IsValid() {
		return fmt.Errorf("action %s: %w", action, err)
	}
	return fmt.Errorf("action %d: %w", int(action), err)
}
