package mapgen

import "errors"

var (
	// ErrInvalidConfig is returned eagerly when a configuration can never
	// produce a maze. The wrapping message names the offending field.
	ErrInvalidConfig = errors.New("invalid maze config")
	// ErrGenerationFailed is returned when every generation attempt was rejected.
	ErrGenerationFailed = errors.New("maze generation failed")
)
