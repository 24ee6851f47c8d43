package refresher

import "errors"

var (
	// ErrInvalidSize is returned when a collection size or cap is not positive.
	ErrInvalidSize = errors.New("collection size must be positive")
	// ErrInvalidStream is returned for a non-positive step or a chance outside [0,1].
	ErrInvalidStream = errors.New("invalid stream configuration")
)
