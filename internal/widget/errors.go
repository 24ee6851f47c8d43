package widget

import "errors"

var (
	ErrMarkerNotFound = errors.New("marker not found")
	ErrStopped        = errors.New("widget stopped")
	ErrNotStarted     = errors.New("widget not started")
	ErrInvalidPeriod  = errors.New("tick period must be positive")
)
