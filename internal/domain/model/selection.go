package model

import (
	"errors"
	"time"
)

// Sentinel errors for the model package.
var (
	ErrUnknownKind   = errors.New("unknown widget kind")
	ErrUnknownLayout = errors.New("unknown position layout")

	// ErrSessionNotFound is returned when a widget session is not mounted.
	ErrSessionNotFound = errors.New("widget session not found")

	// ErrSessionLimit is returned when no more sessions can be mounted.
	ErrSessionLimit = errors.New("too many widget sessions")
)

// Selection is a user's marker selection on its way to a widget.
type Selection struct {
	EventID  string    // unique id for idempotency
	WidgetID string    // mounted widget session
	MarkerID string    // marker the user picked
	TS       time.Time // when the client reported it
}
