package service

import (
	"errors"

	"github.com/okian/horus/internal/domain/model"
)

var (
	ErrNotStarted      = errors.New("service not started")
	ErrTooManySessions = model.ErrSessionLimit
	ErrUnknownKind     = model.ErrUnknownKind
	ErrSessionNotFound = model.ErrSessionNotFound
)
