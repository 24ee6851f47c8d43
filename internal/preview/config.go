package preview

import (
	"errors"
	"time"

	"github.com/okian/horus/internal/domain/model"
)

// Config holds configuration for a preview session.
type Config struct {
	BaseURL  string        // Base URL of the service
	Kind     model.Kind    // Widget kind to mount
	Interval time.Duration // Automatic selection period, zero for manual only
	Timeout  time.Duration // HTTP request timeout for non-streaming calls
	LogFile  string        // Log file, the terminal belongs to the preview
}

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid preview config")

// Validate checks the configuration before anything is mounted.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return errors.Join(ErrInvalidConfig, errors.New("missing base url"))
	}
	if _, err := model.ParseKind(string(c.Kind)); err != nil {
		return errors.Join(ErrInvalidConfig, err)
	}
	if c.Interval < 0 || c.Timeout < 0 {
		return errors.Join(ErrInvalidConfig, errors.New("negative duration"))
	}
	return nil
}

// Stats counts what happened during a preview run.
type Stats struct {
	Snapshots  int
	Selections int
	Duplicates int
	Failed     int
	StartTime  time.Time
	Duration   time.Duration
}
