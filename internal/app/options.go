package service

import (
	"time"

	"github.com/okian/horus/internal/domain/model"
	"github.com/okian/horus/internal/widget"
	"github.com/okian/horus/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of selection workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the selection queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many selection event ids are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithMaxSessions caps concurrently mounted widgets. Zero means no cap.
func WithMaxSessions(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.maxSessions = n
		}
	}
}

// WithSubscriberBuffer sets the per-subscriber snapshot buffer.
func WithSubscriberBuffer(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.subscriberBuffer = n
		}
	}
}

// WithIdleTimeout sets how long an unwatched session survives without being
// touched. Zero disables reaping.
func WithIdleTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.idleTimeout = d
		}
	}
}

// WithSelectTimeout bounds how long a worker waits on a widget to apply one
// selection.
func WithSelectTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.selectTimeout = d
		}
	}
}

// WithReapInterval sets how often idle sessions are looked for.
func WithReapInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.reapInterval = d
		}
	}
}

// WithSeed makes widget randomness reproducible. Zero keeps it random.
func WithSeed(seed int64) Option {
	return func(s *Service) {
		s.seed = seed
	}
}

// WithProfile overrides the profile of one kind.
func WithProfile(p widget.Profile) Option {
	return func(s *Service) {
		if p.Kind.Layout() != 0 {
			s.profiles[p.Kind] = p
		}
	}
}

// WithProfiles replaces every profile.
func WithProfiles(profiles map[model.Kind]widget.Profile) Option {
	return func(s *Service) {
		if len(profiles) > 0 {
			s.profiles = profiles
		}
	}
}

// WithClock sets the clock used by widgets and idle tracking.
func WithClock(c widget.Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithIDFunc replaces the session id generator.
func WithIDFunc(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
