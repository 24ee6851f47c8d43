package widget

import (
	"github.com/okian/horus/internal/domain/generator"
	"github.com/okian/horus/pkg/logger"
)

// Option applies a configuration option to a Widget.
type Option func(*Widget)

// WithSource sets the randomness used for generation and refresh.
func WithSource(src generator.Source) Option {
	return func(w *Widget) {
		if src != nil {
			w.src = src
		}
	}
}

// WithClock sets the clock that creates the refresh and narrate tickers.
func WithClock(c Clock) Option {
	return func(w *Widget) {
		if c != nil {
			w.clock = c
		}
	}
}

// WithLogger sets a custom logger for the widget.
func WithLogger(l logger.Logger) Option {
	return func(w *Widget) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithSubscriberBuffer sets how many snapshots a subscriber may lag behind
// before new ones are dropped for it.
func WithSubscriberBuffer(n int) Option {
	return func(w *Widget) {
		if n > 0 {
			w.subBuffer = n
		}
	}
}
