package api

import (
	"time"

	"github.com/okian/horus/pkg/logger"
)

const defaultKeepAlive = 15 * time.Second

type options struct {
	logger    logger.Logger
	keepAlive time.Duration
}

// Option configures the Server.
type Option func(*options)

// WithLogger sets the logger used by streaming handlers.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithKeepAlive sets how often an idle event stream receives a comment line.
func WithKeepAlive(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.keepAlive = d
		}
	}
}
