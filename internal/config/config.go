// Package config defines service configuration structures and loading hooks.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/okian/horus/internal/domain/model"
	"github.com/okian/horus/internal/widget"
)

// WidgetConfig tunes one widget kind.
type WidgetConfig struct {
	Size      int `koanf:"size"`
	RefreshMS int `koanf:"refresh_ms"`
	NarrateMS int `koanf:"narrate_ms"`
}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// MaxSessions caps concurrently mounted widgets. Zero means no cap.
	MaxSessions int `koanf:"max_sessions"`

	// SessionIdleTimeoutMS unmounts unwatched sessions after this long.
	SessionIdleTimeoutMS int `koanf:"session_idle_timeout_ms"`

	// SelectionQueueSize bounds the in-memory selection queue.
	SelectionQueueSize int `koanf:"selection_queue_size"`

	// SelectionWorkers sets the number of selection workers.
	SelectionWorkers int `koanf:"selection_workers"`

	// SelectionTimeoutMS bounds how long a worker waits to apply one selection.
	SelectionTimeoutMS int `koanf:"selection_timeout_ms"`

	// DedupeSize sets how many selection event ids are remembered.
	DedupeSize int `koanf:"dedupe_size"`

	// SubscriberBuffer is the per-stream snapshot buffer.
	SubscriberBuffer int `koanf:"subscriber_buffer"`

	// StreamKeepAliveMS is the comment interval on idle event streams.
	StreamKeepAliveMS int `koanf:"stream_keepalive_ms"`

	// ShutdownTimeoutMS bounds graceful shutdown.
	ShutdownTimeoutMS int `koanf:"shutdown_timeout_ms"`

	// Seed makes widget randomness reproducible. Zero keeps it random.
	Seed int64 `koanf:"seed"`

	Radar    WidgetConfig `koanf:"radar"`
	HexRadar WidgetConfig `koanf:"hexradar"`
	Waveform WidgetConfig `koanf:"waveform"`

	// WaveformCap bounds the waveform marker stream.
	WaveformCap int `koanf:"waveform_cap"`
}

// New creates a Config with defaults.
func New() *Config {
	p := widget.DefaultProfiles()
	return &Config{
		LogLevel:             "info",
		LogFormat:            "text",
		Addr:                 ":9080",
		MaxSessions:          1000,
		SessionIdleTimeoutMS: 120_000,
		SelectionQueueSize:   1024,
		SelectionWorkers:     4,
		SelectionTimeoutMS:   2_000,
		DedupeSize:           10_000,
		SubscriberBuffer:     8,
		StreamKeepAliveMS:    15_000,
		ShutdownTimeoutMS:    10_000,
		Radar:                widgetConfig(p[model.KindRadar]),
		HexRadar:             widgetConfig(p[model.KindHexRadar]),
		Waveform:             widgetConfig(p[model.KindWaveform]),
		WaveformCap:          p[model.KindWaveform].Stream.Cap,
	}
}

func widgetConfig(p widget.Profile) WidgetConfig {
	return WidgetConfig{
		Size:      p.Size,
		RefreshMS: int(p.RefreshEvery / time.Millisecond),
		NarrateMS: int(p.NarrateEvery / time.Millisecond),
	}
}

// Profiles returns the widget profiles with this configuration applied.
func (c *Config) Profiles() map[model.Kind]widget.Profile {
	profiles := widget.DefaultProfiles()
	apply := func(kind model.Kind, wc WidgetConfig) {
		p := profiles[kind]
		p.Size = wc.Size
		p.RefreshEvery = time.Duration(wc.RefreshMS) * time.Millisecond
		p.NarrateEvery = time.Duration(wc.NarrateMS) * time.Millisecond
		profiles[kind] = p
	}
	apply(model.KindRadar, c.Radar)
	apply(model.KindHexRadar, c.HexRadar)
	apply(model.KindWaveform, c.Waveform)

	wf := profiles[model.KindWaveform]
	wf.Stream.Cap = c.WaveformCap
	profiles[model.KindWaveform] = wf
	return profiles
}

// IdleTimeout returns SessionIdleTimeoutMS as a duration.
func (c *Config) IdleTimeout() time.Duration {
	return time.Duration(c.SessionIdleTimeoutMS) * time.Millisecond
}

// KeepAlive returns StreamKeepAliveMS as a duration.
func (c *Config) KeepAlive() time.Duration {
	return time.Duration(c.StreamKeepAliveMS) * time.Millisecond
}

// SelectTimeout returns SelectionTimeoutMS as a duration.
func (c *Config) SelectTimeout() time.Duration {
	return time.Duration(c.SelectionTimeoutMS) * time.Millisecond
}

// ShutdownTimeout returns ShutdownTimeoutMS as a duration.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutMS) * time.Millisecond
}

// Validate reports the first invalid setting wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	case c.MaxSessions < 0:
		return fmt.Errorf("%w: max_sessions must not be negative", ErrInvalidConfig)
	case c.SessionIdleTimeoutMS < 0:
		return fmt.Errorf("%w: session_idle_timeout_ms must not be negative", ErrInvalidConfig)
	case c.SelectionQueueSize < 1:
		return fmt.Errorf("%w: selection_queue_size must be positive", ErrInvalidConfig)
	case c.SelectionWorkers < 1:
		return fmt.Errorf("%w: selection_workers must be positive", ErrInvalidConfig)
	case c.SelectionTimeoutMS < 1:
		return fmt.Errorf("%w: selection_timeout_ms must be positive", ErrInvalidConfig)
	case c.SubscriberBuffer < 1:
		return fmt.Errorf("%w: subscriber_buffer must be positive", ErrInvalidConfig)
	case c.StreamKeepAliveMS < 1:
		return fmt.Errorf("%w: stream_keepalive_ms must be positive", ErrInvalidConfig)
	}
	for kind, p := range c.Profiles() {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("%w: %w: %s: %w", ErrInvalidConfig, ErrInvalidWidget, kind, err)
		}
	}
	return nil
}
