// Package refresher owns a widget's marker collection and mutates it per tick.
package refresher

import (
	"fmt"

	"github.com/okian/horus/internal/domain/generator"
	"github.com/okian/horus/internal/domain/model"
)

// Refresher holds one marker collection. It is not safe for concurrent use;
// the widget goroutine is its only caller.
type Refresher interface {
	// Markers returns a copy of the current collection.
	Markers() []model.Marker
	Len() int
	// Tick applies one refresh step.
	Tick() Change
}

// Change describes what one tick did to the collection.
type Change struct {
	Replaced int // index replaced in place, -1 if none
	Dropped  int
	Appended int
	Trimmed  int
}

// Fixed keeps exactly N markers and replaces one random element per tick.
type Fixed struct {
	gen     generator.Generator
	src     generator.Source
	markers []model.Marker
}

// NewFixed fills a collection with gen.Generate(0..size-1).
func NewFixed(gen generator.Generator, src generator.Source, size int) (*Fixed, error) {
	if size <= 0 {
		return nil, fmt.Errorf("fixed refresher size %d: %w", size, ErrInvalidSize)
	}
	if src == nil {
		src = generator.DefaultSource()
	}
	f := &Fixed{gen: gen, src: src, markers: make([]model.Marker, size)}
	for i := range f.markers {
		f.markers[i] = gen.Generate(i)
	}
	return f, nil
}

func (f *Fixed) Markers() []model.Marker { return model.CloneMarkers(f.markers) }

func (f *Fixed) Len() int { return len(f.markers) }

// Tick replaces the element at a uniformly random index with a fresh marker
// generated for that index.
func (f *Fixed) Tick() Change {
	i := f.src.Intn(len(f.markers))
	f.markers[i] = f.gen.Generate(i)
	return Change{Replaced: i}
}

// StreamConfig tunes the scrolling stream.
type StreamConfig struct {
	Step         float64 // leftward shift per tick
	Floor        float64 // markers at or below this offset are dropped
	AppendChance float64
	BurstChance  float64 // chance of a second append in the same tick
	Cap          int     // most recent entries kept
}

// DefaultStreamConfig returns the waveform's stream settings.
func DefaultStreamConfig() StreamConfig {
	return StreamConfig{
		Step:         0.035,
		Floor:        -0.08,
		AppendChance: 0.75,
		BurstChance:  0.25,
		Cap:          12,
	}
}

// Validate checks the stream settings.
func (c StreamConfig) Validate() error {
	if c.Cap <= 0 {
		return fmt.Errorf("stream cap %d: %w", c.Cap, ErrInvalidSize)
	}
	if c.Step <= 0 {
		return fmt.Errorf("stream step %v: %w", c.Step, ErrInvalidStream)
	}
	if c.AppendChance < 0 || c.AppendChance > 1 || c.BurstChance < 0 || c.BurstChance > 1 {
		return fmt.Errorf("stream chances %v/%v: %w", c.AppendChance, c.BurstChance, ErrInvalidStream)
	}
	return nil
}

// Stream scrolls markers left, expires them past Floor and spawns new ones at
// the right edge.
type Stream struct {
	gen     generator.Generator
	src     generator.Source
	cfg     StreamConfig
	markers []model.Marker
}

// NewStream fills a collection with gen.Generate(0..initial-1).
func NewStream(gen generator.Generator, src generator.Source, initial int, opts ...StreamOption) (*Stream, error) {
	cfg := DefaultStreamConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if initial <= 0 {
		return nil, fmt.Errorf("stream initial size %d: %w", initial, ErrInvalidSize)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if src == nil {
		src = generator.DefaultSource()
	}
	s := &Stream{gen: gen, src: src, cfg: cfg, markers: make([]model.Marker, 0, cfg.Cap+2)}
	for i := 0; i < initial; i++ {
		s.markers = append(s.markers, gen.Generate(i))
	}
	return s, nil
}

func (s *Stream) Markers() []model.Marker { return model.CloneMarkers(s.markers) }

func (s *Stream) Len() int { return len(s.markers) }

// Config returns the stream settings in use.
func (s *Stream) Config() StreamConfig { return s.cfg }

func (s *Stream) Tick() Change {
	ch := Change{Replaced: -1}

	kept := s.markers[:0]
	for _, m := range s.markers {
		m.Position.Offset -= s.cfg.Step
		if m.Position.Offset <= s.cfg.Floor {
			ch.Dropped++
			continue
		}
		kept = append(kept, m)
	}
	s.markers = kept

	if s.src.Float64() < s.cfg.AppendChance {
		s.markers = append(s.markers, s.gen.Generate(len(s.markers)))
		ch.Appended++
	}
	if s.src.Float64() < s.cfg.BurstChance {
		s.markers = append(s.markers, s.gen.Generate(len(s.markers)+1))
		ch.Appended++
	}

	if over := len(s.markers) - s.cfg.Cap; over > 0 {
		s.markers = append(s.markers[:0], s.markers[over:]...)
		ch.Trimmed = over
	}
	return ch
}

// StreamOption adjusts StreamConfig.
type StreamOption func(*StreamConfig)

// WithStreamConfig replaces the whole configuration.
func WithStreamConfig(cfg StreamConfig) StreamOption {
	return func(c *StreamConfig) { *c = cfg }
}

// WithCap sets the maximum collection size.
func WithCap(n int) StreamOption {
	return func(c *StreamConfig) { c.Cap = n }
}
