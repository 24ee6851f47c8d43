// Package generator produces randomly positioned markers for each widget kind.
//
// Generation is total: every call returns a fully populated marker whose
// position lies inside the bounds of its layout. The only side input is the
// random Source, which tests replace with a seeded *rand.Rand.
package generator

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/okian/horus/internal/domain/model"
)

// Position bounds per layout.
const (
	CartesianMin = 0.12
	CartesianMax = 0.88

	RadiusMin = 0.18
	RadiusMax = 0.95

	// Stream markers spawn just past the right edge.
	SpawnMin  = 1.02
	SpawnSpan = 0.3
)

// Source is the randomness a generator consumes. *rand.Rand satisfies it.
type Source interface {
	Float64() float64
	Intn(n int) int
}

// Generator produces one marker per call.
type Generator interface {
	Generate(index int) model.Marker
	Kind() model.Kind
}

type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }
func (globalSource) Intn(n int) int   { return rand.Intn(n) }

// DefaultSource returns a goroutine-safe source backed by math/rand's global
// generator.
func DefaultSource() Source { return globalSource{} }

// DefaultID builds an id from the current millisecond, the creation index and
// a random UUID, so ids are never reused even within one millisecond.
func DefaultID(index int) string {
	return fmt.Sprintf("%d-%d-%s", time.Now().UnixMilli(), index, uuid.NewString())
}

type base struct {
	kind model.Kind
	src  Source
	id   func(int) string
}

func newBase(kind model.Kind, opts []Option) base {
	b := base{kind: kind, src: DefaultSource(), id: DefaultID}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

func (b base) Kind() model.Kind { return b.kind }

func (b base) marker(index int, pos model.Position, tone model.Tone) model.Marker {
	return model.Marker{
		ID:       b.id(index),
		Position: pos,
		Tone:     tone,
		Label:    model.LabelFor(b.kind, tone),
	}
}

func (b base) randomTone() model.Tone {
	return model.Tones[b.src.Intn(len(model.Tones))]
}

// Cartesian places markers in a square and cycles tone by index.
type Cartesian struct{ base }

// NewCartesian returns the radar generator.
func NewCartesian(opts ...Option) *Cartesian {
	return &Cartesian{newBase(model.KindRadar, opts)}
}

func (g *Cartesian) Generate(index int) model.Marker {
	var x, y float64
	for {
		x = between(g.src, CartesianMin, CartesianMax)
		y = between(g.src, CartesianMin, CartesianMax)
		if x != 0.5 || y != 0.5 {
			break
		}
	}
	return g.marker(index, model.Cartesian(x, y), ToneAt(index))
}

// Polar places markers on a disc, clamped away from the center and the rim.
type Polar struct{ base }

// NewPolar returns the hex radar generator.
func NewPolar(opts ...Option) *Polar {
	return &Polar{newBase(model.KindHexRadar, opts)}
}

func (g *Polar) Generate(index int) model.Marker {
	tone := g.randomTone()
	radius := math.Min(RadiusMax, math.Max(RadiusMin, g.src.Float64()))
	angle := g.src.Float64() * 2 * math.Pi
	return g.marker(index, model.Polar(angle, radius), tone)
}

// Lane spawns stream markers beyond the right edge on a random lane.
type Lane struct{ base }

// NewLane returns the waveform generator.
func NewLane(opts ...Option) *Lane {
	return &Lane{newBase(model.KindWaveform, opts)}
}

func (g *Lane) Generate(index int) model.Marker {
	tone := g.randomTone()
	lane := g.src.Intn(model.LaneCount)
	offset := SpawnMin + g.src.Float64()*SpawnSpan
	return g.marker(index, model.OnLane(offset, lane), tone)
}

// ForKind returns the generator for kind.
func ForKind(kind model.Kind, opts ...Option) (Generator, error) {
	switch kind {
	case model.KindRadar:
		return NewCartesian(opts...), nil
	case model.KindHexRadar:
		return NewPolar(opts...), nil
	case model.KindWaveform:
		return NewLane(opts...), nil
	default:
		return nil, fmt.Errorf("generator for %q: %w", kind, model.ErrUnknownKind)
	}
}

// ToneAt cycles tones by creation index.
func ToneAt(index int) model.Tone {
	n := len(model.Tones)
	return model.Tones[((index%n)+n)%n]
}

func between(src Source, lo, hi float64) float64 {
	return lo + src.Float64()*(hi-lo)
}
