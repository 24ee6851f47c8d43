package widget

import (
	"fmt"
	"time"

	"github.com/okian/horus/internal/domain/model"
	"github.com/okian/horus/internal/domain/narrator"
	"github.com/okian/horus/internal/domain/refresher"
	"github.com/okian/horus/internal/domain/types"
)

// LaneNames labels the waveform lanes top to bottom.
var LaneNames = [model.LaneCount]string{"NET", "INTEGRITY", "BEHAVIOR"}

// Profile holds the sizes and periods of one widget kind.
type Profile struct {
	Kind         model.Kind
	Size         int // fixed size, or initial size of a stream
	RefreshEvery time.Duration
	NarrateEvery time.Duration
	Stream       refresher.StreamConfig // waveform only
}

// DefaultProfiles returns the stock profile of every kind.
func DefaultProfiles() map[model.Kind]Profile {
	return map[model.Kind]Profile{
		model.KindRadar: {
			Kind:         model.KindRadar,
			Size:         8,
			RefreshEvery: 1200 * time.Millisecond,
			NarrateEvery: 2200 * time.Millisecond,
		},
		model.KindHexRadar: {
			Kind:         model.KindHexRadar,
			Size:         9,
			RefreshEvery: 1000 * time.Millisecond,
			NarrateEvery: 2100 * time.Millisecond,
		},
		model.KindWaveform: {
			Kind:         model.KindWaveform,
			Size:         7,
			RefreshEvery: 220 * time.Millisecond,
			NarrateEvery: 2100 * time.Millisecond,
			Stream:       refresher.DefaultStreamConfig(),
		},
	}
}

// Streams reports whether the kind scrolls instead of replacing in place.
func (p Profile) Streams() bool { return p.Kind.Layout() == model.LayoutLane }

// Validate checks the profile before a widget is built from it.
func (p Profile) Validate() error {
	if p.Kind.Layout() == 0 {
		return fmt.Errorf("profile kind %q: %w", p.Kind, model.ErrUnknownKind)
	}
	if p.Size <= 0 {
		return fmt.Errorf("profile %s size %d: %w", p.Kind, p.Size, refresher.ErrInvalidSize)
	}
	if p.RefreshEvery <= 0 || p.NarrateEvery <= 0 {
		return fmt.Errorf("profile %s periods %v/%v: %w", p.Kind, p.RefreshEvery, p.NarrateEvery, ErrInvalidPeriod)
	}
	if p.Streams() {
		return p.Stream.Validate()
	}
	return nil
}

// Info describes the profile for clients deciding what to mount.
func (p Profile) Info() types.WidgetInfo {
	script := narrator.ScriptFor(p.Kind)
	info := types.WidgetInfo{
		Kind:      p.Kind,
		Layout:    p.Kind.Layout().String(),
		Size:      p.Size,
		RefreshMS: p.RefreshEvery.Milliseconds(),
		NarrateMS: p.NarrateEvery.Milliseconds(),
		Script:    script[:],
		Tones:     make(map[model.Tone]model.ToneStyle, len(model.Tones)),
	}
	for _, t := range model.Tones {
		info.Tones[t] = t.Style()
	}
	if p.Streams() {
		info.Cap = p.Stream.Cap
		info.Lanes = LaneNames[:]
	}
	return info
}
