// Package model contains domain models passed between layers.
package model

import (
	"encoding/json"
	"fmt"
	"math"
)

// Layout says which coordinate representation a Position carries.
type Layout uint8

// Position layouts. A widget kind uses exactly one of them.
const (
	LayoutCartesian Layout = iota + 1
	LayoutPolar
	LayoutLane
)

// LaneCount is the number of horizontal lanes in the stream layout.
const LaneCount = 3

func (l Layout) String() string {
	switch l {
	case LayoutCartesian:
		return "cartesian"
	case LayoutPolar:
		return "polar"
	case LayoutLane:
		return "lane"
	default:
		return "unknown"
	}
}

// Position places a marker inside its widget. Only the fields that belong to
// Layout are meaningful.
type Position struct {
	Layout Layout

	// cartesian, normalized to [0,1]
	X, Y float64

	// polar: Angle in radians [0, 2π), Radius normalized to [0,1]
	Angle, Radius float64

	// lane: Offset is the normalized horizontal position, Lane is 0..LaneCount-1
	Offset float64
	Lane   int
}

// Cartesian returns a cartesian position.
func Cartesian(x, y float64) Position {
	return Position{Layout: LayoutCartesian, X: x, Y: y}
}

// Polar returns a polar position.
func Polar(angle, radius float64) Position {
	return Position{Layout: LayoutPolar, Angle: angle, Radius: radius}
}

// OnLane returns a stream position.
func OnLane(offset float64, lane int) Position {
	return Position{Layout: LayoutLane, Offset: offset, Lane: lane}
}

// XY projects the position to normalized screen coordinates, with (0.5, 0.5)
// at the visual center. Lane positions map lanes to evenly spaced rows.
func (p Position) XY() (float64, float64) {
	switch p.Layout {
	case LayoutCartesian:
		return p.X, p.Y
	case LayoutPolar:
		return 0.5 + 0.5*p.Radius*math.Cos(p.Angle), 0.5 + 0.5*p.Radius*math.Sin(p.Angle)
	case LayoutLane:
		return p.Offset, (float64(p.Lane) + 0.5) / LaneCount
	default:
		return 0.5, 0.5
	}
}

type cartesianJSON struct {
	Layout string  `json:"layout"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

type polarJSON struct {
	Layout string  `json:"layout"`
	Angle  float64 `json:"angle"`
	Radius float64 `json:"radius"`
}

type laneJSON struct {
	Layout string  `json:"layout"`
	Offset float64 `json:"offset"`
	Lane   int     `json:"lane"`
}

// MarshalJSON emits the layout discriminator and only that layout's fields.
func (p Position) MarshalJSON() ([]byte, error) {
	switch p.Layout {
	case LayoutCartesian:
		return json.Marshal(cartesianJSON{Layout: p.Layout.String(), X: p.X, Y: p.Y})
	case LayoutPolar:
		return json.Marshal(polarJSON{Layout: p.Layout.String(), Angle: p.Angle, Radius: p.Radius})
	case LayoutLane:
		return json.Marshal(laneJSON{Layout: p.Layout.String(), Offset: p.Offset, Lane: p.Lane})
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownLayout, p.Layout)
	}
}

// UnmarshalJSON accepts the shape produced by MarshalJSON.
func (p *Position) UnmarshalJSON(data []byte) error {
	var raw struct {
		Layout string  `json:"layout"`
		X      float64 `json:"x"`
		Y      float64 `json:"y"`
		Angle  float64 `json:"angle"`
		Radius float64 `json:"radius"`
		Offset float64 `json:"offset"`
		Lane   int     `json:"lane"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw.Layout {
	case "cartesian":
		*p = Cartesian(raw.X, raw.Y)
	case "polar":
		*p = Polar(raw.Angle, raw.Radius)
	case "lane":
		*p = OnLane(raw.Offset, raw.Lane)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownLayout, raw.Layout)
	}
	return nil
}

// Marker is one randomly generated, positioned, labeled indicator.
type Marker struct {
	ID       string   `json:"id"`
	Position Position `json:"position"`
	Tone     Tone     `json:"tone"`
	Label    string   `json:"label"`
}

// CloneMarkers returns a copy of ms that shares no backing array with it.
func CloneMarkers(ms []Marker) []Marker {
	if ms == nil {
		return nil
	}
	out := make([]Marker, len(ms))
	copy(out, ms)
	return out
}
