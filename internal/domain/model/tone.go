package model

import (
	"fmt"
	"strings"
)

// Tone is the symbolic category of a marker.
type Tone string

const (
	ToneCyan    Tone = "cyan"
	ToneFuchsia Tone = "fuchsia"
	ToneEmerald Tone = "emerald"
)

// Tones lists every tone in index order: index mod 3 selects from it.
var Tones = [...]Tone{ToneCyan, ToneFuchsia, ToneEmerald}

// Valid reports whether t is one of the three known tones.
func (t Tone) Valid() bool {
	_, ok := toneStyles[t]
	return ok
}

// ToneStyle holds the CSS classes a presentation layer uses for a tone.
type ToneStyle struct {
	Dot  string `json:"dot"`
	Ring string `json:"ring"`
	Text string `json:"text"`
	Glow string `json:"glow"`
}

var toneStyles = map[Tone]ToneStyle{
	ToneCyan: {
		Dot:  "bg-cyan-400",
		Ring: "ring-cyan-400/25",
		Text: "text-cyan-200",
		Glow: "shadow-[0_0_22px_rgba(34,211,238,.28)]",
	},
	ToneFuchsia: {
		Dot:  "bg-fuchsia-400",
		Ring: "ring-fuchsia-400/25",
		Text: "text-fuchsia-200",
		Glow: "shadow-[0_0_22px_rgba(232,121,249,.28)]",
	},
	ToneEmerald: {
		Dot:  "bg-emerald-400",
		Ring: "ring-emerald-400/25",
		Text: "text-emerald-200",
		Glow: "shadow-[0_0_22px_rgba(16,185,129,.26)]",
	},
}

// Style returns the style record for t. Unknown tones fall back to cyan.
func (t Tone) Style() ToneStyle {
	if s, ok := toneStyles[t]; ok {
		return s
	}
	return toneStyles[ToneCyan]
}

// Kind identifies a widget variant.
type Kind string

const (
	KindRadar    Kind = "radar"
	KindHexRadar Kind = "hexradar"
	KindWaveform Kind = "waveform"
)

// Kinds lists the widget variants in display order.
var Kinds = [...]Kind{KindRadar, KindHexRadar, KindWaveform}

// ParseKind converts s to a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case KindRadar, KindHexRadar, KindWaveform:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Layout returns the position layout the kind uses.
func (k Kind) Layout() Layout {
	switch k {
	case KindRadar:
		return LayoutCartesian
	case KindHexRadar:
		return LayoutPolar
	case KindWaveform:
		return LayoutLane
	default:
		return 0
	}
}

var labels = map[Kind]map[Tone]string{
	KindRadar: {
		ToneCyan:    "Anomaly detected",
		ToneFuchsia: "Suspicious pattern",
		ToneEmerald: "Integrity verified",
	},
	KindHexRadar: {
		ToneCyan:    "Network anomaly",
		ToneFuchsia: "Suspicious pattern",
		ToneEmerald: "Integrity OK",
	},
	KindWaveform: {
		ToneCyan:    "Signal: anomaly",
		ToneFuchsia: "Flag: suspicious pattern",
		ToneEmerald: "OK: integrity",
	},
}

// LabelFor returns the fixed label a kind shows for a tone.
func LabelFor(k Kind, t Tone) string {
	if byTone, ok := labels[k]; ok {
		if l, ok := byTone[t]; ok {
			return l
		}
	}
	return labels[KindRadar][ToneCyan]
}
