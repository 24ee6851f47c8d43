// Package narrator cycles a widget's status line through three fixed phases.
//
// A marker selection replaces the status text out of cycle. The phase is left
// untouched, so the next Advance moves on to the following phase and restores
// its narration, discarding the selection.
package narrator

import "github.com/okian/horus/internal/domain/model"

// Phase is one step of the narrated pipeline.
type Phase uint8

const (
	Scanning Phase = iota
	Correlating
	Enforcing
)

const phaseCount = 3

func (p Phase) String() string {
	switch p {
	case Scanning:
		return "scanning"
	case Correlating:
		return "correlating"
	case Enforcing:
		return "enforcing"
	default:
		return "unknown"
	}
}

// Next returns the phase that follows p, wrapping Enforcing to Scanning.
func (p Phase) Next() Phase { return (p + 1) % phaseCount }

// Script holds the narration for each phase, indexed by Phase.
type Script [phaseCount]string

// Line returns the narration for p.
func (s Script) Line(p Phase) string { return s[p%phaseCount] }

var scripts = map[model.Kind]Script{
	model.KindRadar: {
		"Scanning environment…",
		"Real-time signals (AI)",
		"Anti-cheat active on Horus servers",
	},
	model.KindHexRadar: {
		"Hex-scan active: monitoring…",
		"AI: correlating signals…",
		"Anti-cheat: applying rules…",
	},
	model.KindWaveform: {
		"Stream active: capturing signals…",
		"AI: correlating stream…",
		"Anti-cheat: action / mitigation",
	},
}

// ScriptFor returns the narration used by kind. Unknown kinds get the radar script.
func ScriptFor(kind model.Kind) Script {
	if s, ok := scripts[kind]; ok {
		return s
	}
	return scripts[model.KindRadar]
}

// Narrator is not safe for concurrent use; the widget goroutine owns it.
type Narrator struct {
	script     Script
	phase      Phase
	status     string
	overridden bool
}

// New starts a narrator in the Scanning phase.
func New(script Script) *Narrator {
	return &Narrator{script: script, phase: Scanning, status: script.Line(Scanning)}
}

// Advance moves to the next phase and restores its narration.
func (n *Narrator) Advance() Phase {
	n.phase = n.phase.Next()
	n.status = n.script.Line(n.phase)
	n.overridden = false
	return n.phase
}

// Select shows label until the next Advance.
func (n *Narrator) Select(label string) {
	n.status = label
	n.overridden = true
}

func (n *Narrator) Status() string { return n.status }

func (n *Narrator) Phase() Phase { return n.phase }

// Overridden reports whether the status currently shows a selection.
func (n *Narrator) Overridden() bool { return n.overridden }
