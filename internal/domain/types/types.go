// Package types contains common types used across the application
package types

import (
	"time"

	"github.com/okian/horus/internal/domain/model"
)

// Snapshot is the published state of one widget after a change.
type Snapshot struct {
	WidgetID  string         `json:"widget_id"`
	Kind      model.Kind     `json:"kind"`
	Seq       uint64         `json:"seq"`
	Markers   []model.Marker `json:"markers"`
	Status    string         `json:"status"`
	Phase     string         `json:"phase"`
	Selected  string         `json:"selected,omitempty"` // marker id behind an override status
	UpdatedAt time.Time      `json:"updated_at"`
}

// Clone returns a copy that shares no marker storage with s.
func (s Snapshot) Clone() Snapshot {
	s.Markers = model.CloneMarkers(s.Markers)
	return s
}

// WidgetInfo describes a widget kind that can be mounted.
type WidgetInfo struct {
	Kind      model.Kind                     `json:"kind"`
	Layout    string                         `json:"layout"`
	Size      int                            `json:"size"`
	Cap       int                            `json:"cap,omitempty"`
	RefreshMS int64                          `json:"refresh_ms"`
	NarrateMS int64                          `json:"narrate_ms"`
	Script    []string                       `json:"script"`
	Lanes     []string                       `json:"lanes,omitempty"`
	Tones     map[model.Tone]model.ToneStyle `json:"tones"`
}

// Stats is the service summary exposed on /stats.
type Stats struct {
	ActiveSessions  int                `json:"active_sessions"`
	SessionsByKind  map[model.Kind]int `json:"sessions_by_kind"`
	Subscribers     int                `json:"subscribers"`
	QueueSize       int                `json:"queue_size"`
	QueueCapacity   int                `json:"queue_capacity"`
	DedupeSize      int64              `json:"dedupe_size"`
	Workers         int                `json:"workers"`
	SelectionsTotal uint64             `json:"selections_total"`
	UptimeSeconds   float64            `json:"uptime_seconds"`
}
