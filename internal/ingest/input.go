package ingest

import (
	"encoding/json"
	"time"
)

// Input is one line of the ingest stream. All fields are optional; which
// ones are read depends on Type.
type Input struct {
	Type string `json:"type"` // "watch", "navigation" or "sample"

	// watch
	VideoID        string     `json:"video_id,omitempty"`
	Title          string     `json:"title,omitempty"`
	MinutesWatched float64    `json:"minutes_watched,omitempty"`
	Rating         string     `json:"rating,omitempty"`
	WatchedAt      *time.Time `json:"watched_at,omitempty"`

	// navigation
	Kind string `json:"kind,omitempty"`

	// sample
	Axis   string          `json:"axis,omitempty"`
	Weight json.RawMessage `json:"weight,omitempty"`
}
