package engine

import (
	"strings"
	"time"
)

// LegacyDrift is the single-scalar shape older consumers read.
type LegacyDrift struct {
	Drift     float64   `json:"drift"`
	Level     string    `json:"level"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Legacy projects a CompositeState onto the single-scalar shape.
func Legacy(s CompositeState) LegacyDrift {
	return LegacyDrift{
		Drift:     s.Composite,
		Level:     strings.ToLower(s.Level.String()),
		UpdatedAt: s.LastCalculated,
	}
}
