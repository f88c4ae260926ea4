package engine

import (
	"fmt"
	"time"
)

// Axis is one independent category of decaying evidence.
type Axis int

const (
	TimePressure Axis = iota
	ContentQuality
	BehaviorPattern
)

// Axes lists every axis in a fixed order. Iteration over axes always uses
// this order so floating-point sums are reproducible.
var Axes = [...]Axis{TimePressure, ContentQuality, BehaviorPattern}

var axisNames = [...]string{
	TimePressure:    "time_pressure",
	ContentQuality:  "content_quality",
	BehaviorPattern: "behavior_pattern",
}

func (a Axis) String() string {
	if !a.Valid() {
		return fmt.Sprintf("axis(%d)", int(a))
	}
	return axisNames[a]
}

// Valid reports whether a is one of the known axes.
func (a Axis) Valid() bool {
	return a >= TimePressure && a <= BehaviorPattern
}

// ParseAxis converts a wire name ("time_pressure", ...) into an Axis.
func ParseAxis(s string) (Axis, error) {
	for _, a := range Axes {
		if axisNames[a] == s {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown axis %q", s)
}

// MarshalText implements encoding.TextMarshaler so axes can key JSON maps.
func (a Axis) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("invalid axis %d", int(a))
	}
	return []byte(axisNames[a]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Axis) UnmarshalText(b []byte) error {
	parsed, err := ParseAxis(string(b))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Sample is a single timestamped piece of evidence on one axis.
// Negative weights reduce drift.
type Sample struct {
	Timestamp time.Time `json:"t"`
	Weight    float64   `json:"w"`
}

// AxisState holds the live samples for one axis. Value is a cache of the
// last computation and is always recomputable from Samples and an instant.
type AxisState struct {
	Samples  []Sample      `json:"samples"`
	HalfLife time.Duration `json:"half_life"`
	Value    float64       `json:"value"`
}

// AxisParams are the configured decay constants for one axis.
type AxisParams struct {
	HalfLife   time.Duration
	Saturation float64
}

func (s AxisState) clone() AxisState {
	out := s
	out.Samples = append([]Sample(nil), s.Samples...)
	return out
}
