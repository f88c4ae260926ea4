package engine

import (
	"sync"
	"time"
)

// Settings is everything the engine reads at tick time. It is fetched from a
// SettingsSource on every Tick, so any field may change between ticks.
type Settings struct {
	Weights     Weights
	BedtimeHour int
	Location    *time.Location // circadian wall clock; nil means the location of now
	Axes        [len(Axes)]AxisParams
	Circadian   CircadianParams
	Snapshot    SnapshotParams
	Lookback    time.Duration // replay window and persisted-state staleness limit
}

// DefaultSettings returns the reference configuration.
func DefaultSettings() Settings {
	var axes [len(Axes)]AxisParams
	axes[TimePressure] = AxisParams{HalfLife: 2 * time.Hour, Saturation: 120}
	axes[ContentQuality] = AxisParams{HalfLife: 4 * time.Hour, Saturation: 1}
	axes[BehaviorPattern] = AxisParams{HalfLife: 30 * time.Minute, Saturation: 1}

	return Settings{
		Weights: Weights{
			TimePressure:    0.4,
			ContentQuality:  0.3,
			BehaviorPattern: 0.3,
			Circadian:       0.15,
		},
		BedtimeHour: DefaultBedtimeHour,
		Axes:        axes,
		Circadian:   DefaultCircadianParams(),
		Snapshot:    DefaultSnapshotParams(),
		Lookback:    24 * time.Hour,
	}
}

// SettingsSource supplies the current settings. Implementations must be safe
// for concurrent use.
type SettingsSource interface {
	Settings() Settings
}

// StaticSettings is a SettingsSource that can be swapped at runtime.
type StaticSettings struct {
	mu sync.RWMutex
	s  Settings
}

// NewStaticSettings returns a source holding s.
func NewStaticSettings(s Settings) *StaticSettings {
	return &StaticSettings{s: s}
}

// Settings returns the current settings.
func (st *StaticSettings) Settings() Settings {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.s
}

// Set replaces the settings; the next Tick picks them up.
func (st *StaticSettings) Set(s Settings) {
	st.mu.Lock()
	st.s = s
	st.mu.Unlock()
}
