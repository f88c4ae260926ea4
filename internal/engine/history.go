package engine

import "time"

// Snapshot is a periodic record of the composite kept for trend display.
type Snapshot struct {
	Timestamp time.Time `json:"timestamp"`
	Composite float64   `json:"composite"`
	Level     Level     `json:"level"`
}

// SnapshotParams control how often snapshots are taken and how many are kept.
type SnapshotParams struct {
	Interval time.Duration // wall clock between snapshots (30m)
	Capacity int           // most recent entries kept (48)
	Window   time.Duration // maximum age of a kept entry (24h)
}

// DefaultSnapshotParams returns 30-minute snapshots over a 24h, 48-entry ring.
func DefaultSnapshotParams() SnapshotParams {
	return SnapshotParams{
		Interval: 30 * time.Minute,
		Capacity: 48,
		Window:   24 * time.Hour,
	}
}

// History is a bounded, time-ordered ring of snapshots.
type History struct {
	entries []Snapshot
	last    time.Time
}

// Due reports whether a snapshot should be recorded at now.
// The first call on an empty recorder is always due.
func (h *History) Due(now time.Time, p SnapshotParams) bool {
	if h.last.IsZero() {
		return true
	}
	return now.Sub(h.last) >= p.Interval
}

// Record appends a snapshot and trims the ring to capacity and window.
func (h *History) Record(s Snapshot, p SnapshotParams) {
	h.entries = append(h.entries, s)
	h.last = s.Timestamp
	h.trim(s.Timestamp, p)
}

func (h *History) trim(now time.Time, p SnapshotParams) {
	start := 0
	if p.Window > 0 {
		cutoff := now.Add(-p.Window)
		for start < len(h.entries) && !h.entries[start].Timestamp.After(cutoff) {
			start++
		}
	}
	if p.Capacity > 0 && len(h.entries)-start > p.Capacity {
		start = len(h.entries) - p.Capacity
	}
	if start > 0 {
		h.entries = append([]Snapshot(nil), h.entries[start:]...)
	}
}

// Entries returns a copy of the retained snapshots, oldest first.
func (h *History) Entries() []Snapshot {
	return append([]Snapshot(nil), h.entries...)
}

// LastRecorded returns the timestamp of the most recent snapshot.
func (h *History) LastRecorded() time.Time {
	return h.last
}

// Len returns the number of retained snapshots.
func (h *History) Len() int {
	return len(h.entries)
}

// DayAverage returns the mean composite of the retained snapshots, or 0.
func (h *History) DayAverage() float64 {
	if len(h.entries) == 0 {
		return 0
	}
	var sum float64
	for _, s := range h.entries {
		sum += s.Composite
	}
	return sum / float64(len(h.entries))
}

func (h *History) restore(entries []Snapshot, last time.Time) {
	h.entries = append([]Snapshot(nil), entries...)
	h.last = last
}
