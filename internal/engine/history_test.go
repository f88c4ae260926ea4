package engine

import (
	"testing"
	"time"
)

func TestHistoryFirstRecordAlwaysDue(t *testing.T) {
	var h History
	if !h.Due(afternoon, DefaultSnapshotParams()) {
		t.Fatal("empty history should be due")
	}
}

func TestHistoryCadence(t *testing.T) {
	p := DefaultSnapshotParams()
	var h History

	// A tick every 30s for 2h yields a snapshot every 30m, starting immediately.
	for now := afternoon; !now.After(afternoon.Add(2 * time.Hour)); now = now.Add(30 * time.Second) {
		if h.Due(now, p) {
			h.Record(Snapshot{Timestamp: now, Composite: 0.1}, p)
		}
	}
	if h.Len() != 5 {
		t.Fatalf("Len = %d, want 5", h.Len())
	}
	entries := h.Entries()
	for i := 1; i < len(entries); i++ {
		if gap := entries[i].Timestamp.Sub(entries[i-1].Timestamp); gap != 30*time.Minute {
			t.Errorf("gap %d = %s, want 30m", i, gap)
		}
	}
}

func TestHistoryCapacity(t *testing.T) {
	p := DefaultSnapshotParams()
	var h History
	for i := 0; i < 60; i++ {
		now := afternoon.Add(time.Duration(i) * p.Interval)
		h.Record(Snapshot{Timestamp: now, Composite: float64(i)}, p)
	}
	if h.Len() != 48 {
		t.Fatalf("Len = %d, want 48", h.Len())
	}
	entries := h.Entries()
	if entries[0].Composite != 12 || entries[47].Composite != 59 {
		t.Errorf("kept %v..%v, want 12..59", entries[0].Composite, entries[47].Composite)
	}
}

func TestHistoryWindow(t *testing.T) {
	p := DefaultSnapshotParams()
	var h History
	h.Record(Snapshot{Timestamp: afternoon, Composite: 1}, p)
	h.Record(Snapshot{Timestamp: afternoon.Add(time.Hour), Composite: 0.5}, p)

	// After a long gap only entries newer than 24h survive.
	h.Record(Snapshot{Timestamp: afternoon.Add(24*time.Hour + 30*time.Minute), Composite: 0}, p)

	entries := h.Entries()
	if len(entries) != 2 {
		t.Fatalf("Len = %d, want 2: %+v", len(entries), entries)
	}
	if entries[0].Composite != 0.5 {
		t.Errorf("oldest kept = %+v, want the 1h snapshot", entries[0])
	}
}

func TestHistoryDayAverage(t *testing.T) {
	var h History
	if got := h.DayAverage(); got != 0 {
		t.Errorf("empty DayAverage = %v, want 0", got)
	}
	p := DefaultSnapshotParams()
	for i, c := range []float64{0.2, 0.4, 0.9} {
		h.Record(Snapshot{Timestamp: afternoon.Add(time.Duration(i) * p.Interval), Composite: c}, p)
	}
	if got := h.DayAverage(); !near(got, 0.5) {
		t.Errorf("DayAverage = %v, want 0.5", got)
	}
}

func TestHistoryEntriesIsCopy(t *testing.T) {
	var h History
	h.Record(Snapshot{Timestamp: afternoon, Composite: 0.3}, DefaultSnapshotParams())
	entries := h.Entries()
	entries[0].Composite = 99
	if h.Entries()[0].Composite != 0.3 {
		t.Error("Entries exposed internal storage")
	}
}
