package engine

import (
	"encoding/json"
	"fmt"
	"log"
	"time"
)

// StateKey is the persistence key of the engine blob.
const StateKey = "engine_state"

const blobVersion = 1

// Persister is a durable key-value store. Load returns ok=false when the key
// has never been written.
type Persister interface {
	Load(key string) (data []byte, ok bool, err error)
	Save(key string, data []byte) error
}

// EventLog is the durable watch history used to rebuild state.
type EventLog interface {
	HistoricalEvents(since time.Time) ([]HistoricalEvent, error)
}

// persistedState is the on-disk blob. It is always written whole.
type persistedState struct {
	Version      int               `json:"version"`
	SavedAt      time.Time         `json:"saved_at"`
	Axes         map[Axis][]Sample `json:"axes"`
	History      []Snapshot        `json:"history"`
	LastSnapshot time.Time         `json:"last_snapshot"`
}

func encodeState(axes [len(Axes)]AxisState, h *History, savedAt time.Time) ([]byte, error) {
	ps := persistedState{
		Version:      blobVersion,
		SavedAt:      savedAt,
		Axes:         make(map[Axis][]Sample, len(Axes)),
		History:      h.Entries(),
		LastSnapshot: h.LastRecorded(),
	}
	for _, a := range Axes {
		samples := axes[a].Samples
		if samples == nil {
			samples = []Sample{}
		}
		ps.Axes[a] = samples
	}
	data, err := json.Marshal(ps)
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return data, nil
}

// decodeState parses and validates a blob. Any shape problem, a version
// mismatch, or a save time outside [now−maxAge, now] is an error.
func decodeState(data []byte, now time.Time, maxAge time.Duration) (persistedState, error) {
	var ps persistedState
	if err := json.Unmarshal(data, &ps); err != nil {
		return ps, fmt.Errorf("decode state: %w", err)
	}
	if ps.Version != blobVersion {
		return ps, fmt.Errorf("state version %d, want %d", ps.Version, blobVersion)
	}
	if ps.SavedAt.IsZero() {
		return ps, fmt.Errorf("state has no save time")
	}
	if ps.SavedAt.After(now) {
		return ps, fmt.Errorf("state saved in the future (%s)", ps.SavedAt.Format(time.RFC3339))
	}
	if maxAge > 0 && now.Sub(ps.SavedAt) > maxAge {
		return ps, fmt.Errorf("state is stale (saved %s)", ps.SavedAt.Format(time.RFC3339))
	}
	for _, a := range Axes {
		samples, ok := ps.Axes[a]
		if !ok {
			return ps, fmt.Errorf("state missing axis %s", a)
		}
		for _, s := range samples {
			if s.Timestamp.IsZero() || !finite(s.Weight) {
				return ps, fmt.Errorf("state has invalid %s sample", a)
			}
		}
	}
	for _, snap := range ps.History {
		if snap.Timestamp.IsZero() || !finite(snap.Composite) {
			return ps, fmt.Errorf("state has invalid snapshot")
		}
	}
	return ps, nil
}

// blobWriter saves blobs on its own goroutine. Only the newest pending blob
// is kept; an older unsaved one is superseded.
type blobWriter struct {
	p       Persister
	key     string
	pending chan []byte
	done    chan struct{}
}

func newBlobWriter(p Persister, key string) *blobWriter {
	w := &blobWriter{
		p:       p,
		key:     key,
		pending: make(chan []byte, 1),
		done:    make(chan struct{}),
	}
	go w.run()
	return w
}

// submit never blocks. Callers must serialize submit and close.
func (w *blobWriter) submit(data []byte) {
	for {
		select {
		case w.pending <- data:
			return
		default:
		}
		select {
		case <-w.pending:
		default:
		}
	}
}

func (w *blobWriter) run() {
	defer close(w.done)
	for data := range w.pending {
		if err := w.p.Save(w.key, data); err != nil {
			log.Printf("engine: save state: %v", err)
		}
	}
}

// close flushes the pending blob and waits for the writer to exit.
func (w *blobWriter) close() {
	close(w.pending)
	<-w.done
}
