package engine

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"
)

// CompositeState is the engine's externally visible state. It is fully
// derivable from the axis samples, the settings, and LastCalculated.
type CompositeState struct {
	Axes           map[Axis]AxisState `json:"axes"`
	Circadian      float64            `json:"circadian"`
	Composite      float64            `json:"composite"`
	Level          Level              `json:"level"`
	LastCalculated time.Time          `json:"last_calculated"`
}

func (s CompositeState) clone() CompositeState {
	out := s
	out.Axes = make(map[Axis]AxisState, len(s.Axes))
	for a, st := range s.Axes {
		out.Axes[a] = st.clone()
	}
	return out
}

// Subscriber receives the state after every tick and replay. A returned
// error is logged and affects only this subscriber.
type Subscriber interface {
	Notify(CompositeState) error
}

// ErrSubscriberBusy is returned by subscribers that cannot keep up and are
// dropping states.
var ErrSubscriberBusy = errors.New("subscriber busy")

// SubscriberFunc adapts a function to the Subscriber interface.
type SubscriberFunc func(CompositeState) error

func (f SubscriberFunc) Notify(s CompositeState) error { return f(s) }

// LoadSource records where the engine's initial state came from.
type LoadSource string

const (
	SourcePersisted LoadSource = "persisted"
	SourceReplay    LoadSource = "replay"
	SourceCold      LoadSource = "cold"
)

// Options configure a new Engine. Only Settings is required.
type Options struct {
	Settings  SettingsSource
	Persister Persister        // nil disables persistence
	Events    EventLog         // nil disables replay on startup
	Clock     func() time.Time // stamps AddSample; defaults to time.Now
	Key       string           // persistence key; defaults to StateKey
	Debug     bool
}

type subscription struct {
	id  uint64
	sub Subscriber
}

// Engine owns the drift state. All mutation is serialized by mu; the engine
// never schedules itself, callers drive it with Tick.
type Engine struct {
	settings SettingsSource
	clock    func() time.Time
	debug    bool

	mu      sync.Mutex
	axes    [len(Axes)]AxisState
	state   CompositeState
	history History
	source  LoadSource
	writer  *blobWriter
	closed  bool

	// notifyMu keeps broadcasts in tick order without holding mu.
	notifyMu sync.Mutex

	subMu   sync.Mutex
	subs    []subscription
	nextSub uint64
}

// New creates an engine and synchronously restores its state: first from the
// persisted blob, then by replaying the event log, and otherwise cold.
func New(opts Options) *Engine {
	if opts.Settings == nil {
		opts.Settings = NewStaticSettings(DefaultSettings())
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Key == "" {
		opts.Key = StateKey
	}

	e := &Engine{
		settings: opts.Settings,
		clock:    opts.Clock,
		debug:    opts.Debug,
	}
	e.restore(opts.Persister, opts.Key, opts.Events)
	if opts.Persister != nil {
		e.writer = newBlobWriter(opts.Persister, opts.Key)
	}
	return e
}

func (e *Engine) restore(p Persister, key string, events EventLog) {
	now := e.clock()
	s := e.settings.Settings()

	if p != nil {
		data, ok, err := p.Load(key)
		switch {
		case err != nil:
			log.Printf("engine: load state: %v", err)
		case !ok:
			e.debugf("engine: no persisted state")
		default:
			ps, err := decodeState(data, now, s.Lookback)
			if err != nil {
				log.Printf("engine: discarding persisted state: %v", err)
				break
			}
			for _, a := range Axes {
				e.axes[a] = AxisState{Samples: ps.Axes[a]}
			}
			e.history.restore(ps.History, ps.LastSnapshot)
			e.recompute(now, s)
			e.source = SourcePersisted
			return
		}
	}

	if events != nil {
		evs, err := events.HistoricalEvents(now.Add(-s.Lookback))
		if err != nil {
			log.Printf("engine: load event log: %v", err)
		} else if len(evs) > 0 {
			e.reconstruct(evs, now, s)
			e.source = SourceReplay
			log.Printf("engine: rebuilt state from %d events", len(evs))
			return
		}
	}

	e.recompute(now, s)
	e.source = SourceCold
}

// AddSample appends a sample stamped with the engine clock. Non-finite
// weights and unknown axes are dropped.
func (e *Engine) AddSample(axis Axis, weight float64) {
	if !axis.Valid() {
		e.debugf("engine: dropping sample for unknown %s", axis)
		return
	}
	if !finite(weight) {
		e.debugf("engine: dropping non-finite %s sample (%v)", axis, weight)
		return
	}
	e.mu.Lock()
	e.axes[axis].Samples = insertSample(e.axes[axis].Samples, Sample{Timestamp: e.clock(), Weight: weight})
	e.mu.Unlock()
}

// Ingest appends the samples for a watch event at the event's own timestamp,
// using the same mapping as replay.
func (e *Engine) Ingest(ev HistoricalEvent) {
	samples := SamplesForEvent(ev)
	if len(samples) == 0 || ev.Timestamp.IsZero() {
		e.debugf("engine: dropping empty event %q", ev.ID)
		return
	}
	e.mu.Lock()
	for _, as := range samples {
		e.axes[as.Axis].Samples = insertSample(e.axes[as.Axis].Samples, as.Sample)
	}
	e.mu.Unlock()
}

// insertSample keeps samples ordered by timestamp; equal timestamps keep
// arrival order.
func insertSample(samples []Sample, s Sample) []Sample {
	i := sort.Search(len(samples), func(i int) bool {
		return samples[i].Timestamp.After(s.Timestamp)
	})
	samples = append(samples, Sample{})
	copy(samples[i+1:], samples[i:])
	samples[i] = s
	return samples
}

// Tick evicts, recomputes, conditionally snapshots, persists and broadcasts.
func (e *Engine) Tick(now time.Time) CompositeState {
	e.mu.Lock()
	s := e.settings.Settings()
	st := e.recompute(now, s)
	if e.history.Due(now, s.Snapshot) {
		e.history.Record(Snapshot{Timestamp: now, Composite: st.Composite, Level: st.Level}, s.Snapshot)
	}
	e.persist(now)

	e.notifyMu.Lock()
	e.mu.Unlock()
	defer e.notifyMu.Unlock()
	e.broadcast(st)
	return st
}

// ReconstructFromHistory discards all samples and rebuilds them from events.
// BehaviorPattern evidence is live-only and is cleared.
func (e *Engine) ReconstructFromHistory(events []HistoricalEvent, now time.Time) CompositeState {
	e.mu.Lock()
	s := e.settings.Settings()
	st := e.reconstruct(events, now, s)
	e.persist(now)

	e.notifyMu.Lock()
	e.mu.Unlock()
	defer e.notifyMu.Unlock()
	e.broadcast(st)
	return st
}

// Replay rebuilds state from the events in src within the configured
// lookback of now.
func (e *Engine) Replay(src EventLog, now time.Time) (CompositeState, error) {
	lookback := e.settings.Settings().Lookback
	events, err := src.HistoricalEvents(now.Add(-lookback))
	if err != nil {
		return CompositeState{}, fmt.Errorf("load event log: %w", err)
	}
	return e.ReconstructFromHistory(events, now), nil
}

func (e *Engine) reconstruct(events []HistoricalEvent, now time.Time, s Settings) CompositeState {
	rebuilt := Reconstruct(events, now, s.Lookback)
	for _, a := range Axes {
		e.axes[a] = AxisState{Samples: rebuilt[a]}
	}
	return e.recompute(now, s)
}

// recompute is the pure core: samples + settings + now -> state.
func (e *Engine) recompute(now time.Time, s Settings) CompositeState {
	var values [len(Axes)]float64
	axes := make(map[Axis]AxisState, len(Axes))
	for _, a := range Axes {
		p := s.Axes[a]
		st := &e.axes[a]
		st.HalfLife = p.HalfLife
		st.Samples = Evict(st.Samples, now, p.HalfLife)
		st.Value = AxisValue(st.Samples, now, p)
		values[a] = st.Value
		axes[a] = st.clone()
	}

	wall := now
	if s.Location != nil {
		wall = now.In(s.Location)
	}
	circadian := CircadianValue(wall, s.BedtimeHour)
	composite := Blend(values, circadian, s.Weights, s.Circadian)

	e.state = CompositeState{
		Axes:           axes,
		Circadian:      circadian,
		Composite:      composite,
		Level:          Classify(composite),
		LastCalculated: now,
	}
	return e.state.clone()
}

func (e *Engine) persist(now time.Time) {
	if e.writer == nil || e.closed {
		return
	}
	data, err := encodeState(e.axes, &e.history, now)
	if err != nil {
		log.Printf("engine: %v", err)
		return
	}
	e.writer.submit(data)
}

// State returns the last computed state without recomputing.
func (e *Engine) State() CompositeState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.clone()
}

// History returns the retained snapshots, oldest first.
func (e *Engine) History() []Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.Entries()
}

// DayAverage returns the mean composite over the retained snapshots.
func (e *Engine) DayAverage() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.DayAverage()
}

// Source reports where the initial state was loaded from.
func (e *Engine) Source() LoadSource {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.source
}

// Subscribe registers sub for state broadcasts. The returned function
// removes it and is safe to call more than once.
func (e *Engine) Subscribe(sub Subscriber) (cancel func()) {
	e.subMu.Lock()
	e.nextSub++
	id := e.nextSub
	e.subs = append(e.subs, subscription{id: id, sub: sub})
	e.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.subMu.Lock()
			defer e.subMu.Unlock()
			for i, s := range e.subs {
				if s.id == id {
					e.subs = append(e.subs[:i:i], e.subs[i+1:]...)
					return
				}
			}
		})
	}
}

func (e *Engine) broadcast(st CompositeState) {
	e.subMu.Lock()
	subs := append([]subscription(nil), e.subs...)
	e.subMu.Unlock()

	for _, s := range subs {
		if err := notify(s.sub, st.clone()); err != nil {
			log.Printf("engine: notify subscriber %d: %v", s.id, err)
		}
	}
}

func notify(sub Subscriber, st CompositeState) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("subscriber panic: %v", r)
		}
	}()
	return sub.Notify(st)
}

// Close stops persistence after flushing the newest pending state.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	w := e.writer
	e.mu.Unlock()

	if w != nil {
		w.close()
	}
}

func (e *Engine) debugf(format string, args ...any) {
	if e.debug {
		log.Printf(format, args...)
	}
}
