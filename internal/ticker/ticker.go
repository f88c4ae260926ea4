// Package ticker drives periodic engine recomputation.
package ticker

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/lazypower/seastate/internal/engine"
)

// Target is the thing being ticked, normally *engine.Engine.
type Target interface {
	Tick(now time.Time) engine.CompositeState
}

// Loop calls Target.Tick on a fixed interval until stopped.
type Loop struct {
	target   Target
	interval time.Duration
	clock    func() time.Time

	startOnce sync.Once
	stopOnce  sync.Once
	stopCh    chan struct{}
	done      chan struct{}
}

// New returns a stopped loop.
func New(target Target, interval time.Duration) *Loop {
	return &Loop{
		target:   target,
		interval: interval,
		clock:    time.Now,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start ticks once synchronously and then every interval on a goroutine.
// The loop ends when ctx is cancelled or Stop is called.
func (l *Loop) Start(ctx context.Context) {
	l.startOnce.Do(func() {
		st := l.target.Tick(l.clock())
		log.Printf("ticker: started every %s (composite %.3f, %s)", l.interval, st.Composite, st.Level)

		go func() {
			defer close(l.done)
			t := time.NewTicker(l.interval)
			defer t.Stop()

			for {
				select {
				case <-t.C:
					l.target.Tick(l.clock())
				case <-ctx.Done():
					return
				case <-l.stopCh:
					return
				}
			}
		}()
	})
}

// Stop ends the loop and waits for an in-flight tick to finish. It is safe
// to call more than once, and before Start.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() { close(l.stopCh) })
	started := true
	l.startOnce.Do(func() {
		started = false
		close(l.done)
	})
	if started {
		<-l.done
	}
}
