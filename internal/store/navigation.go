package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lazypower/seastate/internal/engine"
)

// NavigationEvent is a recorded navigation signal. These rows are an audit
// trail only; replay never reads them.
type NavigationEvent struct {
	ID         string  `db:"id" json:"id"`
	Kind       string  `db:"kind" json:"kind"`
	Weight     float64 `db:"weight" json:"weight"`
	OccurredAt int64   `db:"occurred_at" json:"occurred_at"`
}

// AddNavigationEvent records a navigation signal and returns the stored row.
func (db *DB) AddNavigationEvent(kind engine.NavigationKind, at time.Time) (*NavigationEvent, error) {
	w, err := engine.NavigationWeight(kind)
	if err != nil {
		return nil, err
	}
	ev := &NavigationEvent{
		ID:         uuid.NewString(),
		Kind:       string(kind),
		Weight:     w,
		OccurredAt: at.UnixMilli(),
	}
	_, err = db.NamedExec(`
		INSERT INTO navigation_events (id, kind, weight, occurred_at)
		VALUES (:id, :kind, :weight, :occurred_at)
	`, ev)
	if err != nil {
		return nil, fmt.Errorf("insert navigation event: %w", err)
	}
	return ev, nil
}

// NavigationEvents returns navigation events at or after since, oldest first.
func (db *DB) NavigationEvents(since time.Time) ([]NavigationEvent, error) {
	var events []NavigationEvent
	err := db.Select(&events, `
		SELECT id, kind, weight, occurred_at FROM navigation_events
		WHERE occurred_at >= ? ORDER BY occurred_at, id
	`, since.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("list navigation events: %w", err)
	}
	return events, nil
}
