package store

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/lazypower/seastate/internal/engine"
)

// WatchEvent is one row of the watch history.
type WatchEvent struct {
	ID             string  `db:"id" json:"id"`
	VideoID        string  `db:"video_id" json:"video_id"`
	Title          string  `db:"title" json:"title"`
	MinutesWatched float64 `db:"minutes_watched" json:"minutes_watched"`
	Rating         *string `db:"rating" json:"rating,omitempty"`
	WatchedAt      int64   `db:"watched_at" json:"watched_at"`
	CreatedAt      int64   `db:"created_at" json:"created_at"`
}

// Historical converts the row into the engine's replay input.
func (e WatchEvent) Historical() engine.HistoricalEvent {
	h := engine.HistoricalEvent{
		ID:             e.ID,
		Timestamp:      time.UnixMilli(e.WatchedAt),
		MinutesWatched: e.MinutesWatched,
	}
	if e.Rating != nil {
		h.Rating = engine.Rating(*e.Rating)
	}
	return h
}

// AddWatchEvent records a watch that happened at watchedAt, or now when
// watchedAt is the zero time. An empty ID gets a new UUID and an empty rating
// is stored as NULL.
func (db *DB) AddWatchEvent(ev *WatchEvent, watchedAt time.Time) error {
	if math.IsNaN(ev.MinutesWatched) || math.IsInf(ev.MinutesWatched, 0) || ev.MinutesWatched < 0 {
		return fmt.Errorf("invalid minutes watched %v", ev.MinutesWatched)
	}
	if ev.Rating != nil {
		if _, err := engine.ParseRating(*ev.Rating); err != nil {
			return err
		}
		if *ev.Rating == "" {
			ev.Rating = nil
		}
	}

	now := time.Now()
	if watchedAt.IsZero() {
		watchedAt = now
	}
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	ev.WatchedAt = watchedAt.UnixMilli()
	ev.CreatedAt = now.UnixMilli()

	_, err := db.NamedExec(`
		INSERT INTO watch_events (id, video_id, title, minutes_watched, rating, watched_at, created_at)
		VALUES (:id, :video_id, :title, :minutes_watched, :rating, :watched_at, :created_at)
	`, ev)
	if err != nil {
		return fmt.Errorf("insert watch event: %w", err)
	}
	return nil
}

// WatchEvents returns the events watched at or after since, oldest first.
func (db *DB) WatchEvents(since time.Time) ([]WatchEvent, error) {
	var events []WatchEvent
	err := db.Select(&events, `
		SELECT id, video_id, title, minutes_watched, rating, watched_at, created_at
		FROM watch_events WHERE watched_at >= ?
		ORDER BY watched_at, id
	`, since.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("list watch events: %w", err)
	}
	return events, nil
}

// HistoricalEvents implements engine.EventLog.
func (db *DB) HistoricalEvents(since time.Time) ([]engine.HistoricalEvent, error) {
	rows, err := db.WatchEvents(since)
	if err != nil {
		return nil, err
	}
	out := make([]engine.HistoricalEvent, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Historical())
	}
	return out, nil
}

// PruneWatchEvents deletes events watched before cutoff and returns how many
// were removed.
func (db *DB) PruneWatchEvents(cutoff time.Time) (int64, error) {
	res, err := db.Exec("DELETE FROM watch_events WHERE watched_at < ?", cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("prune watch events: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
