package store

import (
	"fmt"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "engine_blobs: key-value store for engine state",
		SQL: `
CREATE TABLE engine_blobs (
    key        TEXT PRIMARY KEY,
    value      BLOB NOT NULL,
    updated_at INTEGER NOT NULL
);
`,
	},
	{
		Version:     2,
		Description: "watch_events: durable watch history for replay",
		SQL: `
CREATE TABLE watch_events (
    id              TEXT PRIMARY KEY,
    video_id        TEXT NOT NULL DEFAULT '',
    title           TEXT NOT NULL DEFAULT '',
    minutes_watched REAL NOT NULL,
    rating          TEXT CHECK (rating IN ('productive', 'neutral', 'unproductive')),
    watched_at      INTEGER NOT NULL,
    created_at      INTEGER NOT NULL
);

CREATE INDEX idx_watch_watched_at ON watch_events(watched_at);
CREATE INDEX idx_watch_video      ON watch_events(video_id);
`,
	},
	{
		Version:     3,
		Description: "navigation_events: live navigation signals (audit only)",
		SQL: `
CREATE TABLE navigation_events (
    id          TEXT PRIMARY KEY,
    kind        TEXT NOT NULL,
    weight      REAL NOT NULL,
    occurred_at INTEGER NOT NULL
);

CREATE INDEX idx_nav_occurred_at ON navigation_events(occurred_at);
`,
	},
}

func (db *DB) migrate() error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_versions (
			version     INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at  INTEGER NOT NULL DEFAULT (strftime('%s', 'now') * 1000)
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_versions: %w", err)
	}

	for _, m := range migrations {
		var count int
		if err := db.Get(&count, "SELECT COUNT(*) FROM schema_versions WHERE version = ?", m.Version); err != nil {
			return fmt.Errorf("check migration %d: %w", m.Version, err)
		}
		if count > 0 {
			continue
		}

		tx, err := db.Beginx()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}
		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}
		if _, err := tx.Exec(
			"INSERT INTO schema_versions (version, description) VALUES (?, ?)",
			m.Version, m.Description,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}

// SchemaVersion returns the current schema version.
func (db *DB) SchemaVersion() (int, error) {
	var version int
	err := db.Get(&version, "SELECT COALESCE(MAX(version), 0) FROM schema_versions")
	return version, err
}
