package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Load returns the blob stored under key. ok is false when the key has never
// been saved.
func (db *DB) Load(key string) ([]byte, bool, error) {
	var value []byte
	err := db.Get(&value, "SELECT value FROM engine_blobs WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load blob %q: %w", key, err)
	}
	return value, true, nil
}

// Save replaces the blob stored under key.
func (db *DB) Save(key string, value []byte) error {
	_, err := db.Exec(`
		INSERT INTO engine_blobs (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("save blob %q: %w", key, err)
	}
	return nil
}
