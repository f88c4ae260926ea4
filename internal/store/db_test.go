package store

import (
	"path/filepath"
	"testing"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenMemory(t *testing.T) {
	db := testDB(t)
	if db.Path != ":memory:" {
		t.Errorf("Path = %q, want :memory:", db.Path)
	}
}

func TestSchemaVersion(t *testing.T) {
	db := testDB(t)
	v, err := db.SchemaVersion()
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if v != len(migrations) {
		t.Errorf("SchemaVersion = %d, want %d", v, len(migrations))
	}
}

func TestTablesExist(t *testing.T) {
	db := testDB(t)
	for _, table := range []string{"schema_versions", "engine_blobs", "watch_events", "navigation_events"} {
		var name string
		err := db.Get(&name, "SELECT name FROM sqlite_master WHERE type='table' AND name=?", table)
		if err != nil {
			t.Errorf("table %q not found: %v", table, err)
		}
	}
}

func TestOpenFileReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "seastate.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := db.Save("k", []byte("v")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	db.Close()

	// Migrations are idempotent and data survives.
	db, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()
	got, ok, err := db.Load("k")
	if err != nil || !ok || string(got) != "v" {
		t.Errorf("Load after reopen = %q, %v, %v", got, ok, err)
	}
}
