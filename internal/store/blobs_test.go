package store

import (
	"testing"

	"github.com/lazypower/seastate/internal/engine"
)

var _ engine.Persister = (*DB)(nil)

func TestLoadMissing(t *testing.T) {
	db := testDB(t)
	data, ok, err := db.Load(engine.StateKey)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ok || data != nil {
		t.Errorf("Load of missing key = %q, %v", data, ok)
	}
}

func TestSaveOverwrites(t *testing.T) {
	db := testDB(t)
	if err := db.Save("state", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := db.Save("state", []byte(`{"a":2}`)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, ok, err := db.Load("state")
	if err != nil || !ok {
		t.Fatalf("Load = %v, %v", ok, err)
	}
	if string(got) != `{"a":2}` {
		t.Errorf("Load = %s, want the second save", got)
	}

	var n int
	if err := db.Get(&n, "SELECT COUNT(*) FROM engine_blobs"); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("engine_blobs has %d rows, want 1", n)
	}
}
