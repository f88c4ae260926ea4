package cli

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lazypower/seastate/internal/engine"
	"github.com/lazypower/seastate/internal/server"
	"github.com/lazypower/seastate/internal/store"
)

var testNow = time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

// run executes the root command with args and returns its stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		configPath, serverURL = "", ""
		statusJSON, historyJSON, replayJSON = false, false, false
		replayNow, watchRating, watchVideoID, watchTitle = "", "", "", ""
		watchAgo = 0
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func testServer(t *testing.T) (string, *engine.Engine) {
	t.Helper()
	db, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	eng := engine.New(engine.Options{Events: db})
	t.Cleanup(eng.Close)
	ts := httptest.NewServer(server.New(db, eng, "test"))
	t.Cleanup(ts.Close)
	return ts.URL, eng
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "seastate dev") {
		t.Errorf("output = %q", out)
	}
}

func TestSampleAndStatus(t *testing.T) {
	url, eng := testServer(t)

	if _, err := run(t, "--url", url, "sample", "time_pressure", "60"); err != nil {
		t.Fatalf("sample: %v", err)
	}
	eng.Tick(time.Now())

	out, err := run(t, "--url", url, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	for _, want := range []string{"time_pressure", "1 samples", "updated"} {
		if !strings.Contains(out, want) {
			t.Errorf("status output missing %q:\n%s", want, out)
		}
	}

	out, err = run(t, "--url", url, "status", "--json")
	if err != nil {
		t.Fatalf("status --json: %v", err)
	}
	var st engine.CompositeState
	if err := json.Unmarshal([]byte(out), &st); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(st.Axes[engine.TimePressure].Samples) != 1 {
		t.Errorf("state = %+v", st)
	}
}

func TestSampleRejectsBadInput(t *testing.T) {
	url, _ := testServer(t)
	if _, err := run(t, "--url", url, "sample", "mood", "1"); err == nil {
		t.Error("unknown axis accepted")
	}
	if _, err := run(t, "--url", url, "sample", "time_pressure", "lots"); err == nil {
		t.Error("bad weight accepted")
	}
}

func TestWatchNavigateHistory(t *testing.T) {
	url, eng := testServer(t)

	out, err := run(t, "--url", url, "watch", "25", "--rating", "unproductive", "--ago", "10m")
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	if !strings.HasPrefix(out, "recorded watch ") {
		t.Errorf("watch output = %q", out)
	}
	if _, err := run(t, "--url", url, "navigate", "autoplay"); err != nil {
		t.Fatalf("navigate: %v", err)
	}
	if _, err := run(t, "--url", url, "navigate", "warp"); err == nil {
		t.Error("unknown navigation kind accepted")
	}

	st := eng.Tick(time.Now())
	if len(st.Axes[engine.ContentQuality].Samples) != 1 || len(st.Axes[engine.BehaviorPattern].Samples) != 1 {
		t.Errorf("engine axes = %+v", st.Axes)
	}

	out, err = run(t, "--url", url, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "day average") {
		t.Errorf("history output:\n%s", out)
	}
}

func TestStatusServerDown(t *testing.T) {
	if _, err := run(t, "--url", "http://127.0.0.1:1", "status"); err == nil {
		t.Error("expected error with no server")
	}
}

func TestReplayOffline(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "seastate.db")
	t.Setenv("SEASTATE_DB", dbPath)

	db, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	productive := "productive"
	for _, ev := range []struct {
		row *store.WatchEvent
		at  time.Time
	}{
		{&store.WatchEvent{ID: "a", MinutesWatched: 30, Rating: &productive}, testNow.Add(-time.Hour)},
		{&store.WatchEvent{ID: "old", MinutesWatched: 90}, testNow.Add(-30 * time.Hour)},
	} {
		if err := db.AddWatchEvent(ev.row, ev.at); err != nil {
			t.Fatal(err)
		}
	}
	db.Close()

	args := []string{"--config", filepath.Join(dir, "none.yaml"), "replay", "--now", testNow.Format(time.RFC3339), "--json"}
	out, err := run(t, args...)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	var st engine.CompositeState
	if err := json.Unmarshal([]byte(out), &st); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	tp := st.Axes[engine.TimePressure].Samples
	if len(tp) != 1 || tp[0].Weight != 30 {
		t.Errorf("time_pressure = %+v", tp)
	}

	// Same inputs, same output.
	again, err := run(t, args...)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if again != out {
		t.Error("replay output is not reproducible")
	}
}

func TestPrintHistoryEmpty(t *testing.T) {
	var buf bytes.Buffer
	printHistory(&buf, server.HistoryResponse{}, testNow)
	if !strings.Contains(buf.String(), "No snapshots") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestIngest(t *testing.T) {
	url, eng := testServer(t)

	rootCmd.SetIn(strings.NewReader(strings.Join([]string{
		`{"type":"watch","minutes_watched":30,"rating":"unproductive"}`,
		`{"type":"navigation","kind":"autoplay"}`,
		`{"type":"navigation","kind":"teleport"}`,
	}, "\n")))
	out, err := run(t, "--url", url, "ingest")
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if !strings.Contains(out, "2 forwarded, 1 skipped, 0 failed") {
		t.Errorf("output = %q", out)
	}

	st := eng.Tick(time.Now())
	for _, a := range engine.Axes {
		if n := len(st.Axes[a].Samples); n != 1 {
			t.Errorf("%s has %d samples, want 1", a, n)
		}
	}
}
