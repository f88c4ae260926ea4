package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lazypower/seastate/internal/engine"
	"github.com/lazypower/seastate/internal/store"
)

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func decodeState(t *testing.T, w *httptest.ResponseRecorder) engine.CompositeState {
	t.Helper()
	var st engine.CompositeState
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode state: %v; body: %s", err, w.Body.String())
	}
	return st
}

func TestGetState(t *testing.T) {
	srv, eng := testServer(t)
	eng.AddSample(engine.TimePressure, 60)
	eng.Tick(testNow)

	w := do(t, srv, "GET", "/api/state", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", w.Code, w.Body.String())
	}
	st := decodeState(t, w)
	if st.Level != engine.Calm {
		t.Errorf("level = %s, want Calm", st.Level)
	}
	if got := st.Axes[engine.TimePressure].Value; got != 0.5 {
		t.Errorf("time_pressure value = %v, want 0.5", got)
	}
	if !strings.Contains(w.Body.String(), `"level":"Calm"`) {
		t.Errorf("level not encoded by name: %s", w.Body.String())
	}
}

func TestAddSample(t *testing.T) {
	srv, eng := testServer(t)

	w := do(t, srv, "POST", "/api/samples", `{"axis":"content_quality","weight":0.35}`)
	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d; body: %s", w.Code, w.Body.String())
	}
	st := eng.Tick(testNow)
	if n := len(st.Axes[engine.ContentQuality].Samples); n != 1 {
		t.Errorf("content_quality samples = %d, want 1", n)
	}
}

func TestAddSampleRejects(t *testing.T) {
	srv, _ := testServer(t)
	for _, body := range []string{`{"axis":"mood","weight":1}`, `not json`, `{"axis":"time_pressure","weight":"lots"}`} {
		if w := do(t, srv, "POST", "/api/samples", body); w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", body, w.Code)
		}
	}
}

func TestWatch(t *testing.T) {
	srv, eng := testServer(t)

	body := `{"video_id":"abc","title":"Lecture 4","minutes_watched":30,"rating":"unproductive","watched_at":"2026-03-10T13:30:00Z"}`
	w := do(t, srv, "POST", "/api/watch", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d; body: %s", w.Code, w.Body.String())
	}
	var resp map[string]any
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["id"] == "" || resp["rating"] != "unproductive" {
		t.Errorf("response = %v", resp)
	}

	st := eng.Tick(testNow)
	tp := st.Axes[engine.TimePressure].Samples
	if len(tp) != 1 || tp[0].Weight != 30 || !tp[0].Timestamp.Equal(testNow.Add(-30*time.Minute)) {
		t.Errorf("time_pressure samples = %+v", tp)
	}
	if cq := st.Axes[engine.ContentQuality].Samples; len(cq) != 1 || cq[0].Weight != 0.35 {
		t.Errorf("content_quality samples = %+v", cq)
	}
}

func TestWatchRejects(t *testing.T) {
	srv, _ := testServer(t)
	bad := []string{
		`{"minutes_watched":10,"rating":"great"}`,
		`{"minutes_watched":-5}`,
		`{"minutes_watched":10,"watched_at":"2026-03-11T00:00:00Z"}`,
		`{`,
	}
	for _, body := range bad {
		if w := do(t, srv, "POST", "/api/watch", body); w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", body, w.Code)
		}
	}
}

func TestWatchAtEpoch(t *testing.T) {
	srv, _ := testServer(t)

	w := do(t, srv, "POST", "/api/watch", `{"minutes_watched":10,"watched_at":"1970-01-01T00:00:00Z"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d; body: %s", w.Code, w.Body.String())
	}
	var ev store.WatchEvent
	if err := json.Unmarshal(w.Body.Bytes(), &ev); err != nil {
		t.Fatal(err)
	}
	if ev.WatchedAt != 0 {
		t.Errorf("watched_at = %d, want 0", ev.WatchedAt)
	}
}

func TestNavigation(t *testing.T) {
	srv, eng := testServer(t)

	w := do(t, srv, "POST", "/api/navigation", `{"kind":"autoplay"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d; body: %s", w.Code, w.Body.String())
	}
	st := eng.Tick(testNow)
	bp := st.Axes[engine.BehaviorPattern].Samples
	if len(bp) != 1 || bp[0].Weight != 0.15 {
		t.Errorf("behavior_pattern samples = %+v", bp)
	}

	if w := do(t, srv, "POST", "/api/navigation", `{"kind":"teleport"}`); w.Code != http.StatusBadRequest {
		t.Errorf("unknown kind: status = %d, want 400", w.Code)
	}
}

func TestReplayEndpoint(t *testing.T) {
	srv, eng := testServer(t)

	do(t, srv, "POST", "/api/watch", `{"minutes_watched":60,"watched_at":"2026-03-10T13:00:00Z"}`)
	do(t, srv, "POST", "/api/navigation", `{"kind":"shorts"}`)

	w := do(t, srv, "POST", "/api/replay", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", w.Code, w.Body.String())
	}
	st := decodeState(t, w)
	if n := len(st.Axes[engine.TimePressure].Samples); n != 1 {
		t.Errorf("time_pressure samples = %d, want 1", n)
	}
	if n := len(st.Axes[engine.BehaviorPattern].Samples); n != 0 {
		t.Errorf("behavior_pattern samples = %d, want 0 after replay", n)
	}
	if eng.State().Composite != st.Composite {
		t.Error("replay response does not match engine state")
	}

	// Replaying a day later finds nothing in the window.
	w = do(t, srv, "POST", "/api/replay", `{"now":"2026-03-11T14:00:01Z"}`)
	if st := decodeState(t, w); st.Composite != 0 {
		t.Errorf("composite a day later = %v, want 0", st.Composite)
	}
}

func TestReplayEmptyChunkedBody(t *testing.T) {
	srv, _ := testServer(t)

	for _, body := range []string{"", "  \n"} {
		req := httptest.NewRequest("POST", "/api/replay", io.NopCloser(strings.NewReader(body)))
		req.ContentLength = -1
		req.Header.Set("Transfer-Encoding", "chunked")
		w := httptest.NewRecorder()
		srv.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("body %q: status = %d; body: %s", body, w.Code, w.Body.String())
		}
	}

	if w := do(t, srv, "POST", "/api/replay", `{"now":`); w.Code != http.StatusBadRequest {
		t.Errorf("truncated body: status = %d, want 400", w.Code)
	}
}

func TestHistoryEndpoint(t *testing.T) {
	srv, eng := testServer(t)
	eng.AddSample(engine.TimePressure, 120)
	eng.Tick(testNow)
	eng.Tick(testNow.Add(30 * time.Minute))

	w := do(t, srv, "GET", "/api/history", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp HistoryResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Snapshots) != 2 {
		t.Errorf("snapshots = %d, want 2", len(resp.Snapshots))
	}
	if resp.DayAverage <= 0 || resp.Level != engine.Classify(resp.DayAverage) {
		t.Errorf("day average %v level %s", resp.DayAverage, resp.Level)
	}
}

func TestHistoryEmpty(t *testing.T) {
	srv, _ := testServer(t)
	w := do(t, srv, "GET", "/api/history", "")
	if !strings.Contains(w.Body.String(), `"snapshots":[]`) {
		t.Errorf("empty history body = %s", w.Body.String())
	}
}

func TestLegacyDrift(t *testing.T) {
	srv, eng := testServer(t)
	eng.AddSample(engine.TimePressure, 240)
	eng.AddSample(engine.ContentQuality, 1)
	eng.AddSample(engine.BehaviorPattern, 1)
	eng.Tick(testNow)

	w := do(t, srv, "GET", "/api/legacy/drift", "")
	var resp engine.LegacyDrift
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Drift != 1 || resp.Level != "storm" {
		t.Errorf("legacy = %+v, want drift 1 level storm", resp)
	}
}
