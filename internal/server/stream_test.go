package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lazypower/seastate/internal/engine"
)

func readEvent(t *testing.T, r *bufio.Reader) engine.CompositeState {
	t.Helper()
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("read stream: %v", err)
		}
		if data, ok := strings.CutPrefix(line, "data: "); ok {
			var st engine.CompositeState
			if err := json.Unmarshal([]byte(data), &st); err != nil {
				t.Fatalf("decode event: %v", err)
			}
			return st
		}
	}
}

func TestStream(t *testing.T) {
	srv, eng := testServer(t)
	ts := httptest.NewServer(srv)
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, "GET", ts.URL+"/api/stream", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET stream: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Content-Type = %q", ct)
	}

	r := bufio.NewReader(resp.Body)
	if first := readEvent(t, r); first.Composite != 0 {
		t.Errorf("initial composite = %v, want 0", first.Composite)
	}

	eng.AddSample(engine.TimePressure, 60)
	eng.Tick(testNow)
	if next := readEvent(t, r); next.Composite <= 0 {
		t.Errorf("broadcast composite = %v, want > 0", next.Composite)
	}
}

func TestStreamSubscriberBusy(t *testing.T) {
	sub := newStreamSubscriber()
	for i := 0; i < streamBuffer; i++ {
		if err := sub.Notify(engine.CompositeState{}); err != nil {
			t.Fatalf("notify %d: %v", i, err)
		}
	}
	if err := sub.Notify(engine.CompositeState{}); !errors.Is(err, engine.ErrSubscriberBusy) {
		t.Errorf("full buffer err = %v, want ErrSubscriberBusy", err)
	}
}
