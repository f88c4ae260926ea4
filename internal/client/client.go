// Package client talks to a running seastate server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/lazypower/seastate/internal/engine"
	"github.com/lazypower/seastate/internal/server"
	"github.com/lazypower/seastate/internal/store"
)

const (
	DefaultServerURL = "http://127.0.0.1:37778"
	httpTimeout      = 5 * time.Second
)

// Client talks to the seastate server.
type Client struct {
	http      *http.Client
	serverURL string
}

// New creates a client for serverURL. An empty URL uses SEASTATE_URL, then
// http://127.0.0.1:37778.
func New(serverURL string) *Client {
	if serverURL == "" {
		serverURL = os.Getenv("SEASTATE_URL")
	}
	if serverURL == "" {
		serverURL = DefaultServerURL
	}
	return &Client{
		http:      &http.Client{Timeout: httpTimeout},
		serverURL: serverURL,
	}
}

// URL returns the server base URL.
func (c *Client) URL() string { return c.serverURL }

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.serverURL+path, body)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response %s: %w", path, err)
	}
	if resp.StatusCode >= 400 {
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, e.Error)
		}
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, data)
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response %s: %w", path, err)
		}
	}
	return nil
}

// Healthy checks if the server is reachable.
func (c *Client) Healthy(ctx context.Context) bool {
	return c.do(ctx, http.MethodGet, "/api/health", nil, nil) == nil
}

// State returns the server's current composite state.
func (c *Client) State(ctx context.Context) (engine.CompositeState, error) {
	var st engine.CompositeState
	err := c.do(ctx, http.MethodGet, "/api/state", nil, &st)
	return st, err
}

// History returns the retained snapshots and their average.
func (c *Client) History(ctx context.Context) (server.HistoryResponse, error) {
	var h server.HistoryResponse
	err := c.do(ctx, http.MethodGet, "/api/history", nil, &h)
	return h, err
}

// AddSample appends a raw sample on axis.
func (c *Client) AddSample(ctx context.Context, axis engine.Axis, weight float64) error {
	return c.do(ctx, http.MethodPost, "/api/samples", server.SampleRequest{Axis: axis.String(), Weight: weight}, nil)
}

// Watch records a watch event and returns the stored row.
func (c *Client) Watch(ctx context.Context, req server.WatchRequest) (store.WatchEvent, error) {
	var ev store.WatchEvent
	err := c.do(ctx, http.MethodPost, "/api/watch", req, &ev)
	return ev, err
}

// Navigate records a navigation signal.
func (c *Client) Navigate(ctx context.Context, kind engine.NavigationKind) error {
	return c.do(ctx, http.MethodPost, "/api/navigation", server.NavigationRequest{Kind: string(kind)}, nil)
}

// Replay asks the server to rebuild its state from the event log. A zero
// now uses the server's clock.
func (c *Client) Replay(ctx context.Context, now time.Time) (engine.CompositeState, error) {
	var req server.ReplayRequest
	if !now.IsZero() {
		req.Now = &now
	}
	var st engine.CompositeState
	err := c.do(ctx, http.MethodPost, "/api/replay", req, &st)
	return st, err
}
