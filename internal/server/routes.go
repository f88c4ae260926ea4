package server

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"math"
	"net/http"
	"time"

	"github.com/lazypower/seastate/internal/engine"
	"github.com/lazypower/seastate/internal/store"
)

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.State())
}

// HistoryResponse is the body of GET /api/history.
type HistoryResponse struct {
	Snapshots  []engine.Snapshot `json:"snapshots"`
	DayAverage float64           `json:"day_average"`
	Level      engine.Level      `json:"day_level"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	snaps := s.engine.History()
	if snaps == nil {
		snaps = []engine.Snapshot{}
	}
	avg := s.engine.DayAverage()
	writeJSON(w, http.StatusOK, HistoryResponse{
		Snapshots:  snaps,
		DayAverage: avg,
		Level:      engine.Classify(avg),
	})
}

func (s *Server) handleLegacyDrift(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, engine.Legacy(s.engine.State()))
}

// SampleRequest is the body of POST /api/samples.
type SampleRequest struct {
	Axis   string  `json:"axis"`
	Weight float64 `json:"weight"`
}

func (s *Server) handleAddSample(w http.ResponseWriter, r *http.Request) {
	var req SampleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	axis, err := engine.ParseAxis(req.Axis)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if math.IsNaN(req.Weight) || math.IsInf(req.Weight, 0) {
		writeError(w, http.StatusBadRequest, "weight must be finite")
		return
	}

	s.engine.AddSample(axis, req.Weight)
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

// WatchRequest is the body of POST /api/watch.
type WatchRequest struct {
	VideoID        string     `json:"video_id"`
	Title          string     `json:"title"`
	MinutesWatched float64    `json:"minutes_watched"`
	Rating         string     `json:"rating"`
	WatchedAt      *time.Time `json:"watched_at,omitempty"`
}

func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	var req WatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if _, err := engine.ParseRating(req.Rating); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	at := s.clock()
	if req.WatchedAt != nil {
		if req.WatchedAt.After(at) {
			writeError(w, http.StatusBadRequest, "watched_at is in the future")
			return
		}
		at = *req.WatchedAt
	}

	ev := &store.WatchEvent{
		VideoID:        req.VideoID,
		Title:          req.Title,
		MinutesWatched: req.MinutesWatched,
	}
	if req.Rating != "" {
		ev.Rating = &req.Rating
	}
	if err := s.db.AddWatchEvent(ev, at); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.engine.Ingest(ev.Historical())
	writeJSON(w, http.StatusCreated, ev)
}

// NavigationRequest is the body of POST /api/navigation.
type NavigationRequest struct {
	Kind string `json:"kind"`
}

func (s *Server) handleNavigation(w http.ResponseWriter, r *http.Request) {
	var req NavigationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	kind := engine.NavigationKind(req.Kind)
	weight, err := engine.NavigationWeight(kind)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ev, err := s.db.AddNavigationEvent(kind, s.clock())
	if err != nil {
		// The audit row is best-effort; the live signal still counts.
		log.Printf("server: record navigation: %v", err)
	}
	s.engine.AddSample(engine.BehaviorPattern, weight)

	if ev == nil {
		ev = &store.NavigationEvent{Kind: req.Kind, Weight: weight}
	}
	writeJSON(w, http.StatusCreated, ev)
}

// ReplayRequest is the optional body of POST /api/replay.
type ReplayRequest struct {
	Now *time.Time `json:"now,omitempty"`
}

func (s *Server) handleReplay(w http.ResponseWriter, r *http.Request) {
	// The body is optional; an empty one replays at the server clock.
	var req ReplayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	now := s.clock()
	if req.Now != nil {
		now = *req.Now
	}

	st, err := s.engine.Replay(s.db, now)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, st)
}
