package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/lazypower/seastate/internal/engine"
)

// streamBuffer is how many undelivered states a stream holds before it
// starts reporting itself busy.
const streamBuffer = 8

type streamSubscriber struct {
	id string
	ch chan engine.CompositeState
}

func newStreamSubscriber() *streamSubscriber {
	return &streamSubscriber{
		id: uuid.NewString(),
		ch: make(chan engine.CompositeState, streamBuffer),
	}
}

// Notify never blocks the engine.
func (s *streamSubscriber) Notify(st engine.CompositeState) error {
	select {
	case s.ch <- st:
		return nil
	default:
		return fmt.Errorf("stream %s: %w", s.id, engine.ErrSubscriberBusy)
	}
}

// handleStream sends the current state, then every broadcast, as
// server-sent events until the client disconnects.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	sub := newStreamSubscriber()
	cancel := s.engine.Subscribe(sub)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if err := writeEvent(w, s.engine.State()); err != nil {
		return
	}
	flusher.Flush()

	for {
		select {
		case st := <-sub.ch:
			if err := writeEvent(w, st); err != nil {
				log.Printf("server: stream %s: %v", sub.id, err)
				return
			}
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}

func writeEvent(w http.ResponseWriter, st engine.CompositeState) error {
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: state\ndata: %s\n\n", data)
	return err
}
