package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const (
	streamPoll = 300 * time.Millisecond
	streamCap  = 10 * time.Minute
	// doneLinger keeps the snapshot around briefly after the done event so
	// a client that reconnects right at the end still sees it.
	doneLinger = 2 * time.Second
)

// handleProgress returns the current snapshot for one poll.
func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.tracker.Get(r.PathValue("session_id"))
	if !ok {
		s.writeError(w, http.StatusNotFound, "Session not found")
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

// handleProgressStream pushes snapshots over SSE until the session finishes,
// the client goes away, or the stream cap expires. Identical consecutive
// snapshots are not resent.
func (s *Server) handleProgressStream(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("session_id")
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ctx := r.Context()
	deadline := time.NewTimer(streamCap)
	defer deadline.Stop()
	tick := time.NewTicker(streamPoll)
	defer tick.Stop()

	var lastSent []byte
	for {
		snap, ok := s.tracker.Get(sessionID)
		if !ok {
			writeEvent(w, "error", []byte(`{"error":"Session not found"}`))
			flusher.Flush()
			return
		}
		payload, err := json.Marshal(snap)
		if err != nil {
			s.logger.Error("server.stream.encode_fail", "session_id", sessionID, "err", err)
			return
		}
		if string(payload) != string(lastSent) {
			writeEvent(w, "progress", payload)
			flusher.Flush()
			lastSent = payload
		}
		if snap.Done {
			writeEvent(w, "done", []byte(`{"status":"complete"}`))
			flusher.Flush()
			select {
			case <-ctx.Done():
			case <-time.After(doneLinger):
			}
			s.tracker.Clear(sessionID)
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-deadline.C:
			s.tracker.Clear(sessionID)
			return
		case <-tick.C:
		}
	}
}

func writeEvent(w http.ResponseWriter, event string, data []byte) {
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
}
