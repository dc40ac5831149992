// Package server exposes the document pipeline over HTTP: multipart intake,
// progress polling and streaming, health, and metrics.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/jamaahin/docpipe/internal/metrics"
	"github.com/jamaahin/docpipe/internal/pipeline"
	"github.com/jamaahin/docpipe/internal/progress"
	"github.com/jamaahin/docpipe/internal/store"
)

// Server holds the handlers' collaborators. The archiver may be nil, in
// which case finalized batches are not persisted.
type Server struct {
	pipeline *pipeline.Pipeline
	tracker  *progress.Tracker
	archiver store.Archiver
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func New(p *pipeline.Pipeline, tracker *progress.Tracker, archiver store.Archiver, m *metrics.Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if m == nil {
		m = metrics.NewNop()
	}
	return &Server{
		pipeline: p,
		tracker:  tracker,
		archiver: archiver,
		metrics:  m,
		logger:   logger,
	}
}

// Handler builds the route table wrapped in logging and metrics middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/documents/process", s.handleProcess)
	mux.HandleFunc("GET /api/documents/progress/{session_id}", s.handleProgress)
	mux.HandleFunc("GET /api/documents/progress/{session_id}/stream", s.handleProgressStream)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", metrics.Handler())
	return s.withRequestID(s.withLogging(s.withMetrics(mux)))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("server.write_response_fail", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
