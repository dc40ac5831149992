package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jamaahin/docpipe/internal/common"
)

// withRequestID tags every request with an ID, honoring one the caller sent
// in X-Request-ID. The ID rides the context into the pipeline and comes back
// on the response header.
func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(common.WithRequestID(r.Context(), reqID)))
	})
}

// withMetrics records request count, latency, and the in-flight gauge.
func (s *Server) withMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		s.metrics.HTTPRequestsInFlight.Inc()
		defer s.metrics.HTTPRequestsInFlight.Dec()

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		path := normalizePath(r.URL.Path)
		s.metrics.HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(sw.status)).Inc()
		s.metrics.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// withLogging writes one line per request. Health and scrape probes log at
// debug so they do not drown the interesting traffic.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		log := s.logger.Info
		if r.URL.Path == "/healthz" || r.URL.Path == "/metrics" {
			log = s.logger.Debug
		}
		log("http.request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"request_id", common.RequestIDFromContext(r.Context()),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	})
}

// statusWriter captures the response status code for logs and metrics. It
// passes Flush through so SSE keeps working behind the middleware.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (sw *statusWriter) WriteHeader(code int) {
	if !sw.wroteHeader {
		sw.status = code
		sw.wroteHeader = true
	}
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	if !sw.wroteHeader {
		sw.wroteHeader = true
	}
	return sw.ResponseWriter.Write(b)
}

func (sw *statusWriter) Flush() {
	if f, ok := sw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// normalizePath collapses per-session path segments so metric labels stay
// bounded.
func normalizePath(path string) string {
	rest, ok := strings.CutPrefix(path, "/api/documents/progress/")
	if !ok {
		return path
	}
	if strings.HasSuffix(rest, "/stream") {
		return "/api/documents/progress/{session_id}/stream"
	}
	return "/api/documents/progress/{session_id}"
}
