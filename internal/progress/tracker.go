// Package progress tracks per-session processing state for polling and SSE
// streaming. Sessions live in memory only; a janitor reaps sessions whose
// callers disappeared without finishing.
package progress

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jamaahin/docpipe/constants"
)

// Snapshot is the client-visible state of one processing session.
type Snapshot struct {
	Current        int                      `json:"current"`
	Total          int                      `json:"total"`
	Status         constants.ProgressStatus `json:"status"`
	CurrentFile    string                   `json:"current_file"`
	CompletedFiles []string                 `json:"completed_files"`
	FailedFiles    []string                 `json:"failed_files"`
	Done           bool                     `json:"done"`
}

type session struct {
	snap    Snapshot
	updated time.Time
}

// Tracker holds the progress snapshots for live sessions. All methods are
// safe for concurrent use; unit completions arrive from many goroutines in
// whatever order extraction finishes.
type Tracker struct {
	mu       sync.Mutex
	sessions map[string]*session
	logger   *slog.Logger
	now      func() time.Time
}

func NewTracker(logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		sessions: make(map[string]*session),
		logger:   logger,
		now:      time.Now,
	}
}

// NewSessionID returns the short session identifier handed to clients.
func NewSessionID() string {
	return uuid.NewString()[:8]
}

// Start registers (or resets) a session with the number of units to process.
func (t *Tracker) Start(sessionID string, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.ensureLocked(sessionID)
	s.snap = Snapshot{
		Total:          total,
		Status:         constants.StatusStarting,
		CompletedFiles: []string{},
		FailedFiles:    []string{},
	}
	s.updated = t.now()
}

// SetStatus moves the session to a new pipeline stage.
func (t *Tracker) SetStatus(sessionID string, status constants.ProgressStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.ensureLocked(sessionID)
	s.snap.Status = status
	s.updated = t.now()
}

// SetCurrentFile records the unit most recently picked up.
func (t *Tracker) SetCurrentFile(sessionID, file string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.ensureLocked(sessionID)
	s.snap.CurrentFile = file
	s.updated = t.now()
}

// UnitDone records one finished unit: the counter advances, the unit becomes
// the current file, and it is filed under completed or failed.
func (t *Tracker) UnitDone(sessionID, file string, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.ensureLocked(sessionID)
	s.snap.Current++
	s.snap.CurrentFile = file
	if ok {
		s.snap.CompletedFiles = append(s.snap.CompletedFiles, file)
	} else {
		s.snap.FailedFiles = append(s.snap.FailedFiles, file)
	}
	s.updated = t.now()
}

// Finish marks the session done with its terminal status.
func (t *Tracker) Finish(sessionID string, status constants.ProgressStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.ensureLocked(sessionID)
	s.snap.Status = status
	s.snap.CurrentFile = ""
	s.snap.Done = true
	s.updated = t.now()
}

// Get returns a copy of the session snapshot, or false for unknown sessions.
func (t *Tracker) Get(sessionID string) (Snapshot, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.sessions[sessionID]
	if !ok {
		return Snapshot{}, false
	}
	snap := s.snap
	snap.CompletedFiles = slices.Clone(s.snap.CompletedFiles)
	snap.FailedFiles = slices.Clone(s.snap.FailedFiles)
	return snap, true
}

// Clear drops a session.
func (t *Tracker) Clear(sessionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.sessions, sessionID)
}

// ensureLocked returns the session, creating a zero-value one if a write
// arrives for an unknown id. Callers hold t.mu.
func (t *Tracker) ensureLocked(sessionID string) *session {
	s, ok := t.sessions[sessionID]
	if !ok {
		s = &session{
			snap: Snapshot{
				Status:         constants.StatusStarting,
				CompletedFiles: []string{},
				FailedFiles:    []string{},
			},
			updated: t.now(),
		}
		t.sessions[sessionID] = s
	}
	return s
}

// RunJanitor sweeps sessions idle past the window until ctx is done.
// Streams and polls read snapshots without refreshing them, so only writers
// keep a session alive.
func (t *Tracker) RunJanitor(ctx context.Context, idle, every time.Duration) {
	if idle <= 0 {
		idle = 15 * time.Minute
	}
	if every <= 0 {
		every = time.Minute
	}
	tick := time.NewTicker(every)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			if n := t.sweep(t.now().Add(-idle)); n > 0 {
				t.logger.Info("progress.janitor.swept", "sessions", n)
			}
		}
	}
}

func (t *Tracker) sweep(olderThan time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	var n int
	for id, s := range t.sessions {
		if s.updated.Before(olderThan) {
			delete(t.sessions, id)
			n++
		}
	}
	return n
}
