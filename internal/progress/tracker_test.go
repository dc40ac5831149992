package progress

import (
	"testing"
	"time"

	"github.com/jamaahin/docpipe/constants"
)

func TestTrackerLifecycle(t *testing.T) {
	tr := NewTracker(nil)
	tr.Start("abc12345", 3)

	snap, ok := tr.Get("abc12345")
	if !ok {
		t.Fatal("session missing after Start")
	}
	if snap.Total != 3 || snap.Status != constants.StatusStarting || snap.Done {
		t.Fatalf("unexpected start snapshot: %+v", snap)
	}
	if snap.CompletedFiles == nil || snap.FailedFiles == nil {
		t.Error("file lists must be empty, not nil")
	}

	tr.SetStatus("abc12345", constants.StatusProcessing)
	tr.SetCurrentFile("abc12345", "ktp.jpg")
	tr.UnitDone("abc12345", "ktp.jpg", true)
	tr.UnitDone("abc12345", "paspor.pdf#page1", false)

	snap, _ = tr.Get("abc12345")
	if snap.Current != 2 {
		t.Errorf("current = %d, want 2", snap.Current)
	}
	if snap.CurrentFile != "paspor.pdf#page1" {
		t.Errorf("current_file = %q, want last finished unit", snap.CurrentFile)
	}
	if len(snap.CompletedFiles) != 1 || snap.CompletedFiles[0] != "ktp.jpg" {
		t.Errorf("completed = %v", snap.CompletedFiles)
	}
	if len(snap.FailedFiles) != 1 || snap.FailedFiles[0] != "paspor.pdf#page1" {
		t.Errorf("failed = %v", snap.FailedFiles)
	}

	tr.Finish("abc12345", constants.StatusComplete)
	snap, _ = tr.Get("abc12345")
	if !snap.Done || snap.Status != constants.StatusComplete || snap.CurrentFile != "" {
		t.Errorf("unexpected final snapshot: %+v", snap)
	}

	tr.Clear("abc12345")
	if _, ok := tr.Get("abc12345"); ok {
		t.Error("session should be gone after Clear")
	}
}

func TestTrackerGetReturnsCopy(t *testing.T) {
	tr := NewTracker(nil)
	tr.Start("s1", 1)
	tr.UnitDone("s1", "a.jpg", true)

	snap, _ := tr.Get("s1")
	snap.CompletedFiles[0] = "mutated"

	again, _ := tr.Get("s1")
	if again.CompletedFiles[0] != "a.jpg" {
		t.Error("snapshot slices must not alias tracker state")
	}
}

func TestTrackerUnknownSession(t *testing.T) {
	tr := NewTracker(nil)
	if _, ok := tr.Get("nope"); ok {
		t.Fatal("unknown session should report not found")
	}
}

func TestTrackerWriteAutoCreates(t *testing.T) {
	tr := NewTracker(nil)
	tr.SetStatus("fresh", constants.StatusMerging)

	snap, ok := tr.Get("fresh")
	if !ok || snap.Status != constants.StatusMerging {
		t.Fatalf("auto-created session snapshot: %+v ok=%v", snap, ok)
	}
}

func TestTrackerSweep(t *testing.T) {
	tr := NewTracker(nil)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tr.now = func() time.Time { return base }
	tr.Start("stale", 1)

	tr.now = func() time.Time { return base.Add(20 * time.Minute) }
	tr.Start("live", 1)

	if n := tr.sweep(base.Add(5 * time.Minute)); n != 1 {
		t.Fatalf("swept %d sessions, want 1", n)
	}
	if _, ok := tr.Get("stale"); ok {
		t.Error("stale session survived the sweep")
	}
	if _, ok := tr.Get("live"); !ok {
		t.Error("live session was swept")
	}
}

func TestNewSessionID(t *testing.T) {
	id := NewSessionID()
	if len(id) != 8 {
		t.Fatalf("session id %q length = %d, want 8", id, len(id))
	}
	if id == NewSessionID() {
		t.Error("session ids should not repeat")
	}
}
