package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jamaahin/docpipe/constants"
	"github.com/jamaahin/docpipe/internal/cache"
	"github.com/jamaahin/docpipe/internal/entity"
	"github.com/jamaahin/docpipe/internal/pipeline"
	"github.com/jamaahin/docpipe/internal/progress"
)

type stubEngine struct {
	fn func(unit entity.RawUnit) *entity.Extraction
}

func (s *stubEngine) Extract(_ context.Context, unit entity.RawUnit) *entity.Extraction {
	if s.fn != nil {
		return s.fn(unit)
	}
	return &entity.Extraction{DocumentType: constants.DocTypeKTP, Nama: "BUDI SANTOSO", NoIdentitas: "3515082506920002"}
}

type stubRenderer struct{}

func (stubRenderer) RenderPages(context.Context, []byte) ([][]byte, error) {
	return nil, errors.New("renderer not wired in this test")
}

func newTestServer(fn func(unit entity.RawUnit) *entity.Extraction) (*Server, *progress.Tracker) {
	tracker := progress.NewTracker(nil)
	p := pipeline.New(cache.New(16, time.Minute), stubRenderer{}, &stubEngine{fn: fn}, tracker, nil, nil)
	return New(p, tracker, nil, nil, nil), tracker
}

type uploadPart struct {
	name string
	data []byte
}

func multipartBody(t *testing.T, sessionID string, parts []uploadPart) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if sessionID != "" {
		if err := mw.WriteField("session_id", sessionID); err != nil {
			t.Fatal(err)
		}
	}
	for _, p := range parts {
		fw, err := mw.CreateFormFile("files", p.name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write(p.data); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

type apiResponse struct {
	Status      string               `json:"status"`
	Message     string               `json:"message"`
	TotalFiles  int                  `json:"total_files"`
	Successful  int                  `json:"successful"`
	Failed      int                  `json:"failed"`
	Data        []json.RawMessage    `json:"data"`
	FileResults []entity.FileOutcome `json:"file_results"`
	SessionID   string               `json:"session_id"`
}

func postProcess(t *testing.T, srv *Server, sessionID string, parts []uploadPart) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, sessionID, parts)
	req := httptest.NewRequest(http.MethodPost, "/api/documents/process", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestProcessEndpoint(t *testing.T) {
	srv, _ := newTestServer(nil)
	rec := postProcess(t, srv, "sess4321", []uploadPart{
		{name: "note.gif", data: []byte("gif")},
		{name: "ktp.jpg", data: []byte("img")},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var resp apiResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "success" || resp.SessionID != "sess4321" {
		t.Errorf("status=%q session=%q", resp.Status, resp.SessionID)
	}
	if resp.TotalFiles != 2 || resp.Successful != 1 || resp.Failed != 1 {
		t.Errorf("counts = %d/%d/%d", resp.TotalFiles, resp.Successful, resp.Failed)
	}
	if resp.Message != "Processed 1 documents, consolidated to 1 unique records" {
		t.Errorf("message = %q", resp.Message)
	}
	if len(resp.Data) != 1 {
		t.Errorf("data rows = %d", len(resp.Data))
	}
	// Edge rejections come first in file_results.
	if len(resp.FileResults) != 2 || resp.FileResults[0].Filename != "note.gif" {
		t.Fatalf("file_results = %+v", resp.FileResults)
	}
	if resp.FileResults[0].Error != "Invalid file type: .gif" {
		t.Errorf("edge error = %q", resp.FileResults[0].Error)
	}
}

func TestProcessEndpointGeneratesSessionID(t *testing.T) {
	srv, _ := newTestServer(nil)
	rec := postProcess(t, srv, "", []uploadPart{{name: "ktp.jpg", data: []byte("img")}})

	var resp apiResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.SessionID) != 8 {
		t.Errorf("generated session id = %q", resp.SessionID)
	}
}

func TestProcessEndpointNoFiles(t *testing.T) {
	srv, _ := newTestServer(nil)
	rec := postProcess(t, srv, "", nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No files provided") {
		t.Errorf("body = %s", rec.Body)
	}
}

func TestProcessEndpointTooManyFiles(t *testing.T) {
	srv, _ := newTestServer(nil)
	parts := make([]uploadPart, constants.MaxFilesPerRequest+1)
	for i := range parts {
		parts[i] = uploadPart{name: fmt.Sprintf("f%d.jpg", i), data: []byte("x")}
	}
	rec := postProcess(t, srv, "", parts)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	want := "Maksimum 50 file per upload. Anda mengirim 51 file."
	if !strings.Contains(rec.Body.String(), want) {
		t.Errorf("body = %s", rec.Body)
	}
}

func TestProcessEndpointOversizeFile(t *testing.T) {
	srv, _ := newTestServer(nil)
	big := bytes.Repeat([]byte("a"), constants.MaxFileSizeBytes+1)
	rec := postProcess(t, srv, "", []uploadPart{{name: "huge.jpg", data: big}})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "File too large: 10.0MB (max 10MB)") {
		t.Errorf("body = %s", rec.Body)
	}
}

func TestProcessEndpointNoUsableRecords(t *testing.T) {
	srv, tracker := newTestServer(func(entity.RawUnit) *entity.Extraction {
		return &entity.Extraction{DocumentType: constants.DocTypeUnknown, Err: "quota exceeded", Partial: true}
	})
	rec := postProcess(t, srv, "failsess", []uploadPart{{name: "blur.jpg", data: []byte("img")}})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "No documents could be processed successfully.") || !strings.Contains(body, "quota exceeded") {
		t.Errorf("body = %s", body)
	}
	snap, ok := tracker.Get("failsess")
	if !ok || snap.Status != constants.StatusError || !snap.Done {
		t.Errorf("progress = %+v ok=%v", snap, ok)
	}
}

func TestProgressPoll(t *testing.T) {
	srv, tracker := newTestServer(nil)
	tracker.Start("poll1234", 3)

	req := httptest.NewRequest(http.MethodGet, "/api/documents/progress/poll1234", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var snap progress.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatal(err)
	}
	if snap.Total != 3 || snap.Status != constants.StatusStarting {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestProgressPollUnknownSession(t *testing.T) {
	srv, _ := newTestServer(nil)
	req := httptest.NewRequest(http.MethodGet, "/api/documents/progress/nope1234", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Session not found") {
		t.Errorf("body = %s", rec.Body)
	}
}

func TestProgressStreamFinishedSession(t *testing.T) {
	srv, tracker := newTestServer(nil)
	tracker.Start("strm1234", 1)
	tracker.UnitDone("strm1234", "ktp.jpg", true)
	tracker.Finish("strm1234", constants.StatusComplete)

	// A canceled context skips the post-done linger, so the handler returns
	// right after emitting the terminal events.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/documents/progress/strm1234/stream", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Errorf("content-type = %q", got)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "event: progress") || !strings.Contains(body, `"status":"complete"`) {
		t.Errorf("body = %q", body)
	}
	if !strings.Contains(body, "event: done") {
		t.Errorf("missing done event: %q", body)
	}
	if _, ok := tracker.Get("strm1234"); ok {
		t.Error("session should be cleared after the done event")
	}
}

func TestProgressStreamUnknownSession(t *testing.T) {
	srv, _ := newTestServer(nil)
	req := httptest.NewRequest(http.MethodGet, "/api/documents/progress/ghost123/stream", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, "event: error") || !strings.Contains(body, "Session not found") {
		t.Errorf("body = %q", body)
	}
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("status = %d body = %s", rec.Code, rec.Body)
	}
}
