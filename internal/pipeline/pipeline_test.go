package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jamaahin/docpipe/constants"
	"github.com/jamaahin/docpipe/internal/cache"
	"github.com/jamaahin/docpipe/internal/common"
	"github.com/jamaahin/docpipe/internal/entity"
	"github.com/jamaahin/docpipe/internal/progress"
)

type fakeEngine struct {
	mu    sync.Mutex
	calls []string
	fn    func(unit entity.RawUnit) *entity.Extraction
}

func (f *fakeEngine) Extract(_ context.Context, unit entity.RawUnit) *entity.Extraction {
	f.mu.Lock()
	f.calls = append(f.calls, unit.Label())
	f.mu.Unlock()
	if f.fn != nil {
		return f.fn(unit)
	}
	return &entity.Extraction{DocumentType: constants.DocTypeKTP, Nama: "BUDI SANTOSO", NoIdentitas: "3515082506920002"}
}

func (f *fakeEngine) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeRenderer struct {
	pages [][]byte
	err   error
	calls int
}

func (f *fakeRenderer) RenderPages(context.Context, []byte) ([][]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.pages, nil
}

func newTestPipeline(engine Extractor, renderer *fakeRenderer) (*Pipeline, *progress.Tracker) {
	tracker := progress.NewTracker(nil)
	return New(cache.New(16, time.Minute), renderer, engine, tracker, nil, nil), tracker
}

func TestProcessSingleImage(t *testing.T) {
	eng := &fakeEngine{}
	p, tracker := newTestPipeline(eng, &fakeRenderer{})

	res, err := p.Process(context.Background(), "sess1", []entity.Upload{{Filename: "ktp.jpg", Data: []byte("img")}})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.TotalFiles != 1 || res.Successful != 1 || res.Failed != 0 {
		t.Fatalf("counts = %d/%d/%d", res.TotalFiles, res.Successful, res.Failed)
	}
	if len(res.Records) != 1 || res.Records[0].Nama != "BUDI SANTOSO" {
		t.Fatalf("records = %+v", res.Records)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("warnings rows = %d, want one per record", len(res.Warnings))
	}
	out := res.FileOutcomes[0]
	if out.Status != constants.FileStatusSuccess || out.DocumentType != constants.DocTypeKTP || out.Cached {
		t.Errorf("outcome = %+v", out)
	}

	snap, ok := tracker.Get("sess1")
	if !ok || !snap.Done || snap.Status != constants.StatusComplete {
		t.Errorf("progress snapshot = %+v ok=%v", snap, ok)
	}
	if snap.Current != 1 || len(snap.CompletedFiles) != 1 {
		t.Errorf("progress counters = %+v", snap)
	}
}

func TestProcessImageCacheHit(t *testing.T) {
	eng := &fakeEngine{}
	p, _ := newTestPipeline(eng, &fakeRenderer{})
	up := []entity.Upload{{Filename: "ktp.jpg", Data: []byte("same-bytes")}}

	if _, err := p.Process(context.Background(), "s1", up); err != nil {
		t.Fatalf("first Process: %v", err)
	}
	res, err := p.Process(context.Background(), "s2", up)
	if err != nil {
		t.Fatalf("second Process: %v", err)
	}
	if eng.callCount() != 1 {
		t.Fatalf("engine calls = %d, want 1 (second run served from cache)", eng.callCount())
	}
	if !res.FileOutcomes[0].Cached {
		t.Error("outcome should be marked cached")
	}
	if len(res.Records) != 1 || res.Records[0].NoIdentitas != "3515082506920002" {
		t.Errorf("cached records = %+v", res.Records)
	}
	if res.CacheStats.Hits != 1 {
		t.Errorf("cache hits = %d, want 1", res.CacheStats.Hits)
	}
}

func TestProcessPartialImageFailsBatch(t *testing.T) {
	eng := &fakeEngine{fn: func(entity.RawUnit) *entity.Extraction {
		return &entity.Extraction{DocumentType: constants.DocTypeUnknown, Err: "quota exceeded", Partial: true}
	}}
	p, tracker := newTestPipeline(eng, &fakeRenderer{})

	res, err := p.Process(context.Background(), "sess", []entity.Upload{{Filename: "blur.jpg", Data: []byte("img")}})
	if err == nil {
		t.Fatal("want no-usable-records error")
	}
	var appErr *common.AppError
	if !errors.As(err, &appErr) || appErr.Code != common.CodeNoUsableRecords {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(appErr.Message, "quota exceeded") {
		t.Errorf("detail %q should carry the file error", appErr.Message)
	}
	if res == nil || res.Failed != 1 || len(res.FileOutcomes) != 1 {
		t.Fatalf("result = %+v", res)
	}
	if res.FileOutcomes[0].Status != constants.FileStatusFailed || res.FileOutcomes[0].Error != "quota exceeded" {
		t.Errorf("outcome = %+v", res.FileOutcomes[0])
	}

	snap, _ := tracker.Get("sess")
	if !snap.Done || snap.Status != constants.StatusError {
		t.Errorf("progress should finish in error: %+v", snap)
	}
}

func TestProcessUselessImageIsSuccessButNotMerged(t *testing.T) {
	eng := &fakeEngine{fn: func(unit entity.RawUnit) *entity.Extraction {
		if unit.Filename == "blank.jpg" {
			return &entity.Extraction{DocumentType: constants.DocTypeUnknown}
		}
		return &entity.Extraction{DocumentType: constants.DocTypeKTP, Nama: "SITI AMINAH", NoIdentitas: "3515086812880001"}
	}}
	p, _ := newTestPipeline(eng, &fakeRenderer{})

	uploads := []entity.Upload{
		{Filename: "blank.jpg", Data: []byte("blank")},
		{Filename: "ktp.jpg", Data: []byte("ktp")},
	}
	res, err := p.Process(context.Background(), "sess", uploads)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.Successful != 2 || res.Failed != 0 {
		t.Fatalf("counts = %d/%d", res.Successful, res.Failed)
	}
	if len(res.Records) != 1 || res.Records[0].Nama != "SITI AMINAH" {
		t.Fatalf("records = %+v", res.Records)
	}
	for _, o := range res.FileOutcomes {
		if o.Filename == "blank.jpg" && o.DocumentType != constants.DocTypeUnknown {
			t.Errorf("blank outcome = %+v", o)
		}
	}

	// The empty result must not be cached, so the blank file is retried.
	if _, err := p.Process(context.Background(), "sess2", uploads[:1]); err == nil {
		t.Fatal("reprocessing only the blank file should yield no records")
	}
	blankCalls := 0
	for _, label := range eng.calls {
		if label == "blank.jpg" {
			blankCalls++
		}
	}
	if blankCalls != 2 {
		t.Errorf("blank.jpg extracted %d times, want 2", blankCalls)
	}
}

func TestProcessPDFKeepsUsefulPages(t *testing.T) {
	eng := &fakeEngine{fn: func(unit entity.RawUnit) *entity.Extraction {
		if unit.Page == 2 {
			return &entity.Extraction{DocumentType: constants.DocTypeUnknown}
		}
		return &entity.Extraction{
			DocumentType: constants.DocTypeVisa,
			Nama:         "BUDI SANTOSO",
			NoVisa:       "12345678" + string(rune('0'+unit.Page)),
		}
	}}
	rend := &fakeRenderer{pages: [][]byte{[]byte("p1"), []byte("p2"), []byte("p3")}}
	p, _ := newTestPipeline(eng, rend)

	res, err := p.Process(context.Background(), "sess", []entity.Upload{{Filename: "visa.pdf", Data: []byte("pdf")}})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if rend.calls != 1 {
		t.Fatalf("render calls = %d", rend.calls)
	}
	if eng.callCount() != 3 {
		t.Fatalf("engine calls = %d, want one per page", eng.callCount())
	}
	out := res.FileOutcomes[0]
	if out.Status != constants.FileStatusSuccess || out.DocumentType != constants.DocTypePDF {
		t.Fatalf("outcome = %+v", out)
	}
	// Pages 1 and 3 merge into one person with the first visa number kept.
	if len(res.Records) != 1 || res.Records[0].NoVisa == "" {
		t.Fatalf("records = %+v", res.Records)
	}
}

func TestProcessPDFNoUsefulPagesStillSucceeds(t *testing.T) {
	eng := &fakeEngine{fn: func(entity.RawUnit) *entity.Extraction {
		return &entity.Extraction{DocumentType: constants.DocTypeUnknown, Err: "unreadable", Partial: true}
	}}
	rend := &fakeRenderer{pages: [][]byte{[]byte("p1")}}
	p, _ := newTestPipeline(eng, rend)

	res, err := p.Process(context.Background(), "sess", []entity.Upload{{Filename: "scan.pdf", Data: []byte("pdf")}})
	if err == nil {
		t.Fatal("batch with no records should error")
	}
	out := res.FileOutcomes[0]
	if out.Status != constants.FileStatusSuccess || out.DocumentType != constants.DocTypePDF {
		t.Errorf("pdf outcome = %+v, want success even with zero usable pages", out)
	}
	if res.Successful != 1 {
		t.Errorf("successful = %d", res.Successful)
	}
}

func TestProcessPDFRenderFailure(t *testing.T) {
	rend := &fakeRenderer{err: errors.New("pdftoppm: damaged file")}
	p, _ := newTestPipeline(&fakeEngine{}, rend)

	res, err := p.Process(context.Background(), "sess", []entity.Upload{{Filename: "bad.pdf", Data: []byte("pdf")}})
	if err == nil {
		t.Fatal("want no-usable-records error")
	}
	out := res.FileOutcomes[0]
	if out.Status != constants.FileStatusFailed || !strings.Contains(out.Error, "pdftoppm") {
		t.Errorf("outcome = %+v", out)
	}
}

func TestProcessMergesAcrossFiles(t *testing.T) {
	eng := &fakeEngine{fn: func(unit entity.RawUnit) *entity.Extraction {
		if unit.Filename == "ktp.jpg" {
			return &entity.Extraction{DocumentType: constants.DocTypeKTP, Nama: "BUDI SANTOSO", NoIdentitas: "3515082506920002"}
		}
		return &entity.Extraction{DocumentType: constants.DocTypePaspor, Nama: "BUDI SANTOSO", NoPaspor: "C1234567"}
	}}
	p, _ := newTestPipeline(eng, &fakeRenderer{})

	uploads := []entity.Upload{
		{Filename: "ktp.jpg", Data: []byte("a")},
		{Filename: "paspor.jpg", Data: []byte("b")},
	}
	res, err := p.Process(context.Background(), "sess", uploads)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(res.Records) != 1 {
		t.Fatalf("merged records = %d, want 1", len(res.Records))
	}
	rec := res.Records[0]
	if rec.NoIdentitas == "" || rec.NoPaspor != "C1234567" {
		t.Errorf("merge lost fields: %+v", rec)
	}
	if len(res.Warnings) != len(res.Records) {
		t.Errorf("warnings rows = %d, records = %d", len(res.Warnings), len(res.Records))
	}
}

func TestNoUsableDetail(t *testing.T) {
	outcomes := []entity.FileOutcome{
		{Filename: "a.gif", Status: constants.FileStatusFailed, Error: "Invalid file type: .gif"},
		{Filename: "b.jpg", Status: constants.FileStatusSuccess},
		{Filename: "c.jpg", Status: constants.FileStatusFailed, Error: "quota exceeded"},
	}
	got := NoUsableDetail(outcomes)
	want := "No documents could be processed successfully. Invalid file type: .gif; quota exceeded"
	if got != want {
		t.Errorf("detail = %q, want %q", got, want)
	}
}
