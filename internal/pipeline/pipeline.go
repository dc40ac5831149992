// Package pipeline orchestrates one document batch end to end: cache lookup,
// PDF page fan-out, engine dispatch, and the sanitize, merge, and validate
// stages that consolidate raw extractions into the final roster.
package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jamaahin/docpipe/constants"
	"github.com/jamaahin/docpipe/internal/cache"
	"github.com/jamaahin/docpipe/internal/common"
	"github.com/jamaahin/docpipe/internal/entity"
	"github.com/jamaahin/docpipe/internal/merge"
	"github.com/jamaahin/docpipe/internal/metrics"
	"github.com/jamaahin/docpipe/internal/ocr"
	"github.com/jamaahin/docpipe/internal/progress"
	"github.com/jamaahin/docpipe/internal/sanitize"
	"github.com/jamaahin/docpipe/internal/validate"
)

// Extractor produces the field map for one unit. The dispatcher implements
// this with retries and engine fallback; exhausted attempts come back as a
// partial extraction, never an error.
type Extractor interface {
	Extract(ctx context.Context, unit entity.RawUnit) *entity.Extraction
}

// Pipeline runs uploaded batches through extraction and consolidation.
type Pipeline struct {
	cache    *cache.ResultCache
	renderer ocr.PDFRenderer
	engine   Extractor
	tracker  *progress.Tracker
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func New(c *cache.ResultCache, renderer ocr.PDFRenderer, engine Extractor, tracker *progress.Tracker, m *metrics.Metrics, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if m == nil {
		m = metrics.NewNop()
	}
	return &Pipeline{
		cache:    c,
		renderer: renderer,
		engine:   engine,
		tracker:  tracker,
		metrics:  m,
		logger:   logger,
	}
}

// fileResult pairs one upload's outcome with the records it yielded.
type fileResult struct {
	outcome entity.FileOutcome
	records []*entity.Record
}

// Process runs one batch and assembles the batch result. Files are processed
// concurrently; per-file outcomes land in completion order. The returned
// error is non-nil only when the whole batch yielded no usable record, and
// the result still carries the outcomes so callers can report what failed.
func (p *Pipeline) Process(ctx context.Context, sessionID string, uploads []entity.Upload) (*entity.BatchResult, error) {
	ctx = common.WithSessionID(ctx, sessionID)
	p.tracker.Start(sessionID, len(uploads))
	p.tracker.SetStatus(sessionID, constants.StatusProcessing)
	p.logger.Info("pipeline.batch.start", "session_id", sessionID, "files", len(uploads))

	results := make(chan fileResult)
	var wg sync.WaitGroup
	for _, up := range uploads {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.tracker.SetCurrentFile(sessionID, up.Filename)
			results <- p.processOne(ctx, up)
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	outcomes := make([]entity.FileOutcome, 0, len(uploads))
	var raw []*entity.Record
	for res := range results {
		outcomes = append(outcomes, res.outcome)
		raw = append(raw, res.records...)
		ok := res.outcome.Status == constants.FileStatusSuccess
		p.metrics.FilesProcessedTotal.WithLabelValues(string(res.outcome.Status)).Inc()
		p.tracker.UnitDone(sessionID, res.outcome.Filename, ok)
	}
	p.tracker.SetStatus(sessionID, constants.StatusPostProcessing)

	result := &entity.BatchResult{
		Records:      []*entity.Record{},
		Warnings:     [][]entity.Warning{},
		FileOutcomes: outcomes,
		CacheStats:   p.cache.Stats(),
		SessionID:    sessionID,
		TotalFiles:   len(uploads),
	}
	for _, o := range outcomes {
		if o.Status == constants.FileStatusSuccess {
			result.Successful++
		} else {
			result.Failed++
		}
	}

	if len(raw) == 0 {
		p.tracker.Finish(sessionID, constants.StatusError)
		p.logger.Warn("pipeline.batch.empty", "session_id", sessionID, "files", len(uploads))
		return result, common.NewAppError(common.CodeNoUsableRecords, NoUsableDetail(outcomes), common.ErrNoUsefulData)
	}

	result.Records, result.Warnings = p.finalize(sessionID, raw)
	p.tracker.Finish(sessionID, constants.StatusComplete)
	return result, nil
}

// processOne handles one upload: cache check, then the PDF or image path.
func (p *Pipeline) processOne(ctx context.Context, up entity.Upload) fileResult {
	hash := cache.ComputeHash(up.Data)
	cached, wasCached := p.cache.Get(hash)
	if wasCached {
		p.metrics.CacheHitsTotal.Inc()
	} else {
		p.metrics.CacheMissesTotal.Inc()
	}

	if constants.NormalizeExt(filepath.Ext(up.Filename)) == "pdf" {
		return p.processPDF(ctx, up, hash, cached, wasCached)
	}
	return p.processImage(ctx, up, hash, cached, wasCached)
}

// processPDF renders the document and extracts every page concurrently. Page
// extractions never fail the file: unreadable pages are dropped, and the file
// reports success even when no page yielded anything. Only a render error
// fails a PDF.
func (p *Pipeline) processPDF(ctx context.Context, up entity.Upload, hash string, cached []*entity.Record, wasCached bool) fileResult {
	if wasCached {
		return fileResult{
			outcome: entity.FileOutcome{Filename: up.Filename, Status: constants.FileStatusSuccess, DocumentType: constants.DocTypePDF, Cached: true},
			records: cached,
		}
	}

	pages, err := p.renderer.RenderPages(ctx, up.Data)
	if err != nil {
		p.logger.Error("pipeline.pdf.render_fail", "file", up.Filename, "err", err)
		return fileResult{outcome: entity.FileOutcome{Filename: up.Filename, Status: constants.FileStatusFailed, Error: err.Error()}}
	}
	p.logger.Info("pipeline.pdf.rendered", "file", up.Filename, "pages", len(pages))

	extractions := make([]*entity.Extraction, len(pages))
	var wg sync.WaitGroup
	for i, page := range pages {
		wg.Add(1)
		go func() {
			defer wg.Done()
			extractions[i] = p.engine.Extract(ctx, entity.RawUnit{Filename: up.Filename, Page: i + 1, Image: page})
		}()
	}
	wg.Wait()

	var records []*entity.Record
	for i, x := range extractions {
		useful := x.Useful()
		p.logger.Debug("pipeline.pdf.page",
			"file", up.Filename,
			"page", i+1,
			"document_type", x.DocumentType,
			"useful", useful,
		)
		if useful {
			records = append(records, entity.RecordFromExtraction(x))
		}
	}
	p.logger.Info("pipeline.pdf.done", "file", up.Filename, "pages", len(pages), "kept", len(records))

	// Empty results stay out of the cache so a rescan can try again.
	if len(records) > 0 {
		p.cache.Put(hash, records)
	}
	return fileResult{
		outcome: entity.FileOutcome{Filename: up.Filename, Status: constants.FileStatusSuccess, DocumentType: constants.DocTypePDF},
		records: records,
	}
}

// processImage extracts a single photo. A partial extraction fails the file;
// a readable image with nothing identifying on it counts as processed but is
// kept out of the cache and the merge.
func (p *Pipeline) processImage(ctx context.Context, up entity.Upload, hash string, cached []*entity.Record, wasCached bool) fileResult {
	if wasCached {
		return fileResult{
			outcome: entity.FileOutcome{Filename: up.Filename, Status: constants.FileStatusSuccess, DocumentType: docTypeOf(cached), Cached: true},
			records: cached,
		}
	}

	x := p.engine.Extract(ctx, entity.RawUnit{Filename: up.Filename, Image: up.Data})
	if x.Partial {
		msg := x.Err
		if msg == "" {
			msg = "extraction failed"
		}
		return fileResult{outcome: entity.FileOutcome{Filename: up.Filename, Status: constants.FileStatusFailed, Error: msg}}
	}
	if !x.Useful() {
		p.logger.Warn("pipeline.image.no_data", "file", up.Filename, "document_type", x.DocumentType)
		return fileResult{outcome: entity.FileOutcome{Filename: up.Filename, Status: constants.FileStatusSuccess, DocumentType: constants.DocTypeUnknown}}
	}

	rec := entity.RecordFromExtraction(x)
	p.cache.Put(hash, []*entity.Record{rec})
	return fileResult{
		outcome: entity.FileOutcome{Filename: up.Filename, Status: constants.FileStatusSuccess, DocumentType: rec.JenisIdentitas},
		records: []*entity.Record{rec},
	}
}

// finalize runs the post-extraction stages over the raw records and returns
// the merged roster with per-record validation warnings.
func (p *Pipeline) finalize(sessionID string, raw []*entity.Record) ([]*entity.Record, [][]entity.Warning) {
	p.tracker.SetStatus(sessionID, constants.StatusSanitizing)
	sanitized := make([]*entity.Record, 0, len(raw))
	for _, rec := range raw {
		if sanitize.CleanRecord(rec) {
			sanitized = append(sanitized, rec)
		}
	}

	p.tracker.SetStatus(sessionID, constants.StatusMerging)
	merged := merge.Merge(sanitized)
	if merged == nil {
		merged = []*entity.Record{}
	}

	p.tracker.SetStatus(sessionID, constants.StatusValidating)
	warnings := make([][]entity.Warning, 0, len(merged))
	var total int
	for _, rec := range merged {
		w := validate.Record(rec)
		warnings = append(warnings, w)
		total += len(w)
	}

	p.logger.Info("pipeline.stages.done",
		"session_id", sessionID,
		"raw", len(raw),
		"sanitized", len(sanitized),
		"merged", len(merged),
		"warnings", total,
	)
	return merged, warnings
}

// NoUsableDetail joins every per-file error into the operator-facing message
// for a batch that yielded nothing.
func NoUsableDetail(outcomes []entity.FileOutcome) string {
	var errs []string
	for _, o := range outcomes {
		if o.Error != "" {
			errs = append(errs, o.Error)
		}
	}
	return "No documents could be processed successfully. " + strings.Join(errs, "; ")
}

func docTypeOf(records []*entity.Record) string {
	if len(records) == 0 {
		return constants.DocTypeUnknown
	}
	return records[0].JenisIdentitas
}
