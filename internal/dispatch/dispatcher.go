// Package dispatch selects and drives the extraction strategy for each raw
// unit: direct vision-model extraction, local OCR plus regex parsing, or
// local OCR plus vision-model text parsing. It owns the retry, fallback and
// concurrency policy; transports underneath it make exactly one attempt per
// call.
package dispatch

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/jamaahin/docpipe/constants"
	"github.com/jamaahin/docpipe/internal/common"
	"github.com/jamaahin/docpipe/internal/entity"
	"github.com/jamaahin/docpipe/internal/metrics"
	"github.com/jamaahin/docpipe/internal/ocr"
	"github.com/jamaahin/docpipe/internal/parse"
)

// Engine names accepted in configuration.
const (
	EngineGemini    = "gemini"
	EngineTesseract = "tesseract"
	EngineHybrid    = "hybrid"
)

// minUsableTextLen is the shortest local-OCR output worth parsing. Anything
// below it is treated as a failed attempt so retry and fallback can run.
const minUsableTextLen = 10

// VisionEngine is the remote structured-extraction surface the dispatcher
// calls for the gemini strategy, the hybrid second leg, and fallback.
type VisionEngine interface {
	ExtractImage(ctx context.Context, image []byte) (*entity.Extraction, error)
	ExtractFromText(ctx context.Context, text string) (*entity.Extraction, error)
}

// Dispatcher runs one extraction strategy per unit under a shared
// concurrency budget.
type Dispatcher struct {
	cfg     common.PipelineConfig
	vision  VisionEngine
	text    ocr.TextEngine
	sem     *semaphore.Weighted
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func New(cfg common.PipelineConfig, vision VisionEngine, text ocr.TextEngine, m *metrics.Metrics, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if m == nil {
		m = metrics.NewNop()
	}
	conc := cfg.Concurrency
	if conc <= 0 {
		conc = 10
	}
	return &Dispatcher{
		cfg:     cfg,
		vision:  vision,
		text:    text,
		sem:     semaphore.NewWeighted(conc),
		metrics: m,
		logger:  logger,
	}
}

// Extract runs the configured strategy for one unit: up to MaxRetries+1
// attempts with linear backoff, then a single vision fallback when enabled
// and the primary is not already the vision model. It never returns an
// error; exhaustion yields a partial, error-marked extraction so one bad
// unit cannot abort its batch siblings.
func (d *Dispatcher) Extract(ctx context.Context, unit entity.RawUnit) *entity.Extraction {
	if err := d.sem.Acquire(ctx, 1); err != nil {
		return failedExtraction(err)
	}
	defer d.sem.Release(1)

	d.metrics.ExtractionsInFlight.Inc()
	defer d.metrics.ExtractionsInFlight.Dec()

	// The semaphore is shared across batches, so log lines carry the batch
	// session ID when the caller put one in the context.
	log := d.logger
	if sid := common.SessionIDFromContext(ctx); sid != "" {
		log = log.With("session_id", sid)
	}

	engine := d.primaryEngine()
	attemptFn := d.attemptFunc(engine)

	runAttempt := func(name string, fn func(context.Context, []byte) (*entity.Extraction, error)) (*entity.Extraction, error) {
		d.metrics.ExtractionAttemptsTotal.WithLabelValues(name).Inc()
		start := time.Now()
		ext, err := fn(ctx, unit.Image)
		d.metrics.EngineCallDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
		return ext, err
	}

	var lastErr error
	for attempt := 1; attempt <= d.cfg.MaxRetries+1; attempt++ {
		ext, err := runAttempt(engine, attemptFn)
		if err == nil {
			if attempt > 1 {
				log.Info("dispatch.retry.ok", "unit", unit.Label(), "attempt", attempt)
			}
			log.Info("dispatch.extract.ok",
				"engine", engine,
				"unit", unit.Label(),
				"document_type", ext.DocumentType,
			)
			return ext
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		if attempt <= d.cfg.MaxRetries {
			d.metrics.ExtractionRetriesTotal.Inc()
			delay := d.cfg.RetryDelay * time.Duration(attempt)
			log.Warn("dispatch.attempt.fail",
				"engine", engine,
				"unit", unit.Label(),
				"attempt", attempt,
				"retry_in", delay.String(),
				"error", err,
			)
			if err := sleepCtx(ctx, delay); err != nil {
				lastErr = err
				break
			}
		} else {
			log.Error("dispatch.attempts.exhausted",
				"engine", engine,
				"unit", unit.Label(),
				"attempts", attempt,
				"error", err,
			)
		}
	}

	if d.cfg.FallbackEnabled && engine != EngineGemini && ctx.Err() == nil {
		d.metrics.ExtractionFallbacksTotal.Inc()
		log.Info("dispatch.fallback.start", "unit", unit.Label(), "from", engine)
		ext, err := runAttempt(EngineGemini, d.geminiAttempt)
		if err == nil {
			log.Info("dispatch.extract.ok",
				"engine", "gemini-fallback",
				"unit", unit.Label(),
				"document_type", ext.DocumentType,
			)
			return ext
		}
		log.Error("dispatch.fallback.fail", "unit", unit.Label(), "error", err)
		lastErr = err
	}

	return failedExtraction(lastErr)
}

func (d *Dispatcher) primaryEngine() string {
	switch d.cfg.PrimaryEngine {
	case EngineTesseract, EngineHybrid:
		return d.cfg.PrimaryEngine
	default:
		return EngineGemini
	}
}

func (d *Dispatcher) attemptFunc(engine string) func(context.Context, []byte) (*entity.Extraction, error) {
	switch engine {
	case EngineTesseract:
		return d.tesseractAttempt
	case EngineHybrid:
		return d.hybridAttempt
	default:
		return d.geminiAttempt
	}
}

func (d *Dispatcher) geminiAttempt(ctx context.Context, image []byte) (*entity.Extraction, error) {
	if d.vision == nil {
		return nil, common.NewAppError(common.CodeEngineUnavailable, "vision engine not configured", common.ErrInvalidInput)
	}
	return d.vision.ExtractImage(ctx, image)
}

func (d *Dispatcher) tesseractAttempt(ctx context.Context, image []byte) (*entity.Extraction, error) {
	text, err := d.localText(ctx, image)
	if err != nil {
		return nil, err
	}
	return parse.Extract(text), nil
}

func (d *Dispatcher) hybridAttempt(ctx context.Context, image []byte) (*entity.Extraction, error) {
	if d.vision == nil {
		return nil, common.NewAppError(common.CodeEngineUnavailable, "vision engine not configured", common.ErrInvalidInput)
	}
	text, err := d.localText(ctx, image)
	if err != nil {
		return nil, err
	}
	return d.vision.ExtractFromText(ctx, text)
}

func (d *Dispatcher) localText(ctx context.Context, image []byte) (string, error) {
	if d.text == nil {
		return "", common.NewAppError(common.CodeEngineUnavailable, "local ocr engine not configured", common.ErrInvalidInput)
	}
	text, err := d.text.Text(ctx, image)
	if err != nil {
		return "", err
	}
	if len(strings.TrimSpace(text)) < minUsableTextLen {
		return "", common.NewAppError(common.CodeExtractionFailed, "local ocr produced no usable text", common.ErrExtractionFailed)
	}
	return text, nil
}

func failedExtraction(err error) *entity.Extraction {
	msg := "extraction failed"
	if err != nil {
		msg = err.Error()
	}
	return &entity.Extraction{
		DocumentType: constants.DocTypeUnknown,
		Err:          msg,
		Partial:      true,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
