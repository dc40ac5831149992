// docpipe-batch processes a directory of scanned documents from the command
// line: one shot by default, or as a drop-folder watcher with -watch. The
// one-shot run writes the consolidated roster as XLSX next to the directory.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/jamaahin/docpipe/internal/cache"
	"github.com/jamaahin/docpipe/internal/common"
	"github.com/jamaahin/docpipe/internal/dispatch"
	"github.com/jamaahin/docpipe/internal/entity"
	"github.com/jamaahin/docpipe/internal/export"
	"github.com/jamaahin/docpipe/internal/ingest"
	"github.com/jamaahin/docpipe/internal/ocr"
	"github.com/jamaahin/docpipe/internal/pipeline"
	"github.com/jamaahin/docpipe/internal/progress"
	"github.com/jamaahin/docpipe/internal/store"
	"github.com/jamaahin/docpipe/internal/vision"
)

// printError prints to stderr, falling back to stdout if stderr fails.
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		dir     = flag.String("dir", "", "directory of documents to process (required)")
		out     = flag.String("out", "", "output XLSX path (defaults next to the directory)")
		watch   = flag.Bool("watch", false, "watch the directory and process files as they settle")
		settle  = flag.Duration("settle", 750*time.Millisecond, "quiet period before a watched file is picked up")
		archive = flag.String("archive", "", "SQLite file to archive batches into; DATABASE_URL switches to Postgres")
		envFile = flag.String("env", "", "env file to load before reading configuration")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: -dir is required\n")
		os.Exit(1)
	}

	if *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil {
			printError("Error: load env file %s: %v\n", *envFile, err)
			os.Exit(1)
		}
	} else {
		_ = godotenv.Load()
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var visionEngine dispatch.VisionEngine
	if cfg.Vision.APIKey != "" {
		visionEngine = vision.NewClient(cfg.Vision, logger)
	} else {
		logger.Warn("batch.vision.disabled", "reason", "GEMINI_API_KEY not set")
	}

	resultCache := cache.New(cfg.Cache.MaxSize, cfg.Cache.TTL)
	renderer := ocr.NewRenderer(cfg.OCR, logger)
	engine := dispatch.New(cfg.Pipeline, visionEngine, ocr.NewTesseract(cfg.OCR, logger), nil, logger)

	tracker := progress.NewTracker(logger)
	go tracker.RunJanitor(ctx, 15*time.Minute, time.Minute)

	archiver, closeArchive := openArchiver(ctx, cfg, *archive, logger)
	defer closeArchive()

	p := pipeline.New(resultCache, renderer, engine, tracker, nil, logger)

	if *watch {
		runWatch(ctx, p, archiver, logger, *dir, *settle)
		return
	}

	scan, err := ingest.ReadDirectory(*dir)
	if err != nil {
		logger.Error("batch.scan_fail", "dir", *dir, "error", err)
		os.Exit(1)
	}
	for _, f := range scan.Failures {
		logger.Warn("batch.skip", "path", f.Path, "error", f.Err)
	}
	logger.Info("batch.scan.done",
		"scanned", scan.Stats.Scanned,
		"matched", scan.Stats.Matched,
		"loaded", scan.Stats.Loaded,
		"failed", scan.Stats.Failed,
	)
	if len(scan.Uploads) == 0 {
		printError("Error: no processable documents under %s\n", *dir)
		os.Exit(1)
	}

	sessionID := progress.NewSessionID()
	result, err := p.Process(ctx, sessionID, scan.Uploads)
	if err != nil {
		logger.Error("batch.no_records", "session_id", sessionID, "error", err)
		os.Exit(1)
	}

	if archiver != nil {
		if err := archiver.Archive(ctx, result); err != nil {
			logger.Warn("batch.archive_fail", "error", err)
		}
	}

	outPath := *out
	if outPath == "" {
		outPath = filepath.Join(filepath.Dir(*dir), export.Filename(time.Now()))
	}
	xlsxBytes, err := export.NewWriter(logger).RosterXLSX(result.Records)
	if err != nil {
		logger.Error("batch.export_fail", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(outPath, xlsxBytes, 0o644); err != nil {
		logger.Error("batch.write_fail", "path", outPath, "error", err)
		os.Exit(1)
	}

	logger.Info("batch.done",
		"session_id", sessionID,
		"files", result.TotalFiles,
		"successful", result.Successful,
		"failed", result.Failed,
		"records", len(result.Records),
		"output", outPath,
	)

	fmt.Printf("Batch complete!\n")
	fmt.Printf("- Files processed: %d (%d ok, %d failed)\n", result.TotalFiles, result.Successful, result.Failed)
	fmt.Printf("- Unique records: %d\n", len(result.Records))
	fmt.Printf("- Roster: %s\n", outPath)
}

// openArchiver picks the archive backend: Postgres when DATABASE_URL is set,
// a local SQLite file when -archive is given, none otherwise.
func openArchiver(ctx context.Context, cfg *common.Config, sqlitePath string, logger *slog.Logger) (store.Archiver, func()) {
	if cfg.Store.DSN != "" {
		pg, err := store.Open(ctx, cfg.Store.DSN, logger)
		if err != nil {
			logger.Error("open archive store", "error", err)
			os.Exit(1)
		}
		return pg, pg.Close
	}
	if sqlitePath != "" {
		db, err := store.OpenSQLite(ctx, sqlitePath, logger)
		if err != nil {
			logger.Error("open archive file", "error", err)
			os.Exit(1)
		}
		return db, db.Close
	}
	return nil, func() {}
}

func runWatch(ctx context.Context, p *pipeline.Pipeline, archiver store.Archiver, logger *slog.Logger, root string, settle time.Duration) {
	evCh, errCh, err := ingest.Watch(ctx, ingest.WatchConfig{
		Roots:       []string{root},
		InitialScan: true,
		Debounce:    settle,
	}, logger)
	if err != nil {
		logger.Error("watch.start_fail", "root", root, "error", err)
		os.Exit(1)
	}
	logger.Info("watch.started", "root", root, "settle", settle.String())

	for {
		select {
		case <-ctx.Done():
			logger.Info("watch.stopped")
			return
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			logger.Warn("watch.error", "error", err)
		case path, ok := <-evCh:
			if !ok {
				logger.Info("watch.stopped")
				return
			}
			processWatched(ctx, p, archiver, logger, root, path)
		}
	}
}

func processWatched(ctx context.Context, p *pipeline.Pipeline, archiver store.Archiver, logger *slog.Logger, root, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		// The file may have moved away before the settle period ended.
		logger.Warn("watch.read_fail", "path", path, "error", err)
		return
	}
	name := path
	if rel, relErr := filepath.Rel(root, path); relErr == nil {
		name = rel
	}

	sessionID := progress.NewSessionID()
	result, err := p.Process(ctx, sessionID, []entity.Upload{{Filename: name, Data: data}})
	if err != nil {
		logger.Warn("watch.no_records", "path", path, "session_id", sessionID, "error", err)
		return
	}
	if archiver != nil {
		if err := archiver.Archive(ctx, result); err != nil {
			logger.Warn("watch.archive_fail", "error", err)
		}
	}
	logger.Info("watch.processed",
		"path", path,
		"session_id", sessionID,
		"records", len(result.Records),
	)
}
