// docpiped is the document intake daemon: multipart uploads in, consolidated
// Siskopatuh-ready records out, with SSE progress along the way.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jamaahin/docpipe/internal/cache"
	"github.com/jamaahin/docpipe/internal/common"
	"github.com/jamaahin/docpipe/internal/dispatch"
	"github.com/jamaahin/docpipe/internal/metrics"
	"github.com/jamaahin/docpipe/internal/ocr"
	"github.com/jamaahin/docpipe/internal/pipeline"
	"github.com/jamaahin/docpipe/internal/progress"
	"github.com/jamaahin/docpipe/internal/server"
	"github.com/jamaahin/docpipe/internal/store"
	"github.com/jamaahin/docpipe/internal/vision"
)

func main() {
	envFile := flag.String("env", "", "env file to load before reading configuration")
	flag.Parse()

	if *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil {
			slog.Error("load env file", "path", *envFile, "error", err)
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

	m := metrics.New(prometheus.DefaultRegisterer)

	var visionEngine dispatch.VisionEngine
	if cfg.Vision.APIKey != "" {
		visionEngine = vision.NewClient(cfg.Vision, logger)
		logger.Info("docpiped.vision.ready", "model", cfg.Vision.Model)
	} else {
		logger.Warn("docpiped.vision.disabled", "reason", "GEMINI_API_KEY not set")
	}

	resultCache := cache.New(cfg.Cache.MaxSize, cfg.Cache.TTL)
	renderer := ocr.NewRenderer(cfg.OCR, logger)
	engine := dispatch.New(cfg.Pipeline, visionEngine, ocr.NewTesseract(cfg.OCR, logger), m, logger)

	tracker := progress.NewTracker(logger)
	go tracker.RunJanitor(ctx, 15*time.Minute, time.Minute)

	var archiver store.Archiver
	if cfg.Store.DSN != "" {
		pg, err := store.Open(ctx, cfg.Store.DSN, logger)
		if err != nil {
			logger.Error("open archive store", "error", err)
			os.Exit(1)
		}
		defer pg.Close()
		archiver = pg
	}

	p := pipeline.New(resultCache, renderer, engine, tracker, m, logger)
	srv := server.New(p, tracker, archiver, m, logger)

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      srv.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		logger.Info("docpiped.shutdown.start")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("docpiped.shutdown.fail", "error", err)
		}
	}()

	logger.Info("docpiped.listen", "addr", cfg.Server.Addr, "engine", cfg.Pipeline.PrimaryEngine)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("docpiped.serve.fail", "error", err)
		os.Exit(1)
	}
	logger.Info("docpiped.stopped")
}
