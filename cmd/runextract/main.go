// runextract runs the extraction engine over a single file and prints the
// raw per-page extractions as JSON, before sanitizing and merging touch
// them. Debugging tool for tuning engine and parser behavior.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/jamaahin/docpipe/constants"
	"github.com/jamaahin/docpipe/internal/common"
	"github.com/jamaahin/docpipe/internal/dispatch"
	"github.com/jamaahin/docpipe/internal/entity"
	"github.com/jamaahin/docpipe/internal/ocr"
	"github.com/jamaahin/docpipe/internal/vision"
)

func main() {
	// Extractions go to stdout, so logs go to stderr.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "runextract <file>")
		os.Exit(2)
	}
	path := os.Args[1]

	_ = godotenv.Load()

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error("read file", "path", path, "error", err)
		os.Exit(1)
	}

	var visionEngine dispatch.VisionEngine
	if cfg.Vision.APIKey != "" {
		visionEngine = vision.NewClient(cfg.Vision, logger)
	}
	engine := dispatch.New(cfg.Pipeline, visionEngine, ocr.NewTesseract(cfg.OCR, logger), nil, logger)

	start := time.Now()
	var units []entity.RawUnit
	if constants.NormalizeExt(filepath.Ext(path)) == "pdf" {
		pages, err := ocr.NewRenderer(cfg.OCR, logger).RenderPages(ctx, data)
		if err != nil {
			logger.Error("render pdf", "path", path, "error", err)
			os.Exit(1)
		}
		for i, page := range pages {
			units = append(units, entity.RawUnit{Filename: filepath.Base(path), Page: i + 1, Image: page})
		}
	} else {
		units = append(units, entity.RawUnit{Filename: filepath.Base(path), Image: data})
	}

	extractions := make([]*entity.Extraction, 0, len(units))
	for _, unit := range units {
		extractions = append(extractions, engine.Extract(ctx, unit))
	}

	out, err := json.MarshalIndent(extractions, "", "  ")
	if err != nil {
		logger.Error("encode extractions", "error", err)
		os.Exit(1)
	}
	fmt.Println(string(out))

	logger.Info("runextract.done",
		"file", path,
		"units", len(units),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
}
