package ocr

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/otiai10/gosseract/v2"

	"github.com/jamaahin/docpipe/internal/common"
)

// Tesseract is the local TextEngine. Every call gets a fresh gosseract
// client; the underlying C API is not safe to share across goroutines.
type Tesseract struct {
	cfg       common.OCRConfig
	logger    *slog.Logger
	newClient func() *gosseract.Client
}

func NewTesseract(cfg common.OCRConfig, logger *slog.Logger) *Tesseract {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tesseract{cfg: cfg, logger: logger, newClient: gosseract.NewClient}
}

// Text runs Tesseract over the image and returns normalized plain text.
func (t *Tesseract) Text(ctx context.Context, image []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	start := time.Now()

	client := t.newClient()
	defer client.Close()

	if err := client.SetImageFromBytes(image); err != nil {
		return "", common.WrapError(err, "tesseract: set image")
	}
	if langs := splitLanguages(t.cfg.Languages); len(langs) > 0 {
		if err := client.SetLanguage(langs...); err != nil {
			return "", common.WrapError(err, "tesseract: set languages")
		}
	}
	if t.cfg.TessdataDir != "" {
		if err := client.SetTessdataPrefix(t.cfg.TessdataDir); err != nil {
			return "", common.WrapError(err, "tesseract: set tessdata prefix")
		}
	}

	raw, err := client.Text()
	if err != nil {
		return "", common.WrapError(err, "tesseract: recognize")
	}

	text := Normalize(raw)
	t.logger.Debug("ocr.tesseract.ok",
		"bytes_in", len(image),
		"chars_out", len(text),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return text, nil
}

// splitLanguages turns the "eng+ind" config form into gosseract's list form.
func splitLanguages(joined string) []string {
	var langs []string
	for _, l := range strings.Split(joined, "+") {
		if l = strings.TrimSpace(l); l != "" {
			langs = append(langs, l)
		}
	}
	return langs
}
