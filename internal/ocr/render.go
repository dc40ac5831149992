package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/jamaahin/docpipe/internal/common"
)

// Renderer shells out to pdftoppm to turn a PDF into per-page PNGs. Each
// page is extracted independently downstream, so pages are returned as
// separate images rather than joined text.
type Renderer struct {
	cfg    common.OCRConfig
	runner Runner
	logger *slog.Logger
}

func NewRenderer(cfg common.OCRConfig, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{cfg: cfg, runner: execRunner{}, logger: logger}
}

// RenderPages rasterizes every page of the PDF at the configured DPI.
func (r *Renderer) RenderPages(ctx context.Context, pdf []byte) ([][]byte, error) {
	tmpDir, err := os.MkdirTemp("", "docpipe-render-*")
	if err != nil {
		return nil, common.WrapError(err, "create scratch dir")
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			r.logger.Warn("ocr.render.cleanup_fail", "dir", tmpDir, "error", err)
		}
	}()

	src := filepath.Join(tmpDir, "input.pdf")
	if err := os.WriteFile(src, pdf, 0o600); err != nil {
		return nil, common.WrapError(err, "write scratch pdf")
	}

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 200 -png <in.pdf> <tmp/page>
	_, errb, err := r.runner.Run(ctx, r.cfg.PdftoppmBin, "-r", fmt.Sprintf("%d", r.cfg.PDFRenderDPI), "-png", src, prefix)
	if err != nil {
		return nil, common.WrapError(err, "pdftoppm: "+truncate(string(errb), 512))
	}

	// collect generated pngs (page-1.png, page-2.png, ...); pdftoppm
	// zero-pads the index, so a string sort keeps page order
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if len(matches) == 0 {
		return nil, common.NewAppError(common.CodeExtractionFailed, "pdftoppm produced no pages", common.ErrExtractionFailed)
	}

	pages := make([][]byte, 0, len(matches))
	for _, m := range matches {
		img, err := os.ReadFile(m)
		if err != nil {
			return nil, common.WrapError(err, "read rendered page")
		}
		pages = append(pages, img)
	}

	r.logger.Debug("ocr.render.ok", "pages", len(pages), "dpi", r.cfg.PDFRenderDPI)
	return pages, nil
}
