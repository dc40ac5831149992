// Package ocr wraps the local extraction tooling: poppler's pdftoppm for
// rasterizing PDFs and Tesseract (through gosseract) for turning page images
// into text. The vision-model path lives in internal/vision; this package is
// everything that runs on the box itself.
package ocr

import "context"

// TextEngine turns one document image into plain text.
type TextEngine interface {
	Text(ctx context.Context, image []byte) (string, error)
}

// PDFRenderer rasterizes a PDF into one PNG per page, in page order.
type PDFRenderer interface {
	RenderPages(ctx context.Context, pdf []byte) ([][]byte, error)
}
