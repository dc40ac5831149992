// Package vision holds the Gemini generateContent client used for
// structured document extraction, plus the schema and sanitization layer
// that keeps model answers honest before they enter the pipeline.
package vision

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/jamaahin/docpipe/internal/common"
	"github.com/jamaahin/docpipe/internal/entity"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Client calls the Gemini generateContent endpoint. One attempt per call;
// retry policy belongs to the dispatcher, not the transport.
type Client struct {
	cfg     common.VisionConfig
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

func NewClient(cfg common.VisionConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		cfg:     cfg,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// ExtractImage asks the model for structured fields straight from the
// document image.
func (c *Client) ExtractImage(ctx context.Context, image []byte) (*entity.Extraction, error) {
	return c.generate(ctx, []part{
		{Text: extractPrompt},
		{InlineData: &inlineData{
			MIMEType: sniffImageMIME(image),
			Data:     base64.StdEncoding.EncodeToString(image),
		}},
	})
}

// ExtractFromText parses already-OCRed text into structured fields. Cheaper
// than sending the image; this is the hybrid strategy's second leg.
func (c *Client) ExtractFromText(ctx context.Context, text string) (*entity.Extraction, error) {
	return c.generate(ctx, []part{
		{Text: extractPrompt + textPromptPreamble + text},
	})
}

func (c *Client) generate(ctx context.Context, parts []part) (*entity.Extraction, error) {
	if c.cfg.APIKey == "" {
		return nil, common.NewAppError(common.CodeEngineUnavailable, "GEMINI_API_KEY not configured", common.ErrInvalidInput)
	}
	start := time.Now()

	req := generateRequest{
		Contents: []content{{Parts: parts}},
		GenerationConfig: generationConfig{
			Temperature:      c.cfg.Temperature,
			MaxOutputTokens:  c.cfg.MaxOutputTokens,
			ResponseMIMEType: "application/json",
		},
	}
	// The key travels in a header so request logs stay clean.
	headers := map[string]string{"x-goog-api-key": c.cfg.APIKey}

	url := c.baseURL + "/models/" + c.cfg.Model + ":generateContent"
	raw, _, err := SendJSON(ctx, c.http, url, req, headers, c.logger)
	if err != nil {
		return nil, common.WrapError(err, "gemini generateContent")
	}

	var resp generateResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, common.WrapError(err, "decode gemini envelope")
	}
	answer := resp.text()
	if answer == "" {
		return nil, common.NewAppError(common.CodeExtractionFailed, "gemini returned no candidates", common.ErrExtractionFailed)
	}

	ext, dropped, err := DecodeExtraction([]byte(answer))
	if err != nil {
		return nil, err
	}
	c.logger.Info("vision.extract.ok",
		"model", c.cfg.Model,
		"document_type", ext.DocumentType,
		"dropped_keys", dropped,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return ext, nil
}

// sniffImageMIME picks the inline-data MIME type. Gemini accepts JPEG, PNG
// and WebP; anything else is declared JPEG, which holds for every format
// admitted at the upload edge.
func sniffImageMIME(image []byte) string {
	switch mt := http.DetectContentType(image); mt {
	case "image/jpeg", "image/png", "image/webp":
		return mt
	default:
		return "image/jpeg"
	}
}
