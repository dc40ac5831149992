package vision

import (
	"encoding/json"
	"regexp"

	"github.com/jamaahin/docpipe/internal/common"
	"github.com/jamaahin/docpipe/internal/entity"
)

var reJSONFence = regexp.MustCompile("(?s)```(?:json)?\\s*\\n(.*?)\\n```")

// DecodeExtraction turns a model answer into an Extraction. Answers arrive
// either as bare JSON or wrapped in a markdown code fence; anything else is
// an error the caller may retry. Also returns the keys sanitization dropped,
// for logging.
func DecodeExtraction(raw []byte) (*entity.Extraction, []string, error) {
	body := raw
	if !json.Valid(body) {
		m := reJSONFence.FindSubmatch(raw)
		if m == nil {
			return nil, nil, common.NewAppError(common.CodeExtractionFailed,
				"model answer is not JSON: "+snippet(string(raw), 200), common.ErrExtractionFailed)
		}
		body = m[1]
	}

	clean, dropped, err := SanitizeExtraction(body)
	if err != nil {
		return nil, nil, common.WrapError(err, "sanitize model answer")
	}
	if err := ValidateAgainstSchema(BuildExtractionSchema(), clean); err != nil {
		return nil, dropped, common.WrapError(err, "model answer rejected")
	}

	var ext entity.Extraction
	if err := json.Unmarshal(clean, &ext); err != nil {
		return nil, dropped, common.WrapError(err, "decode extraction")
	}
	return &ext, dropped, nil
}

func snippet(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
