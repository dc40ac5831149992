package parse

import (
	"github.com/jamaahin/docpipe/constants"
	"github.com/jamaahin/docpipe/internal/entity"
)

// Extract classifies OCR text and runs the matching per-type parser. Text
// that matches no known document shape comes back as an UNKNOWN extraction
// with every field empty.
func Extract(text string) *entity.Extraction {
	switch docType := DetectDocumentType(text); docType {
	case constants.DocTypePassport:
		return parsePassport(text)
	case constants.DocTypeVisa:
		return parseVisa(text)
	case constants.DocTypeKTP:
		return parseKTP(text)
	default:
		return &entity.Extraction{DocumentType: docType}
	}
}
