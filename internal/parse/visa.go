package parse

import (
	"regexp"
	"strings"

	"github.com/jamaahin/docpipe/constants"
	"github.com/jamaahin/docpipe/internal/entity"
)

var (
	reVisaLabeled = regexp.MustCompile(`(?i)(?:Visa\s*(?:No\.?|Number)?)[:\s]*([A-Z0-9]{8,20})`)
	reVisaBare    = regexp.MustCompile(`\b([A-Z]{2}\d{4}[A-Z]+\d+)\b`)
)

// extractVisaNumber reads the visa number from a labeled value or the Saudi
// visa number shape.
func extractVisaNumber(text string) string {
	if m := reVisaLabeled.FindStringSubmatch(text); m != nil {
		return strings.ToUpper(m[1])
	}
	if m := reVisaBare.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

// parseVisa extracts visa fields. Name and passport number come from the
// MRZ, which visas carry in passport format; the visa number doubles as the
// identity number.
func parseVisa(text string) *entity.Extraction {
	result := &entity.Extraction{DocumentType: constants.DocTypeVisa}

	mrz := parseMRZ(text)

	if mrz.Name != "" {
		result.Nama = mrz.Name
	} else {
		result.Nama = extractNamePassport(text)
	}

	if mrz.PassportNumber != "" {
		result.NoPaspor = mrz.PassportNumber
	} else {
		result.NoPaspor = extractPassportNumber(text)
	}

	result.NoVisa = extractVisaNumber(text)
	result.NoIdentitas = result.NoVisa

	return result
}
