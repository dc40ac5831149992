package parse

import (
	"regexp"
	"strings"

	"github.com/jamaahin/docpipe/constants"
)

var visaKeywords = []string{"VISA", "KINGDOM OF SAUDI", "KSA", "MOFA", "KEDUTAAN", "EMBASSY", "R.S.A"}

var ktpKeywords = []string{
	"PROVINSI", "KABUPATEN", "KECAMATAN", "KELURAHAN",
	"NIK", "RT/RW", "BERLAKU HINGGA", "KARTU TANDA PENDUDUK",
}

var passportKeywords = []string{
	"PASSPORT", "PASPOR", "DATE OF ISSUE", "DATE OF EXPIRY",
	"REPUBLIC OF INDONESIA", "TANGGAL HABIS BERLAKU", "IMIGRASI",
}

var (
	reGenericMRZ = regexp.MustCompile(`[A-Z]{2}<[A-Z]+<<`)
	reNIKRun     = regexp.MustCompile(`\d{16}`)
	rePassportNo = regexp.MustCompile(`[A-Z]\d{7}`)
)

// DetectDocumentType classifies OCR text as VISA, KTP, PASSPORT or UNKNOWN.
// Visa checks run first because visas carry a passport-style MRZ too.
func DetectDocumentType(text string) string {
	upper := strings.ToUpper(text)

	if strings.Contains(upper, "VISA") &&
		(strings.Contains(upper, "SAUDI") || strings.Contains(upper, "NUMBER") || strings.Contains(upper, "NO")) {
		return constants.DocTypeVisa
	}
	if countKeywords(upper, visaKeywords) >= 2 {
		return constants.DocTypeVisa
	}

	if countKeywords(upper, ktpKeywords) >= 2 {
		return constants.DocTypeKTP
	}

	if countKeywords(upper, passportKeywords) >= 2 {
		return constants.DocTypePassport
	}

	// MRZ document-type prefixes.
	if strings.Contains(upper, "P<") {
		return constants.DocTypePassport
	}
	if strings.Contains(upper, "V<") {
		return constants.DocTypeVisa
	}

	// Generic MRZ signature without a readable prefix.
	if strings.Contains(text, "<<<") || reGenericMRZ.MatchString(upper) {
		if strings.Contains(upper, "SAUDI") || strings.Contains(upper, "ARABIA") {
			return constants.DocTypeVisa
		}
		return constants.DocTypePassport
	}

	// Last resort: identify by number shape.
	if reNIKRun.MatchString(text) {
		return constants.DocTypeKTP
	}
	if rePassportNo.MatchString(text) {
		return constants.DocTypePassport
	}

	return constants.DocTypeUnknown
}

func countKeywords(upper string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(upper, kw) {
			n++
		}
	}
	return n
}
