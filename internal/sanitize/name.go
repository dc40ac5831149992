// Package sanitize normalizes extracted text before merging: name cleaning
// against administrative boilerplate, OCR-tolerant date standardization, and
// whole-record cleanup.
package sanitize

import (
	"regexp"
	"strings"
)

var (
	reNonName    = regexp.MustCompile(`[^A-Z\s\-']`)
	reMultiSpace = regexp.MustCompile(`\s+`)
)

// nameBlacklist rejects administrative boilerplate that OCR frequently picks
// up where a person name is expected.
var nameBlacklist = []string{
	"PROVINSI", "KABUPATEN", "KOTA", "NIK", "LAKI-LAKI", "PEREMPUAN",
	"AGAMA", "KAWIN", "GOL. DARAH", "GOL DARAH", "PARTAI",
	"PEMILIHAN", "UMUM", "KARTU", "PENDUDUK", "NEGARA",
}

// CleanName validates and normalizes an extracted person name: uppercase,
// letters/space/hyphen/apostrophe only, collapsed whitespace. Returns ""
// when the result is shorter than 3 characters or contains a blacklisted
// keyword.
func CleanName(raw string) string {
	if raw == "" {
		return ""
	}
	cleaned := reNonName.ReplaceAllString(strings.ToUpper(raw), "")
	cleaned = strings.TrimSpace(reMultiSpace.ReplaceAllString(cleaned, " "))
	if len(cleaned) < 3 {
		return ""
	}
	for _, word := range nameBlacklist {
		if strings.Contains(cleaned, word) {
			return ""
		}
	}
	return cleaned
}
