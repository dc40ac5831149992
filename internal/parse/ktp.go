package parse

import (
	"regexp"
	"strings"

	"github.com/jamaahin/docpipe/constants"
	"github.com/jamaahin/docpipe/internal/entity"
	"github.com/jamaahin/docpipe/internal/sanitize"
)

var (
	reWhitespaceRun = regexp.MustCompile(`\s+`)
	reNIK16         = regexp.MustCompile(`\b(\d{16})\b`)
	reNIKLabeled    = regexp.MustCompile(`(?i)NIK[:\s=]*([0-9OoIlLDSBZz?|()\-]{14,22})`)
	reNIKSequence   = regexp.MustCompile(`[0-9OoIlLDSBZz?|()\-]{14,22}`)
	reNonDigits     = regexp.MustCompile(`\D`)
)

// extractNIK recovers the 16-digit NIK. A clean run of 16 digits wins;
// otherwise number-like sequences near the NIK label, then anywhere in the
// text, are digit-repaired and truncated to 16.
func extractNIK(text string) string {
	clean := reWhitespaceRun.ReplaceAllString(text, " ")

	if m := reNIK16.FindStringSubmatch(clean); m != nil {
		return m[1]
	}

	if m := reNIKLabeled.FindStringSubmatch(clean); m != nil {
		digits := reNonDigits.ReplaceAllString(FixOCRDigits(m[1]), "")
		if len(digits) >= 16 {
			return digits[:16]
		}
	}

	for _, seq := range reNIKSequence.FindAllString(clean, -1) {
		digits := reNonDigits.ReplaceAllString(FixOCRDigits(seq), "")
		if len(digits) >= 16 {
			return digits[:16]
		}
	}
	return ""
}

var (
	reNamaLabel  = regexp.MustCompile(`(?i)^Nama\s*[:.]?`)
	reNamaPrefix = regexp.MustCompile(`(?i)^Nama\s*[:.]?\s*`)
	reUpperRun   = regexp.MustCompile(`[A-Z][A-Z\s.']{3,}`)
)

// ktpSkipWords mark lines that are field labels or headers, never names.
var ktpSkipWords = []string{
	"PROVINSI", "KABUPATEN", "KOTA", "NIK", "LAKI", "PEREMPUAN",
	"AGAMA", "ALAMAT", "TEMPAT", "LAHIR", "KELAMIN", "KAWIN",
	"PEKERJAAN", "KEWARGANEGARAAN", "BERLAKU",
}

// extractNameKTP reads the personal name, first from the Nama label (same
// line, then the line below), else the longest valid uppercase run in the
// top half of the card.
func extractNameKTP(text string) string {
	lines := strings.Split(text, "\n")

	for i, line := range lines {
		if !reNamaLabel.MatchString(line) {
			continue
		}
		raw := reNamaPrefix.ReplaceAllString(line, "")
		if valid := sanitize.CleanName(raw); valid != "" {
			return valid
		}
		if i+1 < len(lines) {
			if valid := sanitize.CleanName(lines[i+1]); valid != "" {
				return valid
			}
		}
	}

	topHalf := lines
	if n := len(lines)/2 + 5; n < len(lines) {
		topHalf = lines[:n]
	}

	best := ""
	for _, line := range topHalf {
		line = strings.TrimSpace(line)
		if containsAnyWord(strings.ToUpper(line), ktpSkipWords) || len(line) < 4 {
			continue
		}
		for _, m := range reUpperRun.FindAllString(line, -1) {
			if valid := sanitize.CleanName(m); len(valid) > len(best) {
				best = valid
			}
		}
	}
	return best
}

var (
	reBirthLabeled = regexp.MustCompile(`(?i)(?:Tempat|Place|Tempa)[/\s]*(?:Tgl|Tanggal|Tg)?[/\s]*(?:Lahir|Late|Lahr)[:\s]*([A-Za-z\s]+?)\s*[,\s]+\d`)
	reBirthLoose   = regexp.MustCompile(`[:\s]+([A-Za-z\s]+?)\s*[,\s]+\d`)
)

// extractPlaceOfBirth pulls the birthplace out of the combined place/date
// line, tolerating mangled label spellings.
func extractPlaceOfBirth(text string) string {
	for _, line := range strings.Split(text, "\n") {
		lower := strings.ToLower(line)
		if !strings.Contains(lower, "lahir") && !strings.Contains(lower, "late") && !strings.Contains(lower, "lahr") {
			continue
		}
		if m := reBirthLabeled.FindStringSubmatch(line); m != nil {
			if place := strings.ToUpper(strings.TrimSpace(m[1])); len(place) >= 2 {
				return place
			}
		}
		if m := reBirthLoose.FindStringSubmatch(line); m != nil {
			if place := strings.ToUpper(strings.TrimSpace(m[1])); len(place) >= 2 {
				return place
			}
		}
	}
	return ""
}

var (
	reAlamatLabel   = regexp.MustCompile(`(?i)^Alamat\s*[:.]?\s*(.*)`)
	reAlamatFuzzy   = regexp.MustCompile(`^(?:a?lamat|alam|lama)`)
	reAlamatStrip   = regexp.MustCompile(`(?i)^(?:a?lamat|alam|lama)\w*\s*[:.]?\s*`)
	reAddrStart     = regexp.MustCompile(`(?i)^(?:DUKUH|DESA|JL|JALAN|DSN|DUSUN)`)
	reAddrAnywhere  = regexp.MustCompile(`(?i)(?:DUKUH|KOPEK|JL\.|JALAN|DSN)`)
	reLabelPrefix   = regexp.MustCompile(`^[A-Za-z]+\s+`)
	reRamaLabel     = regexp.MustCompile(`(?i)^(?:Rama|Rame|Ramat|lama)\s+(.+)`)
	rePunctuationLn = regexp.MustCompile(`^[:.\s]+$`)
)

// extractAddress finds the street address, working through progressively
// fuzzier readings of the Alamat label and then bare address keywords.
func extractAddress(text string) string {
	lines := strings.Split(text, "\n")

	for _, line := range lines {
		if m := reAlamatLabel.FindStringSubmatch(line); m != nil {
			if v := strings.TrimSpace(m[1]); v != "" {
				return v
			}
		}

		if reAlamatFuzzy.MatchString(strings.ToLower(line)) {
			if v := strings.TrimSpace(reAlamatStrip.ReplaceAllString(line, "")); len(v) >= 3 {
				return v
			}
		}

		stripped := strings.TrimSpace(line)
		if reAddrStart.MatchString(stripped) {
			return stripped
		}

		if reAddrAnywhere.MatchString(line) {
			if cleaned := strings.TrimSpace(reLabelPrefix.ReplaceAllString(line, "")); cleaned != "" {
				return cleaned
			}
		}
	}

	// OCR sometimes reads "Alamat" as "Rama" or similar.
	for _, line := range lines {
		if m := reRamaLabel.FindStringSubmatch(line); m != nil {
			if v := strings.TrimSpace(m[1]); len(v) >= 3 && !rePunctuationLn.MatchString(v) {
				return v
			}
		}
	}
	return ""
}

var (
	reProvinsiHeader  = regexp.MustCompile(`^PROVINSI\s+(.+)`)
	reKabupatenHeader = regexp.MustCompile(`^(?:KABUPATEN|KOTA)\s+(.+)`)
	reKecamatanLabel  = regexp.MustCompile(`(?i)Kecamatan\w*\s*[:\s]+([A-Za-z\s]+)`)
	reKelurahanLabel  = regexp.MustCompile(`(?i)(?:Kel|Kal|Col)[/\s]*(?:Desa|Des|Dess|Dese|de)\w*\s*[:\s=]+([A-Za-z\s]+)`)
	reNonUpperSpace   = regexp.MustCompile(`[^A-Z\s]`)
)

type regionalInfo struct {
	Provinsi  string
	Kabupaten string
	Kecamatan string
	Kelurahan string
}

// extractRegionalInfo reads the administrative region fields, accepting both
// the card-header form (PROVINSI JAWA TENGAH) and labeled form.
func extractRegionalInfo(text string) regionalInfo {
	var info regionalInfo

	for _, line := range strings.Split(text, "\n") {
		stripped := strings.TrimSpace(line)
		upper := strings.ToUpper(stripped)

		if m := reProvinsiHeader.FindStringSubmatch(upper); m != nil && info.Provinsi == "" {
			if prov := strings.TrimSpace(reNonUpperSpace.ReplaceAllString(m[1], "")); len(prov) >= 3 {
				info.Provinsi = prov
				continue
			}
		}

		if m := reKabupatenHeader.FindStringSubmatch(upper); m != nil && info.Kabupaten == "" {
			if kab := strings.TrimSpace(reNonUpperSpace.ReplaceAllString(m[1], "")); len(kab) >= 2 {
				info.Kabupaten = kab
				continue
			}
		}

		if m := reKecamatanLabel.FindStringSubmatch(stripped); m != nil && info.Kecamatan == "" {
			kec := strings.ToUpper(strings.TrimSpace(m[1]))
			if kec = strings.TrimSpace(reNonUpperSpace.ReplaceAllString(kec, "")); len(kec) >= 2 {
				info.Kecamatan = kec
				continue
			}
		}

		if m := reKelurahanLabel.FindStringSubmatch(stripped); m != nil && info.Kelurahan == "" {
			kel := strings.ToUpper(strings.TrimSpace(m[1]))
			if kel = strings.TrimSpace(reNonUpperSpace.ReplaceAllString(kel, "")); len(kel) >= 2 {
				info.Kelurahan = kel
			}
		}
	}
	return info
}

// parseKTP extracts every KTP field from OCR text.
func parseKTP(text string) *entity.Extraction {
	regional := extractRegionalInfo(text)
	return &entity.Extraction{
		DocumentType: constants.DocTypeKTP,
		NoIdentitas:  extractNIK(text),
		Nama:         extractNameKTP(text),
		TempatLahir:  extractPlaceOfBirth(text),
		TanggalLahir: ExtractDate(text, "Lahir"),
		Alamat:       extractAddress(text),
		Provinsi:     regional.Provinsi,
		Kabupaten:    regional.Kabupaten,
		Kecamatan:    regional.Kecamatan,
		Kelurahan:    regional.Kelurahan,
	}
}

func containsAnyWord(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
