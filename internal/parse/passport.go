package parse

import (
	"regexp"
	"strings"

	"github.com/jamaahin/docpipe/constants"
	"github.com/jamaahin/docpipe/internal/entity"
	"github.com/jamaahin/docpipe/internal/sanitize"
)

var (
	rePassportLabeled = regexp.MustCompile(`(?i)(?:Passport|Paspor)\s*(?:No\.?|Number)?[:\s]*([A-Z]\d{6,8})`)
	rePassportBare    = regexp.MustCompile(`\b([A-Z]\d{7})\b`)
)

// extractPassportNumber reads the passport number from visual text.
func extractPassportNumber(text string) string {
	if m := rePassportLabeled.FindStringSubmatch(text); m != nil {
		return strings.ToUpper(m[1])
	}
	if m := rePassportBare.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

var (
	reNameLabel      = regexp.MustCompile(`(?i)(?:Given\s*Names?|Nama\s*Lengkap|Full\s*Name)`)
	reNameLabelStrip = regexp.MustCompile(`(?i).*(?:Given\s*Names?|Nama\s*Lengkap|Full\s*Name)[:\s]*`)
	reGivenNames     = regexp.MustCompile(`(?i)(?:Given\s*Names?|Nama\s*Lengkap)[:\s]+([A-Z\s]+)`)
	reSurname        = regexp.MustCompile(`(?i)(?:Surname|Nama\s*Keluarga)[:\s]+([A-Z\s]+)`)
)

// extractNamePassport reads the holder name from visual text, preferring the
// value on or under the name label.
func extractNamePassport(text string) string {
	lines := strings.Split(text, "\n")

	for i, line := range lines {
		if !reNameLabel.MatchString(line) {
			continue
		}
		sameLine := strings.TrimSpace(reNameLabelStrip.ReplaceAllString(line, ""))
		if valid := sanitize.CleanName(sameLine); valid != "" {
			return valid
		}
		if i+1 < len(lines) {
			if valid := sanitize.CleanName(strings.TrimSpace(lines[i+1])); valid != "" {
				return valid
			}
		}
	}

	var parts []string
	if m := reGivenNames.FindStringSubmatch(text); m != nil {
		parts = append(parts, strings.TrimSpace(m[1]))
	}
	if m := reSurname.FindStringSubmatch(text); m != nil {
		parts = append(parts, strings.TrimSpace(m[1]))
	}
	return strings.Join(parts, " ")
}

// placeBlacklist holds words that appear near the birth labels but are
// labels themselves, never places.
var placeBlacklist = []string{
	"KELAMIN", "SEX", "PASPOR", "PASSPORT", "TYPE", "CODE",
	"PENGELUARAN", "ISSUE", "NATIONALITY", "KEWARGANEGARAAN",
	"HABIS", "BERLAKU", "EXPIRY", "NAMA", "NAME", "FULL",
	"TGL", "DATE", "KANTOR", "OFFICE", "REG",
}

var (
	rePlaceOfBirth  = regexp.MustCompile(`(?i)(?:TEMPAT\s*LAHIR|PLACE\s*OF\s*BIRTH)[:\s/|]*([A-Za-z\s]{2,})`)
	reNonAlphaSpace = regexp.MustCompile(`[^A-Za-z\s]`)
)

// extractPassportPlaceOfBirth reads the birthplace, which only exists in the
// visual zone.
func extractPassportPlaceOfBirth(text string) string {
	lines := strings.Split(text, "\n")

	for i, line := range lines {
		upper := strings.ToUpper(line)
		if !strings.Contains(upper, "TEMPAT LAHIR") && !strings.Contains(upper, "PLACE OF BIRTH") {
			continue
		}
		if m := rePlaceOfBirth.FindStringSubmatch(line); m != nil {
			place := strings.ToUpper(strings.TrimSpace(m[1]))
			place = strings.TrimSpace(reNonUpperSpace.ReplaceAllString(place, ""))
			if len(place) >= 2 && !containsAnyWord(place, placeBlacklist) {
				return place
			}
		}
		if i+1 < len(lines) {
			next := strings.TrimSpace(lines[i+1])
			place := strings.ToUpper(strings.TrimSpace(reNonAlphaSpace.ReplaceAllString(next, "")))
			if len(place) >= 2 && !containsAnyWord(place, placeBlacklist) {
				return place
			}
		}
	}
	return ""
}

var reMonthDate = regexp.MustCompile(`(?i)(\d{1,2})\s*(JAN|FEB|MAR|APR|MAY|MEI|JUN|JUL|AUG|AGU|SEP|OCT|OKT|NOV|DEC|DES)\s*(\d{4})`)

var (
	dobLabels    = []string{"TGL. LAHIR", "TGL LAHIR", "DATE OF BIRTH", "TGL.LAHIR"}
	expiryLabels = []string{"TGL. HABIS BERLAKU", "TGL HABIS", "DATE OF EXPIRY"}
)

func monthDateOnLine(line string) string {
	if m := reMonthDate.FindStringSubmatch(line); m != nil {
		return m[1] + " " + strings.ToUpper(m[2]) + " " + m[3]
	}
	return ""
}

func numericDateOnLine(line string) string {
	if m := reNumericDMY.FindStringSubmatch(line); m != nil {
		return m[1] + "-" + m[2] + "-" + m[3]
	}
	return ""
}

// extractPassportDateOfBirth reads the birth date from visual text.
func extractPassportDateOfBirth(text string) string {
	lines := strings.Split(text, "\n")

	for _, line := range lines {
		if !containsAnyWord(strings.ToUpper(line), dobLabels) {
			continue
		}
		if d := monthDateOnLine(line); d != "" {
			return d
		}
		if d := numericDateOnLine(line); d != "" {
			return d
		}
	}

	for _, line := range lines {
		lower := strings.ToLower(line)
		if strings.Contains(lower, "lahir") || strings.Contains(lower, "birth") {
			if d := monthDateOnLine(line); d != "" {
				return d
			}
		}
	}
	return ""
}

// extractPassportDateOfExpiry reads the expiry date from visual text. The
// broad BERLAKU fallback excludes HINGGA so KTP validity lines don't match.
func extractPassportDateOfExpiry(text string) string {
	lines := strings.Split(text, "\n")

	for _, line := range lines {
		if !containsAnyWord(strings.ToUpper(line), expiryLabels) {
			continue
		}
		if d := monthDateOnLine(line); d != "" {
			return d
		}
		if d := numericDateOnLine(line); d != "" {
			return d
		}
	}

	for _, line := range lines {
		upper := strings.ToUpper(line)
		if strings.Contains(upper, "BERLAKU") && !strings.Contains(upper, "HINGGA") {
			if d := monthDateOnLine(line); d != "" {
				return d
			}
		}
	}
	return ""
}

// officeBlacklist holds label fragments around the issuing office that are
// not city names.
var officeBlacklist = []string{
	"YANG", "MENGELUARKAN", "ISSUING", "OFFICE", "KANTOR",
	"PASSPORT", "PASPOR", "TYPE", "CODE", "DATE", "TGL",
}

var reIssuingOffice = regexp.MustCompile(`(?i)(?:MENGELUARKAN|ISSUING\s*OFFICE)\s*[:\s/|]+\s*([A-Za-z\s]{2,})`)

// extractPassportIssuingOffice reads the issuing office, the Kota Paspor
// column of the roster. The value usually sits on its own line below the
// label.
func extractPassportIssuingOffice(text string) string {
	lines := strings.Split(text, "\n")

	for i, line := range lines {
		upper := strings.ToUpper(line)
		if !strings.Contains(upper, "KANTOR") && !strings.Contains(upper, "ISSUING OFFICE") &&
			!strings.Contains(upper, "MENGELUARKAN") {
			continue
		}
		if i+1 < len(lines) {
			next := strings.TrimSpace(lines[i+1])
			office := strings.ToUpper(strings.TrimSpace(reNonAlphaSpace.ReplaceAllString(next, "")))
			if len(office) >= 2 && !containsAnyWord(office, officeBlacklist) {
				return office
			}
		}
		if m := reIssuingOffice.FindStringSubmatch(line); m != nil {
			office := strings.ToUpper(strings.TrimSpace(m[1]))
			office = strings.TrimSpace(reNonUpperSpace.ReplaceAllString(office, ""))
			if len(office) >= 2 && !containsAnyWord(office, officeBlacklist) {
				return office
			}
		}
	}
	return ""
}

// hasTripleRepeat reports whether any character occurs three times in a row,
// a telltale of chevron-repair damage in an MRZ-derived name.
func hasTripleRepeat(s string) bool {
	runes := []rune(s)
	for i := 2; i < len(runes); i++ {
		if runes[i] == runes[i-1] && runes[i-1] == runes[i-2] {
			return true
		}
	}
	return false
}

// parsePassport extracts every passport field, combining the MRZ and the
// visual zone. The MRZ is authoritative for numbers; visual text usually
// reads better for names and dates.
func parsePassport(text string) *entity.Extraction {
	result := &entity.Extraction{DocumentType: constants.DocTypePassport}

	mrz := parseMRZ(text)

	mrzName := mrz.Name
	visualName := extractNamePassport(text)
	finalName := mrzName
	switch {
	case mrzName == "":
		finalName = visualName
	case visualName != "":
		if !strings.Contains(mrzName, " ") && strings.Contains(visualName, " ") {
			finalName = visualName
		} else if strings.Contains(mrzName, "<") || hasTripleRepeat(mrzName) {
			finalName = visualName
		} else if len(visualName) > len(mrzName)+3 {
			finalName = visualName
		}
	}
	result.Nama = finalName

	if mrz.PassportNumber != "" {
		result.NoPaspor = mrz.PassportNumber
	} else {
		result.NoPaspor = extractPassportNumber(text)
	}

	result.TanggalLahir = firstNonEmpty(
		extractPassportDateOfBirth(text),
		mrz.DateOfBirth,
		ExtractDate(text, "Birth"),
	)

	result.TempatLahir = extractPassportPlaceOfBirth(text)

	result.TanggalPaspor = firstNonEmpty(
		extractPassportDateOfExpiry(text),
		mrz.DateOfExpiry,
		ExtractDate(text, "Issue"),
	)

	result.KotaPaspor = extractPassportIssuingOffice(text)
	result.NoIdentitas = result.NoPaspor

	return result
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
