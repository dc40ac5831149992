package parse

import (
	"fmt"
	"regexp"
	"strings"
)

// mrzData holds the fields recoverable from an ICAO 9303 machine readable
// zone. Empty strings mean the field was absent or unreadable.
type mrzData struct {
	PassportNumber string
	Surname        string
	GivenNames     string
	Name           string
	DateOfBirth    string
	DateOfExpiry   string
	Sex            string
	Nationality    string
}

// bracketFixer maps characters OCR renders instead of the MRZ filler '<'.
var bracketFixer = strings.NewReplacer(
	"(", "<", ")", "<",
	"[", "<", "]", "<",
	"{", "<", "}", "<",
	"«", "<", "»", "<",
	"£", "<", "¢", "<",
	"|", "<",
)

// chevronLookalikes are letters OCR produces where filler chevrons sit.
var chevronLookalikes = []string{"K", "C", "E", "R", "X", "V", "Y"}

var (
	reTrailingGarbage = regexp.MustCompile(`(<{3,})([KCERXVY]+)$`)
	reNonMRZ          = regexp.MustCompile(`[^A-Z0-9<]`)
	reTrailingLetter  = regexp.MustCompile(`\s[A-Z]$`)
)

// mrzNumberFixer repairs digit lookalikes in the numeric MRZ columns.
var mrzNumberFixer = strings.NewReplacer(
	"O", "0", "Q", "0", "D", "0",
	"I", "1", "L", "1", "l", "1", "|", "1",
	"S", "5", "s", "5",
	"B", "8",
	"G", "6", "g", "9",
	"Z", "2", "z", "2",
	"T", "7",
	"A", "4",
)

// CleanMRZLine normalizes one candidate MRZ line: uppercase, bracket-like
// characters become '<', letters that OCR habitually swaps for filler
// chevrons are repaired over several passes, trailing lookalike garbage is
// rewritten as filler, and anything outside [A-Z0-9<] is dropped.
func CleanMRZLine(line string) string {
	if line == "" {
		return ""
	}
	result := bracketFixer.Replace(strings.ToUpper(line))

	// Lookalike repair converges only after repeated passes because each
	// rewrite can expose another sandwiched letter.
	for pass := 0; pass < 5; pass++ {
		for _, c := range chevronLookalikes {
			result = strings.ReplaceAll(result, "<"+c+"<", "<<<")
			result = strings.ReplaceAll(result, "<"+c+c+"<", "<<<<")
		}
		result = strings.ReplaceAll(result, "K<", "<<")
		result = strings.ReplaceAll(result, "<K", "<<")
		result = strings.ReplaceAll(result, "C<", "<<")
		result = strings.ReplaceAll(result, "<C", "<<")
	}

	if m := reTrailingGarbage.FindStringSubmatchIndex(result); m != nil {
		fillerLen := len(result) - m[0]
		result = result[:m[0]] + strings.Repeat("<", fillerLen)
	}

	return reNonMRZ.ReplaceAllString(result, "")
}

// parseMRZ locates and decodes the machine readable zone in OCR text.
// Line one carries the names; line two the passport number, nationality,
// birth date, sex and expiry at fixed columns.
func parseMRZ(text string) mrzData {
	var data mrzData

	lines := strings.Split(text, "\n")
	var line1, line2 string

	// Preferred: a line opening with the P< or V< document prefix.
	for i, line := range lines {
		cleaned := CleanMRZLine(line)
		if strings.HasPrefix(cleaned, "P<") || strings.HasPrefix(cleaned, "V<") ||
			strings.Contains(cleaned, "P<IDN") || strings.Contains(cleaned, "V<IDN") {
			if len(cleaned) >= 30 {
				line1 = cleaned
				if i+1 < len(lines) {
					next := CleanMRZLine(lines[i+1])
					if len(next) >= 30 && isAlnum(next[0]) {
						line2 = next
					}
				}
				break
			}
		}
	}

	// Fallback: lines dense with filler chevrons.
	if line1 == "" {
		for _, line := range lines {
			cleaned := CleanMRZLine(line)
			if strings.Count(cleaned, "<") >= 5 && len(cleaned) >= 30 {
				if line1 == "" {
					line1 = cleaned
					continue
				}
				line2 = cleaned
				break
			}
		}
	}

	if line1 == "" {
		return data
	}

	// Line 1: issuer prefix occupies the first 5 columns, then
	// SURNAME<<GIVEN<NAMES with '<' standing in for spaces.
	section := line1[5:]
	section = strings.ReplaceAll(section, "<<<", "<<")
	section = strings.ReplaceAll(section, "<<<<", "<<")
	parts := strings.Split(section, "<<")

	surname := strings.TrimSpace(strings.ReplaceAll(parts[0], "<", " "))
	given := ""
	var name string
	if len(parts) > 1 {
		given = strings.TrimSpace(strings.ReplaceAll(parts[1], "<", " "))
		name = strings.TrimSpace(given + " " + surname)
	} else {
		// Double chevron lost to OCR; take the whole section and drop a
		// trailing stray letter.
		name = strings.TrimSpace(strings.ReplaceAll(section, "<", " "))
		name = reTrailingLetter.ReplaceAllString(name, "")
		surname = name
	}
	data.Name = name
	data.Surname = surname
	data.GivenNames = given

	if len(line2) >= 20 {
		parseMRZLine2(line2, &data)
	}
	return data
}

func parseMRZLine2(line2 string, data *mrzData) {
	passport := mrzNumberFixer.Replace(strings.ReplaceAll(line2[0:9], "<", ""))
	if passport != "" {
		data.PassportNumber = passport
	}

	if len(line2) >= 13 {
		data.Nationality = strings.ReplaceAll(line2[10:13], "<", "")
	}

	if len(line2) >= 19 {
		if y, mm, dd, ok := decodeMRZDate(line2[13:19]); ok {
			// Two-digit birth years pivot at 30.
			if y <= 30 {
				y += 2000
			} else {
				y += 1900
			}
			data.DateOfBirth = formatMRZDate(y, mm, dd)
		}
	}

	if len(line2) >= 21 {
		if c := line2[20]; c == 'M' || c == 'F' {
			data.Sex = string(c)
		}
	}

	if len(line2) >= 27 {
		if y, mm, dd, ok := decodeMRZDate(line2[21:27]); ok {
			// Expiry dates are always in the current century.
			data.DateOfExpiry = formatMRZDate(2000+y, mm, dd)
		}
	}
}

// decodeMRZDate repairs and splits a YYMMDD column group.
func decodeMRZDate(raw string) (yy int, mm, dd string, ok bool) {
	fixed := mrzNumberFixer.Replace(raw)
	if len(fixed) != 6 || !isAllDigits(fixed) {
		return 0, "", "", false
	}
	yy = int(fixed[0]-'0')*10 + int(fixed[1]-'0')
	return yy, fixed[2:4], fixed[4:6], true
}

func formatMRZDate(year int, mm, dd string) string {
	return fmt.Sprintf("%d-%s-%s", year, mm, dd)
}

func isAlnum(c byte) bool {
	return c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z'
}

func isAllDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
