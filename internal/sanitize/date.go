package sanitize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Separator punctuation is unified to "-" before any pattern matching.
var sepReplacer = strings.NewReplacer(":", "-", ".", "-", ",", "-", "_", "-")

// digitReplacer repairs characters OCR commonly confuses with digits. It is
// applied to day/year tokens only in the textual strategy so month names
// like MEI keep their letters, and to the whole text in the numeric strategy
// where no letters are expected.
var digitReplacer = strings.NewReplacer("I", "1", "L", "1", "O", "0", "|", "1", "?", "7")

// monthNames maps Indonesian and English month abbreviations, checked in
// order so the first abbreviation contained in the token wins.
var monthNames = []struct {
	abbr string
	num  string
}{
	{"JAN", "01"}, {"FEB", "02"}, {"PEB", "02"}, {"MAR", "03"},
	{"APR", "04"}, {"MEI", "05"}, {"MAY", "05"}, {"JUN", "06"},
	{"JUL", "07"}, {"AGU", "08"}, {"AUG", "08"}, {"SEP", "09"},
	{"OKT", "10"}, {"OCT", "10"}, {"NOV", "11"}, {"DES", "12"}, {"DEC", "12"},
}

var (
	// Day and year groups tolerate digit lookalikes so "I6 MEI 1990" and
	// "16 MEI l990" still parse.
	reTextualDate = regexp.MustCompile(`([0-9ILO|?]{1,2})[\s\-]+([A-Z]{3,})[\s\-]+([0-9ILO|?]{4})`)
	reDigitRun    = regexp.MustCompile(`\d+`)
)

// StandardizeDate converts a raw OCR date string to YYYY-MM-DD. It tries a
// textual month pattern (16 MEI 1990) first, then falls back to resolving
// numeric tokens with day/month disambiguation. Returns "" when the text
// cannot be resolved to a plausible date; callers keep the original value.
func StandardizeDate(raw string) string {
	text := sepReplacer.Replace(strings.ToUpper(strings.TrimSpace(raw)))
	if text == "" {
		return ""
	}

	if m := reTextualDate.FindStringSubmatch(text); m != nil {
		day := digitReplacer.Replace(m[1])
		year := digitReplacer.Replace(m[3])
		for _, mn := range monthNames {
			if strings.Contains(m[2], mn.abbr) {
				if d, err := strconv.Atoi(day); err == nil && d >= 1 && d <= 31 {
					return fmt.Sprintf("%s-%s-%02d", year, mn.num, d)
				}
				break
			}
		}
	}

	nums := reDigitRun.FindAllString(digitReplacer.Replace(text), -1)
	if len(nums) < 3 {
		return ""
	}
	year := ""
	for _, n := range nums {
		if len(n) == 4 {
			year = n
			break
		}
	}
	if year == "" {
		return ""
	}
	if y, err := strconv.Atoi(year); err != nil || y < 1900 || y > 2040 {
		return ""
	}
	var others []string
	for _, n := range nums {
		if n != year {
			others = append(others, n)
		}
	}
	if len(others) < 2 {
		return ""
	}
	n1, err1 := strconv.Atoi(others[0])
	n2, err2 := strconv.Atoi(others[1])
	if err1 != nil || err2 != nil {
		return ""
	}

	// One token above 12 must be the day; otherwise assume DD-MM, the
	// standard Indonesian order.
	var day, month int
	switch {
	case n2 > 12 && n1 <= 12:
		month, day = n1, n2
	case n1 > 12 && n2 <= 12:
		day, month = n1, n2
	case n1 <= 12 && n2 <= 12:
		day, month = n1, n2
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return ""
	}
	return fmt.Sprintf("%s-%02d-%02d", year, month, day)
}
