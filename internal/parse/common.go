// Package parse turns raw OCR text from identity documents into structured
// extractions. A classifier picks the document type and delegates to a
// per-type parser; all of them tolerate the noisy output of phone-photo OCR.
package parse

import (
	"fmt"
	"regexp"
	"strings"
)

// digitFixer repairs characters OCR commonly misreads inside numeric runs.
var digitFixer = strings.NewReplacer(
	"O", "0", "o", "0", "D", "0", "Q", "0",
	"I", "1", "l", "1", "L", "1", "|", "1", "i", "1",
	"?", "7", "T", "7",
	"S", "5", "s", "5",
	"B", "8",
	"G", "6", "g", "9",
	"A", "4",
	"Z", "2", "z", "2",
)

// FixOCRDigits maps digit lookalikes to the digits they usually stand for.
// Only call it on text that is expected to be numeric.
func FixOCRDigits(text string) string {
	return digitFixer.Replace(text)
}

var (
	reNumericDMY = regexp.MustCompile(`(\d{1,2})[-/](\d{1,2})[-/](\d{4})`)
	reTextualDMY = regexp.MustCompile(`(?i)(\d{1,2})\s+(JAN|FEB|MAR|APR|MAY|JUN|JUL|AUG|SEP|OCT|NOV|DEC)\s+(\d{4})`)
)

// ExtractDate finds a date on any line containing the keyword. The value is
// returned as found, day first; standardization to YYYY-MM-DD happens later
// in the sanitize pass.
func ExtractDate(text, keyword string) string {
	kw := strings.ToLower(keyword)
	for _, line := range strings.Split(text, "\n") {
		if !strings.Contains(strings.ToLower(line), kw) {
			continue
		}
		if m := reNumericDMY.FindStringSubmatch(line); m != nil {
			return fmt.Sprintf("%s-%s-%s", m[1], m[2], m[3])
		}
		if m := reTextualDMY.FindStringSubmatch(line); m != nil {
			return fmt.Sprintf("%s %s %s", m[1], m[2], m[3])
		}
	}
	return ""
}
