package sanitize

import (
	"regexp"
	"strings"

	"github.com/jamaahin/docpipe/internal/entity"
)

var (
	reNamePunct = regexp.MustCompile("[.,\\-!@#$%^&*()_+=|<>?{}\\[\\]~`]")
	reDNPrefix  = regexp.MustCompile(`^DN\s+`)
	reIDNPrefix = regexp.MustCompile(`^IDN\s+`)
	reSESuffix  = regexp.MustCompile(`\s+SE$`)
)

// recordBlacklist is the narrower keyword set applied to already-mapped
// records. Visa pages legitimately carry no name, so a garbage name clears
// the field instead of dropping the record when other identifiers exist.
var recordBlacklist = []string{
	"PROVINSI", "KABUPATEN", "JAWA", "NIK", "LAKI-LAKI", "PEREMPUAN",
	"AGAMA", "KAWIN", "GOL. DARAH", "GOL DARAH", "PARTAI",
}

// CleanRecord normalizes one mapped record in place and reports whether it
// should be kept. A record with no name and no visa, passport, or identity
// number carries nothing worth merging and is dropped.
func CleanRecord(rec *entity.Record) bool {
	hasVisaData := rec.NoVisa != "" || rec.TanggalVisa != "" || rec.ProviderVisa != ""
	hasPassportData := rec.NoPaspor != "" || rec.TanggalPaspor != ""
	hasIDData := rec.NoIdentitas != ""
	hasName := strings.TrimSpace(rec.Nama) != ""

	if !hasName && !hasVisaData && !hasPassportData && !hasIDData {
		return false
	}

	if hasName {
		name := strings.ToUpper(rec.Nama)
		name = reNamePunct.ReplaceAllString(name, " ")
		name = strings.TrimSpace(reMultiSpace.ReplaceAllString(name, " "))
		name = reDNPrefix.ReplaceAllString(name, "")
		name = reIDNPrefix.ReplaceAllString(name, "")
		name = reSESuffix.ReplaceAllString(name, "")

		if len(name) < 3 || containsAny(name, recordBlacklist) {
			if !hasVisaData && !hasPassportData && !hasIDData {
				return false
			}
			name = ""
		}
		rec.Nama = name
	}

	rec.TanggalLahir = fixDate(rec.TanggalLahir)
	rec.TanggalPaspor = fixDate(rec.TanggalPaspor)
	rec.TanggalVisa = fixDate(rec.TanggalVisa)
	rec.TanggalVisaAkhir = fixDate(rec.TanggalVisaAkhir)

	rec.TempatLahir = strings.ToUpper(strings.TrimSpace(rec.TempatLahir))
	return true
}

func fixDate(s string) string {
	if s == "" {
		return s
	}
	if std := StandardizeDate(s); std != "" {
		return std
	}
	return s
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
