// Package validate applies field-level rules to merged records. Findings
// are advisory warnings, never hard failures, so operators can correct
// values in the preview before export.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jamaahin/docpipe/internal/entity"
)

var (
	reNonDigit = regexp.MustCompile(`\D`)
	rePassport = regexp.MustCompile(`^[A-Z]\d{6,7}$`)
)

// dateLayouts are the accepted date spellings, standard form first.
var dateLayouts = []string{"2006-01-02", "02-01-2006", "02/01/2006", "2006/01/02"}

// NIK checks an Indonesian national identity number: exactly 16 digits
// after stripping separators. Empty values pass.
func NIK(nik string) string {
	if nik == "" {
		return ""
	}
	cleaned := reNonDigit.ReplaceAllString(nik, "")
	if len(cleaned) != 16 {
		return fmt.Sprintf("NIK harus 16 digit (ditemukan %d digit)", len(cleaned))
	}
	return ""
}

// Date checks that a value parses in one of the accepted layouts.
func Date(value, fieldLabel string) string {
	if value == "" {
		return ""
	}
	trimmed := strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, trimmed); err == nil {
			return ""
		}
	}
	return fmt.Sprintf("%s: format tanggal tidak valid (gunakan YYYY-MM-DD)", fieldLabel)
}

// PassportNumber checks the Indonesian passport shape, one letter followed
// by 6 or 7 digits.
func PassportNumber(passport string) string {
	if passport == "" {
		return ""
	}
	cleaned := strings.ToUpper(strings.TrimSpace(passport))
	if !rePassport.MatchString(cleaned) {
		return fmt.Sprintf("No Paspor format tidak valid: '%s'", passport)
	}
	return ""
}

// VisaNumber checks minimum visa number length.
func VisaNumber(visa string) string {
	if visa == "" {
		return ""
	}
	if len(strings.TrimSpace(visa)) < 8 {
		return fmt.Sprintf("No Visa terlalu pendek: '%s'", visa)
	}
	return ""
}

// Citizenship accepts WNI or WNA in any case.
func Citizenship(value string) string {
	if value == "" {
		return ""
	}
	if u := strings.ToUpper(value); u != "WNI" && u != "WNA" {
		return "Kewarganegaraan harus WNI atau WNA"
	}
	return ""
}

// Record runs every rule against one merged record and collects the
// warnings. The returned slice is never nil so rows with no findings
// serialize as an empty list.
func Record(rec *entity.Record) []entity.Warning {
	warnings := []entity.Warning{}
	add := func(field, msg string) {
		if msg != "" {
			warnings = append(warnings, entity.Warning{Field: field, Message: msg})
		}
	}

	// The NIK rule only applies where the identity number is a NIK.
	if jenis := strings.ToUpper(rec.JenisIdentitas); jenis == "KTP" || jenis == "MERGED" {
		add("no_identitas", NIK(rec.NoIdentitas))
	}

	add("no_paspor", PassportNumber(rec.NoPaspor))
	add("no_visa", VisaNumber(rec.NoVisa))

	dateFields := []struct {
		key   string
		label string
		value string
	}{
		{"tanggal_lahir", "Tanggal Lahir", rec.TanggalLahir},
		{"tanggal_paspor", "Tanggal Paspor", rec.TanggalPaspor},
		{"tanggal_visa", "Tanggal Visa", rec.TanggalVisa},
		{"tanggal_visa_akhir", "Tanggal Visa Akhir", rec.TanggalVisaAkhir},
		{"tanggal_input_polis", "Tanggal Input Polis", rec.TanggalInputPolis},
		{"tanggal_awal_polis", "Tanggal Awal Polis", rec.TanggalAwalPolis},
		{"tanggal_akhir_polis", "Tanggal Akhir Polis", rec.TanggalAkhirPolis},
	}
	for _, df := range dateFields {
		add(df.key, Date(df.value, df.label))
	}

	add("kewarganegaraan", Citizenship(rec.Kewarganegaraan))

	if strings.TrimSpace(rec.Nama) == "" {
		add("nama", "Nama tidak boleh kosong")
	}
	return warnings
}
