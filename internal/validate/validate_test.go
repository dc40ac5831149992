package validate

import (
	"strings"
	"testing"

	"github.com/jamaahin/docpipe/internal/entity"
)

func TestNIK(t *testing.T) {
	tests := []struct {
		name string
		nik  string
		want string
	}{
		{"valid", "3201011503900001", ""},
		{"empty passes", "", ""},
		{"separators stripped", "3201.0115.0390.0001", ""},
		{"too short", "320101150390", "NIK harus 16 digit (ditemukan 12 digit)"},
		{"too long", "32010115039000015", "NIK harus 16 digit (ditemukan 17 digit)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NIK(tt.nik); got != tt.want {
				t.Errorf("NIK(%q) = %q, want %q", tt.nik, got, tt.want)
			}
		})
	}
}

func TestDate(t *testing.T) {
	tests := []struct {
		name  string
		value string
		ok    bool
	}{
		{"standard", "1990-05-16", true},
		{"day first", "16-05-1990", true},
		{"slashes day first", "16/05/1990", true},
		{"slashes year first", "1990/05/16", true},
		{"padded input", " 1990-05-16 ", true},
		{"empty passes", "", true},
		{"textual month", "16 MEI 1990", false},
		{"impossible day", "1990-05-99", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Date(tt.value, "Tanggal Lahir")
			if tt.ok && got != "" {
				t.Errorf("Date(%q) = %q, want no warning", tt.value, got)
			}
			if !tt.ok && got != "Tanggal Lahir: format tanggal tidak valid (gunakan YYYY-MM-DD)" {
				t.Errorf("Date(%q) = %q, want format warning", tt.value, got)
			}
		})
	}
}

func TestPassportNumber(t *testing.T) {
	tests := []struct {
		name     string
		passport string
		ok       bool
	}{
		{"six digits", "A123456", true},
		{"seven digits", "C1234567", true},
		{"lowercase normalized", "a123456", true},
		{"empty passes", "", true},
		{"no letter", "1234567", false},
		{"two letters", "AB123456", false},
		{"too few digits", "A12345", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PassportNumber(tt.passport)
			if tt.ok && got != "" {
				t.Errorf("PassportNumber(%q) = %q, want no warning", tt.passport, got)
			}
			if !tt.ok && !strings.Contains(got, "No Paspor format tidak valid") {
				t.Errorf("PassportNumber(%q) = %q, want format warning", tt.passport, got)
			}
		})
	}
}

func TestVisaNumber(t *testing.T) {
	if got := VisaNumber("9012345678"); got != "" {
		t.Errorf("VisaNumber(valid) = %q, want no warning", got)
	}
	if got := VisaNumber("1234567"); got != "No Visa terlalu pendek: '1234567'" {
		t.Errorf("VisaNumber(short) = %q, want short warning", got)
	}
	if got := VisaNumber(""); got != "" {
		t.Errorf("VisaNumber(empty) = %q, want no warning", got)
	}
}

func TestCitizenship(t *testing.T) {
	for _, ok := range []string{"WNI", "WNA", "wni", "wna", ""} {
		if got := Citizenship(ok); got != "" {
			t.Errorf("Citizenship(%q) = %q, want no warning", ok, got)
		}
	}
	if got := Citizenship("INDONESIA"); got != "Kewarganegaraan harus WNI atau WNA" {
		t.Errorf("Citizenship(invalid) = %q, want warning", got)
	}
}

func TestRecordNIKOnlyCheckedForKTP(t *testing.T) {
	rec := &entity.Record{
		Nama:            "BUDI SANTOSO",
		JenisIdentitas:  "Paspor",
		NoIdentitas:     "A1234567",
		NoPaspor:        "A1234567",
		Kewarganegaraan: "WNI",
	}
	for _, w := range Record(rec) {
		if w.Field == "no_identitas" {
			t.Errorf("unexpected NIK warning for passport record: %q", w.Message)
		}
	}

	rec.JenisIdentitas = "KTP"
	found := false
	for _, w := range Record(rec) {
		if w.Field == "no_identitas" {
			found = true
		}
	}
	if !found {
		t.Error("expected NIK warning for KTP record with short identity number")
	}
}

func TestRecordCollectsAllWarnings(t *testing.T) {
	rec := &entity.Record{
		JenisIdentitas:  "KTP",
		NoIdentitas:     "123",
		NoPaspor:        "BAD",
		NoVisa:          "123",
		TanggalLahir:    "16 MEI 1990",
		Kewarganegaraan: "INDONESIA",
	}
	warnings := Record(rec)
	wantFields := map[string]bool{
		"no_identitas": true, "no_paspor": true, "no_visa": true,
		"tanggal_lahir": true, "kewarganegaraan": true, "nama": true,
	}
	if len(warnings) != len(wantFields) {
		t.Fatalf("got %d warnings %v, want %d", len(warnings), warnings, len(wantFields))
	}
	for _, w := range warnings {
		if !wantFields[w.Field] {
			t.Errorf("unexpected warning field %q", w.Field)
		}
	}
}

func TestRecordCleanRecordHasNoWarnings(t *testing.T) {
	rec := &entity.Record{
		Nama:            "BUDI SANTOSO",
		JenisIdentitas:  "KTP",
		NoIdentitas:     "3201011503900001",
		TanggalLahir:    "1990-05-16",
		Kewarganegaraan: "WNI",
	}
	if warnings := Record(rec); len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}
}
