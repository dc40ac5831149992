package parse

import "testing"

func TestFixOCRDigits(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"O123", "0123"},
		{"S678", "5678"},
		{"B000", "8000"},
		{"35I5O8250692OOO2", "3515082506920002"},
		{"1234", "1234"},
	}
	for _, tt := range tests {
		if got := FixOCRDigits(tt.in); got != tt.want {
			t.Errorf("FixOCRDigits(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExtractDate(t *testing.T) {
	text := "Nama : BUDI\nTempat/Tgl Lahir : PATI, 16-05-1990\nAlamat : DUKUH"

	if got := ExtractDate(text, "Lahir"); got != "16-05-1990" {
		t.Errorf("ExtractDate(Lahir) = %q, want %q", got, "16-05-1990")
	}
	if got := ExtractDate(text, "Paspor"); got != "" {
		t.Errorf("ExtractDate(Paspor) = %q, want empty", got)
	}
}

func TestExtractDateTextualMonth(t *testing.T) {
	text := "Date of Birth: 04 MAR 1972"
	if got := ExtractDate(text, "Birth"); got != "04 MAR 1972" {
		t.Errorf("ExtractDate = %q, want %q", got, "04 MAR 1972")
	}
}
