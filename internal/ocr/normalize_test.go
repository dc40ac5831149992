package ocr

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"crlf", "NAMA\r\nBUDI\r", "NAMA\nBUDI"},
		{"tabs and space runs", "NIK\t: 3515082506920002   x", "NIK : 3515082506920002 x"},
		{"blank line collapse", "A\n\n\n\n\nB", "A\n\nB"},
		{"ruled line removed", "NAMA\n--------\nBUDI", "NAMA\n\nBUDI"},
		{"underscore border removed", "  ____  \nBUDI", "BUDI"},
		{"trailing spaces trimmed", "A   \nB", "A\nB"},
		{"digits never rewritten", "16-05-1990 05", "16-05-1990 05"},
		{"mrz untouched", "P<IDNSANTOSO<<BUDI<<<", "P<IDNSANTOSO<<BUDI<<<"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
