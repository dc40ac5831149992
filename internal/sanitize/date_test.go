package sanitize

import "testing"

func TestStandardizeDate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"indonesian month", "16 MEI 1990", "1990-05-16"},
		{"indonesian august", "17 AGU 1995", "1995-08-17"},
		{"english month", "16 MAY 1990", "1990-05-16"},
		{"december", "16 DES 2001", "2001-12-16"},
		{"single digit day padded", "1 JAN 2024", "2024-01-01"},
		{"month with dashes", "16-MEI-1990", "1990-05-16"},
		{"lookalike in year", "16 MEI l990", "1990-05-16"},
		{"lookalike in day", "I6 MEI 1990", "1990-05-16"},
		{"numeric dd-mm-yyyy", "16-05-1990", "1990-05-16"},
		{"numeric with slashes", "16/05/1990", "1990-05-16"},
		{"numeric with dots", "16.05.1990", "1990-05-16"},
		{"numeric with spaces", "16 05 1990", "1990-05-16"},
		{"already standard", "1990-05-16", "1990-05-16"},
		{"month day swapped", "1990-13-12", "1990-12-13"},
		{"mm-dd order", "05-16-1990", "1990-05-16"},
		{"year out of range", "16-05-1850", ""},
		{"both tokens over twelve", "13-14-1990", ""},
		{"no digits", "garbage", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StandardizeDate(tt.in); got != tt.want {
				t.Errorf("StandardizeDate(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
