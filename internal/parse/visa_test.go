package parse

import "testing"

const visaText = `KINGDOM OF SAUDI ARABIA
VISA
Visa Number: E123456789012
Passport No: C7654321
Full Name: AHMAD FAUZI`

func TestExtractVisaNumber(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"labeled", "Visa No: 9012345678", "9012345678"},
		{"labeled with number word", "Visa Number: E123456789012", "E123456789012"},
		{"saudi shape unlabeled", "ref AB1234CD567 on file", "AB1234CD567"},
		{"too short", "Visa No: 123", ""},
		{"absent", "nothing here", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractVisaNumber(tt.text); got != tt.want {
				t.Errorf("extractVisaNumber(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestParseVisa(t *testing.T) {
	got := parseVisa(visaText)

	if got.DocumentType != "VISA" {
		t.Errorf("DocumentType = %q", got.DocumentType)
	}
	if got.Nama != "AHMAD FAUZI" {
		t.Errorf("Nama = %q", got.Nama)
	}
	if got.NoPaspor != "C7654321" {
		t.Errorf("NoPaspor = %q", got.NoPaspor)
	}
	if got.NoVisa != "E123456789012" {
		t.Errorf("NoVisa = %q", got.NoVisa)
	}
	if got.NoIdentitas != "E123456789012" {
		t.Errorf("NoIdentitas = %q, want the visa number", got.NoIdentitas)
	}
}

func TestExtractDispatchesByType(t *testing.T) {
	if got := Extract(visaText); got.DocumentType != "VISA" {
		t.Errorf("visa text classified as %q", got.DocumentType)
	}
	if got := Extract(ktpText); got.DocumentType != "KTP" {
		t.Errorf("ktp text classified as %q", got.DocumentType)
	}
	if got := Extract(passportVisualText); got.DocumentType != "PASSPORT" {
		t.Errorf("passport text classified as %q", got.DocumentType)
	}
	if got := Extract("???"); got.DocumentType != "UNKNOWN" {
		t.Errorf("unparseable text classified as %q", got.DocumentType)
	}
}
