package parse

import "testing"

const (
	mrzLine1 = "P<IDNSANTOSO<<BUDI<HERMAWAN<<<<<<<<<<<<<<<<<"
	mrzLine2 = "C7654321<8IDN9005162M3005162<<<<<<<<<<<<<<04"
)

func TestCleanMRZLine(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lookalikes between chevrons", "P<IDN<K<C<E<<<", "P<IDN<<<<<<<<<"},
		{"brackets become chevrons", "P(IDN)SANTOSO", "P<IDN<SANTOSO"},
		{"lowercase uppercased", "p<idnsantoso", "P<IDNSANTOSO"},
		{"spaces and punctuation dropped", "P<IDN SANTOSO.", "P<IDNSANTOSO"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanMRZLine(tt.in); got != tt.want {
				t.Errorf("CleanMRZLine(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseMRZ(t *testing.T) {
	got := parseMRZ(mrzLine1 + "\n" + mrzLine2)

	if got.Name != "BUDI HERMAWAN SANTOSO" {
		t.Errorf("Name = %q", got.Name)
	}
	if got.Surname != "SANTOSO" {
		t.Errorf("Surname = %q", got.Surname)
	}
	if got.GivenNames != "BUDI HERMAWAN" {
		t.Errorf("GivenNames = %q", got.GivenNames)
	}
	if got.PassportNumber != "C7654321" {
		t.Errorf("PassportNumber = %q", got.PassportNumber)
	}
	if got.Nationality != "IDN" {
		t.Errorf("Nationality = %q", got.Nationality)
	}
	if got.DateOfBirth != "1990-05-16" {
		t.Errorf("DateOfBirth = %q", got.DateOfBirth)
	}
	if got.Sex != "M" {
		t.Errorf("Sex = %q", got.Sex)
	}
	if got.DateOfExpiry != "2030-05-16" {
		t.Errorf("DateOfExpiry = %q", got.DateOfExpiry)
	}
}

func TestParseMRZBirthYearPivot(t *testing.T) {
	// Birth year 25 is in the 2000s, 31 is in the 1900s.
	young := "C7654321<8IDN2505162M3005162<<<<<<<<<<<<<<04"
	got := parseMRZ(mrzLine1 + "\n" + young)
	if got.DateOfBirth != "2025-05-16" {
		t.Errorf("DateOfBirth = %q, want 2025-05-16", got.DateOfBirth)
	}

	old := "C7654321<8IDN3105162M3005162<<<<<<<<<<<<<<04"
	got = parseMRZ(mrzLine1 + "\n" + old)
	if got.DateOfBirth != "1931-05-16" {
		t.Errorf("DateOfBirth = %q, want 1931-05-16", got.DateOfBirth)
	}
}

func TestMRZNumberRepair(t *testing.T) {
	// Digit lookalikes in the passport number column are repaired.
	noisy := "CS6I4321<8IDN9005162M3005162<<<<<<<<<<<<<<04"
	got := parseMRZ(mrzLine1 + "\n" + noisy)
	if got.PassportNumber != "C5614321" {
		t.Errorf("PassportNumber = %q, want C5614321", got.PassportNumber)
	}
}

func TestParseMRZAbsent(t *testing.T) {
	got := parseMRZ("Nama : BUDI SANTOSO\nNIK : 3515082506920002")
	if got.Name != "" || got.PassportNumber != "" {
		t.Errorf("expected empty result, got %+v", got)
	}
}

func TestParseMRZLine1Only(t *testing.T) {
	got := parseMRZ(mrzLine1)
	if got.Name != "BUDI HERMAWAN SANTOSO" {
		t.Errorf("Name = %q", got.Name)
	}
	if got.PassportNumber != "" {
		t.Errorf("PassportNumber = %q, want empty without line 2", got.PassportNumber)
	}
}
