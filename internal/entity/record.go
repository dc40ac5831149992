package entity

import "github.com/jamaahin/docpipe/constants"

// Record is one canonical person-record in the Siskopatuh roster shape.
// Every field defaults to the empty string; merging only ever fills empty
// fields, never overwrites set ones.
type Record struct {
	Title             string `json:"title"`
	Nama              string `json:"nama"`
	NamaAyah          string `json:"nama_ayah"`
	JenisIdentitas    string `json:"jenis_identitas"`
	NoIdentitas       string `json:"no_identitas"`
	NamaPaspor        string `json:"nama_paspor"`
	NoPaspor          string `json:"no_paspor"`
	TanggalPaspor     string `json:"tanggal_paspor"`
	KotaPaspor        string `json:"kota_paspor"`
	TempatLahir       string `json:"tempat_lahir"`
	TanggalLahir      string `json:"tanggal_lahir"`
	Alamat            string `json:"alamat"`
	Provinsi          string `json:"provinsi"`
	Kabupaten         string `json:"kabupaten"`
	Kecamatan         string `json:"kecamatan"`
	Kelurahan         string `json:"kelurahan"`
	NoTelepon         string `json:"no_telepon"`
	NoHP              string `json:"no_hp"`
	Kewarganegaraan   string `json:"kewarganegaraan"`
	StatusPernikahan  string `json:"status_pernikahan"`
	Pendidikan        string `json:"pendidikan"`
	Pekerjaan         string `json:"pekerjaan"`
	ProviderVisa      string `json:"provider_visa"`
	NoVisa            string `json:"no_visa"`
	TanggalVisa       string `json:"tanggal_visa"`
	TanggalVisaAkhir  string `json:"tanggal_visa_akhir"`
	Asuransi          string `json:"asuransi"`
	NoPolis           string `json:"no_polis"`
	TanggalInputPolis string `json:"tanggal_input_polis"`
	TanggalAwalPolis  string `json:"tanggal_awal_polis"`
	TanggalAkhirPolis string `json:"tanggal_akhir_polis"`
	NoBPJS            string `json:"no_bpjs"`
}

// RecordFromExtraction maps a raw extraction into the roster shape. The
// passport-name column mirrors the extracted name, and citizenship defaults
// to WNI when the engine left it blank.
func RecordFromExtraction(x *Extraction) *Record {
	kewarganegaraan := x.Kewarganegaraan
	if kewarganegaraan == "" {
		kewarganegaraan = constants.CitizenshipWNI
	}
	docType := x.DocumentType
	if docType == "" {
		docType = constants.DocTypeUnknown
	}
	return &Record{
		Nama:             x.Nama,
		NamaAyah:         x.NamaAyah,
		JenisIdentitas:   docType,
		NoIdentitas:      x.NoIdentitas,
		NamaPaspor:       x.Nama,
		NoPaspor:         x.NoPaspor,
		TanggalPaspor:    x.TanggalPaspor,
		KotaPaspor:       x.KotaPaspor,
		TempatLahir:      x.TempatLahir,
		TanggalLahir:     x.TanggalLahir,
		Alamat:           x.Alamat,
		Provinsi:         x.Provinsi,
		Kabupaten:        x.Kabupaten,
		Kecamatan:        x.Kecamatan,
		Kelurahan:        x.Kelurahan,
		NoTelepon:        x.NoTelepon,
		NoHP:             x.NoHP,
		Kewarganegaraan:  kewarganegaraan,
		StatusPernikahan: x.StatusPernikahan,
		Pendidikan:       x.Pendidikan,
		Pekerjaan:        x.Pekerjaan,
		ProviderVisa:     x.ProviderVisa,
		NoVisa:           x.NoVisa,
		TanggalVisa:      x.TanggalVisa,
		TanggalVisaAkhir: x.TanggalVisaAkhir,
	}
}
