package entity

// Extraction is the raw field map produced for one RawUnit by an OCR engine,
// before sanitization and merging. All fields are best-effort; an engine that
// cannot read a field leaves it empty. Err and Partial mark a unit whose
// every extraction attempt failed.
type Extraction struct {
	DocumentType     string `json:"document_type"`
	Nama             string `json:"nama"`
	NoIdentitas      string `json:"no_identitas"`
	TempatLahir      string `json:"tempat_lahir"`
	TanggalLahir     string `json:"tanggal_lahir"`
	JenisKelamin     string `json:"jenis_kelamin"`
	Alamat           string `json:"alamat"`
	RtRw             string `json:"rt_rw"`
	Kelurahan        string `json:"kelurahan"`
	Kecamatan        string `json:"kecamatan"`
	Kabupaten        string `json:"kabupaten"`
	Provinsi         string `json:"provinsi"`
	Agama            string `json:"agama"`
	StatusPernikahan string `json:"status_pernikahan"`
	Pekerjaan        string `json:"pekerjaan"`
	Pendidikan       string `json:"pendidikan"`
	Kewarganegaraan  string `json:"kewarganegaraan"`
	NoPaspor         string `json:"no_paspor"`
	TanggalPaspor    string `json:"tanggal_paspor"`
	KotaPaspor       string `json:"kota_paspor"`
	NoVisa           string `json:"no_visa"`
	TanggalVisa      string `json:"tanggal_visa"`
	TanggalVisaAkhir string `json:"tanggal_visa_akhir"`
	ProviderVisa     string `json:"provider_visa"`
	NamaAyah         string `json:"nama_ayah"`
	NoTelepon        string `json:"no_telepon"`
	NoHP             string `json:"no_hp"`

	Err     string `json:"_error,omitempty"`
	Partial bool   `json:"_partial,omitempty"`
}

// Useful reports whether the extraction carries at least one identifying
// field. Results failing this never reach the cache or the merge stage, so a
// blank page cannot pollute cross-document merging.
func (e *Extraction) Useful() bool {
	return e.Nama != "" || e.NoIdentitas != "" || e.NoPaspor != "" || e.NoVisa != ""
}
