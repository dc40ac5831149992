package vision

// extractionStringKeys lists every flat field the model is asked for besides
// document_type. Sanitization and the schema are both driven off this list
// so a field added to the prompt cannot silently skip validation.
var extractionStringKeys = []string{
	"nama",
	"no_identitas",
	"tempat_lahir",
	"tanggal_lahir",
	"jenis_kelamin",
	"alamat",
	"rt_rw",
	"kelurahan",
	"kecamatan",
	"kabupaten",
	"provinsi",
	"agama",
	"status_pernikahan",
	"pekerjaan",
	"pendidikan",
	"kewarganegaraan",
	"no_paspor",
	"tanggal_paspor",
	"kota_paspor",
	"no_visa",
	"tanggal_visa",
	"tanggal_visa_akhir",
	"provider_visa",
	"nama_ayah",
	"no_telepon",
	"no_hp",
}

// BuildExtractionSchema returns the JSON-Schema (draft 2020-12 subset) a
// model answer must satisfy after sanitization. Kept as a generic map so it
// can be validated locally and, if a provider grows support for it, shipped
// as a structured-output constraint.
func BuildExtractionSchema() map[string]any {
	props := map[string]any{
		"document_type": map[string]any{"type": "string", "minLength": 1},
	}
	for _, k := range extractionStringKeys {
		props[k] = map[string]any{"type": "string"}
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             []string{"document_type"},
	}
}
