package vision

// extractPrompt instructs the model to read one Indonesian identity document
// and answer with the flat field JSON the rest of the pipeline consumes.
// Field semantics here must stay aligned with entity.Extraction.
const extractPrompt = `Kamu adalah OCR specialist untuk dokumen identitas Indonesia.
Analisis gambar ini dan ekstrak SEMUA informasi yang terlihat.

Tentukan jenis dokumen: KTP, PASPOR, atau VISA.

Kembalikan HANYA JSON (tanpa markdown, tanpa backticks) dengan format berikut:
{
  "document_type": "KTP" atau "PASPOR" atau "VISA",
  "nama": "nama lengkap",
  "no_identitas": "NIK atau nomor identitas",
  "tempat_lahir": "kota lahir",
  "tanggal_lahir": "DD-MM-YYYY",
  "jenis_kelamin": "LAKI-LAKI atau PEREMPUAN",
  "alamat": "alamat lengkap",
  "rt_rw": "RT/RW",
  "kelurahan": "kelurahan/desa",
  "kecamatan": "kecamatan",
  "kabupaten": "kabupaten/kota",
  "provinsi": "provinsi",
  "agama": "agama",
  "status_pernikahan": "BELUM KAWIN/KAWIN/CERAI HIDUP/CERAI MATI",
  "pekerjaan": "pekerjaan",
  "pendidikan": "pendidikan terakhir",
  "kewarganegaraan": "WNI atau WNA",
  "no_paspor": "nomor paspor (jika paspor/visa)",
  "tanggal_paspor": "tanggal terbit paspor DD-MM-YYYY",
  "kota_paspor": "kota terbit paspor",
  "no_visa": "nomor visa (jika visa)",
  "tanggal_visa": "tanggal terbit visa DD-MM-YYYY",
  "tanggal_visa_akhir": "tanggal berakhir visa DD-MM-YYYY",
  "provider_visa": "provider/embassy visa",
  "nama_ayah": "nama ayah (jika ada)",
  "no_telepon": "nomor telepon (jika ada)",
  "no_hp": "nomor HP (jika ada)"
}

Isi field yang tidak ditemukan dengan string kosong "".
PENTING: Kembalikan HANYA JSON, tanpa teks lain.`

// textPromptPreamble separates the instruction block from pre-OCRed document
// text in the hybrid path.
const textPromptPreamble = "\n\nBerikut teks dari dokumen:\n\n"
