package merge

import (
	"strings"

	"github.com/jamaahin/docpipe/constants"
	"github.com/jamaahin/docpipe/internal/entity"
)

// Merge consolidates records in arrival order. Each record is matched
// against the already-consolidated list by name similarity; on a match the
// better name wins and empty fields on the survivor are filled from the
// newcomer. Records whose names match nothing start a new entry. A final
// pass reconciles identity numbers for passport and visa records.
func Merge(records []*entity.Record) []*entity.Record {
	var consolidated []*entity.Record

	for _, item := range records {
		matched := false
		for _, existing := range consolidated {
			if !IsSimilar(item.Nama, existing.Nama) {
				continue
			}
			matched = true
			mergeName(existing, item)
			fillEmpty(existing, item)
			break
		}
		if !matched {
			consolidated = append(consolidated, item)
		}
	}

	for _, rec := range consolidated {
		reconcileIdentity(rec)
	}
	return consolidated
}

// mergeName keeps the better of the two names on the existing record. A
// spaced full name beats a single token; at equal shape the longer name
// wins unless it carries the KKK repetition artifact.
func mergeName(existing, item *entity.Record) {
	currSpace := strings.Contains(existing.Nama, " ")
	newSpace := strings.Contains(item.Nama, " ")

	if newSpace && !currSpace {
		existing.Nama = item.Nama
		return
	}
	if newSpace == currSpace {
		if len(item.Nama) > len(existing.Nama) && !strings.Contains(item.Nama, "KKK") {
			existing.Nama = item.Nama
		}
	}
}

// fillEmpty copies every field that is set on src into dst where dst is
// still empty. Set fields on dst are never overwritten.
func fillEmpty(dst, src *entity.Record) {
	fill(&dst.Title, src.Title)
	fill(&dst.Nama, src.Nama)
	fill(&dst.NamaAyah, src.NamaAyah)
	fill(&dst.JenisIdentitas, src.JenisIdentitas)
	fill(&dst.NoIdentitas, src.NoIdentitas)
	fill(&dst.NamaPaspor, src.NamaPaspor)
	fill(&dst.NoPaspor, src.NoPaspor)
	fill(&dst.TanggalPaspor, src.TanggalPaspor)
	fill(&dst.KotaPaspor, src.KotaPaspor)
	fill(&dst.TempatLahir, src.TempatLahir)
	fill(&dst.TanggalLahir, src.TanggalLahir)
	fill(&dst.Alamat, src.Alamat)
	fill(&dst.Provinsi, src.Provinsi)
	fill(&dst.Kabupaten, src.Kabupaten)
	fill(&dst.Kecamatan, src.Kecamatan)
	fill(&dst.Kelurahan, src.Kelurahan)
	fill(&dst.NoTelepon, src.NoTelepon)
	fill(&dst.NoHP, src.NoHP)
	fill(&dst.Kewarganegaraan, src.Kewarganegaraan)
	fill(&dst.StatusPernikahan, src.StatusPernikahan)
	fill(&dst.Pendidikan, src.Pendidikan)
	fill(&dst.Pekerjaan, src.Pekerjaan)
	fill(&dst.ProviderVisa, src.ProviderVisa)
	fill(&dst.NoVisa, src.NoVisa)
	fill(&dst.TanggalVisa, src.TanggalVisa)
	fill(&dst.TanggalVisaAkhir, src.TanggalVisaAkhir)
	fill(&dst.Asuransi, src.Asuransi)
	fill(&dst.NoPolis, src.NoPolis)
	fill(&dst.TanggalInputPolis, src.TanggalInputPolis)
	fill(&dst.TanggalAwalPolis, src.TanggalAwalPolis)
	fill(&dst.TanggalAkhirPolis, src.TanggalAkhirPolis)
	fill(&dst.NoBPJS, src.NoBPJS)
}

func fill(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}

// reconcileIdentity keeps no_identitas in step with no_paspor. Passport and
// visa documents use the passport number as the identity number; a record
// that only has a passport number becomes a passport-type record.
func reconcileIdentity(rec *entity.Record) {
	jenis := strings.ToUpper(rec.JenisIdentitas)
	if jenis == "PASPOR" || jenis == "PASSPORT" || jenis == "VISA" {
		if rec.NoPaspor != "" {
			rec.NoIdentitas = rec.NoPaspor
		}
		return
	}
	if rec.NoPaspor != "" && rec.NoIdentitas == "" {
		rec.NoIdentitas = rec.NoPaspor
		rec.JenisIdentitas = constants.IdentityTypePaspor
	}
}
