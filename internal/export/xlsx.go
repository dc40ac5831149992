// Package export writes finalized rosters as Siskopatuh-shaped XLSX
// workbooks. Column order and header wording follow the upstream import
// template exactly, stray double space included, so the sheet uploads
// without manual fixes.
package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jamaahin/docpipe/internal/entity"
)

const sheetName = "Data Jamaah"

// rosterHeaders is the Siskopatuh column set, in upload order.
var rosterHeaders = []string{
	"Title",
	"Nama (Sesuai Dengan nama Pada Kartu Vaksin)",
	"Nama Ayah",
	"Jenis Identitas",
	"No Identitas",
	"Nama Paspor",
	"No Paspor",
	"Tanggal Dikeluarkan Paspor(yyyy-mm-dd)",
	"Kota Paspor",
	"Tempat Lahir",
	"Tanggal Lahir(yyyy-mm-dd)",
	"Alamat",
	"Provinsi",
	"Kabupaten",
	"Kecamatan",
	"Kelurahan",
	"No. Telepon",
	"No Hp",
	"KewargaNegaraan",
	"Status Pernikahan",
	"Pendidikan",
	"Pekerjaan",
	"Provider Visa",
	"No Visa",
	"Tanggal Berlaku Visa (yyyy-mm-dd)",
	"Tanggal Akhir  Visa (yyyy-mm-dd)",
	"Asuransi",
	"No Polis",
	"Tanggal Input Polis (yyyy-mm-dd)",
	"Tanggal Awal Polis (yyyy-mm-dd)",
	"Tanggal Akhir Polis (yyyy-mm-dd)",
	"No BPJS",
}

// rosterRow lists one record's values in rosterHeaders order.
func rosterRow(rec *entity.Record) []string {
	return []string{
		rec.Title, rec.Nama, rec.NamaAyah, rec.JenisIdentitas,
		rec.NoIdentitas, rec.NamaPaspor, rec.NoPaspor, rec.TanggalPaspor,
		rec.KotaPaspor, rec.TempatLahir, rec.TanggalLahir, rec.Alamat,
		rec.Provinsi, rec.Kabupaten, rec.Kecamatan, rec.Kelurahan,
		rec.NoTelepon, rec.NoHP, rec.Kewarganegaraan, rec.StatusPernikahan,
		rec.Pendidikan, rec.Pekerjaan, rec.ProviderVisa, rec.NoVisa,
		rec.TanggalVisa, rec.TanggalVisaAkhir, rec.Asuransi, rec.NoPolis,
		rec.TanggalInputPolis, rec.TanggalAwalPolis, rec.TanggalAkhirPolis,
		rec.NoBPJS,
	}
}

// Writer produces XLSX workbooks from finalized records.
type Writer struct {
	logger *slog.Logger
}

func NewWriter(logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{logger: logger}
}

// RosterXLSX returns a workbook with one row per record under the upstream
// header row.
func (w *Writer) RosterXLSX(records []*entity.Record) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	// Drop the default sheet so the workbook opens on the roster.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	for i, h := range rosterHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, err
		}
	}
	for r, rec := range records {
		for c, v := range rosterRow(rec) {
			if v == "" {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return nil, err
			}
		}
	}

	_ = f.SetColWidth(sheetName, "B", "B", 34) // nama
	_ = f.SetColWidth(sheetName, "E", "G", 20) // identity and passport numbers
	_ = f.SetColWidth(sheetName, "L", "L", 40) // alamat

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	w.logger.Info("export.xlsx.ok",
		"rows", len(records),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// Filename builds the timestamped download name for one export.
func Filename(now time.Time) string {
	return "jamaah_data_" + now.Format("20060102_150405") + ".xlsx"
}
