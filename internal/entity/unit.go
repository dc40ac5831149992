package entity

import "fmt"

// Upload is one file accepted at the intake edge, held in memory for the
// duration of the batch.
type Upload struct {
	Filename string
	Data     []byte
}

// RawUnit is one independently extractable image: an uploaded photo, or a
// single page rendered out of an uploaded PDF. Every unit flows through the
// engine dispatcher on its own; a multi-page PDF therefore yields several
// units that fail or succeed independently.
type RawUnit struct {
	Filename string // original upload name
	Page     int    // 1-based page number for PDF-derived units, 0 otherwise
	Image    []byte
}

// Label names the unit in logs and progress updates.
func (u RawUnit) Label() string {
	if u.Page > 0 {
		return fmt.Sprintf("%s#page%d", u.Filename, u.Page)
	}
	return u.Filename
}
