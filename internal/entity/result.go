package entity

import "github.com/jamaahin/docpipe/constants"

// FileOutcome is the per-file status reported back to the caller.
type FileOutcome struct {
	Filename     string               `json:"filename"`
	Status       constants.FileStatus `json:"status"`
	DocumentType string               `json:"document_type,omitempty"`
	Error        string               `json:"error,omitempty"`
	Cached       bool                 `json:"cached"`
}

// Warning is a single advisory validation finding for one record field.
type Warning struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// CacheStats is a point-in-time snapshot of the extraction cache.
type CacheStats struct {
	Size    int    `json:"size"`
	MaxSize int    `json:"max_size"`
	Hits    int64  `json:"hits"`
	Misses  int64  `json:"misses"`
	HitRate string `json:"hit_rate"`
}

// BatchResult is the full outcome of one processed batch.
type BatchResult struct {
	Records      []*Record     `json:"data"`
	Warnings     [][]Warning   `json:"validation_warnings"`
	FileOutcomes []FileOutcome `json:"file_results"`
	CacheStats   CacheStats    `json:"cache_stats"`
	SessionID    string        `json:"session_id"`
	TotalFiles   int           `json:"total_files"`
	Successful   int           `json:"successful"`
	Failed       int           `json:"failed"`
}
