package constants

// ProgressStatus is the canonical status for a processing session as it moves
// through the pipeline stages.
type ProgressStatus string

// Stable values (clients match on these exact strings).
const (
	StatusStarting       ProgressStatus = "starting"
	StatusProcessing     ProgressStatus = "processing"
	StatusPostProcessing ProgressStatus = "post-processing"
	StatusSanitizing     ProgressStatus = "sanitizing"
	StatusMerging        ProgressStatus = "merging"
	StatusValidating     ProgressStatus = "validating"
	StatusComplete       ProgressStatus = "complete"
	StatusError          ProgressStatus = "error"
)

// FileStatus is the per-file outcome reported for a batch.
type FileStatus string

const (
	FileStatusSuccess FileStatus = "success"
	FileStatusFailed  FileStatus = "failed"
)
