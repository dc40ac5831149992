// Package store archives finalized batches so rosters survive beyond the
// in-memory cache. The archive is optional: a nil Archiver disables it
// without touching the rest of the pipeline.
package store

import (
	"context"

	"github.com/jamaahin/docpipe/internal/entity"
)

// Archiver persists one finalized batch.
type Archiver interface {
	Archive(ctx context.Context, batch *entity.BatchResult) error
}

var (
	_ Archiver = (*Postgres)(nil)
	_ Archiver = (*SQLite)(nil)
)
