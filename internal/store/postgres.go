package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/jamaahin/docpipe/internal/common"
	"github.com/jamaahin/docpipe/internal/entity"
)

// schemaDDL statements run one at a time; the stdlib pgx driver rejects
// multi-statement strings.
var schemaDDL = []string{
	`CREATE TABLE IF NOT EXISTS batch_archive (
		id          BIGSERIAL PRIMARY KEY,
		session_id  TEXT NOT NULL,
		total_files INTEGER NOT NULL,
		successful  INTEGER NOT NULL,
		failed      INTEGER NOT NULL,
		records     JSONB NOT NULL,
		archived_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS batch_archive_archived_at_idx ON batch_archive (archived_at)`,
}

// Postgres archives batches into a single table over plain SQL.
type Postgres struct {
	pool   *pgxpool.Pool
	db     *sql.DB
	logger *slog.Logger
}

// Open connects a pgx pool, wraps it for database/sql, and ensures the
// archive table exists.
func Open(ctx context.Context, dsn string, logger *slog.Logger) (*Postgres, error) {
	if logger == nil {
		logger = slog.Default()
	}
	pc, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, common.WrapError(err, "parse archive dsn")
	}
	pc.ConnConfig.RuntimeParams["application_name"] = "docpipe"

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(dialCtx, pc)
	if err != nil {
		return nil, common.WrapError(err, "connect archive store")
	}

	db := stdlib.OpenDBFromPool(pool)
	for _, ddl := range schemaDDL {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			pool.Close()
			return nil, common.WrapError(err, "ensure archive schema")
		}
	}

	logger.Info("store.open.ok")
	return &Postgres{pool: pool, db: db, logger: logger}, nil
}

// Archive inserts one row per finalized batch with the merged records as
// JSON.
func (p *Postgres) Archive(ctx context.Context, batch *entity.BatchResult) error {
	records, err := json.Marshal(batch.Records)
	if err != nil {
		return common.WrapError(err, "encode records")
	}
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO batch_archive (session_id, total_files, successful, failed, records)
		 VALUES ($1, $2, $3, $4, $5)`,
		batch.SessionID, batch.TotalFiles, batch.Successful, batch.Failed, records,
	)
	if err != nil {
		return common.WrapError(err, "insert batch")
	}
	p.logger.Info("store.archive.ok",
		"session_id", batch.SessionID,
		"records", len(batch.Records),
	)
	return nil
}

// PurgeOlderThan deletes archived batches older than the retention window
// and reports how many rows went away.
func (p *Postgres) PurgeOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	cutoff := time.Now().Add(-age)
	res, err := p.db.ExecContext(ctx, `DELETE FROM batch_archive WHERE archived_at < $1`, cutoff)
	if err != nil {
		return 0, common.WrapError(err, "purge batches")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		p.logger.Info("store.purge.ok", "rows", n, "cutoff", cutoff.Format(time.RFC3339))
	}
	return n, nil
}

// CountBatches reports how many batches sit in the archive.
func (p *Postgres) CountBatches(ctx context.Context) (int64, error) {
	var n int64
	if err := p.db.QueryRowContext(ctx, `SELECT count(*) FROM batch_archive`).Scan(&n); err != nil {
		return 0, common.WrapError(err, "count batches")
	}
	return n, nil
}

// Ping checks connectivity, for health probes.
func (p *Postgres) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return p.pool.Ping(ctx)
}

// Close releases the pool.
func (p *Postgres) Close() {
	p.logger.Info("store.close")
	p.pool.Close()
}
