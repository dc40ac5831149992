package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jamaahin/docpipe/internal/common"
	"github.com/jamaahin/docpipe/internal/entity"
)

// sqliteDDL mirrors the Postgres archive schema in SQLite types. archived_at
// is written by the application as whole-second UTC RFC 3339, which keeps
// retention comparisons lexicographic.
var sqliteDDL = []string{
	`CREATE TABLE IF NOT EXISTS batch_archive (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id  TEXT NOT NULL,
		total_files INTEGER NOT NULL,
		successful  INTEGER NOT NULL,
		failed      INTEGER NOT NULL,
		records     TEXT NOT NULL,
		archived_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS batch_archive_archived_at_idx ON batch_archive (archived_at)`,
}

// SQLite archives batches into a local file, for single-box and batch runs
// with no Postgres nearby.
type SQLite struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

// OpenSQLite opens or creates the archive database at path and ensures the
// schema.
func OpenSQLite(ctx context.Context, path string, logger *slog.Logger) (*SQLite, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, common.WrapError(err, "open archive file")
	}
	// One connection at a time keeps concurrent writers from surfacing
	// SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	for _, ddl := range sqliteDDL {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			db.Close()
			return nil, common.WrapError(err, "ensure archive schema")
		}
	}
	logger.Info("store.open.ok", "path", path)
	return &SQLite{db: db, logger: logger, now: time.Now}, nil
}

// Archive inserts one row per finalized batch with the merged records as
// JSON.
func (s *SQLite) Archive(ctx context.Context, batch *entity.BatchResult) error {
	records, err := json.Marshal(batch.Records)
	if err != nil {
		return common.WrapError(err, "encode records")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO batch_archive (session_id, total_files, successful, failed, records, archived_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		batch.SessionID, batch.TotalFiles, batch.Successful, batch.Failed,
		string(records), s.now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return common.WrapError(err, "insert batch")
	}
	s.logger.Info("store.archive.ok",
		"session_id", batch.SessionID,
		"records", len(batch.Records),
	)
	return nil
}

// PurgeOlderThan deletes archived batches older than the retention window
// and reports how many rows went away.
func (s *SQLite) PurgeOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	cutoff := s.now().UTC().Add(-age).Format(time.RFC3339)
	res, err := s.db.ExecContext(ctx, `DELETE FROM batch_archive WHERE archived_at < ?`, cutoff)
	if err != nil {
		return 0, common.WrapError(err, "purge batches")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("store.purge.ok", "rows", n, "cutoff", cutoff)
	}
	return n, nil
}

// Ping checks the database file is still reachable, for health probes.
func (s *SQLite) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.db.PingContext(ctx)
}

// Close releases the database handle.
func (s *SQLite) Close() {
	s.logger.Info("store.close")
	s.db.Close()
}
