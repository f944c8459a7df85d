// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/mdhender/brackets/model"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteStore keeps documents and the pipeline queue in SQLite.
type SQLiteStore struct {
	db *sql.DB
}

var _ model.Store = (*SQLiteStore)(nil)

// StoreConfig selects the database to open.
type StoreConfig struct {
	// Path names an existing database file. Leave it empty for a private
	// in-memory database, which always gets the schema.
	Path string

	// InitSchema applies the schema to a file database on open.
	InitSchema bool
}

// NewSQLiteStore opens a private in-memory store. Each call gets its own database.
func NewSQLiteStore() (*SQLiteStore, error) {
	return NewSQLiteStoreWithConfig(StoreConfig{})
}

// NewSQLiteStoreWithConfig opens the store described by cfg.
// A file database must have been created by InitDatabase.
func NewSQLiteStoreWithConfig(cfg StoreConfig) (*SQLiteStore, error) {
	if cfg.Path == "" {
		// the name keeps stores apart; the shared cache lets every pooled
		// connection see the same database, so the pool is limited to one
		db, err := openDB(memoryDSN(uuid.NewString()), true)
		if err != nil {
			return nil, err
		}
		db.SetMaxOpenConns(1)
		return &SQLiteStore{db: db}, nil
	}
	if !exists(cfg.Path) {
		return nil, fmt.Errorf("%s: database does not exist (run db init to create it)", cfg.Path)
	}
	db, err := openDB(fileDSN(cfg.Path), cfg.InitSchema)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// openDB opens dsn and optionally applies the embedded schema.
func openDB(dsn string, withSchema bool) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if withSchema {
		if _, err := db.Exec(schemaSQL); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}
	return db, nil
}

func memoryDSN(name string) string {
	return fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", name)
}

// fileDSN sets the pragmas in the DSN so that every pooled connection gets them.
func fileDSN(path string) string {
	return fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)", path)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// InitDatabase creates the database file at path with the schema applied.
// It refuses to touch a file that is already there.
func InitDatabase(path string) error {
	if exists(path) {
		return fmt.Errorf("%s: database already exists", path)
	}
	db, err := openDB(fileDSN(path), true)
	if err != nil {
		return err
	}
	return db.Close()
}

// CompactDatabase folds the write-ahead log back into the database file
// and vacuums it, leaving one file that can be copied for backup.
func CompactDatabase(path string) error {
	if !exists(path) {
		return fmt.Errorf("%s: database does not exist", path)
	}
	db, err := openDB(fileDSN(path), false)
	if err != nil {
		return err
	}
	defer db.Close()

	for _, stmt := range []string{"PRAGMA wal_checkpoint(TRUNCATE)", "VACUUM"} {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("compact: %s: %w", stmt, err)
		}
	}
	return nil
}

// Close releases the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Stats counts documents by outcome and the jobs still waiting.
func (s *SQLiteStore) Stats(ctx context.Context) (model.Stats, error) {
	const query = `
		SELECT
			(SELECT COUNT(*) FROM documents),
			(SELECT COUNT(*) FROM documents WHERE tree_json IS NOT NULL),
			(SELECT COUNT(*) FROM documents WHERE error_code IS NOT NULL),
			(SELECT COUNT(*) FROM work WHERE status = 'queued')
	`
	var stats model.Stats
	if err := s.db.QueryRowContext(ctx, query).Scan(
		&stats.Documents,
		&stats.Parsed,
		&stats.Failed,
		&stats.Queued,
	); err != nil {
		return model.Stats{}, fmt.Errorf("stats: %w", err)
	}
	return stats, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullInt(n int) sql.NullInt64 {
	if n == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(n), Valid: true}
}

// millis converts t to the unix milliseconds stored in timestamp columns.
func millis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func fromNullMillis(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	t := fromMillis(n.Int64)
	return &t
}
