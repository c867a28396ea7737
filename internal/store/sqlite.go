// Package store opens the relational store shared by the catalog tables and
// the search index.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3" // CGO driver, registered as "sqlite3"
	_ "modernc.org/sqlite"          // Pure Go SQLite driver (no CGO)

	shoperrors "github.com/Aman-CERP/shopindex/internal/errors"
)

// Driver names accepted by Open.
const (
	// DriverModernc is the pure Go driver and the default. Ships with FTS5.
	DriverModernc = "sqlite"

	// DriverMattn is the CGO driver. FTS5 is only available when the binary
	// is built with the sqlite_fts5 tag.
	DriverMattn = "sqlite3"
)

// Options configures the store connection.
type Options struct {
	// Path is the database file. Empty opens a private in-memory database.
	Path string
	// Driver is DriverModernc or DriverMattn. Empty means DriverModernc.
	Driver string
	// BusyTimeout bounds how long a writer waits on a locked database.
	BusyTimeout time.Duration
	// CacheMB is the page cache size in megabytes.
	CacheMB int
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Driver:      DriverModernc,
		BusyTimeout: 5 * time.Second,
		CacheMB:     64,
	}
}

// Open opens the store and applies connection pragmas.
// The pool is pinned to a single connection: SQLite serializes writers anyway,
// and the index maintainers rely on running inside the writer's transaction.
func Open(ctx context.Context, opts Options) (*sql.DB, error) {
	driver := opts.Driver
	if driver == "" {
		driver = DriverModernc
	}
	if driver != DriverModernc && driver != DriverMattn {
		return nil, shoperrors.ConfigError(
			fmt.Sprintf("unknown store driver: %s (valid options: sqlite, sqlite3)", driver), nil)
	}

	dsn := ":memory:"
	if opts.Path != "" {
		dir := filepath.Dir(opts.Path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, shoperrors.IOError(fmt.Sprintf("failed to create directory %s", dir), err)
		}
		if err := checkIntegrity(driver, opts.Path); err != nil {
			slog.Error("store_integrity_check_failed",
				slog.String("path", opts.Path),
				slog.String("error", err.Error()))
			return nil, shoperrors.New(shoperrors.ErrCodeStoreCorrupt,
				fmt.Sprintf("database at %s failed integrity check", opts.Path), err).
				WithSuggestion("restore the database from a backup")
		}
		dsn = opts.Path
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, shoperrors.IOError("failed to open database", err)
	}

	// Single writer to prevent lock contention; an in-memory database also
	// only exists on the connection that created it.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	busy := opts.BusyTimeout
	if busy <= 0 {
		busy = 5 * time.Second
	}
	cacheMB := opts.CacheMB
	if cacheMB <= 0 {
		cacheMB = 64
	}

	// DSN params are driver specific, so pragmas are set by statement.
	pragmas := []string{
		"PRAGMA busy_timeout = " + strconv.FormatInt(busy.Milliseconds(), 10),
		"PRAGMA synchronous = NORMAL",
		"PRAGMA cache_size = -" + strconv.Itoa(cacheMB*1024), // negative = KB
		"PRAGMA temp_store = MEMORY",
		"PRAGMA foreign_keys = ON",
	}
	if opts.Path != "" {
		pragmas = append([]string{"PRAGMA journal_mode = WAL"}, pragmas...)
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, shoperrors.IOError(fmt.Sprintf("failed to set pragma %q", pragma), err)
		}
	}

	return db, nil
}

// checkIntegrity runs PRAGMA integrity_check on an existing database file.
// A missing file is fine: it will be created.
func checkIntegrity(driver, path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	db, err := sql.Open(driver, path)
	if err != nil {
		return fmt.Errorf("cannot open for validation: %w", err)
	}
	defer db.Close()

	var result string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("integrity check failed: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("database corrupted: %s", result)
	}
	return nil
}

// Checkpoint forces a WAL checkpoint so the main database file is current.
func Checkpoint(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)")
	return err
}

// InTx runs fn inside a transaction, committing on success and rolling back
// on any error returned by fn.
func InTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rolling back transaction after error %v: %w", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
