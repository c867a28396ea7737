package searchindex

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
)

const versionKey = "fts_version"

func (x *Index) ensureMeta(ctx context.Context) error {
	_, err := x.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS search_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("create search_meta: %w", err)
	}
	return nil
}

// storedVersion returns the persisted content version.
// ok is false when none was ever written or the value is unreadable.
func (x *Index) storedVersion(ctx context.Context) (version int, ok bool, err error) {
	var raw string
	err = x.db.QueryRowContext(ctx, `SELECT value FROM search_meta WHERE key = ?`, versionKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read %s: %w", versionKey, err)
	}
	version, convErr := strconv.Atoi(raw)
	if convErr != nil {
		x.logger.Warn("search_index_version_unreadable", slog.String("value", raw))
		return 0, false, nil
	}
	return version, true, nil
}

func (x *Index) storeVersion(ctx context.Context, version int) error {
	_, err := x.db.ExecContext(ctx, `
		INSERT INTO search_meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		versionKey, strconv.Itoa(version))
	if err != nil {
		return fmt.Errorf("write %s: %w", versionKey, err)
	}
	return nil
}
