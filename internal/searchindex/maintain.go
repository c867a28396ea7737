package searchindex

import (
	"context"
	"fmt"
	"log/slog"

	shoperrors "github.com/Aman-CERP/shopindex/internal/errors"
)

const (
	opInsert = "insert"
	opUpdate = "update"
	opDelete = "delete"
)

// installMaintainers drops SQL triggers left behind by trigger-based
// deployments and registers the per-kind maintainers. Idempotent.
func (x *Index) installMaintainers(ctx context.Context) (dropped int, err error) {
	rows, err := x.db.QueryContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type = 'trigger' AND (name LIKE 'search_index%' OR sql LIKE '%search_index%')`)
	if err != nil {
		return 0, fmt.Errorf("list legacy triggers: %w", err)
	}
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			_ = rows.Close()
			return 0, fmt.Errorf("scan trigger name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return 0, err
	}
	_ = rows.Close()

	for _, name := range names {
		if _, err := x.db.ExecContext(ctx, fmt.Sprintf(`DROP TRIGGER IF EXISTS "%s"`, name)); err != nil {
			return 0, fmt.Errorf("drop legacy trigger %s: %w", name, err)
		}
		x.logger.Info("search_index_legacy_trigger_dropped", slog.String("trigger", name))
	}

	registry := make(map[Kind]*source, len(sources))
	for i := range sources {
		registry[sources[i].kind] = &sources[i]
	}
	x.maintainers.Store(&registry)
	return len(names), nil
}

func (x *Index) maintainer(kind Kind) (*source, error) {
	registry := x.maintainers.Load()
	if registry == nil {
		return nil, shoperrors.New(shoperrors.ErrCodeIndexFailed,
			"search index maintainers not installed; call Ensure at startup", nil)
	}
	src, ok := (*registry)[kind]
	if !ok {
		return nil, shoperrors.New(shoperrors.ErrCodeUnknownKind,
			fmt.Sprintf("unknown entity kind %q", kind), nil)
	}
	return src, nil
}

// AfterInsert writes the entry for a freshly inserted row.
// q must be the transaction that inserted it.
func (x *Index) AfterInsert(ctx context.Context, q Querier, kind Kind, id int64) error {
	err := x.afterInsert(ctx, q, kind, id)
	x.observe(kind, opInsert, id, err)
	return err
}

// AfterUpdate replaces the entry of an updated row: the old entry is deleted
// and a new one assembled from the row's current values. FTS5 cannot update
// indexed text in place, so this is always remove then insert.
func (x *Index) AfterUpdate(ctx context.Context, q Querier, kind Kind, id int64) error {
	err := x.afterUpdate(ctx, q, kind, id)
	x.observe(kind, opUpdate, id, err)
	return err
}

// AfterDelete removes the entry of a deleted row. A missing entry is not an error.
func (x *Index) AfterDelete(ctx context.Context, q Querier, kind Kind, id int64) error {
	err := x.afterDelete(ctx, q, kind, id)
	x.observe(kind, opDelete, id, err)
	return err
}

func (x *Index) afterInsert(ctx context.Context, q Querier, kind Kind, id int64) error {
	src, err := x.maintainer(kind)
	if err != nil {
		return err
	}
	entry, err := src.loadOne(ctx, q, id)
	if err != nil {
		return maintenanceError(kind, opInsert, id, err)
	}
	if err := insertEntry(ctx, q, entry); err != nil {
		return maintenanceError(kind, opInsert, id, err)
	}
	return nil
}

func (x *Index) afterUpdate(ctx context.Context, q Querier, kind Kind, id int64) error {
	src, err := x.maintainer(kind)
	if err != nil {
		return err
	}
	key, err := GlobalKey(kind, id)
	if err != nil {
		return err
	}
	if err := removeEntry(ctx, q, key); err != nil {
		return maintenanceError(kind, opUpdate, id, err)
	}
	entry, err := src.loadOne(ctx, q, id)
	if err != nil {
		return maintenanceError(kind, opUpdate, id, err)
	}
	if err := insertEntry(ctx, q, entry); err != nil {
		return maintenanceError(kind, opUpdate, id, err)
	}
	return nil
}

func (x *Index) afterDelete(ctx context.Context, q Querier, kind Kind, id int64) error {
	if _, err := x.maintainer(kind); err != nil {
		return err
	}
	key, err := GlobalKey(kind, id)
	if err != nil {
		return err
	}
	if err := removeEntry(ctx, q, key); err != nil {
		return maintenanceError(kind, opDelete, id, err)
	}
	return nil
}

func (x *Index) observe(kind Kind, op string, id int64, err error) {
	x.metrics.ObserveMaintenance(string(kind), op, err)
	if err != nil {
		x.logger.Warn("search_index_maintenance_failed",
			slog.String("kind", string(kind)),
			slog.String("op", op),
			slog.Int64("id", id),
			slog.String("error", err.Error()))
	}
}

func maintenanceError(kind Kind, op string, id int64, err error) error {
	return shoperrors.New(shoperrors.ErrCodeIndexFailed,
		fmt.Sprintf("search index %s for %s %d failed", op, kind, id), err)
}

func insertEntry(ctx context.Context, q Querier, e Entry) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO `+indexTable+` (rowid, entity_kind, entity_id, title, body, tags) VALUES (?, ?, ?, ?, ?, ?)`,
		e.Key, string(e.Kind), e.EntityID, e.Title, e.Body, e.Tags)
	return err
}

func removeEntry(ctx context.Context, q Querier, key int64) error {
	_, err := q.ExecContext(ctx, `DELETE FROM `+indexTable+` WHERE rowid = ?`, key)
	return err
}
