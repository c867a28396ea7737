// Package catalog writes the shop's entity tables and keeps the search index
// in step with every write.
package catalog

import (
	"context"
	"database/sql"
	"fmt"

	shoperrors "github.com/Aman-CERP/shopindex/internal/errors"
	"github.com/Aman-CERP/shopindex/internal/searchindex"
	"github.com/Aman-CERP/shopindex/internal/store"
)

// Maintainer receives every indexed write inside the writing transaction.
// *searchindex.Index implements it.
type Maintainer interface {
	AfterInsert(ctx context.Context, q searchindex.Querier, kind searchindex.Kind, id int64) error
	AfterUpdate(ctx context.Context, q searchindex.Querier, kind searchindex.Kind, id int64) error
	AfterDelete(ctx context.Context, q searchindex.Querier, kind searchindex.Kind, id int64) error
}

// Store writes catalog entities. A maintainer error rolls back the write.
type Store struct {
	db    *sql.DB
	index Maintainer
}

// NewStore creates a Store. The maintainer must be bootstrapped already.
func NewStore(db *sql.DB, index Maintainer) *Store {
	return &Store{db: db, index: index}
}

var tables = map[searchindex.Kind]string{
	searchindex.KindProduct:   "products",
	searchindex.KindVariant:   "variants",
	searchindex.KindPriceTier: "price_tiers",
	searchindex.KindOrder:     "orders",
	searchindex.KindDesign:    "designs",
	searchindex.KindLockTech:  "lock_techs",
	searchindex.KindImage:     "images",
}

// insert runs an INSERT and indexes the new row in the same transaction.
func (s *Store) insert(ctx context.Context, kind searchindex.Kind, query string, args ...any) (int64, error) {
	var id int64
	err := store.InTx(ctx, s.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("insert %s: %w", kind, err)
		}
		if id, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("insert %s: %w", kind, err)
		}
		return s.index.AfterInsert(ctx, tx, kind, id)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// update runs an UPDATE for one row and replaces its index entry.
func (s *Store) update(ctx context.Context, kind searchindex.Kind, id int64, query string, args ...any) error {
	return store.InTx(ctx, s.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("update %s %d: %w", kind, id, err)
		}
		if err := requireAffected(res, kind, id); err != nil {
			return err
		}
		return s.index.AfterUpdate(ctx, tx, kind, id)
	})
}

// deleteRow deletes one row and its index entry inside tx.
func (s *Store) deleteRow(ctx context.Context, tx *sql.Tx, kind searchindex.Kind, id int64) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM `+tables[kind]+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete %s %d: %w", kind, id, err)
	}
	if err := requireAffected(res, kind, id); err != nil {
		return err
	}
	return s.index.AfterDelete(ctx, tx, kind, id)
}

func (s *Store) delete(ctx context.Context, kind searchindex.Kind, id int64) error {
	return store.InTx(ctx, s.db, func(tx *sql.Tx) error {
		return s.deleteRow(ctx, tx, kind, id)
	})
}

func requireAffected(res sql.Result, kind searchindex.Kind, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return shoperrors.New(shoperrors.ErrCodeNotFound, fmt.Sprintf("%s %d not found", kind, id), nil)
	}
	return nil
}

// childIDs lists ids of table rows whose column equals parent.
func childIDs(ctx context.Context, tx *sql.Tx, table, column string, parent int64) ([]int64, error) {
	rows, err := tx.QueryContext(ctx, `SELECT id FROM `+table+` WHERE `+column+` = ? ORDER BY id`, parent)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// optionalID passes 0 as NULL so SQLite assigns the rowid.
func optionalID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
