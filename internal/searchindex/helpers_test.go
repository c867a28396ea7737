package searchindex

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/shopindex/internal/schema"
	"github.com/Aman-CERP/shopindex/internal/store"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := store.Open(context.Background(), store.DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, schema.Migrate(context.Background(), db))

	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

func newTestIndex(t *testing.T, db *sql.DB, opts ...Option) *Index {
	t.Helper()
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(db, append([]Option{WithLogger(quiet)}, opts...)...)
}

// ensured returns an index that has been bootstrapped once.
func ensured(t *testing.T, db *sql.DB, opts ...Option) *Index {
	t.Helper()
	x := newTestIndex(t, db, opts...)
	_, err := x.Ensure(context.Background(), EnsureOptions{})
	require.NoError(t, err)
	return x
}

// writeRow runs an entity statement and the matching maintainer in one
// transaction, the way the catalog store does.
func writeRow(t *testing.T, x *Index, db *sql.DB, op string, kind Kind, id int64, query string, args ...any) {
	t.Helper()
	ctx := context.Background()
	err := store.InTx(ctx, db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
		switch op {
		case opInsert:
			return x.AfterInsert(ctx, tx, kind, id)
		case opUpdate:
			return x.AfterUpdate(ctx, tx, kind, id)
		default:
			return x.AfterDelete(ctx, tx, kind, id)
		}
	})
	require.NoError(t, err)
}

// seedCatalog inserts rows straight into the source tables, bypassing the
// maintainers. Returns the number of indexed rows written.
func seedCatalog(t *testing.T, db *sql.DB) int {
	t.Helper()
	stmts := []string{
		`INSERT INTO brands (id, name) VALUES (1, 'Salto'), (2, 'Dormakaba')`,
		`INSERT INTO categories (id, name) VALUES (1, 'Keycards')`,
		`INSERT INTO products (id, name, description, type, external_product_ref, brand_id, category_id) VALUES
			(1, 'Mifare Classic Card', 'Blank hotel keycard', 'keycard', 'prod_Mf1', 1, 1),
			(2, 'Crème Wristband', 'Silicone wristband', 'regular', NULL, 2, NULL)`,
		`INSERT INTO variants (id, product_id, name, sku, description) VALUES
			(1, 1, 'White 1K', 'MF-1K-WHT', 'white glossy'),
			(2, 2, 'Red', 'WB-RED', '')`,
		`INSERT INTO price_tiers (id, variant_id, external_price_ref, min_quantity) VALUES
			(1, 1, 'price_100', 100),
			(2, 1, NULL, 500)`,
		`INSERT INTO orders (id, order_number, status, payment_status, customer_name, customer_email, notes) VALUES
			(1, 'SO-1001', 'paid', 'paid', 'Ada Lovelace', 'ada@example.com', 'deliver to reception')`,
		`INSERT INTO designs (id, name, code, description) VALUES (1, 'Ocean Blue', 'D-OCEAN', 'wave print')`,
		`INSERT INTO lock_techs (id, name) VALUES (1, 'VingCard'), (2, 'Onity')`,
		`INSERT INTO images (id, url, alt_text, entity_type, entity_id) VALUES
			(1, 'https://cdn.example.com/mf1.png', 'Mifare card front', 'product', 1)`,
	}
	for _, stmt := range stmts {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	// products 2, variants 2, tiers 2, orders 1, designs 1, lock techs 2, images 1
	return 11
}

func keyOf(t *testing.T, kind Kind, id int64) int64 {
	t.Helper()
	key, err := GlobalKey(kind, id)
	require.NoError(t, err)
	return key
}
