package searchindex

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	shoperrors "github.com/Aman-CERP/shopindex/internal/errors"
	"github.com/Aman-CERP/shopindex/internal/metrics"
	"github.com/Aman-CERP/shopindex/internal/store"
)

func TestAfterInsert_ReflectsNewRow(t *testing.T) {
	// Given: a bootstrapped index
	db := openTestDB(t)
	x := ensured(t, db)

	// When: inserting product 5 through the maintainer
	writeRow(t, x, db, opInsert, KindProduct, 5,
		`INSERT INTO products (id, name, description) VALUES (5, 'Widget', 'a small part')`)

	// Then: exactly one entry exists at its key
	e, err := x.Entry(context.Background(), 1_000_000_000_005)
	require.NoError(t, err)
	assert.Equal(t, KindProduct, e.Kind)
	assert.Equal(t, int64(5), e.EntityID)
	assert.Equal(t, "Widget", e.Title)
	assert.Equal(t, "a small part", e.Body)
	assert.Equal(t, "type:regular", e.Tags)

	count, err := x.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestAfterInsert_DenormalizesRelatedNames(t *testing.T) {
	db := openTestDB(t)
	x := ensured(t, db)

	_, err := db.Exec(`INSERT INTO brands (id, name) VALUES (3, 'Salto')`)
	require.NoError(t, err)
	writeRow(t, x, db, opInsert, KindProduct, 1,
		`INSERT INTO products (id, name, external_product_ref, brand_id) VALUES (1, 'Card', 'prod_X', 3)`)
	writeRow(t, x, db, opInsert, KindVariant, 1,
		`INSERT INTO variants (id, product_id, name, sku) VALUES (1, 1, 'White', 'SKU-1')`)
	writeRow(t, x, db, opInsert, KindPriceTier, 1,
		`INSERT INTO price_tiers (id, variant_id) VALUES (1, 1)`)

	product, err := x.Entry(context.Background(), keyOf(t, KindProduct, 1))
	require.NoError(t, err)
	assert.Equal(t, "prod_X Salto", product.Body)

	variant, err := x.Entry(context.Background(), keyOf(t, KindVariant, 1))
	require.NoError(t, err)
	assert.Equal(t, "SKU-1 Card", variant.Body)
	assert.Equal(t, "product_id:1", variant.Tags)

	tier, err := x.Entry(context.Background(), keyOf(t, KindPriceTier, 1))
	require.NoError(t, err)
	assert.Equal(t, "Price tier 1", tier.Title)
	assert.Equal(t, "White Card", tier.Body)
	assert.Equal(t, "variant_id:1", tier.Tags)
}

func TestAfterUpdate_ReplacesEntry(t *testing.T) {
	db := openTestDB(t)
	x := ensured(t, db)
	writeRow(t, x, db, opInsert, KindProduct, 5,
		`INSERT INTO products (id, name, description) VALUES (5, 'Widget', 'old text')`)

	// When: the description changes
	writeRow(t, x, db, opUpdate, KindProduct, 5,
		`UPDATE products SET description = 'brand new text' WHERE id = 5`)

	// Then: still one entry, with the new body
	count, err := x.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	e, err := x.Entry(context.Background(), 1_000_000_000_005)
	require.NoError(t, err)
	assert.Equal(t, "brand new text", e.Body)

	hits, err := x.Search(context.Background(), "old", SearchOptions{})
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestAfterDelete_RemovesEntry(t *testing.T) {
	db := openTestDB(t)
	x := ensured(t, db)
	writeRow(t, x, db, opInsert, KindOrder, 9,
		`INSERT INTO orders (id, order_number, customer_name) VALUES (9, 'SO-9', 'Grace Hopper')`)

	writeRow(t, x, db, opDelete, KindOrder, 9, `DELETE FROM orders WHERE id = 9`)

	_, err := x.Entry(context.Background(), 3_000_000_000_009)
	assert.True(t, errors.Is(err, shoperrors.ErrNotFound))

	hits, err := x.Search(context.Background(), "Hopper", SearchOptions{})
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestAfterDelete_MissingEntryIsNoop(t *testing.T) {
	db := openTestDB(t)
	x := ensured(t, db)

	err := x.AfterDelete(context.Background(), db, KindDesign, 404)
	assert.NoError(t, err)
}

func TestMaintainers_RequireEnsure(t *testing.T) {
	db := openTestDB(t)
	x := newTestIndex(t, db)

	err := x.AfterInsert(context.Background(), db, KindProduct, 1)

	require.Error(t, err)
	assert.Equal(t, shoperrors.ErrCodeIndexFailed, shoperrors.GetCode(err))
}

func TestAfterInsert_FailureRollsBackEntityWrite(t *testing.T) {
	// Given: an id outside the key partition
	db := openTestDB(t)
	m := metrics.New(prometheus.NewRegistry())
	x := ensured(t, db, WithMetrics(m))
	ctx := context.Background()

	// When: the maintainer fails inside the entity transaction
	err := store.InTx(ctx, db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO lock_techs (id, name) VALUES (?, 'Too Big')`, PartitionSpan); err != nil {
			return err
		}
		return x.AfterInsert(ctx, tx, KindLockTech, PartitionSpan)
	})

	// Then: the entity row does not survive
	require.Error(t, err)
	assert.True(t, errors.Is(err, shoperrors.ErrKeyOutOfRange))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM lock_techs`).Scan(&n))
	assert.Zero(t, n)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MaintenanceErrors.WithLabelValues("lock_tech", "insert")))
}

func TestAfterInsert_MissingSourceRowFails(t *testing.T) {
	db := openTestDB(t)
	x := ensured(t, db)

	err := x.AfterInsert(context.Background(), db, KindImage, 12)

	require.Error(t, err)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestAfterInsert_DuplicateInsertFails(t *testing.T) {
	db := openTestDB(t)
	x := ensured(t, db)
	writeRow(t, x, db, opInsert, KindLockTech, 1, `INSERT INTO lock_techs (id, name) VALUES (1, 'Onity')`)

	// A second insert for the same row must not create a second entry
	err := x.AfterInsert(context.Background(), db, KindLockTech, 1)
	require.Error(t, err)

	count, err := x.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestAssembly_PerKindRules(t *testing.T) {
	db := openTestDB(t)
	seedCatalog(t, db)
	x := ensured(t, db)
	ctx := context.Background()

	tests := []struct {
		kind      Kind
		id        int64
		wantTitle string
		wantBody  string
		wantTags  string
	}{
		{KindProduct, 1, "Mifare Classic Card", "Blank hotel keycard prod_Mf1 Salto Keycards", "type:keycard"},
		{KindVariant, 1, "White 1K", "MF-1K-WHT white glossy Mifare Classic Card", "product_id:1"},
		{KindPriceTier, 1, "price_100", "price_100 White 1K Mifare Classic Card", "variant_id:1"},
		{KindPriceTier, 2, "Price tier 2", "White 1K Mifare Classic Card", "variant_id:1"},
		{KindOrder, 1, "SO-1001", "paid paid unfulfilled Ada Lovelace ada@example.com deliver to reception",
			"order_status:paid payment_status:paid"},
		{KindDesign, 1, "Ocean Blue", "D-OCEAN wave print", "code:D-OCEAN"},
		{KindLockTech, 2, "Onity", "Onity", ""},
		{KindImage, 1, "Mifare card front", "https://cdn.example.com/mf1.png Mifare card front product 1", "entity:product:1"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			e, err := x.Entry(ctx, keyOf(t, tt.kind, tt.id))
			require.NoError(t, err)
			assert.Equal(t, tt.wantTitle, e.Title)
			assert.Equal(t, tt.wantBody, e.Body)
			assert.Equal(t, tt.wantTags, e.Tags)
		})
	}
}

func TestAssembly_OrderWithoutNumberUsesLabel(t *testing.T) {
	db := openTestDB(t)
	x := ensured(t, db)
	writeRow(t, x, db, opInsert, KindOrder, 4, `INSERT INTO orders (id) VALUES (4)`)

	e, err := x.Entry(context.Background(), keyOf(t, KindOrder, 4))
	require.NoError(t, err)
	assert.Equal(t, "Order #4", e.Title)
	assert.Equal(t, "order_status:new payment_status:unpaid", e.Tags)
}

func TestAssembly_ImageWithoutAltUsesURL(t *testing.T) {
	db := openTestDB(t)
	x := ensured(t, db)
	writeRow(t, x, db, opInsert, KindImage, 2,
		`INSERT INTO images (id, url, entity_type, entity_id) VALUES (2, 'https://cdn.example.com/x.jpg', 'design', 8)`)

	e, err := x.Entry(context.Background(), keyOf(t, KindImage, 2))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/x.jpg", e.Title)
	assert.Equal(t, "entity:design:8", e.Tags)
}
