package integration

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/shopindex/internal/catalog"
	shoperrors "github.com/Aman-CERP/shopindex/internal/errors"
	"github.com/Aman-CERP/shopindex/internal/metrics"
	"github.com/Aman-CERP/shopindex/internal/schema"
	"github.com/Aman-CERP/shopindex/internal/searchindex"
	"github.com/Aman-CERP/shopindex/internal/store"
)

// Integration Tests - These run the deploy lifecycle against a file-backed
// store: open, bootstrap, write through the catalog, reopen, bump the
// content version, and verify consistency at each step.

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

// deployment is one process lifetime against the same database file.
type deployment struct {
	db      *sql.DB
	index   *searchindex.Index
	catalog *catalog.Store
	metrics *metrics.Metrics
}

func deploy(t *testing.T, path, driver string, version int) *deployment {
	t.Helper()
	ctx := context.Background()

	opts := store.DefaultOptions()
	opts.Path = path
	opts.Driver = driver
	db, err := store.Open(ctx, opts)
	if err != nil && driver == store.DriverMattn {
		t.Skipf("cgo sqlite3 driver unavailable: %v", err)
	}
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, schema.Migrate(ctx, db))

	m := metrics.New(prometheus.NewRegistry())
	x := searchindex.New(db,
		searchindex.WithLogger(quiet),
		searchindex.WithMetrics(m),
		searchindex.WithExpectedVersion(version))
	return &deployment{db: db, index: x, catalog: catalog.NewStore(db, x), metrics: m}
}

func (d *deployment) close(t *testing.T) {
	t.Helper()
	require.NoError(t, store.Checkpoint(context.Background(), d.db))
	require.NoError(t, d.db.Close())
}

func TestLifecycle_DeployWriteRedeploy(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "shop.db")

	// Given: a first deployment on an empty database
	first := deploy(t, path, store.DriverModernc, 1)
	res, err := first.index.Ensure(ctx, searchindex.EnsureOptions{})
	require.NoError(t, err)
	require.Equal(t, searchindex.ReasonVersionMismatch, res.Reason, "no stored version on a fresh database")
	require.False(t, res.HadVersion)

	// When: the shop writes catalog rows
	product, err := first.catalog.CreateProduct(ctx, catalog.Product{Name: "DESFire EV2 card", Type: "keycard"})
	require.NoError(t, err)
	variant, err := first.catalog.CreateVariant(ctx, catalog.Variant{ProductID: product, Name: "8k", SKU: "DF-EV2-8K"})
	require.NoError(t, err)
	_, err = first.catalog.CreatePriceTier(ctx, catalog.PriceTier{VariantID: variant, MinQuantity: 100, UnitAmountCents: 89, Currency: "eur"})
	require.NoError(t, err)
	_, err = first.catalog.CreateLockTech(ctx, catalog.LockTech{Name: "Vingcard Visionline"})
	require.NoError(t, err)
	first.close(t)

	// Then: a redeploy at the same version keeps the index as is
	second := deploy(t, path, store.DriverModernc, 1)
	res, err = second.index.Ensure(ctx, searchindex.EnsureOptions{})
	require.NoError(t, err)
	assert.False(t, res.Rebuilt)
	assert.Equal(t, 4, res.Entries)
	assert.Equal(t, float64(0), testutil.ToFloat64(second.metrics.RebuildsTotal.WithLabelValues("empty")))

	hits, err := second.index.Search(ctx, "visionline", searchindex.SearchOptions{})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, searchindex.KindLockTech, hits[0].Kind)
	second.close(t)

	// And: bumping the content version rebuilds exactly once
	third := deploy(t, path, store.DriverModernc, 2)
	res, err = third.index.Ensure(ctx, searchindex.EnsureOptions{})
	require.NoError(t, err)
	assert.Equal(t, searchindex.ReasonVersionMismatch, res.Reason)
	assert.Equal(t, 1, res.PreviousVersion)
	res, err = third.index.Ensure(ctx, searchindex.EnsureOptions{})
	require.NoError(t, err)
	assert.False(t, res.Rebuilt)

	verify, err := third.index.Verify(ctx)
	require.NoError(t, err)
	assert.True(t, verify.Consistent())
	assert.Equal(t, 4, verify.Entries)
}

func TestLifecycle_CascadeKeepsIndexConsistent(t *testing.T) {
	ctx := context.Background()
	d := deploy(t, filepath.Join(t.TempDir(), "shop.db"), store.DriverModernc, 1)
	_, err := d.index.Ensure(ctx, searchindex.EnsureOptions{})
	require.NoError(t, err)

	// Given: a product with variants, tiers and an image
	product, err := d.catalog.CreateProduct(ctx, catalog.Product{Name: "Wristband"})
	require.NoError(t, err)
	for _, sku := range []string{"WB-RED", "WB-BLU"} {
		v, err := d.catalog.CreateVariant(ctx, catalog.Variant{ProductID: product, Name: sku, SKU: sku})
		require.NoError(t, err)
		_, err = d.catalog.CreatePriceTier(ctx, catalog.PriceTier{VariantID: v, MinQuantity: 1, UnitAmountCents: 250, Currency: "eur"})
		require.NoError(t, err)
	}
	_, err = d.catalog.CreateImage(ctx, catalog.Image{EntityType: "product", EntityID: product, URL: "https://cdn.example.com/wb.png", AltText: "Wristband"})
	require.NoError(t, err)

	// When: deleting the product
	require.NoError(t, d.catalog.DeleteProduct(ctx, product))

	// Then: variants and tiers leave the index with it; the image is not owned
	n, err := d.index.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	verify, err := d.index.Verify(ctx)
	require.NoError(t, err)
	assert.True(t, verify.Consistent(), "issues: %v", verify.Issues)
}

func TestLifecycle_MattnDriverProbe(t *testing.T) {
	ctx := context.Background()

	// Given: the cgo driver, which only has FTS5 when built with the sqlite_fts5 tag
	d := deploy(t, filepath.Join(t.TempDir(), "shop.db"), store.DriverMattn, 1)

	// When: bootstrapping
	_, err := d.index.Ensure(ctx, searchindex.EnsureOptions{})

	// Then: it either works or fails with the fatal capability error
	if err != nil {
		assert.True(t, errors.Is(err, shoperrors.ErrCapabilityUnavailable), "unexpected error: %v", err)
		assert.True(t, shoperrors.IsFatal(err))
		return
	}
	_, err = d.catalog.CreateDesign(ctx, catalog.Design{Name: "Harbour", Code: "HB-01"})
	require.NoError(t, err)
	hits, err := d.index.Search(ctx, "harbour", searchindex.SearchOptions{})
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}
