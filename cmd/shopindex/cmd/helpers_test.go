package cmd

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/shopindex/internal/catalog"
	"github.com/Aman-CERP/shopindex/internal/schema"
	"github.com/Aman-CERP/shopindex/internal/searchindex"
	"github.com/Aman-CERP/shopindex/internal/store"
)

// testProject is a temp project dir whose .shopindex.yaml points at a temp database.
type testProject struct {
	dir    string
	dbPath string
}

func newTestProject(t *testing.T) *testProject {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, name := range []string{
		"SHOPINDEX_DB_PATH", "SHOPINDEX_DB_DRIVER", "SHOPINDEX_BUSY_TIMEOUT", "SHOPINDEX_CACHE_MB",
		"SHOPINDEX_INDEX_VERSION", "SHOPINDEX_REBUILD_ON_START", "SHOPINDEX_LOG_LEVEL", "SHOPINDEX_LOG_FILE",
	} {
		t.Setenv(name, "")
	}

	dir := t.TempDir()
	p := &testProject{dir: dir, dbPath: filepath.Join(dir, "shop.db")}
	p.writeConfig(t, "")
	return p
}

// writeConfig writes .shopindex.yaml with the database path plus extra YAML.
func (p *testProject) writeConfig(t *testing.T, extra string) {
	t.Helper()
	content := fmt.Sprintf("database:\n  path: %s\nlogging:\n  level: error\n%s", p.dbPath, extra)
	require.NoError(t, os.WriteFile(filepath.Join(p.dir, ".shopindex.yaml"), []byte(content), 0o644))
}

// run executes the root command against the project and returns its stdout.
func (p *testProject) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	buf := &bytes.Buffer{}
	root.SetOut(buf)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{"--config-dir", p.dir}, args...))
	err := root.Execute()
	return buf.String(), err
}

// seed writes a small catalog through the catalog store. It returns the
// number of indexed rows.
func (p *testProject) seed(t *testing.T) int {
	t.Helper()
	ctx := context.Background()

	db := p.open(t)
	defer func() { _ = db.Close() }()

	x := searchindex.New(db, searchindex.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	_, err := x.Ensure(ctx, searchindex.EnsureOptions{})
	require.NoError(t, err)

	s := catalog.NewStore(db, x)
	brand, err := s.CreateBrand(ctx, catalog.Brand{Name: "Salto"})
	require.NoError(t, err)
	product, err := s.CreateProduct(ctx, catalog.Product{
		Name:        "MIFARE Classic keycard",
		Description: "White PVC card for hotel locks",
		Type:        "keycard",
		BrandID:     &brand,
	})
	require.NoError(t, err)
	_, err = s.CreateVariant(ctx, catalog.Variant{ProductID: product, Name: "White 1k", SKU: "MF-1K-WHT"})
	require.NoError(t, err)
	_, err = s.CreateOrder(ctx, catalog.Order{
		Number:        "A-1001",
		CustomerName:  "Ada Lovelace",
		CustomerEmail: "ada@example.com",
		Notes:         "200 keycards, rush",
	})
	require.NoError(t, err)
	return 3
}

// open opens the project database with the catalog tables in place.
func (p *testProject) open(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()
	opts := store.DefaultOptions()
	opts.Path = p.dbPath
	db, err := store.Open(ctx, opts)
	require.NoError(t, err)
	require.NoError(t, schema.Migrate(ctx, db))
	return db
}
