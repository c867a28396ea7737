package cmd

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	shoperrors "github.com/Aman-CERP/shopindex/internal/errors"
)

func TestSearchCmd_FindsAcrossKinds(t *testing.T) {
	// Given: a seeded, ensured catalog
	p := newTestProject(t)
	p.seed(t)

	// When: searching by a prefix of the product name
	out, err := p.run(t, "search", "mifa")

	// Then: the product is listed with its kind and id
	require.NoError(t, err)
	assert.Contains(t, out, "[product #1] MIFARE Classic keycard")
}

func TestSearchCmd_KindFilter(t *testing.T) {
	// Given: a product and an order that both mention keycards
	p := newTestProject(t)
	p.seed(t)
	all, err := p.run(t, "search", "keycard")
	require.NoError(t, err)
	require.Contains(t, all, "[product #1]")
	require.Contains(t, all, "[order #1]")

	// When: restricting the search to orders
	out, err := p.run(t, "search", "--kind", "order", "keycard")

	// Then: only the order is returned
	require.NoError(t, err)
	assert.Contains(t, out, "[order #1] A-1001")
	assert.NotContains(t, out, "[product")
}

func TestSearchCmd_UnknownKind(t *testing.T) {
	// Given: a seeded catalog
	p := newTestProject(t)
	p.seed(t)

	// When: filtering by a kind that does not exist
	_, err := p.run(t, "search", "--kind", "coupon", "x")

	// Then: the error names the unknown kind
	require.Error(t, err)
	assert.ErrorIs(t, err, shoperrors.ErrUnknownKind)
}

func TestSearchCmd_NoResults(t *testing.T) {
	// Given: a seeded catalog
	p := newTestProject(t)
	p.seed(t)

	// When: searching for text that is not indexed
	out, err := p.run(t, "search", "zzzz")

	// Then: it reports no results without failing
	require.NoError(t, err)
	assert.Contains(t, out, `No results for "zzzz"`)
}

func TestSearchCmd_JSONOutput(t *testing.T) {
	// Given: a seeded catalog
	p := newTestProject(t)
	p.seed(t)

	// When: searching by SKU with --json
	out, err := p.run(t, "search", "--json", "MF-1K")
	require.NoError(t, err)

	// Then: the variant hit carries its global key
	var hits []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &hits))
	require.Len(t, hits, 1)
	assert.Equal(t, "variant", hits[0]["kind"])
	assert.Equal(t, float64(2_000_000_000_001), hits[0]["key"])
}

func TestSearchCmd_MissingIndex(t *testing.T) {
	// Given: a database where ensure never ran
	p := newTestProject(t)
	db := p.open(t)
	require.NoError(t, db.Close())

	// When: searching
	_, err := p.run(t, "search", "anything")

	// Then: it fails with a hint to run ensure
	require.Error(t, err)
	assert.Equal(t, shoperrors.ErrCodeNotFound, shoperrors.GetCode(err))
	assert.Contains(t, shoperrors.FormatForCLI(err), "shopindex ensure")
}

func TestSearchCmd_RequiresQuery(t *testing.T) {
	p := newTestProject(t)

	_, err := p.run(t, "search")

	require.Error(t, err)
}
