package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsCmd_PrintsPrometheusText(t *testing.T) {
	// Given: a seeded catalog
	p := newTestProject(t)
	p.seed(t)

	// When: printing stats with a forced rebuild
	out, err := p.run(t, "stats", "--rebuild")

	// Then: the rebuild counter and entry gauge are exposed
	require.NoError(t, err)
	assert.Contains(t, out, "# TYPE search_index_rebuilds_total counter")
	assert.Contains(t, out, `search_index_rebuilds_total{reason="forced"} 1`)
	assert.Contains(t, out, "search_index_entries 3")
}

func TestStatsCmd_NoRebuildWhenCurrent(t *testing.T) {
	// Given: a current index
	p := newTestProject(t)
	p.seed(t)

	// When: printing stats
	out, err := p.run(t, "stats")

	// Then: no rebuild was counted
	require.NoError(t, err)
	assert.NotContains(t, out, "search_index_rebuilds_total{")
}
