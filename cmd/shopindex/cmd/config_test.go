package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/shopindex/internal/config"
)

func TestConfigInitCmd_WritesUserConfig(t *testing.T) {
	// Given: no user config
	p := newTestProject(t)

	// When: running config init
	out, err := p.run(t, "config", "init")

	// Then: the default config is written to the XDG path
	require.NoError(t, err)
	path := config.GetUserConfigPath()
	assert.Contains(t, out, "Wrote "+path)
	assert.FileExists(t, path)
}

func TestConfigInitCmd_ForceKeepsBackup(t *testing.T) {
	// Given: an existing user config
	p := newTestProject(t)
	_, err := p.run(t, "config", "init")
	require.NoError(t, err)

	// When: initializing again without and with --force
	_, errPlain := p.run(t, "config", "init")
	out, errForce := p.run(t, "config", "init", "--force")

	// Then: only --force overwrites, keeping a backup
	require.Error(t, errPlain)
	require.NoError(t, errForce)
	assert.Contains(t, out, "Backed up previous config to")
	backups, err := config.ListUserConfigBackups()
	require.NoError(t, err)
	assert.Len(t, backups, 1)
}

func TestConfigInitCmd_RunsWithBrokenProjectConfig(t *testing.T) {
	// Given: an invalid project config
	p := newTestProject(t)
	require.NoError(t, os.WriteFile(filepath.Join(p.dir, ".shopindex.yaml"), []byte("database: [oops"), 0o644))

	// When: running config init
	_, err := p.run(t, "config", "init")

	// Then: it does not need the project config
	require.NoError(t, err)
}

func TestConfigShowCmd_PrintsEffectiveConfig(t *testing.T) {
	// Given: a project config and an env override
	p := newTestProject(t)
	t.Setenv("SHOPINDEX_CACHE_MB", "16")

	// When: showing the config
	out, err := p.run(t, "config", "show")

	// Then: file values and overrides are both visible
	require.NoError(t, err)
	assert.Contains(t, out, "path: "+p.dbPath)
	assert.Contains(t, out, "cache_mb: 16")
	assert.Contains(t, out, "level: error")
}

func TestConfigPathCmd(t *testing.T) {
	p := newTestProject(t)

	out, err := p.run(t, "config", "path")

	require.NoError(t, err)
	assert.Equal(t, config.GetUserConfigPath(), strings.TrimSpace(out))
}
