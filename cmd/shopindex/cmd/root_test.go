package cmd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	shoperrors "github.com/Aman-CERP/shopindex/internal/errors"
	"github.com/Aman-CERP/shopindex/internal/store"
)

func TestRootCmd_HasSubcommands(t *testing.T) {
	// Given: the root command
	root := NewRootCmd()

	// Then: every subcommand is registered
	for _, name := range []string{"ensure", "rebuild", "search", "verify", "status", "stats", "logs", "config", "version"} {
		sub, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}
}

func TestRootCmd_PersistentFlags(t *testing.T) {
	root := NewRootCmd()

	assert.NotNil(t, root.PersistentFlags().Lookup("config-dir"))
	assert.NotNil(t, root.PersistentFlags().Lookup("debug"))
}

func TestRootCmd_EnsureThenSearch(t *testing.T) {
	// Given: a fresh project
	p := newTestProject(t)

	// When: bootstrapping, seeding and searching
	_, err := p.run(t, "ensure")
	require.NoError(t, err)
	p.seed(t)
	out, err := p.run(t, "search", "ada@example")

	// Then: the order is found by the customer's email prefix
	require.NoError(t, err)
	assert.Contains(t, out, "[order #1] A-1001")
}

func TestRootCmd_ReadOnlyCommandsIgnoreLock(t *testing.T) {
	// Given: an ensured index and another process holding the database lock
	p := newTestProject(t)
	p.seed(t)
	lock := store.NewFileLock(p.dbPath)
	require.NoError(t, lock.Acquire(context.Background(), false))
	defer func() { _ = lock.Release() }()

	// When: running status and search
	status, err := p.run(t, "status")
	require.NoError(t, err)
	search, err := p.run(t, "search", "mifare")
	require.NoError(t, err)

	// Then: both succeed without waiting for the lock
	assert.Contains(t, status, "State:     current")
	assert.Contains(t, search, "[product #1]")
}

func TestRootCmd_NoWaitFailsWhileLocked(t *testing.T) {
	// Given: another process holding the database lock
	p := newTestProject(t)
	lock := store.NewFileLock(p.dbPath)
	require.NoError(t, lock.Acquire(context.Background(), false))
	defer func() { _ = lock.Release() }()

	// When: each writing command runs with --no-wait
	for _, name := range []string{"ensure", "rebuild", "stats"} {
		_, err := p.run(t, name, "--no-wait")

		// Then: it fails at once with the locked error
		require.Error(t, err, name)
		assert.ErrorIs(t, err, shoperrors.ErrStoreLocked, name)
	}
}
