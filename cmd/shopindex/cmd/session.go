package cmd

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Aman-CERP/shopindex/internal/config"
	shoperrors "github.com/Aman-CERP/shopindex/internal/errors"
	"github.com/Aman-CERP/shopindex/internal/metrics"
	"github.com/Aman-CERP/shopindex/internal/schema"
	"github.com/Aman-CERP/shopindex/internal/searchindex"
	"github.com/Aman-CERP/shopindex/internal/store"
)

// session is one opened store with its index.
type session struct {
	db       *sql.DB
	index    *searchindex.Index
	registry *prometheus.Registry
	lock     *store.FileLock
}

// lockMode says whether a session takes the cross-process database lock.
type lockMode int

const (
	lockNone   lockMode = iota // read-only work
	lockWait                   // wait for the holder to finish
	lockNoWait                 // fail at once if another process holds it
)

// exclusiveLock picks the mode for commands that write the index.
func exclusiveLock(noWait bool) lockMode {
	if noWait {
		return lockNoWait
	}
	return lockWait
}

// openSession opens the configured store and builds the index over it.
// Unless mode is lockNone, the cross-process lock is held until Close so
// two deployments never bootstrap or rebuild the same database at once.
func openSession(ctx context.Context, c *config.Config, mode lockMode) (*session, error) {
	s := &session{registry: prometheus.NewRegistry()}

	if mode != lockNone {
		s.lock = store.NewFileLock(c.Database.Path)
		if err := s.lock.Acquire(ctx, mode == lockWait); err != nil {
			return nil, err
		}
	}

	busy, _ := c.BusyTimeout() // validated by config.Load
	db, err := store.Open(ctx, store.Options{
		Path:        c.Database.Path,
		Driver:      c.Database.Driver,
		BusyTimeout: busy,
		CacheMB:     c.Database.CacheMB,
	})
	if err != nil {
		_ = s.unlock()
		return nil, err
	}
	s.db = db

	if err := schema.Migrate(ctx, db); err != nil {
		_ = s.Close()
		return nil, shoperrors.IOError("failed to create catalog tables", err)
	}

	s.index = searchindex.New(db, indexOptions(c, metrics.New(s.registry))...)
	return s, nil
}

func indexOptions(c *config.Config, m *metrics.Metrics) []searchindex.Option {
	opts := []searchindex.Option{
		searchindex.WithLogger(slog.Default()),
		searchindex.WithMetrics(m),
		searchindex.WithTokenizers(c.Index.EnrichedTokenizer, c.Index.PlainTokenizer),
		searchindex.WithPrefixes(c.Index.Prefixes...),
	}
	if c.Index.ExpectedVersion > 0 {
		opts = append(opts, searchindex.WithExpectedVersion(c.Index.ExpectedVersion))
	}
	return opts
}

// requireIndex fails when the index table has not been created yet.
func (s *session) requireIndex(ctx context.Context) error {
	st, err := s.index.Status(ctx)
	if err != nil {
		return err
	}
	if !st.Exists {
		return shoperrors.New(shoperrors.ErrCodeNotFound, "search index does not exist", nil).
			WithSuggestion("run 'shopindex ensure' first")
	}
	return nil
}

// Close checkpoints after exclusive work, closes the store and releases the lock.
func (s *session) Close() error {
	var errs []error
	if s.db != nil {
		if s.lock != nil {
			if err := store.Checkpoint(context.Background(), s.db); err != nil {
				slog.Debug("store_checkpoint_failed", slog.String("error", err.Error()))
			}
		}
		errs = append(errs, s.db.Close())
	}
	errs = append(errs, s.unlock())
	return errors.Join(errs...)
}

func (s *session) unlock() error {
	if s.lock == nil {
		return nil
	}
	return s.lock.Release()
}
