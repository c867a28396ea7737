package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	shoperrors "github.com/Aman-CERP/shopindex/internal/errors"
)

// lockRetryDelay is how often a waiting Acquire retries the lock file.
const lockRetryDelay = 100 * time.Millisecond

// FileLock is an advisory lock on <db>.lock, held by the process that
// bootstraps or rebuilds the index of that database.
type FileLock struct {
	fl *flock.Flock
}

// NewFileLock creates the lock for the database at dbPath. Nothing is
// touched on disk until Acquire.
func NewFileLock(dbPath string) *FileLock {
	return &FileLock{fl: flock.New(dbPath + ".lock")}
}

// Acquire takes the lock. With wait set it retries until ctx is done and
// then returns ctx.Err(). Without it a lock held elsewhere fails at once
// with ErrStoreLocked.
func (l *FileLock) Acquire(ctx context.Context, wait bool) error {
	if err := os.MkdirAll(filepath.Dir(l.fl.Path()), 0o755); err != nil {
		return shoperrors.IOError("failed to create lock directory", err)
	}

	var acquired bool
	var err error
	if wait {
		acquired, err = l.fl.TryLockContext(ctx, lockRetryDelay)
	} else {
		acquired, err = l.fl.TryLock()
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return shoperrors.IOError("failed to lock database", err)
	}
	if !acquired {
		return shoperrors.New(shoperrors.ErrCodeStoreLocked,
			fmt.Sprintf("database is locked by another shopindex process (%s)", l.fl.Path()), nil).
			WithSuggestion("wait for the running ensure or rebuild to finish, or retry without --no-wait")
	}
	return nil
}

// Release drops the lock. It is a no-op when the lock is not held.
func (l *FileLock) Release() error {
	if !l.fl.Locked() {
		return nil
	}
	if err := l.fl.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}
