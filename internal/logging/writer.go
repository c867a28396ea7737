package logging

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// RotatingWriter is an io.Writer that rotates the log file by size.
// Rotated files are named <path>.1 (newest) through <path>.<maxFiles>.
type RotatingWriter struct {
	path     string
	maxSize  int64
	maxFiles int

	mu   sync.Mutex
	file *os.File
	// buf is nil while every write is synced straight to the file.
	buf  *bufio.Writer
	size int64
}

// NewRotatingWriter opens path for appending, creating its directory.
// Writes are synced to disk one by one until SetImmediateSync(false).
func NewRotatingWriter(path string, maxSizeMB, maxFiles int) (*RotatingWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	w := &RotatingWriter{
		path:     path,
		maxSize:  int64(maxSizeMB) << 20,
		maxFiles: maxFiles,
	}
	if err := w.open(); err != nil {
		return nil, err
	}
	return w, nil
}

// SetImmediateSync switches between syncing every write and buffering
// writes until Sync, Close or the next rotation.
func (w *RotatingWriter) SetImmediateSync(enabled bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch {
	case enabled && w.buf != nil:
		_ = w.buf.Flush()
		w.buf = nil
	case !enabled && w.buf == nil:
		w.buf = bufio.NewWriter(w.file)
	}
}

// Write appends p, rotating first when p would push a non-empty file past
// the size limit. A failed rotation is reported on stderr and the write
// goes to the current file.
func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.size > 0 && w.size+int64(len(p)) > w.maxSize {
		if err := w.rotate(); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "log rotation failed: %v\n", err)
		}
	}
	if w.file == nil {
		if err := w.open(); err != nil {
			return 0, err
		}
	}

	if w.buf != nil {
		n, err := w.buf.Write(p)
		w.size += int64(n)
		return n, err
	}
	n, err := w.file.Write(p)
	w.size += int64(n)
	if err == nil {
		err = w.file.Sync()
	}
	return n, err
}

// Sync flushes buffered writes and syncs the file.
func (w *RotatingWriter) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.flush()
}

// Close flushes and closes the file.
func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	err := errors.Join(w.flush(), w.file.Close())
	w.file = nil
	return err
}

func (w *RotatingWriter) flush() error {
	if w.file == nil {
		return nil
	}
	if w.buf != nil {
		if err := w.buf.Flush(); err != nil {
			return err
		}
	}
	return w.file.Sync()
}

func (w *RotatingWriter) open() error {
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to stat log file: %w", err)
	}
	w.file = f
	w.size = info.Size()
	if w.buf != nil {
		w.buf.Reset(f)
	}
	return nil
}

// rotate shifts <path>.N up by one, dropping the oldest, moves the current
// file to <path>.1 and reopens an empty file.
func (w *RotatingWriter) rotate() error {
	if err := errors.Join(w.flush(), w.file.Close()); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	w.file = nil

	if w.maxFiles < 1 {
		if err := os.Remove(w.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to remove log file: %w", err)
		}
	} else {
		_ = os.Remove(w.rotated(w.maxFiles))
		for i := w.maxFiles - 1; i >= 1; i-- {
			_ = os.Rename(w.rotated(i), w.rotated(i+1))
		}
		if err := os.Rename(w.path, w.rotated(1)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			_ = w.open()
			return fmt.Errorf("failed to rotate log file: %w", err)
		}
	}
	return w.open()
}

func (w *RotatingWriter) rotated(n int) string {
	return fmt.Sprintf("%s.%d", w.path, n)
}
