// Package persistence implements the Persistence Layer: a single
// serializing writer appends canonical RepoReports to a line-delimited
// output stream, and a separate repair pass quarantines malformed lines.
package persistence

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/fabriziosalmi/repolizer/internal/coeagg"
	"github.com/fabriziosalmi/repolizer/internal/coeerr"
	"github.com/fabriziosalmi/repolizer/internal/obslog"
	"github.com/fabriziosalmi/repolizer/internal/util"
)

// Writer owns the output file exclusively; every record emission funnels
// through its channel.
type Writer struct {
	path   string
	file   *os.File
	ch     chan coeagg.RepoReport
	done   chan struct{}
	logger obslog.Logger

	mu      sync.Mutex
	written int
	lastErr error

	closeOnce sync.Once
	closeErr  error
}

// NewWriter opens (creating if necessary, appending if present) the
// output file at path and starts its serializing goroutine.
func NewWriter(path string, logger obslog.Logger) (*Writer, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := util.EnsureDirectoryExists(dir); err != nil {
			return nil, coeerr.NewPersistenceError("open", path, err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, coeerr.NewPersistenceError("open", path, err)
	}

	w := &Writer{
		path:   path,
		file:   f,
		ch:     make(chan coeagg.RepoReport, 16),
		done:   make(chan struct{}),
		logger: logger,
	}
	go w.drain()
	return w, nil
}

// drain is the single serializing writer goroutine: it owns the file,
// and concurrent producers hand records over a channel rather than
// writing directly.
func (w *Writer) drain() {
	defer close(w.done)
	for report := range w.ch {
		if err := w.writeOnce(report); err != nil {
			w.mu.Lock()
			w.lastErr = err
			w.mu.Unlock()
			w.logger.Error("persistence write failed after retry",
				obslog.String("path", w.path), obslog.Err(err))
		}
	}
}

// writeOnce composes one record in memory, then issues a single Write
// syscall so each record lands atomically, retrying the write exactly once
// on failure. A second failure is returned to drain, which records it as
// the error Close returns and goes on with the next record; the batch is
// not stopped.
func (w *Writer) writeOnce(report coeagg.RepoReport) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	if err := enc.Encode(report); err != nil {
		return coeerr.NewPersistenceError("marshal", w.path, err)
	}

	_, err := w.file.Write(buf.Bytes())
	if err != nil {
		_, err = w.file.Write(buf.Bytes()) // single retry
	}
	if err != nil {
		return coeerr.NewPersistenceError("write", w.path, err)
	}

	w.mu.Lock()
	w.written++
	w.mu.Unlock()
	return nil
}

// Append enqueues report for writing. It blocks until the writer accepts
// it or ctx is cancelled.
func (w *Writer) Append(ctx context.Context, report coeagg.RepoReport) error {
	select {
	case w.ch <- report:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting new records, drains the channel, and closes the
// underlying file. It returns the last write error encountered, if any.
// Safe to call more than once; only the first call does any work.
func (w *Writer) Close() error {
	w.closeOnce.Do(func() {
		close(w.ch)
		<-w.done

		w.mu.Lock()
		lastErr := w.lastErr
		w.mu.Unlock()

		if err := w.file.Close(); err != nil && lastErr == nil {
			lastErr = coeerr.NewPersistenceError("close", w.path, err)
		}
		w.closeErr = lastErr
	})
	return w.closeErr
}

// Written returns the number of records successfully appended so far.
func (w *Writer) Written() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.written
}
