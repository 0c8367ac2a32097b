// Package engine implements the Execution Engine: it schedules
// many independent check executions across a repository with bounded
// concurrency, a per-check deadline, exception isolation, cooperative
// cancellation, and memory-aware throttling.
package engine

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/fabriziosalmi/repolizer/internal/coecore"
	"github.com/fabriziosalmi/repolizer/internal/coereg"
	"github.com/fabriziosalmi/repolizer/internal/coesnap"
	"github.com/fabriziosalmi/repolizer/internal/obslog"
)

// Config holds the Execution Engine's tunables.
type Config struct {
	MaxConcurrency int           // default 4, clamped to min(CPU count, 8, queue length)
	CheckTimeout   time.Duration // default 60s, per-check override via CheckDescriptor.Timeout
	MemoryLimitMB  int           // default 1000, see Sampler
}

// DefaultConfig returns the documented default tunables.
func DefaultConfig() Config {
	return Config{MaxConcurrency: 4, CheckTimeout: 60 * time.Second, MemoryLimitMB: 1000}
}

// Outcome is one check's terminated execution, prior to normalization.
type Outcome struct {
	ID         string
	Category   string
	Weight     float64
	Raw        coecore.RawResult
	RunErr     error
	DurationMs int64
}

// CategoryOutcome groups every check outcome for one category, emitted
// only once every check in the category has terminated.
type CategoryOutcome struct {
	Category string
	Checks   []Outcome
}

// RepositoryOutcome is the full per-repository result of running the
// engine, before the Normalizer/Aggregator (internal/coeagg) converts it
// into a RepoReport.
type RepositoryOutcome struct {
	Categories []CategoryOutcome
	Cancelled  bool // true when the batch's cancel signal fired before all checks started
}

// Engine runs registered checks against repository snapshots.
type Engine struct {
	registry *coereg.Registry
	cfg      Config
	logger   obslog.Logger
	sampler  *Sampler
}

// New creates an Execution Engine bound to registry.
func New(registry *coereg.Registry, cfg Config, logger obslog.Logger) *Engine {
	if cfg.MaxConcurrency <= 0 {
		cfg = DefaultConfig()
	}
	if cfg.CheckTimeout <= 0 {
		cfg.CheckTimeout = DefaultConfig().CheckTimeout
	}
	if cfg.MemoryLimitMB <= 0 {
		cfg.MemoryLimitMB = DefaultConfig().MemoryLimitMB
	}

	return &Engine{
		registry: registry,
		cfg:      cfg,
		logger:   logger,
		sampler:  NewSampler(cfg.MemoryLimitMB),
	}
}

// Sampler exposes the engine's retained memory diagnostics ring buffer.
func (e *Engine) Sampler() *Sampler { return e.sampler }

// RunRepository executes every registered check in categories (or every
// registered category when categories is empty) against handle. It
// enforces a bounded worker pool sized by cfg.MaxConcurrency, a per-check
// deadline, exception isolation, and cooperative cancellation via ctx.
func (e *Engine) RunRepository(ctx context.Context, handle *coesnap.RepoHandle, categories []string) RepositoryOutcome {
	if len(categories) == 0 {
		categories = e.registry.Categories()
	} else {
		sort.Strings(categories)
	}

	type job struct {
		desc coecore.CheckDescriptor
	}

	var jobs []job
	for _, cat := range categories {
		for _, d := range e.registry.ByCategory(cat) {
			jobs = append(jobs, job{desc: d})
		}
	}

	if len(jobs) == 0 {
		return RepositoryOutcome{}
	}

	workers := clampConcurrency(e.cfg.MaxConcurrency, len(jobs))
	sem := semaphore.NewWeighted(int64(workers))

	results := make([]Outcome, len(jobs))
	cancelledBeforeStart := make([]bool, len(jobs))

	doneCh := make(chan struct{}, len(jobs))

	for i, j := range jobs {
		i, j := i, j

		select {
		case <-ctx.Done():
			cancelledBeforeStart[i] = true
			doneCh <- struct{}{}
			continue
		default:
		}

		if err := sem.Acquire(ctx, 1); err != nil {
			// Context was cancelled while waiting for a worker slot.
			cancelledBeforeStart[i] = true
			doneCh <- struct{}{}
			continue
		}

		go func() {
			defer sem.Release(1)
			defer func() { doneCh <- struct{}{} }()
			results[i] = e.runOne(ctx, j.desc, handle)
		}()
	}

	for range jobs {
		<-doneCh
	}

	cancelled := false
	for i, skip := range cancelledBeforeStart {
		if !skip {
			continue
		}
		cancelled = true
		d := jobs[i].desc
		results[i] = Outcome{
			ID:       d.ID,
			Category: d.Category,
			Weight:   d.Weight,
			Raw: coecore.RawResult{
				Status: coecore.StatusSkipped,
				Errors: "cancelled before start",
			},
		}
	}

	byCategory := make(map[string][]Outcome)
	for _, r := range results {
		byCategory[r.Category] = append(byCategory[r.Category], r)
	}

	var out RepositoryOutcome
	out.Cancelled = cancelled
	for _, cat := range categories {
		checks := byCategory[cat]
		sort.Slice(checks, func(i, j int) bool { return checks[i].ID < checks[j].ID })
		out.Categories = append(out.Categories, CategoryOutcome{Category: cat, Checks: checks})
	}
	return out
}

// runOne executes a single check under its deadline, isolating panics and
// errors, and returns a terminated Outcome: queued -> running -> terminal.
func (e *Engine) runOne(ctx context.Context, d coecore.CheckDescriptor, handle *coesnap.RepoHandle) Outcome {
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = e.cfg.CheckTimeout
	}

	checkCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	type result struct {
		raw coecore.RawResult
		err error
	}
	resCh := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				resCh <- result{err: fmt.Errorf("check panicked: %v", r)}
			}
		}()
		raw, err := d.Run(checkCtx, handle)
		resCh <- result{raw: raw, err: err}
	}()

	select {
	case r := <-resCh:
		duration := time.Since(start)
		if r.err != nil {
			e.logger.Warn("check failed",
				obslog.String("check_id", d.ID),
				obslog.String("repository", handle.ID()),
				obslog.Err(r.err))
			return Outcome{
				ID: d.ID, Category: d.Category, Weight: d.Weight,
				Raw:        coecore.RawResult{Status: coecore.StatusFailed, Errors: r.err.Error()},
				RunErr:     r.err,
				DurationMs: duration.Milliseconds(),
			}
		}
		return Outcome{ID: d.ID, Category: d.Category, Weight: d.Weight, Raw: r.raw, DurationMs: duration.Milliseconds()}

	case <-checkCtx.Done():
		duration := time.Since(start)
		e.logger.Warn("check timed out",
			obslog.String("check_id", d.ID),
			obslog.String("repository", handle.ID()),
			obslog.Duration("timeout", timeout))
		// The goroutine above is abandoned: its result, if it ever
		// arrives, is discarded.
		return Outcome{
			ID: d.ID, Category: d.Category, Weight: d.Weight,
			Raw:        coecore.RawResult{Status: coecore.StatusTimeout, Errors: fmt.Sprintf("timeout after %s", timeout)},
			DurationMs: duration.Milliseconds(),
		}
	}
}

// clampConcurrency bounds requested against the CPU count, a hard ceiling
// of 8, and the number of queued items.
func clampConcurrency(requested, queueLen int) int {
	n := requested
	if cpu := runtime.NumCPU(); cpu < n {
		n = cpu
	}
	if n > 8 {
		n = 8
	}
	if queueLen < n {
		n = queueLen
	}
	if n < 1 {
		n = 1
	}
	return n
}
