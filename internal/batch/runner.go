package batch

import (
	"context"
	"os"
	"runtime"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
	"golang.org/x/time/rate"

	"github.com/fabriziosalmi/repolizer/internal/coeagg"
	"github.com/fabriziosalmi/repolizer/internal/coereg"
	"github.com/fabriziosalmi/repolizer/internal/coesnap"
	"github.com/fabriziosalmi/repolizer/internal/engine"
	"github.com/fabriziosalmi/repolizer/internal/obslog"
	"github.com/fabriziosalmi/repolizer/internal/persistence"
)

// Runner drives a full batch of repositories through the Execution
// Engine, the Normalizer/Aggregator, and the Persistence Layer, in
// fixed-size sub-batches: each sub-batch fully drains before the next
// starts, with memory-proportional throttling in between.
type Runner struct {
	registry *coereg.Registry
	engine   *engine.Engine
	writer   *persistence.Writer
	logger   obslog.Logger
	aggOpts  coeagg.Options
	ctx      Context

	limiter *rate.Limiter
}

// NewRunner wires a Runner from its already-constructed collaborators.
func NewRunner(registry *coereg.Registry, eng *engine.Engine, writer *persistence.Writer, logger obslog.Logger, aggOpts coeagg.Options, ctx Context) *Runner {
	return &Runner{
		registry: registry,
		engine:   eng,
		writer:   writer,
		logger:   logger,
		aggOpts:  aggOpts,
		ctx:      ctx,
		limiter:  rate.NewLimiter(rate.Inf, 1), // tightens only once memory exceeds the limit
	}
}

// Summary reports what happened across the whole batch.
type Summary struct {
	TotalRepos int
	Written    int
	Cancelled  bool
	ExitCode   ExitCode
}

// Run iterates entries in fixed-size sub-batches of r.ctx.BatchSize,
// fully draining (engine run + normalize + aggregate + persist) each
// sub-batch before starting the next, reclaiming resources and applying
// memory-proportional backoff between sub-batches.
func (r *Runner) Run(ctx context.Context, entries []coesnap.Entry, categories []string, clock func() time.Time) Summary {
	provider := coesnap.NewProvider()
	summary := Summary{TotalRepos: len(entries)}

	batchSize := r.ctx.BatchSize
	if batchSize <= 0 {
		batchSize = 1
	}

	bar := newProgressBar(len(entries))

	for start := 0; start < len(entries); start += batchSize {
		if ctx.Err() != nil {
			summary.Cancelled = true
			break
		}

		end := start + batchSize
		if end > len(entries) {
			end = len(entries)
		}
		sub := entries[start:end]

		r.runSubBatch(ctx, provider, sub, categories, clock, &summary, bar)

		if ctx.Err() != nil {
			summary.Cancelled = true
			break
		}

		r.throttleBetweenSubBatches()
	}

	_ = bar.Finish()

	switch {
	case summary.Cancelled:
		summary.ExitCode = ExitPartialBatch
	case summary.Written > 0:
		summary.ExitCode = ExitOK
	default:
		summary.ExitCode = ExitOtherFailure
	}
	return summary
}

func (r *Runner) runSubBatch(ctx context.Context, provider *coesnap.Provider, entries []coesnap.Entry, categories []string, clock func() time.Time, summary *Summary, bar *progressbar.ProgressBar) {
	for _, entry := range entries {
		if ctx.Err() != nil {
			return
		}

		var outcome engine.RepositoryOutcome
		err := coesnap.WithHandle(provider, entry, func(h *coesnap.RepoHandle) error {
			outcome = r.engine.RunRepository(ctx, h, categories)
			return nil
		})
		if err != nil {
			r.logger.Error("repository snapshot scope panicked", obslog.String("repository", entry.FullName), obslog.Err(err))
			_ = bar.Add(1)
			continue
		}

		report := coeagg.BuildReport(
			coeagg.RepoIdentity{ID: entry.ID, Name: entry.Name, FullName: entry.FullName},
			clock(),
			outcome,
			r.aggOpts,
		)

		if err := r.writer.Append(ctx, report); err != nil {
			r.logger.Error("failed to append report", obslog.String("repository", entry.FullName), obslog.Err(err))
			_ = bar.Add(1)
			continue
		}
		summary.Written++
		_ = bar.Add(1)
	}
}

// throttleBetweenSubBatches samples process memory and, when it exceeds
// the configured limit, forces a GC pass and applies a rate-limiter wait
// proportional to the overage before the next sub-batch starts.
func (r *Runner) throttleBetweenSubBatches() {
	sampler := r.engine.Sampler()
	if sampler == nil {
		return
	}

	sample := sampler.Sample()
	if !sample.OverLimit {
		return
	}

	r.logger.Warn("memory over limit, throttling before next sub-batch",
		obslog.Float("alloc_mb", sample.AllocMB), obslog.Int("limit_mb", r.ctx.MemoryLimitMB))
	runtime.GC()

	overage := sampler.OverageRatio()
	r.limiter.SetLimit(rate.Limit(1.0 / (1.0 + overage)))
	_ = r.limiter.Wait(context.Background())
}

func newProgressBar(total int) *progressbar.ProgressBar {
	if !isTTY() {
		return progressbar.DefaultSilent(int64(total))
	}
	return progressbar.Default(int64(total), "analyzing repositories")
}

func isTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
