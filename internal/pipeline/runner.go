package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/jonboulle/clockwork"

	"github.com/munim110/ar-downscaling/internal/domain"
	"github.com/munim110/ar-downscaling/internal/observability"
)

// Tally aggregates per-entry outcomes for one run.
type Tally struct {
	Succeeded int
	Skipped   int
	Failed    int
}

// Total returns the number of entries accounted for.
func (t Tally) Total() int { return t.Succeeded + t.Skipped + t.Failed }

// Runner fans manifest entries out over a bounded worker pool. Entries are
// independent units of work: a failed entry is logged and tallied, never
// allowed to cancel its siblings. Results are reconciled by timestamp key,
// so completion order is irrelevant.
type Runner struct {
	proc    *Processor
	workers int
	logger  *slog.Logger
	metrics *observability.Metrics
	clock   clockwork.Clock
	ready   atomic.Bool

	total     atomic.Int64
	succeeded atomic.Int64
	skipped   atomic.Int64
	failed    atomic.Int64
}

// NewRunner creates a Runner with the given parallelism.
func NewRunner(proc *Processor, workers int, logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{
		proc:    proc,
		workers: workers,
		logger:  logger,
		metrics: metrics,
		clock:   clock,
	}
}

// CheckReadiness returns nil once at least one entry has completed, so the
// readiness endpoint reflects real progress during long runs.
func (r *Runner) CheckReadiness(_ context.Context) error {
	if !r.ready.Load() {
		return errors.New("no manifest entries processed yet")
	}
	return nil
}

// Progress is a point-in-time snapshot of a run, served while it is still
// underway.
type Progress struct {
	Total     int64 `json:"total"`
	Succeeded int64 `json:"succeeded"`
	Skipped   int64 `json:"skipped"`
	Failed    int64 `json:"failed"`
}

// Snapshot reports the run's progress so far.
func (r *Runner) Snapshot() Progress {
	return Progress{
		Total:     r.total.Load(),
		Succeeded: r.succeeded.Load(),
		Skipped:   r.skipped.Load(),
		Failed:    r.failed.Load(),
	}
}

// Run processes all entries and returns the outcome tally. An interrupted
// run leaves valid partial outputs; the idempotent skip check makes a re-run
// resume where it left off.
func (r *Runner) Run(ctx context.Context, entries []domain.ManifestEntry) Tally {
	r.metrics.PipelineRunning.Set(1)
	defer r.metrics.PipelineRunning.Set(0)
	r.total.Store(int64(len(entries)))

	start := r.clock.Now()
	jobs := make(chan domain.ManifestEntry)
	results := make(chan result)

	var wg sync.WaitGroup
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for entry := range jobs {
				results <- r.processOne(entry)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, entry := range entries {
			select {
			case <-ctx.Done():
				return
			case jobs <- entry:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var tally Tally
	for res := range results {
		switch res.outcome {
		case OutcomeSuccess:
			tally.Succeeded++
			r.succeeded.Add(1)
			r.metrics.PairsSucceeded.Inc()
		case OutcomeSkipped:
			tally.Skipped++
			r.skipped.Add(1)
			r.metrics.PairsSkipped.Inc()
		case OutcomeFailed:
			tally.Failed++
			r.failed.Add(1)
			r.metrics.PairsFailed.Inc()
			r.metrics.FailureClasses.WithLabelValues(classify(res.err)).Inc()
			r.logger.Error("entry failed",
				"timestamp", domain.FormatKey(res.entry.Timestamp),
				"coarse_path", res.entry.CoarsePath,
				"fine_path", res.entry.FinePath,
				"error", res.err,
			)
		}
		r.ready.Store(true)
	}

	r.logger.Info("processing run complete",
		"entries", len(entries),
		"succeeded", tally.Succeeded,
		"skipped", tally.Skipped,
		"failed", tally.Failed,
		"duration", r.clock.Since(start),
	)
	return tally
}

type result struct {
	entry   domain.ManifestEntry
	outcome Outcome
	err     error
}

func (r *Runner) processOne(entry domain.ManifestEntry) result {
	start := r.clock.Now()
	outcome, err := r.proc.Process(entry)
	r.metrics.PairDuration.Observe(r.clock.Since(start).Seconds())
	return result{entry: entry, outcome: outcome, err: err}
}

// classify maps an error to its taxonomy class for metrics labels.
func classify(err error) string {
	switch {
	case errors.Is(err, domain.ErrAlignment):
		return "alignment"
	case errors.Is(err, domain.ErrSchema):
		return "schema"
	case errors.Is(err, domain.ErrSourceUnavailable):
		return "source"
	default:
		return "io"
	}
}

// VerifyArtifacts reconciles the tally against the predictor artifacts
// actually on disk. Partial writes or crashes can desynchronize the tally
// from reality; a mismatch is surfaced loudly for operator attention, never
// auto-corrected.
func VerifyArtifacts(outputDir string, tally Tally, logger *slog.Logger) (int, bool) {
	paths, err := filepath.Glob(filepath.Join(outputDir, "*_predictor.npy"))
	if err != nil {
		logger.Warn("verification scan failed", "dir", outputDir, "error", err)
		return 0, false
	}

	expected := tally.Succeeded + tally.Skipped
	if len(paths) < expected {
		logger.Warn("verification mismatch: fewer artifacts on disk than reported",
			"on_disk", len(paths), "expected_at_least", expected)
		return len(paths), false
	}

	logger.Info("verification passed", "on_disk", len(paths), "expected_at_least", expected)
	return len(paths), true
}
