// Package batch runs contact page checks over a list of sites in fixed-size
// batches, pacing launches to avoid overwhelming targets or tripping bot
// detection. Results are persisted incrementally per site; a cancelled run
// keeps everything completed so far.
package batch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/vishalwebdevnew4/TEQSmartSubmit-sub001/internal/config"
	"github.com/vishalwebdevnew4/TEQSmartSubmit-sub001/internal/store"
	"github.com/vishalwebdevnew4/TEQSmartSubmit-sub001/pkg/types"
)

// Checker is the detection capability the runner drives, one site at a time.
type Checker interface {
	Detect(ctx context.Context, site string) types.ContactCheckResult
}

// Result pairs one site with its outcome and wall-clock cost.
type Result struct {
	Site     string
	Result   types.ContactCheckResult
	Duration time.Duration
}

// Progress is a live snapshot of a running batch job.
type Progress struct {
	TotalSites   int           `json:"totalSites"`
	Completed    int           `json:"completed"`
	CurrentBatch int           `json:"currentBatch"`
	TotalBatches int           `json:"totalBatches"`
	Elapsed      time.Duration `json:"elapsed"`
	AvgDuration  time.Duration `json:"avgDuration"`
}

// Runner executes batches of site checks with bounded concurrency.
type Runner struct {
	checker Checker
	store   store.Store
	cfg     config.BatchConfig
	logger  *slog.Logger

	mu        sync.Mutex
	startedAt time.Time
	completed int
	totalCost time.Duration
	batchIdx  int
	total     int
}

// NewRunner constructs a runner. The store may be nil to skip persistence.
func NewRunner(checker Checker, s store.Store, cfg config.BatchConfig) *Runner {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}
	if cfg.InterItemDelay.IsZero() {
		cfg.InterItemDelay = config.DurationFrom(5 * time.Second)
	}
	if cfg.ItemTimeout.IsZero() {
		cfg.ItemTimeout = config.DurationFrom(3 * time.Minute)
	}
	return &Runner{checker: checker, store: s, cfg: cfg, logger: slog.Default()}
}

// Run processes sites batch by batch. Cancellation interrupts the in-flight
// site but never rolls back completed ones; the partial result set is
// returned alongside ctx.Err().
func (r *Runner) Run(ctx context.Context, sites []string) ([]Result, error) {
	r.mu.Lock()
	r.startedAt = time.Now()
	r.completed = 0
	r.totalCost = 0
	r.total = len(sites)
	r.mu.Unlock()

	pool, err := newWorkerPool(ctx, r.cfg.BatchSize, r.cfg.BatchSize*2)
	if err != nil {
		return nil, err
	}
	defer pool.close()

	// One launch per inter-item delay, across batch boundaries too.
	limiter := rate.NewLimiter(rate.Every(r.cfg.InterItemDelay.Duration), 1)

	var (
		resultsMu sync.Mutex
		results   []Result
	)

	batches := chunk(sites, r.cfg.BatchSize)
	for bi, batch := range batches {
		r.mu.Lock()
		r.batchIdx = bi + 1
		r.mu.Unlock()
		r.logger.Info("starting batch", "batch", bi+1, "of", len(batches), "sites", len(batch))

		var wg sync.WaitGroup
		for _, site := range batch {
			if err := limiter.Wait(ctx); err != nil {
				wg.Wait()
				return results, err
			}
			site := site
			wg.Add(1)
			if err := pool.submit(ctx, func(workerCtx context.Context) {
				defer wg.Done()
				res := r.checkOne(workerCtx, site)
				resultsMu.Lock()
				results = append(results, res)
				resultsMu.Unlock()
			}); err != nil {
				wg.Done()
				wg.Wait()
				return results, err
			}
		}
		wg.Wait()

		if ctx.Err() != nil {
			return results, ctx.Err()
		}
		if bi < len(batches)-1 && r.cfg.InterBatchDelay.Duration > 0 {
			timer := time.NewTimer(r.cfg.InterBatchDelay.Duration)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return results, ctx.Err()
			}
		}
	}
	return results, nil
}

func (r *Runner) checkOne(ctx context.Context, site string) Result {
	itemCtx, cancel := context.WithTimeout(ctx, r.cfg.ItemTimeout.Duration)
	defer cancel()

	start := time.Now()
	outcome := r.checker.Detect(itemCtx, site)
	cost := time.Since(start)

	if r.store != nil {
		if err := store.Record(ctx, r.store, site, outcome); err != nil {
			r.logger.Error("persist check failed", "site", site, "error", err)
		}
	}

	r.mu.Lock()
	r.completed++
	r.totalCost += cost
	r.mu.Unlock()

	r.logger.Info("site checked",
		"site", site,
		"status", string(outcome.Status),
		"contact_url", outcome.ContactURL,
		"duration_ms", cost.Milliseconds(),
	)
	return Result{Site: site, Result: outcome, Duration: cost}
}

// Progress returns a snapshot of the current run.
func (r *Runner) Progress() Progress {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := Progress{
		TotalSites:   r.total,
		Completed:    r.completed,
		CurrentBatch: r.batchIdx,
	}
	if r.cfg.BatchSize > 0 && r.total > 0 {
		p.TotalBatches = (r.total + r.cfg.BatchSize - 1) / r.cfg.BatchSize
	}
	if !r.startedAt.IsZero() {
		p.Elapsed = time.Since(r.startedAt)
	}
	if r.completed > 0 {
		p.AvgDuration = r.totalCost / time.Duration(r.completed)
	}
	return p
}

func chunk(sites []string, size int) [][]string {
	var out [][]string
	for len(sites) > size {
		out = append(out, sites[:size])
		sites = sites[size:]
	}
	if len(sites) > 0 {
		out = append(out, sites)
	}
	return out
}
