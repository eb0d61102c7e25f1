package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/MJE43/antwalk/internal/engine"
	"github.com/MJE43/antwalk/internal/region"
	"github.com/MJE43/antwalk/internal/walker"
)

// Request describes one batch of independent trials.
type Request struct {
	Region    string       `json:"region"`
	Seeds     engine.Seeds `json:"seeds"`
	Epochs    int          `json:"epochs"`
	Params    Params       `json:"params"`
	Workers   int          `json:"workers,omitempty"`    // 0 means GOMAXPROCS
	TimeoutMs int          `json:"timeout_ms,omitempty"` // 0 means no timeout
}

// Result is the outcome of a batch.
type Result struct {
	ID            string       `json:"id"`
	Times         []float64    `json:"times"` // completed trials in trial order
	Failures      []TrialError `json:"-"`
	Summary       Summary      `json:"summary"`
	EngineVersion string       `json:"engine_version"`
	Echo          Request      `json:"echo"`
}

// TrialJob is a contiguous range of trial indices handed to one worker.
type TrialJob struct {
	Start uint64
	End   uint64 // inclusive
}

// slot holds one trial's outcome; each slot is written by exactly one worker.
type slot struct {
	done bool
	time float64
	err  *TrialError
}

// Runner executes batches across a pool of workers.
type Runner struct {
	workerCount int
	batchSize   uint64
	logger      *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithWorkers fixes the worker count. Values below 1 keep the default.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workerCount = n
		}
	}
}

// WithLogger sets the logger used for batch lifecycle messages.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRunner creates a runner with one worker per available CPU.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		workerCount: runtime.GOMAXPROCS(0),
		batchSize:   256,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes req.Epochs trials. Failed trials are skipped and counted;
// the mean covers completed trials only. An invariant violation aborts the
// whole batch. When req.TimeoutMs elapses the partial result is returned
// with Summary.TimedOut set.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	if req.Epochs <= 0 {
		return nil, fmt.Errorf("%w: epochs must be positive, got %d", ErrInvalidParams, req.Epochs)
	}
	if err := req.Params.Validate(); err != nil {
		return nil, err
	}

	reg, err := region.Get(req.Region)
	if err != nil {
		return nil, err
	}
	if !reg.IsInside(0, 0) {
		return nil, fmt.Errorf("%w: %s", ErrStartOutside, reg.Formula())
	}

	workers := r.workerCount
	if req.Workers > 0 {
		workers = req.Workers
	}

	runCtx := ctx
	if req.TimeoutMs > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, time.Duration(req.TimeoutMs)*time.Millisecond)
		defer cancel()
	}

	id := uuid.NewString()
	logger := r.logger.With("run_id", id, "region", reg.Name())
	logger.Info("batch started", "epochs", req.Epochs, "workers", workers)
	start := time.Now()

	slots := make([]slot, req.Epochs)
	var evaluated uint64

	jobs := make(chan TrialJob, workers*2)
	g, gctx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		return r.generateJobs(gctx, jobs, uint64(req.Epochs))
	})

	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for {
				select {
				case job, ok := <-jobs:
					if !ok {
						return nil
					}
					if err := runJob(gctx, job, reg, req, slots, &evaluated); err != nil {
						return err
					}
				case <-gctx.Done():
					return gctx.Err()
				}
			}
		})
	}

	timedOut := false
	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		timedOut = true
	}

	res := collect(slots)
	res.ID = id
	res.EngineVersion = engine.EngineVersion
	res.Echo = req
	res.Summary.Requested = req.Epochs
	res.Summary.Evaluated = atomic.LoadUint64(&evaluated)
	res.Summary.TimedOut = timedOut

	logger.Info("batch finished",
		"completed", res.Summary.Completed,
		"skipped", res.Summary.Skipped,
		"timed_out", timedOut,
		"duration", time.Since(start),
	)
	for reason, n := range res.Summary.Failures {
		logger.Warn("trials skipped", "reason", reason, "count", n)
	}

	if res.Summary.Completed == 0 {
		return res, ErrNoCompletedTrials
	}
	return res, nil
}

// generateJobs splits [0, epochs) into contiguous batches.
func (r *Runner) generateJobs(ctx context.Context, jobs chan<- TrialJob, epochs uint64) error {
	defer close(jobs)

	for current := uint64(0); current < epochs; {
		end := current + r.batchSize - 1
		if end >= epochs {
			end = epochs - 1
		}

		select {
		case jobs <- TrialJob{Start: current, End: end}:
			current = end + 1
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func runJob(ctx context.Context, job TrialJob, reg *region.Region, req Request, slots []slot, evaluated *uint64) error {
	p := req.Params
	for trial := job.Start; trial <= job.End; trial++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		w := walker.New(p.StepSize, p.SecondsPerStep, walker.NewStreamSource(req.Seeds, trial))
		out, err := RunTrial(reg, w, p)
		atomic.AddUint64(evaluated, 1)

		if err != nil {
			te := &TrialError{Trial: trial, Steps: out.Steps, Err: err}
			if te.IsInvariantViolation() {
				return te
			}
			slots[trial].err = te
			continue
		}
		slots[trial] = slot{done: true, time: out.Time}
	}
	return nil
}

// collect gathers slots in trial order so the aggregate does not depend on
// worker scheduling.
func collect(slots []slot) *Result {
	res := &Result{Times: make([]float64, 0, len(slots))}
	for i := range slots {
		s := &slots[i]
		switch {
		case s.done:
			res.Times = append(res.Times, s.time)
		case s.err != nil:
			res.Failures = append(res.Failures, *s.err)
		}
	}
	res.Summary = Summarize(res.Times, res.Failures)
	return res
}
