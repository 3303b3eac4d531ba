package batch

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/samber/lo"

	"github.com/joshharrison/critpath/internal/cpm"
	"github.com/joshharrison/critpath/internal/netlist"
	"github.com/joshharrison/critpath/internal/reporter"
)

// Runner analyzes many netlist files concurrently.
type Runner struct {
	Config Config
	log    *log.Logger
}

// New creates a new Runner.
func New(cfg Config) *Runner {
	if cfg.MaxParallel <= 0 {
		cfg.MaxParallel = 4
	}
	if cfg.DisplayScale == 0 {
		cfg.DisplayScale = 1
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &Runner{Config: cfg, log: logger}
}

// Run analyzes every path, at most MaxParallel at a time. Outcomes are
// returned in input order regardless of completion order.
//
// A failing file does not stop the others unless FailFast is set, in which
// case the remaining files are cancelled and the first error is returned.
// Cancelling ctx marks unfinished files as cancelled and returns ctx's error.
func (r *Runner) Run(ctx context.Context, paths []string) ([]Outcome, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	outcomes := lo.Map(paths, func(p string, _ int) Outcome {
		return Outcome{Path: p, Status: StatusPending}
	})
	if len(paths) == 0 {
		return outcomes, nil
	}

	done := make(chan jobResult, len(paths))
	sem := make(chan struct{}, r.Config.MaxParallel)

	r.log.Info("batch started", "files", len(paths), "max_parallel", r.Config.MaxParallel)

	for i, p := range paths {
		r.dispatch(ctx, i, p, sem, done)
	}

	var firstErr error
	for received := 0; received < len(paths); received++ {
		res := <-done
		out := &outcomes[res.Index]
		out.StartedAt = res.StartedAt
		out.FinishedAt = res.FinishedAt

		switch {
		case res.Err == nil:
			out.Status = StatusCompleted
			out.Report = res.Report
			r.log.Info("analyzed", "file", out.Path,
				"total_delay", res.Report.ScaledDelay(),
				"elapsed", res.FinishedAt.Sub(res.StartedAt))
		case ctx.Err() != nil && res.Err == ctx.Err():
			out.Status = StatusCancelled
			out.Err = res.Err
		default:
			out.Status = StatusFailed
			out.Err = res.Err
			r.log.Error("analysis failed", "file", out.Path, "err", res.Err)
			if r.Config.FailFast && firstErr == nil {
				firstErr = fmt.Errorf("%s: %w", out.Path, res.Err)
				cancel()
			}
		}
	}

	if firstErr != nil {
		return outcomes, firstErr
	}
	if err := ctx.Err(); err != nil {
		return outcomes, fmt.Errorf("cancelled: %w", err)
	}
	return outcomes, nil
}

// dispatch launches one file in a goroutine: acquire semaphore, analyze,
// send result on the done channel. A cancelled context short-circuits
// the wait for a slot.
func (r *Runner) dispatch(ctx context.Context, index int, path string, sem chan struct{}, done chan<- jobResult) {
	go func() {
		select {
		case sem <- struct{}{}:
			defer func() { <-sem }()
		case <-ctx.Done():
			now := time.Now()
			done <- jobResult{Index: index, Err: ctx.Err(), StartedAt: now, FinishedAt: now}
			return
		}

		started := time.Now()
		if err := ctx.Err(); err != nil {
			done <- jobResult{Index: index, Err: err, StartedAt: started, FinishedAt: started}
			return
		}

		rep, err := r.analyze(path)
		done <- jobResult{Index: index, Report: rep, Err: err, StartedAt: started, FinishedAt: time.Now()}
	}()
}

func (r *Runner) analyze(path string) (*reporter.Report, error) {
	c, err := netlist.ParseFile(path, r.parseOptions()...)
	if err != nil {
		return nil, err
	}

	if r.Config.Cone != "" {
		if c, err = c.FanInCone(r.Config.Cone); err != nil {
			return nil, err
		}
	}

	result, err := cpm.Analyze(c)
	if err != nil {
		return nil, err
	}

	return reporter.Build(path, c, result, r.Config.DisplayScale), nil
}

func (r *Runner) parseOptions() []netlist.Option {
	opts := []netlist.Option{netlist.WithLogger(r.log)}
	if r.Config.Delays != nil {
		opts = append(opts, netlist.WithDelays(*r.Config.Delays))
	}
	if r.Config.ImplicitInputs {
		opts = append(opts, netlist.WithImplicitInputs())
	}
	return opts
}

// Failed returns the outcomes that did not complete successfully.
func Failed(outcomes []Outcome) []Outcome {
	return lo.Filter(outcomes, func(o Outcome, _ int) bool {
		return o.Status != StatusCompleted
	})
}
