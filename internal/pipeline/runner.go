package pipeline

import (
	"context"
	"time"

	"github.com/footprint-tools/storyteller/internal/domain"
	"github.com/footprint-tools/storyteller/internal/log"
)

// Summary aggregates the outcomes of a batch run.
type Summary struct {
	Outcomes []Outcome
	Disabled int
	// Interrupted is set when ctx was cancelled before every repo ran.
	Interrupted bool
}

// OK reports whether no outcome ended in a failure state.
func (s Summary) OK() bool {
	for _, o := range s.Outcomes {
		if o.Failed() {
			return false
		}
	}
	return true
}

// Count returns the number of outcomes in state st.
func (s Summary) Count(st State) int {
	n := 0
	for _, o := range s.Outcomes {
		if o.State == st {
			n++
		}
	}
	return n
}

// Failures returns the number of failed outcomes.
func (s Summary) Failures() int {
	n := 0
	for _, o := range s.Outcomes {
		if o.Failed() {
			n++
		}
	}
	return n
}

// Runner processes repositories sequentially and records every run.
type Runner struct {
	Dispatcher *Dispatcher
	Ledger     domain.RunLedger
	Logger     domain.Logger
	// Delay separates repositories in auto mode.
	Delay time.Duration

	sleep func(ctx context.Context, d time.Duration) error
}

func (r *Runner) logger() domain.Logger {
	if r.Logger == nil {
		return log.NopLogger{}
	}
	return r.Logger
}

// RunOne runs a single repository and records it in the ledger.
func (r *Runner) RunOne(ctx context.Context, repo domain.WatchedRepo) Outcome {
	out := r.Dispatcher.Run(ctx, repo)
	r.record(out)
	return out
}

// RunAll runs every enabled repository in order. Disabled entries are counted
// but never dispatched.
func (r *Runner) RunAll(ctx context.Context, repos []domain.WatchedRepo) Summary {
	var summary Summary

	enabled := make([]domain.WatchedRepo, 0, len(repos))
	for _, repo := range repos {
		if !repo.Enabled {
			summary.Disabled++
			continue
		}
		enabled = append(enabled, repo)
	}

	for i, repo := range enabled {
		if ctx.Err() != nil {
			summary.Interrupted = true
			break
		}

		summary.Outcomes = append(summary.Outcomes, r.RunOne(ctx, repo))

		if i < len(enabled)-1 && r.Dispatcher.Options.Mode == domain.ModeAuto && r.Delay > 0 {
			r.logger().Debug("pipeline: waiting %s before next repository", r.Delay)
			if err := r.wait(ctx, r.Delay); err != nil {
				summary.Interrupted = true
				break
			}
		}
	}

	return summary
}

func (r *Runner) wait(ctx context.Context, d time.Duration) error {
	if r.sleep != nil {
		return r.sleep(ctx, d)
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (r *Runner) record(out Outcome) {
	if r.Ledger == nil {
		return
	}
	rec := domain.RunRecord{
		RepoName:   out.Repo,
		Target:     out.Target,
		Mode:       out.Mode,
		State:      string(out.State),
		CommitHash: out.CommitHash,
		StartedAt:  out.StartedAt,
		FinishedAt: out.FinishedAt,
	}
	if out.Err != nil {
		rec.Error = out.Err.Error()
	}
	if _, err := r.Ledger.InsertRun(rec); err != nil {
		r.logger().Warn("pipeline: record run for %s: %v", out.Repo, err)
	}
}
