// Package schedule runs a job on a cron schedule, never overlapping runs.
package schedule

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/footprint-tools/storyteller/internal/domain"
	"github.com/footprint-tools/storyteller/internal/log"
)

// Job is invoked for every tick. ctx is cancelled when the scheduler stops.
type Job func(ctx context.Context)

// Validate reports whether spec is a standard cron expression or descriptor
// such as "@hourly" or "@every 30m".
func Validate(spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("schedule: invalid spec %q: %w", spec, err)
	}
	return nil
}

// Options configure Run.
type Options struct {
	Spec string
	// RunAtStart also runs the job once immediately.
	RunAtStart bool
	Logger     domain.Logger
}

// Run executes job on opts.Spec until ctx is done. A tick that fires while
// the previous run is still going is skipped. Run waits for a running job
// to return before it returns.
func Run(ctx context.Context, opts Options, job Job) error {
	if err := Validate(opts.Spec); err != nil {
		return err
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NopLogger{}
	}

	cl := cronLogger{logger}
	c := cron.New(cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)), cron.WithLogger(cl))

	id, err := c.AddFunc(opts.Spec, func() { job(ctx) })
	if err != nil {
		return fmt.Errorf("schedule: add job: %w", err)
	}

	c.Start()
	logger.Info("schedule: started %q", opts.Spec)

	var initial sync.WaitGroup
	if opts.RunAtStart {
		// Entry.WrappedJob carries the chain, so this run also counts for
		// SkipIfStillRunning.
		initial.Add(1)
		go func() {
			defer initial.Done()
			c.Entry(id).WrappedJob.Run()
		}()
	}

	<-ctx.Done()
	<-c.Stop().Done()
	initial.Wait()
	logger.Info("schedule: stopped")
	return nil
}

// cronLogger adapts domain.Logger to cron.Logger.
type cronLogger struct {
	l domain.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug("cron: %s%s", msg, kv(keysAndValues))
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error("cron: %s: %v%s", msg, err, kv(keysAndValues))
}

func kv(pairs []any) string {
	if len(pairs) == 0 {
		return ""
	}
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		fmt.Fprintf(&b, " %v=%v", pairs[i], pairs[i+1])
	}
	return b.String()
}
