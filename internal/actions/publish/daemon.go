package publish

import (
	"context"
	"errors"
	"time"

	"github.com/footprint-tools/storyteller/internal/app"
	"github.com/footprint-tools/storyteller/internal/dispatchers"
	"github.com/footprint-tools/storyteller/internal/domain"
	"github.com/footprint-tools/storyteller/internal/history"
	"github.com/footprint-tools/storyteller/internal/schedule"
	"github.com/footprint-tools/storyteller/internal/usage"
)

func Daemon(a *app.App) dispatchers.CommandFunc {
	return func(args []string, flags *dispatchers.ParsedFlags) error {
		return daemon(args, flags, DefaultDeps(a))
	}
}

// daemon runs the watch list in auto mode on a cron schedule until interrupted.
func daemon(_ []string, flags *dispatchers.ParsedFlags, deps Deps) error {
	spec := flags.String("--schedule", deps.Config.Daemon.Schedule)
	if err := schedule.Validate(spec); err != nil {
		return usage.InvalidValue("--schedule", spec, "not a cron expression")
	}

	path := flags.String("--watch-list", deps.Config.WatchList())
	if _, err := loadWatchList(deps, path); err != nil {
		return err
	}

	runner, err := deps.NewRunner(app.RunOptions{Mode: domain.ModeAuto})
	if err != nil {
		return err
	}

	ctx, cancel := deps.Context()
	defer cancel()

	_, _ = deps.Printf("%s schedule %s, watch list %s (Ctrl+C to stop)\n",
		deps.Styler.Header("story daemon"), deps.Styler.Info(spec), path)
	deps.Logger.Info("daemon: started with schedule %q", spec)

	err = deps.Schedule(ctx, schedule.Options{
		Spec:       spec,
		RunAtStart: flags.Has("--now"),
		Logger:     deps.Logger,
	}, func(ctx context.Context) {
		tick(ctx, deps, runner, path)
	})

	deps.Logger.Info("daemon: stopped")
	return err
}

func tick(ctx context.Context, deps Deps, runner Runner, path string) {
	repos, err := deps.LoadWatchList(path)
	if err != nil {
		deps.Logger.Warn("daemon: watch list %s: %v", path, err)
		if repos == nil {
			return
		}
	}
	refreshHistory(deps)

	sum := runner.RunAll(ctx, repos)
	for _, o := range sum.Outcomes {
		if o.Failed() {
			deps.Logger.Error("daemon: %s: %s: %v", o.Repo, o.State, o.Err)
		}
	}
	_, _ = deps.Printf("%s %s\n",
		deps.Styler.Muted(time.Now().Format("2006-01-02 15:04:05")),
		formatSummary(deps.Styler, sum))
}

func refreshHistory(deps Deps) {
	if deps.ReloadHistory == nil {
		return
	}
	if err := deps.ReloadHistory(); err != nil && !errors.Is(err, history.ErrCorrupt) {
		deps.Logger.Warn("history reload: %v", err)
	}
}
