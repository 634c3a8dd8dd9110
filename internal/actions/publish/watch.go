package publish

import (
	"github.com/footprint-tools/storyteller/internal/app"
	"github.com/footprint-tools/storyteller/internal/dispatchers"
	"github.com/footprint-tools/storyteller/internal/domain"
	"github.com/footprint-tools/storyteller/internal/usage"
)

func Watch(a *app.App) dispatchers.CommandFunc {
	return func(args []string, flags *dispatchers.ParsedFlags) error {
		return watch(args, flags, DefaultDeps(a))
	}
}

func watch(_ []string, flags *dispatchers.ParsedFlags, deps Deps) error {
	opts, err := runOptions(flags, deps)
	if err != nil {
		return err
	}
	opts.NoDelay = flags.Has("--no-delay")

	path := flags.String("--watch-list", deps.Config.WatchList())
	repos, err := loadWatchList(deps, path)
	if err != nil {
		return err
	}
	if countEnabled(repos) == 0 {
		_, _ = deps.Printf("No enabled repositories in %s\n", path)
		return nil
	}

	ctx, cancel := deps.Context()
	defer cancel()

	var watcher *confirmWatcher
	if opts.Mode == domain.ModeConfirm && deps.Interactive {
		watcher = newConfirmWatcher(ctx, cancel, deps)
		opts.OnState = watcher.OnState
		defer watcher.Close()
	}

	runner, err := deps.NewRunner(opts)
	if err != nil {
		return err
	}

	sum := runner.RunAll(ctx, repos)
	if watcher != nil {
		watcher.Close()
	}

	for _, o := range sum.Outcomes {
		_, _ = deps.Printf("%s", formatOutcome(deps.Styler, o))
	}
	_, _ = deps.Println(formatSummary(deps.Styler, sum))

	return summaryError(sum)
}

// loadWatchList fails only when nothing could be read. Malformed entries
// are reported and skipped.
func loadWatchList(deps Deps, path string) ([]domain.WatchedRepo, error) {
	repos, err := deps.LoadWatchList(path)
	if err != nil {
		if repos == nil {
			return nil, usage.WatchListUnavailable(path, err)
		}
		deps.Logger.Warn("watch list %s: %v", path, err)
		_, _ = deps.Printf("%s %v\n", deps.Styler.Warning("warning:"), err)
	}
	return repos, nil
}

func countEnabled(repos []domain.WatchedRepo) int {
	n := 0
	for _, r := range repos {
		if r.Enabled {
			n++
		}
	}
	return n
}
