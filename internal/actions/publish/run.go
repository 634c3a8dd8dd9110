package publish

import (
	"slices"
	"strings"

	"github.com/footprint-tools/storyteller/internal/app"
	"github.com/footprint-tools/storyteller/internal/dispatchers"
	"github.com/footprint-tools/storyteller/internal/domain"
	"github.com/footprint-tools/storyteller/internal/repo"
	"github.com/footprint-tools/storyteller/internal/usage"
)

func Run(a *app.App) dispatchers.CommandFunc {
	return func(args []string, flags *dispatchers.ParsedFlags) error {
		return run(args, flags, DefaultDeps(a))
	}
}

func run(args []string, flags *dispatchers.ParsedFlags, deps Deps) error {
	if len(args) < 1 {
		return usage.MissingArgument("target")
	}
	target := args[0]

	opts, err := runOptions(flags, deps)
	if err != nil {
		return err
	}
	opts.Ref = flags.String("--ref", "")

	name := strings.TrimSpace(flags.String("--name", repo.DisplayName(target)))
	if name == "" {
		return usage.InvalidValue("--name", "", "must not be empty")
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

	out := runner.RunOne(ctx, domain.WatchedRepo{Name: name, URL: target, Enabled: true})
	if watcher != nil {
		watcher.Close()
	}

	_, _ = deps.Printf("%s", formatOutcome(deps.Styler, out))
	if out.Failed() {
		return usage.RunFailed(1, 1)
	}
	return nil
}

// runOptions reads the flags shared by run and watch.
func runOptions(flags *dispatchers.ParsedFlags, deps Deps) (app.RunOptions, error) {
	mode, err := modeFromFlags(flags, deps.Config.DefaultMode())
	if err != nil {
		return app.RunOptions{}, err
	}

	tmpl := flags.String("--template", "")
	if tmpl != "" && len(deps.Templates) > 0 && !slices.Contains(deps.Templates, tmpl) {
		return app.RunOptions{}, usage.InvalidValue("--template", tmpl, "one of "+strings.Join(deps.Templates, ", "))
	}

	return app.RunOptions{Mode: mode, Template: tmpl}, nil
}
