package publish

import (
	"context"
	"fmt"
	"strings"

	"github.com/footprint-tools/storyteller/internal/app"
	"github.com/footprint-tools/storyteller/internal/dispatchers"
	"github.com/footprint-tools/storyteller/internal/domain"
	"github.com/footprint-tools/storyteller/internal/webhook"
)

// SecretEnv holds the webhook secret when --secret is not given.
const SecretEnv = "STORY_WEBHOOK_SECRET"

func Webhook(a *app.App) dispatchers.CommandFunc {
	return func(args []string, flags *dispatchers.ParsedFlags) error {
		return serveWebhook(args, flags, DefaultDeps(a))
	}
}

func serveWebhook(_ []string, flags *dispatchers.ParsedFlags, deps Deps) error {
	port, err := flags.IntBetween("--port", deps.Config.Webhook.Port, 1, 65535)
	if err != nil {
		return err
	}

	mode := domain.ModeAuto
	if flags.Has("--test") {
		mode = domain.ModeTest
	}

	secret := flags.String("--secret", "")
	if secret == "" && deps.Getenv != nil {
		secret = deps.Getenv(SecretEnv)
	}

	path := flags.String("--watch-list", deps.Config.WatchList())

	ctx, cancel := deps.Context()
	defer cancel()

	addr := fmt.Sprintf(":%d", port)
	_, _ = deps.Printf("%s listening on %s (POST /webhook/github)\n", deps.Styler.Header("story webhook"), deps.Styler.Info(addr))
	if secret == "" {
		_, _ = deps.Printf("%s no secret configured, signatures are not verified\n", deps.Styler.Warning("warning:"))
	}

	return deps.Serve(ctx, webhook.Options{
		Secret:    secret,
		Logger:    deps.Logger,
		AccessLog: deps.AccessLog,
		Handle: func(ctx context.Context, job webhook.Job) {
			handleJob(ctx, deps, mode, path, job)
		},
	}, addr)
}

// handleJob runs one queued event. Repositories listed in the watch list
// use their watch-list entry, so disabled entries are skipped and history
// keys stay stable.
func handleJob(ctx context.Context, deps Deps, mode domain.Mode, path string, job webhook.Job) {
	target := job.Repo
	if repos, _ := deps.LoadWatchList(path); repos != nil {
		if known, ok := matchRepo(repos, job.Repo); ok {
			target = known
		}
	}
	if !target.Enabled {
		deps.Logger.Info("webhook: %s is disabled in the watch list, skipping %s", target.Name, job.Event)
		return
	}

	refreshHistory(deps)

	runner, err := deps.NewRunner(app.RunOptions{Mode: mode, Ref: job.Ref, NoDelay: true})
	if err != nil {
		deps.Logger.Error("webhook: %s: %v", target.Name, err)
		return
	}

	out := runner.RunOne(ctx, target)
	deps.Logger.Info("webhook: %s %s -> %s", job.Event, target.Name, out.State)
	_, _ = deps.Printf("%s", formatOutcome(deps.Styler, out))
}

func matchRepo(repos []domain.WatchedRepo, r domain.WatchedRepo) (domain.WatchedRepo, bool) {
	for _, known := range repos {
		if known.Name == r.Name || sameURL(known.URL, r.URL) {
			return known, true
		}
	}
	return domain.WatchedRepo{}, false
}

func sameURL(a, b string) bool {
	norm := func(s string) string {
		return strings.TrimSuffix(strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "/"), ".git")
	}
	return a != "" && norm(a) == norm(b)
}
