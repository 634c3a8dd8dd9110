package publish

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/footprint-tools/storyteller/internal/app"
	"github.com/footprint-tools/storyteller/internal/config"
	"github.com/footprint-tools/storyteller/internal/domain"
	"github.com/footprint-tools/storyteller/internal/log"
	"github.com/footprint-tools/storyteller/internal/pipeline"
	"github.com/footprint-tools/storyteller/internal/render"
	"github.com/footprint-tools/storyteller/internal/schedule"
	"github.com/footprint-tools/storyteller/internal/ui/wait"
	"github.com/footprint-tools/storyteller/internal/webhook"
)

// Runner is the part of pipeline.Runner the actions use.
type Runner interface {
	RunOne(ctx context.Context, repo domain.WatchedRepo) pipeline.Outcome
	RunAll(ctx context.Context, repos []domain.WatchedRepo) pipeline.Summary
}

type Deps struct {
	Config *config.Config
	Logger domain.Logger
	Styler domain.Styler

	NewRunner     func(app.RunOptions) (Runner, error)
	LoadWatchList func(path string) ([]domain.WatchedRepo, error)
	// ReloadHistory refreshes the history snapshot between batches.
	ReloadHistory func() error
	Templates     []string

	// Context returns the context a command runs under and its cancel func.
	Context func() (context.Context, context.CancelFunc)

	// Interactive is true when a countdown can be drawn on the terminal.
	Interactive bool
	Countdown   func(ctx context.Context, opts wait.Options) (wait.Result, error)

	Schedule  func(ctx context.Context, opts schedule.Options, job schedule.Job) error
	Serve     func(ctx context.Context, opts webhook.Options, addr string) error
	AccessLog io.Writer

	Getenv  func(string) string
	Printf  func(string, ...any) (int, error)
	Println func(...any) (int, error)
}

func DefaultDeps(a *app.App) Deps {
	return Deps{
		Config: a.Config,
		Logger: a.Logger,
		Styler: a.Styler,
		NewRunner: func(opts app.RunOptions) (Runner, error) {
			r, err := a.Runner(opts)
			if err != nil {
				return nil, err
			}
			return r, nil
		},
		LoadWatchList: config.LoadWatchList,
		ReloadHistory: func() error {
			h, err := a.History()
			if err != nil {
				return err
			}
			return h.Reload()
		},
		Templates: templateNames(a),
		Context: func() (context.Context, context.CancelFunc) {
			return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		},
		Interactive: term.IsTerminal(int(os.Stdout.Fd())) && term.IsTerminal(int(os.Stdin.Fd())),
		Countdown:   wait.Countdown,
		Schedule:    schedule.Run,
		Serve: func(ctx context.Context, opts webhook.Options, addr string) error {
			return webhook.New(opts).Run(ctx, addr)
		},
		AccessLog: accessLog(a.Logger),
		Getenv:    a.Getenv,
		Printf:    a.Output.Printf,
		Println:   a.Output.Println,
	}
}

func templateNames(a *app.App) []string {
	e, err := render.NewEngine(nil, a.RenderSettings(), a.Config.Viewport())
	if err != nil {
		return nil
	}
	return e.Names()
}

// accessLog routes gin's request log into the log file when there is one.
func accessLog(l domain.Logger) io.Writer {
	if fl, ok := l.(*log.Logger); ok {
		return fl.Writer(log.LevelDebug)
	}
	return nil
}
