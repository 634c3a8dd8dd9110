package app

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/footprint-tools/storyteller/internal/browser"
	"github.com/footprint-tools/storyteller/internal/config"
	"github.com/footprint-tools/storyteller/internal/domain"
	"github.com/footprint-tools/storyteller/internal/git"
	"github.com/footprint-tools/storyteller/internal/history"
	"github.com/footprint-tools/storyteller/internal/impact"
	"github.com/footprint-tools/storyteller/internal/learning"
	"github.com/footprint-tools/storyteller/internal/log"
	"github.com/footprint-tools/storyteller/internal/paths"
	"github.com/footprint-tools/storyteller/internal/pipeline"
	"github.com/footprint-tools/storyteller/internal/render"
	"github.com/footprint-tools/storyteller/internal/store"
	"github.com/footprint-tools/storyteller/internal/ui"
	"github.com/footprint-tools/storyteller/internal/ui/style"
)

// Version is set at build time with -ldflags "-X .../internal/app.Version=...".
var Version = "dev"

// Options configures the application factory.
type Options struct {
	// ConfigPath defaults to paths.ConfigFilePath().
	ConfigPath string
	// DBPath defaults to paths.DBPath().
	DBPath string

	// Pager options
	PagerDisabled bool
	PagerOverride string

	// Style options
	StyleEnabled bool

	// Stdout defaults to os.Stdout.
	Stdout io.Writer
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
}

// DefaultOptions returns the default application options.
func DefaultOptions() Options {
	return Options{
		ConfigPath:   paths.ConfigFilePath(),
		DBPath:       paths.DBPath(),
		StyleEnabled: true,
		Stdout:       os.Stdout,
		Getenv:       os.Getenv,
	}
}

// App holds the configuration and the lazily opened stores of one process.
type App struct {
	Config     *config.Config
	ConfigPath string
	// ConfigErr is set when config.yaml existed but could not be used.
	ConfigErr error
	DBPath    string

	Logger domain.Logger
	Output domain.OutputWriter
	Styler domain.Styler
	Reader *git.Reader
	Getenv func(string) string

	mu       sync.Mutex
	history  *history.Store
	learning *learning.Ledger
	ledger   *store.Store
	browser  *browser.Browser
}

// New loads the configuration and wires the logger and terminal output.
// Stores are opened on first use.
func New(opts Options) (*App, error) {
	if opts.ConfigPath == "" {
		opts.ConfigPath = paths.ConfigFilePath()
	}
	if opts.DBPath == "" {
		opts.DBPath = paths.DBPath()
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Getenv == nil {
		opts.Getenv = os.Getenv
	}

	cfg, cfgErr := config.Load(opts.ConfigPath)

	var logger domain.Logger = log.NopLogger{}
	if cfg.Log.Enabled {
		l, err := log.New(paths.LogFilePath(), log.ParseLevel(cfg.Log.Level))
		if err == nil {
			logger = l
		}
	}
	if cfgErr != nil {
		logger.Warn("config: %v (using defaults)", cfgErr)
	}

	var writerOpts []ui.WriterOption
	if opts.PagerDisabled {
		writerOpts = append(writerOpts, ui.WithPagerDisabled())
	}
	if opts.PagerOverride != "" {
		writerOpts = append(writerOpts, ui.WithPagerOverride(opts.PagerOverride))
	}
	writerOpts = append(writerOpts, ui.WithEnvGetter(opts.Getenv))

	var styler domain.Styler = style.NopStyler{}
	if opts.StyleEnabled {
		name := style.ResolveThemeName(cfg.UI.Theme, style.IsDarkBackground())
		colors, ok := style.Lookup(name)
		if !ok {
			logger.Warn("ui: unknown theme %q, using default", name)
		}
		styler = style.New(opts.Stdout, true, colors)
	}

	return &App{
		Config:     cfg,
		ConfigPath: opts.ConfigPath,
		ConfigErr:  cfgErr,
		DBPath:     opts.DBPath,
		Logger:     logger,
		Output:     ui.NewWriterTo(opts.Stdout, writerOpts...),
		Styler:     styler,
		Reader:     git.NewReader(logger),
		Getenv:     opts.Getenv,
	}, nil
}

// NewForTesting creates an App around cfg with no logging, no styling and
// output to out. The run ledger lives in memory.
func NewForTesting(cfg *config.Config, out io.Writer) *App {
	if cfg == nil {
		cfg = config.Default()
	}
	return &App{
		Config: cfg,
		DBPath: ":memory:",
		Logger: log.NopLogger{},
		Output: ui.NewWriterTo(out, ui.WithPagerDisabled()),
		Styler: style.NopStyler{},
		Reader: git.NewReader(log.NopLogger{}),
		Getenv: func(string) string { return "" },
	}
}

// History opens the watch-list history. A corrupt document is logged and
// treated as empty.
func (a *App) History() (*history.Store, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.history != nil {
		return a.history, nil
	}

	h, err := history.Load(a.Config.HistoryFile())
	if err != nil {
		if !errors.Is(err, history.ErrCorrupt) {
			return nil, err
		}
		a.Logger.Warn("%v", err)
	}
	a.history = h
	return h, nil
}

// Learning opens the engagement ledger. A corrupt document is logged and
// treated as empty.
func (a *App) Learning() (*learning.Ledger, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.learning != nil {
		return a.learning, nil
	}

	l, err := learning.Open(a.Config.LearningFile())
	if err != nil {
		if !errors.Is(err, learning.ErrCorrupt) {
			return nil, err
		}
		a.Logger.Warn("%v", err)
	}
	a.learning = l
	return l, nil
}

// Ledger opens the sqlite run ledger.
func (a *App) Ledger() (*store.Store, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ledger != nil {
		return a.ledger, nil
	}

	path := a.DBPath
	if path == "" {
		path = paths.DBPath()
	}
	s, err := store.New(path)
	if err != nil {
		return nil, fmt.Errorf("open run ledger: %w", err)
	}
	a.ledger = s
	return s, nil
}

// Browser returns the shared, lazily started Chrome instance.
func (a *App) Browser() *browser.Browser {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.browser != nil {
		return a.browser
	}

	cfg := a.Config
	a.browser = browser.New(browser.Options{
		Headless:    cfg.Browser.Headless,
		UserDataDir: cfg.Browser.UserDataDir,
		Entropy: browser.Entropy{
			Randomize: cfg.Entropy.RandomizeTiming,
			Min:       seconds(cfg.Entropy.MinWaitSeconds),
			Max:       seconds(cfg.Entropy.MaxWaitSeconds),
		},
		Logger: a.Logger,
	})
	return a.browser
}

func seconds(f float64) time.Duration {
	return time.Duration(f * float64(time.Second))
}

// Driver chooses the posting platform: X/Twitter when enabled, else LinkedIn
// when enabled. With neither enabled the Twitter driver is returned and
// every post fails with browser.ErrPlatformDisabled.
func (a *App) Driver() domain.PostingDriver {
	b := a.Browser()
	switch {
	case a.Config.Social.Twitter.Enabled:
		return browser.NewTwitter(b, true)
	case a.Config.Social.LinkedIn.Enabled:
		return browser.NewLinkedIn(b, true)
	default:
		return browser.NewTwitter(b, false)
	}
}

// RenderSettings maps the configuration onto template settings.
func (a *App) RenderSettings() render.Settings {
	cfg := a.Config
	return render.Settings{
		Theme:             cfg.Theme,
		PrimaryColor:      cfg.PrimaryColor,
		BrandColors:       cfg.BrandColors,
		FontFamily:        cfg.FontFamily,
		BackgroundOpacity: cfg.Templates.CarbonX.BackgroundOpacity,
		BorderRadius:      cfg.Templates.CarbonX.BorderRadius,
		GridColumns:       cfg.Templates.BentoMetrics.GridColumns,
	}
}

// RunOptions select how runs built by Runner finish.
type RunOptions struct {
	Mode     domain.Mode
	Template string
	Ref      string
	// NoDelay drops the pause between repositories.
	NoDelay bool
	// OnState observes every dispatcher state transition.
	OnState func(repo string, s pipeline.State)
}

// Runner wires the full pipeline: git reader, summarizer, history, render
// engine, posting driver, learning ledger and run ledger.
func (a *App) Runner(opts RunOptions) (*pipeline.Runner, error) {
	cfg := a.Config

	hist, err := a.History()
	if err != nil {
		return nil, err
	}
	learn, err := a.Learning()
	if err != nil {
		return nil, err
	}

	var ledger domain.RunLedger
	if s, err := a.Ledger(); err != nil {
		a.Logger.Warn("%v (runs will not be recorded)", err)
	} else {
		ledger = s
	}

	engine, err := render.NewEngine(browser.NewScreenshotter(a.Browser()), a.RenderSettings(), cfg.Viewport())
	if err != nil {
		return nil, err
	}

	if opts.Mode == "" {
		opts.Mode = cfg.DefaultMode()
	}
	if opts.Template == "" {
		opts.Template = cfg.Templates.Default
	}

	d := &pipeline.Dispatcher{
		Analyzer: impact.NewSummarizer(a.Reader, cfg.Git.Window, a.Logger),
		History:  hist,
		Renderer: engine,
		Driver:   a.Driver(),
		Learning: learn,
		Logger:   a.Logger,
		OnState:  opts.OnState,
		Options: pipeline.Options{
			Mode:           opts.Mode,
			Template:       opts.Template,
			RequireImage:   cfg.Render.RequireImage,
			ConfirmTimeout: cfg.ConfirmTimeout(),
			OutputDir:      cfg.OutputDir(),
			Ref:            opts.Ref,
			CloneDepth:     cfg.Git.CloneDepth,
		},
	}

	delay := cfg.BetweenRepos()
	if opts.NoDelay {
		delay = 0
	}

	return &pipeline.Runner{
		Dispatcher: d,
		Ledger:     ledger,
		Logger:     a.Logger,
		Delay:      delay,
	}, nil
}

// Close cleans up application resources.
func (a *App) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var errs []error
	if a.browser != nil {
		errs = append(errs, a.browser.Close())
		a.browser = nil
	}
	if a.ledger != nil {
		errs = append(errs, a.ledger.Close())
		a.ledger = nil
	}
	if a.Logger != nil {
		errs = append(errs, a.Logger.Close())
	}
	return errors.Join(errs...)
}
