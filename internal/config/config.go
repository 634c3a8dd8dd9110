// Package config loads config.yaml onto a struct of defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/footprint-tools/storyteller/internal/domain"
	"github.com/footprint-tools/storyteller/internal/fsutil"
	"github.com/footprint-tools/storyteller/internal/paths"
)

// ErrUnknownKey is returned for a dotted key missing from the Keys registry.
var ErrUnknownKey = errors.New("config: unknown key")

type Config struct {
	Mode         string    `yaml:"mode"`
	Theme        string    `yaml:"theme"`
	PrimaryColor string    `yaml:"primary_color"`
	BrandColors  []string  `yaml:"brand_colors"`
	FontFamily   string    `yaml:"font_family"`
	Templates    Templates `yaml:"templates"`
	Render       Render    `yaml:"render"`
	Browser      Browser   `yaml:"browser"`
	Social       Social    `yaml:"social"`
	Entropy      Entropy   `yaml:"entropy"`
	Timing       Timing    `yaml:"timing"`
	Git          Git       `yaml:"git"`
	Paths        Paths     `yaml:"paths"`
	Log          Log       `yaml:"log"`
	Webhook      Webhook   `yaml:"webhook"`
	Daemon       Daemon    `yaml:"daemon"`
	UI           UI        `yaml:"ui"`
}

type Templates struct {
	Default      string       `yaml:"default"`
	CarbonX      CarbonX      `yaml:"carbon_x"`
	BentoMetrics BentoMetrics `yaml:"bento_metrics"`
}

type CarbonX struct {
	BackgroundOpacity float64 `yaml:"background_opacity"`
	BorderRadius      int     `yaml:"border_radius"`
}

type BentoMetrics struct {
	GridColumns int `yaml:"grid_columns"`
}

type Render struct {
	// RequireImage turns a render failure into a failed run instead of a text-only post.
	RequireImage   bool `yaml:"require_image"`
	ViewportWidth  int  `yaml:"viewport_width"`
	ViewportHeight int  `yaml:"viewport_height"`
}

type Browser struct {
	Headless          bool    `yaml:"headless"`
	UserDataDir       string  `yaml:"user_data_dir"`
	ScreenshotScale   float64 `yaml:"screenshot_scale"`
	ConfirmTimeoutSec int     `yaml:"confirm_timeout_sec"`
}

type Social struct {
	Twitter  Platform `yaml:"twitter"`
	LinkedIn Platform `yaml:"linkedin"`
}

type Platform struct {
	Enabled bool `yaml:"enabled"`
}

type Entropy struct {
	RandomizeTiming bool    `yaml:"randomize_timing"`
	MinWaitSeconds  float64 `yaml:"min_wait_seconds"`
	MaxWaitSeconds  float64 `yaml:"max_wait_seconds"`
}

type Timing struct {
	BetweenReposSec int `yaml:"between_repos_sec"`
}

// maxWindow caps git.window; the impact window never exceeds 10 commits.
const maxWindow = 10

type Git struct {
	CloneDepth int `yaml:"clone_depth"`
	Window     int `yaml:"window"`
}

type Paths struct {
	HistoryFile  string `yaml:"history_file"`
	LearningFile string `yaml:"learning_file"`
	OutputDir    string `yaml:"output_dir"`
	WatchList    string `yaml:"watch_list"`
}

type Log struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`
}

type Webhook struct {
	Port int `yaml:"port"`
}

type Daemon struct {
	Schedule string `yaml:"schedule"`
}

type UI struct {
	Theme string `yaml:"theme"`
	// DateFormat is a preset (dd/mm/yyyy, mm/dd/yyyy, yyyy-mm-dd) or a Go layout.
	DateFormat string `yaml:"date_format"`
	// TimeFormat is 12h or 24h.
	TimeFormat string `yaml:"time_format"`
}

// Default returns the configuration used when config.yaml is absent.
func Default() *Config {
	return &Config{
		Mode:         string(domain.ModeAuto),
		Theme:        "dark",
		PrimaryColor: "#6366f1",
		BrandColors:  []string{"#6366f1", "#8b5cf6", "#a855f7"},
		FontFamily:   "JetBrains Mono",
		Templates: Templates{
			Default:      "bento_metrics",
			CarbonX:      CarbonX{BackgroundOpacity: 0.95, BorderRadius: 12},
			BentoMetrics: BentoMetrics{GridColumns: 3},
		},
		Render: Render{ViewportWidth: 1200, ViewportHeight: 675},
		Browser: Browser{
			ScreenshotScale:   2.0,
			ConfirmTimeoutSec: 600,
		},
		Entropy: Entropy{
			RandomizeTiming: true,
			MinWaitSeconds:  8.4,
			MaxWaitSeconds:  22.1,
		},
		Timing:  Timing{BetweenReposSec: 30},
		Git:     Git{CloneDepth: 50, Window: 10},
		Log:     Log{Enabled: true, Level: "info"},
		Webhook: Webhook{Port: 8080},
		Daemon:  Daemon{Schedule: "@every 1h"},
		UI:      UI{Theme: "default", DateFormat: "Jan 02", TimeFormat: "24h"},
	}
}

// Load reads path onto Default(). A missing file is not an error.
// A file that cannot be parsed yields the defaults plus the parse error,
// so callers can warn and continue.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return Default(), fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.normalize()
	return cfg, nil
}

// normalize replaces unusable values with their defaults.
func (c *Config) normalize() {
	d := Default()

	if _, ok := domain.ParseMode(c.Mode); !ok {
		c.Mode = d.Mode
	}
	if c.Templates.Default == "" {
		c.Templates.Default = d.Templates.Default
	}
	if c.Templates.BentoMetrics.GridColumns <= 0 {
		c.Templates.BentoMetrics.GridColumns = d.Templates.BentoMetrics.GridColumns
	}
	if c.Render.ViewportWidth <= 0 {
		c.Render.ViewportWidth = d.Render.ViewportWidth
	}
	if c.Render.ViewportHeight <= 0 {
		c.Render.ViewportHeight = d.Render.ViewportHeight
	}
	if c.Browser.ScreenshotScale <= 0 {
		c.Browser.ScreenshotScale = d.Browser.ScreenshotScale
	}
	if c.Browser.ConfirmTimeoutSec <= 0 {
		c.Browser.ConfirmTimeoutSec = d.Browser.ConfirmTimeoutSec
	}
	if c.Entropy.MinWaitSeconds < 0 {
		c.Entropy.MinWaitSeconds = 0
	}
	if c.Entropy.MaxWaitSeconds < c.Entropy.MinWaitSeconds {
		c.Entropy.MinWaitSeconds, c.Entropy.MaxWaitSeconds = c.Entropy.MaxWaitSeconds, c.Entropy.MinWaitSeconds
	}
	if c.Timing.BetweenReposSec < 0 {
		c.Timing.BetweenReposSec = 0
	}
	if c.Git.CloneDepth <= 0 {
		c.Git.CloneDepth = d.Git.CloneDepth
	}
	if c.Git.Window <= 0 {
		c.Git.Window = d.Git.Window
	}
	if c.Git.Window > maxWindow {
		c.Git.Window = maxWindow
	}
	if c.Webhook.Port <= 0 || c.Webhook.Port > 65535 {
		c.Webhook.Port = d.Webhook.Port
	}
	if strings.TrimSpace(c.Daemon.Schedule) == "" {
		c.Daemon.Schedule = d.Daemon.Schedule
	}
}

// DefaultMode returns the configured posting mode.
func (c *Config) DefaultMode() domain.Mode {
	m, _ := domain.ParseMode(c.Mode)
	return m
}

// ConfirmTimeout bounds the human-in-the-loop wait.
func (c *Config) ConfirmTimeout() time.Duration {
	return time.Duration(c.Browser.ConfirmTimeoutSec) * time.Second
}

// BetweenRepos is the pause inserted between repositories in auto mode.
func (c *Config) BetweenRepos() time.Duration {
	return time.Duration(c.Timing.BetweenReposSec) * time.Second
}

// Viewport returns the screenshot size.
func (c *Config) Viewport() domain.Viewport {
	return domain.Viewport{
		Width:  c.Render.ViewportWidth,
		Height: c.Render.ViewportHeight,
		Scale:  c.Browser.ScreenshotScale,
	}
}

func (c *Config) HistoryFile() string {
	return resolvePath(c.Paths.HistoryFile, paths.HistoryFilePath)
}

func (c *Config) LearningFile() string {
	return resolvePath(c.Paths.LearningFile, paths.LearningFilePath)
}

func (c *Config) OutputDir() string {
	return resolvePath(c.Paths.OutputDir, paths.OutputDir)
}

func (c *Config) WatchList() string {
	return resolvePath(c.Paths.WatchList, paths.WatchListPath)
}

// resolvePath expands a leading ~ and falls back to def when p is empty.
func resolvePath(p string, def func() string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return def()
	}
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}

// WriteDefault writes the default configuration to path unless a file already exists.
// Returns false when the file was left untouched.
func WriteDefault(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return false, err
	}

	if err := fsutil.WriteFileAtomic(path, data, 0600); err != nil {
		return false, fmt.Errorf("write config %s: %w", path, err)
	}
	return true, nil
}
