package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/footprint-tools/storyteller/internal/domain"
)

// Key describes one recognized configuration option.
type Key struct {
	Name        string
	Description string
	Section     string // grouping in `story config list`
	value       func(c *Config) string
}

// Keys is the registry of recognized options.
// Order determines display order in `story config list`.
var Keys = []Key{
	// General
	{"mode", "Default posting mode: test, auto, confirm", "General", func(c *Config) string { return c.Mode }},
	{"theme", "Render theme: dark, light", "General", func(c *Config) string { return c.Theme }},
	{"primary_color", "Primary brand color", "General", func(c *Config) string { return c.PrimaryColor }},
	{"brand_colors", "Brand color palette", "General", func(c *Config) string { return strings.Join(c.BrandColors, ",") }},
	{"font_family", "Font used by templates", "General", func(c *Config) string { return c.FontFamily }},

	// Templates
	{"templates.default", "Template rendered when none is requested", "Templates", func(c *Config) string { return c.Templates.Default }},
	{"templates.carbon_x.background_opacity", "carbon_x window opacity (0-1)", "Templates", func(c *Config) string { return formatFloat(c.Templates.CarbonX.BackgroundOpacity) }},
	{"templates.carbon_x.border_radius", "carbon_x corner radius in px", "Templates", func(c *Config) string { return strconv.Itoa(c.Templates.CarbonX.BorderRadius) }},
	{"templates.bento_metrics.grid_columns", "bento_metrics grid columns", "Templates", func(c *Config) string { return strconv.Itoa(c.Templates.BentoMetrics.GridColumns) }},

	// Render
	{"render.require_image", "Fail the run when no image could be rendered", "Render", func(c *Config) string { return strconv.FormatBool(c.Render.RequireImage) }},
	{"render.viewport_width", "Screenshot width in px", "Render", func(c *Config) string { return strconv.Itoa(c.Render.ViewportWidth) }},
	{"render.viewport_height", "Screenshot height in px", "Render", func(c *Config) string { return strconv.Itoa(c.Render.ViewportHeight) }},

	// Browser
	{"browser.headless", "Run the browser without a window", "Browser", func(c *Config) string { return strconv.FormatBool(c.Browser.Headless) }},
	{"browser.user_data_dir", "Browser profile directory (keeps the login session)", "Browser", func(c *Config) string { return c.Browser.UserDataDir }},
	{"browser.screenshot_scale", "Device scale factor for screenshots", "Browser", func(c *Config) string { return formatFloat(c.Browser.ScreenshotScale) }},
	{"browser.confirm_timeout_sec", "Seconds to wait for a manual submit in confirm mode", "Browser", func(c *Config) string { return strconv.Itoa(c.Browser.ConfirmTimeoutSec) }},

	// Social
	{"social.twitter.enabled", "Allow posting to X/Twitter", "Social", func(c *Config) string { return strconv.FormatBool(c.Social.Twitter.Enabled) }},
	{"social.linkedin.enabled", "Allow posting to LinkedIn", "Social", func(c *Config) string { return strconv.FormatBool(c.Social.LinkedIn.Enabled) }},

	// Entropy
	{"entropy.randomize_timing", "Jitter the pauses between browser actions", "Entropy", func(c *Config) string { return strconv.FormatBool(c.Entropy.RandomizeTiming) }},
	{"entropy.min_wait_seconds", "Lower bound of the pause between browser actions", "Entropy", func(c *Config) string { return formatFloat(c.Entropy.MinWaitSeconds) }},
	{"entropy.max_wait_seconds", "Upper bound of the pause between browser actions", "Entropy", func(c *Config) string { return formatFloat(c.Entropy.MaxWaitSeconds) }},

	// Timing
	{"timing.between_repos_sec", "Pause between repositories in auto mode", "Timing", func(c *Config) string { return strconv.Itoa(c.Timing.BetweenReposSec) }},

	// Git
	{"git.clone_depth", "Depth of the shallow clone for remote targets", "Git", func(c *Config) string { return strconv.Itoa(c.Git.CloneDepth) }},
	{"git.window", "Number of recent commits analyzed", "Git", func(c *Config) string { return strconv.Itoa(c.Git.Window) }},

	// Paths
	{"paths.history_file", "Watch-list history document", "Paths", func(c *Config) string { return c.HistoryFile() }},
	{"paths.learning_file", "Engagement learning document", "Paths", func(c *Config) string { return c.LearningFile() }},
	{"paths.output_dir", "Directory for rendered images and captions", "Paths", func(c *Config) string { return c.OutputDir() }},
	{"paths.watch_list", "Watch list YAML file", "Paths", func(c *Config) string { return c.WatchList() }},

	// Logging
	{"log.enabled", "Write the log file", "Logging", func(c *Config) string { return strconv.FormatBool(c.Log.Enabled) }},
	{"log.level", "Minimum log level: debug, info, warn, error", "Logging", func(c *Config) string { return c.Log.Level }},

	// Services
	{"webhook.port", "Port for `story webhook`", "Services", func(c *Config) string { return strconv.Itoa(c.Webhook.Port) }},
	{"daemon.schedule", "Cron expression for `story daemon`", "Services", func(c *Config) string { return c.Daemon.Schedule }},

	// Display
	{"ui.theme", "Terminal color theme", "Display", func(c *Config) string { return c.UI.Theme }},
	{"ui.date_format", "Date format: dd/mm/yyyy, mm/dd/yyyy, yyyy-mm-dd or a Go layout", "Display", func(c *Config) string { return c.UI.DateFormat }},
	{"ui.time_format", "Time format: 12h or 24h", "Display", func(c *Config) string { return c.UI.TimeFormat }},
}

var keyIndex map[string]int

func init() {
	keyIndex = make(map[string]int, len(Keys))
	for i, k := range Keys {
		keyIndex[k.Name] = i
	}
}

// LookupKey returns the registry entry for name.
func LookupKey(name string) (Key, bool) {
	i, ok := keyIndex[name]
	if !ok {
		return Key{}, false
	}
	return Keys[i], true
}

// Sections returns the ordered list of section names.
func Sections() []string {
	var out []string
	seen := make(map[string]bool)
	for _, k := range Keys {
		if !seen[k.Section] {
			seen[k.Section] = true
			out = append(out, k.Section)
		}
	}
	return out
}

// Get returns the string form of a dotted key.
func (c *Config) Get(key string) (string, bool) {
	k, ok := LookupKey(key)
	if !ok {
		return "", false
	}
	return k.value(c), true
}

// Value is Get with an error for unknown keys.
func (c *Config) Value(key string) (string, error) {
	v, ok := c.Get(key)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return v, nil
}

// GetAll returns every key with its current value.
func (c *Config) GetAll() map[string]string {
	out := make(map[string]string, len(Keys))
	for _, k := range Keys {
		out[k.Name] = k.value(c)
	}
	return out
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

var _ domain.ConfigProvider = (*Config)(nil)
