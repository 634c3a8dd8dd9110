package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/footprint-tools/storyteller/internal/browser"
	"github.com/footprint-tools/storyteller/internal/config"
	"github.com/footprint-tools/storyteller/internal/domain"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.HistoryFile = filepath.Join(dir, "history.json")
	cfg.Paths.LearningFile = filepath.Join(dir, "learning.json")
	cfg.Paths.OutputDir = filepath.Join(dir, "output")
	return cfg
}

func isolateHome(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	return dir
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	require.True(t, opts.StyleEnabled)
	require.NotEmpty(t, opts.ConfigPath)
	require.NotNil(t, opts.Getenv)
}

func TestNew_MissingConfigUsesDefaults(t *testing.T) {
	dir := isolateHome(t)
	var out bytes.Buffer

	a, err := New(Options{
		ConfigPath: filepath.Join(dir, "absent.yaml"),
		DBPath:     ":memory:",
		Stdout:     &out,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	require.NoError(t, a.ConfigErr)
	require.Equal(t, config.Default().Mode, a.Config.Mode)
	require.False(t, a.Styler.Enabled())

	_, err = a.Output.Println("hello")
	require.NoError(t, err)
	require.Equal(t, "hello\n", out.String())
}

func TestNew_BrokenConfigKeepsDefaults(t *testing.T) {
	dir := isolateHome(t)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mode: [unclosed"), 0600))

	a, err := New(Options{ConfigPath: path, DBPath: ":memory:", Stdout: &bytes.Buffer{}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	require.Error(t, a.ConfigErr)
	require.Equal(t, config.Default().Git, a.Config.Git)
}

func TestNew_StyleEnabled(t *testing.T) {
	dir := isolateHome(t)

	a, err := New(Options{
		ConfigPath:   filepath.Join(dir, "absent.yaml"),
		DBPath:       ":memory:",
		StyleEnabled: true,
		Stdout:       &bytes.Buffer{},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	require.True(t, a.Styler.Enabled())
}

func TestNewForTesting(t *testing.T) {
	a := NewForTesting(nil, &bytes.Buffer{})

	require.NotNil(t, a.Config)
	require.NotNil(t, a.Logger)
	require.NotNil(t, a.Output)
	require.NotNil(t, a.Styler)
	require.NotNil(t, a.Reader)
	require.NoError(t, a.Close())
}

func TestStoresAreOpenedOnce(t *testing.T) {
	a := NewForTesting(testConfig(t), &bytes.Buffer{})
	t.Cleanup(func() { _ = a.Close() })

	h1, err := a.History()
	require.NoError(t, err)
	h2, err := a.History()
	require.NoError(t, err)
	require.Same(t, h1, h2)

	l1, err := a.Learning()
	require.NoError(t, err)
	l2, err := a.Learning()
	require.NoError(t, err)
	require.Same(t, l1, l2)

	s1, err := a.Ledger()
	require.NoError(t, err)
	s2, err := a.Ledger()
	require.NoError(t, err)
	require.Same(t, s1, s2)

	require.Same(t, a.Browser(), a.Browser())
}

func TestHistory_CorruptIsEmpty(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(cfg.Paths.HistoryFile, []byte("{not json"), 0600))

	a := NewForTesting(cfg, &bytes.Buffer{})
	h, err := a.History()
	require.NoError(t, err)
	require.Empty(t, h.Names())
}

func TestDriverSelection(t *testing.T) {
	tests := []struct {
		name     string
		twitter  bool
		linkedin bool
		platform string
		enabled  bool
	}{
		{"twitter wins", true, true, "twitter", true},
		{"linkedin only", false, true, "linkedin", true},
		{"none enabled", false, false, "twitter", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.Social.Twitter.Enabled = tt.twitter
			cfg.Social.LinkedIn.Enabled = tt.linkedin

			a := NewForTesting(cfg, &bytes.Buffer{})
			d := a.Driver()
			require.Equal(t, tt.platform, d.Platform())

			if !tt.enabled {
				_, err := d.Post(context.Background(), "text", "")
				require.True(t, errors.Is(err, browser.ErrPlatformDisabled))
			}
		})
	}
}

func TestRunnerWiring(t *testing.T) {
	cfg := testConfig(t)
	cfg.Timing.BetweenReposSec = 7
	cfg.Render.RequireImage = true

	a := NewForTesting(cfg, &bytes.Buffer{})
	t.Cleanup(func() { _ = a.Close() })

	r, err := a.Runner(RunOptions{Mode: domain.ModeTest, Ref: "main"})
	require.NoError(t, err)

	opts := r.Dispatcher.Options
	require.Equal(t, domain.ModeTest, opts.Mode)
	require.Equal(t, "bento_metrics", opts.Template)
	require.Equal(t, "main", opts.Ref)
	require.True(t, opts.RequireImage)
	require.Equal(t, cfg.OutputDir(), opts.OutputDir)
	require.Equal(t, 10*time.Minute, opts.ConfirmTimeout)
	require.Equal(t, 7*time.Second, r.Delay)
	require.NotNil(t, r.Ledger)

	r, err = a.Runner(RunOptions{NoDelay: true})
	require.NoError(t, err)
	require.Equal(t, cfg.DefaultMode(), r.Dispatcher.Options.Mode)
	require.Zero(t, r.Delay)
}

func TestRenderSettings(t *testing.T) {
	cfg := testConfig(t)
	cfg.Templates.BentoMetrics.GridColumns = 4

	s := NewForTesting(cfg, &bytes.Buffer{}).RenderSettings()
	require.Equal(t, 4, s.GridColumns)
	require.Equal(t, cfg.PrimaryColor, s.PrimaryColor)
	require.Equal(t, cfg.Templates.CarbonX.BorderRadius, s.BorderRadius)
}
