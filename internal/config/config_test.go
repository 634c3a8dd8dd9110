package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/footprint-tools/storyteller/internal/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoad_OverridesKeepOtherDefaults(t *testing.T) {
	path := writeConfig(t, `
mode: confirm
theme: light
social:
  twitter:
    enabled: true
entropy:
  min_wait_seconds: 1.5
templates:
  carbon_x:
    border_radius: 20
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, domain.ModeConfirm, cfg.DefaultMode())
	require.Equal(t, "light", cfg.Theme)
	require.True(t, cfg.Social.Twitter.Enabled)
	require.False(t, cfg.Social.LinkedIn.Enabled)
	require.Equal(t, 1.5, cfg.Entropy.MinWaitSeconds)
	require.Equal(t, 22.1, cfg.Entropy.MaxWaitSeconds)
	require.Equal(t, 20, cfg.Templates.CarbonX.BorderRadius)
	require.Equal(t, 0.95, cfg.Templates.CarbonX.BackgroundOpacity)
	require.Equal(t, 3, cfg.Templates.BentoMetrics.GridColumns)
	require.Equal(t, 50, cfg.Git.CloneDepth)
}

func TestLoad_InvalidYAMLReturnsDefaultsAndError(t *testing.T) {
	path := writeConfig(t, "mode: [unterminated")

	cfg, err := Load(path)
	require.Error(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoad_NormalizesBadValues(t *testing.T) {
	path := writeConfig(t, `
mode: yolo
git:
  window: -1
  clone_depth: 0
entropy:
  min_wait_seconds: 30
  max_wait_seconds: 10
webhook:
  port: 99999
daemon:
  schedule: "  "
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, domain.ModeAuto, cfg.DefaultMode())
	require.Equal(t, 10, cfg.Git.Window)
	require.Equal(t, 50, cfg.Git.CloneDepth)
	require.Equal(t, 10.0, cfg.Entropy.MinWaitSeconds)
	require.Equal(t, 30.0, cfg.Entropy.MaxWaitSeconds)
	require.Equal(t, 8080, cfg.Webhook.Port)
	require.Equal(t, "@every 1h", cfg.Daemon.Schedule)
}

func TestLoad_CapsWindow(t *testing.T) {
	cfg, err := Load(writeConfig(t, "git:\n  window: 25\n"))
	require.NoError(t, err)
	require.Equal(t, 10, cfg.Git.Window)

	cfg, err = Load(writeConfig(t, "git:\n  window: 4\n"))
	require.NoError(t, err)
	require.Equal(t, 4, cfg.Git.Window)
}

func TestDurations(t *testing.T) {
	cfg := Default()
	require.Equal(t, 600*time.Second, cfg.ConfirmTimeout())
	require.Equal(t, 30*time.Second, cfg.BetweenRepos())
	require.Equal(t, domain.Viewport{Width: 1200, Height: 675, Scale: 2.0}, cfg.Viewport())
}

func TestResolvePath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	require.Equal(t, "/fallback", resolvePath("", func() string { return "/fallback" }))
	require.Equal(t, "/abs/file.json", resolvePath(" /abs/file.json ", func() string { return "" }))
	require.Equal(t, filepath.Join(home, "data", "h.json"), resolvePath("~/data/h.json", func() string { return "" }))
}

func TestGet(t *testing.T) {
	cfg := Default()

	v, ok := cfg.Get("entropy.max_wait_seconds")
	require.True(t, ok)
	require.Equal(t, "22.1", v)

	v, ok = cfg.Get("brand_colors")
	require.True(t, ok)
	require.Equal(t, "#6366f1,#8b5cf6,#a855f7", v)

	v, ok = cfg.Get("social.twitter.enabled")
	require.True(t, ok)
	require.Equal(t, "false", v)

	_, ok = cfg.Get("nope")
	require.False(t, ok)

	_, err := cfg.Value("nope")
	require.ErrorIs(t, err, ErrUnknownKey)
}

func TestGetAll_CoversRegistry(t *testing.T) {
	all := Default().GetAll()
	require.Len(t, all, len(Keys))
	for _, k := range Keys {
		_, ok := all[k.Name]
		require.True(t, ok, k.Name)
	}
}

func TestKeys_UniqueAndSectioned(t *testing.T) {
	seen := make(map[string]bool)
	for _, k := range Keys {
		require.False(t, seen[k.Name], "duplicate key %s", k.Name)
		seen[k.Name] = true
		require.NotEmpty(t, k.Section, k.Name)
		require.NotEmpty(t, k.Description, k.Name)
	}
	require.Equal(t, "General", Sections()[0])
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	created, err := WriteDefault(path)
	require.NoError(t, err)
	require.True(t, created)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)

	created, err = WriteDefault(path)
	require.NoError(t, err)
	require.False(t, created)
}
