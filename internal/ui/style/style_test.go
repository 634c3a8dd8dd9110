package style

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/footprint-tools/storyteller/internal/domain"
)

func methods(s *Styler) map[string]func(string) string {
	return map[string]func(string) string{
		"Success": s.Success,
		"Warning": s.Warning,
		"Error":   s.Error,
		"Info":    s.Info,
		"Muted":   s.Muted,
		"Header":  s.Header,
		"Accent":  s.Accent,
	}
}

func TestDisabledReturnsPlainText(t *testing.T) {
	s := New(&bytes.Buffer{}, false, Themes["default-dark"])
	require.False(t, s.Enabled())

	for name, fn := range methods(s) {
		out := fn("test message")
		require.Equal(t, "test message", out, name)
		require.NotContains(t, out, "\x1b[", name)
	}
}

func TestEnabledReturnsStyledText(t *testing.T) {
	s := New(&bytes.Buffer{}, true, Themes["default-dark"])
	require.True(t, s.Enabled())

	for name, fn := range methods(s) {
		out := fn("test message")
		require.Contains(t, out, "test message", name)
		require.True(t, strings.Contains(out, "\x1b["), "%s should contain ANSI codes: %q", name, out)
	}
}

func TestNopStyler(t *testing.T) {
	var s NopStyler
	require.False(t, s.Enabled())
	require.Equal(t, "x", s.Success("x"))
	require.Equal(t, "x", s.Header("x"))

	var ds domain.Styler = s
	require.Equal(t, "abcd1234", ds.Accent("abcd1234"))
}

func TestShouldEnable(t *testing.T) {
	env := func(m map[string]string) func(string) string {
		return func(k string) string { return m[k] }
	}

	require.True(t, ShouldEnable(true, false, env(nil)))
	require.False(t, ShouldEnable(false, false, env(nil)))
	require.False(t, ShouldEnable(true, true, env(nil)))
	require.False(t, ShouldEnable(true, false, env(map[string]string{"NO_COLOR": "1"})))
	require.False(t, ShouldEnable(true, false, env(map[string]string{"STORY_NO_COLOR": "1"})))
	require.True(t, ShouldEnable(true, false, nil))
}

func TestResolveThemeName(t *testing.T) {
	require.Equal(t, "default-dark", ResolveThemeName("", true))
	require.Equal(t, "ocean-light", ResolveThemeName("ocean", false))
	require.Equal(t, "neon-dark", ResolveThemeName("neon-dark", false))
}

func TestLookup(t *testing.T) {
	c, ok := Lookup("ocean-dark")
	require.True(t, ok)
	require.Equal(t, Themes["ocean-dark"], c)

	c, ok = Lookup("missing-dark")
	require.False(t, ok)
	require.Equal(t, Themes["default-dark"], c)
}

func TestThemesComplete(t *testing.T) {
	for _, base := range BaseThemeNames() {
		for _, variant := range []string{"-dark", "-light"} {
			c, ok := Themes[base+variant]
			require.True(t, ok, base+variant)
			require.NotEmpty(t, c.Success)
			require.NotEmpty(t, c.Accent)
		}
	}
	require.Equal(t, []string{"default", "mono", "neon", "ocean"}, BaseThemeNames())
}
