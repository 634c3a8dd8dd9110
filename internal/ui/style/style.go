// Package style provides semantic terminal styling using lipgloss.
//
// All styling is semantic (Success, Warning, Error, etc.) rather than visual.
// A disabled Styler returns its input unchanged with no ANSI codes.
package style

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/footprint-tools/storyteller/internal/domain"
)

// ShouldEnable decides whether output is styled. NO_COLOR and STORY_NO_COLOR
// disable styling regardless of the terminal.
func ShouldEnable(isTTY, noColorFlag bool, getenv func(string) string) bool {
	if noColorFlag || !isTTY {
		return false
	}
	if getenv != nil && (getenv("NO_COLOR") != "" || getenv("STORY_NO_COLOR") != "") {
		return false
	}
	return true
}

// Styler implements domain.Styler with a theme.
type Styler struct {
	enabled bool
	colors  Colors

	success lipgloss.Style
	warning lipgloss.Style
	error   lipgloss.Style
	info    lipgloss.Style
	muted   lipgloss.Style
	header  lipgloss.Style
	accent  lipgloss.Style
}

// New creates a Styler rendering to out with the given theme colors.
func New(out io.Writer, enabled bool, colors Colors) *Styler {
	s := &Styler{enabled: enabled, colors: colors}
	if !enabled {
		return s
	}

	// The profile is forced so that 256-color values render even when
	// termenv cannot detect support.
	r := lipgloss.NewRenderer(out)
	r.SetColorProfile(termenv.ANSI256)

	s.success = makeStyle(r, colors.Success)
	s.warning = makeStyle(r, colors.Warning)
	s.error = makeStyle(r, colors.Error)
	s.info = makeStyle(r, colors.Info)
	s.muted = makeStyle(r, colors.Muted)
	s.header = makeStyle(r, colors.Header)
	s.accent = makeStyle(r, colors.Accent)
	return s
}

// makeStyle creates a style from "bold" or an ANSI color number (0-255).
func makeStyle(r *lipgloss.Renderer, value string) lipgloss.Style {
	if value == "bold" {
		return r.NewStyle().Bold(true)
	}
	return r.NewStyle().Foreground(lipgloss.Color(value))
}

func (s *Styler) render(st lipgloss.Style, text string) string {
	if !s.enabled {
		return text
	}
	return st.Render(text)
}

// Colors returns the theme colors.
func (s *Styler) Colors() Colors { return s.colors }

func (s *Styler) Enabled() bool              { return s.enabled }
func (s *Styler) Success(text string) string { return s.render(s.success, text) }
func (s *Styler) Warning(text string) string { return s.render(s.warning, text) }
func (s *Styler) Error(text string) string   { return s.render(s.error, text) }
func (s *Styler) Info(text string) string    { return s.render(s.info, text) }
func (s *Styler) Muted(text string) string   { return s.render(s.muted, text) }
func (s *Styler) Header(text string) string  { return s.render(s.header, text) }
func (s *Styler) Accent(text string) string  { return s.render(s.accent, text) }

// NopStyler returns text unchanged.
type NopStyler struct{}

func (NopStyler) Enabled() bool              { return false }
func (NopStyler) Success(text string) string { return text }
func (NopStyler) Warning(text string) string { return text }
func (NopStyler) Error(text string) string   { return text }
func (NopStyler) Info(text string) string    { return text }
func (NopStyler) Muted(text string) string   { return text }
func (NopStyler) Header(text string) string  { return text }
func (NopStyler) Accent(text string) string  { return text }

var (
	_ domain.Styler = (*Styler)(nil)
	_ domain.Styler = NopStyler{}
)
