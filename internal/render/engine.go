package render

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"sort"
	"strings"

	"github.com/footprint-tools/storyteller/internal/domain"
)

// ErrUnknownTemplate is returned for a template name that is not embedded.
var ErrUnknownTemplate = errors.New("render: unknown template")

//go:embed templates/*.html
var templateFS embed.FS

// Settings are the configuration values templates may read.
type Settings struct {
	Theme             string
	PrimaryColor      string
	BrandColors       []string
	FontFamily        string
	BackgroundOpacity float64
	BorderRadius      int
	GridColumns       int
}

var funcs = template.FuncMap{
	"short": func(v any) string {
		if v == nil {
			return ""
		}
		s := fmt.Sprint(v)
		if len(s) > 8 {
			return s[:8]
		}
		return s
	},
	"percent": func(f float64) int { return int(f * 100) },
}

type templateData struct {
	Data    map[string]any
	Seed    float64
	Palette Palette
	Config  Settings
}

// Engine renders embedded templates and hands the HTML to a Screenshotter.
type Engine struct {
	templates map[string]*template.Template
	shooter   domain.Screenshotter
	settings  Settings
	viewport  domain.Viewport
}

// NewEngine parses every embedded template.
func NewEngine(shooter domain.Screenshotter, settings Settings, viewport domain.Viewport) (*Engine, error) {
	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return nil, fmt.Errorf("render: read templates: %w", err)
	}

	e := &Engine{
		templates: make(map[string]*template.Template, len(entries)),
		shooter:   shooter,
		settings:  settings,
		viewport:  viewport,
	}

	for _, entry := range entries {
		name := strings.TrimSuffix(entry.Name(), ".html")
		tmpl, err := template.New(entry.Name()).
			Option("missingkey=zero").
			Funcs(funcs).
			ParseFS(templateFS, "templates/"+entry.Name())
		if err != nil {
			return nil, fmt.Errorf("render: parse %s: %w", entry.Name(), err)
		}
		e.templates[name] = tmpl
	}

	return e, nil
}

// Names returns the available template names, sorted.
func (e *Engine) Names() []string {
	names := make([]string, 0, len(e.templates))
	for name := range e.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HTML executes a template. The output depends only on (name, data, seed)
// and the engine settings.
func (e *Engine) HTML(name string, data map[string]any, seed float64) (string, error) {
	tmpl, ok := e.templates[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
	}

	var buf bytes.Buffer
	err := tmpl.Execute(&buf, templateData{
		Data:    data,
		Seed:    seed,
		Palette: NewPalette(seed, e.settings.Theme),
		Config:  e.settings,
	})
	if err != nil {
		return "", fmt.Errorf("render: execute %s: %w", name, err)
	}
	return buf.String(), nil
}

// Render produces PNG bytes for a template.
func (e *Engine) Render(ctx context.Context, name string, data map[string]any, seed float64) ([]byte, error) {
	html, err := e.HTML(name, data, seed)
	if err != nil {
		return nil, err
	}
	if e.shooter == nil {
		return nil, errors.New("render: no screenshotter configured")
	}

	img, err := e.shooter.Capture(ctx, html, e.viewport)
	if err != nil {
		return nil, fmt.Errorf("render: capture %s: %w", name, err)
	}
	if len(img) == 0 {
		return nil, fmt.Errorf("render: capture %s: empty image", name)
	}
	return img, nil
}

var _ domain.Renderer = (*Engine)(nil)
