package inspect

import (
	"fmt"
	"strings"

	"github.com/footprint-tools/storyteller/internal/app"
	"github.com/footprint-tools/storyteller/internal/dispatchers"
	"github.com/footprint-tools/storyteller/internal/render"
	"github.com/footprint-tools/storyteller/internal/usage"
)

func Seed(a *app.App) dispatchers.CommandFunc {
	return func(args []string, flags *dispatchers.ParsedFlags) error {
		return seed(args, flags, DefaultDeps(a))
	}
}

// seed prints the visual parameters a commit hash renders with.
func seed(args []string, flags *dispatchers.ParsedFlags, deps Deps) error {
	if len(args) < 1 {
		return usage.MissingArgument("commit-hash")
	}
	hash := strings.TrimSpace(args[0])
	if hash == "" {
		return usage.InvalidValue("commit-hash", args[0], "must not be empty")
	}

	theme := flags.String("--theme", deps.Theme)
	if theme != "dark" && theme != "light" {
		return usage.InvalidValue("--theme", theme, "one of dark, light")
	}

	v := render.Seed(hash)
	p := render.NewPalette(v, theme)

	s := deps.Styler
	row := func(label string, value any) {
		_, _ = deps.Printf("  %s %v\n", s.Muted(fmt.Sprintf("%-10s", label+":")), value)
	}
	_, _ = deps.Println(s.Header(hash))
	row("seed", fmt.Sprintf("%.6f", v))
	row("theme", theme)
	row("hue", p.Hue)
	row("accent", p.AccentHue)
	row("angle", p.Angle)
	row("lightness", fmt.Sprintf("%d%%", p.Lightness))
	return nil
}
