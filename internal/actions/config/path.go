package config

import (
	"github.com/footprint-tools/storyteller/internal/app"
	"github.com/footprint-tools/storyteller/internal/dispatchers"
)

func Path(a *app.App) dispatchers.CommandFunc {
	return func(args []string, flags *dispatchers.ParsedFlags) error {
		return path(args, flags, DefaultDeps(a))
	}
}

func path(_ []string, _ *dispatchers.ParsedFlags, deps Deps) error {
	_, _ = deps.Println(deps.Path)
	return nil
}
