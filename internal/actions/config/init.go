package config

import (
	"fmt"

	"github.com/footprint-tools/storyteller/internal/app"
	"github.com/footprint-tools/storyteller/internal/dispatchers"
)

// Init writes config.yaml with every default value. An existing file is kept.
func Init(a *app.App) dispatchers.CommandFunc {
	return func(args []string, flags *dispatchers.ParsedFlags) error {
		return initConfig(args, flags, DefaultDeps(a))
	}
}

func initConfig(_ []string, _ *dispatchers.ParsedFlags, deps Deps) error {
	written, err := deps.WriteDefault(deps.Path)
	if err != nil {
		return fmt.Errorf("story: %w", err)
	}

	if !written {
		_, _ = deps.Printf("%s %s\n", deps.Styler.Muted("exists"), deps.Path)
		return nil
	}
	_, _ = deps.Printf("%s %s\n", deps.Styler.Success("created"), deps.Path)
	return nil
}
