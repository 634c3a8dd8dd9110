package config

import (
	"github.com/footprint-tools/storyteller/internal/app"
	"github.com/footprint-tools/storyteller/internal/dispatchers"
	"github.com/footprint-tools/storyteller/internal/usage"
)

func Get(a *app.App) dispatchers.CommandFunc {
	return func(args []string, flags *dispatchers.ParsedFlags) error {
		return get(args, flags, DefaultDeps(a))
	}
}

func get(args []string, _ *dispatchers.ParsedFlags, deps Deps) error {
	if len(args) < 1 {
		return usage.MissingArgument("key")
	}

	key := args[0]

	value, found := deps.Get(key)
	if !found {
		return usage.InvalidConfigKey(key)
	}

	_, _ = deps.Println(value)
	return nil
}
