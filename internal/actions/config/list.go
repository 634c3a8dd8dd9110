package config

import (
	"encoding/json"

	"github.com/footprint-tools/storyteller/internal/app"
	"github.com/footprint-tools/storyteller/internal/dispatchers"
)

func List(a *app.App) dispatchers.CommandFunc {
	return func(args []string, flags *dispatchers.ParsedFlags) error {
		return list(args, flags, DefaultDeps(a))
	}
}

func list(_ []string, flags *dispatchers.ParsedFlags, deps Deps) error {
	values := deps.GetAll()

	if flags.Has("--json") {
		data, err := json.MarshalIndent(values, "", "  ")
		if err != nil {
			return err
		}
		_, _ = deps.Println(string(data))
		return nil
	}

	section := ""
	for _, key := range deps.Keys {
		value, exists := values[key.Name]
		if !exists {
			continue
		}
		if key.Section != section {
			if section != "" {
				_, _ = deps.Println()
			}
			section = key.Section
			_, _ = deps.Println(deps.Styler.Header(section))
		}
		_, _ = deps.Printf("  %s=%s\n", key.Name, value)
	}

	return nil
}
