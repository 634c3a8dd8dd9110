package actions

import "github.com/footprint-tools/storyteller/internal/dispatchers"

func ShowVersion(args []string, flags *dispatchers.ParsedFlags) error {
	return showVersion(args, flags, defaultDeps())
}

func showVersion(_ []string, flags *dispatchers.ParsedFlags, deps actionDependencies) error {
	if flags.Has("--verbose") && deps.Runtime != nil {
		_, _ = deps.Printf("story version %v (%s)\n", deps.Version(), deps.Runtime())
		return nil
	}
	_, _ = deps.Printf("story version %v\n", deps.Version())
	return nil
}
