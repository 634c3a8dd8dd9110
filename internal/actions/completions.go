package actions

import (
	"strings"

	"github.com/footprint-tools/storyteller/internal/completions"
	"github.com/footprint-tools/storyteller/internal/dispatchers"
	"github.com/footprint-tools/storyteller/internal/usage"
)

// Completions prints the completion script for the shell named in args,
// or how to load it for $SHELL when no shell is given.
func Completions(root *dispatchers.DispatchNode) dispatchers.CommandFunc {
	return func(args []string, flags *dispatchers.ParsedFlags) error {
		return showCompletions(root, args, defaultDeps())
	}
}

func showCompletions(root *dispatchers.DispatchNode, args []string, deps actionDependencies) error {
	names := make([]string, len(completions.Shells))
	for i, s := range completions.Shells {
		names[i] = string(s)
	}

	if len(args) > 0 {
		shell, err := completions.ParseShell(args[0])
		if err != nil {
			return usage.InvalidValue("shell", args[0], "one of "+strings.Join(names, ", "))
		}
		return completions.PrintCompletions(deps.Stdout, root, shell)
	}

	bin := root.Name
	shell, err := completions.ParseShell(deps.Getenv("SHELL"))
	if err != nil {
		_, _ = deps.Printf("Usage: %s completions <%s>\n", bin, strings.Join(names, "|"))
		return nil
	}
	_, _ = deps.Printf("# Add this line to %s:\n%s\n", completions.RcFile(shell), completions.SourceInstructions(shell, bin))
	return nil
}
