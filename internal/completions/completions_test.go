package completions

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/footprint-tools/storyteller/internal/dispatchers"
)

func TestExtractCommands(t *testing.T) {
	root := buildTestTree()

	commands := ExtractCommands(root)
	require.Len(t, commands, 5)

	rootCmd := FindCommand(commands, []string{"story"})
	require.NotNil(t, rootCmd, "root command not found")
	require.Equal(t, []string{"config", "run"}, rootCmd.Subcommands)

	configCmd := FindCommand(commands, []string{"story", "config"})
	require.NotNil(t, configCmd)
	require.Equal(t, []string{"get", "list"}, configCmd.Subcommands)

	getCmd := FindCommand(commands, []string{"story", "config", "get"})
	require.NotNil(t, getCmd)
	require.Equal(t, "Get a setting", getCmd.Summary)
	require.Len(t, getCmd.Flags, 1)

	runCmd := FindCommand(commands, []string{"story", "run"})
	require.NotNil(t, runCmd)
	require.True(t, runCmd.Flags[1].HasValue)
}

func TestExtractCommands_DepthFirstSorted(t *testing.T) {
	var paths []string
	for _, c := range ExtractCommands(buildTestTree()) {
		paths = append(paths, c.Name)
	}
	require.Equal(t, []string{"story", "config", "get", "list", "run"}, paths)
}

func TestFindCommand_NotFound(t *testing.T) {
	commands := []CommandInfo{
		{Name: "story", Path: []string{"story"}},
	}

	require.Nil(t, FindCommand(commands, []string{"story", "nonexistent"}))
}

func TestParseShell(t *testing.T) {
	for in, want := range map[string]Shell{
		"bash":          ShellBash,
		"/bin/zsh":      ShellZsh,
		"/usr/bin/fish": ShellFish,
	} {
		got, err := ParseShell(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got)
	}

	_, err := ParseShell("powershell")
	require.Error(t, err)
}

func TestPrintCompletions(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, PrintCompletions(&out, buildTestTree(), ShellFish))
	require.Contains(t, out.String(), "complete -c story -f")

	require.Error(t, PrintCompletions(&out, nil, ShellBash))
	require.Error(t, PrintCompletions(&out, buildTestTree(), Shell("tcsh")))
}

func TestSourceInstructions(t *testing.T) {
	require.Equal(t, `eval "$(story completions zsh)"`, SourceInstructions(ShellZsh, "story"))
	require.Equal(t, "story completions fish | source", SourceInstructions(ShellFish, "story"))
	require.Equal(t, "~/.bashrc", RcFile(ShellBash))
	require.Empty(t, RcFile(Shell("tcsh")))
}

// buildTestTree is shared with generators_test.go.
func buildTestTree() *dispatchers.DispatchNode {
	root := dispatchers.Root(dispatchers.RootSpec{
		Name:    "story",
		Summary: "Test CLI",
		Flags: []dispatchers.FlagDescriptor{
			{Names: []string{"--help", "-h"}, Description: "Show help"},
			{Names: []string{"--pager"}, ValueHint: "<cmd>", Description: "Use pager"},
		},
	})

	config := dispatchers.Group(dispatchers.GroupSpec{
		Name:    "config",
		Parent:  root,
		Summary: "Manage settings",
	})

	dispatchers.Command(dispatchers.CommandSpec{
		Name:    "get",
		Parent:  config,
		Summary: "Get a setting",
		Flags: []dispatchers.FlagDescriptor{
			{Names: []string{"--json"}, Description: "Output as JSON"},
		},
	})

	dispatchers.Command(dispatchers.CommandSpec{
		Name:    "list",
		Parent:  config,
		Summary: "List settings",
	})

	dispatchers.Command(dispatchers.CommandSpec{
		Name:    "run",
		Parent:  root,
		Summary: "Post about one repository",
		Flags: []dispatchers.FlagDescriptor{
			{Names: []string{"--test"}, Description: "Don't publish"},
			{Names: []string{"--template"}, ValueHint: "<name>", Description: "Template [bento_metrics]"},
		},
	})

	return root
}
