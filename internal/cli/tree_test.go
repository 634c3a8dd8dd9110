package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/footprint-tools/storyteller/internal/app"
	"github.com/footprint-tools/storyteller/internal/dispatchers"
	"github.com/footprint-tools/storyteller/internal/ui/style"
	"github.com/footprint-tools/storyteller/internal/usage"
)

func testTree(t *testing.T) (*dispatchers.DispatchNode, *bytes.Buffer, dispatchers.Presenter) {
	t.Helper()
	var out bytes.Buffer
	a := app.NewForTesting(nil, &out)
	t.Cleanup(func() { _ = a.Close() })
	return BuildTree(a), &out, dispatchers.Presenter{Out: a.Output, Style: style.NopStyler{}}
}

func TestBuildTree_ReturnsRoot(t *testing.T) {
	root, _, _ := testTree(t)

	require.NotNil(t, root)
	require.Equal(t, "story", root.Name)
}

func TestBuildTree_HasExpectedTopLevelCommands(t *testing.T) {
	root, _, _ := testTree(t)

	expectedCommands := []string{
		"run",
		"watch",
		"daemon",
		"webhook",
		"history",
		"runs",
		"insights",
		"metrics",
		"seed",
		"config",
		"version",
		"completions",
	}

	require.Len(t, root.Children, len(expectedCommands))
	for _, cmd := range expectedCommands {
		node, found := root.Children[cmd]
		require.True(t, found, "expected top-level command '%s' not found", cmd)
		require.NotEmpty(t, node.Summary, cmd)
		require.NotEmpty(t, node.Usage, cmd)
	}
}

func TestBuildTree_ConfigHasSubcommands(t *testing.T) {
	root, _, _ := testTree(t)

	config, found := root.Children["config"]
	require.True(t, found, "config group not found")
	require.Nil(t, config.Action)

	for _, sub := range []string{"list", "get", "path", "init"} {
		node, found := config.Children[sub]
		require.True(t, found, "expected config subcommand '%s' not found", sub)
		require.NotNil(t, node.Action)
		require.Equal(t, []string{"story", "config", sub}, node.Path)
	}
}

func TestBuildTree_Categories(t *testing.T) {
	root, _, _ := testTree(t)

	require.Equal(t, dispatchers.CategoryPublish, root.Children["run"].Category)
	require.Equal(t, dispatchers.CategoryServices, root.Children["daemon"].Category)
	require.Equal(t, dispatchers.CategoryInspect, root.Children["runs"].Category)
	require.Equal(t, dispatchers.CategoryPlumbing, root.Children["seed"].Category)
}

func TestDispatch_RunRequiresTarget(t *testing.T) {
	root, _, p := testTree(t)

	_, err := dispatchers.Dispatch(root, []string{"run"}, dispatchers.NewParsedFlags(nil), p)
	var ue *usage.Error
	require.True(t, errors.As(err, &ue))
	require.Equal(t, usage.ErrMissingArgument, ue.Kind)
	require.Contains(t, err.Error(), "target")
}

func TestDispatch_RejectsFlagOfOtherCommand(t *testing.T) {
	root, _, p := testTree(t)

	_, err := dispatchers.Dispatch(root, []string{"watch"}, dispatchers.NewParsedFlags([]string{"--port=80"}), p)
	require.Error(t, err)

	res, err := dispatchers.Dispatch(root, []string{"watch"}, dispatchers.NewParsedFlags([]string{"--no-delay", "--no-color"}), p)
	require.NoError(t, err)
	require.Equal(t, root.Children["watch"], res.Node)
}

func TestDispatch_SuggestsFlag(t *testing.T) {
	root, _, p := testTree(t)

	_, err := dispatchers.Dispatch(root, []string{"watch"}, dispatchers.NewParsedFlags([]string{"--watchlist=/w.yaml"}), p)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Did you mean '--watch-list'?")
}

func TestDispatch_HelpForCommand(t *testing.T) {
	root, out, p := testTree(t)

	res, err := dispatchers.Dispatch(root, []string{"help", "webhook"}, dispatchers.NewParsedFlags(nil), p)
	require.NoError(t, err)
	require.NoError(t, res.Execute(res.Args, res.Flags))
	require.Contains(t, out.String(), "story webhook")
	require.Contains(t, out.String(), "--secret=<secret>")
}

func TestDispatch_Typo(t *testing.T) {
	root, _, p := testTree(t)

	_, err := dispatchers.Dispatch(root, []string{"wach"}, dispatchers.NewParsedFlags(nil), p)
	require.Error(t, err)
	require.Contains(t, err.Error(), "watch")
}

func TestDispatch_NestedSuggestion(t *testing.T) {
	root, _, p := testTree(t)

	_, err := dispatchers.Dispatch(root, []string{"init"}, dispatchers.NewParsedFlags(nil), p)
	require.Error(t, err)
	require.Contains(t, err.Error(), "\tconfig init")
}

func TestValueFlags(t *testing.T) {
	vf := ValueFlags()

	for _, name := range []string{"--pager", "--template", "--ref", "--name", "--watch-list", "--schedule", "--port", "--secret", "--repo", "--limit", "--likes", "--theme"} {
		require.True(t, vf[name], name)
	}
	for _, name := range []string{"--test", "--confirm", "--now", "--json", "--help"} {
		require.False(t, vf[name], name)
	}
}
