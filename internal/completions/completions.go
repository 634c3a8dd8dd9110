package completions

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/footprint-tools/storyteller/internal/dispatchers"
)

// Shell is a shell with a completion generator.
type Shell string

const (
	ShellBash Shell = "bash"
	ShellZsh  Shell = "zsh"
	ShellFish Shell = "fish"
)

// Shells lists the supported shells.
var Shells = []Shell{ShellBash, ShellZsh, ShellFish}

// ParseShell accepts a shell name or a path such as /bin/zsh.
func ParseShell(name string) (Shell, error) {
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	for _, s := range Shells {
		if string(s) == name {
			return s, nil
		}
	}
	return "", fmt.Errorf("unsupported shell: %q", name)
}

// CommandInfo is one node of the command tree as the generators see it.
type CommandInfo struct {
	Name        string
	Path        []string // from the root, e.g. ["story", "config", "get"]
	Summary     string
	Subcommands []string // sorted
	Flags       []FlagInfo
}

type FlagInfo struct {
	Names       []string
	Description string
	HasValue    bool
}

// ExtractCommands flattens the tree depth first, visiting children in
// name order so generated scripts are stable.
func ExtractCommands(root *dispatchers.DispatchNode) []CommandInfo {
	var out []CommandInfo
	var walk func(*dispatchers.DispatchNode)
	walk = func(node *dispatchers.DispatchNode) {
		if node == nil {
			return
		}
		names := slices.Sorted(maps.Keys(node.Children))

		info := CommandInfo{Name: node.Name, Path: node.Path, Summary: node.Summary, Subcommands: names}
		for _, f := range node.Flags {
			info.Flags = append(info.Flags, FlagInfo{Names: f.Names, Description: f.Description, HasValue: f.ValueHint != ""})
		}
		out = append(out, info)

		for _, name := range names {
			walk(node.Children[name])
		}
	}
	walk(root)
	return out
}

// FindCommand returns the command at path, or nil.
func FindCommand(commands []CommandInfo, path []string) *CommandInfo {
	for i := range commands {
		if slices.Equal(commands[i].Path, path) {
			return &commands[i]
		}
	}
	return nil
}
