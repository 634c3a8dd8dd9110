package dispatchers

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/footprint-tools/storyteller/internal/domain"
)

// Presenter is where help output goes.
type Presenter struct {
	Out   domain.OutputWriter
	Style domain.Styler
}

// commandDisplayOrder defines explicit ordering within categories.
// Commands not listed appear alphabetically after listed ones.
var commandDisplayOrder = map[string]int{
	// publish
	"run":   1,
	"watch": 2,
	// services
	"daemon":  1,
	"webhook": 2,
	// inspect
	"history":  1,
	"runs":     2,
	"insights": 3,
	// config commands
	"config list": 1,
	"config get":  2,
	"config path": 3,
	"config init": 4,
}

// formatUsage styles the usage line with the command in Info color and the rest muted.
func formatUsage(s domain.Styler, usage string) string {
	// The command ends at the first [ or <
	cmdEnd := len(usage)
	for i, c := range usage {
		if c == '[' || c == '<' {
			cmdEnd = i
			break
		}
	}

	cmd := strings.TrimSpace(usage[:cmdEnd])
	rest := ""
	if cmdEnd < len(usage) {
		rest = usage[cmdEnd:]
	}

	if rest == "" {
		return s.Info(cmd)
	}
	return s.Info(cmd) + " " + s.Muted(rest)
}

func collectLeafCommands(node *DispatchNode, out *[]*DispatchNode) {
	if node.Action != nil {
		*out = append(*out, node)
		return
	}

	for _, child := range node.Children {
		collectLeafCommands(child, out)
	}
}

func sortByDisplayOrder(nodes []*DispatchNode) {
	sort.Slice(nodes, func(i, j int) bool {
		nameI := strings.Join(nodes[i].Path[1:], " ")
		nameJ := strings.Join(nodes[j].Path[1:], " ")
		orderI, hasI := commandDisplayOrder[nameI]
		orderJ, hasJ := commandDisplayOrder[nameJ]
		if hasI && hasJ && orderI != orderJ {
			return orderI < orderJ
		}
		if hasI != hasJ {
			return hasI
		}
		return nameI < nameJ
	})
}

// RenderHelp returns the help text of node.
func RenderHelp(node *DispatchNode, root *DispatchNode, s domain.Styler) string {
	var out bytes.Buffer

	if node == root {
		// Root help: git-like format
		out.WriteString(root.Name)
		out.WriteString(" - ")
		out.WriteString(node.Summary)
		out.WriteString("\n\n")

		out.WriteString("USAGE\n   ")
		out.WriteString(formatUsage(s, node.Usage))
		out.WriteString("\n\n")

		grouped := make(map[CommandCategory][]*DispatchNode)

		var leaves []*DispatchNode
		for _, child := range root.Children {
			collectLeafCommands(child, &leaves)
		}

		for _, cmd := range leaves {
			grouped[cmd.Category] = append(grouped[cmd.Category], cmd)
		}

		for _, cat := range categoryOrder {
			cmds := grouped[cat]
			if len(cmds) == 0 {
				continue
			}

			out.WriteString(cat.String())
			out.WriteString("\n")

			sortByDisplayOrder(cmds)
			for _, cmd := range cmds {
				displayName := strings.Join(cmd.Path[1:], " ")
				fmt.Fprintf(&out, "   %s  %s\n", s.Info(fmt.Sprintf("%-16s", displayName)), cmd.Summary)
			}
			out.WriteString("\n")
		}

		if len(root.Flags) > 0 {
			out.WriteString("GLOBAL FLAGS\n")
			writeFlags(&out, s, root.Flags)
			out.WriteString("\n")
		}

		fmt.Fprintf(&out, "See '%s help <command>' for detailed help on a specific command.\n", root.Name)
		return out.String()
	}

	// Subcommand help
	out.WriteString(strings.Join(node.Path, " "))
	if node.Summary != "" {
		out.WriteString(" - ")
		out.WriteString(node.Summary)
	}
	out.WriteString("\n\n")

	out.WriteString("USAGE\n   ")
	out.WriteString(formatUsage(s, node.Usage))
	out.WriteString("\n\n")

	if node.Description != "" {
		out.WriteString(node.Description)
		out.WriteString("\n\n")
	}

	if len(node.Children) > 0 {
		out.WriteString("COMMANDS\n")

		children := make([]*DispatchNode, 0, len(node.Children))
		for _, child := range node.Children {
			children = append(children, child)
		}
		sortByDisplayOrder(children)

		for _, child := range children {
			fmt.Fprintf(&out, "   %s  %s\n", s.Info(fmt.Sprintf("%-12s", child.Name)), child.Summary)
		}
		out.WriteString("\n")
	}

	if len(node.Args) > 0 {
		out.WriteString("ARGUMENTS\n")
		for _, a := range node.Args {
			name := "<" + a.Name + ">"
			if !a.Required {
				name = "[" + a.Name + "]"
			}
			fmt.Fprintf(&out, "   %s  %s\n", s.Info(fmt.Sprintf("%-24s", name)), a.Description)
		}
		out.WriteString("\n")
	}

	if len(node.Flags) > 0 {
		out.WriteString("FLAGS\n")
		writeFlags(&out, s, node.Flags)
		out.WriteString("\n")
	}

	fmt.Fprintf(&out, "See '%s help <command>' to read about a specific command.\n", root.Name)
	return out.String()
}

func writeFlags(out *bytes.Buffer, s domain.Styler, flags []FlagDescriptor) {
	for _, f := range flags {
		name := strings.Join(f.Names, ", ")
		if f.ValueHint != "" {
			name = name + "=" + f.ValueHint
		}
		fmt.Fprintf(out, "   %s  %s\n", s.Info(fmt.Sprintf("%-24s", name)), f.Description)
	}
}

// HelpAction generates help output for a command node.
func HelpAction(node *DispatchNode, root *DispatchNode, p Presenter) CommandFunc {
	return func(args []string, flags *ParsedFlags) error {
		p.Out.Pager(RenderHelp(node, root, p.Style))
		return nil
	}
}
