package completions

import (
	"fmt"
	"strings"
)

// binName is the root command name, which is also the binary being completed.
func binName(commands []CommandInfo) string {
	if len(commands) == 0 || len(commands[0].Path) == 0 {
		return "story"
	}
	return commands[0].Path[0]
}

func flagWords(flags []FlagInfo) []string {
	var words []string
	for _, f := range flags {
		for _, n := range f.Names {
			if !strings.HasPrefix(n, "--") {
				continue
			}
			if f.HasValue {
				n += "="
			}
			words = append(words, n)
		}
	}
	return words
}

// GenerateBash completes subcommands by the path typed so far, plus flags.
func GenerateBash(commands []CommandInfo) string {
	bin := binName(commands)
	fn := "_" + identifier(bin) + "_completions"

	var globals []FlagInfo
	if len(commands) > 0 {
		globals = commands[0].Flags
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s bash completion script\n", bin)
	fmt.Fprintf(&b, "%s() {\n", fn)
	b.WriteString("    local cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	fmt.Fprintf(&b, "    local path=%q\n", bin)
	b.WriteString("    local i\n")
	b.WriteString("    for ((i=1; i<COMP_CWORD; i++)); do\n")
	b.WriteString("        case \"${COMP_WORDS[i]}\" in\n")
	b.WriteString("            -*) ;;\n")
	b.WriteString("            *) path=\"$path ${COMP_WORDS[i]}\" ;;\n")
	b.WriteString("        esac\n")
	b.WriteString("    done\n\n")
	b.WriteString("    local opts=\"\"\n")
	b.WriteString("    case \"$path\" in\n")
	for _, c := range commands {
		words := append([]string{}, c.Subcommands...)
		words = append(words, flagWords(c.Flags)...)
		if len(c.Path) > 1 {
			words = append(words, flagWords(globals)...)
		}
		fmt.Fprintf(&b, "        %q) opts=%q ;;\n", strings.Join(c.Path, " "), strings.Join(words, " "))
	}
	b.WriteString("    esac\n\n")
	b.WriteString("    COMPREPLY=( $(compgen -W \"$opts\" -- \"$cur\") )\n")
	b.WriteString("    [[ ${COMPREPLY[0]} == *= ]] && compopt -o nospace\n")
	b.WriteString("}\n")
	fmt.Fprintf(&b, "complete -o default -F %s %s\n", fn, bin)
	return b.String()
}

// GenerateZsh describes top-level commands and, one level down, subcommands
// or flags.
func GenerateZsh(commands []CommandInfo) string {
	bin := binName(commands)
	id := identifier(bin)
	byPath := map[string]CommandInfo{}
	for _, c := range commands {
		byPath[strings.Join(c.Path, " ")] = c
	}

	var b strings.Builder
	fmt.Fprintf(&b, "#compdef %s\n\n", bin)

	fmt.Fprintf(&b, "_%s_commands() {\n", id)
	b.WriteString("    local -a commands\n")
	b.WriteString("    commands=(\n")
	if len(commands) > 0 {
		for _, name := range commands[0].Subcommands {
			sub := byPath[bin+" "+name]
			fmt.Fprintf(&b, "        '%s:%s'\n", zshEscape(name), zshEscape(sub.Summary))
		}
	}
	b.WriteString("    )\n")
	b.WriteString("    _describe 'command' commands\n")
	b.WriteString("}\n\n")

	fmt.Fprintf(&b, "_%s() {\n", id)
	b.WriteString("    local line state\n")
	b.WriteString("    _arguments -C \\\n")
	fmt.Fprintf(&b, "        '1: :_%s_commands' \\\n", id)
	b.WriteString("        '*::arg:->args'\n\n")
	b.WriteString("    case $state in\n")
	b.WriteString("        args)\n")
	b.WriteString("            case $line[1] in\n")
	if len(commands) > 0 {
		for _, name := range commands[0].Subcommands {
			c := byPath[bin+" "+name]
			fmt.Fprintf(&b, "                %s)\n", name)
			if len(c.Subcommands) > 0 {
				b.WriteString("                    local -a sub\n")
				b.WriteString("                    sub=(\n")
				for _, s := range c.Subcommands {
					fmt.Fprintf(&b, "                        '%s:%s'\n", zshEscape(s), zshEscape(byPath[bin+" "+name+" "+s].Summary))
				}
				b.WriteString("                    )\n")
				fmt.Fprintf(&b, "                    _describe '%s command' sub\n", name)
			} else {
				b.WriteString("                    _arguments")
				for _, f := range c.Flags {
					for _, n := range f.Names {
						spec := n
						if f.HasValue {
							spec += "=-"
						}
						fmt.Fprintf(&b, " \\\n                        '%s[%s]'", spec, zshEscape(f.Description))
					}
				}
				b.WriteString(" \\\n                        '*:file:_files'\n")
			}
			b.WriteString("                    ;;\n")
		}
	}
	b.WriteString("            esac\n")
	b.WriteString("            ;;\n")
	b.WriteString("    esac\n")
	b.WriteString("}\n\n")
	fmt.Fprintf(&b, "_%s \"$@\"\n", id)
	return b.String()
}

// GenerateFish emits one complete line per subcommand and flag.
func GenerateFish(commands []CommandInfo) string {
	bin := binName(commands)
	byPath := map[string]CommandInfo{}
	for _, c := range commands {
		byPath[strings.Join(c.Path, " ")] = c
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s fish completion script\n", bin)
	fmt.Fprintf(&b, "complete -c %s -f\n", bin)

	for _, c := range commands {
		cond := "__fish_use_subcommand"
		if len(c.Path) > 1 {
			cond = "__fish_seen_subcommand_from " + c.Name
		}

		for _, name := range c.Subcommands {
			sub := byPath[strings.Join(append(append([]string{}, c.Path...), name), " ")]
			fmt.Fprintf(&b, "complete -c %s -n '%s' -a '%s' -d '%s'\n", bin, cond, name, fishEscape(sub.Summary))
		}

		for _, f := range c.Flags {
			var opts []string
			for _, n := range f.Names {
				switch {
				case strings.HasPrefix(n, "--"):
					opts = append(opts, "-l "+strings.TrimPrefix(n, "--"))
				case strings.HasPrefix(n, "-"):
					opts = append(opts, "-s "+strings.TrimPrefix(n, "-"))
				}
			}
			if f.HasValue {
				opts = append(opts, "-r")
			}
			line := fmt.Sprintf("complete -c %s", bin)
			if len(c.Path) > 1 {
				line += fmt.Sprintf(" -n '%s'", cond)
			}
			fmt.Fprintf(&b, "%s %s -d '%s'\n", line, strings.Join(opts, " "), fishEscape(f.Description))
		}
	}
	return b.String()
}

func identifier(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_' {
			return r
		}
		return '_'
	}, s)
}

func zshEscape(s string) string {
	s = strings.ReplaceAll(s, "'", `'\''`)
	s = strings.ReplaceAll(s, ":", `\:`)
	s = strings.ReplaceAll(s, "[", `\[`)
	return strings.ReplaceAll(s, "]", `\]`)
}

func fishEscape(s string) string {
	return strings.ReplaceAll(s, "'", `\'`)
}
