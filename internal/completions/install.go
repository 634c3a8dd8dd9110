package completions

import (
	"errors"
	"fmt"
	"io"

	"github.com/footprint-tools/storyteller/internal/dispatchers"
)

// shellSetup describes how each shell loads a completion script.
// %[1]s is the binary name and %[2]s the shell.
var shellSetup = map[Shell]struct {
	generate func([]CommandInfo) string
	rcFile   string
	source   string
}{
	ShellBash: {GenerateBash, "~/.bashrc", `eval "$(%[1]s completions %[2]s)"`},
	ShellZsh:  {GenerateZsh, "~/.zshrc", `eval "$(%[1]s completions %[2]s)"`},
	ShellFish: {GenerateFish, "~/.config/fish/config.fish", `%[1]s completions %[2]s | source`},
}

// PrintCompletions writes the completion script of shell for the tree
// rooted at root.
func PrintCompletions(w io.Writer, root *dispatchers.DispatchNode, shell Shell) error {
	if root == nil {
		return errors.New("command tree not built")
	}
	setup, ok := shellSetup[shell]
	if !ok {
		return fmt.Errorf("unsupported shell: %q", shell)
	}
	_, err := io.WriteString(w, setup.generate(ExtractCommands(root)))
	return err
}

// SourceInstructions returns the line that loads completions for bin,
// or "" for an unsupported shell.
func SourceInstructions(shell Shell, bin string) string {
	setup, ok := shellSetup[shell]
	if !ok {
		return ""
	}
	return fmt.Sprintf(setup.source, bin, shell)
}

// RcFile returns the startup file SourceInstructions belongs in.
func RcFile(shell Shell) string {
	return shellSetup[shell].rcFile
}
