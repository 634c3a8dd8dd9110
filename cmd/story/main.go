package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/term"

	"github.com/footprint-tools/storyteller/internal/app"
	"github.com/footprint-tools/storyteller/internal/cli"
	"github.com/footprint-tools/storyteller/internal/dispatchers"
	"github.com/footprint-tools/storyteller/internal/ui/style"
	"github.com/footprint-tools/storyteller/internal/usage"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// Variables in .env fill in what the environment does not set
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "story: .env: %v\n", err)
	}

	rawFlags, commands := extractFlagsAndCommands(args, cli.ValueFlags())
	flags := dispatchers.NewParsedFlags(rawFlags)

	opts := app.DefaultOptions()
	opts.StyleEnabled = style.ShouldEnable(term.IsTerminal(int(os.Stdout.Fd())), flags.Has("--no-color"), os.Getenv)
	opts.PagerDisabled = flags.Has("--no-pager")
	opts.PagerOverride = flags.String("--pager", "")

	a, err := app.New(opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}
	defer func() { _ = a.Close() }()

	root := cli.BuildTree(a)

	res, err := dispatchers.Dispatch(root, commands, flags, dispatchers.Presenter{Out: a.Output, Style: a.Styler})
	if err != nil {
		return report(err)
	}

	if err := res.Execute(res.Args, res.Flags); err != nil {
		return report(err)
	}

	// Non-zero when the resolution asks for it (e.g. bare `story`)
	return res.ExitCode
}

func report(err error) int {
	fmt.Fprintln(os.Stderr, err.Error())
	var ue *usage.Error
	if errors.As(err, &ue) {
		return ue.GetExitCode()
	}
	return 1
}

// extractFlagsAndCommands splits args into flags and command tokens.
// "--flag value" becomes "--flag=value" for flags in valueFlags, and the
// shorthands -N and -n N become --limit=N.
func extractFlagsAndCommands(args []string, valueFlags map[string]bool) ([]string, []string) {
	flags := []string{}
	commands := []string{}

	for i := 0; i < len(args); i++ {
		a := args[i]

		if a == "" || a[0] != '-' || a == "-" {
			commands = append(commands, a)
			continue
		}

		if n, ok := numericShorthand(a); ok {
			flags = append(flags, "--limit="+n)
			continue
		}

		if a == "-n" || valueFlags[a] {
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				name := a
				if a == "-n" {
					name = "--limit"
				}
				flags = append(flags, name+"="+args[i+1])
				i++
				continue
			}
		}

		flags = append(flags, a)
	}

	return flags, commands
}

func numericShorthand(a string) (string, bool) {
	if len(a) < 2 || a[1] < '0' || a[1] > '9' {
		return "", false
	}
	n, err := strconv.Atoi(a[1:])
	if err != nil || n <= 0 {
		return "", false
	}
	return strconv.Itoa(n), true
}
