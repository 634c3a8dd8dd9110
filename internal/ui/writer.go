package ui

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/term"

	"github.com/footprint-tools/storyteller/internal/domain"
)

// defaultPager is used when neither --pager nor the environment names one.
var defaultPager = []string{"less", "-FRSX"}

// Writer implements domain.OutputWriter. Long output such as help can be
// sent through a pager when the writer is a terminal.
type Writer struct {
	out        io.Writer
	isTerminal func() bool

	noPager bool
	pager   string
	getenv  func(string) string
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithPagerDisabled makes Pager print directly.
func WithPagerDisabled() WriterOption {
	return func(w *Writer) { w.noPager = true }
}

// WithPagerOverride sets the pager command, taking precedence over
// STORY_PAGER and PAGER.
func WithPagerOverride(cmd string) WriterOption {
	return func(w *Writer) { w.pager = cmd }
}

// WithEnvGetter sets where STORY_PAGER and PAGER are read from.
func WithEnvGetter(fn func(string) string) WriterOption {
	return func(w *Writer) { w.getenv = fn }
}

// NewWriter writes to stdout.
func NewWriter(opts ...WriterOption) *Writer {
	return NewWriterTo(os.Stdout, opts...)
}

// NewWriterTo writes to out. Paging is only attempted when out is a
// terminal file.
func NewWriterTo(out io.Writer, opts ...WriterOption) *Writer {
	w := &Writer{out: out, getenv: os.Getenv, isTerminal: func() bool { return false }}
	if f, ok := out.(*os.File); ok {
		w.isTerminal = func() bool { return term.IsTerminal(int(f.Fd())) }
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Out returns the underlying writer.
func (w *Writer) Out() io.Writer { return w.out }

func (w *Writer) Write(p []byte) (int, error) { return w.out.Write(p) }

func (w *Writer) Printf(format string, args ...any) (int, error) {
	return fmt.Fprintf(w.out, format, args...)
}

func (w *Writer) Println(args ...any) (int, error) {
	return fmt.Fprintln(w.out, args...)
}

// Pager shows content through the resolved pager, or prints it when no
// pager applies or the pager fails to start.
func (w *Writer) Pager(content string) {
	argv := w.pagerCommand()
	if argv == nil || !w.isTerminal() {
		fmt.Fprint(w.out, content)
		return
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = strings.NewReader(content)
	cmd.Stdout = w.out
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		fmt.Fprint(w.out, content)
	}
}

// pagerCommand returns the pager argv, or nil when output should be
// printed directly. Precedence: --no-pager, --pager, STORY_PAGER, PAGER,
// then less. "cat" and blank commands mean no pager.
func (w *Writer) pagerCommand() []string {
	if w.noPager {
		return nil
	}

	choice := w.pager
	if choice == "" && w.getenv != nil {
		for _, key := range []string{"STORY_PAGER", "PAGER"} {
			if v := w.getenv(key); v != "" {
				choice = v
				break
			}
		}
	}
	if choice == "" {
		return defaultPager
	}

	argv := strings.Fields(choice)
	if len(argv) == 0 || argv[0] == "cat" {
		return nil
	}
	return argv
}

var _ domain.OutputWriter = (*Writer)(nil)
