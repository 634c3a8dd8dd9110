// Package wait shows a terminal countdown while a post waits for manual
// confirmation in the browser.
package wait

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/footprint-tools/storyteller/internal/domain"
)

// Result is how a countdown ended.
type Result int

const (
	// Stopped means the caller's context ended the countdown.
	Stopped Result = iota
	// Expired means the deadline passed.
	Expired
	// Aborted means the user pressed q or ctrl+c.
	Aborted
)

// Messages

type tickMsg time.Time

type stopMsg struct{}

type model struct {
	spinner  spinner.Model
	label    string
	deadline time.Time
	now      time.Time
	result   Result
	styler   domain.Styler
}

func newModel(label string, deadline, now time.Time, s domain.Styler) model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return model{
		spinner:  sp,
		label:    label,
		deadline: deadline,
		now:      now,
		result:   Stopped,
		styler:   s,
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init implements tea.Model
func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tick())
}

// Update implements tea.Model
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.result = Aborted
			return m, tea.Quit
		}
		return m, nil

	case tickMsg:
		m.now = time.Time(msg)
		if !m.now.Before(m.deadline) {
			m.result = Expired
			return m, tea.Quit
		}
		return m, tick()

	case stopMsg:
		m.result = Stopped
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// Remaining returns the time left, never negative, rounded to seconds.
func (m model) Remaining() time.Duration {
	left := m.deadline.Sub(m.now)
	if left < 0 {
		return 0
	}
	return left.Round(time.Second)
}

// View implements tea.Model
func (m model) View() string {
	if m.result != Stopped {
		return ""
	}
	return fmt.Sprintf("%s %s %s %s\n",
		m.spinner.View(),
		m.label,
		m.styler.Info(formatRemaining(m.Remaining())),
		m.styler.Muted("(q to abort)"),
	)
}

func formatRemaining(d time.Duration) string {
	secs := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

// Options configures Countdown.
type Options struct {
	Label   string
	Timeout time.Duration
	Input   io.Reader
	Output  io.Writer
	Styler  domain.Styler
}

// Countdown renders a spinner with the remaining time until ctx is done,
// the timeout passes, or the user aborts.
func Countdown(ctx context.Context, opts Options) (Result, error) {
	s := opts.Styler
	if s == nil {
		s = nopStyler{}
	}

	now := time.Now()
	m := newModel(opts.Label, now.Add(opts.Timeout), now, s)

	progOpts := []tea.ProgramOption{}
	if opts.Input != nil {
		progOpts = append(progOpts, tea.WithInput(opts.Input))
	}
	if opts.Output != nil {
		progOpts = append(progOpts, tea.WithOutput(opts.Output))
	}
	p := tea.NewProgram(m, progOpts...)

	stop := context.AfterFunc(ctx, func() { p.Send(stopMsg{}) })
	defer stop()

	final, err := p.Run()
	if err != nil {
		return Stopped, fmt.Errorf("countdown: %w", err)
	}
	return final.(model).result, nil
}

type nopStyler struct{}

func (nopStyler) Enabled() bool              { return false }
func (nopStyler) Success(text string) string { return text }
func (nopStyler) Warning(text string) string { return text }
func (nopStyler) Error(text string) string   { return text }
func (nopStyler) Info(text string) string    { return text }
func (nopStyler) Muted(text string) string   { return text }
func (nopStyler) Header(text string) string  { return text }
func (nopStyler) Accent(text string) string  { return text }
