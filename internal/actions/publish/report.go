package publish

import (
	"fmt"
	"strings"

	"github.com/footprint-tools/storyteller/internal/dispatchers"
	"github.com/footprint-tools/storyteller/internal/domain"
	"github.com/footprint-tools/storyteller/internal/pipeline"
	"github.com/footprint-tools/storyteller/internal/usage"
)

// modeFromFlags maps --test / --confirm onto a mode. Neither flag keeps def.
func modeFromFlags(flags *dispatchers.ParsedFlags, def domain.Mode) (domain.Mode, error) {
	test, confirm := flags.Has("--test"), flags.Has("--confirm")
	switch {
	case test && confirm:
		return "", usage.ConflictingFlags("--test", "--confirm")
	case test:
		return domain.ModeTest, nil
	case confirm:
		return domain.ModeConfirm, nil
	default:
		return def, nil
	}
}

func stateLabel(s domain.Styler, st pipeline.State) string {
	label := fmt.Sprintf("%-15s", st)
	switch {
	case st.Failed():
		return s.Error(label)
	case st == pipeline.StatePosted:
		return s.Success(label)
	case st == pipeline.StateSkipped:
		return s.Muted(label)
	default:
		return s.Info(label)
	}
}

// formatOutcome renders one result line plus optional detail lines.
func formatOutcome(s domain.Styler, o pipeline.Outcome) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s", stateLabel(s, o.State), o.Repo)
	if o.CommitHash != "" {
		fmt.Fprintf(&b, " %s", s.Muted(o.CommitHash))
	}
	if o.FirstPost {
		fmt.Fprintf(&b, " %s", s.Warning("(first post)"))
	}
	b.WriteString("\n")

	if o.Err != nil {
		prefix := "error"
		if !o.Failed() {
			prefix = "warning"
		}
		fmt.Fprintf(&b, "  %s %v\n", s.Muted(prefix+":"), o.Err)
	}
	if o.ImagePath != "" {
		fmt.Fprintf(&b, "  %s %s\n", s.Muted("image:"), o.ImagePath)
	}
	if o.CaptionPath != "" {
		fmt.Fprintf(&b, "  %s %s\n", s.Muted("caption:"), o.CaptionPath)
	}
	if o.PostID != "" {
		fmt.Fprintf(&b, "  %s %s\n", s.Muted("post id:"), o.PostID)
	}
	if o.State == pipeline.StatePreviewed && o.Caption != "" {
		b.WriteString("\n")
		for _, line := range strings.Split(o.Caption, "\n") {
			fmt.Fprintf(&b, "  %s\n", line)
		}
	}

	return b.String()
}

// formatSummary renders the totals line of a batch.
func formatSummary(s domain.Styler, sum pipeline.Summary) string {
	parts := []string{fmt.Sprintf("%d processed", len(sum.Outcomes))}
	for _, st := range []pipeline.State{pipeline.StatePosted, pipeline.StatePreviewed, pipeline.StateSkipped} {
		if n := sum.Count(st); n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, st))
		}
	}
	if n := sum.Failures(); n > 0 {
		parts = append(parts, s.Error(fmt.Sprintf("%d failed", n)))
	}
	if sum.Disabled > 0 {
		parts = append(parts, fmt.Sprintf("%d disabled", sum.Disabled))
	}

	line := strings.Join(parts, ", ")
	if sum.Interrupted {
		line += " " + s.Warning("(interrupted)")
	}
	return line
}

// summaryError maps a batch onto the exit status.
func summaryError(sum pipeline.Summary) error {
	if sum.OK() {
		return nil
	}
	return usage.RunFailed(sum.Failures(), len(sum.Outcomes))
}
