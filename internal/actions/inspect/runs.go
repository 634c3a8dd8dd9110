package inspect

import (
	"fmt"
	"math"

	"github.com/footprint-tools/storyteller/internal/app"
	"github.com/footprint-tools/storyteller/internal/dispatchers"
	"github.com/footprint-tools/storyteller/internal/domain"
	"github.com/footprint-tools/storyteller/internal/pipeline"
)

const defaultRunLimit = 20

func Runs(a *app.App) dispatchers.CommandFunc {
	return func(args []string, flags *dispatchers.ParsedFlags) error {
		return runs(args, flags, DefaultDeps(a))
	}
}

func runs(_ []string, flags *dispatchers.ParsedFlags, deps Deps) error {
	limit, err := flags.IntBetween("--limit", defaultRunLimit, 1, math.MaxInt)
	if err != nil {
		return err
	}

	records, err := deps.ListRuns(domain.RunFilter{
		RepoName: flags.String("--repo", ""),
		Limit:    limit,
	})
	if err != nil {
		return err
	}

	if flags.Has("--json") {
		return printJSON(deps, records)
	}
	if len(records) == 0 {
		_, _ = deps.Println("No runs recorded yet")
		return nil
	}

	s := deps.Styler
	_, _ = deps.Println(s.Header(fmt.Sprintf("%-5s %-14s %-20s %-8s %-15s %s", "ID", "STARTED", "REPOSITORY", "MODE", "STATE", "COMMIT")))
	for _, r := range records {
		_, _ = deps.Printf("%-5d %-14s %-20s %-8s %s %s\n",
			r.ID,
			deps.Format.DateTimeShort(r.StartedAt.Local()),
			r.RepoName,
			r.Mode,
			runState(s, r.State),
			s.Muted(shortHash(r.CommitHash)),
		)
		if r.Error != "" {
			_, _ = deps.Printf("      %s %s\n", s.Muted("error:"), r.Error)
		}
	}
	return nil
}

func runState(s domain.Styler, state string) string {
	label := fmt.Sprintf("%-15s", state)
	switch st := pipeline.State(state); {
	case st.Failed():
		return s.Error(label)
	case st == pipeline.StatePosted:
		return s.Success(label)
	case st == pipeline.StatePreviewed:
		return s.Info(label)
	default:
		return s.Muted(label)
	}
}
