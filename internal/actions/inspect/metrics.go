package inspect

import (
	"errors"
	"math"

	"github.com/footprint-tools/storyteller/internal/app"
	"github.com/footprint-tools/storyteller/internal/dispatchers"
	"github.com/footprint-tools/storyteller/internal/learning"
	"github.com/footprint-tools/storyteller/internal/usage"
)

func Metrics(a *app.App) dispatchers.CommandFunc {
	return func(args []string, flags *dispatchers.ParsedFlags) error {
		return metrics(args, flags, DefaultDeps(a))
	}
}

// metrics records the engagement counters of a published post.
func metrics(args []string, flags *dispatchers.ParsedFlags, deps Deps) error {
	if len(args) < 1 {
		return usage.MissingArgument("post-id")
	}
	postID := args[0]

	var counts [4]int
	for i, name := range []string{"--likes", "--retweets", "--replies", "--views"} {
		n, err := countFlag(flags, name)
		if err != nil {
			return err
		}
		counts[i] = n
	}
	m := learning.NewMetrics(counts[0], counts[1], counts[2], counts[3])

	ledger, err := deps.Learning()
	if err != nil {
		return err
	}
	if err := ledger.UpdateMetrics(postID, m); err != nil {
		if errors.Is(err, learning.ErrPostNotFound) {
			return usage.InvalidValue("post-id", postID, "no such post, see 'story insights --json'")
		}
		return err
	}

	deps.Logger.Info("metrics: updated %s (engagement %d)", postID, m.TotalEngagement)
	_, _ = deps.Printf("updated %s: engagement %d", deps.Styler.Accent(postID), m.TotalEngagement)
	if m.Views > 0 {
		_, _ = deps.Printf(", rate %.2f%%", m.EngagementRate)
	}
	_, _ = deps.Println()
	return nil
}

func countFlag(flags *dispatchers.ParsedFlags, name string) (int, error) {
	return flags.IntBetween(name, 0, 0, math.MaxInt)
}
