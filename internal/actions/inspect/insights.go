package inspect

import (
	"errors"
	"fmt"
	"sort"

	"github.com/footprint-tools/storyteller/internal/app"
	"github.com/footprint-tools/storyteller/internal/dispatchers"
	"github.com/footprint-tools/storyteller/internal/learning"
)

const hookSuggestions = 3

func Insights(a *app.App) dispatchers.CommandFunc {
	return func(args []string, flags *dispatchers.ParsedFlags) error {
		return insights(args, flags, DefaultDeps(a))
	}
}

func insights(_ []string, flags *dispatchers.ParsedFlags, deps Deps) error {
	ledger, err := deps.Learning()
	if err != nil {
		return err
	}
	doc, err := ledger.Load()
	if err != nil {
		if !errors.Is(err, learning.ErrCorrupt) {
			return err
		}
		deps.Logger.Warn("%v", err)
	}

	in := doc.Insights()
	if flags.Has("--json") {
		return printJSON(deps, in)
	}
	if in.Empty() {
		_, _ = deps.Println("No posts recorded yet")
		return nil
	}

	s := deps.Styler
	_, _ = deps.Println(s.Header("Engagement"))
	_, _ = deps.Printf("  posts %d, total engagement %d, average %.1f\n", in.TotalPosts, in.TotalEngagement, in.AvgEngagement)
	if in.BestHookType != "" {
		_, _ = deps.Printf("  best hook %s\n", s.Success(in.BestHookType))
	}
	if in.BestTemplate != "" {
		_, _ = deps.Printf("  best template %s\n", s.Success(in.BestTemplate))
	}

	printPerformance(deps, "Hooks", in.HookPerformance)
	printPerformance(deps, "Templates", in.TemplatePerformance)

	if len(in.TopPosts) > 0 {
		_, _ = deps.Println()
		_, _ = deps.Println(s.Header("Top posts"))
		for i, p := range in.TopPosts {
			_, _ = deps.Printf("  %d. %s %s\n", i+1, s.Accent(fmt.Sprintf("[%d]", p.Engagement)), firstLine(p.Content))
		}
	}

	if hooks := doc.HookSuggestions(hookSuggestions); len(hooks) > 0 {
		_, _ = deps.Println()
		_, _ = deps.Println(s.Header("Openers that worked"))
		for _, h := range hooks {
			_, _ = deps.Printf("  %s %s\n", s.Muted("-"), h)
		}
	}
	return nil
}

// printPerformance lists keys by average engagement, highest first.
func printPerformance(deps Deps, title string, perf map[string]learning.Performance) {
	if len(perf) == 0 {
		return
	}
	keys := make([]string, 0, len(perf))
	for k := range perf {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := perf[keys[i]], perf[keys[j]]
		if a.AvgEngagement != b.AvgEngagement {
			return a.AvgEngagement > b.AvgEngagement
		}
		return keys[i] < keys[j]
	})

	_, _ = deps.Println()
	_, _ = deps.Println(deps.Styler.Header(title))
	for _, k := range keys {
		p := perf[k]
		_, _ = deps.Printf("  %-16s %6.1f avg over %d\n", k, p.AvgEngagement, p.PostCount)
	}
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
