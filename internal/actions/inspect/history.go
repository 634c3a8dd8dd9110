package inspect

import (
	"encoding/json"
	"fmt"

	"github.com/footprint-tools/storyteller/internal/app"
	"github.com/footprint-tools/storyteller/internal/dispatchers"
	"github.com/footprint-tools/storyteller/internal/history"
	"github.com/footprint-tools/storyteller/internal/usage"
)

// recentCommitsShown caps the commit log printed for one repository.
const recentCommitsShown = 10

func History(a *app.App) dispatchers.CommandFunc {
	return func(args []string, flags *dispatchers.ParsedFlags) error {
		return showHistory(args, flags, DefaultDeps(a))
	}
}

func showHistory(args []string, flags *dispatchers.ParsedFlags, deps Deps) error {
	store, err := deps.History()
	if err != nil {
		return err
	}

	if len(args) > 0 {
		return showEntry(store, args[0], flags.Has("--json"), deps)
	}

	if flags.Has("--json") {
		return printJSON(deps, store.Snapshot())
	}

	names := store.Names()
	if len(names) == 0 {
		_, _ = deps.Printf("No repositories tracked yet in %s\n", store.Path())
		return nil
	}

	s := deps.Styler
	_, _ = deps.Println(s.Header(fmt.Sprintf("%-24s %6s %-10s %s", "REPOSITORY", "POSTS", "LAST POST", "COMMITS")))
	for _, name := range names {
		e, _ := store.Entry(name)
		last := s.Muted("never")
		if e.LastTweetedAt != nil {
			last = deps.Format.Ago(*e.LastTweetedAt, deps.Now())
		}
		_, _ = deps.Printf("%-24s %6d %-10s %d\n", name, e.TweetsSent, last, len(e.Commits))
	}
	return nil
}

func showEntry(store *history.Store, name string, asJSON bool, deps Deps) error {
	e, ok := store.Entry(name)
	if !ok {
		return usage.InvalidValue("repository", name, "not in history, see 'story history'")
	}
	if asJSON {
		return printJSON(deps, e)
	}

	s := deps.Styler
	f := deps.Format
	row := func(label, value string) {
		_, _ = deps.Printf("  %s %s\n", s.Muted(fmt.Sprintf("%-16s", label+":")), value)
	}

	_, _ = deps.Println(s.Header(name))
	row("url", e.URL)
	row("first seen", f.DateTime(e.FirstSeen))
	row("last seen", f.DateTime(e.LastSeen))
	row("posts", fmt.Sprint(e.TweetsSent))
	if e.FirstTweetCommit != "" {
		row("first post", shortHash(e.FirstTweetCommit))
	}
	if e.LastTweetedCommit != "" {
		last := shortHash(e.LastTweetedCommit)
		if e.LastTweetedAt != nil {
			last += " " + s.Muted("("+f.Ago(*e.LastTweetedAt, deps.Now())+")")
		}
		row("last post", last)
	}
	if e.LatestCommit != nil {
		row("latest commit", shortHash(e.LatestCommit.Hash)+" "+e.LatestCommit.Message)
	}

	if len(e.Commits) == 0 {
		return nil
	}
	_, _ = deps.Println()
	_, _ = deps.Println(s.Header(fmt.Sprintf("Commits (%d tracked)", len(e.Commits))))

	// newest last on disk
	for i := len(e.Commits) - 1; i >= 0 && i >= len(e.Commits)-recentCommitsShown; i-- {
		c := e.Commits[i]
		marker := " "
		if c.Hash == e.LastTweetedCommit {
			marker = s.Success("*")
		}
		_, _ = deps.Printf("%s %s %s %s\n", marker, s.Accent(shortHash(c.Hash)), c.Message, s.Muted(c.Author))
	}
	return nil
}

func printJSON(deps Deps, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, _ = deps.Println(string(data))
	return nil
}
