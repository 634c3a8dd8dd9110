package cli

import "github.com/footprint-tools/storyteller/internal/dispatchers"

var (
	RootFlags = []dispatchers.FlagDescriptor{
		{
			Names:       []string{"--help", "-h"},
			Description: "Show help",
			Scope:       dispatchers.FlagScopeGlobal,
		},
		{
			Names:       []string{"--no-color"},
			Description: "Disable colored output",
			Scope:       dispatchers.FlagScopeGlobal,
		},
		{
			Names:       []string{"--no-pager"},
			Description: "Do not use pager for output",
			Scope:       dispatchers.FlagScopeGlobal,
		},
		{
			Names:       []string{"--pager"},
			ValueHint:   "<cmd>",
			Description: "Use specified pager for this command",
			Scope:       dispatchers.FlagScopeGlobal,
		},
	}

	modeFlags = []dispatchers.FlagDescriptor{
		{
			Names:       []string{"--test"},
			Description: "Render and write the post locally without publishing",
			Scope:       dispatchers.FlagScopeLocal,
		},
		{
			Names:       []string{"--confirm"},
			Description: "Fill in the post and wait for you to submit it in the browser",
			Scope:       dispatchers.FlagScopeLocal,
		},
		{
			Names:       []string{"--template"},
			ValueHint:   "<name>",
			Description: "Template to render (bento_metrics, carbon_x)",
			Scope:       dispatchers.FlagScopeLocal,
		},
	}

	watchListFlag = dispatchers.FlagDescriptor{
		Names:       []string{"--watch-list"},
		ValueHint:   "<path>",
		Description: "Watch list to read instead of paths.watch_list",
		Scope:       dispatchers.FlagScopeLocal,
	}

	jsonFlag = dispatchers.FlagDescriptor{
		Names:       []string{"--json"},
		Description: "Output as JSON",
		Scope:       dispatchers.FlagScopeLocal,
	}

	RunFlags = append(append([]dispatchers.FlagDescriptor{}, modeFlags...),
		dispatchers.FlagDescriptor{
			Names:       []string{"--ref"},
			ValueHint:   "<ref>",
			Description: "Branch, tag or commit to analyze",
			Scope:       dispatchers.FlagScopeLocal,
		},
		dispatchers.FlagDescriptor{
			Names:       []string{"--name"},
			ValueHint:   "<name>",
			Description: "History key for the repository (defaults to its last path segment)",
			Scope:       dispatchers.FlagScopeLocal,
		},
	)

	WatchFlags = append(append([]dispatchers.FlagDescriptor{}, modeFlags...),
		watchListFlag,
		dispatchers.FlagDescriptor{
			Names:       []string{"--no-delay"},
			Description: "Do not pause between repositories",
			Scope:       dispatchers.FlagScopeLocal,
		},
	)

	DaemonFlags = []dispatchers.FlagDescriptor{
		{
			Names:       []string{"--schedule"},
			ValueHint:   "<cron>",
			Description: "Cron expression or @every duration (defaults to daemon.schedule)",
			Scope:       dispatchers.FlagScopeLocal,
		},
		{
			Names:       []string{"--now"},
			Description: "Also run once immediately",
			Scope:       dispatchers.FlagScopeLocal,
		},
		watchListFlag,
	}

	WebhookFlags = []dispatchers.FlagDescriptor{
		{
			Names:       []string{"--port"},
			ValueHint:   "<port>",
			Description: "Port to listen on (defaults to webhook.port)",
			Scope:       dispatchers.FlagScopeLocal,
		},
		{
			Names:       []string{"--secret"},
			ValueHint:   "<secret>",
			Description: "GitHub webhook secret (defaults to $STORY_WEBHOOK_SECRET)",
			Scope:       dispatchers.FlagScopeLocal,
		},
		{
			Names:       []string{"--test"},
			Description: "Preview posts instead of publishing them",
			Scope:       dispatchers.FlagScopeLocal,
		},
		watchListFlag,
	}

	HistoryFlags = []dispatchers.FlagDescriptor{jsonFlag}

	RunsFlags = []dispatchers.FlagDescriptor{
		{
			Names:       []string{"--repo"},
			ValueHint:   "<name>",
			Description: "Only show runs of this repository",
			Scope:       dispatchers.FlagScopeLocal,
		},
		{
			Names:       []string{"--limit"},
			ValueHint:   "<n>",
			Description: "Limit number of results (default 20)",
			Scope:       dispatchers.FlagScopeLocal,
		},
		jsonFlag,
	}

	InsightsFlags = []dispatchers.FlagDescriptor{jsonFlag}

	MetricsFlags = []dispatchers.FlagDescriptor{
		{
			Names:       []string{"--likes"},
			ValueHint:   "<n>",
			Description: "Number of likes",
			Scope:       dispatchers.FlagScopeLocal,
		},
		{
			Names:       []string{"--retweets"},
			ValueHint:   "<n>",
			Description: "Number of reposts",
			Scope:       dispatchers.FlagScopeLocal,
		},
		{
			Names:       []string{"--replies"},
			ValueHint:   "<n>",
			Description: "Number of replies",
			Scope:       dispatchers.FlagScopeLocal,
		},
		{
			Names:       []string{"--views"},
			ValueHint:   "<n>",
			Description: "Number of views",
			Scope:       dispatchers.FlagScopeLocal,
		},
	}

	SeedFlags = []dispatchers.FlagDescriptor{
		{
			Names:       []string{"--theme"},
			ValueHint:   "<dark|light>",
			Description: "Render theme (defaults to theme)",
			Scope:       dispatchers.FlagScopeLocal,
		},
	}

	ConfigListFlags = []dispatchers.FlagDescriptor{jsonFlag}

	VersionFlags = []dispatchers.FlagDescriptor{
		{
			Names:       []string{"--verbose"},
			Description: "Include the Go version and platform",
			Scope:       dispatchers.FlagScopeLocal,
		},
	}
)

// ValueFlags lists the flags that take a value, so "--flag value" can be
// rewritten to "--flag=value" before dispatch.
func ValueFlags() map[string]bool {
	out := map[string]bool{}
	groups := [][]dispatchers.FlagDescriptor{
		RootFlags, RunFlags, WatchFlags, DaemonFlags, WebhookFlags,
		RunsFlags, MetricsFlags, SeedFlags,
	}
	for _, g := range groups {
		for _, f := range g {
			if f.ValueHint == "" {
				continue
			}
			for _, n := range f.Names {
				out[n] = true
			}
		}
	}
	return out
}
