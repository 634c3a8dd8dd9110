package cli

import (
	"github.com/footprint-tools/storyteller/internal/actions"
	configactions "github.com/footprint-tools/storyteller/internal/actions/config"
	"github.com/footprint-tools/storyteller/internal/actions/inspect"
	"github.com/footprint-tools/storyteller/internal/actions/publish"
	"github.com/footprint-tools/storyteller/internal/app"
	"github.com/footprint-tools/storyteller/internal/dispatchers"
)

// BuildTree wires every command to its action. Actions read their
// dependencies from a when they run.
func BuildTree(a *app.App) *dispatchers.DispatchNode {
	root := dispatchers.Root(dispatchers.RootSpec{
		Name:    "story",
		Summary: "Turn recent git history into social posts",
		Usage:   "story <command> [flags]",
		Flags:   RootFlags,
	})

	addPublishCommands(root, a)
	addServiceCommands(root, a)
	addInspectCommands(root, a)
	addConfigCommands(root, a)
	addPlumbingCommands(root, a)

	dispatchers.Command(dispatchers.CommandSpec{
		Name:    "version",
		Parent:  root,
		Summary: "Show story version",
		Usage:   "story version [--verbose]",
		Flags:   VersionFlags,
		Action:  actions.ShowVersion,
	})

	dispatchers.Command(dispatchers.CommandSpec{
		Name:    "completions",
		Parent:  root,
		Summary: "Print a shell completion script",
		Usage:   "story completions [bash|zsh|fish]",
		Args:    ShellArg,
		Action:  actions.Completions(root),
	})

	return root
}

func addPublishCommands(root *dispatchers.DispatchNode, a *app.App) {
	dispatchers.Command(dispatchers.CommandSpec{
		Name:    "run",
		Parent:  root,
		Summary: "Analyze one repository and post about it",
		Description: `Clones or opens the target, summarizes its recent commits and posts
about the newest one unless it was already posted. --test writes the
rendered image and caption to paths.output_dir without publishing.`,
		Usage:    "story run <target> [--test|--confirm] [--template=<name>] [--ref=<ref>] [--name=<name>]",
		Flags:    RunFlags,
		Args:     TargetArg,
		Action:   publish.Run(a),
		Category: dispatchers.CategoryPublish,
	})

	dispatchers.Command(dispatchers.CommandSpec{
		Name:    "watch",
		Parent:  root,
		Summary: "Run every enabled repository of the watch list once",
		Description: `Repositories run one after another, separated by timing.between_repos_sec.
A failure in one repository does not stop the batch.`,
		Usage:    "story watch [--test|--confirm] [--watch-list=<path>] [--no-delay]",
		Flags:    WatchFlags,
		Action:   publish.Watch(a),
		Category: dispatchers.CategoryPublish,
	})
}

func addServiceCommands(root *dispatchers.DispatchNode, a *app.App) {
	dispatchers.Command(dispatchers.CommandSpec{
		Name:    "daemon",
		Parent:  root,
		Summary: "Run the watch list on a schedule",
		Description: `Runs the watch list in auto mode whenever the schedule fires, until
interrupted. The watch list and history are re-read before every run.`,
		Usage:    "story daemon [--schedule=<cron>] [--now] [--watch-list=<path>]",
		Flags:    DaemonFlags,
		Action:   publish.Daemon(a),
		Category: dispatchers.CategoryServices,
	})

	dispatchers.Command(dispatchers.CommandSpec{
		Name:    "webhook",
		Parent:  root,
		Summary: "Post when GitHub reports a push or a release",
		Description: `Listens for GitHub webhooks on POST /webhook/github. Push events run the
pushed branch, published releases run the release tag. Requests are
verified with the shared secret when one is configured.`,
		Usage:    "story webhook [--port=<port>] [--secret=<secret>] [--test]",
		Flags:    WebhookFlags,
		Action:   publish.Webhook(a),
		Category: dispatchers.CategoryServices,
	})
}

func addInspectCommands(root *dispatchers.DispatchNode, a *app.App) {
	dispatchers.Command(dispatchers.CommandSpec{
		Name:     "history",
		Parent:   root,
		Summary:  "Show what has been tracked and posted",
		Usage:    "story history [name] [--json]",
		Flags:    HistoryFlags,
		Args:     OptionalRepoNameArg,
		Action:   inspect.History(a),
		Category: dispatchers.CategoryInspect,
	})

	dispatchers.Command(dispatchers.CommandSpec{
		Name:     "runs",
		Parent:   root,
		Summary:  "List recent runs from the run ledger",
		Usage:    "story runs [--repo=<name>] [--limit=<n>] [--json]",
		Flags:    RunsFlags,
		Action:   inspect.Runs(a),
		Category: dispatchers.CategoryInspect,
	})

	dispatchers.Command(dispatchers.CommandSpec{
		Name:     "insights",
		Parent:   root,
		Summary:  "Show which hooks and templates perform best",
		Usage:    "story insights [--json]",
		Flags:    InsightsFlags,
		Action:   inspect.Insights(a),
		Category: dispatchers.CategoryInspect,
	})
}

func addConfigCommands(root *dispatchers.DispatchNode, a *app.App) {
	config := dispatchers.Group(dispatchers.GroupSpec{
		Name:     "config",
		Parent:   root,
		Summary:  "Inspect and create the configuration file",
		Usage:    "story config <command>",
		Category: dispatchers.CategoryConfig,
	})

	dispatchers.Command(dispatchers.CommandSpec{
		Name:     "list",
		Parent:   config,
		Summary:  "List all configuration values",
		Usage:    "story config list [--json]",
		Flags:    ConfigListFlags,
		Action:   configactions.List(a),
		Category: dispatchers.CategoryConfig,
	})

	dispatchers.Command(dispatchers.CommandSpec{
		Name:     "get",
		Parent:   config,
		Summary:  "Print one configuration value",
		Usage:    "story config get <key>",
		Args:     ConfigKeyArg,
		Action:   configactions.Get(a),
		Category: dispatchers.CategoryConfig,
	})

	dispatchers.Command(dispatchers.CommandSpec{
		Name:     "path",
		Parent:   config,
		Summary:  "Print the configuration file location",
		Usage:    "story config path",
		Action:   configactions.Path(a),
		Category: dispatchers.CategoryConfig,
	})

	dispatchers.Command(dispatchers.CommandSpec{
		Name:     "init",
		Parent:   config,
		Summary:  "Write a configuration file with the defaults",
		Usage:    "story config init",
		Action:   configactions.Init(a),
		Category: dispatchers.CategoryConfig,
	})
}

func addPlumbingCommands(root *dispatchers.DispatchNode, a *app.App) {
	dispatchers.Command(dispatchers.CommandSpec{
		Name:    "metrics",
		Parent:  root,
		Summary: "Record the engagement of a published post",
		Description: `Updates the learning ledger with the counters you read off the platform.
Hook and template performance is recomputed from all posts.`,
		Usage:    "story metrics <post-id> [--likes=<n>] [--retweets=<n>] [--replies=<n>] [--views=<n>]",
		Flags:    MetricsFlags,
		Args:     PostIDArg,
		Action:   inspect.Metrics(a),
		Category: dispatchers.CategoryPlumbing,
	})

	dispatchers.Command(dispatchers.CommandSpec{
		Name:     "seed",
		Parent:   root,
		Summary:  "Show the palette a commit hash renders with",
		Usage:    "story seed <commit-hash> [--theme=<dark|light>]",
		Flags:    SeedFlags,
		Args:     CommitHashArg,
		Action:   inspect.Seed(a),
		Category: dispatchers.CategoryPlumbing,
	})
}
