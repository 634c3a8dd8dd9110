package cli

import "github.com/footprint-tools/storyteller/internal/dispatchers"

var (
	TargetArg = []dispatchers.ArgSpec{
		{
			Name:        "target",
			Description: "Remote git URL or local repository path",
			Required:    true,
		},
	}

	OptionalRepoNameArg = []dispatchers.ArgSpec{
		{
			Name:        "name",
			Description: "Repository name as written in the history (lists all when omitted)",
			Required:    false,
		},
	}

	PostIDArg = []dispatchers.ArgSpec{
		{
			Name:        "post-id",
			Description: "Post id from the learning ledger",
			Required:    true,
		},
	}

	CommitHashArg = []dispatchers.ArgSpec{
		{
			Name:        "commit-hash",
			Description: "Commit hash to derive the palette from",
			Required:    true,
		},
	}

	ShellArg = []dispatchers.ArgSpec{
		{
			Name:        "shell",
			Description: "bash, zsh or fish (prints loading instructions when omitted)",
			Required:    false,
		},
	}

	ConfigKeyArg = []dispatchers.ArgSpec{
		{
			Name:        "key",
			Description: "Configuration key",
			Required:    true,
		},
	}
)
