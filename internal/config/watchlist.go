package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/footprint-tools/storyteller/internal/domain"
)

type watchListFile struct {
	WatchedRepos []yaml.Node `yaml:"watched_repos"`
}

type watchedRepoEntry struct {
	Name    string `yaml:"name"`
	URL     string `yaml:"url"`
	Enabled *bool  `yaml:"enabled"`
}

// LoadWatchList reads the watch list at path.
//
// Entries are decoded one at a time: a malformed entry is reported in the
// returned error while every valid entry is still returned. An error with
// a nil slice means the file itself could not be read or parsed.
func LoadWatchList(path string) ([]domain.WatchedRepo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read watch list: %w", err)
	}
	return ParseWatchList(data)
}

// ParseWatchList decodes a `watched_repos:` YAML document.
func ParseWatchList(data []byte) ([]domain.WatchedRepo, error) {
	var file watchListFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse watch list: %w", err)
	}

	repos := make([]domain.WatchedRepo, 0, len(file.WatchedRepos))
	seen := make(map[string]bool)
	var errs []error

	for i := range file.WatchedRepos {
		node := &file.WatchedRepos[i]

		var entry watchedRepoEntry
		if err := node.Decode(&entry); err != nil {
			errs = append(errs, fmt.Errorf("entry %d (line %d): %w", i+1, node.Line, err))
			continue
		}

		entry.Name = strings.TrimSpace(entry.Name)
		entry.URL = strings.TrimSpace(entry.URL)

		if entry.Name == "" || entry.URL == "" {
			errs = append(errs, fmt.Errorf("entry %d (line %d): name and url are required", i+1, node.Line))
			continue
		}
		if seen[entry.Name] {
			errs = append(errs, fmt.Errorf("entry %d (line %d): duplicate name %q", i+1, node.Line, entry.Name))
			continue
		}
		seen[entry.Name] = true

		enabled := true
		if entry.Enabled != nil {
			enabled = *entry.Enabled
		}

		repos = append(repos, domain.WatchedRepo{
			Name:    entry.Name,
			URL:     entry.URL,
			Enabled: enabled,
		})
	}

	return repos, errors.Join(errs...)
}
