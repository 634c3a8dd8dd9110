package domain

import "time"

// Impact is the semantic category assigned to a commit message.
type Impact string

const (
	ImpactBugFix        Impact = "bug-fix"
	ImpactFeature       Impact = "feature"
	ImpactRefactor      Impact = "refactor"
	ImpactPerformance   Impact = "performance"
	ImpactDocumentation Impact = "documentation"
	ImpactTesting       Impact = "testing"
	ImpactUpdate        Impact = "update"
)

var impactDescriptions = map[Impact]string{
	ImpactBugFix:        "Bug fix - Improved stability and fixed issues",
	ImpactFeature:       "Feature - Added new functionality",
	ImpactRefactor:      "Refactor - Code quality improvements",
	ImpactPerformance:   "Performance - Optimized for better performance",
	ImpactDocumentation: "Documentation - Updated documentation",
	ImpactTesting:       "Testing - Improved test coverage",
	ImpactUpdate:        "Update - General code changes",
}

// Describe returns the marketing phrase for the category.
func (i Impact) Describe() string {
	if d, ok := impactDescriptions[i]; ok {
		return d
	}
	return impactDescriptions[ImpactUpdate]
}

// CommitRecord is one commit as read from a repository.
type CommitRecord struct {
	Hash           string   `json:"hash"`
	Author         string   `json:"author"`
	Message        string   `json:"message"`
	Timestamp      string   `json:"timestamp"`
	FilesChanged   []string `json:"files_changed"`
	DiffSummary    string   `json:"diff_summary"`
	SemanticImpact Impact   `json:"semantic_impact"`
}

// RepositoryImpact aggregates the recent commit window of one repository.
type RepositoryImpact struct {
	Name             string
	Description      string
	RecentChanges    []CommitRecord // newest first
	TotalCommits     int
	MarketingHooks   []string
	VisualHighlights []string
}

// LatestHash returns the hash of the newest commit, or "".
func (r RepositoryImpact) LatestHash() string {
	if len(r.RecentChanges) == 0 {
		return ""
	}
	return r.RecentChanges[0].Hash
}

// Target identifies a repository to open.
type Target struct {
	Location string // local path or remote URL
	Ref      string // empty means HEAD
	Depth    int    // clone depth for remote URLs
}

// WatchedRepo is one entry of the watch list.
type WatchedRepo struct {
	Name    string `yaml:"name"`
	URL     string `yaml:"url"`
	Enabled bool   `yaml:"enabled"`
}

// Mode selects how the dispatcher finishes a run.
type Mode string

const (
	ModeTest    Mode = "test"
	ModeAuto    Mode = "auto"
	ModeConfirm Mode = "confirm"
)

// ParseMode maps a string to a Mode. Unknown values map to ModeTest.
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeTest, ModeAuto, ModeConfirm:
		return Mode(s), true
	default:
		return ModeTest, false
	}
}

// Viewport sizes a screenshot.
type Viewport struct {
	Width  int
	Height int
	Scale  float64
}

// RunRecord is one dispatcher run as stored in the run ledger.
type RunRecord struct {
	ID         int64
	RepoName   string
	Target     string
	Mode       Mode
	State      string
	CommitHash string
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

// RunFilter narrows ListRuns.
type RunFilter struct {
	RepoName string
	Limit    int
}
