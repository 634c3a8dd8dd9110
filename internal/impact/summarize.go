package impact

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/footprint-tools/storyteller/internal/domain"
	"github.com/footprint-tools/storyteller/internal/log"
)

// ErrRepositoryUnavailable is wrapped by every error caused by a repository
// that could not be opened, cloned or read.
var ErrRepositoryUnavailable = errors.New("repository unavailable")

const (
	// DefaultWindow is the number of recent commits analyzed, and also the
	// largest window allowed.
	DefaultWindow = 10

	maxHighlights   = 3
	breakingScan    = 3
	breakingMsgLen  = 50
	descriptionLen  = 200
	fallbackSummary = "A software development repository"
)

var readmeCandidates = []string{"README.md", "README.txt", "README"}

var breakingKeywords = []string{"major", "breaking", "rewrite"}

// Summarizer reads a repository's recent commits and derives its impact.
type Summarizer struct {
	Reader domain.RepositoryReader
	Window int
	Logger domain.Logger
}

// Options adjusts a single Analyze call.
type Options struct {
	// RecentSince, when set, also collects commits newer than this instant.
	RecentSince time.Time
	RecentMax   int
}

// Analysis is the result of Analyze.
type Analysis struct {
	Impact domain.RepositoryImpact
	// Recent holds the RecentSince commits. It is informational only.
	Recent []domain.CommitRecord
}

func NewSummarizer(reader domain.RepositoryReader, window int, logger domain.Logger) *Summarizer {
	if logger == nil {
		logger = log.NopLogger{}
	}
	return &Summarizer{Reader: reader, Window: window, Logger: logger}
}

// Analyze opens target, reads the commit window and aggregates it under name.
// The repository handle is always closed before returning.
func (s *Summarizer) Analyze(ctx context.Context, name string, target domain.Target, opts Options) (Analysis, error) {
	h, err := s.Reader.Open(ctx, target)
	if err != nil {
		return Analysis{}, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	defer func() {
		if err := h.Close(); err != nil {
			s.logger().Warn("impact: close %s: %v", target.Location, err)
		}
	}()

	window := s.Window
	if window <= 0 || window > DefaultWindow {
		window = DefaultWindow
	}

	commits, err := s.Reader.ListCommits(ctx, h, window)
	if err != nil {
		return Analysis{}, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	total, err := s.Reader.CountCommits(ctx, h)
	if err != nil {
		return Analysis{}, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}

	result := Analysis{Impact: Summarize(name, Description(h.Root()), classifyAll(commits), total)}

	if !opts.RecentSince.IsZero() {
		recent, err := s.Reader.CommitsSince(ctx, h, opts.RecentSince, opts.RecentMax)
		if err != nil {
			s.logger().Warn("impact: recent commits for %s: %v", name, err)
		} else {
			result.Recent = classifyAll(recent)
		}
	}

	return result, nil
}

// RecentSince lists up to max commits newer than since without aggregating them.
func (s *Summarizer) RecentSince(ctx context.Context, target domain.Target, since time.Time, max int) ([]domain.CommitRecord, error) {
	h, err := s.Reader.Open(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	defer func() { _ = h.Close() }()

	commits, err := s.Reader.CommitsSince(ctx, h, since, max)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	return classifyAll(commits), nil
}

func (s *Summarizer) logger() domain.Logger {
	if s.Logger == nil {
		return log.NopLogger{}
	}
	return s.Logger
}

// classifyAll fills SemanticImpact on fresh copies of the records.
func classifyAll(commits []domain.CommitRecord) []domain.CommitRecord {
	out := make([]domain.CommitRecord, len(commits))
	for i, c := range commits {
		if c.SemanticImpact == "" {
			c.SemanticImpact = Classify(c.Message)
		}
		out[i] = c
	}
	return out
}

// Summarize aggregates an already classified window (newest first).
func Summarize(name, description string, commits []domain.CommitRecord, total int) domain.RepositoryImpact {
	return domain.RepositoryImpact{
		Name:             name,
		Description:      description,
		RecentChanges:    commits,
		TotalCommits:     total,
		MarketingHooks:   MarketingHooks(commits),
		VisualHighlights: VisualHighlights(commits),
	}
}

// MarketingHooks emits one phrase per nonzero feature, bug-fix and
// performance count, in that order, or a generic phrase when all are zero.
func MarketingHooks(commits []domain.CommitRecord) []string {
	var features, fixes, perf int
	for _, c := range commits {
		switch c.SemanticImpact {
		case domain.ImpactFeature:
			features++
		case domain.ImpactBugFix:
			fixes++
		case domain.ImpactPerformance:
			perf++
		}
	}

	var hooks []string
	if features > 0 {
		hooks = append(hooks, fmt.Sprintf("🚀 %d new %s shipped", features, plural(features, "feature")))
	}
	if fixes > 0 {
		hooks = append(hooks, fmt.Sprintf("🐛 %d %s squashed", fixes, plural(fixes, "bug")))
	}
	if perf > 0 {
		hooks = append(hooks, fmt.Sprintf("⚡ Performance improvements across %d %s", perf, plural(perf, "component")))
	}
	if len(hooks) == 0 {
		hooks = append(hooks, fmt.Sprintf("💪 %d commits pushing the codebase forward", len(commits)))
	}
	return hooks
}

// VisualHighlights names the most frequently changed path and at most one
// breaking change among the first commits. Capped at 3 entries.
func VisualHighlights(commits []domain.CommitRecord) []string {
	var highlights []string

	counts := make(map[string]int)
	var order []string
	for _, c := range commits {
		for _, f := range c.FilesChanged {
			if counts[f] == 0 {
				order = append(order, f)
			}
			counts[f]++
		}
	}

	// strictly greater keeps the first-seen path on ties
	top, topCount := "", 0
	for _, f := range order {
		if counts[f] > topCount {
			top, topCount = f, counts[f]
		}
	}
	if top != "" {
		highlights = append(highlights, "Most active file: "+top)
	}

	for i, c := range commits {
		if i >= breakingScan {
			break
		}
		if containsAny(strings.ToLower(c.Message), breakingKeywords) {
			highlights = append(highlights, fmt.Sprintf("🔥 Breaking change: %s...", truncateRunes(c.Message, breakingMsgLen)))
			break
		}
	}

	if len(highlights) > maxHighlights {
		highlights = highlights[:maxHighlights]
	}
	return highlights
}

// Description returns the first non-blank, non-heading line of the first
// README candidate found in root, truncated to 200 characters.
func Description(root string) string {
	for _, name := range readmeCandidates {
		if line, ok := firstProseLine(filepath.Join(root, name)); ok {
			return truncateRunes(line, descriptionLen)
		}
	}
	return fallbackSummary
}

// firstProseLine returns the first non-blank line of path that is not a
// markdown heading. Lines of any length are read whole.
func firstProseLine(path string) (string, bool) {
	f, err := os.Open(path)
	if err != nil {
		return "", false
	}
	defer f.Close()

	r := bufio.NewReader(f)
	for {
		raw, err := r.ReadString('\n')
		line := strings.TrimSpace(raw)
		if line != "" && !strings.HasPrefix(line, "#") {
			return line, true
		}
		if err != nil {
			return "", false
		}
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
