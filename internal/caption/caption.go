// Package caption composes post text from a repository impact summary.
package caption

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/footprint-tools/storyteller/internal/domain"
)

const (
	// launchThreshold is the commit count at or below which a repository is
	// announced as a launch rather than an upgrade.
	launchThreshold = 5

	scanCommits    = 3
	fallbackMaxLen = 80

	HookLaunch  = "launch"
	HookUpgrade = "upgrade"

	productLine  = "Turning raw git history into stories worth sharing, automatically."
	callToAction = "👉 Star it, fork it, ship with it:"
	hashtags     = "#buildinpublic #opensource #devtools"
)

type group struct {
	keywords []string
	label    string
}

// groups are evaluated in order; the first group with a match wins.
var groups = []group{
	{[]string{"mcp", "model context protocol", "protocol"}, "MCP integration for AI-native workflows"},
	{[]string{"browser", "playwright", "chromium", "automation"}, "Browser automation that posts for you"},
	{[]string{"visual", "template", "render", "screenshot", "image"}, "Fresh visual templates for every commit"},
	{[]string{"api", "endpoint", "webhook"}, "New API surface for integrations"},
	{[]string{"auth", "login", "oauth", "token", "session"}, "Hardened authentication flow"},
	{[]string{"storage", "database", "cache", "persist", "history"}, "Smarter storage and history tracking"},
	{[]string{"ui", "interface", "layout", "style", "theme"}, "Polished UI and theming"},
}

var conventionalPrefix = regexp.MustCompile(`^(feat|fix|chore|docs|refactor|perf|test|style|build|ci)(\([^)]*\))?!?:\s*`)

// HookType reports which opening the caption uses.
func HookType(impact domain.RepositoryImpact) string {
	if impact.TotalCommits <= launchThreshold {
		return HookLaunch
	}
	return HookUpgrade
}

// Compose builds the post text. link is optional. Output is deterministic
// and has no length limit.
func Compose(impact domain.RepositoryImpact, link string) string {
	var lines []string

	if HookType(impact) == HookLaunch {
		lines = append(lines, "🚀 "+impact.Name+" v1.0 is live!")
	} else {
		lines = append(lines, "⚡ Major upgrade just landed in "+impact.Name+"!")
	}
	lines = append(lines, "", productLine)

	if h := highlight(impact.RecentChanges); h != "" {
		lines = append(lines, "", h)
	}

	lines = append(lines, "", callToAction)
	if link = strings.TrimSpace(link); link != "" {
		lines = append(lines, link)
	}
	lines = append(lines, "", hashtags)

	return strings.Join(lines, "\n")
}

func highlight(commits []domain.CommitRecord) string {
	window := commits
	if len(window) > scanCommits {
		window = window[:scanCommits]
	}

	for _, c := range window {
		words := wordStarts(strings.ToLower(c.Message))
		for _, g := range groups {
			if matchAny(words, g.keywords) {
				return "✨ " + g.label
			}
		}
	}

	if len(commits) == 1 {
		if msg := cleanMessage(commits[0].Message); msg != "" {
			return "✨ " + msg
		}
	}
	return ""
}

// wordStarts returns the suffixes of s that begin at a word boundary.
func wordStarts(s string) []string {
	var out []string
	prev := ' '
	for i, r := range s {
		isWord := unicode.IsLetter(r) || unicode.IsDigit(r)
		prevWord := unicode.IsLetter(prev) || unicode.IsDigit(prev)
		if isWord && !prevWord {
			out = append(out, s[i:])
		}
		prev = r
	}
	return out
}

func matchAny(starts, keywords []string) bool {
	for _, s := range starts {
		for _, k := range keywords {
			if strings.HasPrefix(s, k) {
				return true
			}
		}
	}
	return false
}

func cleanMessage(msg string) string {
	msg = strings.TrimSpace(msg)
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	msg = strings.TrimSpace(conventionalPrefix.ReplaceAllString(msg, ""))

	runes := []rune(msg)
	if len(runes) > fallbackMaxLen {
		msg = string(runes[:fallbackMaxLen])
	}
	return msg
}
