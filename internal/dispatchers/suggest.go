package dispatchers

import (
	"slices"
	"strings"
)

// maxSuggestDistance bounds how far a typo may be from a candidate.
const maxSuggestDistance = 3

// editDistance is the Levenshtein distance over runes, ignoring case.
// Only two rows of the matrix are kept.
func editDistance(a, b string) int {
	ra := []rune(strings.ToLower(a))
	rb := []rune(strings.ToLower(b))
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}

type candidate struct {
	name  string
	score int
}

// closest ranks candidates against input. A candidate that starts with
// the input ranks ahead of every edit-distance match, so "hist" finds
// "history" even though they are four edits apart.
func closest(input string, names []string, limit int) []string {
	if input == "" || limit <= 0 {
		return nil
	}
	lower := strings.ToLower(input)

	var ranked []candidate
	for _, name := range names {
		if strings.EqualFold(name, input) {
			continue
		}
		if strings.HasPrefix(strings.ToLower(name), lower) {
			ranked = append(ranked, candidate{name: name, score: 0})
			continue
		}
		if d := editDistance(input, name); d <= maxSuggestDistance {
			ranked = append(ranked, candidate{name: name, score: d})
		}
	}

	slices.SortFunc(ranked, func(a, b candidate) int {
		if a.score != b.score {
			return a.score - b.score
		}
		return strings.Compare(a.name, b.name)
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	out := make([]string, len(ranked))
	for i, c := range ranked {
		out[i] = c.name
	}
	return out
}

// FindSimilarCommands suggests up to maxResults children of node that
// look like input.
func FindSimilarCommands(input string, node *DispatchNode, maxResults int) []string {
	if node == nil || len(node.Children) == 0 {
		return nil
	}
	names := make([]string, 0, len(node.Children))
	for name := range node.Children {
		names = append(names, name)
	}
	return closest(input, names, maxResults)
}

// FindSimilarFlags suggests flags from valid for a mistyped flag such as
// "--watchlist". Any "=value" suffix of input is ignored.
func FindSimilarFlags(input string, valid map[string]bool, maxResults int) []string {
	name, _, _ := strings.Cut(input, "=")
	names := make([]string, 0, len(valid))
	for flag := range valid {
		// single-dash aliases are too short to be useful suggestions
		if strings.HasPrefix(flag, "--") {
			names = append(names, flag)
		}
	}
	return closest(name, names, maxResults)
}

// FindNestedCommands suggests full command paths whose last word is
// within one edit of input, so "init" finds "config init".
func FindNestedCommands(input string, root *DispatchNode, maxResults int) []string {
	var out []string
	for _, path := range CollectAllCommands(root, "") {
		i := strings.LastIndex(path, " ")
		if i < 0 || editDistance(path[i+1:], input) > 1 {
			continue
		}
		out = append(out, path)
		if len(out) == maxResults {
			break
		}
	}
	return out
}

// CollectAllCommands lists every command path below node, space separated
// and sorted.
func CollectAllCommands(node *DispatchNode, prefix string) []string {
	if node == nil {
		return nil
	}

	var commands []string
	for name, child := range node.Children {
		path := name
		if prefix != "" {
			path = prefix + " " + name
		}
		commands = append(commands, path)
		commands = append(commands, CollectAllCommands(child, path)...)
	}
	slices.Sort(commands)
	return commands
}
