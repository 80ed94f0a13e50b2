package ui

import (
	"sort"
	"strings"
)

const (
	// DefaultMaxDistance is the default maximum edit distance for a suggestion
	DefaultMaxDistance = 2
	// DefaultMaxSuggestions is the default maximum number of suggestions to return
	DefaultMaxSuggestions = 3
)

// SuggestOptions configures spelling suggestions
type SuggestOptions struct {
	MaxDistance    int // Maximum Levenshtein distance to consider (default: 2)
	MaxSuggestions int // Maximum number of suggestions to return (default: 3)
}

type suggestion struct {
	value    string
	distance int
}

// Suggest returns the candidates closest to word, nearest first. Ties keep
// alphabetical order. Comparison is case-insensitive.
//
// Example:
//
//	Suggest("teh", []string{"the", "ten", "tea", "markdown"}, nil)
//	// Returns: ["tea", "ten", "the"]
func Suggest(word string, candidates []string, opts *SuggestOptions) []string {
	maxDistance, maxSuggestions := DefaultMaxDistance, DefaultMaxSuggestions
	if opts != nil {
		if opts.MaxDistance > 0 {
			maxDistance = opts.MaxDistance
		}
		if opts.MaxSuggestions > 0 {
			maxSuggestions = opts.MaxSuggestions
		}
	}

	target := []rune(strings.ToLower(word))

	var matches []suggestion
	for _, candidate := range candidates {
		other := []rune(strings.ToLower(candidate))

		// Length difference is a lower bound on the distance.
		if abs(len(target)-len(other)) > maxDistance {
			continue
		}

		if dist := LevenshteinDistance(target, other); dist <= maxDistance {
			matches = append(matches, suggestion{value: candidate, distance: dist})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].distance != matches[j].distance {
			return matches[i].distance < matches[j].distance
		}
		return matches[i].value < matches[j].value
	})

	result := make([]string, 0, maxSuggestions)
	for i := 0; i < len(matches) && i < maxSuggestions; i++ {
		result = append(result, matches[i].value)
	}

	return result
}

// LevenshteinDistance is the minimum number of single-rune insertions,
// deletions or substitutions turning s1 into s2.
func LevenshteinDistance(s1, s2 []rune) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	// Two rows of the edit matrix are enough.
	prev := make([]int, len(s2)+1)
	curr := make([]int, len(s2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(s1); i++ {
		curr[0] = i
		for j := 1; j <= len(s2); j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(s2)]
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
