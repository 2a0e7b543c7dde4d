package normalization

import (
	"sort"
	"strings"
	"unicode"

	"github.com/antzucaro/matchr"
)

// FuzzyAlgorithms provides the string-similarity primitives used for
// name comparison and duplicate analysis.
type FuzzyAlgorithms struct{}

// NewFuzzyAlgorithms creates a new fuzzy-algorithm set.
func NewFuzzyAlgorithms() *FuzzyAlgorithms {
	return &FuzzyAlgorithms{}
}

// TokenSortRatio computes a 0-100 similarity score that is insensitive to
// word order: both strings are lowercased, tokenized, sorted and rejoined
// before Levenshtein comparison. "DOE JOHN" and "John Doe" score 100.
func (fa *FuzzyAlgorithms) TokenSortRatio(s1, s2 string) float64 {
	a := fa.sortedTokenString(s1)
	b := fa.sortedTokenString(s2)

	if a == "" && b == "" {
		return 100.0
	}
	if a == "" || b == "" {
		return 0.0
	}
	if a == b {
		return 100.0
	}

	distance := matchr.Levenshtein(a, b)
	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}

	return (1.0 - float64(distance)/float64(maxLen)) * 100.0
}

// JaroWinklerSimilarity returns the Jaro-Winkler score (0-1), which favors
// strings sharing a common prefix. Used for collapsing near-duplicate
// agent names in blacklist suggestions.
func (fa *FuzzyAlgorithms) JaroWinklerSimilarity(s1, s2 string) float64 {
	a := strings.ToLower(strings.TrimSpace(s1))
	b := strings.ToLower(strings.TrimSpace(s2))
	if a == "" || b == "" {
		return 0.0
	}
	return matchr.JaroWinkler(a, b, false)
}

// TokenSetJaccard computes the Jaccard index over the token sets of both
// strings.
func (fa *FuzzyAlgorithms) TokenSetJaccard(s1, s2 string) float64 {
	set1 := fa.tokenize(s1)
	set2 := fa.tokenize(s2)

	if len(set1) == 0 && len(set2) == 0 {
		return 1.0
	}
	if len(set1) == 0 || len(set2) == 0 {
		return 0.0
	}

	intersection := 0
	for token := range set1 {
		if _, ok := set2[token]; ok {
			intersection++
		}
	}

	union := len(set1) + len(set2) - intersection
	if union == 0 {
		return 0.0
	}

	return float64(intersection) / float64(union)
}

// sortedTokenString lowercases, tokenizes and re-joins tokens in sorted order.
func (fa *FuzzyAlgorithms) sortedTokenString(text string) string {
	tokens := strings.FieldsFunc(strings.ToLower(strings.TrimSpace(text)), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// tokenize splits a string into a set of lowercase tokens.
func (fa *FuzzyAlgorithms) tokenize(text string) map[string]int {
	tokens := make(map[string]int)
	words := strings.FieldsFunc(strings.ToLower(strings.TrimSpace(text)), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, word := range words {
		if word != "" {
			tokens[word]++
		}
	}
	return tokens
}
