package matching

import (
	"math"
	"strconv"
	"strings"

	"accpipeline/normalization"
)

const (
	// DefaultThreshold is the token-sort score at or above which two names
	// count as the same person.
	DefaultThreshold = 85.0

	// MaxMissingNames caps the missing-name list; the report reserves
	// exactly eight output slots.
	MaxMissingNames = 8

	// LabelNotAvailable marks rows with no source-entity lookup: no
	// comparison was possible. Distinct from "0" (compared, none matched).
	LabelNotAvailable = "N/A"

	// LabelFullMatch marks rows where every source name matched.
	LabelFullMatch = "100"

	// LabelExtraMatches marks rows where every source name matched and the
	// skip-trace API surfaced additional people beyond the source list.
	LabelExtraMatches = "100+"
)

// MatchResult is the per-record outcome of comparing source principal
// names to API-returned names.
type MatchResult struct {
	Percentage   string
	MissingNames []string
}

// NameMatcher scores source-entity principal names against names returned
// by the skip-trace API.
type NameMatcher struct {
	fuzzy     *normalization.FuzzyAlgorithms
	threshold float64
}

// NewNameMatcher creates a matcher with the given threshold; values <= 0
// fall back to DefaultThreshold.
func NewNameMatcher(threshold float64) *NameMatcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &NameMatcher{
		fuzzy:     normalization.NewFuzzyAlgorithms(),
		threshold: threshold,
	}
}

// FuzzyNameMatch reports whether two names score at or above the threshold
// under the token-sort ratio. Empty inputs never match.
func (m *NameMatcher) FuzzyNameMatch(name1, name2 string) bool {
	a := strings.TrimSpace(name1)
	b := strings.TrimSpace(name2)
	if a == "" || b == "" {
		return false
	}
	return m.fuzzy.TokenSortRatio(a, b) >= m.threshold
}

// CalculateMatchPercentage compares every source name (in original order)
// against the batch names, first hit wins. An empty source list is a
// vacuous full match. All-matched with extra batch names left over yields
// LabelExtraMatches; otherwise the rounded percentage, with the unmatched
// source names (capped at MaxMissingNames) returned in original order.
func (m *NameMatcher) CalculateMatchPercentage(ecorpNames, batchNames []string) (string, []string) {
	if len(ecorpNames) == 0 {
		return LabelFullMatch, []string{}
	}

	var missing []string
	for _, source := range ecorpNames {
		matched := false
		for _, batch := range batchNames {
			if m.FuzzyNameMatch(source, batch) {
				matched = true
				break
			}
		}
		if !matched {
			missing = append(missing, source)
		}
	}

	total := len(ecorpNames)
	matchCount := total - len(missing)

	switch {
	case matchCount == total && len(batchNames) > total:
		return LabelExtraMatches, []string{}
	case matchCount == total:
		return LabelFullMatch, []string{}
	}

	pct := float64(matchCount) / float64(total) * 100.0
	if len(missing) > MaxMissingNames {
		missing = missing[:MaxMissingNames]
	}
	return strconv.Itoa(int(math.Round(pct))), missing
}
