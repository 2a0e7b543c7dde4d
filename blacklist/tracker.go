package blacklist

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"accpipeline/normalization"
)

// Store is the persistence boundary for the learning tracker. The SQLite
// implementation lives in the database package; tests use an in-memory one.
type Store interface {
	IncrementAgentCount(name string, n int) error
	AgentCounts(minSightings int) (map[string]int, error)
}

// Tracker accumulates how often each non-blacklisted agent name shows up
// across runs. Counts buffer in memory until Flush. Single-process use
// only; there is no cross-process locking.
type Tracker struct {
	store   Store
	pending map[string]int
	logger  *slog.Logger
}

// NewTracker creates a tracker over the given store.
func NewTracker(store Store) *Tracker {
	return &Tracker{
		store:   store,
		pending: make(map[string]int),
		logger:  slog.Default().With("component", "blacklist_tracker"),
	}
}

// Record notes one sighting of an agent name.
func (t *Tracker) Record(name string) {
	normalized := strings.ToUpper(strings.TrimSpace(name))
	if normalized == "" {
		return
	}
	t.pending[normalized]++
}

// Merge folds externally collected counts into the pending buffer.
func (t *Tracker) Merge(counts map[string]int) {
	for name, n := range counts {
		normalized := strings.ToUpper(strings.TrimSpace(name))
		if normalized == "" || n <= 0 {
			continue
		}
		t.pending[normalized] += n
	}
}

// Flush persists the pending counts and clears the buffer. A failed name
// stays pending so a retry does not lose sightings.
func (t *Tracker) Flush() error {
	for name, n := range t.pending {
		if err := t.store.IncrementAgentCount(name, n); err != nil {
			return fmt.Errorf("flush agent count for %q: %w", name, err)
		}
		delete(t.pending, name)
	}
	return nil
}

// Suggestion is one candidate blacklist addition. Advisory only: nothing
// is ever auto-applied.
type Suggestion struct {
	Name      string `json:"name"`
	Sightings int    `json:"sightings"`
	Reason    string `json:"reason"`
}

// Suggestions returns names seen at least threshold times that look like
// professional registered-agent services, most-seen first. Names already
// on the blacklist are excluded, and spelling variants of the same service
// collapse into the most-seen form with combined sightings.
func (t *Tracker) Suggestions(threshold int, current Set) ([]Suggestion, error) {
	if threshold < 1 {
		threshold = 1
	}

	counts, err := t.store.AgentCounts(threshold)
	if err != nil {
		return nil, fmt.Errorf("load agent counts: %w", err)
	}

	var suggestions []Suggestion
	for name, n := range counts {
		if IsBlacklistedName(name, current) {
			continue
		}
		reason, ok := classifyProfessionalAgent(name)
		if !ok {
			continue
		}
		suggestions = append(suggestions, Suggestion{Name: name, Sightings: n, Reason: reason})
	}

	sortSuggestions(suggestions)
	suggestions = collapseNearDuplicates(suggestions)
	sortSuggestions(suggestions)

	t.logger.Info("blacklist suggestions computed",
		"threshold", threshold,
		"candidates", len(counts),
		"suggested", len(suggestions))
	return suggestions, nil
}

func sortSuggestions(suggestions []Suggestion) {
	sort.Slice(suggestions, func(i, j int) bool {
		if suggestions[i].Sightings != suggestions[j].Sightings {
			return suggestions[i].Sightings > suggestions[j].Sightings
		}
		return suggestions[i].Name < suggestions[j].Name
	})
}

// Near-duplicate thresholds: Jaro-Winkler catches single-character drift
// ("AGENT" vs "AGENTS"), token-set Jaccard catches reordered or padded
// token lists. Either signal alone is enough to fold.
const (
	nearDuplicateJaroWinkler = 0.92
	nearDuplicateJaccard     = 0.8
)

// collapseNearDuplicates folds spelling variants of the same service into
// the most-seen form. Input must already be sorted most-seen first so the
// dominant spelling is the one kept.
func collapseNearDuplicates(suggestions []Suggestion) []Suggestion {
	fuzzy := normalization.NewFuzzyAlgorithms()
	kept := make([]Suggestion, 0, len(suggestions))
	for _, cand := range suggestions {
		merged := false
		for i := range kept {
			if fuzzy.JaroWinklerSimilarity(kept[i].Name, cand.Name) >= nearDuplicateJaroWinkler ||
				fuzzy.TokenSetJaccard(kept[i].Name, cand.Name) >= nearDuplicateJaccard {
				kept[i].Sightings += cand.Sightings
				merged = true
				break
			}
		}
		if !merged {
			kept = append(kept, cand)
		}
	}
	return kept
}
