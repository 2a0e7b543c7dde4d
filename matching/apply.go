package matching

import (
	"log/slog"
	"strings"

	"accpipeline/transform"
)

// PersonPhone is one phone returned by the skip-trace API together with
// the name it is registered to.
type PersonPhone struct {
	Number    string
	FirstName string
	LastName  string
}

// PersonEmail is one email returned by the skip-trace API together with
// the name it is registered to.
type PersonEmail struct {
	Address   string
	FirstName string
	LastName  string
}

// EnrichedRecord is a target record joined with skip-trace results: up to
// ten phone and ten email contacts, each carrying the person's name.
// Match is populated by ApplyNameMatching.
type EnrichedRecord struct {
	transform.TargetRecord

	Phones []PersonPhone
	Emails []PersonEmail

	Match MatchResult
}

// ContactNames collects the distinct full names attached to the record's
// phones and emails, in the order the API returned them.
func (r *EnrichedRecord) ContactNames() []string {
	seen := make(map[string]struct{})
	var names []string

	add := func(first, last string) {
		name := strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
		if name == "" {
			return
		}
		key := strings.ToUpper(name)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		names = append(names, name)
	}

	for _, p := range r.Phones {
		add(p.FirstName, p.LastName)
	}
	for _, e := range r.Emails {
		add(e.FirstName, e.LastName)
	}
	return names
}

// SourceNameIndex maps a source entity ID to its ordered principal names.
// The entity ID is the only supported join key between the registry export
// and enriched records; joining by address would collide whenever multiple
// entities share a mailing address.
type SourceNameIndex map[string][]string

// BuildSourceNameIndex builds the lookup from a registry export.
func BuildSourceNameIndex(records []transform.SourceRecord) SourceNameIndex {
	index := make(SourceNameIndex, len(records))
	for i := range records {
		id := strings.TrimSpace(records[i].EntityID)
		if id == "" {
			continue
		}
		index[id] = records[i].PrincipalNames()
	}
	return index
}

// ApplyNameMatching fills Match on every enriched record by joining back
// to the source entity on entity ID. A nil index or a join miss yields
// LabelNotAvailable with no missing names; there is deliberately no
// fallback to a lower-fidelity join key.
func ApplyNameMatching(matcher *NameMatcher, records []EnrichedRecord, index SourceNameIndex) {
	logger := slog.Default().With("component", "name_matching")
	misses := 0

	for i := range records {
		rec := &records[i]

		var sourceNames []string
		found := false
		if index != nil {
			sourceNames, found = index[strings.TrimSpace(rec.SourceEntityID)]
		}
		if !found {
			rec.Match = MatchResult{Percentage: LabelNotAvailable}
			misses++
			continue
		}

		pct, missing := matcher.CalculateMatchPercentage(sourceNames, rec.ContactNames())
		rec.Match = MatchResult{Percentage: pct, MissingNames: missing}
	}

	logger.Info("name matching applied",
		"records", len(records),
		"join_misses", misses)
}
