package transform

import (
	"log/slog"
	"strings"
)

// Deduplicator collapses target records that describe the same underlying
// person/address pairing before they reach the paid skip-trace API.
type Deduplicator struct {
	logger *slog.Logger
}

// NewDeduplicator creates a new deduplicator.
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{
		logger: slog.Default().With("component", "deduplicator"),
	}
}

// dedupeKey builds the composite identity key: upper-cased, with empty
// fields contributing empty segments. Field order is fixed.
func dedupeKey(r *TargetRecord) string {
	parts := []string{
		r.FirstName,
		r.LastName,
		r.AddressLine1,
		r.City,
		r.State,
		r.Zip,
		r.SourceEntityName,
		r.TitleRole,
	}
	for i, p := range parts {
		parts[i] = strings.ToUpper(strings.TrimSpace(p))
	}
	return strings.Join(parts, "|")
}

// Deduplicate drops every record whose composite key was already seen.
// The first occurrence wins; dropped duplicates contribute nothing (no
// field merging). Output preserves the original order of kept rows, which
// makes the operation idempotent.
func (d *Deduplicator) Deduplicate(records []TargetRecord) []TargetRecord {
	seen := make(map[string]struct{}, len(records))
	kept := make([]TargetRecord, 0, len(records))

	for i := range records {
		key := dedupeKey(&records[i])
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, records[i])
	}

	if dropped := len(records) - len(kept); dropped > 0 {
		d.logger.Info("deduplication complete",
			"input_rows", len(records),
			"kept_rows", len(kept),
			"dropped_duplicates", dropped)
	}
	return kept
}
