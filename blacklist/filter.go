package blacklist

import (
	"log/slog"
	"strings"

	"accpipeline/transform"
)

// Set is the in-memory blacklist: uppercase-normalized owner names of
// known professional registered agents. Loaded once per run.
type Set map[string]struct{}

// NewSet normalizes and collects blacklist entries. Empty entries are
// dropped.
func NewSet(names []string) Set {
	set := make(Set, len(names))
	for _, name := range names {
		normalized := strings.ToUpper(strings.TrimSpace(name))
		if normalized == "" {
			continue
		}
		set[normalized] = struct{}{}
	}
	return set
}

// IsBlacklistedName reports whether a name matches the blacklist, either
// exactly or because some blacklist entry appears as a substring of the
// name. The substring pass is a full scan of the set.
//
// Short blacklist entries can substring-match inside unrelated legitimate
// names; operators are expected to keep entries specific.
func IsBlacklistedName(name string, set Set) bool {
	normalized := strings.ToUpper(strings.TrimSpace(name))
	if normalized == "" {
		return false
	}

	if _, ok := set[normalized]; ok {
		return true
	}

	for entry := range set {
		if strings.Contains(normalized, entry) {
			return true
		}
	}
	return false
}

// ApplyFilter returns the records whose owner name is not blacklisted.
// Records without an owner name pass through untouched, as does everything
// when the set is empty. Input order is preserved.
func ApplyFilter(records []transform.TargetRecord, set Set) []transform.TargetRecord {
	if len(set) == 0 {
		return records
	}

	kept := make([]transform.TargetRecord, 0, len(records))
	for i := range records {
		if IsBlacklistedName(records[i].OwnerFullName, set) {
			continue
		}
		kept = append(kept, records[i])
	}

	if removed := len(records) - len(kept); removed > 0 {
		slog.Default().Info("blacklist filter applied",
			"component", "blacklist",
			"input_rows", len(records),
			"removed_rows", removed)
	}
	return kept
}
