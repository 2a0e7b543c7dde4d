package transform

import (
	"iter"
	"log/slog"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"accpipeline/normalization"
)

// entityIndicatorRe matches legal-form tokens that mark a principal name as
// a business entity rather than a natural person. Periods are removed
// before matching, so "L.L.C." collapses to "LLC".
var entityIndicatorRe = regexp.MustCompile(`\b(LLC|INC|CORP|CORPORATION|COMPANY|LTD|LIMITED|LP|LLP|PLLC|PC|TRUST|BANK|ASSOCIATION|HOLDINGS|ENTERPRISES|PARTNERS|GROUP)\b`)

// IsEntityName reports whether a principal name carries a legal-entity
// indicator ("LLC", "L.L.C.", "INC", "CORP", ...).
func IsEntityName(name string) bool {
	upper := strings.ToUpper(name)
	upper = strings.ReplaceAll(upper, ".", "")
	return entityIndicatorRe.MatchString(upper)
}

// EntityTransformer converts one SourceRecord into its set of
// TargetRecords: one per unique non-empty principal name.
type EntityTransformer struct {
	logger *slog.Logger
}

// NewEntityTransformer creates a new transformer.
func NewEntityTransformer() *EntityTransformer {
	return &EntityTransformer{
		logger: slog.Default().With("component", "entity_transformer"),
	}
}

// resolveState applies the state fallback chain: normalized domicile state
// first, then "AZ" for Maricopa-county rows, otherwise empty.
func resolveState(rec *SourceRecord) string {
	if state := normalization.NormalizeState(rec.DomicileState, ""); state != "" {
		return state
	}
	if strings.Contains(strings.ToUpper(rec.County), "MARICOPA") {
		return "AZ"
	}
	return ""
}

// baseAddress parses the statutory agent address once per source row and
// resolves a missing state through the domicile/county fallback chain.
func (t *EntityTransformer) baseAddress(rec *SourceRecord) normalization.ParsedAddress {
	parsed := normalization.ParseAddress(rec.AgentAddress)
	if parsed.State == "" {
		parsed.State = resolveState(rec)
	}
	return parsed
}

// principalAddress picks the address for one principal: its own address
// when populated, the base address otherwise. A principal address missing
// its state prefers the base record's already-resolved state before
// re-deriving from domicile/county.
func (t *EntityTransformer) principalAddress(rec *SourceRecord, p Principal, base normalization.ParsedAddress) normalization.ParsedAddress {
	if strings.TrimSpace(p.Address) == "" {
		return base
	}

	parsed := normalization.ParseAddress(p.Address)
	if parsed.State == "" {
		if base.State != "" {
			parsed.State = base.State
		} else {
			parsed.State = resolveState(rec)
		}
	}
	return parsed
}

// Records returns the target records for one source row as a restartable
// sequence. A row with zero populated principal names yields nothing; the
// caller treats such rows as unprocessable. Duplicate principal names
// (case-insensitive) within one row are emitted once.
func (t *EntityTransformer) Records(rec SourceRecord) iter.Seq[TargetRecord] {
	return func(yield func(TargetRecord) bool) {
		base := t.baseAddress(&rec)
		seen := make(map[string]struct{})

		for _, rp := range rec.orderedPrincipals() {
			name := strings.TrimSpace(rp.principal.Name)
			if name == "" {
				continue
			}
			key := strings.ToUpper(name)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			addr := t.principalAddress(&rec, rp.principal, base)

			target := TargetRecord{
				RecordID:         uuid.NewString(),
				SourceEntityName: strings.TrimSpace(rec.EntityName),
				SourceEntityID:   strings.TrimSpace(rec.EntityID),
				OwnerFullName:    name,
				AddressLine1:     addr.Line1,
				AddressLine2:     addr.Line2,
				City:             addr.City,
				State:            addr.State,
				Zip:              addr.Zip,
				County:           strings.TrimSpace(rec.County),
				TitleRole:        rp.role,
				IsEntity:         IsEntityName(name),
			}

			if target.IsEntity {
				target.TitleRole = rp.role + " (Entity)"
			} else {
				target.FirstName, target.LastName = normalization.SplitFullName(name)
			}

			if !yield(target) {
				return
			}
		}
	}
}

// Transform materializes Records into a slice.
func (t *EntityTransformer) Transform(rec SourceRecord) []TargetRecord {
	var out []TargetRecord
	for target := range t.Records(rec) {
		out = append(out, target)
	}
	return out
}

// TransformAll fans out a whole export. Rows producing zero records are
// counted and logged; they are worth no paid lookups downstream.
func (t *EntityTransformer) TransformAll(records []SourceRecord) []TargetRecord {
	var out []TargetRecord
	skipped := 0

	for i := range records {
		targets := t.Transform(records[i])
		if len(targets) == 0 {
			skipped++
			continue
		}
		out = append(out, targets...)
	}

	t.logger.Info("transform complete",
		"source_rows", len(records),
		"target_rows", len(out),
		"rows_without_principals", skipped)
	return out
}
