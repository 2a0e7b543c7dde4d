package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"accpipeline/transform"
)

func testSourceRecords() []transform.SourceRecord {
	rec := transform.SourceRecord{
		EntityName: "DESERT SUN PROPERTIES LLC",
		EntityID:   "L1234567",
	}
	rec.Managers[0] = transform.Principal{Name: "John Doe"}
	rec.Managers[1] = transform.Principal{Name: "Jane Roe"}
	return []transform.SourceRecord{rec}
}

func TestContactNames(t *testing.T) {
	rec := EnrichedRecord{
		Phones: []PersonPhone{
			{Number: "+14805551234", FirstName: "John", LastName: "Doe"},
			{Number: "+14805555678", FirstName: "JOHN", LastName: "DOE"}, // dup
			{Number: "+14805559999"},                                     // no name attached
		},
		Emails: []PersonEmail{
			{Address: "jane@example.com", FirstName: "Jane", LastName: "Roe"},
		},
	}

	assert.Equal(t, []string{"John Doe", "Jane Roe"}, rec.ContactNames())
}

func TestApplyNameMatching(t *testing.T) {
	index := BuildSourceNameIndex(testSourceRecords())
	matcher := NewNameMatcher(0)

	records := []EnrichedRecord{
		{
			TargetRecord: transform.TargetRecord{SourceEntityID: "L1234567"},
			Phones:       []PersonPhone{{FirstName: "John", LastName: "Doe"}},
		},
		{
			TargetRecord: transform.TargetRecord{SourceEntityID: "UNKNOWN999"},
			Phones:       []PersonPhone{{FirstName: "John", LastName: "Doe"}},
		},
	}

	ApplyNameMatching(matcher, records, index)

	assert.Equal(t, "50", records[0].Match.Percentage)
	assert.Equal(t, []string{"Jane Roe"}, records[0].Match.MissingNames)

	// Join miss: sentinel label, no missing names.
	assert.Equal(t, LabelNotAvailable, records[1].Match.Percentage)
	assert.Empty(t, records[1].Match.MissingNames)
}

func TestApplyNameMatching_NoIndex(t *testing.T) {
	records := []EnrichedRecord{
		{TargetRecord: transform.TargetRecord{SourceEntityID: "L1234567"}},
	}
	ApplyNameMatching(NewNameMatcher(0), records, nil)
	assert.Equal(t, LabelNotAvailable, records[0].Match.Percentage)
}

func TestBuildSourceNameIndex(t *testing.T) {
	index := BuildSourceNameIndex(testSourceRecords())
	require.Contains(t, index, "L1234567")
	assert.Equal(t, []string{"John Doe", "Jane Roe"}, index["L1234567"])

	// Rows without an entity ID are not indexed.
	index = BuildSourceNameIndex([]transform.SourceRecord{{EntityName: "NO ID LLC"}})
	assert.Empty(t, index)
}
