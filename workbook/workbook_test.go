package workbook

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"accpipeline/matching"
	"accpipeline/transform"
)

// writeTestSheet builds a workbook fixture with one sheet of rows.
func writeTestSheet(t *testing.T, path, sheet string, rows [][]string) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	_, err := f.NewSheet(sheet)
	require.NoError(t, err)
	f.DeleteSheet("Sheet1")

	for r, row := range rows {
		for c, value := range row {
			cellName, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cellName, value))
		}
	}
	require.NoError(t, f.SaveAs(path))
}

func TestReadSourceRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.xlsx")
	writeTestSheet(t, path, SheetInputMaster, [][]string{
		{ColEntityName, ColEntityID, ColCounty, ColDomicileState, ColAgentAddress,
			"StatutoryAgent1_Name", "StatutoryAgent1_Address", "Manager1_Name"},
		{"DESERT SUN PROPERTIES LLC", "L1234567", "MARICOPA", "Arizona",
			"123 E Main St, Phoenix, AZ 85001", "John Doe", "", "Jane Roe"},
		{"", "", "", "", "", "", "", ""}, // blank row skipped
	})

	records, err := NewReader().ReadSourceRecords(path, "")
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "DESERT SUN PROPERTIES LLC", rec.EntityName)
	assert.Equal(t, "L1234567", rec.EntityID)
	assert.Equal(t, "MARICOPA", rec.County)
	assert.Equal(t, "John Doe", rec.StatutoryAgents[0].Name)
	assert.Equal(t, "Jane Roe", rec.Managers[0].Name)
	assert.Empty(t, rec.Members[0].Name)
}

func TestReadSourceRecords_AllPrincipalSlots(t *testing.T) {
	header := []string{ColEntityName, ColEntityID}
	row := []string{"LAST SLOT HOLDINGS LLC", "L7654321"}
	for _, group := range principalGroups {
		last := group.count
		header = append(header, principalNameColumn(group.prefix, last))
		row = append(row, group.prefix+" Last")
	}

	path := filepath.Join(t.TempDir(), "input.xlsx")
	writeTestSheet(t, path, SheetInputMaster, [][]string{header, row})

	records, err := NewReader().ReadSourceRecords(path, "")
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "StatutoryAgent Last", rec.StatutoryAgents[2].Name)
	assert.Equal(t, "Manager Last", rec.Managers[4].Name)
	assert.Equal(t, "Member Last", rec.Members[4].Name)
	assert.Equal(t, "ManagerMember Last", rec.ManagerMembers[4].Name)
	assert.Equal(t, "Individual Last", rec.Individuals[3].Name)
}

func TestReadSourceRecords_MissingRequiredColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.xlsx")
	writeTestSheet(t, path, SheetInputMaster, [][]string{
		{ColEntityName, "SomethingElse"},
		{"DESERT SUN PROPERTIES LLC", "x"},
	})

	_, err := NewReader().ReadSourceRecords(path, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ColEntityID)
}

func TestReadBlacklistNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blacklist.xlsx")
	writeTestSheet(t, path, SheetBlacklist, [][]string{
		{ColBlacklistName},
		{"CT CORPORATION SYSTEM"},
		{""},
		{"STATEWIDE REGISTERED AGENTS LLC"},
	})

	names, err := NewReader().ReadBlacklistNames(path, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"CT CORPORATION SYSTEM", "STATEWIDE REGISTERED AGENTS LLC"}, names)
}

func TestReadConfigSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.xlsx")
	writeTestSheet(t, path, SheetConfig, [][]string{
		{"KEY", "VALUE"},
		{"match_threshold", "90"},
		{"blacklist_frequency_threshold", "5"},
	})

	settings, err := NewReader().ReadConfigSheet(path, "")
	require.NoError(t, err)
	assert.Equal(t, "90", settings["match_threshold"])
	assert.Equal(t, "5", settings["blacklist_frequency_threshold"])
}

func TestWriteAndReadTargetRecords(t *testing.T) {
	records := []transform.TargetRecord{
		{
			RecordID: "r-1", SourceEntityName: "DESERT SUN PROPERTIES LLC",
			SourceEntityID: "L1234567", FirstName: "John", LastName: "Doe",
			OwnerFullName: "John Doe", AddressLine1: "123 E Main St",
			City: "Phoenix", State: "AZ", Zip: "85001", County: "MARICOPA",
			TitleRole: transform.RoleManager,
		},
	}

	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, NewWriter().WriteTargetRecords(path, records))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetBatchInput)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, ColRecordID, rows[0][0])
	assert.Equal(t, "r-1", rows[1][0])
	assert.Equal(t, "John", rows[1][3])
	assert.Equal(t, "false", rows[1][13])
}

func TestWriteTargetRecordsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	err := NewWriter().WriteTargetRecordsCSV(path, []transform.TargetRecord{
		{RecordID: "r-1", OwnerFullName: "John Doe"},
	})
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestEnrichedRecordsRoundTrip(t *testing.T) {
	enriched := []matching.EnrichedRecord{
		{
			TargetRecord: transform.TargetRecord{
				RecordID: "r-1", SourceEntityID: "L1234567", OwnerFullName: "John Doe",
			},
			Phones: []matching.PersonPhone{
				{Number: "+14805551234", FirstName: "John", LastName: "Doe"},
			},
			Emails: []matching.PersonEmail{
				{Address: "jane@example.com", FirstName: "Jane", LastName: "Roe"},
			},
		},
	}

	path := filepath.Join(t.TempDir(), "results.xlsx")
	require.NoError(t, NewWriter().WriteEnrichedRecords(path, enriched))

	records, err := NewReader().ReadEnrichedRecords(path, "")
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "L1234567", rec.SourceEntityID)
	require.Len(t, rec.Phones, 1)
	assert.Equal(t, "+14805551234", rec.Phones[0].Number)
	require.Len(t, rec.Emails, 1)
	assert.Equal(t, "jane@example.com", rec.Emails[0].Address)
}

func TestMatchReportRoundTrip(t *testing.T) {
	enriched := []matching.EnrichedRecord{
		{
			TargetRecord: transform.TargetRecord{
				RecordID: "r-1", SourceEntityID: "L1234567", OwnerFullName: "John Doe",
			},
			Match: matching.MatchResult{
				Percentage:   "50",
				MissingNames: []string{"Jane Roe"},
			},
		},
	}

	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, NewWriter().WriteMatchReport(path, enriched))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetMatchReport)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	index := headerIndex(rows[0])
	require.Contains(t, index, ColMatchPercent)
	require.Contains(t, index, MissingNameColumn(1))
	require.Contains(t, index, MissingNameColumn(8))

	assert.Equal(t, "50", cell(rows[1], index[ColMatchPercent]))
	assert.Equal(t, "Jane Roe", cell(rows[1], index[MissingNameColumn(1)]))
	assert.Empty(t, cell(rows[1], index[MissingNameColumn(2)]))
}

func TestReadEnrichedRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.xlsx")
	writeTestSheet(t, path, SheetBatchResult, [][]string{
		{ColSourceEntityID, ColOwnerFullName,
			PhoneColumn(1, "NUMBER"), PhoneColumn(1, "FIRST"), PhoneColumn(1, "LAST"),
			EmailColumn(1, "ADDRESS"), EmailColumn(1, "FIRST"), EmailColumn(1, "LAST")},
		{"L1234567", "John Doe",
			"+14805551234", "John", "Doe",
			"jane@example.com", "Jane", "Roe"},
	})

	records, err := NewReader().ReadEnrichedRecords(path, "")
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "L1234567", rec.SourceEntityID)
	require.Len(t, rec.Phones, 1)
	assert.Equal(t, "+14805551234", rec.Phones[0].Number)
	require.Len(t, rec.Emails, 1)
	assert.Equal(t, "jane@example.com", rec.Emails[0].Address)
	assert.Equal(t, []string{"John Doe", "Jane Roe"}, rec.ContactNames())
}
