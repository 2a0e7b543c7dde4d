package pipeline

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"accpipeline/database"
	"accpipeline/matching"
	"accpipeline/transform"
	"accpipeline/workbook"
)

// buildInputWorkbook writes a small master workbook with two entities,
// a blacklist sheet and a config override.
func buildInputWorkbook(t *testing.T, path string) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheets := map[string][][]string{
		workbook.SheetInputMaster: {
			{workbook.ColEntityName, workbook.ColEntityID, workbook.ColCounty,
				workbook.ColDomicileState, workbook.ColAgentAddress,
				"StatutoryAgent1_Name", "Manager1_Name", "Manager2_Name"},
			{"DESERT SUN PROPERTIES LLC", "L1111111", "MARICOPA", "",
				"123 E Main St, Phoenix, AZ 85001",
				"CT CORPORATION SYSTEM", "John Doe", "John Doe"},
			{"OAK HOLDINGS LLC", "L2222222", "MARICOPA", "Arizona",
				"9 W Elm St, Mesa, AZ 85201",
				"CT CORPORATION SYSTEM", "Jane Roe", ""},
		},
		workbook.SheetBlacklist: {
			{workbook.ColBlacklistName},
			{"CT CORPORATION SYSTEM"},
		},
		workbook.SheetConfig: {
			{"KEY", "VALUE"},
			{"match_threshold", "90"},
		},
	}

	for sheet, rows := range sheets {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
		for ri, row := range rows {
			for ci, value := range row {
				cellName, err := excelize.CoordinatesToCellName(ci+1, ri+1)
				require.NoError(t, err)
				require.NoError(t, f.SetCellValue(sheet, cellName, value))
			}
		}
	}
	f.DeleteSheet("Sheet1")
	require.NoError(t, f.SaveAs(path))
}

func buildResultsWorkbook(t *testing.T, path string) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	rows := [][]string{
		{workbook.ColSourceEntityID, workbook.ColOwnerFullName,
			workbook.PhoneColumn(1, "NUMBER"), workbook.PhoneColumn(1, "FIRST"), workbook.PhoneColumn(1, "LAST")},
		{"L1111111", "John Doe", "+14805551234", "John", "Doe"},
		{"L9999999", "Nobody Known", "+14805550000", "No", "Body"},
	}

	_, err := f.NewSheet(workbook.SheetBatchResult)
	require.NoError(t, err)
	for ri, row := range rows {
		for ci, value := range row {
			cellName, err := excelize.CoordinatesToCellName(ci+1, ri+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(workbook.SheetBatchResult, cellName, value))
		}
	}
	f.DeleteSheet("Sheet1")
	require.NoError(t, f.SaveAs(path))
}

func newTestDB(t *testing.T) *database.TrackerDB {
	t.Helper()
	db, err := database.NewTrackerDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestPrepareInput(t *testing.T) {
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "input.xlsx")
	outputPath := filepath.Join(dir, "batchdata_input.xlsx")
	buildInputWorkbook(t, inputPath)

	db := newTestDB(t)
	runner := NewRunner(Options{DB: db})

	result, err := runner.PrepareInput(context.Background(), PrepareRequest{
		InputPath:  inputPath,
		OutputPath: outputPath,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.SourceRows)
	// Two rows per entity: the duplicated manager collapses and the
	// agent rows survive until the blacklist stage.
	assert.Equal(t, 4, result.TransformedRows)
	assert.Equal(t, 2, result.FilteredRows, "blacklisted agent rows are removed")
	assert.Equal(t, 2, result.FinalRows)
	assert.FileExists(t, outputPath)

	records, err := workbook.NewReader().ReadEnrichedRecords(outputPath, workbook.SheetBatchInput)
	require.NoError(t, err)
	require.Len(t, records, 2)

	counts, err := db.AgentCounts(1)
	require.NoError(t, err)
	assert.Equal(t, 2, counts["CT CORPORATION SYSTEM"], "agent sightings are tracked")

	checkpoints, err := db.RecentRunCheckpoints(5)
	require.NoError(t, err)
	require.NotEmpty(t, checkpoints)
	assert.Equal(t, "prepare_input", checkpoints[0].Stage)
}

func TestPrepareInputWithoutOptionalSheets(t *testing.T) {
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "input.xlsx")

	f := excelize.NewFile()
	_, err := f.NewSheet(workbook.SheetInputMaster)
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue(workbook.SheetInputMaster, "A1", workbook.ColEntityName))
	require.NoError(t, f.SetCellValue(workbook.SheetInputMaster, "B1", workbook.ColEntityID))
	require.NoError(t, f.SetCellValue(workbook.SheetInputMaster, "A2", "SOLO LLC"))
	require.NoError(t, f.SetCellValue(workbook.SheetInputMaster, "B2", "L3333333"))
	f.DeleteSheet("Sheet1")
	require.NoError(t, f.SaveAs(inputPath))
	require.NoError(t, f.Close())

	runner := NewRunner(Options{})
	result, err := runner.PrepareInput(context.Background(), PrepareRequest{
		InputPath:  inputPath,
		OutputPath: filepath.Join(dir, "out.xlsx"),
	})
	require.NoError(t, err, "missing blacklist and config sheets are tolerated")
	assert.Equal(t, 1, result.SourceRows)
	assert.Equal(t, 0, result.FinalRows, "an entity with no principals emits nothing")
}

func TestEnrichWithoutProviders(t *testing.T) {
	runner := NewRunner(Options{})

	enriched, err := runner.Enrich(context.Background(), []transform.TargetRecord{
		{RecordID: "r-1", OwnerFullName: "John Doe"},
	})
	require.NoError(t, err)
	require.Len(t, enriched, 1)
	assert.Empty(t, enriched[0].Phones)
	assert.Equal(t, "John Doe", enriched[0].OwnerFullName)
}

func TestBuildMatchReport(t *testing.T) {
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "input.xlsx")
	resultsPath := filepath.Join(dir, "results.xlsx")
	reportPath := filepath.Join(dir, "report.xlsx")
	buildInputWorkbook(t, inputPath)
	buildResultsWorkbook(t, resultsPath)

	runner := NewRunner(Options{DB: newTestDB(t)})

	result, err := runner.BuildMatchReport(context.Background(), ReportRequest{
		InputPath:   inputPath,
		ResultsPath: resultsPath,
		ReportPath:  reportPath,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Records)
	assert.Equal(t, 1, result.JoinMisses, "unknown entity IDs are labeled N/A")
	assert.FileExists(t, reportPath)

	f, err := excelize.OpenFile(reportPath)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(workbook.SheetMatchReport)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	labels := map[string]bool{}
	for _, row := range rows[1:] {
		for i, header := range rows[0] {
			if header == workbook.ColMatchPercent && i < len(row) {
				labels[row[i]] = true
			}
		}
	}
	assert.True(t, labels[matching.LabelNotAvailable])
}

// buildNearMatchWorkbook writes a master workbook holding one entity
// whose single principal is a near-miss of the skip-trace contact name,
// optionally with a CONFIG match_threshold override.
func buildNearMatchWorkbook(t *testing.T, path, threshold string) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheets := map[string][][]string{
		workbook.SheetInputMaster: {
			{workbook.ColEntityName, workbook.ColEntityID, "Manager1_Name"},
			{"NEARMATCH HOLDINGS LLC", "L5555555", "Jon Doe"},
		},
	}
	if threshold != "" {
		sheets[workbook.SheetConfig] = [][]string{
			{"KEY", "VALUE"},
			{"match_threshold", threshold},
		}
	}

	for sheet, rows := range sheets {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
		for ri, row := range rows {
			for ci, value := range row {
				cellName, err := excelize.CoordinatesToCellName(ci+1, ri+1)
				require.NoError(t, err)
				require.NoError(t, f.SetCellValue(sheet, cellName, value))
			}
		}
	}
	f.DeleteSheet("Sheet1")
	require.NoError(t, f.SaveAs(path))
}

func readMatchLabels(t *testing.T, reportPath string) []string {
	t.Helper()
	f, err := excelize.OpenFile(reportPath)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(workbook.SheetMatchReport)
	require.NoError(t, err)
	require.NotEmpty(t, rows)

	col := -1
	for i, header := range rows[0] {
		if header == workbook.ColMatchPercent {
			col = i
		}
	}
	require.GreaterOrEqual(t, col, 0)

	var labels []string
	for _, row := range rows[1:] {
		if col < len(row) {
			labels = append(labels, row[col])
		} else {
			labels = append(labels, "")
		}
	}
	return labels
}

func TestMatchThresholdOverrideIsRequestScoped(t *testing.T) {
	dir := t.TempDir()
	strictInput := filepath.Join(dir, "strict.xlsx")
	plainInput := filepath.Join(dir, "plain.xlsx")
	resultsPath := filepath.Join(dir, "results.xlsx")
	buildNearMatchWorkbook(t, strictInput, "90")
	buildNearMatchWorkbook(t, plainInput, "")

	f := excelize.NewFile()
	_, err := f.NewSheet(workbook.SheetBatchResult)
	require.NoError(t, err)
	for ci, value := range []string{
		workbook.ColSourceEntityID, workbook.ColOwnerFullName,
		workbook.PhoneColumn(1, "NUMBER"), workbook.PhoneColumn(1, "FIRST"), workbook.PhoneColumn(1, "LAST"),
	} {
		cellName, err := excelize.CoordinatesToCellName(ci+1, 1)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(workbook.SheetBatchResult, cellName, value))
	}
	for ci, value := range []string{"L5555555", "John Doe", "+14805551234", "John", "Doe"} {
		cellName, err := excelize.CoordinatesToCellName(ci+1, 2)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(workbook.SheetBatchResult, cellName, value))
	}
	f.DeleteSheet("Sheet1")
	require.NoError(t, f.SaveAs(resultsPath))
	require.NoError(t, f.Close())

	runner := NewRunner(Options{})

	// "Jon Doe" vs "John Doe" scores 87.5: under the workbook's 90 it
	// misses, under the default 85 it matches.
	strictReport := filepath.Join(dir, "strict_report.xlsx")
	_, err = runner.BuildMatchReport(context.Background(), ReportRequest{
		InputPath:   strictInput,
		ResultsPath: resultsPath,
		ReportPath:  strictReport,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"0"}, readMatchLabels(t, strictReport))

	// The same runner without an override must be back at the default;
	// the previous workbook's CONFIG sheet must not leak.
	plainReport := filepath.Join(dir, "plain_report.xlsx")
	_, err = runner.BuildMatchReport(context.Background(), ReportRequest{
		InputPath:   plainInput,
		ResultsPath: resultsPath,
		ReportPath:  plainReport,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"100"}, readMatchLabels(t, plainReport))
}

func TestPrepareInputLeavesRunnerOptionsAlone(t *testing.T) {
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "input.xlsx")
	buildInputWorkbook(t, inputPath)

	db := newTestDB(t)
	runner := NewRunner(Options{DB: db, BlacklistFrequencyThreshold: 7})

	_, err := runner.PrepareInput(context.Background(), PrepareRequest{
		InputPath:  inputPath,
		OutputPath: filepath.Join(dir, "out.xlsx"),
	})
	require.NoError(t, err)

	assert.Equal(t, 7, runner.opts.BlacklistFrequencyThreshold,
		"a workbook CONFIG sheet must not rewrite shared runner options")
}

func TestSuggestions(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.IncrementAgentCount("STATEWIDE AGENTS LLC", 5))
	require.NoError(t, db.IncrementAgentCount("RARE NAME", 1))

	runner := NewRunner(Options{DB: db, BlacklistFrequencyThreshold: 3})

	suggestions, err := runner.Suggestions(nil)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "STATEWIDE AGENTS LLC", suggestions[0].Name)
	assert.Equal(t, 5, suggestions[0].Sightings)
}
