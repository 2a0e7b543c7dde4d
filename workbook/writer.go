package workbook

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/xuri/excelize/v2"

	"accpipeline/matching"
	"accpipeline/transform"
)

// Writer saves pipeline outputs as Excel workbooks or CSV files.
type Writer struct {
	logger *slog.Logger
}

// NewWriter creates a new workbook writer.
func NewWriter() *Writer {
	return &Writer{logger: slog.Default().With("component", "workbook_writer")}
}

var targetHeader = []string{
	ColRecordID, ColSourceEntityName, ColSourceEntityID,
	ColFirstName, ColLastName, ColOwnerFullName,
	ColAddressLine1, ColAddressLine2, ColCity, ColState, ColZip,
	ColCountyOut, ColTitleRole, ColIsEntity,
}

func targetRow(r *transform.TargetRecord) []string {
	return []string{
		r.RecordID, r.SourceEntityName, r.SourceEntityID,
		r.FirstName, r.LastName, r.OwnerFullName,
		r.AddressLine1, r.AddressLine2, r.City, r.State, r.Zip,
		r.County, r.TitleRole, strconv.FormatBool(r.IsEntity),
	}
}

// WriteTargetRecords saves transformed records to the BATCHDATA_INPUT
// sheet of a new workbook.
func (w *Writer) WriteTargetRecords(path string, records []transform.TargetRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeSheet(f, SheetBatchInput, targetHeader, len(records), func(i int) []string {
		return targetRow(&records[i])
	}); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}

	w.logger.Info("target records written", "path", path, "rows", len(records))
	return nil
}

// WriteTargetRecordsCSV saves transformed records as CSV for callers that
// bypass Excel.
func (w *Writer) WriteTargetRecordsCSV(path string, records []transform.TargetRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file %s: %w", path, err)
	}
	defer file.Close()

	cw := csv.NewWriter(file)
	defer cw.Flush()

	if err := cw.Write(targetHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := range records {
		if err := cw.Write(targetRow(&records[i])); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}

	w.logger.Info("target records written", "path", path, "rows", len(records))
	return nil
}

// WriteEnrichedRecords saves skip-traced records to the
// BATCHDATA_RESULTS sheet: the target columns plus ten phone and ten
// email contact slots.
func (w *Writer) WriteEnrichedRecords(path string, records []matching.EnrichedRecord) error {
	header := append([]string{}, targetHeader...)
	for n := 1; n <= ContactSlots; n++ {
		header = append(header, PhoneColumn(n, "NUMBER"), PhoneColumn(n, "FIRST"), PhoneColumn(n, "LAST"))
	}
	for n := 1; n <= ContactSlots; n++ {
		header = append(header, EmailColumn(n, "ADDRESS"), EmailColumn(n, "FIRST"), EmailColumn(n, "LAST"))
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := writeSheet(f, SheetBatchResult, header, len(records), func(i int) []string {
		rec := &records[i]
		row := targetRow(&rec.TargetRecord)
		for n := 0; n < ContactSlots; n++ {
			if n < len(rec.Phones) {
				row = append(row, rec.Phones[n].Number, rec.Phones[n].FirstName, rec.Phones[n].LastName)
			} else {
				row = append(row, "", "", "")
			}
		}
		for n := 0; n < ContactSlots; n++ {
			if n < len(rec.Emails) {
				row = append(row, rec.Emails[n].Address, rec.Emails[n].FirstName, rec.Emails[n].LastName)
			} else {
				row = append(row, "", "", "")
			}
		}
		return row
	}); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}

	w.logger.Info("enriched records written", "path", path, "rows", len(records))
	return nil
}

// WriteMatchReport saves enriched records with their match outcome: the
// target columns plus ECORP_TO_BATCH_MATCH_% and exactly eight
// MISSING_n_FULL_NAME slots.
func (w *Writer) WriteMatchReport(path string, records []matching.EnrichedRecord) error {
	header := append([]string{}, targetHeader...)
	header = append(header, ColMatchPercent)
	for n := 1; n <= MissingNameSlots; n++ {
		header = append(header, MissingNameColumn(n))
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := writeSheet(f, SheetMatchReport, header, len(records), func(i int) []string {
		rec := &records[i]
		row := targetRow(&rec.TargetRecord)
		row = append(row, rec.Match.Percentage)
		for n := 0; n < MissingNameSlots; n++ {
			if n < len(rec.Match.MissingNames) {
				row = append(row, rec.Match.MissingNames[n])
			} else {
				row = append(row, "")
			}
		}
		return row
	}); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}

	w.logger.Info("match report written", "path", path, "rows", len(records))
	return nil
}

// writeSheet fills one sheet: styled header row plus rowFn-generated data
// rows, with a fixed column width.
func writeSheet(f *excelize.File, sheet string, header []string, rows int, rowFn func(i int) []string) error {
	index, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	for i, name := range header {
		cellName, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cellName, name)
		f.SetCellStyle(sheet, cellName, cellName, headerStyle)
	}

	for r := 0; r < rows; r++ {
		for c, value := range rowFn(r) {
			cellName, _ := excelize.CoordinatesToCellName(c+1, r+2)
			f.SetCellValue(sheet, cellName, value)
		}
	}

	for i := range header {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, col, col, 18)
	}
	return nil
}
