package workbook

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"accpipeline/matching"
	"accpipeline/transform"
)

// Reader loads pipeline inputs from Excel workbooks.
type Reader struct {
	logger *slog.Logger
}

// NewReader creates a new workbook reader.
func NewReader() *Reader {
	return &Reader{logger: slog.Default().With("component", "workbook_reader")}
}

// headerIndex maps trimmed header names to their column positions.
func headerIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name != "" {
			index[name] = i
		}
	}
	return index
}

// cell returns the trimmed value at idx, or "" when the row is short or
// the column is absent (idx < 0). Trailing blank cells are routinely
// dropped by spreadsheet tools, so short rows are normal.
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func columnIndex(index map[string]int, name string) int {
	if i, ok := index[name]; ok {
		return i
	}
	return -1
}

// ReadSourceRecords loads the INPUT_MASTER sheet into typed source
// records. The entity name and ID columns are required; every other
// column is optional and degrades to empty values.
func (r *Reader) ReadSourceRecords(path, sheet string) ([]transform.SourceRecord, error) {
	if sheet == "" {
		sheet = SheetInputMaster
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %s is empty", sheet)
	}

	index := headerIndex(rows[0])
	for _, required := range []string{ColEntityName, ColEntityID} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("sheet %s is missing required column %s", sheet, required)
		}
	}

	records := make([]transform.SourceRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := transform.SourceRecord{
			EntityName:    cell(row, columnIndex(index, ColEntityName)),
			EntityID:      cell(row, columnIndex(index, ColEntityID)),
			County:        cell(row, columnIndex(index, ColCounty)),
			DomicileState: cell(row, columnIndex(index, ColDomicileState)),
			AgentAddress:  cell(row, columnIndex(index, ColAgentAddress)),
		}
		if rec.EntityName == "" && rec.EntityID == "" {
			continue
		}

		fillPrincipals(&rec, row, index)
		records = append(records, rec)
	}

	r.logger.Info("source records loaded", "path", path, "sheet", sheet, "rows", len(records))
	return records, nil
}

func fillPrincipals(rec *transform.SourceRecord, row []string, index map[string]int) {
	slot := func(prefix string, n int) transform.Principal {
		return transform.Principal{
			Name:    cell(row, columnIndex(index, principalNameColumn(prefix, n))),
			Address: cell(row, columnIndex(index, principalAddressColumn(prefix, n))),
		}
	}

	for _, group := range principalGroups {
		var dst []transform.Principal
		switch group.prefix {
		case "StatutoryAgent":
			dst = rec.StatutoryAgents[:]
		case "Manager":
			dst = rec.Managers[:]
		case "Member":
			dst = rec.Members[:]
		case "ManagerMember":
			dst = rec.ManagerMembers[:]
		case "Individual":
			dst = rec.Individuals[:]
		}
		for i := 0; i < group.count && i < len(dst); i++ {
			dst[i] = slot(group.prefix, i+1)
		}
	}
}

// ReadBlacklistNames loads the blacklist sheet. The sheet holds a single
// BLACKLIST_NAME column; blank rows are skipped.
func (r *Reader) ReadBlacklistNames(path, sheet string) ([]string, error) {
	if sheet == "" {
		sheet = SheetBlacklist
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	index := headerIndex(rows[0])
	col, ok := index[ColBlacklistName]
	if !ok {
		return nil, fmt.Errorf("sheet %s is missing required column %s", sheet, ColBlacklistName)
	}

	var names []string
	for _, row := range rows[1:] {
		if name := cell(row, col); name != "" {
			names = append(names, name)
		}
	}

	r.logger.Info("blacklist loaded", "path", path, "entries", len(names))
	return names, nil
}

// ReadConfigSheet loads key/value settings from the CONFIG sheet: first
// column key, second column value, header row skipped.
func (r *Reader) ReadConfigSheet(path, sheet string) (map[string]string, error) {
	if sheet == "" {
		sheet = SheetConfig
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}

	settings := make(map[string]string)
	for i, row := range rows {
		if i == 0 {
			continue
		}
		key := cell(row, 0)
		if key == "" {
			continue
		}
		settings[key] = cell(row, 1)
	}
	return settings, nil
}

// ReadEnrichedRecords loads skip-trace results: the target-record columns
// joined with up to ten phone and ten email contact slots.
func (r *Reader) ReadEnrichedRecords(path, sheet string) ([]matching.EnrichedRecord, error) {
	if sheet == "" {
		sheet = SheetBatchResult
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %s is empty", sheet)
	}

	index := headerIndex(rows[0])
	if _, ok := index[ColSourceEntityID]; !ok {
		return nil, fmt.Errorf("sheet %s is missing required column %s", sheet, ColSourceEntityID)
	}

	records := make([]matching.EnrichedRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := matching.EnrichedRecord{
			TargetRecord: transform.TargetRecord{
				RecordID:         cell(row, columnIndex(index, ColRecordID)),
				SourceEntityName: cell(row, columnIndex(index, ColSourceEntityName)),
				SourceEntityID:   cell(row, columnIndex(index, ColSourceEntityID)),
				FirstName:        cell(row, columnIndex(index, ColFirstName)),
				LastName:         cell(row, columnIndex(index, ColLastName)),
				OwnerFullName:    cell(row, columnIndex(index, ColOwnerFullName)),
				AddressLine1:     cell(row, columnIndex(index, ColAddressLine1)),
				AddressLine2:     cell(row, columnIndex(index, ColAddressLine2)),
				City:             cell(row, columnIndex(index, ColCity)),
				State:            cell(row, columnIndex(index, ColState)),
				Zip:              cell(row, columnIndex(index, ColZip)),
				County:           cell(row, columnIndex(index, ColCountyOut)),
				TitleRole:        cell(row, columnIndex(index, ColTitleRole)),
			},
		}
		if rec.SourceEntityID == "" && rec.OwnerFullName == "" {
			continue
		}

		for n := 1; n <= ContactSlots; n++ {
			phone := matching.PersonPhone{
				Number:    cell(row, columnIndex(index, PhoneColumn(n, "NUMBER"))),
				FirstName: cell(row, columnIndex(index, PhoneColumn(n, "FIRST"))),
				LastName:  cell(row, columnIndex(index, PhoneColumn(n, "LAST"))),
			}
			if phone.Number != "" || phone.FirstName != "" || phone.LastName != "" {
				rec.Phones = append(rec.Phones, phone)
			}

			email := matching.PersonEmail{
				Address:   cell(row, columnIndex(index, EmailColumn(n, "ADDRESS"))),
				FirstName: cell(row, columnIndex(index, EmailColumn(n, "FIRST"))),
				LastName:  cell(row, columnIndex(index, EmailColumn(n, "LAST"))),
			}
			if email.Address != "" || email.FirstName != "" || email.LastName != "" {
				rec.Emails = append(rec.Emails, email)
			}
		}

		records = append(records, rec)
	}

	r.logger.Info("enriched records loaded", "path", path, "sheet", sheet, "rows", len(records))
	return records, nil
}
