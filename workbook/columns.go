// Package workbook reads and writes the spreadsheet workbooks that carry
// pipeline data. Column names are the contract between this pipeline and
// its callers; schemas are validated here at the boundary so the rest of
// the code works with typed records only.
package workbook

import "fmt"

// Default sheet names.
const (
	SheetInputMaster = "INPUT_MASTER"
	SheetConfig      = "CONFIG"
	SheetBlacklist   = "BLACKLIST_NAMES"
	SheetBatchInput  = "BATCHDATA_INPUT"
	SheetBatchResult = "BATCHDATA_RESULTS"
	SheetMatchReport = "MATCH_REPORT"
)

// Source (eCorp) columns.
const (
	ColEntityName    = "ECORP_ENTITY_NAME_S"
	ColEntityID      = "ECORP_ENTITY_ID_S"
	ColCounty        = "ECORP_COUNTY"
	ColDomicileState = "ECORP_DOMICILE_STATE"
	ColAgentAddress  = "ECORP_AGENT_ADDRESS"
)

// Blacklist sheet column.
const ColBlacklistName = "BLACKLIST_NAME"

// Target (BatchData input) columns.
const (
	ColRecordID         = "BD_RECORD_ID"
	ColSourceEntityName = "BD_SOURCE_ENTITY_NAME"
	ColSourceEntityID   = "BD_SOURCE_ENTITY_ID"
	ColFirstName        = "BD_FIRST_NAME"
	ColLastName         = "BD_LAST_NAME"
	ColOwnerFullName    = "BD_OWNER_FULL_NAME"
	ColAddressLine1     = "BD_ADDRESS_LINE1"
	ColAddressLine2     = "BD_ADDRESS_LINE2"
	ColCity             = "BD_CITY"
	ColState            = "BD_STATE"
	ColZip              = "BD_ZIP"
	ColCountyOut        = "BD_COUNTY"
	ColTitleRole        = "BD_TITLE_ROLE"
	ColIsEntity         = "BD_IS_ENTITY"
)

// Match report columns.
const (
	ColMatchPercent = "ECORP_TO_BATCH_MATCH_%"
	// MissingNameSlots is the fixed number of MISSING_n_FULL_NAME columns.
	MissingNameSlots = 8
)

// MissingNameColumn returns the nth missing-name column header (1-based).
func MissingNameColumn(n int) string {
	return fmt.Sprintf("MISSING_%d_FULL_NAME", n)
}

// Enriched-result contact slots: BD_PHONE_{1-10}_* and BD_EMAIL_{1-10}_*.
const ContactSlots = 10

func PhoneColumn(n int, field string) string {
	return fmt.Sprintf("BD_PHONE_%d_%s", n, field)
}

func EmailColumn(n int, field string) string {
	return fmt.Sprintf("BD_EMAIL_%d_%s", n, field)
}

// Principal column groups of the INPUT_MASTER sheet, column order fixed:
// StatutoryAgent{1-3}, Manager{1-5}, Member{1-5}, ManagerMember{1-5},
// Individual{1-4}, each with _Name and _Address.
type principalGroup struct {
	prefix string
	count  int
}

var principalGroups = []principalGroup{
	{"StatutoryAgent", 3},
	{"Manager", 5},
	{"Member", 5},
	{"ManagerMember", 5},
	{"Individual", 4},
}

func principalNameColumn(prefix string, n int) string {
	return fmt.Sprintf("%s%d_Name", prefix, n)
}

func principalAddressColumn(prefix string, n int) string {
	return fmt.Sprintf("%s%d_Address", prefix, n)
}
