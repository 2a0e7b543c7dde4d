package normalization

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// nameSuffixRe matches generational suffixes that carry no identity for
// skip-trace lookups (Jr, Sr, II..V), with an optional trailing period.
var nameSuffixRe = regexp.MustCompile(`(?i)\b(jr|sr|ii|iii|iv|v)\.?\b`)

// SplitFullName splits a full person name into first and last components.
// Recognized suffixes are stripped before splitting. A single token becomes
// the first name, everything past the first token joins into the last name.
// Always returns a pair of strings, never an error.
func SplitFullName(name string) (first, last string) {
	cleaned := nameSuffixRe.ReplaceAllString(name, " ")
	tokens := strings.Fields(cleaned)

	switch len(tokens) {
	case 0:
		return "", ""
	case 1:
		return tokens[0], ""
	case 2:
		return tokens[0], tokens[1]
	default:
		return tokens[0], strings.Join(tokens[1:], " ")
	}
}

// stateNameToCode maps full US state names (uppercase) to USPS codes.
var stateNameToCode = map[string]string{
	"ALABAMA": "AL", "ALASKA": "AK", "ARIZONA": "AZ", "ARKANSAS": "AR",
	"CALIFORNIA": "CA", "COLORADO": "CO", "CONNECTICUT": "CT", "DELAWARE": "DE",
	"FLORIDA": "FL", "GEORGIA": "GA", "HAWAII": "HI", "IDAHO": "ID",
	"ILLINOIS": "IL", "INDIANA": "IN", "IOWA": "IA", "KANSAS": "KS",
	"KENTUCKY": "KY", "LOUISIANA": "LA", "MAINE": "ME", "MARYLAND": "MD",
	"MASSACHUSETTS": "MA", "MICHIGAN": "MI", "MINNESOTA": "MN", "MISSISSIPPI": "MS",
	"MISSOURI": "MO", "MONTANA": "MT", "NEBRASKA": "NE", "NEVADA": "NV",
	"NEW HAMPSHIRE": "NH", "NEW JERSEY": "NJ", "NEW MEXICO": "NM", "NEW YORK": "NY",
	"NORTH CAROLINA": "NC", "NORTH DAKOTA": "ND", "OHIO": "OH", "OKLAHOMA": "OK",
	"OREGON": "OR", "PENNSYLVANIA": "PA", "RHODE ISLAND": "RI", "SOUTH CAROLINA": "SC",
	"SOUTH DAKOTA": "SD", "TENNESSEE": "TN", "TEXAS": "TX", "UTAH": "UT",
	"VERMONT": "VT", "VIRGINIA": "VA", "WASHINGTON": "WA", "WEST VIRGINIA": "WV",
	"WISCONSIN": "WI", "WYOMING": "WY", "DISTRICT OF COLUMBIA": "DC",
}

var twoLetterStateRe = regexp.MustCompile(`^[A-Za-z]{2}$`)

// NormalizeState converts a state value to its two-letter USPS code.
// Empty input returns fallback (or ""). Two-letter codes pass through
// uppercased. Full state names are resolved through a static table;
// anything unmapped returns fallback, or the uppercased original when no
// fallback is given.
func NormalizeState(state, fallback string) string {
	state = strings.TrimSpace(state)
	if state == "" {
		return fallback
	}

	if twoLetterStateRe.MatchString(state) {
		return strings.ToUpper(state)
	}

	upper := strings.ToUpper(strings.Join(strings.Fields(state), " "))
	if code, ok := stateNameToCode[upper]; ok {
		return code
	}

	if fallback != "" {
		return fallback
	}
	return upper
}

var digitRunRe = regexp.MustCompile(`\d+`)

// NormalizeZipCode extracts the first contiguous digit run and forces it
// to exactly five digits: longer runs are truncated (ZIP+4 collapses to
// ZIP), shorter runs are left-padded with zeros. No digits yields "".
func NormalizeZipCode(zip string) string {
	digits := digitRunRe.FindString(zip)
	if digits == "" {
		return ""
	}
	if len(digits) >= 5 {
		return digits[:5]
	}
	return strings.Repeat("0", 5-len(digits)) + digits
}

var nonDigitRe = regexp.MustCompile(`\D`)

// NormalizePhoneE164 converts a US phone number to E.164 form. Ten digits
// get a "+1" prefix, eleven digits starting with "1" get a "+". Any other
// digit count is invalid and yields "".
func NormalizePhoneE164(phone string) string {
	digits := nonDigitRe.ReplaceAllString(phone, "")

	switch {
	case len(digits) == 10:
		return "+1" + digits
	case len(digits) == 11 && strings.HasPrefix(digits, "1"):
		return "+" + digits
	default:
		return ""
	}
}

// streetSuffixSubs normalizes spelled-out street suffixes to their USPS
// abbreviations. Applied in order after title casing.
var streetSuffixSubs = []struct {
	re   *regexp.Regexp
	abbr string
}{
	{regexp.MustCompile(`\bStreet\b`), "St"},
	{regexp.MustCompile(`\bAvenue\b`), "Ave"},
	{regexp.MustCompile(`\bBoulevard\b`), "Blvd"},
	{regexp.MustCompile(`\bDrive\b`), "Dr"},
	{regexp.MustCompile(`\bRoad\b`), "Rd"},
	{regexp.MustCompile(`\bLane\b`), "Ln"},
}

var titleCaser = cases.Title(language.AmericanEnglish)

// CleanAddressLine collapses internal whitespace, title-cases the line and
// normalizes common street-suffix words to their abbreviations.
func CleanAddressLine(address string) string {
	line := strings.Join(strings.Fields(address), " ")
	if line == "" {
		return ""
	}

	line = titleCaser.String(strings.ToLower(line))
	for _, sub := range streetSuffixSubs {
		line = sub.re.ReplaceAllString(line, sub.abbr)
	}

	return line
}
