package normalization

import (
	"regexp"
	"strings"
)

// ParsedAddress holds the components of a single mailing address.
type ParsedAddress struct {
	Line1 string
	Line2 string
	City  string
	State string
	Zip   string
}

// cityStateZipRe matches a trailing "City, ST 12345" or "City ST 12345-6789"
// segment. ZIP+4 is accepted and collapsed later by NormalizeZipCode.
var cityStateZipRe = regexp.MustCompile(`(?i)^(.*?)[,\s]+([A-Za-z .'-]+?)[,\s]+([A-Za-z]{2})[,\s]+(\d{5}(?:-\d{4})?)$`)

// suitePrefixes marks a segment as a unit designator rather than a street line.
var suitePrefixes = []string{"suite ", "ste ", "ste. ", "#", "unit ", "apt ", "apt. ", "bldg ", "building ", "floor ", "fl "}

func isSuiteSegment(segment string) bool {
	lower := strings.ToLower(strings.TrimSpace(segment))
	for _, p := range suitePrefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}

// ParseAddress splits a raw one-line address into street line(s), city,
// state and ZIP. Registry exports carry addresses as a single comma- or
// space-delimited string ("123 E Main St, Suite 4, Phoenix, AZ 85001").
// Unrecognized input degrades to Line1 carrying the cleaned original;
// the state and ZIP pass through NormalizeState / NormalizeZipCode.
func ParseAddress(raw string) ParsedAddress {
	compact := strings.Join(strings.Fields(raw), " ")
	if compact == "" {
		return ParsedAddress{}
	}

	m := cityStateZipRe.FindStringSubmatch(compact)
	if m == nil {
		// No trailing city/state/zip segment: keep the whole value as the
		// street line so downstream fallbacks can still resolve the state.
		return ParsedAddress{Line1: CleanAddressLine(compact)}
	}

	street := strings.Trim(m[1], " ,")
	city := strings.Trim(m[2], " ,")
	state := NormalizeState(m[3], "")
	zip := NormalizeZipCode(m[4])

	parsed := ParsedAddress{
		City:  titleCaser.String(strings.ToLower(city)),
		State: state,
		Zip:   zip,
	}

	// A unit designator after the last street comma becomes Line2.
	if idx := strings.LastIndex(street, ","); idx >= 0 {
		tail := street[idx+1:]
		if isSuiteSegment(tail) {
			parsed.Line1 = CleanAddressLine(street[:idx])
			parsed.Line2 = CleanAddressLine(tail)
			return parsed
		}
	}

	parsed.Line1 = CleanAddressLine(street)
	return parsed
}
