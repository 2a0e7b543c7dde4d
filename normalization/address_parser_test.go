package normalization

import "testing"

func TestParseAddress(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want ParsedAddress
	}{
		{
			name: "comma separated",
			raw:  "123 E Main Street, Phoenix, AZ 85001",
			want: ParsedAddress{Line1: "123 E Main St", City: "Phoenix", State: "AZ", Zip: "85001"},
		},
		{
			name: "suite line",
			raw:  "123 E Main St, Suite 400, Phoenix, AZ 85001",
			want: ParsedAddress{Line1: "123 E Main St", Line2: "Suite 400", City: "Phoenix", State: "AZ", Zip: "85001"},
		},
		{
			name: "multi word city",
			raw:  "4747 N Palo Verde Blvd, Lake Havasu City, AZ 86404",
			want: ParsedAddress{Line1: "4747 N Palo Verde Blvd", City: "Lake Havasu City", State: "AZ", Zip: "86404"},
		},
		{
			name: "zip plus four",
			raw:  "1 Sunrise Dr, Tempe, AZ 85281-1234",
			want: ParsedAddress{Line1: "1 Sunrise Dr", City: "Tempe", State: "AZ", Zip: "85281"},
		},
		{
			name: "no city state zip",
			raw:  "PO BOX 1234",
			want: ParsedAddress{Line1: "Po Box 1234"},
		},
		{
			name: "empty",
			raw:  "   ",
			want: ParsedAddress{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseAddress(tt.raw)
			if got != tt.want {
				t.Errorf("ParseAddress(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}
