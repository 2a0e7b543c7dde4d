package normalization

import "testing"

func TestTokenSortRatio(t *testing.T) {
	fa := NewFuzzyAlgorithms()

	tests := []struct {
		name string
		s1   string
		s2   string
		min  float64
		max  float64
	}{
		{"identical", "John Doe", "John Doe", 100, 100},
		{"case insensitive", "JOHN DOE", "john doe", 100, 100},
		{"token order", "Doe John", "John Doe", 100, 100},
		{"punctuation ignored", "Doe, John", "John Doe", 100, 100},
		{"both empty", "", "", 100, 100},
		{"one empty", "John Doe", "", 0, 0},
		{"close typo", "Jon Doe", "John Doe", 80, 99},
		{"unrelated", "John Doe", "Acme Holdings LLC", 0, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fa.TokenSortRatio(tt.s1, tt.s2)
			if got < tt.min || got > tt.max {
				t.Errorf("TokenSortRatio(%q, %q) = %.1f, want in [%.1f, %.1f]",
					tt.s1, tt.s2, got, tt.min, tt.max)
			}
		})
	}
}

func TestTokenSetJaccard(t *testing.T) {
	fa := NewFuzzyAlgorithms()

	if got := fa.TokenSetJaccard("john doe", "doe john"); got != 1.0 {
		t.Errorf("expected 1.0 for reordered tokens, got %f", got)
	}
	if got := fa.TokenSetJaccard("john doe", "jane roe"); got != 0.0 {
		t.Errorf("expected 0.0 for disjoint tokens, got %f", got)
	}
	if got := fa.TokenSetJaccard("", ""); got != 1.0 {
		t.Errorf("expected 1.0 for empty inputs, got %f", got)
	}
}

func TestJaroWinklerSimilarity(t *testing.T) {
	fa := NewFuzzyAlgorithms()

	if got := fa.JaroWinklerSimilarity("Smith", "Smith"); got != 1.0 {
		t.Errorf("expected 1.0 for identical input, got %f", got)
	}
	if got := fa.JaroWinklerSimilarity("Smith", ""); got != 0.0 {
		t.Errorf("expected 0.0 for empty input, got %f", got)
	}
	near := fa.JaroWinklerSimilarity("Smith", "Smyth")
	far := fa.JaroWinklerSimilarity("Smith", "Garcia")
	if near <= far {
		t.Errorf("expected Smyth (%f) closer to Smith than Garcia (%f)", near, far)
	}
}
