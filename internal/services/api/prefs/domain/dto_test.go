package domain

import "testing"

func TestParseThreshold(t *testing.T) {
	cases := map[string]int{
		"":       DefaultThreshold,
		"abc":    DefaultThreshold,
		"NaN":    DefaultThreshold,
		"72":     72,
		" 15 ":   15,
		"49.6":   50,
		"-3":     0,
		"140":    100,
		"+Inf":   100,
		"-Inf":   0,
		"0":      0,
		"100.49": 100,
	}
	for in, want := range cases {
		if got := ParseThreshold(in); got != want {
			t.Fatalf("ParseThreshold(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestFormatThreshold_Clamps(t *testing.T) {
	if FormatThreshold(120) != "100" || FormatThreshold(-1) != "0" || FormatThreshold(42) != "42" {
		t.Fatalf("FormatThreshold should clamp before encoding")
	}
}
