package domain

import "testing"

func TestParseMinorUnits(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"99.22", 9922},
		{"99", 9900},
		{"0.5", 50},
		{".99", 99},
		{"-12.34", -1234},
		{" 100.00 ", 10000},
	}
	for _, tc := range cases {
		got, err := ParseMinorUnits(tc.in)
		if err != nil {
			t.Fatalf("ParseMinorUnits(%q) returned error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseMinorUnits(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestParseMinorUnitsRejectsBadInput(t *testing.T) {
	for _, in := range []string{"", "abc", "1.234", "1.2.3"} {
		if _, err := ParseMinorUnits(in); err == nil {
			t.Fatalf("ParseMinorUnits(%q) succeeded, want error", in)
		}
	}
}

func TestFormatMinorUnits(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{9922, "99.22"},
		{9900, "99.00"},
		{5, "0.05"},
		{-1234, "-12.34"},
	}
	for _, tc := range cases {
		if got := FormatMinorUnits(tc.in); got != tc.want {
			t.Fatalf("FormatMinorUnits(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
