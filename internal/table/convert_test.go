package table

import "testing"

// ----------------------------------------------------------------------------
// ParseFloat Tests
// ----------------------------------------------------------------------------

func TestParseFloat(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		wantValue float64
	}{
		{name: "positive integer", input: "123", wantValid: true, wantValue: 123},
		{name: "negative integer", input: "-456", wantValid: true, wantValue: -456},
		{name: "decimal number", input: "123.45", wantValid: true, wantValue: 123.45},
		{name: "leading decimal point", input: ".99", wantValid: true, wantValue: 0.99},
		{name: "dollar sign", input: "$1,234.56", wantValid: true, wantValue: 1234.56},
		{name: "euro sign", input: "€1234.56", wantValid: true, wantValue: 1234.56},
		{name: "thousands separator", input: "1,234,567.89", wantValid: true, wantValue: 1234567.89},
		{name: "accounting negative parentheses", input: "(123.45)", wantValid: true, wantValue: -123.45},
		{name: "accounting negative with currency", input: "($1,234.56)", wantValid: true, wantValue: -1234.56},
		{name: "scientific notation", input: "1.5e10", wantValid: true, wantValue: 1.5e10},
		{name: "excel formula prefix", input: `="42"`, wantValid: true, wantValue: 42},
		{name: "surrounded by whitespace", input: "  123.45  ", wantValid: true, wantValue: 123.45},

		{name: "empty string", input: "", wantValid: false},
		{name: "only whitespace", input: "   ", wantValid: false},
		{name: "alphabetic string", input: "abc", wantValid: false},
		{name: "mixed alphanumeric", input: "12abc34", wantValid: false},
		{name: "only currency symbol", input: "$", wantValid: false},
		{name: "multiple decimal points", input: "1.2.3", wantValid: false},
		{name: "null token", input: "N/A", wantValid: false},
		{name: "world bank placeholder", input: "..", wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseFloat(tt.input)
			if ok != tt.wantValid {
				t.Fatalf("ParseFloat(%q) valid = %v, want %v", tt.input, ok, tt.wantValid)
			}
			if ok && got != tt.wantValue {
				t.Errorf("ParseFloat(%q) = %v, want %v", tt.input, got, tt.wantValue)
			}
		})
	}
}

func TestParseInt(t *testing.T) {
	tests := []struct {
		input     string
		wantValid bool
		want      int64
	}{
		{"2020", true, 2020},
		{"2020.0", true, 2020},
		{"1,000", true, 1000},
		{"2020.5", false, 0},
		{"9223372036854775808", false, 0},
		{"9223372036854775808.0", false, 0},
		{"-9223372036854775808", true, -9223372036854775808},
		{"year", false, 0},
		{"", false, 0},
	}

	for _, tt := range tests {
		got, ok := ParseInt(tt.input)
		if ok != tt.wantValid {
			t.Errorf("ParseInt(%q) valid = %v, want %v", tt.input, ok, tt.wantValid)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("ParseInt(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		input     string
		want      bool
		wantValid bool
	}{
		{"true", true, true},
		{"YES", true, true},
		{"y", true, true},
		{"1", true, true},
		{"False", false, true},
		{"no", false, true},
		{"0", false, true},
		{"maybe", false, false},
		{"", false, false},
	}

	for _, tt := range tests {
		got, ok := ParseBool(tt.input)
		if ok != tt.wantValid || got != tt.want {
			t.Errorf("ParseBool(%q) = (%v, %v), want (%v, %v)", tt.input, got, ok, tt.want, tt.wantValid)
		}
	}
}

func TestCleanCell(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  plain  ", "plain"},
		{`="00123"`, "00123"},
		{"=SUM", "SUM"},
		{`"quoted"`, "quoted"},
		{"'single'", "single"},
	}

	for _, tt := range tests {
		if got := CleanCell(tt.input); got != tt.want {
			t.Errorf("CleanCell(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestIsNullToken(t *testing.T) {
	for _, s := range []string{"", " ", "NA", "n/a", "NaN", "null", "None", ".."} {
		if !IsNullToken(s) {
			t.Errorf("IsNullToken(%q) = false, want true", s)
		}
	}
	for _, s := range []string{"0", "Asia", "-"} {
		if IsNullToken(s) {
			t.Errorf("IsNullToken(%q) = true, want false", s)
		}
	}
}
