package table

// convert.go turns raw cell text into typed values.
//
// Source files are messy in predictable ways:
//   - Currency symbols and thousand separators in numbers
//   - Accounting negatives written as (123.45)
//   - Excel formula prefixes (="value")
//   - Placeholder tokens for missing data (NA, N/A, .., null)
//
// Every Parse* function reports ok=false instead of failing so callers can
// turn unparseable cells into nulls.

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// numericRegex validates that a string is a plain decimal number after cleanup.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// nullTokens are cell spellings treated as missing data.
var nullTokens = map[string]bool{
	"":     true,
	"na":   true,
	"n/a":  true,
	"nan":  true,
	"null": true,
	"none": true,
	"..":   true,
}

// IsNullToken reports whether a cleaned cell denotes a missing value.
func IsNullToken(s string) bool {
	return nullTokens[strings.ToLower(strings.TrimSpace(s))]
}

// CleanCell removes common spreadsheet artifacts from a cell value:
// - Trims whitespace
// - Removes Excel formula prefix (="...")
// - Removes surrounding quotes
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") && len(s) >= 3 {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.TrimSpace(strings.Trim(s, `"'`))
}

// ParseFloat converts a cell to a float64.
// Handles currency symbols, thousands separators, and accounting format (parentheses for negative).
func ParseFloat(s string) (float64, bool) {
	s = CleanCell(s)
	if IsNullToken(s) {
		return 0, false
	}

	isNegative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		isNegative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, "€", "") // Euro
	s = strings.ReplaceAll(s, "£", "") // Pound
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	if isNegative {
		s = "-" + s
	}

	if !numericRegex.MatchString(s) {
		return 0, false
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// ParseInt converts a cell to an int64.
// Integral floats such as "2020.0" are accepted; fractional values are not.
func ParseInt(s string) (int64, bool) {
	cleaned := CleanCell(s)
	if i, err := strconv.ParseInt(cleaned, 10, 64); err == nil {
		return i, true
	}
	f, ok := ParseFloat(cleaned)
	if !ok {
		return 0, false
	}
	return floatToInt(f)
}

// ParseBool accepts various representations: true/false, yes/no, t/f, y/n, 1/0.
func ParseBool(s string) (bool, bool) {
	switch strings.ToLower(CleanCell(s)) {
	case "true", "t", "yes", "y", "1":
		return true, true
	case "false", "f", "no", "n", "0":
		return false, true
	default:
		return false, false
	}
}

func floatToInt(f float64) (int64, bool) {
	if f != math.Trunc(f) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}

// FormatFloat renders a float without exponent noise.
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
