// Package templates holds the templ components behind the HTML pages.
package templates

import "fmt"

// Definition is one term and value in a summary list.
type Definition struct {
	Term  string
	Value string
}

// ColumnMeta is the profile of one column as shown on the dashboard.
type ColumnMeta struct {
	Name     string
	Type     string
	Nulls    int
	NullRate float64
	Min      string
	Max      string
	Distinct string
}

// TableData is a titled grid of rendered cells.
type TableData struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// DashboardData is everything the dashboard page shows. Loaded is false
// until a run has published a dataset.
type DashboardData struct {
	Loaded     bool
	Source     string
	Summary    []Definition
	Columns    []ColumnMeta
	Continents *TableData
}

// ErrorData is a user-facing error for browsers.
type ErrorData struct {
	Title   string
	Code    string
	Message string
	Action  string
}

func percent(rate float64) string {
	return fmt.Sprintf("%.1f%%", rate*100)
}
