package query

import (
	"fmt"
	"sort"

	"github.com/JonMunkholm/gdpdash/internal/table"
)

// Query is a filter followed by an optional aggregation.
type Query struct {
	Filters `yaml:",inline"`
	// GroupBy is continent, country, country_code or all. Empty skips
	// aggregation and returns the filtered rows.
	GroupBy   string `json:"group_by,omitempty" yaml:"group_by"`
	Operation string `json:"operation,omitempty" yaml:"operation"`
	// Value names the measured column; empty means gdp.
	Value string `json:"value,omitempty" yaml:"value"`
}

// Run applies q to t.
func Run(t *table.Table, q Query) (*table.Table, error) {
	value := q.Value
	if value == "" {
		value = ColumnGDP
	}
	op, err := ParseOperation(q.Operation)
	if err != nil {
		return nil, err
	}

	filtered, err := Filter(t, q.Filters, value)
	if err != nil {
		return nil, err
	}
	if q.GroupBy == "" {
		return filtered, nil
	}

	by, err := GroupColumns(filtered, q.GroupBy)
	if err != nil {
		return nil, err
	}
	return Aggregate(filtered, by, value, op)
}

// Dimensions lists what a table can be filtered on.
type Dimensions struct {
	Regions   []string `json:"regions"`
	Countries []string `json:"countries"`
	MinYear   *int64   `json:"min_year,omitempty"`
	MaxYear   *int64   `json:"max_year,omitempty"`
}

// Describe returns the distinct regions and countries of t, sorted, and its
// year range. Missing columns leave the corresponding field empty.
func Describe(t *table.Table) Dimensions {
	d := Dimensions{
		Regions:   distinct(t, ColumnContinent),
		Countries: distinct(t, ColumnCountry),
	}
	if year, ok := t.Column(ColumnYear); ok && year.Type().IsNumeric() {
		for i := 0; i < year.Len(); i++ {
			f, ok := year.Float(i)
			if !ok {
				continue
			}
			y := int64(f)
			if d.MinYear == nil || y < *d.MinYear {
				lo := y
				d.MinYear = &lo
			}
			if d.MaxYear == nil || y > *d.MaxYear {
				hi := y
				d.MaxYear = &hi
			}
		}
	}
	return d
}

func distinct(t *table.Table, column string) []string {
	c, ok := t.Column(column)
	if !ok {
		return []string{}
	}
	seen := make(map[string]bool)
	out := []string{}
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			continue
		}
		s := c.String(i)
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

// String renders the query compactly for logs.
func (q Query) String() string {
	s := fmt.Sprintf("region=%q country=%q", q.Region, q.Country)
	if q.StartYear != nil {
		s += fmt.Sprintf(" start=%d", *q.StartYear)
	}
	if q.EndYear != nil {
		s += fmt.Sprintf(" end=%d", *q.EndYear)
	}
	if q.GroupBy != "" {
		s += fmt.Sprintf(" group_by=%s op=%s", q.GroupBy, q.Operation)
	}
	return s
}
