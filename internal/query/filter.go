package query

import (
	"fmt"
	"strings"

	"github.com/JonMunkholm/gdpdash/internal/table"
)

// Column names the query functions read.
const (
	ColumnCountry     = "country"
	ColumnCountryCode = "country_code"
	ColumnContinent   = "continent"
	ColumnYear        = "year"
	ColumnGDP         = "gdp"
)

// Filters narrows a table. Zero values disable a filter.
type Filters struct {
	// Region matches the continent column, case-insensitively.
	Region string `json:"region,omitempty" yaml:"region"`
	// Country matches the country column, case-insensitively.
	Country string `json:"country,omitempty" yaml:"country"`
	// StartYear and EndYear bound the year column inclusively. When only one
	// is set it selects that exact year.
	StartYear *int `json:"start_year,omitempty" yaml:"start_year"`
	EndYear   *int `json:"end_year,omitempty" yaml:"end_year"`
}

// IsZero reports whether no filter is set.
func (f Filters) IsZero() bool {
	return f.Region == "" && f.Country == "" && f.StartYear == nil && f.EndYear == nil
}

// yearBounds resolves the start/end pair into an inclusive range.
func (f Filters) yearBounds() (lo, hi int, ok bool) {
	switch {
	case f.StartYear == nil && f.EndYear == nil:
		return 0, 0, false
	case f.EndYear == nil:
		return *f.StartYear, *f.StartYear, true
	case f.StartYear == nil:
		return *f.EndYear, *f.EndYear, true
	default:
		return *f.StartYear, *f.EndYear, true
	}
}

// Filter applies f to t, then drops rows whose value column is null. A
// filter on a column the table lacks is an error.
func Filter(t *table.Table, f Filters, valueColumn string) (*table.Table, error) {
	keep := make([]bool, t.NumRows())
	for i := range keep {
		keep[i] = true
	}

	if f.Region != "" {
		if err := matchText(t, ColumnContinent, f.Region, keep); err != nil {
			return nil, err
		}
	}
	if f.Country != "" {
		if err := matchText(t, ColumnCountry, f.Country, keep); err != nil {
			return nil, err
		}
	}
	if lo, hi, ok := f.yearBounds(); ok {
		year, found := t.Column(ColumnYear)
		if !found {
			return nil, fmt.Errorf("filter: table has no %q column", ColumnYear)
		}
		for i := range keep {
			y, valid := year.Float(i)
			if !valid {
				if v, parsed := table.ParseInt(year.String(i)); parsed {
					y, valid = float64(v), true
				}
			}
			if !valid || y < float64(lo) || y > float64(hi) {
				keep[i] = false
			}
		}
	}

	if valueColumn != "" {
		v, ok := t.Column(valueColumn)
		if !ok {
			return nil, fmt.Errorf("filter: table has no %q column", valueColumn)
		}
		for i := range keep {
			if v.IsNull(i) {
				keep[i] = false
			}
		}
	}

	return t.Filter(keep)
}

func matchText(t *table.Table, column, want string, keep []bool) error {
	c, ok := t.Column(column)
	if !ok {
		return fmt.Errorf("filter: table has no %q column", column)
	}
	want = strings.TrimSpace(want)
	for i := range keep {
		if c.IsNull(i) || !strings.EqualFold(strings.TrimSpace(c.String(i)), want) {
			keep[i] = false
		}
	}
	return nil
}
