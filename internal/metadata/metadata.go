// Package metadata derives structural statistics from a cleaned table.
//
// Compute is a pure function of its input: the same table always yields an
// identical Record, and a zero-row table yields a well-formed record with
// zero counts and zero null rates.
package metadata

import (
	"fmt"
	"strings"

	"github.com/JonMunkholm/gdpdash/internal/table"
)

// ColumnStats summarizes one column. Numeric columns carry Min and Max
// (nil when every cell is null); other columns carry Distinct.
type ColumnStats struct {
	Name      string      `json:"name"`
	DType     table.DType `json:"dtype"`
	NullCount int         `json:"null_count"`
	NullRate  float64     `json:"null_rate"`
	Min       *float64    `json:"min,omitempty"`
	Max       *float64    `json:"max,omitempty"`
	Distinct  *int        `json:"distinct,omitempty"`
}

// Record is the metadata of one table.
type Record struct {
	RowCount    int            `json:"row_count"`
	ColumnCount int            `json:"column_count"`
	DTypes      map[string]int `json:"dtypes"`
	Columns     []ColumnStats  `json:"columns"`
}

// Column returns the stats for a column, matched case-insensitively.
func (r Record) Column(name string) (ColumnStats, bool) {
	for _, c := range r.Columns {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return ColumnStats{}, false
}

// ComputationError reports a table whose shape makes metadata undefined.
type ComputationError struct {
	Column string
	Reason string
}

func (e *ComputationError) Error() string {
	if e.Column == "" {
		return "metadata: " + e.Reason
	}
	return fmt.Sprintf("metadata: column %q: %s", e.Column, e.Reason)
}

// Compute derives the metadata record of t.
func Compute(t *table.Table) (Record, error) {
	if t == nil {
		return Record{}, &ComputationError{Reason: "nil table"}
	}

	rows := t.NumRows()
	rec := Record{
		RowCount:    rows,
		ColumnCount: t.NumCols(),
		DTypes:      make(map[string]int),
		Columns:     make([]ColumnStats, 0, t.NumCols()),
	}

	for _, col := range t.Columns() {
		if col.Len() != rows {
			return Record{}, &ComputationError{
				Column: col.Name(),
				Reason: fmt.Sprintf("has %d values, table has %d rows", col.Len(), rows),
			}
		}
		rec.DTypes[col.Type().String()]++
		rec.Columns = append(rec.Columns, columnStats(col, rows))
	}
	return rec, nil
}

func columnStats(col *table.Column, rows int) ColumnStats {
	st := ColumnStats{Name: col.Name(), DType: col.Type(), NullCount: col.NullCount()}
	if rows > 0 {
		st.NullRate = float64(st.NullCount) / float64(rows)
	}

	if col.Type().IsNumeric() {
		for i := 0; i < rows; i++ {
			v, ok := col.Float(i)
			if !ok {
				continue
			}
			if st.Min == nil || v < *st.Min {
				st.Min = &v
			}
			if st.Max == nil || v > *st.Max {
				st.Max = &v
			}
		}
		return st
	}

	seen := make(map[string]struct{})
	for i := 0; i < rows; i++ {
		if !col.IsNull(i) {
			seen[col.String(i)] = struct{}{}
		}
	}
	n := len(seen)
	st.Distinct = &n
	return st
}
