// Package query reshapes, filters and aggregates cleaned GDP tables for the
// CLI, the dashboard and the exporters. Every function returns a new table
// and leaves its input untouched.
package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/gdpdash/internal/table"
)

// Rename returns a copy of t with columns renamed per names (old → new,
// matched case-insensitively). Unknown old names are an error.
func Rename(t *table.Table, names map[string]string) (*table.Table, error) {
	for old := range names {
		if !t.Has(old) {
			return nil, fmt.Errorf("rename: column %q not found", old)
		}
	}

	cols := make([]*table.Column, 0, t.NumCols())
	for _, c := range t.Columns() {
		name := c.Name()
		for old, repl := range names {
			if strings.EqualFold(old, name) {
				name = repl
				break
			}
		}
		cols = append(cols, c.Rename(name))
	}
	out, err := table.New(cols...)
	if err != nil {
		return nil, fmt.Errorf("rename: %w", err)
	}
	return out, nil
}

// Melt turns a wide table (one column per year) into a long one. Every
// column not listed in idColumns becomes a value column: each row yields one
// output row per value column, with the column name in varName and the cell
// in valueName. Output rows are ordered value column first, then source row.
//
// varName becomes an Int column when every value column name is an integer
// (the usual "1960" … "2024" headers) and Text otherwise. valueName is a
// Float column; cells that are not numbers become null.
func Melt(t *table.Table, idColumns []string, varName, valueName string) (*table.Table, error) {
	if varName == "" || valueName == "" || strings.EqualFold(varName, valueName) {
		return nil, fmt.Errorf("melt: var and value names must be set and differ (got %q, %q)", varName, valueName)
	}

	ids := make([]*table.Column, 0, len(idColumns))
	isID := make(map[string]bool, len(idColumns))
	for _, name := range idColumns {
		c, ok := t.Column(name)
		if !ok {
			return nil, fmt.Errorf("melt: id column %q not found", name)
		}
		if strings.EqualFold(name, varName) || strings.EqualFold(name, valueName) {
			return nil, fmt.Errorf("melt: id column %q collides with an output column", name)
		}
		ids = append(ids, c)
		isID[strings.ToLower(c.Name())] = true
	}

	var values []*table.Column
	numericVars := true
	for _, c := range t.Columns() {
		if isID[strings.ToLower(c.Name())] {
			continue
		}
		if _, err := strconv.ParseInt(strings.TrimSpace(c.Name()), 10, 64); err != nil {
			numericVars = false
		}
		values = append(values, c)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("melt: no value columns besides %s", strings.Join(idColumns, ", "))
	}

	rows := t.NumRows()
	total := rows * len(values)

	outIDs := make([]*table.Column, len(ids))
	for j, c := range ids {
		outIDs[j] = table.NewNullColumn(c.Name(), c.Type(), total)
	}
	varType := table.Text
	if numericVars {
		varType = table.Int
	}
	varCol := table.NewNullColumn(varName, varType, total)
	valCells := make([]pgtype.Float8, total)

	k := 0
	for _, vc := range values {
		label := strings.TrimSpace(vc.Name())
		for i := 0; i < rows; i++ {
			for j, c := range ids {
				outIDs[j].Copy(k, c, i)
			}
			varCol.SetString(k, label)
			if f, ok := cellFloat(vc, i); ok {
				valCells[k] = pgtype.Float8{Float64: f, Valid: true}
			}
			k++
		}
	}

	cols := append(outIDs, varCol, table.NewFloatColumn(valueName, valCells))
	out, err := table.New(cols...)
	if err != nil {
		return nil, fmt.Errorf("melt: %w", err)
	}
	return out, nil
}

// cellFloat reads a numeric value from any column type.
func cellFloat(c *table.Column, i int) (float64, bool) {
	if c.IsNull(i) {
		return 0, false
	}
	if c.Type().IsNumeric() {
		return c.Float(i)
	}
	if c.Type() == table.Text {
		return table.ParseFloat(c.String(i))
	}
	return 0, false
}
