// Package formats provides the built-in CSV, Excel and JSON loaders.
//
// Each loader decodes its encoding into raw cell text and then infers a type
// per column: a column becomes Int when every non-null cell is an integer,
// Float when every non-null cell is a number, Bool when every non-null cell
// is true/false, and Text otherwise. Malformed input is always reported as a
// *loader.LoadError; rows are never dropped here.
package formats

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/gdpdash/internal/loader"
	"github.com/JonMunkholm/gdpdash/internal/table"
)

// inferColumn types a column of raw cells.
func inferColumn(name string, raw []string) *table.Column {
	cells := make([]string, len(raw))
	isInt, isFloat, isBool := true, true, true
	seen := 0

	for i, r := range raw {
		v := table.CleanCell(r)
		if table.IsNullToken(v) {
			cells[i] = ""
			continue
		}
		cells[i] = v
		seen++

		if isInt {
			if _, err := strconv.ParseInt(v, 10, 64); err != nil {
				isInt = false
			}
		}
		if isFloat {
			if _, ok := table.ParseFloat(v); !ok {
				isFloat = false
			}
		}
		if isBool {
			lv := strings.ToLower(v)
			isBool = lv == "true" || lv == "false"
		}
	}

	switch {
	case seen == 0:
		return table.NewNullColumn(name, table.Text, len(raw))
	case isInt:
		out := make([]pgtype.Int8, len(cells))
		for i, v := range cells {
			if v != "" {
				n, _ := strconv.ParseInt(v, 10, 64)
				out[i] = pgtype.Int8{Int64: n, Valid: true}
			}
		}
		return table.NewIntColumn(name, out)
	case isFloat:
		out := make([]pgtype.Float8, len(cells))
		for i, v := range cells {
			if v != "" {
				f, _ := table.ParseFloat(v)
				out[i] = pgtype.Float8{Float64: f, Valid: true}
			}
		}
		return table.NewFloatColumn(name, out)
	case isBool:
		out := make([]pgtype.Bool, len(cells))
		for i, v := range cells {
			if v != "" {
				out[i] = pgtype.Bool{Bool: strings.EqualFold(v, "true"), Valid: true}
			}
		}
		return table.NewBoolColumn(name, out)
	default:
		out := make([]pgtype.Text, len(cells))
		for i, v := range cells {
			if v != "" {
				out[i] = pgtype.Text{String: v, Valid: true}
			}
		}
		return table.NewTextColumn(name, out)
	}
}

// buildTable infers every column of a row-major grid. header and rows must
// already be validated for shape.
func buildTable(req loader.Request, format string, header []string, rows [][]string) (*table.Table, error) {
	cols := make([]*table.Column, len(header))
	raw := make([]string, len(rows))
	for j, name := range header {
		for i, row := range rows {
			raw[i] = row[j]
		}
		cols[j] = inferColumn(name, raw)
	}

	t, err := table.New(cols...)
	if err != nil {
		return nil, loader.NewLoadError(req, format, "invalid header", err)
	}
	return t, nil
}

// normalizeHeader trims header names and names blank ones by position.
// Duplicate names (case-insensitive) are rejected.
func normalizeHeader(req loader.Request, format string, header []string) ([]string, error) {
	out := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		name := table.CleanCell(h)
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		k := strings.ToLower(name)
		if prev, dup := seen[k]; dup {
			return nil, loader.NewLoadError(req, format,
				fmt.Sprintf("duplicate column %q at positions %d and %d", name, prev+1, i+1), nil)
		}
		seen[k] = i
		out[i] = name
	}
	return out, nil
}
