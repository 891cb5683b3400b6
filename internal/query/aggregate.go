package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/gdpdash/internal/table"
)

// Operation is an aggregation function.
type Operation string

const (
	OpSum Operation = "sum"
	OpAvg Operation = "avg"
)

// ParseOperation accepts sum, avg, average and mean. Empty means avg.
func ParseOperation(s string) (Operation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "avg", "average", "mean":
		return OpAvg, nil
	case "sum", "total":
		return OpSum, nil
	default:
		return "", fmt.Errorf("unknown operation %q (want sum or avg)", s)
	}
}

// Label is the value written to the operation column.
func (op Operation) Label() string {
	if op == OpSum {
		return "Sum"
	}
	return "Average"
}

// Grouping names accepted by GroupColumns.
const (
	GroupContinent   = "continent"
	GroupCountry     = "country"
	GroupCountryCode = "country_code"
	GroupAll         = "all"
)

// dimensionColumns are the identifier columns grouped on by GroupAll, in
// output order. Absent ones are skipped.
var dimensionColumns = []string{ColumnCountry, ColumnCountryCode, "indicator_name", "indicator_code", ColumnContinent}

// GroupColumns resolves a grouping name against t.
func GroupColumns(t *table.Table, by string) ([]string, error) {
	switch strings.ToLower(strings.TrimSpace(by)) {
	case GroupContinent:
		return []string{ColumnContinent}, nil
	case GroupCountry:
		return []string{ColumnCountry}, nil
	case GroupCountryCode:
		return []string{ColumnCountryCode}, nil
	case "", GroupAll:
		var cols []string
		for _, c := range dimensionColumns {
			if t.Has(c) {
				cols = append(cols, c)
			}
		}
		if len(cols) == 0 {
			return nil, fmt.Errorf("aggregate: table has none of the dimension columns %s", strings.Join(dimensionColumns, ", "))
		}
		return cols, nil
	default:
		return nil, fmt.Errorf("unknown grouping %q (want continent, country, country_code or all)", by)
	}
}

// Aggregate groups t by the named columns and reduces valueColumn with op.
// Null values are skipped; rows with a null group key are dropped. Groups
// come out sorted by key. The result carries the group columns, the reduced
// value column and an "operation" column naming op.
func Aggregate(t *table.Table, by []string, valueColumn string, op Operation) (*table.Table, error) {
	keys := make([]*table.Column, len(by))
	for j, name := range by {
		c, ok := t.Column(name)
		if !ok {
			return nil, fmt.Errorf("aggregate: table has no %q column", name)
		}
		keys[j] = c
	}
	val, ok := t.Column(valueColumn)
	if !ok {
		return nil, fmt.Errorf("aggregate: table has no %q column", valueColumn)
	}
	if !val.Type().IsNumeric() {
		return nil, fmt.Errorf("aggregate: column %q is %s, not numeric", valueColumn, val.Type())
	}

	type group struct {
		first int
		sum   float64
		n     int
	}
	groups := make(map[string]*group)
	var order []string
	var b strings.Builder

rows:
	for i := 0; i < t.NumRows(); i++ {
		b.Reset()
		for _, c := range keys {
			if c.IsNull(i) {
				continue rows
			}
			b.WriteString(c.String(i))
			b.WriteByte(0x1f)
		}
		k := b.String()
		g, ok := groups[k]
		if !ok {
			g = &group{first: i}
			groups[k] = g
			order = append(order, k)
		}
		if v, ok := val.Float(i); ok {
			g.sum += v
			g.n++
		}
	}

	sort.SliceStable(order, func(a, b int) bool {
		return lessRow(keys, groups[order[a]].first, groups[order[b]].first)
	})

	outKeys := make([]*table.Column, len(keys))
	for j, c := range keys {
		outKeys[j] = table.NewNullColumn(c.Name(), c.Type(), len(order))
	}
	values := make([]pgtype.Float8, len(order))
	labels := make([]pgtype.Text, len(order))
	for r, k := range order {
		g := groups[k]
		for j, c := range keys {
			outKeys[j].Copy(r, c, g.first)
		}
		switch {
		case op == OpSum:
			values[r] = pgtype.Float8{Float64: g.sum, Valid: true}
		case g.n > 0:
			values[r] = pgtype.Float8{Float64: g.sum / float64(g.n), Valid: true}
		}
		labels[r] = pgtype.Text{String: op.Label(), Valid: true}
	}

	cols := append(outKeys,
		table.NewFloatColumn(val.Name(), values),
		table.NewTextColumn("operation", labels),
	)
	return table.New(cols...)
}

// lessRow orders two rows by the key columns, numerically where possible.
func lessRow(keys []*table.Column, a, b int) bool {
	for _, c := range keys {
		if c.Type().IsNumeric() {
			x, _ := c.Float(a)
			y, _ := c.Float(b)
			if x != y {
				return x < y
			}
			continue
		}
		x, y := c.String(a), c.String(b)
		if x != y {
			return x < y
		}
	}
	return false
}
