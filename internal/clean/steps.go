package clean

import (
	"fmt"
	"strings"

	"github.com/JonMunkholm/gdpdash/internal/contract"
	"github.com/JonMunkholm/gdpdash/internal/table"
)

// EnforceColumns fails when required columns are missing and appends absent
// optional columns as nulls. Present contract columns take the contract's
// spelling of their name.
type EnforceColumns struct{}

func (EnforceColumns) Name() string { return "enforce_columns" }

func (EnforceColumns) Apply(t *table.Table, c *contract.Contract, rep *Report) (*table.Table, error) {
	res := c.Validate(t)
	if err := res.MissingError(); err != nil {
		return nil, &contract.ContractViolationError{Contract: c.Name, Err: err}
	}
	if len(res.TypeIssues) > 0 {
		issue := res.TypeIssues[0]
		return nil, &contract.ContractViolationError{
			Contract: c.Name,
			Err:      fmt.Errorf("column %q is %s and cannot be coerced to %s", issue.Column, issue.Have, issue.Want),
		}
	}

	for _, s := range c.Columns {
		col, ok := t.Column(s.Name)
		if !ok {
			if err := t.Append(table.NewNullColumn(s.Name, s.Type, t.NumRows())); err != nil {
				return nil, err
			}
			rep.AddedColumns = append(rep.AddedColumns, s.Name)
			continue
		}
		if col.Name() != s.Name {
			if err := t.Replace(col.Rename(s.Name)); err != nil {
				return nil, err
			}
		}
	}
	return t, nil
}

// CoerceTypes converts contract columns to their declared types and applies
// text normalizers. Cells that do not convert become null; rows are kept.
type CoerceTypes struct{}

func (CoerceTypes) Name() string { return "coerce_types" }

func (CoerceTypes) Apply(t *table.Table, c *contract.Contract, rep *Report) (*table.Table, error) {
	for _, s := range c.Columns {
		col, ok := t.Column(s.Name)
		if !ok {
			continue
		}

		if col.Type() != s.Type {
			converted, failed, err := col.Convert(s.Type)
			if err != nil {
				return nil, err
			}
			if failed > 0 {
				rep.CoercedNulls[s.Name] += failed
			}
			col = converted
		}

		if fn := normalizer(s); fn != nil {
			col = normalizeText(col, fn)
		}

		if err := t.Replace(col); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func normalizer(s contract.ColumnSpec) func(string) string {
	if s.Normalize == "" || s.Type != table.Text {
		return nil
	}
	return contract.Normalizers[strings.ToLower(s.Normalize)]
}

// normalizeText applies fn to every non-null cell; cells it empties become null.
func normalizeText(col *table.Column, fn func(string) string) *table.Column {
	out := col.MapText(fn)
	for i := 0; i < out.Len(); i++ {
		if !out.IsNull(i) && table.IsNullToken(out.String(i)) {
			out.SetNull(i)
		}
	}
	return out
}

// RemediateMissing fills nulls from each column's declared default. A required
// column that still holds nulls afterwards fails the run.
type RemediateMissing struct{}

func (RemediateMissing) Name() string { return "remediate_missing" }

func (RemediateMissing) Apply(t *table.Table, c *contract.Contract, rep *Report) (*table.Table, error) {
	for _, s := range c.Columns {
		col, ok := t.Column(s.Name)
		if !ok {
			continue
		}

		if col.NullCount() > 0 {
			filled, err := fill(t, col, s)
			if err != nil {
				return nil, err
			}
			if filled > 0 {
				rep.Filled[s.Name] += filled
			}
		}

		if !s.Required {
			continue
		}
		if n := col.NullCount(); n > 0 {
			first := 0
			for col.IsNull(first) {
				first++
			}
			return nil, &contract.UnresolvedNullError{Column: s.Name, Remaining: n, Row: first}
		}
	}
	return t, nil
}

// fill remediates nulls in col in place and returns how many cells it filled.
func fill(t *table.Table, col *table.Column, s contract.ColumnSpec) (int, error) {
	d := s.Default
	switch d.Kind {
	case contract.DefaultFixed:
		n := 0
		for i := 0; i < col.Len(); i++ {
			if col.IsNull(i) && col.SetString(i, d.Value) {
				n++
			}
		}
		return n, nil

	case contract.DefaultForwardFill, contract.DefaultBackwardFill:
		groups, err := groupKeys(t, d.GroupBy, col.Len())
		if err != nil {
			return 0, fmt.Errorf("column %q: %w", s.Name, err)
		}
		return fillAdjacent(col, groups, d.Kind == contract.DefaultBackwardFill), nil

	case contract.DefaultLookup:
		key, ok := t.Column(d.KeyColumn)
		if !ok {
			// Nothing to look up; a required column fails as unresolved.
			return 0, nil
		}
		lookup := make(map[string]string, len(d.Table))
		for k, v := range d.Table {
			lookup[contract.FoldKey(k)] = v
		}
		norm := normalizer(s)

		n := 0
		for i := 0; i < col.Len(); i++ {
			if !col.IsNull(i) || key.IsNull(i) {
				continue
			}
			v, ok := lookup[contract.FoldKey(key.String(i))]
			if !ok {
				continue
			}
			if norm != nil {
				v = norm(v)
			}
			if col.SetString(i, v) {
				n++
			}
		}
		return n, nil
	}
	return 0, nil
}

// groupKeys returns one group key per row. Without a group column every row
// shares a group.
func groupKeys(t *table.Table, groupBy string, n int) ([]string, error) {
	keys := make([]string, n)
	if groupBy == "" {
		return keys, nil
	}
	g, ok := t.Column(groupBy)
	if !ok {
		return nil, fmt.Errorf("group column %q not found", groupBy)
	}
	for i := range keys {
		if g.IsNull(i) {
			keys[i] = "\x00null"
			continue
		}
		keys[i] = g.String(i)
	}
	return keys, nil
}

// fillAdjacent copies the nearest earlier (or later, when backward) non-null
// value of the same group into each null cell.
func fillAdjacent(col *table.Column, groups []string, backward bool) int {
	last := make(map[string]int)
	n := 0
	visit := func(i int) {
		g := groups[i]
		if !col.IsNull(i) {
			last[g] = i
			return
		}
		if src, ok := last[g]; ok {
			col.Copy(i, col, src)
			n++
		}
	}
	if backward {
		for i := col.Len() - 1; i >= 0; i-- {
			visit(i)
		}
	} else {
		for i := 0; i < col.Len(); i++ {
			visit(i)
		}
	}
	return n
}

// FilterRows applies each predicate in declaration order. Violations are
// recorded and remediated per the predicate's policy, never raised.
type FilterRows struct{}

func (FilterRows) Name() string { return "filter_rows" }

func (FilterRows) Apply(t *table.Table, c *contract.Contract, rep *Report) (*table.Table, error) {
	keep := make([]bool, t.NumRows())
	for i := range keep {
		keep[i] = true
	}

	for _, p := range c.Predicates {
		col, ok := t.Column(p.Column)
		if !ok {
			continue
		}
		for i := 0; i < col.Len(); i++ {
			if !keep[i] || p.Holds(col, i) {
				continue
			}
			rep.Violations = append(rep.Violations, contract.Violation{
				Predicate: p.Name, Column: col.Name(), Row: i, Value: col.String(i),
			})

			switch p.Policy {
			case contract.Drop:
				keep[i] = false
			case contract.Clamp:
				v, _ := col.Float(i)
				if col.SetFloat(i, p.ClampValue(v, col.Type() == table.Int)) {
					rep.Clamped[p.Name]++
				}
			case contract.Nullify:
				col.SetNull(i)
				rep.Nullified[p.Name]++
			}
		}
	}

	dropped := 0
	for _, k := range keep {
		if !k {
			dropped++
		}
	}
	if dropped == 0 {
		return t, nil
	}
	rep.RemovedRows += dropped
	return t.Filter(keep)
}

// DropDuplicates keeps the first row for each unique key. Rows with a null in
// any key column are never treated as duplicates. Contracts without a key, or
// tables missing a key column, pass through unchanged.
type DropDuplicates struct{}

func (DropDuplicates) Name() string { return "drop_duplicates" }

func (DropDuplicates) Apply(t *table.Table, c *contract.Contract, rep *Report) (*table.Table, error) {
	if len(c.UniqueKey) == 0 {
		return t, nil
	}
	cols := make([]*table.Column, len(c.UniqueKey))
	for i, name := range c.UniqueKey {
		col, ok := t.Column(name)
		if !ok {
			return t, nil
		}
		cols[i] = col
	}

	keep := make([]bool, t.NumRows())
	seen := make(map[string]bool, t.NumRows())
	dropped := 0
	var b strings.Builder
	for i := range keep {
		keep[i] = true
		b.Reset()
		hasNull := false
		for _, col := range cols {
			if col.IsNull(i) {
				hasNull = true
				break
			}
			b.WriteString(col.String(i))
			b.WriteByte(0x1f)
		}
		if hasNull {
			continue
		}
		k := b.String()
		if seen[k] {
			keep[i] = false
			dropped++
			continue
		}
		seen[k] = true
	}

	if dropped == 0 {
		return t, nil
	}
	rep.DuplicateRows += dropped
	return t.Filter(keep)
}
