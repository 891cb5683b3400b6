// Package table holds the in-memory tabular model shared by loaders, the
// cleaning pipeline and metadata computation.
//
// A Table is an ordered list of named columns of equal length. Column names
// are matched case-insensitively, mirroring how headers are matched in source
// files. Cells are stored as nullable pgtype values; Column.Cell hands them to
// pgx unchanged, which is how the PostgreSQL export copies a table.
package table

import (
	"fmt"
	"strings"
)

// Table is an ordered sequence of equally long named columns.
type Table struct {
	cols  []*Column
	index map[string]int
}

// New builds a table. Column names must be unique (case-insensitive) and all
// columns must have the same length.
func New(cols ...*Column) (*Table, error) {
	t := &Table{index: make(map[string]int, len(cols))}
	for _, c := range cols {
		if err := t.Append(c); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// MustNew is New for fixtures; it panics on error.
func MustNew(cols ...*Column) *Table {
	t, err := New(cols...)
	if err != nil {
		panic(err)
	}
	return t
}

// NumRows returns the row count; a table without columns has zero rows.
func (t *Table) NumRows() int {
	if len(t.cols) == 0 {
		return 0
	}
	return t.cols[0].Len()
}

// NumCols returns the column count.
func (t *Table) NumCols() int { return len(t.cols) }

// Columns returns the columns in order. The slice must not be modified.
func (t *Table) Columns() []*Column { return t.cols }

// Names returns the column names in order.
func (t *Table) Names() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name()
	}
	return names
}

// Column looks up a column by name, case-insensitively.
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[key(name)]
	if !ok {
		return nil, false
	}
	return t.cols[i], true
}

// Has reports whether a column exists.
func (t *Table) Has(name string) bool {
	_, ok := t.index[key(name)]
	return ok
}

// Append adds a column at the end.
func (t *Table) Append(c *Column) error {
	if c == nil {
		return fmt.Errorf("nil column")
	}
	k := key(c.Name())
	if k == "" {
		return fmt.Errorf("column %d has an empty name", len(t.cols)+1)
	}
	if _, exists := t.index[k]; exists {
		return fmt.Errorf("duplicate column %q", c.Name())
	}
	if len(t.cols) > 0 && c.Len() != t.NumRows() {
		return fmt.Errorf("column %q has %d values, table has %d rows", c.Name(), c.Len(), t.NumRows())
	}
	t.index[k] = len(t.cols)
	t.cols = append(t.cols, c)
	return nil
}

// Replace swaps the column with the same name for c, keeping its position.
func (t *Table) Replace(c *Column) error {
	i, ok := t.index[key(c.Name())]
	if !ok {
		return fmt.Errorf("column %q not found", c.Name())
	}
	if c.Len() != t.NumRows() {
		return fmt.Errorf("column %q has %d values, table has %d rows", c.Name(), c.Len(), t.NumRows())
	}
	t.cols[i] = c
	return nil
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	out := &Table{
		cols:  make([]*Column, len(t.cols)),
		index: make(map[string]int, len(t.index)),
	}
	for i, c := range t.cols {
		out.cols[i] = c.Clone()
	}
	for k, v := range t.index {
		out.index[k] = v
	}
	return out
}

// Filter returns a new table holding only the rows where keep is true.
func (t *Table) Filter(keep []bool) (*Table, error) {
	if len(keep) != t.NumRows() {
		return nil, fmt.Errorf("filter mask has %d entries, table has %d rows", len(keep), t.NumRows())
	}
	out := &Table{index: make(map[string]int, len(t.cols))}
	for _, c := range t.cols {
		if err := out.Append(c.Filter(keep)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Row returns the values of row i in column order (nil for nulls).
func (t *Table) Row(i int) []any {
	row := make([]any, len(t.cols))
	for j, c := range t.cols {
		row[j] = c.Value(i)
	}
	return row
}

// Equal reports whether two tables have the same columns in the same order
// with identical cells.
func (t *Table) Equal(other *Table) bool {
	if t == nil || other == nil {
		return t == other
	}
	if len(t.cols) != len(other.cols) {
		return false
	}
	for i := range t.cols {
		if !t.cols[i].Equal(other.cols[i]) {
			return false
		}
	}
	return true
}

func key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
