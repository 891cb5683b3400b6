package contract

import (
	"github.com/JonMunkholm/gdpdash/internal/table"
)

// TypeIssue is a present column whose type can never be coerced to the
// declared one.
type TypeIssue struct {
	Column string
	Have   table.DType
	Want   table.DType
}

// Violation is one row failing one predicate.
type Violation struct {
	Predicate string `json:"predicate"`
	Column    string `json:"column"`
	Row       int    `json:"row"`
	Value     string `json:"value"`
}

// ValidationResult collects every problem found by Validate.
type ValidationResult struct {
	Missing    []string
	TypeIssues []TypeIssue
	Violations []Violation
}

// OK reports whether the table satisfies the contract as it stands.
func (r ValidationResult) OK() bool {
	return len(r.Missing) == 0 && len(r.TypeIssues) == 0 && len(r.Violations) == 0
}

// MissingError returns a *MissingColumnError when required columns are absent.
func (r ValidationResult) MissingError() error {
	if len(r.Missing) == 0 {
		return nil
	}
	return &MissingColumnError{Columns: r.Missing}
}

// Validate checks t against the contract without changing it: required
// columns, type feasibility of present contract columns, and every predicate
// on every row.
func (c *Contract) Validate(t *table.Table) ValidationResult {
	var res ValidationResult

	for _, s := range c.Columns {
		col, ok := t.Column(s.Name)
		if !ok {
			if s.Required {
				res.Missing = append(res.Missing, s.Name)
			}
			continue
		}
		if !table.CanConvert(col.Type(), s.Type) {
			res.TypeIssues = append(res.TypeIssues, TypeIssue{Column: s.Name, Have: col.Type(), Want: s.Type})
		}
	}

	res.Violations = c.Violations(t)
	return res
}

// Violations evaluates every predicate whose column is present, in predicate
// then row order.
func (c *Contract) Violations(t *table.Table) []Violation {
	var out []Violation
	for _, p := range c.Predicates {
		col, ok := t.Column(p.Column)
		if !ok {
			continue
		}
		for i := 0; i < col.Len(); i++ {
			if !p.Holds(col, i) {
				out = append(out, Violation{Predicate: p.Name, Column: col.Name(), Row: i, Value: col.String(i)})
			}
		}
	}
	return out
}
