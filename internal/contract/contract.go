// Package contract describes what a valid GDP dataset looks like.
//
// A Contract names the columns a cleaned table must carry, the type each
// column is coerced to, how nulls are remediated, and which row-level
// predicates must hold. Contracts are plain values: the declarative package
// builds them from pipeline files, GDP returns the built-in one, and the
// cleaning pipeline consumes them without modification.
package contract

import (
	"fmt"
	"strings"

	"github.com/JonMunkholm/gdpdash/internal/table"
)

// Default describes how nulls in a column are filled.
type Default struct {
	Kind DefaultKind

	// Value is the fixed value, parsed according to the column type.
	Value string

	// GroupBy restricts forward and backward fills to rows sharing this
	// column's value (e.g. country). Empty fills across the whole column.
	GroupBy string

	// KeyColumn and Table drive lookup defaults: the cell is filled with
	// Table[lower(KeyColumn value)].
	KeyColumn string
	Table     map[string]string
}

// ColumnSpec declares one contract column.
type ColumnSpec struct {
	Name     string
	Type     table.DType
	Required bool
	Default  Default

	// Normalize names an entry of Normalizers applied to text columns.
	Normalize string
}

// Predicate is a row-level constraint on one column.
type Predicate struct {
	Name   string
	Column string
	Kind   PredicateKind
	Min    *float64
	Max    *float64
	Values []string
	Policy Policy
}

// Contract is the declarative schema a cleaned dataset must satisfy.
type Contract struct {
	Name       string
	Columns    []ColumnSpec
	Predicates []Predicate

	// UniqueKey lists the columns identifying a row. Later duplicates are
	// dropped during cleaning.
	UniqueKey []string
}

// New builds a contract and checks it.
func New(name string, cols []ColumnSpec, preds []Predicate, uniqueKey []string) (*Contract, error) {
	c := &Contract{Name: name, Columns: cols, Predicates: preds, UniqueKey: uniqueKey}
	if err := c.Check(); err != nil {
		return nil, err
	}
	return c, nil
}

// Spec returns the column spec with the given name, case-insensitively.
func (c *Contract) Spec(name string) (ColumnSpec, bool) {
	for _, s := range c.Columns {
		if strings.EqualFold(s.Name, name) {
			return s, true
		}
	}
	return ColumnSpec{}, false
}

// Required returns the names of required columns in declaration order.
func (c *Contract) Required() []string {
	var out []string
	for _, s := range c.Columns {
		if s.Required {
			out = append(out, s.Name)
		}
	}
	return out
}

// Check reports every structural problem with the contract at once.
func (c *Contract) Check() error {
	var errs []string

	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, "contract name is empty")
	}
	if len(c.Columns) == 0 {
		errs = append(errs, "contract declares no columns")
	}

	seen := make(map[string]bool, len(c.Columns))
	for i, s := range c.Columns {
		name := strings.ToLower(strings.TrimSpace(s.Name))
		if name == "" {
			errs = append(errs, fmt.Sprintf("column %d has no name", i+1))
			continue
		}
		if seen[name] {
			errs = append(errs, fmt.Sprintf("column %q declared twice", s.Name))
		}
		seen[name] = true
		errs = append(errs, checkColumn(s)...)
	}

	names := make(map[string]bool, len(c.Predicates))
	for i, p := range c.Predicates {
		if p.Name == "" {
			errs = append(errs, fmt.Sprintf("predicate %d has no name", i+1))
		} else if names[p.Name] {
			errs = append(errs, fmt.Sprintf("predicate %q declared twice", p.Name))
		}
		names[p.Name] = true

		spec, ok := c.Spec(p.Column)
		if !ok {
			errs = append(errs, fmt.Sprintf("predicate %q references unknown column %q", p.Name, p.Column))
			continue
		}
		errs = append(errs, checkPredicate(p, spec)...)
	}

	for _, k := range c.UniqueKey {
		if _, ok := c.Spec(k); !ok {
			errs = append(errs, fmt.Sprintf("unique key references unknown column %q", k))
		}
	}

	if len(errs) > 0 {
		return &InvalidContractError{Contract: c.Name, Problems: errs}
	}
	return nil
}

func checkColumn(s ColumnSpec) []string {
	var errs []string

	if s.Normalize != "" {
		if _, ok := Normalizers[strings.ToLower(s.Normalize)]; !ok {
			errs = append(errs, fmt.Sprintf("column %q: unknown normalizer %q", s.Name, s.Normalize))
		} else if s.Type != table.Text {
			errs = append(errs, fmt.Sprintf("column %q: normalizer %q needs a text column", s.Name, s.Normalize))
		}
	}

	d := s.Default
	switch d.Kind {
	case DefaultFixed:
		trial := table.NewNullColumn(s.Name, s.Type, 1)
		if !trial.SetString(0, d.Value) || table.IsNullToken(d.Value) {
			errs = append(errs, fmt.Sprintf("column %q: default %q is not a valid %s", s.Name, d.Value, s.Type))
		}
	case DefaultLookup:
		if d.KeyColumn == "" {
			errs = append(errs, fmt.Sprintf("column %q: lookup default needs a key column", s.Name))
		}
		if len(d.Table) == 0 {
			errs = append(errs, fmt.Sprintf("column %q: lookup default has an empty table", s.Name))
		}
	case DefaultNone, DefaultForwardFill, DefaultBackwardFill:
	default:
		errs = append(errs, fmt.Sprintf("column %q: unknown default kind %v", s.Name, d.Kind))
	}
	return errs
}

func checkPredicate(p Predicate, spec ColumnSpec) []string {
	var errs []string

	if p.Kind.numeric() && !spec.Type.IsNumeric() {
		errs = append(errs, fmt.Sprintf("predicate %q: %s needs a numeric column, %q is %s", p.Name, p.Kind, spec.Name, spec.Type))
	}
	switch p.Kind {
	case Range:
		if p.Min == nil && p.Max == nil {
			errs = append(errs, fmt.Sprintf("predicate %q: range needs min or max", p.Name))
		}
		if p.Min != nil && p.Max != nil && *p.Min > *p.Max {
			errs = append(errs, fmt.Sprintf("predicate %q: min %v is above max %v", p.Name, *p.Min, *p.Max))
		}
	case InSet:
		if len(p.Values) == 0 {
			errs = append(errs, fmt.Sprintf("predicate %q: in_set needs values", p.Name))
		}
	case NonNegative, NotBlank:
	default:
		errs = append(errs, fmt.Sprintf("predicate %q: unknown kind %v", p.Name, p.Kind))
	}

	switch p.Policy {
	case Drop:
	case Clamp:
		if !p.Kind.numeric() {
			errs = append(errs, fmt.Sprintf("predicate %q: clamp only applies to numeric predicates", p.Name))
		}
	case Nullify:
		if spec.Required {
			errs = append(errs, fmt.Sprintf("predicate %q: cannot nullify required column %q", p.Name, spec.Name))
		}
		if p.Kind == NotBlank {
			errs = append(errs, fmt.Sprintf("predicate %q: nullify cannot satisfy not_blank", p.Name))
		}
	default:
		errs = append(errs, fmt.Sprintf("predicate %q: unknown policy %v", p.Name, p.Policy))
	}
	return errs
}
