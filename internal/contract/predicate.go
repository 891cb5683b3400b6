package contract

import (
	"math"
	"strings"

	"github.com/JonMunkholm/gdpdash/internal/table"
)

// Holds reports whether row i of col satisfies the predicate.
// Nulls satisfy every predicate except NotBlank. Numeric predicates on a text
// column read cells that parse as numbers and skip the rest; coercion turns
// those into nulls later.
func (p Predicate) Holds(col *table.Column, i int) bool {
	if p.Kind == NotBlank {
		return !col.IsNull(i) && strings.TrimSpace(col.String(i)) != ""
	}
	if col.IsNull(i) {
		return true
	}

	switch p.Kind {
	case NonNegative, Range:
		v, ok := numericValue(col, i)
		if !ok {
			return true
		}
		if p.Kind == NonNegative {
			return v >= 0
		}
		return (p.Min == nil || v >= *p.Min) && (p.Max == nil || v <= *p.Max)
	case InSet:
		s := strings.TrimSpace(col.String(i))
		for _, v := range p.Values {
			if strings.EqualFold(strings.TrimSpace(v), s) {
				return true
			}
		}
		return false
	}
	return true
}

// ClampValue moves v to the nearest value the predicate accepts. For integer
// columns fractional bounds are rounded inward.
func (p Predicate) ClampValue(v float64, integral bool) float64 {
	switch p.Kind {
	case NonNegative:
		if v < 0 {
			return 0
		}
	case Range:
		if p.Min != nil && v < *p.Min {
			if integral {
				return math.Ceil(*p.Min)
			}
			return *p.Min
		}
		if p.Max != nil && v > *p.Max {
			if integral {
				return math.Floor(*p.Max)
			}
			return *p.Max
		}
	}
	return v
}

func numericValue(col *table.Column, i int) (float64, bool) {
	switch {
	case col.Type().IsNumeric():
		return col.Float(i)
	case col.Type() == table.Text:
		return table.ParseFloat(col.String(i))
	default:
		return 0, false
	}
}
