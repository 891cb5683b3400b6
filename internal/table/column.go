package table

import (
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5/pgtype"
)

// Column is a named, homogeneously typed sequence of nullable values.
// Exactly one backing slice is populated, selected by the column's DType.
type Column struct {
	name   string
	dtype  DType
	texts  []pgtype.Text
	floats []pgtype.Float8
	ints   []pgtype.Int8
	bools  []pgtype.Bool
}

// NewTextColumn creates a text column. The slice is owned by the column.
func NewTextColumn(name string, values []pgtype.Text) *Column {
	return &Column{name: name, dtype: Text, texts: values}
}

// NewFloatColumn creates a float column. The slice is owned by the column.
func NewFloatColumn(name string, values []pgtype.Float8) *Column {
	return &Column{name: name, dtype: Float, floats: values}
}

// NewIntColumn creates an integer column. The slice is owned by the column.
func NewIntColumn(name string, values []pgtype.Int8) *Column {
	return &Column{name: name, dtype: Int, ints: values}
}

// NewBoolColumn creates a boolean column. The slice is owned by the column.
func NewBoolColumn(name string, values []pgtype.Bool) *Column {
	return &Column{name: name, dtype: Bool, bools: values}
}

// NewNullColumn creates a column of n nulls.
func NewNullColumn(name string, dtype DType, n int) *Column {
	c := &Column{name: name, dtype: dtype}
	switch dtype {
	case Float:
		c.floats = make([]pgtype.Float8, n)
	case Int:
		c.ints = make([]pgtype.Int8, n)
	case Bool:
		c.bools = make([]pgtype.Bool, n)
	default:
		c.dtype = Text
		c.texts = make([]pgtype.Text, n)
	}
	return c
}

// TextValues builds a text column from plain strings, treating null tokens as null.
func TextValues(name string, values ...string) *Column {
	out := make([]pgtype.Text, len(values))
	for i, v := range values {
		if !IsNullToken(v) {
			out[i] = pgtype.Text{String: v, Valid: true}
		}
	}
	return NewTextColumn(name, out)
}

// FloatValues builds a float column; nil entries are null.
func FloatValues(name string, values ...*float64) *Column {
	out := make([]pgtype.Float8, len(values))
	for i, v := range values {
		if v != nil {
			out[i] = pgtype.Float8{Float64: *v, Valid: true}
		}
	}
	return NewFloatColumn(name, out)
}

func (c *Column) Name() string { return c.name }
func (c *Column) Type() DType  { return c.dtype }

// Len returns the number of cells.
func (c *Column) Len() int {
	switch c.dtype {
	case Float:
		return len(c.floats)
	case Int:
		return len(c.ints)
	case Bool:
		return len(c.bools)
	default:
		return len(c.texts)
	}
}

// IsNull reports whether cell i holds no value.
func (c *Column) IsNull(i int) bool {
	switch c.dtype {
	case Float:
		return !c.floats[i].Valid
	case Int:
		return !c.ints[i].Valid
	case Bool:
		return !c.bools[i].Valid
	default:
		return !c.texts[i].Valid
	}
}

// NullCount returns the number of null cells.
func (c *Column) NullCount() int {
	n := 0
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			n++
		}
	}
	return n
}

// Text returns cell i of a text column.
func (c *Column) Text(i int) pgtype.Text {
	c.mustBe(Text)
	return c.texts[i]
}

// Int returns cell i of an int column.
func (c *Column) Int(i int) pgtype.Int8 {
	c.mustBe(Int)
	return c.ints[i]
}

// Bool returns cell i of a bool column.
func (c *Column) Bool(i int) pgtype.Bool {
	c.mustBe(Bool)
	return c.bools[i]
}

// Float returns the numeric reading of cell i for Float and Int columns.
// ok is false for nulls and non-numeric columns.
func (c *Column) Float(i int) (float64, bool) {
	switch c.dtype {
	case Float:
		v := c.floats[i]
		return v.Float64, v.Valid
	case Int:
		v := c.ints[i]
		return float64(v.Int64), v.Valid
	default:
		return 0, false
	}
}

// Value returns cell i as string, float64, int64 or bool; nil for null.
func (c *Column) Value(i int) any {
	if c.IsNull(i) {
		return nil
	}
	switch c.dtype {
	case Float:
		return c.floats[i].Float64
	case Int:
		return c.ints[i].Int64
	case Bool:
		return c.bools[i].Bool
	default:
		return c.texts[i].String
	}
}

// Cell returns cell i as its pgtype value, null cells included.
func (c *Column) Cell(i int) any {
	switch c.dtype {
	case Float:
		return c.floats[i]
	case Int:
		return c.ints[i]
	case Bool:
		return c.bools[i]
	default:
		return c.texts[i]
	}
}

// String renders cell i canonically; nulls render as "".
func (c *Column) String(i int) string {
	if c.IsNull(i) {
		return ""
	}
	switch c.dtype {
	case Float:
		return FormatFloat(c.floats[i].Float64)
	case Int:
		return strconv.FormatInt(c.ints[i].Int64, 10)
	case Bool:
		return strconv.FormatBool(c.bools[i].Bool)
	default:
		return c.texts[i].String
	}
}

// SetNull clears cell i.
func (c *Column) SetNull(i int) {
	switch c.dtype {
	case Float:
		c.floats[i] = pgtype.Float8{}
	case Int:
		c.ints[i] = pgtype.Int8{}
	case Bool:
		c.bools[i] = pgtype.Bool{}
	default:
		c.texts[i] = pgtype.Text{}
	}
}

// SetText stores s in cell i of a text column.
func (c *Column) SetText(i int, s string) {
	c.mustBe(Text)
	c.texts[i] = pgtype.Text{String: s, Valid: true}
}

// SetFloat stores f in cell i of a numeric column.
// Int columns only accept integral values; ok is false otherwise.
func (c *Column) SetFloat(i int, f float64) bool {
	switch c.dtype {
	case Float:
		c.floats[i] = pgtype.Float8{Float64: f, Valid: true}
		return true
	case Int:
		v, ok := floatToInt(f)
		if ok {
			c.ints[i] = pgtype.Int8{Int64: v, Valid: true}
		}
		return ok
	default:
		panic(fmt.Sprintf("column %q: SetFloat on %s column", c.name, c.dtype))
	}
}

// SetBool stores b in cell i of a bool column.
func (c *Column) SetBool(i int, b bool) {
	c.mustBe(Bool)
	c.bools[i] = pgtype.Bool{Bool: b, Valid: true}
}

// SetString parses s according to the column type and stores it in cell i.
// Returns false, leaving the cell untouched, when s does not parse.
func (c *Column) SetString(i int, s string) bool {
	switch c.dtype {
	case Float, Int:
		f, ok := ParseFloat(s)
		if !ok {
			return false
		}
		return c.SetFloat(i, f)
	case Bool:
		b, ok := ParseBool(s)
		if ok {
			c.SetBool(i, b)
		}
		return ok
	default:
		c.SetText(i, s)
		return true
	}
}

// Copy copies cell src of other into cell dst of c. Both must share a type.
func (c *Column) Copy(dst int, other *Column, src int) {
	c.mustBe(other.dtype)
	switch c.dtype {
	case Float:
		c.floats[dst] = other.floats[src]
	case Int:
		c.ints[dst] = other.ints[src]
	case Bool:
		c.bools[dst] = other.bools[src]
	default:
		c.texts[dst] = other.texts[src]
	}
}

// Clone returns a deep copy.
func (c *Column) Clone() *Column {
	return c.Rename(c.name)
}

// Rename returns a deep copy under a new name.
func (c *Column) Rename(name string) *Column {
	out := &Column{name: name, dtype: c.dtype}
	out.texts = append([]pgtype.Text(nil), c.texts...)
	out.floats = append([]pgtype.Float8(nil), c.floats...)
	out.ints = append([]pgtype.Int8(nil), c.ints...)
	out.bools = append([]pgtype.Bool(nil), c.bools...)
	return out
}

// Filter returns a copy holding only the cells where keep is true.
func (c *Column) Filter(keep []bool) *Column {
	n := 0
	for _, k := range keep {
		if k {
			n++
		}
	}
	out := NewNullColumn(c.name, c.dtype, n)
	j := 0
	for i, k := range keep {
		if !k {
			continue
		}
		out.Copy(j, c, i)
		j++
	}
	return out
}

// MapText applies fn to every non-null cell of a text column.
func (c *Column) MapText(fn func(string) string) *Column {
	c.mustBe(Text)
	out := c.Clone()
	for i, v := range out.texts {
		if v.Valid {
			out.texts[i].String = fn(v.String)
		}
	}
	return out
}

// Convert coerces the column to another type. Cells that cannot be converted
// become null; the number of such cells is returned. Nulls stay null.
func (c *Column) Convert(to DType) (*Column, int, error) {
	if !CanConvert(c.dtype, to) {
		return nil, 0, fmt.Errorf("column %q: cannot convert %s to %s", c.name, c.dtype, to)
	}
	if c.dtype == to {
		return c.Clone(), 0, nil
	}

	n := c.Len()
	out := NewNullColumn(c.name, to, n)
	failed := 0
	for i := 0; i < n; i++ {
		if c.IsNull(i) {
			continue
		}
		if to == Text {
			out.SetText(i, c.String(i))
			continue
		}
		var ok bool
		if c.dtype.IsNumeric() {
			f, _ := c.Float(i)
			ok = out.SetFloat(i, f)
		} else {
			ok = out.SetString(i, c.String(i))
		}
		if !ok {
			failed++
		}
	}
	return out, failed, nil
}

// Equal reports whether two columns have the same name, type and cells.
func (c *Column) Equal(other *Column) bool {
	if c.name != other.name || c.dtype != other.dtype || c.Len() != other.Len() {
		return false
	}
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) != other.IsNull(i) {
			return false
		}
		if !c.IsNull(i) && c.Value(i) != other.Value(i) {
			return false
		}
	}
	return true
}

func (c *Column) mustBe(d DType) {
	if c.dtype != d {
		panic(fmt.Sprintf("column %q is %s, not %s", c.name, c.dtype, d))
	}
}
