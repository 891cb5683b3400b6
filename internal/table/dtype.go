package table

import (
	"fmt"
	"strings"
)

// DType is the element type of a column.
type DType int

const (
	Text DType = iota
	Float
	Int
	Bool
)

// IsNumeric reports whether values of this type carry a numeric reading.
func (d DType) IsNumeric() bool {
	return d == Float || d == Int
}

func (d DType) String() string {
	switch d {
	case Text:
		return "text"
	case Float:
		return "float"
	case Int:
		return "int"
	case Bool:
		return "bool"
	default:
		return fmt.Sprintf("dtype(%d)", int(d))
	}
}

// MarshalText renders the type name so metadata serializes readably.
func (d DType) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText accepts the same spellings as ParseDType.
func (d *DType) UnmarshalText(b []byte) error {
	parsed, err := ParseDType(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseDType maps a declared type name to a DType.
// Accepts the common aliases used in schema files (string, number, integer, boolean).
func ParseDType(s string) (DType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "string", "str":
		return Text, nil
	case "float", "number", "numeric", "double":
		return Float, nil
	case "int", "integer":
		return Int, nil
	case "bool", "boolean":
		return Bool, nil
	default:
		return Text, fmt.Errorf("unknown column type %q", s)
	}
}

// CanConvert reports whether a column of type from can be coerced to type to
// at all. Individual cells may still fail and become null.
func CanConvert(from, to DType) bool {
	if from == to || from == Text || to == Text {
		return true
	}
	return from.IsNumeric() && to.IsNumeric()
}
