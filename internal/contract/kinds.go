package contract

import (
	"fmt"
	"strings"
)

// DefaultKind selects how nulls in a column are remediated.
type DefaultKind int

const (
	DefaultNone DefaultKind = iota
	DefaultFixed
	DefaultForwardFill
	DefaultBackwardFill
	DefaultLookup
)

var defaultKindNames = map[DefaultKind]string{
	DefaultNone:         "none",
	DefaultFixed:        "fixed",
	DefaultForwardFill:  "ffill",
	DefaultBackwardFill: "bfill",
	DefaultLookup:       "lookup",
}

func (k DefaultKind) String() string {
	if s, ok := defaultKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("default(%d)", int(k))
}

// ParseDefaultKind accepts the names used in pipeline files.
func ParseDefaultKind(s string) (DefaultKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return DefaultNone, nil
	case "fixed", "value", "constant":
		return DefaultFixed, nil
	case "ffill", "forward_fill", "forward-fill":
		return DefaultForwardFill, nil
	case "bfill", "backward_fill", "backward-fill":
		return DefaultBackwardFill, nil
	case "lookup":
		return DefaultLookup, nil
	default:
		return DefaultNone, fmt.Errorf("unknown default kind %q", s)
	}
}

// PredicateKind is the row-level check a predicate performs.
type PredicateKind int

const (
	NonNegative PredicateKind = iota
	Range
	InSet
	NotBlank
)

var predicateKindNames = map[PredicateKind]string{
	NonNegative: "non_negative",
	Range:       "range",
	InSet:       "in_set",
	NotBlank:    "not_blank",
}

func (k PredicateKind) String() string {
	if s, ok := predicateKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("predicate(%d)", int(k))
}

// ParsePredicateKind accepts the names used in pipeline files.
func ParsePredicateKind(s string) (PredicateKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "non_negative", "nonnegative", "non-negative":
		return NonNegative, nil
	case "range", "between":
		return Range, nil
	case "in_set", "in", "one_of":
		return InSet, nil
	case "not_blank", "not-blank", "notblank":
		return NotBlank, nil
	default:
		return NonNegative, fmt.Errorf("unknown predicate kind %q", s)
	}
}

// numeric reports whether the predicate compares numbers.
func (k PredicateKind) numeric() bool {
	return k == NonNegative || k == Range
}

// Policy is what the cleaning pipeline does with a row that violates a predicate.
type Policy int

const (
	// Drop removes the row.
	Drop Policy = iota
	// Clamp moves the value to the nearest bound. Numeric predicates only.
	Clamp
	// Nullify sets the offending cell to null. Optional columns only.
	Nullify
)

func (p Policy) String() string {
	switch p {
	case Drop:
		return "drop"
	case Clamp:
		return "clamp"
	case Nullify:
		return "nullify"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParsePolicy accepts the names used in pipeline files. Empty means Drop.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "drop", "remove":
		return Drop, nil
	case "clamp", "coerce":
		return Clamp, nil
	case "nullify", "null":
		return Nullify, nil
	default:
		return Drop, fmt.Errorf("unknown policy %q", s)
	}
}
