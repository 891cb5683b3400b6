package contract

import (
	"fmt"
	"strings"
)

// InvalidContractError lists every structural problem found by Check.
type InvalidContractError struct {
	Contract string
	Problems []string
}

func (e *InvalidContractError) Error() string {
	return fmt.Sprintf("invalid contract %q:\n  - %s", e.Contract, strings.Join(e.Problems, "\n  - "))
}

// MissingColumnError names every required column absent from a table.
type MissingColumnError struct {
	Columns []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Columns, ", "))
}

// ContractViolationError reports a table that cannot be brought in line with
// its contract. Err carries the specific cause, typically a
// *MissingColumnError.
type ContractViolationError struct {
	Contract string
	Err      error
}

func (e *ContractViolationError) Error() string {
	return fmt.Sprintf("contract %q violated: %v", e.Contract, e.Err)
}

func (e *ContractViolationError) Unwrap() error { return e.Err }

// UnresolvedNullError reports a required column that still holds nulls after
// every declared remediation ran.
type UnresolvedNullError struct {
	Column    string
	Remaining int
	// Row is the 0-based index of the first remaining null.
	Row int
}

func (e *UnresolvedNullError) Error() string {
	return fmt.Sprintf("column %q has %d unresolved null values (first at row %d)", e.Column, e.Remaining, e.Row+1)
}
