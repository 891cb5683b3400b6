// Package clean turns a loaded table into one that satisfies a contract.
//
// The pipeline is a fixed, ordered list of steps. Each step receives a clone
// of the previous step's output, so a failure never leaves a half-cleaned
// table behind:
//
//	enforce_columns    required columns present, absent optional columns added
//	coerce_types       declared types, unparseable cells become null
//	remediate_missing  defaults fill nulls; required columns must end up full
//	filter_rows        predicates applied per their policy
//	drop_duplicates    first row per unique key wins
//
// Per-cell changes are counted in a Report rather than raised as errors.
package clean

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/JonMunkholm/gdpdash/internal/contract"
	"github.com/JonMunkholm/gdpdash/internal/table"
)

// Step is one transform of the pipeline.
type Step interface {
	Name() string
	Apply(t *table.Table, c *contract.Contract, rep *Report) (*table.Table, error)
}

// StepError wraps the first failure of a pipeline run.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("clean step %s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Report counts what the pipeline changed.
type Report struct {
	AddedColumns  []string             `json:"added_columns,omitempty"`
	CoercedNulls  map[string]int       `json:"coerced_nulls,omitempty"`
	Filled        map[string]int       `json:"filled,omitempty"`
	Clamped       map[string]int       `json:"clamped,omitempty"`
	Nullified     map[string]int       `json:"nullified,omitempty"`
	RemovedRows   int                  `json:"removed_rows"`
	DuplicateRows int                  `json:"duplicate_rows"`
	Violations    []contract.Violation `json:"violations,omitempty"`
}

// NewReport returns an empty report.
func NewReport() *Report {
	return &Report{
		CoercedNulls: make(map[string]int),
		Filled:       make(map[string]int),
		Clamped:      make(map[string]int),
		Nullified:    make(map[string]int),
	}
}

// Pipeline runs steps in order.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger
}

// NewPipeline builds a pipeline from steps, run in the given order.
func NewPipeline(steps ...Step) *Pipeline {
	return &Pipeline{steps: steps, logger: slog.Default()}
}

// Default returns the standard five-step pipeline.
func Default() *Pipeline {
	return NewPipeline(
		EnforceColumns{},
		CoerceTypes{},
		RemediateMissing{},
		FilterRows{},
		DropDuplicates{},
	)
}

// WithLogger sets the logger used for per-step debug output.
func (p *Pipeline) WithLogger(logger *slog.Logger) *Pipeline {
	if logger != nil {
		p.logger = logger
	}
	return p
}

// Steps returns the step names in run order.
func (p *Pipeline) Steps() []string {
	names := make([]string, len(p.steps))
	for i, s := range p.steps {
		names[i] = s.Name()
	}
	return names
}

// Apply runs every step against t. On failure it returns a *StepError and no
// table; the report then describes the steps that completed. t itself is
// never modified.
func (p *Pipeline) Apply(t *table.Table, c *contract.Contract) (*table.Table, *Report, error) {
	rep := NewReport()
	if t == nil {
		return nil, rep, &StepError{Step: "input", Err: errors.New("no table to clean")}
	}
	if c == nil {
		return nil, rep, &StepError{Step: "input", Err: &contract.ContractViolationError{Err: errors.New("no contract")}}
	}

	cur := t
	for _, step := range p.steps {
		out, err := step.Apply(cur.Clone(), c, rep)
		if err != nil {
			p.logger.Debug("clean step failed", "step", step.Name(), "error", err)
			return nil, rep, &StepError{Step: step.Name(), Err: err}
		}
		p.logger.Debug("clean step done",
			"step", step.Name(),
			"rows_in", cur.NumRows(),
			"rows_out", out.NumRows(),
			"cols_out", out.NumCols(),
		)
		cur = out
	}
	return cur, rep, nil
}
