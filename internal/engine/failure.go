package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/gdpdash/internal/contract"
	"github.com/JonMunkholm/gdpdash/internal/loader"
	"github.com/JonMunkholm/gdpdash/internal/metadata"
)

// Kind names the failure taxonomy entry.
type Kind string

const (
	KindUnknownFormat        Kind = "UnknownFormatError"
	KindUnsupportedExtension Kind = "UnsupportedExtensionError"
	KindLoad                 Kind = "LoadError"
	KindMissingColumn        Kind = "MissingColumnError"
	KindContractViolation    Kind = "ContractViolationError"
	KindUnresolvedNull       Kind = "UnresolvedNullError"
	KindMetadata             Kind = "MetadataComputationError"
	KindStep                 Kind = "StepError"
)

// Failure is the only error type Run returns. Column and Row locate the
// problem when one cell or column is to blame; Row is -1 otherwise.
type Failure struct {
	Stage  string `json:"stage"`
	Kind   Kind   `json:"kind"`
	Detail string `json:"detail"`
	Column string `json:"column,omitempty"`
	Row    int    `json:"row"`
	Cause  error  `json:"-"`
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s stage failed (%s): %s", f.Stage, f.Kind, f.Detail)
}

func (f *Failure) Unwrap() error { return f.Cause }

// asFailure returns err as a *Failure, classifying it if needed.
func asFailure(err error) *Failure {
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	return classify(StageClean, err)
}

// classify maps a stage error onto the taxonomy. The most specific cause in
// the chain wins.
func classify(stage string, err error) *Failure {
	f := &Failure{Stage: stage, Row: -1, Cause: err, Detail: err.Error()}

	var (
		unknownFormat *loader.UnknownFormatError
		unsupported   *loader.UnsupportedExtensionError
		loadErr       *loader.LoadError
		missing       *contract.MissingColumnError
		unresolved    *contract.UnresolvedNullError
		violation     *contract.ContractViolationError
		invalid       *contract.InvalidContractError
		computation   *metadata.ComputationError
	)

	switch {
	case errors.As(err, &unknownFormat):
		f.Kind = KindUnknownFormat
		f.Detail = unknownFormat.Error()
	case errors.As(err, &unsupported):
		f.Kind = KindUnsupportedExtension
		f.Detail = unsupported.Error()
	case errors.As(err, &loadErr):
		f.Kind = KindLoad
		f.Detail = loadErr.Error()
	case errors.As(err, &missing):
		f.Kind = KindMissingColumn
		f.Detail = missing.Error()
		f.Column = strings.Join(missing.Columns, ", ")
	case errors.As(err, &unresolved):
		f.Kind = KindUnresolvedNull
		f.Detail = unresolved.Error()
		f.Column = unresolved.Column
		f.Row = unresolved.Row
	case errors.As(err, &invalid), errors.As(err, &violation):
		f.Kind = KindContractViolation
	case errors.As(err, &computation):
		f.Kind = KindMetadata
		f.Column = computation.Column
	case stage == StageLoad:
		f.Kind = KindLoad
	default:
		f.Kind = KindStep
	}
	return f
}
