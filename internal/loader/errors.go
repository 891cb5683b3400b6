package loader

import (
	"errors"
	"fmt"
)

// ErrRegistryFrozen is returned by Register after Freeze.
var ErrRegistryFrozen = errors.New("loader registry is frozen")

// DuplicateLoaderError reports a second registration under an existing identifier.
type DuplicateLoaderError struct {
	Format string
}

func (e *DuplicateLoaderError) Error() string {
	return fmt.Sprintf("loader already registered for format %q", e.Format)
}

// UnknownFormatError reports a lookup for an identifier with no loader.
type UnknownFormatError struct {
	Format string
}

func (e *UnknownFormatError) Error() string {
	return fmt.Sprintf("no loader registered for format %q", e.Format)
}

// UnsupportedExtensionError reports a file extension with no format mapping.
type UnsupportedExtensionError struct {
	Path string
	Ext  string
}

func (e *UnsupportedExtensionError) Error() string {
	if e.Ext == "" {
		return fmt.Sprintf("cannot infer format of %q: file has no extension", e.Path)
	}
	return fmt.Sprintf("unsupported file extension %q for %q", e.Ext, e.Path)
}

// LoadError reports a format loader that could not decode its source.
type LoadError struct {
	Format string
	Source string
	Reason string
	Err    error
}

func (e *LoadError) Error() string {
	msg := fmt.Sprintf("load %s %q: %s", e.Format, e.Source, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *LoadError) Unwrap() error { return e.Err }

// NewLoadError is a convenience constructor for format loaders.
func NewLoadError(req Request, format, reason string, err error) *LoadError {
	return &LoadError{Format: format, Source: req.Source(), Reason: reason, Err: err}
}

// LoadingFailure is the manager's single failure shape. Cause is one of the
// registry errors or a *LoadError.
type LoadingFailure struct {
	Stage string
	Cause error
}

func (e *LoadingFailure) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Cause)
}

func (e *LoadingFailure) Unwrap() error { return e.Cause }
