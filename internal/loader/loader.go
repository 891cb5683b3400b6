// Package loader defines the contract every file-format loader satisfies,
// the registry that maps format identifiers to loaders, and the manager that
// resolves and invokes a loader for a request.
//
// # Registration
//
// Loaders are registered explicitly during process start, then the registry
// is frozen and only read afterwards:
//
//	reg := loader.NewRegistry()
//	if err := formats.Register(reg); err != nil {
//	    return err
//	}
//	reg.Freeze()
//	mgr := loader.NewManager(reg, slog.Default())
//
// # Resolution
//
// A request whose format is "auto" is routed by file extension through a
// fixed extension table; any other format is looked up by identifier.
// Identifiers are case-insensitive.
package loader

import (
	"strings"

	"github.com/JonMunkholm/gdpdash/internal/table"
)

// FormatAuto selects the loader from the source's file extension.
const FormatAuto = "auto"

// Loader decodes one file encoding into a raw table.
type Loader interface {
	// Load reads the request's source. It fails with *LoadError when the
	// source cannot be read, is malformed for the format, or is empty.
	Load(req Request) (*table.Table, error)

	// SupportedFormat returns the format identifier this loader handles.
	SupportedFormat() string
}

// Descriptor pairs a format identifier with its loader.
type Descriptor struct {
	Format string
	Loader Loader
}

// Request describes what to load. It is immutable once constructed.
type Request struct {
	source  string
	format  string
	options map[string]string
}

// NewRequest builds a request. An empty format means "auto". Option keys are
// lowercased; the map is copied.
func NewRequest(source, format string, options map[string]string) Request {
	format = normalizeFormat(format)
	if format == "" {
		format = FormatAuto
	}
	opts := make(map[string]string, len(options))
	for k, v := range options {
		opts[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return Request{source: source, format: format, options: opts}
}

// Source returns the path of the dataset.
func (r Request) Source() string { return r.source }

// Format returns the declared format identifier or "auto".
func (r Request) Format() string { return r.format }

// Option returns a loader-specific option and whether it was set.
func (r Request) Option(key string) (string, bool) {
	v, ok := r.options[strings.ToLower(key)]
	return v, ok
}

// OptionOr returns a loader-specific option or def when unset or blank.
func (r Request) OptionOr(key, def string) string {
	if v, ok := r.Option(key); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return def
}

// Options returns a copy of all options.
func (r Request) Options() map[string]string {
	out := make(map[string]string, len(r.options))
	for k, v := range r.options {
		out[k] = v
	}
	return out
}

func normalizeFormat(f string) string {
	return strings.ToLower(strings.TrimSpace(f))
}
