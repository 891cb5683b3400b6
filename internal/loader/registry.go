package loader

import (
	"errors"
	"path/filepath"
	"sort"
	"strings"
)

// extensionFormats maps lowercase file extensions to format identifiers.
var extensionFormats = map[string]string{
	".csv":  "csv",
	".tsv":  "csv",
	".xlsx": "excel",
	".xlsm": "excel",
	".xls":  "excel",
	".json": "json",
}

// Registry maps format identifiers to loaders.
//
// It is populated once during start-up and frozen; after that it is only
// read, so it carries no lock.
type Registry struct {
	loaders map[string]Descriptor
	frozen  bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{loaders: make(map[string]Descriptor)}
}

// Register adds a loader under a format identifier.
// Returns *DuplicateLoaderError if the identifier is taken; the existing
// registration is kept.
func (r *Registry) Register(format string, l Loader) error {
	if r.frozen {
		return ErrRegistryFrozen
	}
	key := normalizeFormat(format)
	if key == "" || key == FormatAuto {
		return errors.New("loader format identifier must be a non-empty name other than \"auto\"")
	}
	if l == nil {
		return errors.New("loader must not be nil")
	}
	if _, exists := r.loaders[key]; exists {
		return &DuplicateLoaderError{Format: key}
	}
	r.loaders[key] = Descriptor{Format: key, Loader: l}
	return nil
}

// Freeze makes the registry read-only.
func (r *Registry) Freeze() { r.frozen = true }

// Resolve returns the loader registered for format.
func (r *Registry) Resolve(format string) (Loader, error) {
	key := normalizeFormat(format)
	d, ok := r.loaders[key]
	if !ok {
		return nil, &UnknownFormatError{Format: key}
	}
	return d.Loader, nil
}

// ResolveByExtension maps the path's extension to a format identifier and
// resolves it. There is no fallback loader.
func (r *Registry) ResolveByExtension(path string) (Loader, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}
	return r.Resolve(format)
}

// FormatForPath returns the format identifier for a file path's extension.
func FormatForPath(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	format, ok := extensionFormats[ext]
	if !ok {
		return "", &UnsupportedExtensionError{Path: path, Ext: ext}
	}
	return format, nil
}

// Formats returns all registered identifiers, sorted.
func (r *Registry) Formats() []string {
	out := make([]string, 0, len(r.loaders))
	for k := range r.loaders {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Descriptors returns all registrations sorted by identifier.
func (r *Registry) Descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(r.loaders))
	for _, k := range r.Formats() {
		out = append(out, r.loaders[k])
	}
	return out
}

// Extensions returns the extensions mapped to format, sorted.
func Extensions(format string) []string {
	key := normalizeFormat(format)
	var out []string
	for ext, f := range extensionFormats {
		if f == key {
			out = append(out, ext)
		}
	}
	sort.Strings(out)
	return out
}
