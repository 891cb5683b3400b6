package formats

import (
	"fmt"

	"github.com/JonMunkholm/gdpdash/internal/loader"
)

// Builtin returns one instance of every built-in loader.
func Builtin() []loader.Loader {
	return []loader.Loader{NewCSV(), NewExcel(), NewJSON()}
}

// Register adds the built-in loaders to reg under their format identifiers.
func Register(reg *loader.Registry) error {
	for _, l := range Builtin() {
		if err := reg.Register(l.SupportedFormat(), l); err != nil {
			return fmt.Errorf("register %s loader: %w", l.SupportedFormat(), err)
		}
	}
	return nil
}

// NewRegistry returns a frozen registry holding the built-in loaders.
func NewRegistry() (*loader.Registry, error) {
	reg := loader.NewRegistry()
	if err := Register(reg); err != nil {
		return nil, err
	}
	reg.Freeze()
	return reg, nil
}
