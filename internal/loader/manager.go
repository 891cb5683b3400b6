package loader

import (
	"log/slog"

	"github.com/JonMunkholm/gdpdash/internal/table"
)

// StageLoad tags failures raised while loading.
const StageLoad = "load"

// Manager resolves a loader for each request and normalizes its failures.
type Manager struct {
	registry *Registry
	logger   *slog.Logger
}

// NewManager creates a manager over a populated registry.
// A nil logger falls back to slog.Default().
func NewManager(registry *Registry, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{registry: registry, logger: logger}
}

// Registry returns the registry the manager resolves against.
func (m *Manager) Registry() *Registry { return m.registry }

// Load resolves the loader for req and runs it. Every failure, whether from
// resolution or decoding, is returned as *LoadingFailure. Nothing is retried.
func (m *Manager) Load(req Request) (*table.Table, error) {
	var (
		l   Loader
		err error
	)
	if req.Format() == FormatAuto {
		l, err = m.registry.ResolveByExtension(req.Source())
	} else {
		l, err = m.registry.Resolve(req.Format())
	}
	if err != nil {
		m.logger.Warn("loader resolution failed", "source", req.Source(), "format", req.Format(), "error", err)
		return nil, &LoadingFailure{Stage: StageLoad, Cause: err}
	}

	m.logger.Debug("loading source", "source", req.Source(), "loader", l.SupportedFormat())

	t, err := l.Load(req)
	if err != nil {
		return nil, &LoadingFailure{Stage: StageLoad, Cause: err}
	}
	if t == nil {
		return nil, &LoadingFailure{Stage: StageLoad, Cause: NewLoadError(req, l.SupportedFormat(), "loader returned no table", nil)}
	}

	m.logger.Info("source loaded",
		"source", req.Source(),
		"format", l.SupportedFormat(),
		"rows", t.NumRows(),
		"columns", t.NumCols(),
	)
	return t, nil
}
