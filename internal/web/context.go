package web

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/gdpdash/internal/logging"
)

var errSourcesDisabled = errors.New("server-side sources are disabled; upload the file instead")

// logger returns the request-scoped logger.
func (s *Server) logger(r *http.Request) *slog.Logger {
	return logging.FromContext(r.Context())
}

// resolveSource maps a client-supplied path onto the configured data root.
// The path must exist, and paths that escape the root, directly or through a
// symbolic link, are rejected.
func (s *Server) resolveSource(source string) (string, error) {
	root := s.cfg.Security.DataRoot
	if root == "" {
		return "", errSourcesDisabled
	}
	source = strings.TrimSpace(source)
	if source == "" {
		return "", errors.New("source is required")
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve data root: %w", err)
	}
	realRoot, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return "", fmt.Errorf("resolve data root: %w", err)
	}
	path := source
	if !filepath.IsAbs(path) {
		path = filepath.Join(absRoot, path)
	}
	path = filepath.Clean(path)
	if !within(absRoot, path) {
		return "", fmt.Errorf("source %q is outside the data root", source)
	}

	// Links may point anywhere; check the resolved target as well.
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("source %q: %w", source, fs.ErrNotExist)
		}
		return "", fmt.Errorf("resolve source %q: %w", source, err)
	}
	if !within(realRoot, resolved) {
		return "", fmt.Errorf("source %q is outside the data root", source)
	}
	return resolved, nil
}

// within reports whether path is root or lies beneath it.
func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
