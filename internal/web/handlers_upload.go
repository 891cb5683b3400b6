package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/gdpdash/internal/loader"
)

// RunRequest is the JSON body of POST /api/run for files already on the
// server.
type RunRequest struct {
	Source  string            `json:"source"`
	Format  string            `json:"format,omitempty"`
	Options map[string]string `json:"options,omitempty"`
}

// handleRun loads a new dataset, either from a multipart upload (field
// "file", optional "format" and JSON "options") or from a JSON RunRequest
// naming a file under the data root. The previous dataset keeps being
// served when the run fails.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if err := s.limiter.Acquire(r.Context()); err != nil {
		status := http.StatusTooManyRequests
		if !errors.Is(err, errTooManyRuns) {
			status = http.StatusServiceUnavailable
		}
		s.respondError(w, r, err, status)
		return
	}
	defer s.limiter.Release()

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxUploadSize)

	var (
		req  loader.Request
		name string
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		path, filename, cleanup, err := s.saveUpload(r)
		if err != nil {
			s.respondError(w, r, err, http.StatusBadRequest)
			return
		}
		defer cleanup()

		var opts map[string]string
		if raw := r.FormValue("options"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &opts); err != nil {
				s.respondError(w, r, fmt.Errorf("invalid options: %w", err), http.StatusBadRequest)
				return
			}
		}
		req = loader.NewRequest(path, r.FormValue("format"), opts)
		name = filename
	} else {
		var body RunRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&body); err != nil {
			s.respondError(w, r, fmt.Errorf("invalid run request: %w", err), http.StatusBadRequest)
			return
		}
		path, err := s.resolveSource(body.Source)
		if err != nil {
			status := http.StatusBadRequest
			switch {
			case errors.Is(err, errSourcesDisabled):
				status = http.StatusForbidden
			case errors.Is(err, fs.ErrNotExist):
				status = http.StatusNotFound
			}
			s.respondError(w, r, err, status)
			return
		}
		req = loader.NewRequest(path, body.Format, body.Options)
		name = body.Source
	}

	ds, err := s.load(r.Context(), req, name)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, s.metadataResponse(ds))
}

// saveUpload copies the "file" form field to a temporary file that keeps
// the original extension so format auto-detection still works.
func (s *Server) saveUpload(r *http.Request) (path, filename string, cleanup func(), err error) {
	if err := r.ParseMultipartForm(s.cfg.Server.MaxUploadSize); err != nil {
		return "", "", nil, errors.New("file too large or invalid form")
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return "", "", nil, errors.New("no file provided")
	}
	defer file.Close()

	dir, err := os.MkdirTemp("", "gdpdash-upload-*")
	if err != nil {
		return "", "", nil, fmt.Errorf("create upload dir: %w", err)
	}
	cleanup = func() { os.RemoveAll(dir) }

	filename = filepath.Base(header.Filename)
	if filename == "." || filename == string(filepath.Separator) {
		filename = "upload"
	}
	path = filepath.Join(dir, filename)

	dst, err := os.Create(path)
	if err != nil {
		cleanup()
		return "", "", nil, fmt.Errorf("create upload file: %w", err)
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		cleanup()
		return "", "", nil, fmt.Errorf("save upload: %w", err)
	}
	if err := dst.Close(); err != nil {
		cleanup()
		return "", "", nil, fmt.Errorf("save upload: %w", err)
	}
	return path, filename, cleanup, nil
}
