package web

// errors.go provides unified error responses for the web layer.
//
// Every error is logged with its technical detail and request id, then
// returned as a coded message from engine.Describe: JSON for API routes and
// JSON clients, an HTML page otherwise.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JonMunkholm/gdpdash/internal/engine"
	"github.com/JonMunkholm/gdpdash/internal/logging"
	"github.com/JonMunkholm/gdpdash/internal/web/templates"
)

// errNoDataset is returned by data routes before the first successful run.
var errNoDataset = errors.New("no dataset loaded")

// ErrorResponse is the JSON body of an error. Code, Title and Action come
// from engine.Describe; the failure fields are set for run failures.
type ErrorResponse struct {
	Error  string `json:"error"`
	Code   string `json:"code"`
	Title  string `json:"title"`
	Action string `json:"action,omitempty"`
	Stage  string `json:"stage,omitempty"`
	Kind   string `json:"kind,omitempty"`
	Column string `json:"column,omitempty"`
	Row    *int   `json:"row,omitempty"`
	RunID  string `json:"run_id,omitempty"`
}

// newErrorResponse describes err. Client errors keep their text; server
// errors are reduced to the coded message.
func newErrorResponse(err error, statusCode int) ErrorResponse {
	msg := engine.Describe(err)
	resp := ErrorResponse{Code: msg.Code, Title: msg.Title, Action: msg.Action}

	var f *engine.Failure
	switch {
	case errors.As(err, &f):
		resp.Error = f.Detail
		resp.Stage = f.Stage
		resp.Kind = string(f.Kind)
		resp.Column = f.Column
		if f.Row >= 0 {
			row := f.Row
			resp.Row = &row
		}
	case errors.Is(err, errNoDataset):
		resp.Error = err.Error()
		resp.Code = "DATA001"
		resp.Title = "No dataset is loaded"
		resp.Action = "POST a file to /api/run or start the server with a source"
	case errors.Is(err, errTooManyRuns):
		resp.Error = err.Error()
		resp.Code = "RUN001"
		resp.Title = "The server is busy"
		resp.Action = "Retry the run after a short delay"
	case statusCode < 500:
		resp.Error = err.Error()
		resp.Code = "REQ001"
		resp.Title = "The request is invalid"
		resp.Action = "Check the query parameters"
	default:
		resp.Error = msg.Title
	}
	return resp
}

// statusFor picks the HTTP status for a run failure.
func statusFor(err error) int {
	var f *engine.Failure
	if !errors.As(err, &f) {
		return http.StatusInternalServerError
	}
	switch f.Stage {
	case engine.StageLoad:
		return http.StatusBadRequest
	case engine.StageClean:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err server-side and writes it in the format the client
// expects.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	resp := newErrorResponse(err, statusCode)
	resp.RunID = logging.RunID(r.Context())

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", resp.Code,
	)

	if wantsJSON(r) {
		writeJSONStatus(w, statusCode, resp)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	page := templates.ErrorPage(templates.ErrorData{
		Title:   resp.Title,
		Code:    resp.Code,
		Message: resp.Error,
		Action:  resp.Action,
	})
	if err := page.Render(r.Context(), w); err != nil {
		slog.Error("render error page", "error", err)
	}
}

// wantsJSON checks if the client prefers a JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	return strings.HasPrefix(r.URL.Path, "/api/")
}

// writeJSON encodes v as a 200 JSON response.
func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

// writeJSONStatus encodes v as JSON. Encoding errors are logged since the
// headers are already sent.
func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
