package web

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/gdpdash/internal/clean"
	"github.com/JonMunkholm/gdpdash/internal/export"
	"github.com/JonMunkholm/gdpdash/internal/loader"
	"github.com/JonMunkholm/gdpdash/internal/metadata"
	"github.com/JonMunkholm/gdpdash/internal/query"
	"github.com/JonMunkholm/gdpdash/internal/table"
)

// FormatInfo describes one registered loader.
type FormatInfo struct {
	Format     string   `json:"format"`
	Extensions []string `json:"extensions"`
}

// MetadataResponse describes the dataset being served.
type MetadataResponse struct {
	RunID      string           `json:"run_id"`
	Source     string           `json:"source"`
	Format     string           `json:"format"`
	LoadedAt   time.Time        `json:"loaded_at"`
	Contract   string           `json:"contract"`
	Metadata   metadata.Record  `json:"metadata"`
	Report     *clean.Report    `json:"report"`
	Dimensions query.Dimensions `json:"dimensions"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"status":         "ok",
		"dataset_loaded": s.snapshot() != nil,
		"runs":           s.limiter.Status(),
	})
}

func (s *Server) handleFormats(w http.ResponseWriter, r *http.Request) {
	descs := s.registry.Descriptors()
	out := make([]FormatInfo, 0, len(descs))
	for _, d := range descs {
		out = append(out, FormatInfo{Format: d.Format, Extensions: loader.Extensions(d.Format)})
	}
	writeJSON(w, out)
}

func (s *Server) handleMetadata(w http.ResponseWriter, r *http.Request) {
	ds := s.snapshot()
	if ds == nil {
		s.respondError(w, r, errNoDataset, http.StatusNotFound)
		return
	}
	writeJSON(w, s.metadataResponse(ds))
}

func (s *Server) metadataResponse(ds *dataset) MetadataResponse {
	return MetadataResponse{
		RunID:      ds.runID,
		Source:     ds.source,
		Format:     ds.result.Format,
		LoadedAt:   ds.loadedAt,
		Contract:   s.contract.Name,
		Metadata:   ds.result.Metadata,
		Report:     ds.result.Report,
		Dimensions: query.Describe(ds.result.Table),
	}
}

func (s *Server) handleDimensions(w http.ResponseWriter, r *http.Request) {
	ds := s.snapshot()
	if ds == nil {
		s.respondError(w, r, errNoDataset, http.StatusNotFound)
		return
	}
	writeJSON(w, query.Describe(ds.result.Table))
}

// handleRows returns filtered rows as JSON records, CSV or XLSX
// (?format=json|csv|xlsx).
func (s *Server) handleRows(w http.ResponseWriter, r *http.Request) {
	ds := s.snapshot()
	if ds == nil {
		s.respondError(w, r, errNoDataset, http.StatusNotFound)
		return
	}

	q, err := parseQuery(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	format, err := parseFormatParam(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	value := q.Value
	if value == "" {
		value = query.ColumnGDP
	}
	rows, err := query.Filter(ds.result.Table, q.Filters, value)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	if limit := parseIntParam(r, "limit", 0); limit > 0 {
		rows = head(rows, limit)
	}

	s.writeTable(w, r, rows, format, "gdp_rows")
}

// handleAggregate groups filtered rows (?group_by=continent|country|all,
// ?operation=sum|avg).
func (s *Server) handleAggregate(w http.ResponseWriter, r *http.Request) {
	ds := s.snapshot()
	if ds == nil {
		s.respondError(w, r, errNoDataset, http.StatusNotFound)
		return
	}

	q, err := parseQuery(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	if q.GroupBy == "" {
		q.GroupBy = query.GroupContinent
	}
	format, err := parseFormatParam(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	out, err := query.Run(ds.result.Table, q)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	s.writeTable(w, r, out, format, "gdp_"+strings.ToLower(q.GroupBy))
}

// writeTable streams t in the requested format. Files other than JSON are
// sent as attachments.
func (s *Server) writeTable(w http.ResponseWriter, r *http.Request, t *table.Table, f export.Format, name string) {
	w.Header().Set("Content-Type", f.ContentType())
	if f != export.FormatJSON {
		w.Header().Set("Content-Disposition", `attachment; filename="`+name+"."+string(f)+`"`)
	}
	if err := export.Write(w, t, f); err != nil {
		logger := s.logger(r)
		logger.Error("write table", "format", string(f), "error", err)
	}
}

// head returns the first n rows of t.
func head(t *table.Table, n int) *table.Table {
	if n >= t.NumRows() {
		return t
	}
	keep := make([]bool, t.NumRows())
	for i := 0; i < n; i++ {
		keep[i] = true
	}
	out, err := t.Filter(keep)
	if err != nil {
		return t
	}
	return out
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

// parseQuery reads filter and aggregation parameters.
func parseQuery(r *http.Request) (query.Query, error) {
	v := r.URL.Query()
	q := query.Query{
		Filters: query.Filters{
			Region:  strings.TrimSpace(v.Get("region")),
			Country: strings.TrimSpace(v.Get("country")),
		},
		GroupBy:   strings.TrimSpace(v.Get("group_by")),
		Operation: strings.TrimSpace(v.Get("operation")),
		Value:     strings.TrimSpace(v.Get("value")),
	}

	for _, p := range []struct {
		name string
		dst  **int
	}{
		{"start_year", &q.StartYear},
		{"end_year", &q.EndYear},
	} {
		raw := strings.TrimSpace(v.Get(p.name))
		if raw == "" {
			continue
		}
		year, err := strconv.Atoi(raw)
		if err != nil {
			return query.Query{}, &paramError{name: p.name, value: raw}
		}
		*p.dst = &year
	}

	if _, err := query.ParseOperation(q.Operation); err != nil {
		return query.Query{}, err
	}
	return q, nil
}

// parseFormatParam reads ?format=, defaulting to JSON.
func parseFormatParam(r *http.Request) (export.Format, error) {
	raw := r.URL.Query().Get("format")
	if raw == "" {
		return export.FormatJSON, nil
	}
	return export.ParseFormat(raw)
}

type paramError struct {
	name  string
	value string
}

func (e *paramError) Error() string {
	return "invalid " + e.name + " " + strconv.Quote(e.value)
}
