package web

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/gdpdash/internal/metadata"
	"github.com/JonMunkholm/gdpdash/internal/query"
	"github.com/JonMunkholm/gdpdash/internal/table"
	"github.com/JonMunkholm/gdpdash/internal/web/templates"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	data := templates.DashboardData{}
	if ds := s.snapshot(); ds != nil {
		meta := s.metadataResponse(ds)
		data = dashboardData(meta)

		agg, err := query.Run(ds.result.Table, query.Query{GroupBy: query.GroupContinent, Operation: string(query.OpAvg)})
		if err != nil {
			s.logger(r).Warn("dashboard aggregate unavailable", "error", err)
		} else {
			grid := tableData("Average GDP by continent", agg)
			data.Continents = &grid
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Dashboard(data).Render(r.Context(), w); err != nil {
		s.logger(r).Error("render dashboard", "error", err)
	}
}

// dashboardData maps a metadata response onto the dashboard page.
func dashboardData(m MetadataResponse) templates.DashboardData {
	summary := []templates.Definition{
		{Term: "Run", Value: m.RunID},
		{Term: "Format", Value: m.Format},
		{Term: "Contract", Value: m.Contract},
		{Term: "Rows", Value: strconv.Itoa(m.Metadata.RowCount)},
		{Term: "Columns", Value: strconv.Itoa(m.Metadata.ColumnCount)},
	}
	if m.Dimensions.MinYear != nil && m.Dimensions.MaxYear != nil {
		summary = append(summary, templates.Definition{
			Term:  "Years",
			Value: fmt.Sprintf("%d to %d", *m.Dimensions.MinYear, *m.Dimensions.MaxYear),
		})
	}
	if m.Report != nil {
		summary = append(summary,
			templates.Definition{Term: "Rows removed", Value: strconv.Itoa(m.Report.RemovedRows)},
			templates.Definition{Term: "Duplicates removed", Value: strconv.Itoa(m.Report.DuplicateRows)},
		)
	}

	return templates.DashboardData{
		Loaded:  true,
		Source:  m.Source,
		Summary: summary,
		Columns: columnMeta(m.Metadata),
	}
}

func columnMeta(rec metadata.Record) []templates.ColumnMeta {
	cols := make([]templates.ColumnMeta, len(rec.Columns))
	for i, c := range rec.Columns {
		cols[i] = templates.ColumnMeta{
			Name:     c.Name,
			Type:     c.DType.String(),
			Nulls:    c.NullCount,
			NullRate: c.NullRate,
			Min:      optFloat(c.Min),
			Max:      optFloat(c.Max),
			Distinct: optInt(c.Distinct),
		}
	}
	return cols
}

// tableData renders every cell of t as text under a title.
func tableData(title string, t *table.Table) templates.TableData {
	data := templates.TableData{Title: title, Headers: t.Names()}
	cols := t.Columns()
	data.Rows = make([][]string, t.NumRows())
	for i := range data.Rows {
		row := make([]string, len(cols))
		for j, c := range cols {
			row[j] = c.String(i)
		}
		data.Rows[i] = row
	}
	return data
}

func optFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return table.FormatFloat(*f)
}

func optInt(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}
