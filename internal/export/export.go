// Package export writes cleaned tables out as CSV, JSON records, XLSX
// workbooks, or rows in a PostgreSQL table.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/gdpdash/internal/table"
)

// Format identifies a file export format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

// Formats lists the file formats Write accepts.
func Formats() []Format {
	return []Format{FormatCSV, FormatJSON, FormatXLSX}
}

// ParseFormat accepts a format name or a file path with a known extension.
func ParseFormat(s string) (Format, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if ext := filepath.Ext(name); ext != "" {
		name = strings.TrimPrefix(ext, ".")
	}
	switch name {
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unknown export format %q (want csv, json or xlsx)", s)
}

// ContentType returns the MIME type served for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/csv"
	}
}

// Write encodes t to w in the given format.
func Write(w io.Writer, t *table.Table, f Format) error {
	if t == nil {
		return fmt.Errorf("export: nil table")
	}
	switch f {
	case FormatCSV:
		return WriteCSV(w, t)
	case FormatJSON:
		return WriteJSON(w, t)
	case FormatXLSX:
		return WriteXLSX(w, t, "")
	}
	return fmt.Errorf("unknown export format %q", f)
}

// WriteCSV writes a header row followed by one record per row. Nulls are
// written as empty fields.
func WriteCSV(w io.Writer, t *table.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Names()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, t.NumCols())
	for i := 0; i < t.NumRows(); i++ {
		for j, c := range t.Columns() {
			record[j] = c.String(i)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteJSON writes an array of records keeping column order within each
// record. Nulls are written as JSON null.
func WriteJSON(w io.Writer, t *table.Table) error {
	keys := make([][]byte, t.NumCols())
	for j, name := range t.Names() {
		k, err := json.Marshal(name)
		if err != nil {
			return fmt.Errorf("encode column name %q: %w", name, err)
		}
		keys[j] = k
	}

	var buf bytes.Buffer
	buf.WriteByte('[')
	for i := 0; i < t.NumRows(); i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		for j, c := range t.Columns() {
			if j > 0 {
				buf.WriteByte(',')
			}
			buf.Write(keys[j])
			buf.WriteByte(':')
			v, err := json.Marshal(c.Value(i))
			if err != nil {
				return fmt.Errorf("encode row %d column %q: %w", i+1, c.Name(), err)
			}
			buf.Write(v)
		}
		buf.WriteByte('}')
	}
	buf.WriteString("]\n")

	_, err := buf.WriteTo(w)
	return err
}

// WriteXLSX writes t to a single-sheet workbook. An empty sheet name
// defaults to "Data".
func WriteXLSX(w io.Writer, t *table.Table, sheet string) error {
	if sheet == "" {
		sheet = "Data"
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	header := make([]any, t.NumCols())
	for j, name := range t.Names() {
		header[j] = name
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	row := make([]any, t.NumCols())
	for i := 0; i < t.NumRows(); i++ {
		for j, c := range t.Columns() {
			row[j] = c.Value(i)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
