package formats

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/gdpdash/internal/loader"
	"github.com/JonMunkholm/gdpdash/internal/table"
)

// writeWorkbook saves a workbook whose first sheet holds rows, starting at A1.
func writeWorkbook(t *testing.T, sheet string, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			t.Fatalf("rename sheet: %v", err)
		}
	}
	for i, row := range rows {
		for j, v := range row {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+1)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				t.Fatalf("set %s: %v", cell, err)
			}
		}
	}

	path := filepath.Join(t.TempDir(), "gdp.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}

func TestExcel_InfersTypes(t *testing.T) {
	path := writeWorkbook(t, "Sheet1", [][]any{
		{"country", "gdp", "year"},
		{"Chile", 301.5, 2020},
		{"Nepal", 33.66, 2020},
	})

	tbl, err := NewExcel().Load(loader.NewRequest(path, "excel", nil))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if tbl.NumRows() != 2 {
		t.Fatalf("NumRows() = %d, want 2", tbl.NumRows())
	}

	want := map[string]table.DType{"country": table.Text, "gdp": table.Float, "year": table.Int}
	for name, dtype := range want {
		col, ok := tbl.Column(name)
		if !ok {
			t.Fatalf("column %q missing", name)
		}
		if col.Type() != dtype {
			t.Errorf("%s type = %v, want %v", name, col.Type(), dtype)
		}
	}

	gdp, _ := tbl.Column("gdp")
	if v, ok := gdp.Float(1); !ok || v != 33.66 {
		t.Errorf("gdp[1] = %v, %v, want 33.66", v, ok)
	}
}

func TestExcel_PadsShortRows(t *testing.T) {
	path := writeWorkbook(t, "Sheet1", [][]any{
		{"country", "gdp", "continent"},
		{"Chile", 301.5},
	})

	tbl, err := NewExcel().Load(loader.NewRequest(path, "auto", nil))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	continent, _ := tbl.Column("continent")
	if !continent.IsNull(0) {
		t.Errorf("continent[0] = %q, want null", continent.String(0))
	}
}

func TestExcel_SheetOption(t *testing.T) {
	path := writeWorkbook(t, "GDP", [][]any{{"country"}, {"Chile"}})

	if _, err := NewExcel().Load(loader.NewRequest(path, "excel", map[string]string{"sheet": "gdp"})); err != nil {
		t.Errorf("Load(sheet=gdp) error = %v", err)
	}

	_, err := NewExcel().Load(loader.NewRequest(path, "excel", map[string]string{"sheet": "Population"}))
	var loadErr *loader.LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("Load(sheet=Population) error = %v, want *loader.LoadError", err)
	}
	if !strings.Contains(loadErr.Reason, "not found") {
		t.Errorf("Reason = %q, want sheet not found", loadErr.Reason)
	}
}

func TestExcel_HeaderRow(t *testing.T) {
	path := writeWorkbook(t, "Sheet1", [][]any{
		{"World Bank export"},
		{"country", "gdp"},
		{"Chile", 301.5},
	})

	tbl, err := NewExcel().Load(loader.NewRequest(path, "excel", map[string]string{"header_row": "2"}))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := strings.Join(tbl.Names(), ","); got != "country,gdp" {
		t.Errorf("Names() = %s, want country,gdp", got)
	}
	if tbl.NumRows() != 1 {
		t.Errorf("NumRows() = %d, want 1", tbl.NumRows())
	}
}

func TestExcel_Failures(t *testing.T) {
	tests := []struct {
		name   string
		rows   [][]any
		opts   map[string]string
		reason string
	}{
		{name: "error cell", rows: [][]any{{"country", "gdp"}, {"Chile", "#DIV/0!"}}, reason: "invalid cell B2"},
		{name: "value outside header", rows: [][]any{{"country"}, {"Chile", 12}}, reason: "cell B2"},
		{name: "empty sheet", rows: nil, reason: "is empty"},
		{name: "bad header_row", rows: [][]any{{"country"}}, opts: map[string]string{"header_row": "0"}, reason: "invalid header_row"},
		{name: "duplicate header", rows: [][]any{{"gdp", "GDP"}, {1, 2}}, reason: "duplicate column"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeWorkbook(t, "Sheet1", tt.rows)
			_, err := NewExcel().Load(loader.NewRequest(path, "excel", tt.opts))

			var loadErr *loader.LoadError
			if !errors.As(err, &loadErr) {
				t.Fatalf("Load() error = %v, want *loader.LoadError", err)
			}
			if !strings.Contains(loadErr.Reason, tt.reason) {
				t.Errorf("Reason = %q, want it to contain %q", loadErr.Reason, tt.reason)
			}
		})
	}
}

func TestExcel_NotAWorkbook(t *testing.T) {
	path := writeFile(t, "gdp.xlsx", "country,gdp\n")

	_, err := NewExcel().Load(loader.NewRequest(path, "excel", nil))
	var loadErr *loader.LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("Load() error = %v, want *loader.LoadError", err)
	}
}
