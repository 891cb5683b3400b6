package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/gdpdash/internal/contract"
	"github.com/JonMunkholm/gdpdash/internal/loader"
	"github.com/JonMunkholm/gdpdash/internal/loader/formats"
	"github.com/JonMunkholm/gdpdash/internal/logging"
	"github.com/JonMunkholm/gdpdash/internal/metadata"
	"github.com/JonMunkholm/gdpdash/internal/table"
)

func newEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	reg, err := formats.NewRegistry()
	if err != nil {
		t.Fatalf("formats.NewRegistry() error = %v", err)
	}
	opts = append([]Option{WithLogger(logging.Discard())}, opts...)
	return New(loader.NewManager(reg, logging.Discard()), nil, opts...)
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func requireFailure(t *testing.T, err error, stage string, kind Kind) *Failure {
	t.Helper()
	var f *Failure
	if !errors.As(err, &f) {
		t.Fatalf("Run() error = %v (%T), want *Failure", err, err)
	}
	if f.Stage != stage || f.Kind != kind {
		t.Fatalf("Failure = %s/%s, want %s/%s (%v)", f.Stage, f.Kind, stage, kind, f.Detail)
	}
	return f
}

func TestRun_CSV(t *testing.T) {
	path := writeFile(t, "gdp.csv", "country,gdp,year\nchile,301.0,2020\nnepal,33.6,2020\n")

	res, err := newEngine(t).Run(context.Background(), loader.NewRequest(path, "auto", nil), contract.GDP())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if res.Format != "csv" || res.Source != path {
		t.Errorf("Source/Format = %s/%s, want %s/csv", res.Source, res.Format, path)
	}
	if res.Metadata.RowCount != 2 {
		t.Errorf("RowCount = %d, want 2", res.Metadata.RowCount)
	}
	continent, _ := res.Table.Column("continent")
	if continent.String(0) != "South America" || continent.String(1) != "Asia" {
		t.Errorf("continents = %q, %q", continent.String(0), continent.String(1))
	}
}

func TestRun_JSONMissingGDP(t *testing.T) {
	path := writeFile(t, "gdp.json", `[{"country": "Chile", "year": 2020}]`)

	_, err := newEngine(t).Run(context.Background(), loader.NewRequest(path, "json", nil), contract.GDP())

	f := requireFailure(t, err, StageClean, KindMissingColumn)
	if f.Column != "gdp" {
		t.Errorf("Column = %q, want gdp", f.Column)
	}
	var missing *contract.MissingColumnError
	if !errors.As(err, &missing) {
		t.Errorf("Failure should unwrap to *contract.MissingColumnError")
	}
}

func TestRun_ExcelNonNumericGDP(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	rows := [][]any{
		{"country", "gdp"},
		{"Chile", 301.5},
		{"Nepal", "not reported"},
	}
	for i, row := range rows {
		for j, v := range row {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+1)
			if err := f.SetCellValue("Sheet1", cell, v); err != nil {
				t.Fatalf("set %s: %v", cell, err)
			}
		}
	}
	path := filepath.Join(t.TempDir(), "gdp.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}

	_, err := newEngine(t).Run(context.Background(), loader.NewRequest(path, "auto", nil), contract.GDP())

	failure := requireFailure(t, err, StageClean, KindUnresolvedNull)
	if failure.Column != "gdp" || failure.Row != 1 {
		t.Errorf("Column/Row = %q/%d, want gdp/1", failure.Column, failure.Row)
	}
}

func TestRun_ZeroRowSource(t *testing.T) {
	path := writeFile(t, "gdp.csv", "country,gdp,continent\n")

	res, err := newEngine(t).Run(context.Background(), loader.NewRequest(path, "csv", nil), contract.GDP())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Metadata.RowCount != 0 {
		t.Errorf("RowCount = %d, want 0", res.Metadata.RowCount)
	}
	for _, c := range res.Metadata.Columns {
		if c.NullRate != 0 {
			t.Errorf("%s NullRate = %v, want 0", c.Name, c.NullRate)
		}
	}
}

func TestRun_LoadFailures(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		req  loader.Request
		kind Kind
	}{
		{name: "unknown format", req: loader.NewRequest(filepath.Join(dir, "gdp.csv"), "parquet", nil), kind: KindUnknownFormat},
		{name: "unsupported extension", req: loader.NewRequest(filepath.Join(dir, "gdp.parquet"), "auto", nil), kind: KindUnsupportedExtension},
		{name: "missing file", req: loader.NewRequest(filepath.Join(dir, "gdp.csv"), "csv", nil), kind: KindLoad},
	}

	e := newEngine(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := e.Run(context.Background(), tt.req, contract.GDP())
			if res != nil {
				t.Error("Run() returned a result alongside an error")
			}
			requireFailure(t, err, StageLoad, tt.kind)
		})
	}
}

func TestRun_ContractProblems(t *testing.T) {
	path := writeFile(t, "gdp.csv", "country,gdp\nChile,1\n")
	req := loader.NewRequest(path, "csv", nil)
	e := newEngine(t)

	_, err := e.Run(context.Background(), req, nil)
	requireFailure(t, err, StageClean, KindContractViolation)

	broken := &contract.Contract{Name: "broken"}
	_, err = e.Run(context.Background(), req, broken)
	requireFailure(t, err, StageClean, KindContractViolation)
}

func TestRun_ReshapeFailure(t *testing.T) {
	path := writeFile(t, "gdp.csv", "country,gdp\nChile,1\n")
	e := newEngine(t, WithReshape(func(*table.Table) (*table.Table, error) {
		return nil, errors.New("no year columns")
	}))

	_, err := e.Run(context.Background(), loader.NewRequest(path, "csv", nil), contract.GDP())
	requireFailure(t, err, StageClean, KindStep)
}

func TestRun_Idempotent(t *testing.T) {
	path := writeFile(t, "gdp.csv", "country,gdp,year\nchile,301.0,2020\nchile,-1,2021\nnepal,,2020\nnepal,33.6,2021\n")
	c := contract.GDP()
	c.Columns[1].Default = contract.Default{Kind: contract.DefaultBackwardFill, GroupBy: "country"}
	req := loader.NewRequest(path, "auto", nil)
	e := newEngine(t)

	a, err := e.Run(context.Background(), req, c)
	if err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	b, err := e.Run(context.Background(), req, c)
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}

	if !a.Table.Equal(b.Table) {
		t.Error("tables differ between runs")
	}
	if !reflect.DeepEqual(a.Metadata, b.Metadata) || !reflect.DeepEqual(a.Report, b.Report) {
		t.Error("metadata or report differ between runs")
	}
	if a.Report.Filled["gdp"] != 1 || a.Report.RemovedRows != 1 {
		t.Errorf("report = %+v, want one fill and one removed row", a.Report)
	}
}

func TestClassify_Metadata(t *testing.T) {
	f := classify(StageMetadata, &metadata.ComputationError{Column: "gdp", Reason: "ragged"})
	if f.Kind != KindMetadata || f.Column != "gdp" || f.Row != -1 {
		t.Errorf("classify() = %+v", f)
	}
}
