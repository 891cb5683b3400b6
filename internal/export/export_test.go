package export

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/gdpdash/internal/table"
)

func ptr(f float64) *float64 { return &f }

func sample() *table.Table {
	return table.MustNew(
		table.TextValues("country", "Chile", "Nepal, Federal"),
		table.FloatValues("gdp", ptr(301.5), nil),
		table.NewIntColumn("year", []pgtype.Int8{{Int64: 2020, Valid: true}, {Int64: 2021, Valid: true}}),
	)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"csv", FormatCSV},
		{"JSON", FormatJSON},
		{"excel", FormatXLSX},
		{"out/gdp.xlsx", FormatXLSX},
		{"gdp.csv", FormatCSV},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if err != nil {
			t.Errorf("ParseFormat(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := ParseFormat("parquet"); err == nil {
		t.Error("ParseFormat(parquet) expected error")
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sample(), FormatCSV); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	want := "country,gdp,year\nChile,301.5,2020\n\"Nepal, Federal\",,2021\n"
	if buf.String() != want {
		t.Errorf("csv = %q, want %q", buf.String(), want)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sample(), FormatJSON); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	want := `[{"country":"Chile","gdp":301.5,"year":2020},{"country":"Nepal, Federal","gdp":null,"year":2021}]` + "\n"
	if buf.String() != want {
		t.Errorf("json = %s, want %s", buf.String(), want)
	}
}

func TestWriteJSON_ZeroRows(t *testing.T) {
	var buf bytes.Buffer
	empty := table.MustNew(table.TextValues("country"))
	if err := WriteJSON(&buf, empty); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	if buf.String() != "[]\n" {
		t.Errorf("json = %q, want []", buf.String())
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, sample(), "GDP"); err != nil {
		t.Fatalf("WriteXLSX() error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	if got := f.GetSheetName(0); got != "GDP" {
		t.Errorf("sheet = %q, want GDP", got)
	}
	rows, err := f.GetRows("GDP")
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if strings.Join(rows[0], ",") != "country,gdp,year" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][0] != "Chile" || rows[1][2] != "2020" {
		t.Errorf("row 1 = %v", rows[1])
	}
}

func TestWrite_Errors(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, nil, FormatCSV); err == nil {
		t.Error("Write(nil) expected error")
	}
	if err := Write(&buf, sample(), Format("parquet")); err == nil {
		t.Error("Write(parquet) expected error")
	}
}

func TestPostgresType(t *testing.T) {
	tests := []struct {
		in   table.DType
		want string
	}{
		{table.Text, "text"},
		{table.Float, "double precision"},
		{table.Int, "bigint"},
		{table.Bool, "boolean"},
	}
	for _, tt := range tests {
		if got := PostgresType(tt.in); got != tt.want {
			t.Errorf("PostgresType(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCreateTableSQL(t *testing.T) {
	got := CreateTableSQL(pgx.Identifier{"analytics", "gdp"}, sample())
	want := `CREATE TABLE IF NOT EXISTS "analytics"."gdp" ("country" text, "gdp" double precision, "year" bigint)`
	if got != want {
		t.Errorf("CreateTableSQL() = %s, want %s", got, want)
	}
}

func TestParseIdentifier(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "gdp", want: `"gdp"`},
		{in: "analytics.gdp", want: `"analytics"."gdp"`},
		{in: "", wantErr: true},
		{in: "a..b", wantErr: true},
		{in: "a.b.c", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseIdentifier(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseIdentifier(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && got.Sanitize() != tt.want {
			t.Errorf("ParseIdentifier(%q) = %s, want %s", tt.in, got.Sanitize(), tt.want)
		}
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode(""); err != nil || m != ModeAppend {
		t.Errorf("ParseMode(\"\") = %v, %v; want append", m, err)
	}
	if m, err := ParseMode("REPLACE"); err != nil || m != ModeReplace {
		t.Errorf("ParseMode(REPLACE) = %v, %v; want replace", m, err)
	}
	if _, err := ParseMode("upsert"); err == nil {
		t.Error("ParseMode(upsert) expected error")
	}
}

type fakeDB struct {
	statements []string
	copied     [][]any
	columns    []string
	target     pgx.Identifier
	execErr    error
}

func (f *fakeDB) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	f.statements = append(f.statements, sql)
	return pgconn.CommandTag{}, f.execErr
}

func (f *fakeDB) CopyFrom(_ context.Context, ident pgx.Identifier, cols []string, src pgx.CopyFromSource) (int64, error) {
	f.target = ident
	f.columns = cols
	for src.Next() {
		vals, err := src.Values()
		if err != nil {
			return 0, err
		}
		f.copied = append(f.copied, vals)
	}
	return int64(len(f.copied)), src.Err()
}

func TestCopyTable(t *testing.T) {
	db := &fakeDB{}
	n, err := CopyTable(context.Background(), db, pgx.Identifier{"gdp"}, sample(), ModeReplace)
	if err != nil {
		t.Fatalf("CopyTable() error = %v", err)
	}
	if n != 2 {
		t.Errorf("rows = %d, want 2", n)
	}
	if len(db.statements) != 2 || db.statements[0] != `DROP TABLE IF EXISTS "gdp"` {
		t.Errorf("statements = %v", db.statements)
	}
	if strings.Join(db.columns, ",") != "country,gdp,year" {
		t.Errorf("columns = %v", db.columns)
	}
	if got := db.copied[1][1]; got != (pgtype.Float8{}) {
		t.Errorf("null gdp copied as %#v, want invalid pgtype.Float8", got)
	}
	if got := db.copied[0][2]; got != (pgtype.Int8{Int64: 2020, Valid: true}) {
		t.Errorf("year copied as %#v, want pgtype.Int8 2020", got)
	}
	if got, ok := db.copied[0][0].(pgtype.Text); !ok || !got.Valid {
		t.Errorf("country copied as %#v, want valid pgtype.Text", db.copied[0][0])
	}
}

func TestCopyTable_AppendSkipsDrop(t *testing.T) {
	db := &fakeDB{}
	if _, err := CopyTable(context.Background(), db, pgx.Identifier{"gdp"}, sample(), ModeAppend); err != nil {
		t.Fatalf("CopyTable() error = %v", err)
	}
	if len(db.statements) != 1 || !strings.HasPrefix(db.statements[0], "CREATE TABLE IF NOT EXISTS") {
		t.Errorf("statements = %v", db.statements)
	}
}

func TestCopyTable_ExecError(t *testing.T) {
	boom := errors.New("boom")
	db := &fakeDB{execErr: boom}
	_, err := CopyTable(context.Background(), db, pgx.Identifier{"gdp"}, sample(), ModeAppend)
	if !errors.Is(err, boom) {
		t.Errorf("CopyTable() error = %v, want wrapped boom", err)
	}
	if db.copied != nil {
		t.Error("rows were copied after a failed CREATE")
	}
}
