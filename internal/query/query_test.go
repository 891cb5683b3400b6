package query

import (
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/gdpdash/internal/table"
)

func ptr(f float64) *float64 { return &f }
func year(y int) *int        { return &y }

func ints(name string, values ...int64) *table.Column {
	out := make([]pgtype.Int8, len(values))
	for i, v := range values {
		out[i] = pgtype.Int8{Int64: v, Valid: true}
	}
	return table.NewIntColumn(name, out)
}

// long is a small cleaned table in long layout.
func long() *table.Table {
	return table.MustNew(
		table.TextValues("country", "Chile", "Chile", "Nepal", "Nepal", "Mali"),
		table.TextValues("continent", "South America", "South America", "Asia", "Asia", "Africa"),
		ints("year", 2019, 2020, 2019, 2020, 2020),
		table.FloatValues("gdp", ptr(280), ptr(250), ptr(34), nil, ptr(17)),
	)
}

func TestMelt(t *testing.T) {
	wide := table.MustNew(
		table.TextValues("Country Name", "Chile", "Nepal"),
		table.TextValues("1960", "4.1", ".."),
		table.FloatValues("1961", ptr(4.5), ptr(0.5)),
	)

	out, err := Melt(wide, []string{"Country Name"}, "year", "gdp")
	if err != nil {
		t.Fatalf("Melt() error = %v", err)
	}
	if got := strings.Join(out.Names(), ","); got != "Country Name,year,gdp" {
		t.Errorf("Names() = %s", got)
	}
	if out.NumRows() != 4 {
		t.Fatalf("NumRows() = %d, want 4", out.NumRows())
	}

	yr, _ := out.Column("year")
	if yr.Type() != table.Int {
		t.Errorf("year type = %v, want int", yr.Type())
	}
	gdp, _ := out.Column("gdp")
	want := []string{"4.1", "", "4.5", "0.5"}
	for i, w := range want {
		if got := gdp.String(i); got != w {
			t.Errorf("gdp[%d] = %q, want %q", i, got, w)
		}
	}
	if got := yr.String(2); got != "1961" {
		t.Errorf("year[2] = %q, want 1961", got)
	}
}

func TestMelt_Errors(t *testing.T) {
	wide := table.MustNew(table.TextValues("country", "Chile"), table.TextValues("2020", "1"))

	tests := []struct {
		name      string
		ids       []string
		varName   string
		valueName string
	}{
		{name: "unknown id", ids: []string{"region"}, varName: "year", valueName: "gdp"},
		{name: "no value columns", ids: []string{"country", "2020"}, varName: "year", valueName: "gdp"},
		{name: "same output names", ids: []string{"country"}, varName: "gdp", valueName: "GDP"},
		{name: "collision", ids: []string{"country"}, varName: "country", valueName: "gdp"},
	}
	for _, tt := range tests {
		if _, err := Melt(wide, tt.ids, tt.varName, tt.valueName); err == nil {
			t.Errorf("%s: Melt() expected error", tt.name)
		}
	}
}

func TestRename(t *testing.T) {
	tbl := table.MustNew(table.TextValues("Country Name", "Chile"), table.TextValues("Country Code", "CHL"))

	out, err := Rename(tbl, map[string]string{"country name": "country", "Country Code": "country_code"})
	if err != nil {
		t.Fatalf("Rename() error = %v", err)
	}
	if got := strings.Join(out.Names(), ","); got != "country,country_code" {
		t.Errorf("Names() = %s", got)
	}
	if _, err := Rename(tbl, map[string]string{"Region": "continent"}); err == nil {
		t.Error("Rename() of an unknown column expected error")
	}
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name string
		f    Filters
		want int
	}{
		{name: "none drops null values", f: Filters{}, want: 4},
		{name: "region", f: Filters{Region: "south america"}, want: 2},
		{name: "country", f: Filters{Country: "NEPAL"}, want: 1},
		{name: "start only is exact", f: Filters{StartYear: year(2019)}, want: 2},
		{name: "end only is exact", f: Filters{EndYear: year(2020)}, want: 2},
		{name: "range", f: Filters{StartYear: year(2019), EndYear: year(2020)}, want: 4},
		{name: "combined", f: Filters{Region: "Asia", StartYear: year(2019), EndYear: year(2019)}, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Filter(long(), tt.f, "gdp")
			if err != nil {
				t.Fatalf("Filter() error = %v", err)
			}
			if out.NumRows() != tt.want {
				t.Errorf("NumRows() = %d, want %d", out.NumRows(), tt.want)
			}
		})
	}
}

func TestFilter_MissingColumn(t *testing.T) {
	tbl := table.MustNew(table.TextValues("country", "Chile"), table.FloatValues("gdp", ptr(1)))
	if _, err := Filter(tbl, Filters{Region: "Asia"}, "gdp"); err == nil {
		t.Error("Filter() on a table without continent expected error")
	}
}

func TestAggregate(t *testing.T) {
	out, err := Aggregate(long(), []string{"continent"}, "gdp", OpAvg)
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}

	continent, _ := out.Column("continent")
	gdp, _ := out.Column("gdp")
	op, _ := out.Column("operation")
	want := []struct {
		continent string
		gdp       string
	}{
		{"Africa", "17"},
		{"Asia", "34"},
		{"South America", "265"},
	}
	if out.NumRows() != len(want) {
		t.Fatalf("NumRows() = %d, want %d", out.NumRows(), len(want))
	}
	for i, w := range want {
		if continent.String(i) != w.continent || gdp.String(i) != w.gdp {
			t.Errorf("row %d = %s/%s, want %s/%s", i, continent.String(i), gdp.String(i), w.continent, w.gdp)
		}
	}
	if op.String(0) != "Average" {
		t.Errorf("operation = %q, want Average", op.String(0))
	}

	sum, err := Aggregate(long(), []string{"country"}, "gdp", OpSum)
	if err != nil {
		t.Fatalf("Aggregate(sum) error = %v", err)
	}
	sgdp, _ := sum.Column("gdp")
	if got := sgdp.String(0); got != "530" {
		t.Errorf("Chile sum = %s, want 530", got)
	}
}

func TestParseOperation(t *testing.T) {
	tests := map[string]Operation{"": OpAvg, "Average": OpAvg, "mean": OpAvg, "SUM": OpSum}
	for in, want := range tests {
		if got, err := ParseOperation(in); err != nil || got != want {
			t.Errorf("ParseOperation(%q) = %v, %v, want %v", in, got, err, want)
		}
	}
	if _, err := ParseOperation("median"); err == nil {
		t.Error("ParseOperation(median) expected error")
	}
}

func TestRun(t *testing.T) {
	out, err := Run(long(), Query{Filters: Filters{EndYear: year(2020)}, GroupBy: "all", Operation: "sum"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := strings.Join(out.Names(), ","); got != "country,continent,gdp,operation" {
		t.Errorf("Names() = %s", got)
	}
	if out.NumRows() != 2 {
		t.Errorf("NumRows() = %d, want 2 (Nepal 2020 is null)", out.NumRows())
	}

	if _, err := Run(long(), Query{GroupBy: "planet"}); err == nil {
		t.Error("Run() with an unknown grouping expected error")
	}
}

func TestDescribe(t *testing.T) {
	d := Describe(long())
	if got := strings.Join(d.Regions, ","); got != "Africa,Asia,South America" {
		t.Errorf("Regions = %s", got)
	}
	if got := strings.Join(d.Countries, ","); got != "Chile,Mali,Nepal" {
		t.Errorf("Countries = %s", got)
	}
	if d.MinYear == nil || *d.MinYear != 2019 || d.MaxYear == nil || *d.MaxYear != 2020 {
		t.Errorf("years = %v..%v, want 2019..2020", d.MinYear, d.MaxYear)
	}

	empty := Describe(table.MustNew())
	if len(empty.Regions) != 0 || empty.MinYear != nil {
		t.Errorf("Describe(empty) = %+v", empty)
	}
}
