package contract

import (
	"errors"
	"strings"
	"testing"

	"github.com/JonMunkholm/gdpdash/internal/table"
)

func ptr(f float64) *float64 { return &f }

func TestGDP_IsValid(t *testing.T) {
	if err := GDP().Check(); err != nil {
		t.Fatalf("GDP().Check() error = %v", err)
	}
	if got := strings.Join(GDP().Required(), ","); got != "country,gdp" {
		t.Errorf("Required() = %s, want country,gdp", got)
	}
}

func TestCheck_ReportsEveryProblem(t *testing.T) {
	c := &Contract{
		Name: "broken",
		Columns: []ColumnSpec{
			{Name: "country", Type: table.Text, Required: true},
			{Name: "Country", Type: table.Text},
			{Name: "gdp", Type: table.Float, Required: true, Normalize: "title"},
			{Name: "year", Type: table.Int, Default: Default{Kind: DefaultFixed, Value: "soon"}},
			{Name: "continent", Type: table.Text, Default: Default{Kind: DefaultLookup}},
		},
		Predicates: []Predicate{
			{Name: "p1", Column: "population", Kind: NonNegative},
			{Name: "p2", Column: "country", Kind: InSet, Values: []string{"Chile"}, Policy: Clamp},
			{Name: "p3", Column: "gdp", Kind: NonNegative, Policy: Nullify},
			{Name: "p4", Column: "gdp", Kind: Range, Min: ptr(10), Max: ptr(1)},
			{Name: "p5", Column: "country", Kind: Range, Min: ptr(0)},
		},
		UniqueKey: []string{"country", "region"},
	}

	err := c.Check()
	var invalid *InvalidContractError
	if !errors.As(err, &invalid) {
		t.Fatalf("Check() error = %v, want *InvalidContractError", err)
	}

	want := []string{
		`column "Country" declared twice`,
		`normalizer "title" needs a text column`,
		`default "soon" is not a valid int`,
		`lookup default needs a key column`,
		`lookup default has an empty table`,
		`unknown column "population"`,
		`clamp only applies to numeric predicates`,
		`cannot nullify required column "gdp"`,
		`min 10 is above max 1`,
		`range needs a numeric column`,
		`unique key references unknown column "region"`,
	}
	msg := err.Error()
	for _, w := range want {
		if !strings.Contains(msg, w) {
			t.Errorf("Check() error missing %q\n%s", w, msg)
		}
	}
	if len(invalid.Problems) != len(want) {
		t.Errorf("len(Problems) = %d, want %d: %v", len(invalid.Problems), len(want), invalid.Problems)
	}
}

func TestNew_RejectsEmptyContract(t *testing.T) {
	if _, err := New("", nil, nil, nil); err == nil {
		t.Error("New() with no name and no columns expected error")
	}
}

func TestValidate(t *testing.T) {
	tbl := table.MustNew(
		table.TextValues("country", "Chile", "Nepal", "Mali"),
		table.FloatValues("gdp", ptr(301), ptr(-5), nil),
		table.NewNullColumn("landlocked", table.Bool, 3),
	)
	c := &Contract{
		Name: "t",
		Columns: []ColumnSpec{
			{Name: "country", Type: table.Text, Required: true},
			{Name: "gdp", Type: table.Float, Required: true},
			{Name: "year", Type: table.Int, Required: true},
			{Name: "code", Type: table.Text, Required: true},
			{Name: "landlocked", Type: table.Float},
		},
		Predicates: []Predicate{{Name: "gdp_non_negative", Column: "gdp", Kind: NonNegative}},
	}

	res := c.Validate(tbl)
	if res.OK() {
		t.Fatal("OK() = true, want false")
	}

	var missing *MissingColumnError
	if !errors.As(res.MissingError(), &missing) {
		t.Fatalf("MissingError() = %v, want *MissingColumnError", res.MissingError())
	}
	if got := strings.Join(missing.Columns, ","); got != "year,code" {
		t.Errorf("missing = %s, want year,code (all of them)", got)
	}

	if len(res.TypeIssues) != 1 || res.TypeIssues[0].Column != "landlocked" {
		t.Errorf("TypeIssues = %+v, want landlocked bool->float", res.TypeIssues)
	}

	if len(res.Violations) != 1 {
		t.Fatalf("Violations = %+v, want one", res.Violations)
	}
	if v := res.Violations[0]; v.Row != 1 || v.Value != "-5" || v.Predicate != "gdp_non_negative" {
		t.Errorf("Violation = %+v, want row 1 value -5", v)
	}
}

func TestValidate_CleanTableIsOK(t *testing.T) {
	tbl := table.MustNew(
		table.TextValues("country", "Chile"),
		table.FloatValues("gdp", ptr(301)),
	)
	if res := GDP().Validate(tbl); !res.OK() {
		t.Errorf("Validate() = %+v, want OK", res)
	}
	if GDP().Validate(tbl).MissingError() != nil {
		t.Error("MissingError() should be nil when nothing is missing")
	}
}

func TestPredicate_Holds(t *testing.T) {
	nums := table.FloatValues("v", ptr(-1), ptr(0), ptr(5), ptr(11), nil)
	words := table.TextValues("w", "Asia", "  europe ", "Atlantis", "", "   ")

	tests := []struct {
		name string
		p    Predicate
		col  *table.Column
		want []bool
	}{
		{name: "non negative", p: Predicate{Kind: NonNegative}, col: nums, want: []bool{false, true, true, true, true}},
		{name: "range", p: Predicate{Kind: Range, Min: ptr(0), Max: ptr(10)}, col: nums, want: []bool{false, true, true, false, true}},
		{name: "open range", p: Predicate{Kind: Range, Max: ptr(5)}, col: nums, want: []bool{true, true, true, false, true}},
		{name: "in set", p: Predicate{Kind: InSet, Values: []string{"asia", "Europe"}}, col: words, want: []bool{true, true, false, true, true}},
		{name: "not blank", p: Predicate{Kind: NotBlank}, col: words, want: []bool{true, true, true, false, false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i, want := range tt.want {
				if got := tt.p.Holds(tt.col, i); got != want {
					t.Errorf("Holds(row %d = %q) = %v, want %v", i, tt.col.String(i), got, want)
				}
			}
		})
	}
}

func TestPredicate_HoldsOnUncoercedText(t *testing.T) {
	col := table.TextValues("gdp", "-3", "abc", "12")
	p := Predicate{Kind: NonNegative}
	want := []bool{false, true, true}
	for i, w := range want {
		if got := p.Holds(col, i); got != w {
			t.Errorf("Holds(%q) = %v, want %v", col.String(i), got, w)
		}
	}
}

func TestPredicate_ClampValue(t *testing.T) {
	tests := []struct {
		name     string
		p        Predicate
		v        float64
		integral bool
		want     float64
	}{
		{name: "negative to zero", p: Predicate{Kind: NonNegative}, v: -4, want: 0},
		{name: "in bounds", p: Predicate{Kind: Range, Min: ptr(1), Max: ptr(9)}, v: 4, want: 4},
		{name: "below min", p: Predicate{Kind: Range, Min: ptr(1.5)}, v: 0, want: 1.5},
		{name: "below min integral", p: Predicate{Kind: Range, Min: ptr(1.5)}, v: 0, integral: true, want: 2},
		{name: "above max integral", p: Predicate{Kind: Range, Max: ptr(9.5)}, v: 20, integral: true, want: 9},
	}
	for _, tt := range tests {
		if got := tt.p.ClampValue(tt.v, tt.integral); got != tt.want {
			t.Errorf("%s: ClampValue(%v) = %v, want %v", tt.name, tt.v, got, tt.want)
		}
	}
}

func TestParseKinds(t *testing.T) {
	if k, err := ParseDefaultKind("forward_fill"); err != nil || k != DefaultForwardFill {
		t.Errorf("ParseDefaultKind(forward_fill) = %v, %v", k, err)
	}
	if k, err := ParsePredicateKind("Non-Negative"); err != nil || k != NonNegative {
		t.Errorf("ParsePredicateKind(Non-Negative) = %v, %v", k, err)
	}
	if p, err := ParsePolicy(""); err != nil || p != Drop {
		t.Errorf("ParsePolicy(\"\") = %v, %v, want drop", p, err)
	}
	if _, err := ParsePolicy("ignore"); err == nil {
		t.Error("ParsePolicy(ignore) expected error")
	}
	if _, err := ParseDefaultKind("guess"); err == nil {
		t.Error("ParseDefaultKind(guess) expected error")
	}
}

func TestTitleCase(t *testing.T) {
	tests := map[string]string{
		"united states":  "United States",
		"GUINEA-BISSAU":  "Guinea-Bissau",
		"  south  asia ": "South  Asia",
		"cote d'ivoire":  "Cote D'ivoire",
		"CÔTE D'IVOIRE":  "Côte D'ivoire",
		"":               "",
	}
	for in, want := range tests {
		if got := TitleCase(in); got != want {
			t.Errorf("TitleCase(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestContinentOf(t *testing.T) {
	if c, ok := ContinentOf("  NEPAL "); !ok || c != "Asia" {
		t.Errorf("ContinentOf(NEPAL) = %q, %v, want Asia", c, ok)
	}
	if _, ok := ContinentOf("World"); ok {
		t.Error("ContinentOf(World) should be unknown")
	}
	for _, name := range []string{"Côte d'Ivoire", "CÔTE D'IVOIRE", "São Tomé and Príncipe", "Türkiye"} {
		if _, ok := ContinentOf(name); !ok {
			t.Errorf("ContinentOf(%q) should ignore accents", name)
		}
	}
}

func TestFoldKey(t *testing.T) {
	tests := map[string]string{
		"  Côte d'Ivoire ": "cote d'ivoire",
		"CURAÇAO":          "curacao",
		"Nepal":            "nepal",
		"":                 "",
	}
	for in, want := range tests {
		if got := FoldKey(in); got != want {
			t.Errorf("FoldKey(%q) = %q, want %q", in, got, want)
		}
	}
}
