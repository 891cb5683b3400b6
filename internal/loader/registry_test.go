package loader

import (
	"errors"
	"testing"

	"github.com/JonMunkholm/gdpdash/internal/table"
)

// fakeLoader records calls and returns a canned table or error.
type fakeLoader struct {
	format string
	tbl    *table.Table
	err    error
	calls  int
}

func (f *fakeLoader) Load(req Request) (*table.Table, error) {
	f.calls++
	return f.tbl, f.err
}

func (f *fakeLoader) SupportedFormat() string { return f.format }

func TestRegistry_RoundTrip(t *testing.T) {
	reg := NewRegistry()
	loaders := map[string]*fakeLoader{
		"csv":   {format: "csv"},
		"excel": {format: "excel"},
		"json":  {format: "json"},
	}
	for id, l := range loaders {
		if err := reg.Register(id, l); err != nil {
			t.Fatalf("Register(%q) error = %v", id, err)
		}
	}

	for id, want := range loaders {
		got, err := reg.Resolve(id)
		if err != nil {
			t.Fatalf("Resolve(%q) error = %v", id, err)
		}
		if got != want {
			t.Errorf("Resolve(%q) returned a different loader", id)
		}
	}
}

func TestRegistry_IdentifiersAreCaseInsensitive(t *testing.T) {
	reg := NewRegistry()
	l := &fakeLoader{format: "csv"}
	if err := reg.Register("CSV", l); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	got, err := reg.Resolve("csv")
	if err != nil || got != l {
		t.Fatalf("Resolve(\"csv\") = (%v, %v), want registered loader", got, err)
	}
	if formats := reg.Formats(); len(formats) != 1 || formats[0] != "csv" {
		t.Errorf("Formats() = %v, want [csv]", formats)
	}
}

func TestRegistry_DuplicateKeepsFirst(t *testing.T) {
	reg := NewRegistry()
	first := &fakeLoader{format: "csv"}
	second := &fakeLoader{format: "csv"}

	if err := reg.Register("csv", first); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	err := reg.Register("Csv", second)
	var dup *DuplicateLoaderError
	if !errors.As(err, &dup) {
		t.Fatalf("Register() duplicate error = %v, want *DuplicateLoaderError", err)
	}
	if dup.Format != "csv" {
		t.Errorf("DuplicateLoaderError.Format = %q, want %q", dup.Format, "csv")
	}

	got, err := reg.Resolve("csv")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got != first {
		t.Error("Resolve() returned the second registration, want the first")
	}
}

func TestRegistry_ResolveUnknown(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Resolve("parquet")

	var unknown *UnknownFormatError
	if !errors.As(err, &unknown) {
		t.Fatalf("Resolve() error = %v, want *UnknownFormatError", err)
	}
}

func TestRegistry_ResolveByExtension(t *testing.T) {
	reg := NewRegistry()
	csvLoader := &fakeLoader{format: "csv"}
	excelLoader := &fakeLoader{format: "excel"}
	_ = reg.Register("csv", csvLoader)
	_ = reg.Register("excel", excelLoader)

	tests := []struct {
		path string
		want Loader
	}{
		{"data/gdp.csv", csvLoader},
		{"data/GDP.CSV", csvLoader},
		{"data/gdp.tsv", csvLoader},
		{"data/gdp.xlsx", excelLoader},
	}
	for _, tt := range tests {
		got, err := reg.ResolveByExtension(tt.path)
		if err != nil {
			t.Errorf("ResolveByExtension(%q) error = %v", tt.path, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ResolveByExtension(%q) returned %s loader", tt.path, got.SupportedFormat())
		}
	}
}

func TestRegistry_ResolveByExtension_NoFallback(t *testing.T) {
	reg := NewRegistry()
	_ = reg.Register("csv", &fakeLoader{format: "csv"})

	for _, path := range []string{"gdp.parquet", "gdp", "gdp.txt"} {
		_, err := reg.ResolveByExtension(path)
		var unsupported *UnsupportedExtensionError
		if !errors.As(err, &unsupported) {
			t.Errorf("ResolveByExtension(%q) error = %v, want *UnsupportedExtensionError", path, err)
		}
	}
}

func TestRegistry_MappedExtensionWithoutLoader(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.ResolveByExtension("gdp.json")

	var unknown *UnknownFormatError
	if !errors.As(err, &unknown) {
		t.Fatalf("ResolveByExtension() error = %v, want *UnknownFormatError", err)
	}
}

func TestRegistry_FrozenRejectsRegistration(t *testing.T) {
	reg := NewRegistry()
	reg.Freeze()

	if err := reg.Register("csv", &fakeLoader{format: "csv"}); !errors.Is(err, ErrRegistryFrozen) {
		t.Errorf("Register() after Freeze error = %v, want ErrRegistryFrozen", err)
	}
}

func TestRegistry_RejectsInvalidRegistration(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register("", &fakeLoader{}); err == nil {
		t.Error("Register(\"\") expected error")
	}
	if err := reg.Register("auto", &fakeLoader{}); err == nil {
		t.Error("Register(\"auto\") expected error")
	}
	if err := reg.Register("csv", nil); err == nil {
		t.Error("Register(nil loader) expected error")
	}
}

func TestExtensions(t *testing.T) {
	got := Extensions("excel")
	want := []string{".xls", ".xlsm", ".xlsx"}
	if len(got) != len(want) {
		t.Fatalf("Extensions(\"excel\") = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Extensions(\"excel\")[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
