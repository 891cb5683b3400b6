package loader

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/JonMunkholm/gdpdash/internal/table"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestManager_AutoUsesExtension(t *testing.T) {
	reg := NewRegistry()
	csvLoader := &fakeLoader{format: "csv", tbl: table.MustNew(table.TextValues("country", "A"))}
	jsonLoader := &fakeLoader{format: "json", tbl: table.MustNew()}
	_ = reg.Register("csv", csvLoader)
	_ = reg.Register("json", jsonLoader)

	mgr := NewManager(reg, quietLogger())
	tbl, err := mgr.Load(NewRequest("gdp.csv", "auto", nil))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if tbl.NumRows() != 1 {
		t.Errorf("NumRows() = %d, want 1", tbl.NumRows())
	}
	if csvLoader.calls != 1 || jsonLoader.calls != 0 {
		t.Errorf("calls csv=%d json=%d, want csv=1 json=0", csvLoader.calls, jsonLoader.calls)
	}
}

func TestManager_ExplicitFormatIgnoresExtension(t *testing.T) {
	reg := NewRegistry()
	jsonLoader := &fakeLoader{format: "json", tbl: table.MustNew()}
	_ = reg.Register("json", jsonLoader)

	mgr := NewManager(reg, quietLogger())
	if _, err := mgr.Load(NewRequest("export.txt", "JSON", nil)); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if jsonLoader.calls != 1 {
		t.Errorf("json loader calls = %d, want 1", jsonLoader.calls)
	}
}

func TestManager_WrapsFailures(t *testing.T) {
	reg := NewRegistry()
	broken := &fakeLoader{format: "csv", err: &LoadError{Format: "csv", Source: "gdp.csv", Reason: "empty file"}}
	_ = reg.Register("csv", broken)
	mgr := NewManager(reg, quietLogger())

	tests := []struct {
		name   string
		req    Request
		target any
	}{
		{"loader error", NewRequest("gdp.csv", "csv", nil), new(*LoadError)},
		{"unknown format", NewRequest("gdp.csv", "parquet", nil), new(*UnknownFormatError)},
		{"unsupported extension", NewRequest("gdp.parquet", "auto", nil), new(*UnsupportedExtensionError)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := mgr.Load(tt.req)

			var failure *LoadingFailure
			if !errors.As(err, &failure) {
				t.Fatalf("Load() error = %T, want *LoadingFailure", err)
			}
			if failure.Stage != StageLoad {
				t.Errorf("Stage = %q, want %q", failure.Stage, StageLoad)
			}
			if !errors.As(err, tt.target) {
				t.Errorf("cause = %T, want %T", failure.Cause, tt.target)
			}
		})
	}
}

func TestManager_DoesNotRetry(t *testing.T) {
	reg := NewRegistry()
	broken := &fakeLoader{format: "csv", err: errors.New("disk on fire")}
	_ = reg.Register("csv", broken)

	_, _ = NewManager(reg, quietLogger()).Load(NewRequest("gdp.csv", "auto", nil))
	if broken.calls != 1 {
		t.Errorf("loader calls = %d, want 1", broken.calls)
	}
}

func TestManager_NilTableIsLoadError(t *testing.T) {
	reg := NewRegistry()
	_ = reg.Register("csv", &fakeLoader{format: "csv"})

	_, err := NewManager(reg, quietLogger()).Load(NewRequest("gdp.csv", "", nil))
	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("Load() error = %v, want *LoadError", err)
	}
}

func TestNewRequest_IsImmutable(t *testing.T) {
	opts := map[string]string{"Delimiter": ";"}
	req := NewRequest("gdp.csv", "", opts)
	opts["Delimiter"] = ","

	if req.Format() != FormatAuto {
		t.Errorf("Format() = %q, want %q", req.Format(), FormatAuto)
	}
	if v, _ := req.Option("delimiter"); v != ";" {
		t.Errorf("Option(\"delimiter\") = %q, want %q", v, ";")
	}
	req.Options()["delimiter"] = "|"
	if v, _ := req.Option("delimiter"); v != ";" {
		t.Errorf("Option(\"delimiter\") after mutating Options() = %q, want %q", v, ";")
	}
}
