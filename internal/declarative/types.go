// Package declarative reads YAML pipeline files describing a source, the
// contract it must satisfy, an optional reshape, and an optional query.
package declarative

import "github.com/JonMunkholm/gdpdash/internal/query"

// SupportedAPIVersion is the only apiVersion accepted.
const SupportedAPIVersion = "gdpdash/v1"

// KindPipeline is the only document kind accepted.
const KindPipeline = "Pipeline"

// BuiltinContinents names the built-in country to continent table.
const BuiltinContinents = "builtin:continents"

// Document is the on-disk form of a pipeline file.
type Document struct {
	APIVersion string       `yaml:"apiVersion"`
	Kind       string       `yaml:"kind"`
	Metadata   Metadata     `yaml:"metadata"`
	Source     SourceDoc    `yaml:"source"`
	Reshape    *ReshapeDoc  `yaml:"reshape,omitempty"`
	Contract   ContractDoc  `yaml:"contract"`
	Query      *query.Query `yaml:"query,omitempty"`
	Export     *ExportDoc   `yaml:"export,omitempty"`
}

// Metadata identifies the pipeline.
type Metadata struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
}

// SourceDoc locates the dataset. Relative paths are resolved against the
// pipeline file's directory.
type SourceDoc struct {
	Path    string            `yaml:"path"`
	Format  string            `yaml:"format,omitempty"`
	Options map[string]string `yaml:"options,omitempty"`
}

// ReshapeDoc turns a wide layout (one column per year) into long rows.
type ReshapeDoc struct {
	Rename    map[string]string `yaml:"rename,omitempty"`
	IDColumns []string          `yaml:"id_columns,omitempty"`
	VarName   string            `yaml:"var_name,omitempty"`
	ValueName string            `yaml:"value_name,omitempty"`
}

// ContractDoc declares the contract. Builtin "gdp" starts from the built-in
// GDP contract; any columns or predicates listed are then appended to it.
type ContractDoc struct {
	Name       string         `yaml:"name"`
	Builtin    string         `yaml:"builtin,omitempty"`
	Columns    []ColumnDoc    `yaml:"columns,omitempty"`
	Predicates []PredicateDoc `yaml:"predicates,omitempty"`
	UniqueKey  []string       `yaml:"unique_key,omitempty"`
}

// ColumnDoc declares one contract column.
type ColumnDoc struct {
	Name      string      `yaml:"name"`
	Type      string      `yaml:"type"`
	Required  bool        `yaml:"required,omitempty"`
	Normalize string      `yaml:"normalize,omitempty"`
	Default   *DefaultDoc `yaml:"default,omitempty"`
}

// DefaultDoc declares null remediation for a column. Lookup defaults take
// either Table (BuiltinContinents) or inline Values.
type DefaultDoc struct {
	Kind      string            `yaml:"kind"`
	Value     string            `yaml:"value,omitempty"`
	GroupBy   string            `yaml:"group_by,omitempty"`
	KeyColumn string            `yaml:"key_column,omitempty"`
	Table     string            `yaml:"table,omitempty"`
	Values    map[string]string `yaml:"values,omitempty"`
}

// PredicateDoc declares a row-level predicate.
type PredicateDoc struct {
	Name   string   `yaml:"name"`
	Column string   `yaml:"column"`
	Kind   string   `yaml:"kind"`
	Min    *float64 `yaml:"min,omitempty"`
	Max    *float64 `yaml:"max,omitempty"`
	Values []string `yaml:"values,omitempty"`
	Policy string   `yaml:"policy,omitempty"`
}

// ExportDoc says where the cleaned (and queried) table goes.
type ExportDoc struct {
	Path   string `yaml:"path,omitempty"`
	Format string `yaml:"format,omitempty"`
	// Table is a PostgreSQL table name; the connection comes from the
	// process configuration.
	Table string `yaml:"table,omitempty"`
	Mode  string `yaml:"mode,omitempty"`
}
