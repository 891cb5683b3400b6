package declarative

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/gdpdash/internal/contract"
	"github.com/JonMunkholm/gdpdash/internal/engine"
	"github.com/JonMunkholm/gdpdash/internal/export"
	"github.com/JonMunkholm/gdpdash/internal/loader"
	"github.com/JonMunkholm/gdpdash/internal/query"
	"github.com/JonMunkholm/gdpdash/internal/table"
)

// Pipeline is a compiled pipeline file, ready to hand to the engine.
type Pipeline struct {
	Name string
	File string

	Request  loader.Request
	Contract *contract.Contract
	// Reshape is nil when the file has no reshape section.
	Reshape engine.Reshaper
	// Query and Export are nil when absent.
	Query  *query.Query
	Export *Export
}

// Export is a validated export section.
type Export struct {
	Path   string
	Format export.Format
	Table  string
	Mode   export.Mode
}

// Default names used when a reshape omits them.
const (
	defaultVarName   = "year"
	defaultValueName = "gdp"
)

// Compile validates doc and builds the immutable values it describes.
// Relative paths are resolved against baseDir.
func Compile(doc *Document, baseDir string) (*Pipeline, error) {
	c := &compiler{baseDir: baseDir}

	if doc.APIVersion != SupportedAPIVersion {
		c.addf("apiVersion", "unsupported apiVersion %q (expected %q)", doc.APIVersion, SupportedAPIVersion)
	}
	if doc.Kind != KindPipeline {
		c.addf("kind", "unexpected kind %q (expected %q)", doc.Kind, KindPipeline)
	}

	p := &Pipeline{Name: doc.Metadata.Name}
	p.Request = c.request(doc.Source)
	p.Contract = c.contract(doc.Contract)
	if doc.Reshape != nil {
		p.Reshape = c.reshape(*doc.Reshape)
	}
	if doc.Query != nil {
		c.query(*doc.Query)
		q := *doc.Query
		p.Query = &q
	}
	if doc.Export != nil {
		p.Export = c.export(*doc.Export)
	}
	if p.Name == "" && p.Contract != nil {
		p.Name = p.Contract.Name
	}

	if len(c.problems) > 0 {
		return nil, &InvalidPipelineError{Problems: c.problems}
	}
	if err := p.Contract.Check(); err != nil {
		return nil, fmt.Errorf("contract: %w", err)
	}
	return p, nil
}

type compiler struct {
	baseDir  string
	problems []ValidationError
}

func (c *compiler) addf(path, format string, args ...any) {
	c.problems = append(c.problems, ValidationError{Path: path, Message: fmt.Sprintf(format, args...)})
}

func (c *compiler) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || c.baseDir == "" {
		return path
	}
	return filepath.Join(c.baseDir, path)
}

func (c *compiler) request(src SourceDoc) loader.Request {
	if strings.TrimSpace(src.Path) == "" {
		c.addf("source.path", "is required")
	}
	format := strings.ToLower(strings.TrimSpace(src.Format))
	if format == "" {
		format = loader.FormatAuto
	}
	return loader.NewRequest(c.resolve(src.Path), format, src.Options)
}

func (c *compiler) contract(doc ContractDoc) *contract.Contract {
	out := &contract.Contract{}
	switch strings.ToLower(doc.Builtin) {
	case "":
	case "gdp":
		out = contract.GDP()
	default:
		c.addf("contract.builtin", "unknown builtin contract %q", doc.Builtin)
	}
	if doc.Name != "" {
		out.Name = doc.Name
	}

	for i, col := range doc.Columns {
		spec, ok := c.column(fmt.Sprintf("contract.columns[%d]", i), col)
		if !ok {
			continue
		}
		replaced := false
		for j := range out.Columns {
			if strings.EqualFold(out.Columns[j].Name, spec.Name) {
				out.Columns[j] = spec
				replaced = true
			}
		}
		if !replaced {
			out.Columns = append(out.Columns, spec)
		}
	}

	for i, pd := range doc.Predicates {
		if pred, ok := c.predicate(fmt.Sprintf("contract.predicates[%d]", i), pd); ok {
			out.Predicates = append(out.Predicates, pred)
		}
	}

	if len(doc.UniqueKey) > 0 {
		out.UniqueKey = doc.UniqueKey
	}
	return out
}

func (c *compiler) column(path string, doc ColumnDoc) (contract.ColumnSpec, bool) {
	ok := true
	dtype, err := table.ParseDType(doc.Type)
	if err != nil {
		c.addf(path+".type", "%v", err)
		ok = false
	}

	spec := contract.ColumnSpec{
		Name:      doc.Name,
		Type:      dtype,
		Required:  doc.Required,
		Normalize: doc.Normalize,
	}
	if doc.Default == nil {
		return spec, ok
	}

	d := doc.Default
	kind, err := contract.ParseDefaultKind(d.Kind)
	if err != nil {
		c.addf(path+".default.kind", "%v", err)
		return spec, false
	}
	spec.Default = contract.Default{
		Kind:      kind,
		Value:     d.Value,
		GroupBy:   d.GroupBy,
		KeyColumn: d.KeyColumn,
	}

	if kind == contract.DefaultLookup {
		switch {
		case d.Table != "" && len(d.Values) > 0:
			c.addf(path+".default", "set either table or values, not both")
			ok = false
		case d.Table == BuiltinContinents:
			spec.Default.Table = contract.Continents
		case d.Table != "":
			c.addf(path+".default.table", "unknown lookup table %q (want %s or inline values)", d.Table, BuiltinContinents)
			ok = false
		default:
			spec.Default.Table = d.Values
		}
	} else if d.Table != "" || len(d.Values) > 0 {
		c.addf(path+".default", "table and values apply only to lookup defaults")
		ok = false
	}
	return spec, ok
}

func (c *compiler) predicate(path string, doc PredicateDoc) (contract.Predicate, bool) {
	ok := true
	kind, err := contract.ParsePredicateKind(doc.Kind)
	if err != nil {
		c.addf(path+".kind", "%v", err)
		ok = false
	}
	policy, err := contract.ParsePolicy(doc.Policy)
	if err != nil {
		c.addf(path+".policy", "%v", err)
		ok = false
	}
	return contract.Predicate{
		Name:   doc.Name,
		Column: doc.Column,
		Kind:   kind,
		Min:    doc.Min,
		Max:    doc.Max,
		Values: doc.Values,
		Policy: policy,
	}, ok
}

func (c *compiler) reshape(doc ReshapeDoc) engine.Reshaper {
	if len(doc.Rename) == 0 && len(doc.IDColumns) == 0 {
		c.addf("reshape", "needs rename or id_columns")
		return nil
	}
	if len(doc.IDColumns) == 0 && (doc.VarName != "" || doc.ValueName != "") {
		c.addf("reshape", "var_name and value_name need id_columns")
	}

	rename := doc.Rename
	ids := doc.IDColumns
	varName := doc.VarName
	if varName == "" {
		varName = defaultVarName
	}
	valueName := doc.ValueName
	if valueName == "" {
		valueName = defaultValueName
	}

	return func(t *table.Table) (*table.Table, error) {
		var err error
		if len(rename) > 0 {
			if t, err = query.Rename(t, rename); err != nil {
				return nil, err
			}
		}
		if len(ids) > 0 {
			if t, err = query.Melt(t, ids, varName, valueName); err != nil {
				return nil, err
			}
		}
		return t, nil
	}
}

func (c *compiler) query(q query.Query) {
	if _, err := query.ParseOperation(q.Operation); err != nil {
		c.addf("query.operation", "%v", err)
	}
	switch strings.ToLower(strings.TrimSpace(q.GroupBy)) {
	case "", query.GroupContinent, query.GroupCountry, query.GroupCountryCode, query.GroupAll:
	default:
		c.addf("query.group_by", "unknown grouping %q", q.GroupBy)
	}
	if q.StartYear != nil && q.EndYear != nil && *q.StartYear > *q.EndYear {
		c.addf("query", "start_year %d is after end_year %d", *q.StartYear, *q.EndYear)
	}
}

func (c *compiler) export(doc ExportDoc) *Export {
	out := &Export{Path: c.resolve(doc.Path), Table: doc.Table}
	if doc.Path == "" && doc.Table == "" {
		c.addf("export", "needs path or table")
	}

	if doc.Path != "" {
		name := doc.Format
		if name == "" {
			name = doc.Path
		}
		f, err := export.ParseFormat(name)
		if err != nil {
			c.addf("export.format", "%v", err)
		}
		out.Format = f
	}

	if doc.Table != "" {
		if _, err := export.ParseIdentifier(doc.Table); err != nil {
			c.addf("export.table", "%v", err)
		}
	}
	mode, err := export.ParseMode(doc.Mode)
	if err != nil {
		c.addf("export.mode", "%v", err)
	}
	out.Mode = mode
	return out
}
