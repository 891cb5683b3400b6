package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/gdpdash/internal/declarative"
	"github.com/JonMunkholm/gdpdash/internal/engine"
	"github.com/JonMunkholm/gdpdash/internal/export"
	"github.com/JonMunkholm/gdpdash/internal/query"
	"github.com/JonMunkholm/gdpdash/internal/table"
)

// queryFlags override the query section of a pipeline.
type queryFlags struct {
	region    string
	country   string
	startYear int
	endYear   int
	groupBy   string
	operation string
}

func (f *queryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.region, "region", "", "Keep rows of this continent")
	cmd.Flags().StringVar(&f.country, "country", "", "Keep rows of this country")
	cmd.Flags().IntVar(&f.startYear, "start-year", 0, "First year to keep")
	cmd.Flags().IntVar(&f.endYear, "end-year", 0, "Last year to keep")
	cmd.Flags().StringVar(&f.groupBy, "group-by", "", "Aggregate by continent, country, country_code or all")
	cmd.Flags().StringVar(&f.operation, "operation", "", "Aggregation: sum or avg")
}

// apply merges the flags that were set over base. It returns nil when
// neither base nor any flag asks for a query.
func (f *queryFlags) apply(cmd *cobra.Command, base *query.Query) *query.Query {
	q := query.Query{}
	if base != nil {
		q = *base
	}
	set := base != nil
	flags := cmd.Flags()
	if flags.Changed("region") {
		q.Region, set = f.region, true
	}
	if flags.Changed("country") {
		q.Country, set = f.country, true
	}
	if flags.Changed("start-year") {
		y := f.startYear
		q.StartYear, set = &y, true
	}
	if flags.Changed("end-year") {
		y := f.endYear
		q.EndYear, set = &y, true
	}
	if flags.Changed("group-by") {
		q.GroupBy, set = f.groupBy, true
	}
	if flags.Changed("operation") {
		q.Operation, set = f.operation, true
	}
	if !set {
		return nil
	}
	return &q
}

// runOutput is the JSON document printed by run --output json.
type runOutput struct {
	Pipeline string         `json:"pipeline"`
	Source   string         `json:"source"`
	Format   string         `json:"format"`
	Metadata any            `json:"metadata"`
	Report   any            `json:"report"`
	Query    *query.Query   `json:"query,omitempty"`
	Rows     int            `json:"rows"`
	Written  map[string]int `json:"written,omitempty"`
}

func newRunCmd(a *app) *cobra.Command {
	var (
		src    sourceFlags
		qry    queryFlags
		output string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "run [source]",
		Short: "Load and clean a dataset, then print its metadata",
		Long: `Load a dataset, clean it against its contract and print the metadata and
cleaning report. The source is a file path or a pipeline file (--pipeline).

A query (filters and aggregation) from the pipeline or from flags is applied
to the cleaned table before it is written with --out.`,
		Example: `  gdpdash run data/gdp.csv
  gdpdash run --pipeline pipelines/wide.yaml --output json
  gdpdash run data/gdp.xlsx -o sheet=GDP --group-by continent --operation avg --out avg.csv`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "text" && output != "json" {
				return fmt.Errorf("unknown output %q (want text or json)", output)
			}

			p, err := src.resolve(a.cfg, args)
			if err != nil {
				return err
			}
			res, err := a.newEngine(engineOptions(p)...).Run(cmd.Context(), p.Request, p.Contract)
			if err != nil {
				return err
			}

			q := qry.apply(cmd, p.Query)
			result := res.Table
			if q != nil {
				if result, err = query.Run(res.Table, *q); err != nil {
					return err
				}
			}

			written := map[string]int{}
			dest := out
			if dest == "" && p.Export != nil {
				dest = p.Export.Path
			}
			if dest != "" {
				if err := writeFile(dest, result); err != nil {
					return err
				}
				written[dest] = result.NumRows()
			}

			w := cmd.OutOrStdout()
			if output == "json" {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(runOutput{
					Pipeline: p.Name,
					Source:   res.Source,
					Format:   res.Format,
					Metadata: res.Metadata,
					Report:   res.Report,
					Query:    q,
					Rows:     result.NumRows(),
					Written:  written,
				})
			}

			printSummary(w, p, res)
			if q != nil {
				fmt.Fprintf(w, "\nQuery: %s (%d rows)\n", q, result.NumRows())
				if out == "" && q.GroupBy != "" {
					printTable(w, result)
				}
			}
			for path, n := range written {
				fmt.Fprintf(w, "\nWrote %d rows to %s\n", n, path)
			}
			return nil
		},
	}

	src.register(cmd)
	qry.register(cmd)
	cmd.Flags().StringVar(&output, "output", "text", "Output: text or json")
	cmd.Flags().StringVar(&out, "out", "", "Write the resulting table to this file (.csv, .json, .xlsx)")

	return cmd
}

// writeFile exports t to path in the format its extension names.
func writeFile(path string, t *table.Table) error {
	format, err := export.ParseFormat(path)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.Write(f, t, format); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// printSummary writes the metadata and cleaning report as aligned text.
func printSummary(w io.Writer, p *declarative.Pipeline, res *engine.Result) {
	meta := res.Metadata
	fmt.Fprintf(w, "Source:   %s (%s)\n", res.Source, res.Format)
	fmt.Fprintf(w, "Contract: %s\n", p.Contract.Name)
	fmt.Fprintf(w, "Rows:     %d\n", meta.RowCount)
	fmt.Fprintf(w, "Columns:  %d\n\n", meta.ColumnCount)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "COLUMN\tTYPE\tNULLS\tNULL RATE\tMIN\tMAX\tDISTINCT")
	for _, c := range meta.Columns {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%.1f%%\t%s\t%s\t%s\n",
			c.Name, c.DType, c.NullCount, c.NullRate*100, optFloat(c.Min), optFloat(c.Max), optInt(c.Distinct))
	}
	tw.Flush()

	r := res.Report
	if r == nil {
		return
	}
	fmt.Fprintf(w, "\nRemoved rows:   %d\n", r.RemovedRows)
	fmt.Fprintf(w, "Duplicate rows: %d\n", r.DuplicateRows)
	printCounts(w, "Coerced to null", r.CoercedNulls)
	printCounts(w, "Filled", r.Filled)
	printCounts(w, "Clamped", r.Clamped)
	printCounts(w, "Nullified", r.Nullified)
	if len(r.AddedColumns) > 0 {
		fmt.Fprintf(w, "Added columns:  %v\n", r.AddedColumns)
	}
	if len(r.Violations) > 0 {
		fmt.Fprintf(w, "Violations:     %d\n", len(r.Violations))
	}
}

func printCounts(w io.Writer, label string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintf(w, "%s:", label)
	for _, name := range names {
		fmt.Fprintf(w, " %s=%d", name, counts[name])
	}
	fmt.Fprintln(w)
}

// printTable writes every row of t as aligned text.
func printTable(w io.Writer, t *table.Table) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, name := range t.Names() {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, name)
	}
	fmt.Fprintln(tw)
	for row := 0; row < t.NumRows(); row++ {
		for i, c := range t.Columns() {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, c.String(row))
		}
		fmt.Fprintln(tw)
	}
	tw.Flush()
}

func optFloat(f *float64) string {
	if f == nil {
		return "-"
	}
	return table.FormatFloat(*f)
}

func optInt(n *int) string {
	if n == nil {
		return "-"
	}
	return strconv.Itoa(*n)
}
