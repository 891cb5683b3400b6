package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/gdpdash/internal/export"
	"github.com/JonMunkholm/gdpdash/internal/query"
)

var errNoDatabase = errors.New("no database configured: set EXPORT_DATABASE_URL")

func newExportCmd(a *app) *cobra.Command {
	var (
		src   sourceFlags
		qry   queryFlags
		table string
		mode  string
	)

	cmd := &cobra.Command{
		Use:   "export [source]",
		Short: "Load and clean a dataset, then copy it into PostgreSQL",
		Long: `Load and clean a dataset, apply any query, and COPY the result into a
PostgreSQL table. The target comes from --table, the pipeline's export
section, or EXPORT_TABLE, in that order. The table is created when missing;
replace mode drops it first.`,
		Example: `  gdpdash export data/gdp.csv --table analytics.gdp --mode replace
  gdpdash export --pipeline pipelines/custom.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if !cfg.Export.Enabled() {
				return errNoDatabase
			}

			p, err := src.resolve(cfg, args)
			if err != nil {
				return err
			}

			target, modeName := cfg.Export.Table, cfg.Export.Mode
			if p.Export != nil && p.Export.Table != "" {
				target, modeName = p.Export.Table, string(p.Export.Mode)
			}
			if cmd.Flags().Changed("table") {
				target = table
			}
			if cmd.Flags().Changed("mode") {
				modeName = mode
			}
			m, err := export.ParseMode(modeName)
			if err != nil {
				return err
			}
			if _, err := export.ParseIdentifier(target); err != nil {
				return err
			}

			res, err := a.newEngine(engineOptions(p)...).Run(cmd.Context(), p.Request, p.Contract)
			if err != nil {
				return err
			}
			out := res.Table
			if q := qry.apply(cmd, p.Query); q != nil {
				if out, err = query.Run(res.Table, *q); err != nil {
					return err
				}
			}

			ctx := cmd.Context()
			sink, err := export.OpenSink(ctx, cfg.Export.DatabaseURL, target, export.PoolOptions{
				MaxConns: cfg.Export.MaxConns,
				MinConns: cfg.Export.MinConns,
			}, slog.Default())
			if err != nil {
				return err
			}
			defer sink.Close()

			n, err := sink.Write(ctx, out, m)
			if err != nil {
				return fmt.Errorf("export to %s: %w", sink.Target(), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Copied %d rows into %s (%s)\n", n, sink.Target(), m)
			return nil
		},
	}

	src.register(cmd)
	qry.register(cmd)
	cmd.Flags().StringVar(&table, "table", "", "Target table, optionally schema-qualified")
	cmd.Flags().StringVar(&mode, "mode", "", "append or replace")

	return cmd
}
