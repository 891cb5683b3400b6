package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/gdpdash/internal/config"
	"github.com/JonMunkholm/gdpdash/internal/engine"
	"github.com/JonMunkholm/gdpdash/internal/loader"
	"github.com/JonMunkholm/gdpdash/internal/loader/formats"
	"github.com/JonMunkholm/gdpdash/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
)

// app is the process-wide state built before any subcommand runs.
type app struct {
	cfg      *config.Config
	registry *loader.Registry
	manager  *loader.Manager
}

// newEngine returns an engine over the registered loaders.
func (a *app) newEngine(opts ...engine.Option) *engine.Engine {
	opts = append([]engine.Option{engine.WithLogger(slog.Default())}, opts...)
	return engine.New(a.manager, nil, opts...)
}

// Execute runs the CLI and returns the process exit code.
func Execute(ctx context.Context, args []string) int {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		printError(rootCmd, err)
		return 1
	}
	return 0
}

// printError writes err to stderr, with the coded message and location for
// run failures.
func printError(cmd *cobra.Command, err error) {
	w := cmd.ErrOrStderr()
	var f *engine.Failure
	if !errors.As(err, &f) {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(w, "Error: %s\n", engine.FormatUserError(f))
	fmt.Fprintf(w, "  stage:  %s\n  kind:   %s\n  detail: %s\n", f.Stage, f.Kind, f.Detail)
	if f.Column != "" {
		fmt.Fprintf(w, "  column: %s\n", f.Column)
	}
	if f.Row >= 0 {
		fmt.Fprintf(w, "  row:    %d\n", f.Row)
	}
}

func newRootCmd() *cobra.Command {
	var (
		envFile  string
		logLevel string
		a        = &app{}
	)

	rootCmd := &cobra.Command{
		Use:           "gdpdash",
		Short:         "Load, clean and explore GDP datasets",
		Long:          "gdpdash loads GDP datasets from CSV, Excel or JSON, cleans them against a data contract, and serves or exports the result.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// .env overrides the environment when present.
			if err := godotenv.Overload(envFile); err != nil {
				if cmd.Flags().Changed("env-file") || !errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("load %s: %w", envFile, err)
				}
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				cfg.Logging.Level = logLevel
			}
			logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
			slog.Debug("configuration loaded", "config", cfg.String())

			reg, err := formats.NewRegistry()
			if err != nil {
				return err
			}

			a.cfg = cfg
			a.registry = reg
			a.manager = loader.NewManager(reg, slog.Default())
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file to overlay")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(newRunCmd(a))
	rootCmd.AddCommand(newServeCmd(a))
	rootCmd.AddCommand(newExportCmd(a))
	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newFormatsCmd(a))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		// Skip configuration loading.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "gdpdash %s (%s)\n", version, commit)
			return err
		},
	}
}
