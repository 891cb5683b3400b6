package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/gdpdash/internal/declarative"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <pipeline.yaml>...",
		Short: "Check pipeline files without loading data",
		Args:  cobra.MinimumNArgs(1),
		// Skip configuration loading.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			failed := 0
			for _, path := range args {
				p, err := declarative.LoadFile(path)
				if err != nil {
					failed++
					fmt.Fprintf(w, "FAIL %s\n  %s\n", path, strings.ReplaceAll(err.Error(), "\n", "\n  "))
					continue
				}
				fmt.Fprintf(w, "ok   %s (%s: %d columns, %d predicates)\n",
					path, p.Contract.Name, len(p.Contract.Columns), len(p.Contract.Predicates))
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d pipeline files invalid", failed, len(args))
			}
			return nil
		},
	}
}
