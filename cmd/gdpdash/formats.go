package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/gdpdash/internal/loader"
)

func newFormatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List registered loader formats",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "FORMAT\tEXTENSIONS")
			for _, d := range a.registry.Descriptors() {
				fmt.Fprintf(tw, "%s\t%s\n", d.Format, strings.Join(loader.Extensions(d.Format), ", "))
			}
			return tw.Flush()
		},
	}
}
