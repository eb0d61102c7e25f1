package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/MJE43/antwalk/internal/region"
)

func newRegionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "regions",
		Short: "List the built-in regions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, name := range region.Names() {
				r, err := region.Get(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(tw, "%s\t%s\n", r.Name(), r.Formula())
			}
			return tw.Flush()
		},
	}
}
