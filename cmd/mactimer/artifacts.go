package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cdtdelta/mactimer/internal/catalog"
)

func newArtifactsCmd(a *app) *cobra.Command {
	var fields bool

	cmd := &cobra.Command{
		Use:   "artifacts",
		Short: "List the export names the ief type recognizes",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			c := catalog.Default()

			tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTAG\tNAME")
			for _, art := range c.Artifacts() {
				fmt.Fprintf(tw, "%d\t%s-%s\t%s\n", art.ID, art.Short, art.Category, art.Name)
				if !fields {
					continue
				}
				for _, f := range c.Fields(art.ID) {
					fmt.Fprintf(tw, "\t%s/%s\t%s\n", f.Code.Slot, f.Code.Role, f.Label)
				}
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&fields, "fields", false, "also list the header label behind each field")
	return cmd
}
