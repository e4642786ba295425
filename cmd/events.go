package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/okian/heats/internal/domain/competitor"
	"github.com/okian/heats/internal/domain/event"
	"github.com/spf13/cobra"
)

func newEventsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "events",
		Short: "List the event catalog with scrambler cutoffs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			thresholds := competitor.DefaultThresholds()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "EVENT\tFORMAT\tBASE\tSCRAMBLER CUTOFF")
			for _, e := range event.All() {
				cutoff := "-"
				if t := thresholds[e]; t > 0 {
					cutoff = fmt.Sprintf("%d", t)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e, e.Format(), e.Base(), cutoff)
			}
			return w.Flush()
		},
	}
}
