package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kylesnowschwartz/summary-widget/stats"
)

func newStatisticsCmd() *cobra.Command {
	var namesOnly bool

	cmd := &cobra.Command{
		Use:   "statistics",
		Short: "List available statistics",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			if namesOnly {
				names := make([]string, len(stats.ValidStatistics))
				for i, s := range stats.ValidStatistics {
					names[i] = string(s)
				}
				fmt.Fprintln(out, strings.Join(names, " "))
				return
			}
			fmt.Fprintln(out, "Available statistics:")
			for _, s := range stats.ValidStatistics {
				fmt.Fprintf(out, "  %-6s %s\n", s, stats.StatisticDescriptions[s])
			}
		},
	}

	cmd.Flags().BoolVar(&namesOnly, "names", false, "Print names only, space separated")
	return cmd
}
