package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sells-group/forecast-cli/internal/analytics"
	"github.com/sells-group/forecast-cli/internal/report"
)

var velocityCmd = &cobra.Command{
	Use:   "velocity",
	Short: "Sales velocity and cycle-time statistics",
	RunE: func(cmd *cobra.Command, _ []string) error {
		opps, err := loadOpportunities(cmd.Context())
		if err != nil {
			return err
		}

		cycle := analytics.Cycle(opps)
		report.New(os.Stdout).Velocity(analytics.Velocity(opps, cycle.AvgDays))
		return nil
	},
}

func init() {
	addDataFlags(velocityCmd)
	rootCmd.AddCommand(velocityCmd)
}
