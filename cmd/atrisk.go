package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sells-group/forecast-cli/internal/analytics"
	"github.com/sells-group/forecast-cli/internal/report"
)

var atRiskCmd = &cobra.Command{
	Use:   "at-risk",
	Short: "Open deals past the average sales cycle",
	RunE: func(cmd *cobra.Command, _ []string) error {
		opps, err := loadOpportunities(cmd.Context())
		if err != nil {
			return err
		}

		today, err := asOfDate()
		if err != nil {
			return err
		}

		cycle := analytics.Cycle(opps)
		deals := analytics.AtRisk(opps, cycle.AvgDays, today)
		report.New(os.Stdout).AtRisk(deals, cycle.AvgDays)
		return nil
	},
}

func init() {
	addDataFlags(atRiskCmd)
	rootCmd.AddCommand(atRiskCmd)
}
