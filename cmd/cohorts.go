package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sells-group/forecast-cli/internal/analytics"
	"github.com/sells-group/forecast-cli/internal/report"
)

var cohortsCmd = &cobra.Command{
	Use:   "cohorts",
	Short: "Win rates by creation month",
	RunE: func(cmd *cobra.Command, _ []string) error {
		opps, err := loadOpportunities(cmd.Context())
		if err != nil {
			return err
		}

		report.New(os.Stdout).Cohorts(analytics.Cohorts(opps))
		return nil
	},
}

func init() {
	addDataFlags(cohortsCmd)
	rootCmd.AddCommand(cohortsCmd)
}
