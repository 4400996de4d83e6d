package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sells-group/forecast-cli/internal/analytics"
	"github.com/sells-group/forecast-cli/internal/report"
)

var stagesCmd = &cobra.Command{
	Use:   "stages",
	Short: "Funnel progression, bottlenecks, and stuck deals",
	RunE: func(cmd *cobra.Command, _ []string) error {
		opps, err := loadOpportunities(cmd.Context())
		if err != nil {
			return err
		}

		today, err := asOfDate()
		if err != nil {
			return err
		}

		report.New(os.Stdout).Stages(analytics.StageProgression(opps, today))
		return nil
	},
}

func init() {
	addDataFlags(stagesCmd)
	rootCmd.AddCommand(stagesCmd)
}
