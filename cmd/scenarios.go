package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sells-group/forecast-cli/internal/analytics"
	"github.com/sells-group/forecast-cli/internal/report"
)

var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "Best, expected, and worst case forecasts",
	RunE: func(cmd *cobra.Command, _ []string) error {
		opps, err := loadOpportunities(cmd.Context())
		if err != nil {
			return err
		}

		hist := analytics.Historical(opps)
		cycle := analytics.Cycle(opps)
		set := analytics.Scenarios(opps, hist, cfg.Probabilities.StageProbabilities(), cycle.WonSample)

		report.New(os.Stdout).Scenarios(set)
		return nil
	},
}

func init() {
	addDataFlags(scenariosCmd)
	rootCmd.AddCommand(scenariosCmd)
}
