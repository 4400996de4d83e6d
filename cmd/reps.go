package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sells-group/forecast-cli/internal/analytics"
	"github.com/sells-group/forecast-cli/internal/report"
)

var repsUseHistorical bool

var repsCmd = &cobra.Command{
	Use:   "reps",
	Short: "Per-rep performance with coaching tiers",
	RunE: func(cmd *cobra.Command, _ []string) error {
		opps, err := loadOpportunities(cmd.Context())
		if err != nil {
			return err
		}

		probs := stageProbabilities(opps, repsUseHistorical)
		report.New(os.Stdout).Reps(analytics.RepPerformance(opps, probs))
		return nil
	},
}

func init() {
	addDataFlags(repsCmd)
	repsCmd.Flags().BoolVar(&repsUseHistorical, "use-historical", false, "weight pipelines by observed win rates")
	rootCmd.AddCommand(repsCmd)
}
