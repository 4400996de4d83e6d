package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sells-group/forecast-cli/internal/analytics"
	"github.com/sells-group/forecast-cli/internal/quota"
	"github.com/sells-group/forecast-cli/internal/report"
)

var (
	trendsMonthlyQuota float64
	trendsQuotaFile    string
)

var trendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "Month-over-month performance and quota coverage",
	RunE: func(cmd *cobra.Command, _ []string) error {
		opps, err := loadOpportunities(cmd.Context())
		if err != nil {
			return err
		}

		quarterly, err := quarterlyQuota(cmd)
		if err != nil {
			return err
		}

		report.New(os.Stdout).Trends(analytics.Trends(opps, quarterly))
		return nil
	},
}

// quarterlyQuota resolves the quota baseline: flag override, then plan file,
// then the configured monthly target.
func quarterlyQuota(cmd *cobra.Command) (float64, error) {
	if cmd.Flags().Changed("monthly-quota") {
		return trendsMonthlyQuota * 3, nil
	}

	planFile := trendsQuotaFile
	if planFile == "" {
		planFile = cfg.Quota.PlanFile
	}
	if planFile != "" {
		plan, err := quota.LoadPlan(planFile)
		if err != nil {
			return 0, err
		}
		return plan.Quarterly(), nil
	}

	return cfg.Quota.Quarterly(), nil
}

func init() {
	addDataFlags(trendsCmd)
	trendsCmd.Flags().Float64Var(&trendsMonthlyQuota, "monthly-quota", 0, "monthly revenue quota")
	trendsCmd.Flags().StringVar(&trendsQuotaFile, "quota-file", "", "YAML quota plan file")
	rootCmd.AddCommand(trendsCmd)
}
