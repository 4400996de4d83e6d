package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/forecast-cli/internal/analytics"
	"github.com/sells-group/forecast-cli/internal/model"
	"github.com/sells-group/forecast-cli/internal/report"
)

var (
	forecastUseHistorical bool

	// Per-stage probability overrides as percentages, matching config.
	forecastDiscovery   float64
	forecastDemo        float64
	forecastProposal    float64
	forecastNegotiation float64
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Pipeline totals and probability-weighted forecast",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		opps, err := loadOpportunities(ctx)
		if err != nil {
			return err
		}

		probs := stageProbabilities(opps, forecastUseHistorical)
		applyOverride(cmd, "discovery", probs, model.StageDiscovery, forecastDiscovery)
		applyOverride(cmd, "demo", probs, model.StageDemo, forecastDemo)
		applyOverride(cmd, "proposal", probs, model.StageProposal, forecastProposal)
		applyOverride(cmd, "negotiation", probs, model.StageNegotiation, forecastNegotiation)

		result := analytics.Forecast(opps, probs)
		report.New(os.Stdout).Forecast(result)

		zap.L().Info("forecast computed",
			zap.Int("opportunities", len(opps)),
			zap.Int("open", result.OpenCount),
			zap.Float64("weighted", result.WeightedForecast),
		)
		return nil
	},
}

// applyOverride sets one stage's probability from a flag, only when the flag
// was passed.
func applyOverride(cmd *cobra.Command, flag string, probs model.StageProbabilities, st model.Stage, pct float64) {
	if cmd.Flags().Changed(flag) {
		probs[st] = pct / 100
	}
}

func init() {
	addDataFlags(forecastCmd)
	forecastCmd.Flags().BoolVar(&forecastUseHistorical, "use-historical", false, "weight stages by observed win rates")
	forecastCmd.Flags().Float64Var(&forecastDiscovery, "discovery", 0, "Discovery win probability (percent)")
	forecastCmd.Flags().Float64Var(&forecastDemo, "demo", 0, "Demo win probability (percent)")
	forecastCmd.Flags().Float64Var(&forecastProposal, "proposal", 0, "Proposal win probability (percent)")
	forecastCmd.Flags().Float64Var(&forecastNegotiation, "negotiation", 0, "Negotiation win probability (percent)")
	rootCmd.AddCommand(forecastCmd)
}
