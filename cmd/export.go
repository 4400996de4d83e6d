package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/forecast-cli/internal/analytics"
	"github.com/sells-group/forecast-cli/internal/export"
)

var (
	exportOut           string
	exportUseHistorical bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the weighted forecast to CSV or XLSX",
	RunE: func(cmd *cobra.Command, _ []string) error {
		opps, err := loadOpportunities(cmd.Context())
		if err != nil {
			return err
		}

		probs := stageProbabilities(opps, exportUseHistorical)
		result := analytics.Forecast(opps, probs)

		if err := export.WriteForecast(opps, result, exportOut); err != nil {
			return err
		}

		zap.L().Info("forecast exported",
			zap.String("path", exportOut),
			zap.Int("open", result.OpenCount),
			zap.Float64("weighted", result.WeightedForecast),
		)
		return nil
	},
}

func init() {
	addDataFlags(exportCmd)
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output path, .csv or .xlsx (required)")
	exportCmd.Flags().BoolVar(&exportUseHistorical, "use-historical", false, "weight stages by observed win rates")
	_ = exportCmd.MarkFlagRequired("out")
	rootCmd.AddCommand(exportCmd)
}
