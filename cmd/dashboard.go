package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/forecast-cli/internal/analytics"
	"github.com/sells-group/forecast-cli/internal/report"
)

var dashboardUseHistorical bool

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Run every analysis over one snapshot",
	RunE: func(cmd *cobra.Command, _ []string) error {
		opps, err := loadOpportunities(cmd.Context())
		if err != nil {
			return err
		}

		today, err := asOfDate()
		if err != nil {
			return err
		}

		probs := stageProbabilities(opps, dashboardUseHistorical)
		hist := analytics.Historical(opps)
		cycle := analytics.Cycle(opps)

		quarterly, err := quarterlyQuota(cmd)
		if err != nil {
			return err
		}

		// The analyzers are pure over the shared snapshot, so they can run
		// concurrently and print in a fixed order afterwards.
		var (
			forecast  analytics.ForecastReport
			velocity  analytics.VelocityMetrics
			scenarios analytics.ScenarioSet
			reps      analytics.RepPerformanceReport
			stages    analytics.StageProgressionReport
			cohorts   analytics.CohortReport
			trends    analytics.TrendReport
			atRisk    []analytics.AtRiskDeal
		)

		var g errgroup.Group
		g.Go(func() error { forecast = analytics.Forecast(opps, probs); return nil })
		g.Go(func() error { velocity = analytics.Velocity(opps, cycle.AvgDays); return nil })
		g.Go(func() error {
			scenarios = analytics.Scenarios(opps, hist, cfg.Probabilities.StageProbabilities(), cycle.WonSample)
			return nil
		})
		g.Go(func() error { reps = analytics.RepPerformance(opps, probs); return nil })
		g.Go(func() error { stages = analytics.StageProgression(opps, today); return nil })
		g.Go(func() error { cohorts = analytics.Cohorts(opps); return nil })
		g.Go(func() error { trends = analytics.Trends(opps, quarterly); return nil })
		g.Go(func() error { atRisk = analytics.AtRisk(opps, cycle.AvgDays, today); return nil })
		if err := g.Wait(); err != nil {
			return err
		}

		w := report.New(os.Stdout)
		w.Forecast(forecast)
		w.Velocity(velocity)
		w.Scenarios(scenarios)
		w.Reps(reps)
		w.Stages(stages)
		w.Cohorts(cohorts)
		w.Trends(trends)
		w.AtRisk(atRisk, cycle.AvgDays)

		return nil
	},
}

func init() {
	addDataFlags(dashboardCmd)
	dashboardCmd.Flags().BoolVar(&dashboardUseHistorical, "use-historical", false, "weight stages by observed win rates")
	dashboardCmd.Flags().Float64Var(&trendsMonthlyQuota, "monthly-quota", 0, "monthly revenue quota")
	dashboardCmd.Flags().StringVar(&trendsQuotaFile, "quota-file", "", "YAML quota plan file")
	rootCmd.AddCommand(dashboardCmd)
}
