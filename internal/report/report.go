// Package report renders analysis results for the terminal.
package report

import (
	"fmt"
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/forecast-cli/internal/analytics"
	"github.com/sells-group/forecast-cli/internal/model"
)

// Writer renders reports with locale-aware number formatting, so large
// pipeline figures read as $1,234,567 rather than a digit wall.
type Writer struct {
	w io.Writer
	p *message.Printer
}

// New returns a report writer targeting w.
func New(w io.Writer) *Writer {
	return &Writer{w: w, p: message.NewPrinter(language.English)}
}

func (r *Writer) section(title string) {
	r.p.Fprintf(r.w, "=== %s ===\n", title)
}

func (r *Writer) money(n float64) string {
	return r.p.Sprintf("$%.2f", n)
}

func pct(rate float64) string {
	return fmt.Sprintf("%.1f%%", rate*100)
}

// Forecast prints the pipeline and weighted forecast summary.
func (r *Writer) Forecast(report analytics.ForecastReport) {
	r.section("Sales Forecast")
	r.p.Fprintf(r.w, "Open opportunities: %d\n", report.OpenCount)
	r.p.Fprintf(r.w, "Total pipeline:     %s\n", r.money(report.TotalPipeline))
	r.p.Fprintf(r.w, "Weighted forecast:  %s\n", r.money(report.WeightedForecast))
	r.p.Fprintln(r.w)

	r.p.Fprintf(r.w, "%-14s %6s %18s %18s %8s\n", "Stage", "Count", "Amount", "Weighted", "Prob")
	for _, st := range model.StageOrder {
		b, ok := report.Stages[st]
		if !ok {
			continue
		}
		r.p.Fprintf(r.w, "%-14s %6d %18s %18s %7.0f%%\n",
			st, b.Count, r.money(b.Amount), r.money(b.Weighted),
			report.Probabilities.Prob(st)*100)
	}
	r.p.Fprintln(r.w)
}

// Velocity prints velocity metrics and revenue projections.
func (r *Writer) Velocity(m analytics.VelocityMetrics) {
	r.section("Sales Velocity")
	r.p.Fprintf(r.w, "Open opportunities: %d\n", m.OpenCount)
	r.p.Fprintf(r.w, "Win rate:           %s\n", pct(m.WinRate))
	r.p.Fprintf(r.w, "Avg deal size:      %s\n", r.money(m.AvgDealSize))
	r.p.Fprintf(r.w, "Avg cycle:          %.1f days\n", m.AvgCycleDays)
	r.p.Fprintf(r.w, "Velocity:           %s/day\n", r.money(m.PerDay))
	for _, days := range []int{30, 60, 90} {
		r.p.Fprintf(r.w, "  next %d days:     %s\n", days, r.money(m.Projections[days]))
	}
	r.p.Fprintln(r.w)
}

// Scenarios prints the best/expected/worst projection table.
func (r *Writer) Scenarios(s analytics.ScenarioSet) {
	r.section("Forecast Scenarios")
	r.p.Fprintf(r.w, "%-10s %18s %12s\n", "Scenario", "Forecast", "Cycle days")
	r.scenarioRow("Best", s.Best)
	r.scenarioRow("Expected", s.Expected)
	r.scenarioRow("Worst", s.Worst)
	r.p.Fprintln(r.w)
}

func (r *Writer) scenarioRow(name string, s analytics.Scenario) {
	r.p.Fprintf(r.w, "%-10s %18s %12.1f\n", name, r.money(s.Forecast), s.CycleDays)
}

// Reps prints per-rep performance with coaching tiers and team benchmarks.
func (r *Writer) Reps(report analytics.RepPerformanceReport) {
	r.section("Rep Performance")
	r.p.Fprintf(r.w, "Team win rate:      %s\n", pct(report.Team.WinRate))
	r.p.Fprintf(r.w, "Team avg deal:      %s\n", r.money(report.Team.AvgDealSize))
	r.p.Fprintf(r.w, "Team pipeline:      %s\n", r.money(report.Team.TotalPipeline))
	r.p.Fprintln(r.w)

	r.p.Fprintf(r.w, "%-16s %6s %6s %18s %9s %-18s\n",
		"Owner", "Open", "Closed", "Weighted", "Win rate", "Tier")
	for _, rep := range report.Reps {
		r.p.Fprintf(r.w, "%-16s %6d %6d %18s %9s %-18s\n",
			rep.Owner, rep.OpenCount, rep.ClosedCount,
			r.money(rep.WeightedForecast), pct(rep.WinRate), rep.Tier)
	}
	r.p.Fprintln(r.w)
}

// Stages prints funnel statistics, transitions, and standout stages.
func (r *Writer) Stages(report analytics.StageProgressionReport) {
	r.section("Stage Progression")
	r.p.Fprintf(r.w, "%-14s %8s %6s %5s %5s %9s %9s %6s\n",
		"Stage", "Entered", "Open", "Won", "Lost", "Win rate", "Avg days", "Stuck")
	for _, s := range report.Stages {
		r.p.Fprintf(r.w, "%-14s %8d %6d %5d %5d %9s %9.1f %6d\n",
			s.Stage, s.TotalEntered, s.CurrentlyIn, s.WonFromHere, s.LostFromHere,
			pct(s.WinRate), s.AvgDaysInStage, s.StuckCount)
	}
	r.p.Fprintln(r.w)

	if len(report.Transitions) > 0 {
		r.p.Fprintf(r.w, "Transitions:\n")
		for _, t := range report.Transitions {
			r.p.Fprintf(r.w, "  %-14s -> %-14s %s advance, %d dropped\n",
				t.From, t.To, pct(t.ProgressionRate), t.Dropped)
		}
	}
	if report.Bottleneck != nil {
		r.p.Fprintf(r.w, "Bottleneck:     %s -> %s (%s drop-off)\n",
			report.Bottleneck.From, report.Bottleneck.To, pct(report.Bottleneck.DropOffRate))
	}
	if report.SlowestStage != nil {
		r.p.Fprintf(r.w, "Slowest stage:  %s\n", *report.SlowestStage)
	}
	if report.StickiestStage != nil {
		r.p.Fprintf(r.w, "Stickiest stage: %s\n", *report.StickiestStage)
	}
	r.p.Fprintln(r.w)
}

// Cohorts prints creation-month cohorts and the recent win-rate trend.
func (r *Writer) Cohorts(report analytics.CohortReport) {
	r.section("Creation Cohorts")
	r.p.Fprintf(r.w, "%-9s %6s %5s %5s %5s %9s %9s %10s\n",
		"Month", "Total", "Won", "Lost", "Open", "Conv", "Win rate", "Avg close")
	for _, c := range report.Cohorts {
		r.p.Fprintf(r.w, "%-9s %6d %5d %5d %5d %9s %9s %8.1fd\n",
			c.Month, c.Total, c.Won, c.Lost, c.Open,
			pct(c.ConversionRate), pct(c.WinRate), c.AvgDaysToClose)
	}
	r.p.Fprintf(r.w, "Trend: %s\n\n", report.Trend)
}

// Trends prints monthly performance, trend direction, and quota coverage.
func (r *Writer) Trends(report analytics.TrendReport) {
	r.section("Monthly Trends")
	r.p.Fprintf(r.w, "%-9s %18s %5s %5s %9s\n", "Month", "Revenue", "Won", "Lost", "Win rate")
	for _, m := range report.Months {
		r.p.Fprintf(r.w, "%-9s %18s %5d %5d %9s\n",
			m.Month, r.money(m.Revenue), m.WonCount, m.LostCount, pct(m.WinRate))
	}
	r.p.Fprintln(r.w)

	r.p.Fprintf(r.w, "Revenue trend:      %s\n", report.RevenueTrend)
	r.p.Fprintf(r.w, "Win rate trend:     %s\n", report.WinRateTrend)
	if report.NextQuarterProjection > 0 {
		r.p.Fprintf(r.w, "Next quarter proj:  %s\n", r.money(report.NextQuarterProjection))
	}
	r.p.Fprintf(r.w, "Open pipeline:      %s\n", r.money(report.OpenPipeline))
	if report.QuarterlyQuota > 0 {
		r.p.Fprintf(r.w, "Quarterly quota:    %s\n", r.money(report.QuarterlyQuota))
		r.p.Fprintf(r.w, "Coverage:           %.2fx\n", report.PipelineCoverage)
	}
	r.p.Fprintln(r.w)
}

// AtRisk prints deals that have outlived the average sales cycle.
func (r *Writer) AtRisk(deals []analytics.AtRiskDeal, avgCycleDays float64) {
	r.section("At-Risk Deals")
	if len(deals) == 0 {
		r.p.Fprintf(r.w, "No deals past the average cycle (%.1f days).\n\n", avgCycleDays)
		return
	}
	r.p.Fprintf(r.w, "%-12s %-24s %-14s %18s %8s %9s\n",
		"ID", "Name", "Stage", "Amount", "In pipe", "Days over")
	for _, d := range deals {
		r.p.Fprintf(r.w, "%-12s %-24s %-14s %18s %7dd %9.0f\n",
			d.ID, d.Name, d.Stage, r.money(d.Amount), d.DaysInPipeline, d.DaysOver)
	}
	r.p.Fprintln(r.w)
}
