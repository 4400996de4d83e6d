package analytics

import (
	"sort"

	"github.com/sells-group/forecast-cli/internal/model"
)

// Month-over-month trend policy: revenue uses a relative 10% threshold, win
// rate an absolute 5-point threshold, both over the last three months.
const (
	revenueTrendThreshold = 0.10
	winRateTrendThreshold = 0.05
	trendWindow           = 3
)

// MonthlyPerformance summarizes deals closed in one calendar month.
type MonthlyPerformance struct {
	Month       string  `json:"month"` // YYYY-MM
	Revenue     float64 `json:"revenue"`
	WonCount    int     `json:"won_count"`
	LostCount   int     `json:"lost_count"`
	ClosedCount int     `json:"closed_count"`
	WinRate     float64 `json:"win_rate"`
}

// TrendReport holds monthly performance, trend classification, the next
// quarter projection, and quota coverage.
type TrendReport struct {
	Months          []MonthlyPerformance `json:"months"` // chronological
	PipelineByMonth map[string]float64   `json:"pipeline_by_month"`

	RevenueTrend TrendDirection `json:"revenue_trend"`
	WinRateTrend TrendDirection `json:"win_rate_trend"`

	AvgMonthlyRevenue     float64 `json:"avg_monthly_revenue"`
	AvgWinRate            float64 `json:"avg_win_rate"`
	NextQuarterProjection float64 `json:"next_quarter_projection"`

	OpenPipeline     float64 `json:"open_pipeline"`
	QuarterlyQuota   float64 `json:"quarterly_quota"`
	PipelineCoverage float64 `json:"pipeline_coverage"`
}

// Trends groups closed deals by the calendar month of close_date and
// classifies revenue and win-rate movement over the last three months.
// Revenue counts Won amounts only. Open-deal amounts accumulate by creation
// month as a coarse pipeline signal, separate from revenue.
//
// The projection needs at least three months of history: mean of the last
// three months' revenue, times three. Pipeline coverage divides the current
// open pipeline by the quarterly quota.
func Trends(opps []model.Opportunity, quarterlyQuota float64) TrendReport {
	byMonth := make(map[string]*MonthlyPerformance)
	pipeline := make(map[string]float64)
	openPipeline := 0.0

	for _, o := range opps {
		if o.Status.Closed() {
			key := o.CloseDate.Format("2006-01")
			m, ok := byMonth[key]
			if !ok {
				m = &MonthlyPerformance{Month: key}
				byMonth[key] = m
			}
			m.ClosedCount++
			if o.Status == model.StatusWon {
				m.Revenue += o.Amount
				m.WonCount++
			} else {
				m.LostCount++
			}
		}
		if o.Status == model.StatusOpen {
			pipeline[o.CreatedDate.Format("2006-01")] += o.Amount
			openPipeline += o.Amount
		}
	}

	report := TrendReport{
		PipelineByMonth:  pipeline,
		RevenueTrend:     TrendStable,
		WinRateTrend:     TrendStable,
		OpenPipeline:     openPipeline,
		QuarterlyQuota:   quarterlyQuota,
		PipelineCoverage: ratio(openPipeline, quarterlyQuota),
	}
	for _, m := range byMonth {
		m.WinRate = ratio(float64(m.WonCount), float64(m.ClosedCount))
		report.Months = append(report.Months, *m)
	}
	sort.Slice(report.Months, func(i, j int) bool {
		return report.Months[i].Month < report.Months[j].Month
	})

	recent := report.Months
	if len(recent) > trendWindow {
		recent = recent[len(recent)-trendWindow:]
	}

	var rates []float64
	for _, m := range recent {
		if m.ClosedCount > 0 && m.WinRate > 0 {
			rates = append(rates, m.WinRate)
		}
	}

	if len(recent) >= 2 {
		first, last := recent[0].Revenue, recent[len(recent)-1].Revenue
		if first > 0 {
			switch change := (last - first) / first; {
			case change > revenueTrendThreshold:
				report.RevenueTrend = TrendImproving
			case change < -revenueTrendThreshold:
				report.RevenueTrend = TrendDeclining
			}
		}

		if len(rates) >= 2 {
			switch change := rates[len(rates)-1] - rates[0]; {
			case change > winRateTrendThreshold:
				report.WinRateTrend = TrendImproving
			case change < -winRateTrendThreshold:
				report.WinRateTrend = TrendDeclining
			}
		}
	}

	// Averages need a full window of history.
	if len(recent) >= trendWindow {
		var revenues []float64
		for _, m := range recent {
			revenues = append(revenues, m.Revenue)
		}
		report.AvgMonthlyRevenue = mean(revenues)
		report.AvgWinRate = mean(rates)
		report.NextQuarterProjection = report.AvgMonthlyRevenue * 3
	}

	return report
}
