package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/forecast-cli/internal/model"
)

// monthClosed builds closed deals closing in the given month: wonN winners
// of wonAmount each plus lostN losses.
func monthClosed(month time.Month, wonN int, wonAmount float64, lostN int) []model.Opportunity {
	var opps []model.Opportunity
	created := date(2024, month, 1).AddDate(0, -1, 0)
	for i := 0; i < wonN; i++ {
		opps = append(opps, won("", wonAmount, model.StageProposal, created, date(2024, month, 15), "a"))
	}
	for i := 0; i < lostN; i++ {
		opps = append(opps, lost("", 1000, model.StageDemo, created, date(2024, month, 15), "a"))
	}
	return opps
}

func monthByKey(t *testing.T, r TrendReport, key string) MonthlyPerformance {
	t.Helper()
	for _, m := range r.Months {
		if m.Month == key {
			return m
		}
	}
	t.Fatalf("month %q not in report", key)
	return MonthlyPerformance{}
}

func TestTrends_MonthlyGrouping(t *testing.T) {
	var opps []model.Opportunity
	opps = append(opps, monthClosed(1, 2, 50000, 1)...)
	opps = append(opps, monthClosed(2, 1, 80000, 3)...)
	opps = append(opps, open("o1", 30000, model.StageDemo, date(2024, 2, 10), "a"))

	r := Trends(opps, 6000000)

	jan := monthByKey(t, r, "2024-01")
	assert.Equal(t, 100000.0, jan.Revenue)
	assert.Equal(t, 2, jan.WonCount)
	assert.Equal(t, 1, jan.LostCount)
	assert.InDelta(t, 2.0/3.0, jan.WinRate, 1e-9)

	feb := monthByKey(t, r, "2024-02")
	assert.Equal(t, 80000.0, feb.Revenue)
	assert.InDelta(t, 0.25, feb.WinRate, 1e-9)

	// Open deal feeds the pipeline signal, not revenue.
	assert.Equal(t, 30000.0, r.PipelineByMonth["2024-02"])
	assert.Equal(t, 30000.0, r.OpenPipeline)
}

func TestTrends_RevenueTrend(t *testing.T) {
	tests := []struct {
		name     string
		revenues [3]float64
		want     TrendDirection
	}{
		{"improving beyond 10%", [3]float64{100000, 105000, 120000}, TrendImproving},
		{"declining beyond 10%", [3]float64{100000, 95000, 80000}, TrendDeclining},
		{"stable within 10%", [3]float64{100000, 90000, 105000}, TrendStable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opps []model.Opportunity
			for i, rev := range tt.revenues {
				opps = append(opps, monthClosed(time.Month(i+1), 1, rev, 0)...)
			}
			r := Trends(opps, 6000000)
			assert.Equal(t, tt.want, r.RevenueTrend)
		})
	}
}

func TestTrends_RevenueTrendGuardsZeroFirstMonth(t *testing.T) {
	var opps []model.Opportunity
	opps = append(opps, monthClosed(1, 0, 0, 2)...) // no revenue
	opps = append(opps, monthClosed(2, 1, 50000, 0)...)
	opps = append(opps, monthClosed(3, 1, 90000, 0)...)

	r := Trends(opps, 6000000)
	assert.Equal(t, TrendStable, r.RevenueTrend)
}

func TestTrends_WinRateTrend(t *testing.T) {
	var opps []model.Opportunity
	opps = append(opps, monthClosed(1, 1, 1000, 3)...) // 25%
	opps = append(opps, monthClosed(2, 1, 1000, 1)...) // 50%
	opps = append(opps, monthClosed(3, 3, 1000, 1)...) // 75%

	r := Trends(opps, 6000000)
	assert.Equal(t, TrendImproving, r.WinRateTrend)
}

func TestTrends_WinRateTrendAbsoluteThreshold(t *testing.T) {
	var opps []model.Opportunity
	opps = append(opps, monthClosed(1, 1, 1000, 1)...)  // 50%
	opps = append(opps, monthClosed(2, 1, 1000, 1)...)  // 50%
	opps = append(opps, monthClosed(3, 13, 1000, 12)...) // 52%: within 5 points

	r := Trends(opps, 6000000)
	assert.Equal(t, TrendStable, r.WinRateTrend)
}

func TestTrends_WindowIsLastThreeMonths(t *testing.T) {
	var opps []model.Opportunity
	opps = append(opps, monthClosed(1, 1, 900000, 0)...) // outside the window
	opps = append(opps, monthClosed(2, 1, 100000, 0)...)
	opps = append(opps, monthClosed(3, 1, 100000, 0)...)
	opps = append(opps, monthClosed(4, 1, 100000, 0)...)

	r := Trends(opps, 6000000)
	assert.Equal(t, TrendStable, r.RevenueTrend)
	assert.InDelta(t, 100000.0, r.AvgMonthlyRevenue, 1e-9)
}

func TestTrends_Projection(t *testing.T) {
	var opps []model.Opportunity
	opps = append(opps, monthClosed(1, 1, 90000, 0)...)
	opps = append(opps, monthClosed(2, 1, 100000, 0)...)
	opps = append(opps, monthClosed(3, 1, 110000, 0)...)

	r := Trends(opps, 6000000)
	assert.InDelta(t, 100000.0, r.AvgMonthlyRevenue, 1e-9)
	assert.InDelta(t, 300000.0, r.NextQuarterProjection, 1e-9)
}

func TestTrends_ProjectionNeedsThreeMonths(t *testing.T) {
	var opps []model.Opportunity
	opps = append(opps, monthClosed(1, 1, 90000, 0)...)
	opps = append(opps, monthClosed(2, 1, 100000, 0)...)

	r := Trends(opps, 6000000)
	assert.Zero(t, r.NextQuarterProjection)
	assert.Zero(t, r.AvgMonthlyRevenue)
	assert.Zero(t, r.AvgWinRate)
}

func TestTrends_AvgWinRateNeedsThreeMonths(t *testing.T) {
	var opps []model.Opportunity
	opps = append(opps, monthClosed(1, 1, 1000, 1)...) // 50%
	opps = append(opps, monthClosed(2, 3, 1000, 1)...) // 75%

	r := Trends(opps, 0)
	assert.Zero(t, r.AvgWinRate)

	opps = append(opps, monthClosed(3, 1, 1000, 0)...) // 100%
	r = Trends(opps, 0)
	assert.InDelta(t, 0.75, r.AvgWinRate, 1e-9)
}

func TestTrends_PipelineCoverage(t *testing.T) {
	opps := []model.Opportunity{
		open("1", 3000000, model.StageProposal, date(2024, 3, 1), "a"),
	}

	r := Trends(opps, 6000000)
	assert.InDelta(t, 0.5, r.PipelineCoverage, 1e-9)
	assert.Equal(t, 6000000.0, r.QuarterlyQuota)

	// No quota configured: coverage collapses to zero, not a division error.
	r = Trends(opps, 0)
	assert.Zero(t, r.PipelineCoverage)
}

func TestTrends_EmptyInput(t *testing.T) {
	r := Trends(nil, 6000000)
	assert.Empty(t, r.Months)
	assert.Equal(t, TrendStable, r.RevenueTrend)
	assert.Equal(t, TrendStable, r.WinRateTrend)
	assert.Zero(t, r.NextQuarterProjection)
	assert.Zero(t, r.OpenPipeline)
}

func TestTrends_MonthsSorted(t *testing.T) {
	var opps []model.Opportunity
	opps = append(opps, monthClosed(3, 1, 1000, 0)...)
	opps = append(opps, monthClosed(1, 1, 1000, 0)...)
	opps = append(opps, monthClosed(2, 1, 1000, 0)...)

	r := Trends(opps, 0)
	require.Len(t, r.Months, 3)
	assert.True(t, r.Months[0].Month < r.Months[1].Month)
	assert.True(t, r.Months[1].Month < r.Months[2].Month)
}
