package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/forecast-cli/internal/model"
)

func cohortByMonth(t *testing.T, r CohortReport, month string) Cohort {
	t.Helper()
	for _, c := range r.Cohorts {
		if c.Month == month {
			return c
		}
	}
	t.Fatalf("cohort %q not in report", month)
	return Cohort{}
}

func TestCohorts_Grouping(t *testing.T) {
	opps := []model.Opportunity{
		won("1", 1000, model.StageNegotiation, date(2024, 1, 10), date(2024, 2, 9), "a"),  // Jan, 30d
		lost("2", 1000, model.StageDemo, date(2024, 1, 20), date(2024, 3, 20), "a"),       // Jan, 60d
		open("3", 1000, model.StageDemo, date(2024, 1, 25), "a"),                          // Jan
		won("4", 1000, model.StageProposal, date(2024, 2, 1), date(2024, 2, 21), "a"),     // Feb, 20d
	}

	r := Cohorts(opps)
	require.Len(t, r.Cohorts, 2)

	jan := cohortByMonth(t, r, "2024-01")
	assert.Equal(t, 3, jan.Total)
	assert.Equal(t, 1, jan.Won)
	assert.Equal(t, 1, jan.Lost)
	assert.Equal(t, 1, jan.Open)
	assert.InDelta(t, 2.0/3.0, jan.ConversionRate, 1e-9)
	assert.InDelta(t, 0.5, jan.WinRate, 1e-9)
	assert.InDelta(t, 45.0, jan.AvgDaysToClose, 1e-9)

	feb := cohortByMonth(t, r, "2024-02")
	assert.Equal(t, 1, feb.Total)
	assert.InDelta(t, 1.0, feb.WinRate, 1e-9)
	assert.InDelta(t, 20.0, feb.AvgDaysToClose, 1e-9)
}

func TestCohorts_ChronologicalOrder(t *testing.T) {
	opps := []model.Opportunity{
		open("1", 1, model.StageDemo, date(2024, 3, 1), "a"),
		open("2", 1, model.StageDemo, date(2023, 11, 1), "a"),
		open("3", 1, model.StageDemo, date(2024, 1, 1), "a"),
	}

	r := Cohorts(opps)
	require.Len(t, r.Cohorts, 3)
	assert.Equal(t, "2023-11", r.Cohorts[0].Month)
	assert.Equal(t, "2024-01", r.Cohorts[1].Month)
	assert.Equal(t, "2024-03", r.Cohorts[2].Month)
}

func TestCohorts_TotalMatchesInputCount(t *testing.T) {
	opps := []model.Opportunity{
		open("1", 1, model.StageDemo, date(2024, 1, 5), "a"),
		won("2", 1, model.StageDemo, date(2024, 2, 5), date(2024, 3, 5), "a"),
		lost("3", 1, model.StageDemo, date(2024, 2, 5), date(2024, 3, 5), "a"),
		open("4", 1, model.Stage("Other"), date(2024, 4, 5), "a"),
	}

	r := Cohorts(opps)
	total := 0
	for _, c := range r.Cohorts {
		total += c.Total
	}
	assert.Equal(t, len(opps), total)
}

// cohortWithRate creates one closed deal per won/lost count in a month, so a
// cohort lands at an exact win rate.
func cohortWithRate(month time.Month, wonN, lostN int) []model.Opportunity {
	var opps []model.Opportunity
	for i := 0; i < wonN; i++ {
		opps = append(opps, won("", 1, model.StageDemo, date(2024, month, 1), date(2024, month, 10), "a"))
	}
	for i := 0; i < lostN; i++ {
		opps = append(opps, lost("", 1, model.StageDemo, date(2024, month, 1), date(2024, month, 10), "a"))
	}
	return opps
}

func TestCohorts_TrendImproving(t *testing.T) {
	var opps []model.Opportunity
	opps = append(opps, cohortWithRate(1, 1, 4)...) // 20%
	opps = append(opps, cohortWithRate(2, 1, 1)...) // 50%
	opps = append(opps, cohortWithRate(3, 4, 1)...) // 80%

	r := Cohorts(opps)
	assert.Equal(t, TrendImproving, r.Trend)
}

func TestCohorts_TrendDeclining(t *testing.T) {
	var opps []model.Opportunity
	opps = append(opps, cohortWithRate(1, 4, 1)...) // 80%
	opps = append(opps, cohortWithRate(2, 1, 1)...) // 50%
	opps = append(opps, cohortWithRate(3, 1, 4)...) // 20%

	r := Cohorts(opps)
	assert.Equal(t, TrendDeclining, r.Trend)
}

func TestCohorts_TrendStableWithinThreshold(t *testing.T) {
	var opps []model.Opportunity
	opps = append(opps, cohortWithRate(1, 1, 1)...)  // 50%
	opps = append(opps, cohortWithRate(2, 1, 1)...)  // 50%
	opps = append(opps, cohortWithRate(3, 11, 9)...) // 55%: within 10 points

	r := Cohorts(opps)
	assert.Equal(t, TrendStable, r.Trend)
}

func TestCohorts_TrendStableUnderThreeCohorts(t *testing.T) {
	var opps []model.Opportunity
	opps = append(opps, cohortWithRate(1, 1, 4)...)
	opps = append(opps, cohortWithRate(2, 4, 1)...)

	r := Cohorts(opps)
	assert.Equal(t, TrendStable, r.Trend)
}

func TestCohorts_TrendSkipsCohortsWithoutWins(t *testing.T) {
	var opps []model.Opportunity
	opps = append(opps, cohortWithRate(1, 1, 4)...) // 20%
	opps = append(opps, cohortWithRate(2, 0, 3)...) // 0%: skipped
	opps = append(opps, cohortWithRate(3, 4, 1)...) // 80%

	r := Cohorts(opps)
	assert.Equal(t, TrendImproving, r.Trend)
}

func TestCohorts_EmptyInput(t *testing.T) {
	r := Cohorts(nil)
	assert.Empty(t, r.Cohorts)
	assert.Equal(t, TrendStable, r.Trend)
}
