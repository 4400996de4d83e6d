package analytics

import (
	"sort"

	"github.com/sells-group/forecast-cli/internal/model"
)

// cohortTrendThreshold is the absolute win-rate change (in rate points)
// separating improving/declining from stable across recent cohorts.
const cohortTrendThreshold = 0.10

// cohortTrendWindow is how many recent cohorts the trend looks at.
const cohortTrendWindow = 3

// Cohort summarizes opportunities created in one calendar month.
type Cohort struct {
	Month          string  `json:"month"` // YYYY-MM
	Total          int     `json:"total"`
	Won            int     `json:"won"`
	Lost           int     `json:"lost"`
	Open           int     `json:"open"`
	ConversionRate float64 `json:"conversion_rate"` // closed / total
	WinRate        float64 `json:"win_rate"`        // won / closed
	AvgDaysToClose float64 `json:"avg_days_to_close"`
}

// CohortReport groups opportunities by creation month, with a win-rate trend
// across the most recent cohorts.
type CohortReport struct {
	Cohorts []Cohort       `json:"cohorts"` // chronological
	Trend   TrendDirection `json:"trend"`
}

// Cohorts groups all opportunities by the calendar month of created_date.
//
// The trend compares win rates across the last three cohorts, first versus
// last, skipping cohorts with no closed deals; a change beyond ten points in
// either direction reads as improving or declining. Fewer than three
// cohorts, or fewer than two with closed history, defaults to stable.
func Cohorts(opps []model.Opportunity) CohortReport {
	type acc struct {
		cohort     Cohort
		closedDays []float64
	}
	byMonth := make(map[string]*acc)

	for _, o := range opps {
		key := o.CreatedDate.Format("2006-01")
		a, ok := byMonth[key]
		if !ok {
			a = &acc{cohort: Cohort{Month: key}}
			byMonth[key] = a
		}
		a.cohort.Total++

		switch o.Status {
		case model.StatusWon:
			a.cohort.Won++
			a.closedDays = append(a.closedDays, float64(o.CycleDays()))
		case model.StatusLost:
			a.cohort.Lost++
			a.closedDays = append(a.closedDays, float64(o.CycleDays()))
		default:
			a.cohort.Open++
		}
	}

	report := CohortReport{Trend: TrendStable}
	for _, a := range byMonth {
		c := a.cohort
		closed := c.Won + c.Lost
		c.ConversionRate = ratio(float64(closed), float64(c.Total))
		c.WinRate = ratio(float64(c.Won), float64(closed))
		c.AvgDaysToClose = mean(a.closedDays)
		report.Cohorts = append(report.Cohorts, c)
	}
	sort.Slice(report.Cohorts, func(i, j int) bool {
		return report.Cohorts[i].Month < report.Cohorts[j].Month
	})

	if len(report.Cohorts) < cohortTrendWindow {
		return report
	}

	recent := report.Cohorts[len(report.Cohorts)-cohortTrendWindow:]
	var rates []float64
	for _, c := range recent {
		if c.WinRate > 0 {
			rates = append(rates, c.WinRate)
		}
	}
	if len(rates) < 2 {
		return report
	}

	switch change := rates[len(rates)-1] - rates[0]; {
	case change > cohortTrendThreshold:
		report.Trend = TrendImproving
	case change < -cohortTrendThreshold:
		report.Trend = TrendDeclining
	}

	return report
}
