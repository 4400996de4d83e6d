package analytics

import (
	"github.com/sells-group/forecast-cli/internal/model"
)

// StageBreakdown summarizes the open pipeline sitting in one stage.
type StageBreakdown struct {
	Count    int     `json:"count"`
	Amount   float64 `json:"amount"`
	Weighted float64 `json:"weighted"`
}

// ForecastReport holds the probability-weighted forecast over open deals.
type ForecastReport struct {
	TotalPipeline    float64                        `json:"total_pipeline"`
	WeightedForecast float64                        `json:"weighted_forecast"`
	OpenCount        int                            `json:"open_count"`
	Stages           map[model.Stage]StageBreakdown `json:"stages"`
	Probabilities    model.StageProbabilities       `json:"probabilities"`
}

// Forecast computes pipeline totals and the weighted forecast for open
// opportunities. An open deal in an unmapped stage counts toward the
// pipeline total but contributes 0 to the weighted forecast, and does not
// appear in the per-stage breakdown.
func Forecast(opps []model.Opportunity, probs model.StageProbabilities) ForecastReport {
	r := ForecastReport{
		Stages:        make(map[model.Stage]StageBreakdown, len(model.StageOrder)),
		Probabilities: probs,
	}

	for _, o := range opps {
		if o.Status != model.StatusOpen {
			continue
		}
		r.OpenCount++
		r.TotalPipeline += o.Amount

		weighted := o.Amount * probs.Prob(o.Stage)
		r.WeightedForecast += weighted

		if !o.Stage.Known() {
			continue
		}
		b := r.Stages[o.Stage]
		b.Count++
		b.Amount += o.Amount
		b.Weighted += weighted
		r.Stages[o.Stage] = b
	}

	return r
}

// StageCycle holds cycle-length statistics for won deals closed from one
// effective stage.
type StageCycle struct {
	AvgDays    float64 `json:"avg_days"`
	MedianDays float64 `json:"median_days"`
	Count      int     `json:"count"`
}

// CycleStats summarizes sales-cycle duration over won deals.
type CycleStats struct {
	AvgDays    float64                    `json:"avg_days"`
	MedianDays float64                    `json:"median_days"`
	ByStage    map[model.Stage]StageCycle `json:"by_stage"`
	WonSample  []float64                  `json:"-"` // raw cycle days, scenario input
}

// Cycle measures close_date - created_date in days across won deals, overall
// and keyed by effective stage. Unknown effective stages stay out of the
// per-stage map but still count toward the overall sample.
func Cycle(opps []model.Opportunity) CycleStats {
	byStage := make(map[model.Stage][]float64)
	var sample []float64

	for _, o := range opps {
		if o.Status != model.StatusWon {
			continue
		}
		days := float64(o.CycleDays())
		sample = append(sample, days)

		if st := o.EffectiveStage(); st.Known() {
			byStage[st] = append(byStage[st], days)
		}
	}

	stats := CycleStats{
		AvgDays:    mean(sample),
		MedianDays: median(sample),
		ByStage:    make(map[model.Stage]StageCycle, len(byStage)),
		WonSample:  sample,
	}
	for st, days := range byStage {
		stats.ByStage[st] = StageCycle{
			AvgDays:    mean(days),
			MedianDays: median(days),
			Count:      len(days),
		}
	}

	return stats
}

// VelocityMetrics holds the sales velocity calculation and its inputs.
type VelocityMetrics struct {
	OpenCount    int             `json:"open_count"`
	WinRate      float64         `json:"win_rate"`
	AvgDealSize  float64         `json:"avg_deal_size"`
	AvgCycleDays float64         `json:"avg_cycle_days"`
	PerDay       float64         `json:"per_day"`
	Projections  map[int]float64 `json:"projections"` // horizon days -> projected revenue
}

// velocityHorizons are the projection windows reported alongside velocity.
var velocityHorizons = []int{30, 60, 90}

// Velocity computes projected revenue per day:
// (open count x win rate x avg deal size) / avg cycle days.
// Zero avgCycleDays yields zero velocity, never a division error.
func Velocity(opps []model.Opportunity, avgCycleDays float64) VelocityMetrics {
	var openCount, wonCount, lostCount int
	var wonAmounts []float64

	for _, o := range opps {
		switch o.Status {
		case model.StatusOpen:
			openCount++
		case model.StatusWon:
			wonCount++
			wonAmounts = append(wonAmounts, o.Amount)
		case model.StatusLost:
			lostCount++
		}
	}

	m := VelocityMetrics{
		OpenCount:    openCount,
		WinRate:      ratio(float64(wonCount), float64(wonCount+lostCount)),
		AvgDealSize:  mean(wonAmounts),
		AvgCycleDays: avgCycleDays,
		Projections:  make(map[int]float64, len(velocityHorizons)),
	}
	if avgCycleDays > 0 {
		m.PerDay = float64(openCount) * m.WinRate * m.AvgDealSize / avgCycleDays
	}
	for _, days := range velocityHorizons {
		m.Projections[days] = m.PerDay * float64(days)
	}

	return m
}
