package analytics

import (
	"time"

	"github.com/sells-group/forecast-cli/internal/model"
)

// stuckMultiplier flags a deal as stuck when its estimated time in a stage
// exceeds this multiple of the stage average.
const stuckMultiplier = 1.5

// StageStats summarizes the funnel at one stage.
type StageStats struct {
	Stage          model.Stage `json:"stage"`
	TotalEntered   int         `json:"total_entered"`
	CurrentlyIn    int         `json:"currently_in_stage"`
	WonFromHere    int         `json:"won_from_here"`
	LostFromHere   int         `json:"lost_from_here"`
	WinRate        float64     `json:"win_rate"`        // won / total entered
	ConversionRate float64     `json:"conversion_rate"` // won / (won + lost)
	AvgDaysInStage float64     `json:"avg_days_in_stage"`
	StuckCount     int         `json:"stuck_count"`
}

// Transition measures movement between two adjacent stages.
type Transition struct {
	From            model.Stage `json:"from"`
	To              model.Stage `json:"to"`
	FromCount       int         `json:"from_count"`
	ToCount         int         `json:"to_count"`
	Dropped         int         `json:"dropped"`
	ProgressionRate float64     `json:"progression_rate"`
	DropOffRate     float64     `json:"drop_off_rate"`
}

// StageProgressionReport holds per-stage funnel stats, adjacent-stage
// transitions, and the standout stages. The pointer fields are nil when no
// stage or transition qualifies.
type StageProgressionReport struct {
	Stages         []StageStats `json:"stages"` // in funnel order
	Transitions    []Transition `json:"transitions"`
	Bottleneck     *Transition  `json:"bottleneck,omitempty"`      // max drop-off
	SlowestStage   *model.Stage `json:"slowest_stage,omitempty"`   // max avg days
	StickiestStage *model.Stage `json:"stickiest_stage,omitempty"` // max stuck count
}

// StageProgression analyzes how deals move through the funnel.
//
// A deal is counted as having entered every stage at or before the furthest
// stage it reached: the current stage for open deals, the effective stage for
// closed ones. Won/Lost outcomes attribute only to that final stage.
//
// Time in stage is a heuristic, not a measurement: the source data carries no
// stage-transition timestamps, so each deal's total elapsed days (close to
// created for closed deals, today to created for open ones) is split evenly
// across the stages it reached, and that equal share is the deal's
// contribution to each of those stages. A deal is stuck in a stage when its
// contribution exceeds 1.5x the stage average. Replace this estimator if a
// data source with real transition events ever appears.
func StageProgression(opps []model.Opportunity, today time.Time) StageProgressionReport {
	n := len(model.StageOrder)
	stats := make([]StageStats, n)
	contributions := make([][]float64, n)
	for i, st := range model.StageOrder {
		stats[i].Stage = st
	}

	for _, o := range opps {
		var final model.Stage
		var elapsed float64

		switch {
		case o.Status.Closed():
			final = o.EffectiveStage()
			elapsed = float64(o.CycleDays())
		case o.Status == model.StatusOpen:
			final = o.Stage
			elapsed = float64(o.DaysInPipeline(today))
		default:
			continue
		}

		idx := final.Index()
		if idx < 0 {
			continue
		}

		share := elapsed / float64(idx+1)
		for i := 0; i <= idx; i++ {
			stats[i].TotalEntered++
			contributions[i] = append(contributions[i], share)
		}

		switch o.Status {
		case model.StatusWon:
			stats[idx].WonFromHere++
		case model.StatusLost:
			stats[idx].LostFromHere++
		case model.StatusOpen:
			stats[idx].CurrentlyIn++
		}
	}

	for i := range stats {
		s := &stats[i]
		s.WinRate = ratio(float64(s.WonFromHere), float64(s.TotalEntered))
		s.ConversionRate = ratio(float64(s.WonFromHere), float64(s.WonFromHere+s.LostFromHere))
		s.AvgDaysInStage = mean(contributions[i])

		threshold := s.AvgDaysInStage * stuckMultiplier
		for _, days := range contributions[i] {
			if days > threshold {
				s.StuckCount++
			}
		}
	}

	report := StageProgressionReport{Stages: stats}

	for i := 0; i < n-1; i++ {
		from, to := stats[i], stats[i+1]
		if from.TotalEntered == 0 {
			continue
		}
		progression := float64(to.TotalEntered) / float64(from.TotalEntered)
		report.Transitions = append(report.Transitions, Transition{
			From:            from.Stage,
			To:              to.Stage,
			FromCount:       from.TotalEntered,
			ToCount:         to.TotalEntered,
			Dropped:         from.TotalEntered - to.TotalEntered,
			ProgressionRate: progression,
			DropOffRate:     1 - progression,
		})
	}

	maxDropOff := 0.0
	for i := range report.Transitions {
		if t := report.Transitions[i]; t.DropOffRate > maxDropOff {
			maxDropOff = t.DropOffRate
			report.Bottleneck = &report.Transitions[i]
		}
	}

	maxAvgDays := 0.0
	maxStuck := 0
	for i := range stats {
		if stats[i].AvgDaysInStage > maxAvgDays {
			maxAvgDays = stats[i].AvgDaysInStage
			report.SlowestStage = &stats[i].Stage
		}
		if stats[i].StuckCount > maxStuck {
			maxStuck = stats[i].StuckCount
			report.StickiestStage = &stats[i].Stage
		}
	}

	return report
}
