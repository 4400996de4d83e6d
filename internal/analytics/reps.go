package analytics

import (
	"sort"

	"github.com/sells-group/forecast-cli/internal/model"
)

// Coaching policy thresholds, relative to team benchmarks.
const (
	MinClosedForTier = 3 // closed deals needed before a rep is classified

	TopWinRateMultiplier    = 1.10 // win rate >= 110% of team
	TopDealSizeMultiplier   = 0.90 // and avg deal >= 90% of team
	CoachWinRateMultiplier  = 0.80 // win rate < 80% of team
	CoachDealSizeMultiplier = 0.70 // or avg deal < 70% of team
)

// Tier classifies a rep against team benchmarks.
type Tier string

const (
	TierInsufficient Tier = "Insufficient data"
	TierTop          Tier = "Top Performer"
	TierCoaching     Tier = "Needs Coaching"
	TierOnTrack      Tier = "On Track"
)

// RepRecord aggregates one owner's book of business.
type RepRecord struct {
	Owner            string  `json:"owner"`
	OpenCount        int     `json:"open_count"`
	WonCount         int     `json:"won_count"`
	LostCount        int     `json:"lost_count"`
	ClosedCount      int     `json:"closed_count"`
	OpenPipeline     float64 `json:"open_pipeline"`
	WeightedForecast float64 `json:"weighted_forecast"`
	WonAmount        float64 `json:"won_amount"`
	WinRate          float64 `json:"win_rate"`
	AvgDealSize      float64 `json:"avg_deal_size"`
	Tier             Tier    `json:"tier"`
}

// TeamBenchmarks are pooled across all reps' closed deals, not averaged over
// per-rep rates, so a rep with three deals does not weigh as much as one
// with thirty.
type TeamBenchmarks struct {
	WinRate       float64 `json:"win_rate"`
	AvgDealSize   float64 `json:"avg_deal_size"`
	TotalPipeline float64 `json:"total_pipeline"`
	TotalForecast float64 `json:"total_forecast"`
	OpenCount     int     `json:"open_count"`
}

// RepPerformanceReport holds per-rep aggregates and team benchmarks.
type RepPerformanceReport struct {
	Reps []RepRecord    `json:"reps"` // sorted by weighted forecast, descending
	Team TeamBenchmarks `json:"team"`
}

// RepPerformance aggregates opportunities per owner and classifies each rep
// against team benchmarks. The probability map weights each rep's open
// pipeline; callers pass historical rates when available, configured
// defaults otherwise.
func RepPerformance(opps []model.Opportunity, probs model.StageProbabilities) RepPerformanceReport {
	byOwner := make(map[string]*RepRecord)
	rec := func(owner string) *RepRecord {
		r, ok := byOwner[owner]
		if !ok {
			r = &RepRecord{Owner: owner}
			byOwner[owner] = r
		}
		return r
	}

	for _, o := range opps {
		r := rec(o.Owner)
		switch o.Status {
		case model.StatusOpen:
			r.OpenCount++
			r.OpenPipeline += o.Amount
			r.WeightedForecast += o.Amount * probs.Prob(o.Stage)
		case model.StatusWon:
			r.WonCount++
			r.ClosedCount++
			r.WonAmount += o.Amount
		case model.StatusLost:
			r.LostCount++
			r.ClosedCount++
		}
	}

	var report RepPerformanceReport
	var teamWon, teamClosed int
	var teamWonAmount float64

	for _, r := range byOwner {
		r.WinRate = ratio(float64(r.WonCount), float64(r.ClosedCount))
		r.AvgDealSize = ratio(r.WonAmount, float64(r.WonCount))

		teamWon += r.WonCount
		teamClosed += r.ClosedCount
		teamWonAmount += r.WonAmount
		report.Team.TotalPipeline += r.OpenPipeline
		report.Team.TotalForecast += r.WeightedForecast
		report.Team.OpenCount += r.OpenCount
	}
	report.Team.WinRate = ratio(float64(teamWon), float64(teamClosed))
	report.Team.AvgDealSize = ratio(teamWonAmount, float64(teamWon))

	for _, r := range byOwner {
		r.Tier = classify(r, report.Team)
		report.Reps = append(report.Reps, *r)
	}

	sort.Slice(report.Reps, func(i, j int) bool {
		if report.Reps[i].WeightedForecast != report.Reps[j].WeightedForecast {
			return report.Reps[i].WeightedForecast > report.Reps[j].WeightedForecast
		}
		return report.Reps[i].Owner < report.Reps[j].Owner
	})

	return report
}

func classify(r *RepRecord, team TeamBenchmarks) Tier {
	switch {
	case r.ClosedCount < MinClosedForTier:
		return TierInsufficient
	case r.WinRate >= team.WinRate*TopWinRateMultiplier &&
		r.AvgDealSize >= team.AvgDealSize*TopDealSizeMultiplier:
		return TierTop
	case r.WinRate < team.WinRate*CoachWinRateMultiplier ||
		r.AvgDealSize < team.AvgDealSize*CoachDealSizeMultiplier:
		return TierCoaching
	default:
		return TierOnTrack
	}
}
