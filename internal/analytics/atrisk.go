package analytics

import (
	"sort"
	"time"

	"github.com/sells-group/forecast-cli/internal/model"
)

// AtRiskDeal is an open opportunity that has outlived the historical
// average sales cycle.
type AtRiskDeal struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Owner          string      `json:"owner"`
	Stage          model.Stage `json:"stage"`
	Amount         float64     `json:"amount"`
	DaysInPipeline int         `json:"days_in_pipeline"`
	DaysOver       float64     `json:"days_over"`
}

// AtRisk flags open opportunities older than avgCycleDays, sorted by how far
// past the average they are. Without a baseline (no won deals, avgCycleDays
// <= 0) there is nothing to compare against and the result is empty.
func AtRisk(opps []model.Opportunity, avgCycleDays float64, today time.Time) []AtRiskDeal {
	if avgCycleDays <= 0 {
		return nil
	}

	var atRisk []AtRiskDeal
	for _, o := range opps {
		if o.Status != model.StatusOpen {
			continue
		}
		days := o.DaysInPipeline(today)
		if float64(days) <= avgCycleDays {
			continue
		}
		atRisk = append(atRisk, AtRiskDeal{
			ID:             o.ID,
			Name:           o.Name,
			Owner:          o.Owner,
			Stage:          o.Stage,
			Amount:         o.Amount,
			DaysInPipeline: days,
			DaysOver:       float64(days) - avgCycleDays,
		})
	}

	sort.Slice(atRisk, func(i, j int) bool {
		if atRisk[i].DaysOver != atRisk[j].DaysOver {
			return atRisk[i].DaysOver > atRisk[j].DaysOver
		}
		return atRisk[i].ID < atRisk[j].ID
	})

	return atRisk
}
