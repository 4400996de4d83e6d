package analytics

import (
	"github.com/sells-group/forecast-cli/internal/model"
)

// StageRecord counts closed-deal outcomes attributed to one effective stage.
type StageRecord struct {
	Won   int `json:"won"`
	Lost  int `json:"lost"`
	Total int `json:"total"`
}

// HistoricalRates holds per-stage win rates observed in closed deals.
type HistoricalRates struct {
	Rates   model.StageProbabilities    `json:"rates"`
	ByStage map[model.Stage]StageRecord `json:"by_stage"`
}

// Historical derives win rates per stage from closed opportunities, keyed by
// effective stage (last_stage when recorded, else stage). Stages with no
// closed history are absent from both maps; unknown stage values are skipped.
func Historical(opps []model.Opportunity) HistoricalRates {
	h := HistoricalRates{
		Rates:   make(model.StageProbabilities),
		ByStage: make(map[model.Stage]StageRecord),
	}

	for _, o := range opps {
		if !o.Status.Closed() {
			continue
		}
		st := o.EffectiveStage()
		if !st.Known() {
			continue
		}
		rec := h.ByStage[st]
		rec.Total++
		if o.Status == model.StatusWon {
			rec.Won++
		} else {
			rec.Lost++
		}
		h.ByStage[st] = rec
	}

	for st, rec := range h.ByStage {
		h.Rates[st] = ratio(float64(rec.Won), float64(rec.Total))
	}

	return h
}

// Merged overlays historical rates onto a base probability table: stages with
// closed-deal history use the observed rate, the rest keep the base value.
func (h HistoricalRates) Merged(base model.StageProbabilities) model.StageProbabilities {
	merged := make(model.StageProbabilities, len(base))
	for st, p := range base {
		merged[st] = p
	}
	for st, p := range h.Rates {
		merged[st] = p
	}
	return merged
}
