package analytics

import (
	"math"

	"github.com/sells-group/forecast-cli/internal/model"
)

// Scenario adjustment policy. Best case lifts every stage's win rate by 30%
// (capped at certainty), worst case cuts it by 30%.
const (
	BestRateMultiplier  = 1.30
	WorstRateMultiplier = 0.70

	// fallbackCycleDays stands in for cycle quartiles when no won deal exists.
	fallbackCycleDays = 100
)

// Scenario is one branch of the best/expected/worst projection.
type Scenario struct {
	Forecast  float64                  `json:"forecast"`
	CycleDays float64                  `json:"cycle_days"`
	Rates     model.StageProbabilities `json:"rates"`
}

// ScenarioSet holds the three forecast scenarios.
type ScenarioSet struct {
	Best     Scenario `json:"best"`
	Expected Scenario `json:"expected"`
	Worst    Scenario `json:"worst"`
}

// Scenarios builds best/expected/worst projections from historical per-stage
// win rates and the distribution of won-deal cycle lengths.
//
// Stages with no closed-deal history fall back to the supplied default
// probability table before the +/-30% adjustment. Cycle times come from the
// 25th/50th/75th percentiles of wonCycleDays (see quantile for small-sample
// behavior); an empty sample defaults all three to 100 days.
func Scenarios(
	opps []model.Opportunity,
	hist HistoricalRates,
	defaults model.StageProbabilities,
	wonCycleDays []float64,
) ScenarioSet {
	best := make(model.StageProbabilities, len(model.StageOrder))
	expected := make(model.StageProbabilities, len(model.StageOrder))
	worst := make(model.StageProbabilities, len(model.StageOrder))

	for _, st := range model.StageOrder {
		rate, ok := hist.Rates[st]
		if !ok {
			rate = defaults.Prob(st)
		}
		best[st] = math.Min(1.0, rate*BestRateMultiplier)
		expected[st] = rate
		worst[st] = rate * WorstRateMultiplier
	}

	bestCycle := float64(fallbackCycleDays)
	expectedCycle := float64(fallbackCycleDays)
	worstCycle := float64(fallbackCycleDays)
	if len(wonCycleDays) > 0 {
		bestCycle = quantile(wonCycleDays, 0.25)
		expectedCycle = quantile(wonCycleDays, 0.50)
		worstCycle = quantile(wonCycleDays, 0.75)
	}

	return ScenarioSet{
		Best:     Scenario{Forecast: scenarioForecast(opps, best), CycleDays: bestCycle, Rates: best},
		Expected: Scenario{Forecast: scenarioForecast(opps, expected), CycleDays: expectedCycle, Rates: expected},
		Worst:    Scenario{Forecast: scenarioForecast(opps, worst), CycleDays: worstCycle, Rates: worst},
	}
}

func scenarioForecast(opps []model.Opportunity, rates model.StageProbabilities) float64 {
	total := 0.0
	for _, o := range opps {
		if o.Status != model.StatusOpen {
			continue
		}
		total += o.Amount * rates.Prob(o.Stage)
	}
	return total
}
