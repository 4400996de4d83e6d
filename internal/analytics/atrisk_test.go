package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/forecast-cli/internal/model"
)

func TestAtRisk_FlagsDealsOverAverage(t *testing.T) {
	today := date(2024, 6, 1)
	opps := []model.Opportunity{
		open("fresh", 10000, model.StageDemo, today.AddDate(0, 0, -10), "ana"),
		open("aging", 20000, model.StageProposal, today.AddDate(0, 0, -50), "ben"),
		open("stale", 30000, model.StageDiscovery, today.AddDate(0, 0, -90), "ana"),
		won("done", 40000, model.StageNegotiation, date(2024, 1, 1), date(2024, 2, 1), "ben"),
	}

	atRisk := AtRisk(opps, 30, today)
	require.Len(t, atRisk, 2)

	// Sorted by days over, descending.
	assert.Equal(t, "stale", atRisk[0].ID)
	assert.InDelta(t, 60.0, atRisk[0].DaysOver, 1e-9)
	assert.Equal(t, 90, atRisk[0].DaysInPipeline)

	assert.Equal(t, "aging", atRisk[1].ID)
	assert.InDelta(t, 20.0, atRisk[1].DaysOver, 1e-9)
}

func TestAtRisk_DaysOverAlwaysPositive(t *testing.T) {
	today := date(2024, 6, 1)
	opps := []model.Opportunity{
		open("at avg", 10000, model.StageDemo, today.AddDate(0, 0, -30), "ana"),
		open("over", 20000, model.StageDemo, today.AddDate(0, 0, -31), "ana"),
	}

	atRisk := AtRisk(opps, 30, today)
	for _, d := range atRisk {
		assert.Greater(t, d.DaysOver, 0.0)
	}
	// Exactly at average does not qualify.
	require.Len(t, atRisk, 1)
	assert.Equal(t, "over", atRisk[0].ID)
}

func TestAtRisk_NoBaseline(t *testing.T) {
	today := date(2024, 6, 1)
	opps := []model.Opportunity{
		open("old", 10000, model.StageDemo, today.AddDate(0, 0, -500), "ana"),
	}

	assert.Empty(t, AtRisk(opps, 0, today))
	assert.Empty(t, AtRisk(opps, -1, today))
}

func TestAtRisk_EmptyInput(t *testing.T) {
	assert.Empty(t, AtRisk(nil, 30, date(2024, 6, 1)))
}

func TestAtRisk_CarriesDealFields(t *testing.T) {
	today := date(2024, 6, 1)
	o := open("OPP-9", 75000, model.StageNegotiation, today.AddDate(0, 0, -60), "casey")

	atRisk := AtRisk([]model.Opportunity{o}, 30, today)
	require.Len(t, atRisk, 1)

	d := atRisk[0]
	assert.Equal(t, "OPP-9", d.ID)
	assert.Equal(t, "deal OPP-9", d.Name)
	assert.Equal(t, "casey", d.Owner)
	assert.Equal(t, model.StageNegotiation, d.Stage)
	assert.Equal(t, 75000.0, d.Amount)
}
