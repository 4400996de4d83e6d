package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/forecast-cli/internal/config"
	"github.com/sells-group/forecast-cli/internal/model"
)

func resetDataFlags(t *testing.T) {
	t.Helper()
	inputPath, snapshotID = "", ""
	filterOwner, filterStage, filterStatus = "", "", ""
	asOf = ""
	t.Cleanup(func() {
		inputPath, snapshotID = "", ""
		filterOwner, filterStage, filterStatus = "", "", ""
		asOf = ""
	})
}

func TestAsOfDate(t *testing.T) {
	resetDataFlags(t)

	asOf = "2025-06-15"
	got, err := asOfDate()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), got)

	asOf = "06/15/2025"
	_, err = asOfDate()
	assert.Error(t, err)

	asOf = ""
	got, err = asOfDate()
	require.NoError(t, err)
	assert.False(t, got.IsZero())
}

func TestLoadOpportunitiesFromInput(t *testing.T) {
	resetDataFlags(t)

	csv := "opportunity_id,opportunity_name,amount,stage,status,owner,created_date,close_date,last_stage\n" +
		"OPP-1,Acme,100000,Discovery,Open,alice,2025-01-10,,\n" +
		"OPP-2,Globex,50000,Demo,Open,bob,2025-02-01,,\n"
	path := filepath.Join(t.TempDir(), "opps.csv")
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o644))

	inputPath = path
	filterOwner = "alice"

	opps, err := loadOpportunities(context.Background())
	require.NoError(t, err)
	require.Len(t, opps, 1)
	assert.Equal(t, "OPP-1", opps[0].ID)
}

func TestLoadOpportunitiesNoSnapshots(t *testing.T) {
	resetDataFlags(t)

	cfgBackup := cfg
	defer func() { cfg = cfgBackup }()
	cfg = &config.Config{
		Store: config.StoreConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "empty.db")},
	}

	_, err := loadOpportunities(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no snapshots")
}

func TestOpenStoreUnknownDriver(t *testing.T) {
	cfgBackup := cfg
	defer func() { cfg = cfgBackup }()
	cfg = &config.Config{Store: config.StoreConfig{Driver: "mysql"}}

	_, err := openStore(context.Background())
	assert.Error(t, err)
}

func TestStageProbabilitiesHistoricalOverlay(t *testing.T) {
	cfgBackup := cfg
	defer func() { cfg = cfgBackup }()
	cfg = &config.Config{
		Probabilities: config.ProbabilityConfig{Discovery: 10, Demo: 30, Proposal: 50, Negotiation: 70},
	}

	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	closed := created.AddDate(0, 0, 30)
	opps := []model.Opportunity{
		{ID: "W1", Stage: model.StageDemo, Status: model.StatusWon, CreatedDate: created, CloseDate: closed},
		{ID: "W2", Stage: model.StageDemo, Status: model.StatusWon, CreatedDate: created, CloseDate: closed},
		{ID: "L1", Stage: model.StageDemo, Status: model.StatusLost, CreatedDate: created, CloseDate: closed},
	}

	probs := stageProbabilities(opps, false)
	assert.InDelta(t, 0.30, probs[model.StageDemo], 1e-9)

	probs = stageProbabilities(opps, true)
	assert.InDelta(t, 2.0/3.0, probs[model.StageDemo], 1e-9)
	// Stages without closed history keep configured defaults.
	assert.InDelta(t, 0.10, probs[model.StageDiscovery], 1e-9)
}
