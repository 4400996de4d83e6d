package quota

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePlan(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "quota.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadPlan(t *testing.T) {
	path := writePlan(t, `
quota:
  default_monthly: 2000000
  months:
    "2024-12": 1500000
    "2025-03": 2500000
`)

	plan, err := LoadPlan(path)
	require.NoError(t, err)

	assert.Equal(t, 2000000.0, plan.DefaultMonthly)
	assert.Equal(t, 1500000.0, plan.Monthly("2024-12"))
	assert.Equal(t, 2000000.0, plan.Monthly("2024-11"))
}

func TestLoadPlanMissingFile(t *testing.T) {
	_, err := LoadPlan(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadPlanInvalidYAML(t *testing.T) {
	path := writePlan(t, "quota: [not a map")
	_, err := LoadPlan(path)
	assert.Error(t, err)
}

func TestLoadPlanNegativeValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"negative default", "quota:\n  default_monthly: -1\n"},
		{"negative month", "quota:\n  default_monthly: 100\n  months:\n    \"2025-01\": -5\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadPlan(writePlan(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestQuarterly(t *testing.T) {
	plan := &Plan{
		DefaultMonthly: 100,
		Months:         map[string]float64{"2025-02": 250},
	}

	assert.Equal(t, 300.0, plan.Quarterly())
	assert.Equal(t, 450.0, plan.Quarterly("2025-01", "2025-02", "2025-03"))
}
