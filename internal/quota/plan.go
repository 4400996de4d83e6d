// Package quota loads revenue quota plans used by trend analysis.
package quota

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Plan holds a default monthly quota and per-month overrides, letting teams
// encode seasonality (a lighter December, a heavier quarter close).
type Plan struct {
	DefaultMonthly float64            `yaml:"default_monthly"`
	Months         map[string]float64 `yaml:"months"` // YYYY-MM -> monthly quota
}

// Monthly returns the quota for a month key, falling back to the default.
func (p *Plan) Monthly(month string) float64 {
	if v, ok := p.Months[month]; ok {
		return v
	}
	return p.DefaultMonthly
}

// Quarterly sums the quotas of three consecutive months starting at the
// given YYYY-MM key's quota; with no overrides this is 3x the default.
func (p *Plan) Quarterly(months ...string) float64 {
	if len(months) == 0 {
		return p.DefaultMonthly * 3
	}
	total := 0.0
	for _, m := range months {
		total += p.Monthly(m)
	}
	return total
}

// LoadPlan reads a quota plan from a YAML file.
//
//	quota:
//	  default_monthly: 2000000
//	  months:
//	    "2024-12": 1500000
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "quota: read plan %s", path)
	}

	var wrapper struct {
		Quota Plan `yaml:"quota"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "quota: parse plan")
	}

	plan := &wrapper.Quota
	if plan.DefaultMonthly < 0 {
		return nil, eris.Errorf("quota: default_monthly must be non-negative (got %g)", plan.DefaultMonthly)
	}
	for month, v := range plan.Months {
		if v < 0 {
			return nil, eris.Errorf("quota: month %s must be non-negative (got %g)", month, v)
		}
	}
	return plan, nil
}
