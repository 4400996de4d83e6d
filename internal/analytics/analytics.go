// Package analytics computes forecasting and performance metrics over a
// snapshot of sales opportunities.
//
// Every function here is pure: it reads an immutable snapshot plus explicit
// parameters (including the reference "today" wherever ages are computed) and
// returns a freshly allocated report. Degenerate numeric cases (empty
// samples, zero denominators, unmapped stages) resolve to 0 rather than
// erroring, so callers never see NaN, Inf, or a division panic.
package analytics

import "sort"

// TrendDirection classifies month-over-month or cohort-over-cohort movement.
type TrendDirection string

const (
	TrendImproving TrendDirection = "improving"
	TrendDeclining TrendDirection = "declining"
	TrendStable    TrendDirection = "stable"
)

// mean returns the arithmetic mean, 0 for an empty sample.
func mean(sample []float64) float64 {
	if len(sample) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range sample {
		sum += v
	}
	return sum / float64(len(sample))
}

// median returns the middle value, 0 for an empty sample.
func median(sample []float64) float64 {
	return quantile(sample, 0.5)
}

// quantile returns the q-th quantile of sample using linear interpolation
// between closest ranks (the R-7 rule: rank h = (n-1)*q). This keeps small
// samples well-defined: n=1 returns the single value for every q, n=2
// interpolates along the pair (25th percentile of {a,b} is a+0.25*(b-a)),
// n=3 lands the 25th/75th percentiles halfway between neighbors. Returns 0
// for an empty sample. The input slice is not modified.
func quantile(sample []float64, q float64) float64 {
	n := len(sample)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sample[0]
	}

	sorted := make([]float64, n)
	copy(sorted, sample)
	sort.Float64s(sorted)

	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[n-1]
	}

	h := float64(n-1) * q
	lo := int(h)
	frac := h - float64(lo)
	if lo+1 >= n {
		return sorted[n-1]
	}
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// ratio returns num/den, 0 when den is not positive.
func ratio(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	return num / den
}
