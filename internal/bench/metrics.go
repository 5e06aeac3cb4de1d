package bench

import (
	"math"
	"sort"
)

// LatencyStats represents statistical measures of per-chunk latency
type LatencyStats struct {
	Mean   float64 `json:"mean" yaml:"mean"`
	Median float64 `json:"median" yaml:"median"`
	P95    float64 `json:"p95" yaml:"p95"`
	P99    float64 `json:"p99" yaml:"p99"`
	Min    float64 `json:"min" yaml:"min"`
	Max    float64 `json:"max" yaml:"max"`
	StdDev float64 `json:"std_dev" yaml:"std_dev"`
	Count  int     `json:"count" yaml:"count"`
}

// calculateStats computes summary statistics over raw samples
func calculateStats(data []float64) *LatencyStats {
	if len(data) == 0 {
		return &LatencyStats{}
	}

	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	stats := &LatencyStats{
		Count:  len(data),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Median: percentile(sorted, 50),
		P95:    percentile(sorted, 95),
		P99:    percentile(sorted, 99),
	}

	sum := 0.0
	for _, v := range data {
		sum += v
	}
	stats.Mean = sum / float64(len(data))

	sumSquaredDiffs := 0.0
	for _, v := range data {
		diff := v - stats.Mean
		sumSquaredDiffs += diff * diff
	}
	stats.StdDev = math.Sqrt(sumSquaredDiffs / float64(len(data)))

	return stats
}

// percentile calculates the specified percentile of sorted data with linear
// interpolation between adjacent ranks
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}

	index := (p / 100.0) * float64(len(sorted)-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))

	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	if lower == upper {
		return sorted[lower]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}
