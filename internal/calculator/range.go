package calculator

import (
	"math"
	"sort"
)

// RollingMax returns the maximum over a trailing window.
func RollingMax(values []float64, window int) Series {
	if window < 1 {
		return notReady(len(values))
	}
	out := make(Series, len(values))
	for i := window - 1; i < len(values); i++ {
		high := math.Inf(-1)
		for _, v := range values[i-window+1 : i+1] {
			if v > high {
				high = v
			}
		}
		out[i] = Point{Value: high, Ready: true}
	}
	return out
}

// PctChange returns values[i]/values[i-periods] - 1. Points whose base is
// zero or non-finite are not ready.
func PctChange(values []float64, periods int) Series {
	if periods < 1 {
		return notReady(len(values))
	}
	out := make(Series, len(values))
	for i := periods; i < len(values); i++ {
		base, cur := values[i-periods], values[i]
		if base == 0 || !finite(base) || !finite(cur) {
			continue
		}
		out[i] = Point{Value: cur/base - 1, Ready: true}
	}
	return out
}

// Percentile returns the p-th percentile (0-100) using linear interpolation
// between the closest ranks. It returns NaN for an empty input.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	frac := rank - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
