package calculator

import "DexSentinel/internal/model"

// Point is one indicator output. Ready is false until enough history has
// accumulated for the value to be defined.
type Point struct {
	Value float64
	Ready bool
}

// Series is an indicator output aligned index-for-index with its input.
type Series []Point

// At returns the value at index i. Negative indexes count from the end.
func (s Series) At(i int) (float64, bool) {
	if i < 0 {
		i += len(s)
	}
	if i < 0 || i >= len(s) {
		return 0, false
	}
	return s[i].Value, s[i].Ready
}

// Last returns the latest value.
func (s Series) Last() (float64, bool) { return s.At(-1) }

// Ready reports how many points are ready.
func (s Series) Ready() int {
	n := 0
	for _, p := range s {
		if p.Ready {
			n++
		}
	}
	return n
}

// Values returns the raw values, ignoring readiness.
func (s Series) Values() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Value
	}
	return out
}

func notReady(n int) Series { return make(Series, n) }

// Closes extracts close prices from bars.
func Closes(bars []model.Candle) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}

// Volumes extracts raw volumes from bars.
func Volumes(bars []model.Candle) []float64 {
	vols := make([]float64, len(bars))
	for i, b := range bars {
		vols[i] = b.Volume
	}
	return vols
}
