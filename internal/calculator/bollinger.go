package calculator

import "math"

// Bands holds the three Bollinger lines.
type Bands struct {
	Middle Series
	Upper  Series
	Lower  Series
}

// Bollinger computes a rolling mean and population standard deviation over a
// trailing window and returns middle ± k·σ.
func Bollinger(values []float64, window int, k float64) Bands {
	n := len(values)
	b := Bands{Middle: notReady(n), Upper: notReady(n), Lower: notReady(n)}
	mean := RollingMean(values, window)
	for i, m := range mean {
		if !m.Ready {
			continue
		}
		var sq float64
		for _, v := range values[i-window+1 : i+1] {
			d := v - m.Value
			sq += d * d
		}
		band := k * math.Sqrt(sq/float64(window))
		b.Middle[i] = m
		b.Upper[i] = Point{Value: m.Value + band, Ready: true}
		b.Lower[i] = Point{Value: m.Value - band, Ready: true}
	}
	return b
}

// Bandwidth returns (upper-lower)/middle. Points with a zero or non-finite
// middle band are not ready.
func (b Bands) Bandwidth() Series {
	out := make(Series, len(b.Middle))
	for i := range b.Middle {
		m, up, lo := b.Middle[i], b.Upper[i], b.Lower[i]
		if !m.Ready || m.Value == 0 {
			continue
		}
		bw := (up.Value - lo.Value) / m.Value
		if math.IsNaN(bw) || math.IsInf(bw, 0) {
			continue
		}
		out[i] = Point{Value: bw, Ready: true}
	}
	return out
}
