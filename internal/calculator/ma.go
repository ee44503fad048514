package calculator

// EMA computes the exponential moving average with smoothing factor
// 2/(span+1), seeded from the first value without bias adjustment.
// Points are ready from index span-1.
func EMA(values []float64, span int) Series {
	if span < 1 {
		return notReady(len(values))
	}
	out := make(Series, len(values))
	if len(values) == 0 {
		return out
	}
	alpha := 2.0 / (float64(span) + 1)
	ema := values[0]
	for i, v := range values {
		if i > 0 {
			ema = alpha*v + (1-alpha)*ema
		}
		out[i] = Point{Value: ema, Ready: i >= span-1}
	}
	return out
}

// RollingMean computes the simple moving average over a trailing window.
func RollingMean(values []float64, window int) Series {
	if window < 1 {
		return notReady(len(values))
	}
	out := make(Series, len(values))
	for i := window - 1; i < len(values); i++ {
		sum := 0.0
		for _, v := range values[i-window+1 : i+1] {
			sum += v
		}
		out[i] = Point{Value: sum / float64(window), Ready: true}
	}
	return out
}
