package calculator

// lossFloor replaces a zero average loss so RS stays finite.
const lossFloor = 1e-9

// RSI computes the relative strength index using simple trailing means of
// gains and losses over window deltas. Points are ready from index window.
func RSI(values []float64, window int) Series {
	if window < 1 {
		return notReady(len(values))
	}
	out := make(Series, len(values))
	for i := window; i < len(values); i++ {
		var gain, loss float64
		for j := i - window + 1; j <= i; j++ {
			change := values[j] - values[j-1]
			if change > 0 {
				gain += change
			} else {
				loss -= change
			}
		}
		avgGain := gain / float64(window)
		avgLoss := loss / float64(window)
		if avgLoss == 0 {
			avgLoss = lossFloor
		}
		rs := avgGain / avgLoss
		out[i] = Point{Value: 100 - 100/(1+rs), Ready: true}
	}
	return out
}
