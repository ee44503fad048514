package calculator

// OBV computes on-balance volume: volume accumulated with the sign of the
// close-to-close change. The first bar has no direction and contributes zero.
func OBV(closes, volumes []float64) Series {
	if len(closes) != len(volumes) {
		return notReady(len(closes))
	}
	out := make(Series, len(closes))
	total := 0.0
	for i := range closes {
		if i > 0 {
			switch change := closes[i] - closes[i-1]; {
			case change > 0:
				total += volumes[i]
			case change < 0:
				total -= volumes[i]
			}
		}
		out[i] = Point{Value: total, Ready: true}
	}
	return out
}
