package strategy

import (
	"time"

	"DexSentinel/internal/model"
)

func fill(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// series builds an enriched series with the given closes and volumes. The
// volume value column equals raw volume (price 1 USD).
func series(closes, volumes, liquidity, mcap []float64) *model.EnrichedSeries {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.Candle, len(closes))
	for i, c := range closes {
		bars[i] = model.Candle{
			Time:   start.Add(time.Duration(i) * time.Minute),
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: volumes[i],
		}
	}
	es := &model.EnrichedSeries{
		Address:     "PAIR1",
		Symbol:      "TEST",
		Bars:        bars,
		VolumeValue: model.Some(append([]float64(nil), volumes...)),
	}
	if liquidity != nil {
		es.Liquidity = model.Some(liquidity)
	}
	if mcap != nil {
		es.MarketCap = model.Some(mcap)
	}
	return es
}

// zigzagCloses declines for decline bars, then alternates up/down moves and
// finishes with a jump on the last bar.
func zigzagCloses(n, decline int, up, down, jump float64) []float64 {
	closes := make([]float64, n)
	for i := 0; i < n-1; i++ {
		switch {
		case i < decline:
			closes[i] = 100 - 0.5*float64(i)
		case (i-decline)%2 == 0:
			closes[i] = closes[i-1] + up
		default:
			closes[i] = closes[i-1] - down
		}
	}
	closes[n-1] = closes[n-2] + jump
	return closes
}

// breakoutSeries is a 70-bar pair where the fast EMA crosses the slow EMA on
// the last bar with a doubled volume, RSI sits at 60 and market cap gained
// 8% over five bars. Bollinger and OBV rules do not fire.
func breakoutSeries() *model.EnrichedSeries {
	closes := zigzagCloses(70, 40, 1, 1, 2)
	vols := fill(70, 5000)
	vols[69] = 10000
	mcap := fill(70, 1e6)
	copy(mcap[65:], []float64{1.02e6, 1.04e6, 1.05e6, 1.07e6, 1.08e6})
	return series(closes, vols, fill(70, 50000), mcap)
}

// staleCrossSeries has the fast EMA already above the slow one two bars
// before the volume spike.
func staleCrossSeries() *model.EnrichedSeries {
	closes := zigzagCloses(70, 20, 1.05, 1.0, 1)
	vols := fill(70, 5000)
	vols[69] = 10000
	return series(closes, vols, fill(70, 50000), nil)
}

// squeezeSeries swings widely for 50 bars, goes flat, then closes above the
// upper band on the last bar.
func squeezeSeries() *model.EnrichedSeries {
	closes := make([]float64, 70)
	for i := range closes {
		switch {
		case i < 50 && i%2 == 0:
			closes[i] = 11
		case i < 50:
			closes[i] = 9
		default:
			closes[i] = 10
		}
	}
	closes[69] = 10.5
	return series(closes, fill(70, 5000), fill(70, 50000), nil)
}

// accumulationSeries grinds higher after an early spike that the price never
// revisits, while OBV keeps setting highs.
func accumulationSeries(spike bool) *model.EnrichedSeries {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 10 + 0.1*float64(i)
	}
	if spike {
		closes[15] = 30
	}
	return series(closes, fill(60, 100), fill(60, 50000), nil)
}
