package collector

import (
	"context"
	"fmt"
	"time"

	"DexSentinel/internal/model"
)

// Enrich broadcasts the pair snapshot onto every bar. Volume value is only
// present when the snapshot carries a USD price.
func Enrich(pair model.Pair, bars []model.Candle) *model.EnrichedSeries {
	es := &model.EnrichedSeries{
		Address: pair.Address,
		Symbol:  pair.Symbol,
		Bars:    bars,
	}
	n := len(bars)

	if px, ok := pair.Snapshot.PriceUSD.Get(); ok {
		vv := make([]float64, n)
		for i, b := range bars {
			vv[i] = b.Volume * px
		}
		es.VolumeValue = model.Some(vv)
	}
	if liq, ok := pair.Snapshot.Liquidity.Get(); ok {
		es.Liquidity = model.Some(broadcast(n, liq))
	}
	if mc, ok := pair.Snapshot.MarketCap.Get(); ok {
		es.MarketCap = model.Some(broadcast(n, mc))
	}
	return es
}

func broadcast(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// MockSource returns controllable fixed data for development and testing.
type MockSource struct {
	PairList  []model.Pair
	Bars      map[string][]model.Candle
	Price     float64 // base price for generated bars when Bars has no entry
	Count     int     // generated bar count
	PairsErr  error
	CandleErr map[string]error

	CandleCalls []string
}

func (m *MockSource) Name() string { return "mock" }

func (m *MockSource) Pairs(_ context.Context) ([]model.Pair, error) {
	if m.PairsErr != nil {
		return nil, m.PairsErr
	}
	return append([]model.Pair(nil), m.PairList...), nil
}

func (m *MockSource) Candles(_ context.Context, address string, limit int) ([]model.Candle, error) {
	m.CandleCalls = append(m.CandleCalls, address)
	if err, ok := m.CandleErr[address]; ok {
		return nil, fmt.Errorf("mock candles %s: %w", address, err)
	}
	bars, ok := m.Bars[address]
	if !ok {
		if m.Price == 0 {
			return nil, nil
		}
		bars = generateMockBars(m.Price, m.Count)
	}
	if limit > 0 && len(bars) > limit {
		bars = bars[len(bars)-limit:]
	}
	return bars, nil
}

func generateMockBars(basePrice float64, count int) []model.Candle {
	bars := make([]model.Candle, count)
	start := time.Now().Add(-time.Duration(count) * time.Minute).Truncate(time.Minute)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.Candle{
			Time:   start.Add(time.Duration(i) * time.Minute),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 10000,
		}
	}
	return bars
}
