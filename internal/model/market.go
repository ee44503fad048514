package model

import "time"

// Candle represents a single candlestick bar.
type Candle struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Snapshot holds point-in-time market facts for a pair at fetch time.
type Snapshot struct {
	Liquidity Optional[float64] // quote-currency units
	PriceUSD  Optional[float64]
	MarketCap Optional[float64] // FDV, falling back to market cap
}

// Pair describes a candidate trading pair returned by the candidate source.
type Pair struct {
	Address   string
	Symbol    string
	CreatedAt time.Time
	Snapshot  Snapshot
}

// EnrichedSeries is a candle series plus the value-denominated columns
// derived from the pair snapshot. Columns are absent when the snapshot
// field they come from is absent.
type EnrichedSeries struct {
	Address     string
	Symbol      string
	Bars        []Candle
	VolumeValue Optional[[]float64]
	Liquidity   Optional[[]float64]
	MarketCap   Optional[[]float64]
}

// Len returns the number of bars.
func (s *EnrichedSeries) Len() int { return len(s.Bars) }

// Last returns the latest bar. The series must not be empty.
func (s *EnrichedSeries) Last() Candle { return s.Bars[len(s.Bars)-1] }
