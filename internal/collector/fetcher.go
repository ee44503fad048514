package collector

import (
	"context"

	"DexSentinel/internal/model"
)

// CandidateSource lists candidate pairs to scan.
type CandidateSource interface {
	Pairs(ctx context.Context) ([]model.Pair, error)
	Name() string
}

// SeriesSource fetches the candle history of one pair. An unavailable series
// is returned as an empty slice, not an error.
type SeriesSource interface {
	Candles(ctx context.Context, address string, limit int) ([]model.Candle, error)
	Name() string
}
