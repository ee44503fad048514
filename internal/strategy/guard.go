package strategy

import (
	"DexSentinel/internal/calculator"
	"DexSentinel/internal/model"
)

// GuardResult is the admission decision for one pair.
type GuardResult struct {
	Admitted    bool
	VolumeOK    bool
	LiquidityOK bool
	AvgVolume   float64
	Liquidity   float64
}

// Guard checks the latest volume and liquidity against the configured
// minimums. Both must pass for the pair to be admitted to rule evaluation.
func (p Params) Guard(es *model.EnrichedSeries) GuardResult {
	var g GuardResult
	if es.Len() == 0 {
		return g
	}

	// Value-denominated volume when the price is known, raw units otherwise.
	vols, ok := es.VolumeValue.Get()
	if !ok {
		vols = calculator.Volumes(es.Bars)
	}
	if avg, ready := calculator.RollingMean(vols, p.VolumeWindow).Last(); ready {
		g.AvgVolume = avg
		g.VolumeOK = avg >= p.MinVolume
	}

	if liq, ok := es.Liquidity.Get(); ok && len(liq) > 0 {
		g.Liquidity = liq[len(liq)-1]
		g.LiquidityOK = g.Liquidity >= p.MinLiquidity
	}

	g.Admitted = g.VolumeOK && g.LiquidityOK
	return g
}
