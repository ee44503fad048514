package strategy

import (
	"math"

	"DexSentinel/internal/calculator"
	"DexSentinel/internal/model"
)

// Rule names, in evaluation order.
const (
	RuleEMACross     = "ema_cross"
	RuleBollBreakout = "boll_breakout"
	RuleRSIReclaim   = "rsi_reclaim"
	RuleOBVLeads     = "obv_leads"
	RuleMcapROC      = "mcap_roc"
)

// Rule is a named predicate over an enriched series. A rule that cannot be
// evaluated returns false with no metrics.
type Rule struct {
	Name  string
	Check func(es *model.EnrichedSeries) (bool, model.Metrics)
}

// Rules returns the fixed rule set in evaluation order.
func (p Params) Rules() []Rule {
	return []Rule{
		{Name: RuleEMACross, Check: p.emaCross},
		{Name: RuleBollBreakout, Check: p.bollBreakout},
		{Name: RuleRSIReclaim, Check: p.rsiReclaim},
		{Name: RuleOBVLeads, Check: p.obvLeads},
		{Name: RuleMcapROC, Check: p.mcapROC},
	}
}

// emaCross fires on a fresh fast/slow EMA bullish crossover confirmed by a
// volume spike on the same bar.
func (p Params) emaCross(es *model.EnrichedSeries) (bool, model.Metrics) {
	vv, ok := es.VolumeValue.Get()
	if !ok || es.Len() < 2 {
		return false, model.Metrics{}
	}
	closes := calculator.Closes(es.Bars)
	fast := calculator.EMA(closes, p.EMAFast)
	slow := calculator.EMA(closes, p.EMASlow)
	fPrev, ok1 := fast.At(-2)
	sPrev, ok2 := slow.At(-2)
	fLast, ok3 := fast.Last()
	sLast, ok4 := slow.Last()
	if !(ok1 && ok2 && ok3 && ok4) {
		return false, model.Metrics{}
	}
	cross := fPrev < sPrev && fLast > sLast

	vols := make([]float64, len(vv))
	for i, v := range vv {
		if !math.IsNaN(v) {
			vols[i] = v
		}
	}
	avg, ready := calculator.RollingMean(vols, p.VolumeWindow).Last()
	if !ready {
		return false, model.Metrics{}
	}
	if avg == 0 {
		avg = 1
	}
	last := vols[len(vols)-1]
	return cross && last > p.VolMultConfirm*avg, model.Metrics{"vol_mult": last / avg}
}

// bollBreakout fires when the close breaks above the upper band while the
// bandwidth sits in the bottom percentile of its recent range.
func (p Params) bollBreakout(es *model.EnrichedSeries) (bool, model.Metrics) {
	closes := calculator.Closes(es.Bars)
	bands := calculator.Bollinger(closes, p.BollWindow, p.BollK)
	bw := bands.Bandwidth()
	if len(bw) < p.SqueezeLookback || p.SqueezeLookback < 1 {
		return false, model.Metrics{}
	}
	recent := bw[len(bw)-p.SqueezeLookback:]
	if recent.Ready() < p.SqueezeLookback {
		return false, model.Metrics{}
	}
	threshold := calculator.Percentile(recent.Values(), p.SqueezePercentile)
	current, _ := bw.Last()
	upper, ok := bands.Upper.Last()
	if !ok {
		return false, model.Metrics{}
	}
	squeeze := current <= threshold
	breakout := closes[len(closes)-1] > upper
	return squeeze && breakout, model.Metrics{"bandwidth": current, "bw_pct20": threshold}
}

// rsiReclaim fires when RSI closes above the midline.
func (p Params) rsiReclaim(es *model.EnrichedSeries) (bool, model.Metrics) {
	r, ok := calculator.RSI(calculator.Closes(es.Bars), p.RSIWindow).Last()
	if !ok || math.IsNaN(r) {
		return false, model.Metrics{}
	}
	return r > p.RSILevel, model.Metrics{"rsi": r}
}

// obvLeads fires when OBV makes a new lookback high while price does not.
func (p Params) obvLeads(es *model.EnrichedSeries) (bool, model.Metrics) {
	closes := calculator.Closes(es.Bars)
	obv := calculator.OBV(closes, calculator.Volumes(es.Bars))
	priceHigh, ok1 := calculator.RollingMax(closes, p.OBVLookback).At(-2)
	obvHigh, ok2 := calculator.RollingMax(obv.Values(), p.OBVLookback).At(-2)
	if !ok1 || !ok2 {
		return false, model.Metrics{}
	}
	lastOBV, _ := obv.Last()
	priceHH := closes[len(closes)-1] > priceHigh
	obvHH := lastOBV > obvHigh
	return obvHH && !priceHH, model.Metrics{"obv": lastOBV}
}

// mcapROC fires when market cap rose more than the threshold over the
// lookback window. Inert without market cap data.
func (p Params) mcapROC(es *model.EnrichedSeries) (bool, model.Metrics) {
	roc, ok := MarketCapROC(es, p.ROCWindow)
	if !ok {
		return false, model.Metrics{}
	}
	return roc > p.ROCThreshold, model.Metrics{"roc_pct": roc}
}

// MarketCapROC returns the percentage change of market cap over window bars
// at the latest bar.
func MarketCapROC(es *model.EnrichedSeries, window int) (float64, bool) {
	mcap, ok := es.MarketCap.Get()
	if !ok {
		return 0, false
	}
	v, ok := calculator.PctChange(mcap, window).Last()
	if !ok {
		return 0, false
	}
	return v * 100, true
}
