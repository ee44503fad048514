package scanner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DexSentinel/internal/collector"
	"DexSentinel/internal/model"
	"DexSentinel/internal/recorder"
	"DexSentinel/internal/strategy"
)

type captureSink struct {
	name string
	err  error
	got  []string
}

func (c *captureSink) Name() string { return c.name }

func (c *captureSink) Send(_ context.Context, text string) error {
	c.got = append(c.got, text)
	return c.err
}

type countingEvaluator struct {
	calls int
	inner Evaluator
	panic bool
}

func (c *countingEvaluator) Evaluate(es *model.EnrichedSeries) strategy.Evaluation {
	c.calls++
	if c.panic {
		panic("bad series")
	}
	return c.inner.Evaluate(es)
}

var t0 = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

// breakoutBars is a 70-bar history whose last bar is a fresh EMA crossover on
// doubled volume with RSI at 60.
func breakoutBars(n int) []model.Candle {
	closes := make([]float64, 70)
	for i := 0; i < 69; i++ {
		switch {
		case i < 40:
			closes[i] = 100 - 0.5*float64(i)
		case (i-40)%2 == 0:
			closes[i] = closes[i-1] + 1
		default:
			closes[i] = closes[i-1] - 1
		}
	}
	closes[69] = closes[68] + 2

	bars := make([]model.Candle, 70)
	for i, c := range closes {
		v := 5000.0
		if i == 69 {
			v = 10000
		}
		bars[i] = model.Candle{Time: t0.Add(time.Duration(i) * time.Minute), Open: c, High: c, Low: c, Close: c, Volume: v}
	}
	return bars[70-n:]
}

func pair(addr string, age time.Duration, liq float64) model.Pair {
	return model.Pair{
		Address:   addr,
		Symbol:    "SYM" + addr,
		CreatedAt: t0.Add(-age),
		Snapshot: model.Snapshot{
			Liquidity: model.Some(liq),
			PriceUSD:  model.Some(1.0),
			MarketCap: model.Some(1e6),
		},
	}
}

func opts() Options {
	return Options{PairsPerScan: 20, Lookback: 120, MinBars: 60, Interval: 30 * time.Second, MaxBackoff: 2 * time.Minute}
}

func newDriver(src *collector.MockSource, eval Evaluator, sinks ...*captureSink) (*Driver, *captureSink, *recorder.MemoryRecorder) {
	console := &captureSink{name: "console"}
	rec := recorder.NewMemoryRecorder()
	deps := Deps{
		Candidates: src,
		Series:     src,
		Evaluator:  eval,
		Console:    console,
		Recorder:   rec,
	}
	for _, s := range sinks {
		deps.Sinks = append(deps.Sinks, s)
	}
	return NewDriver(opts(), deps), console, rec
}

func TestScanOnce_AlertDispatched(t *testing.T) {
	src := &collector.MockSource{
		PairList: []model.Pair{pair("A", time.Minute, 50000)},
		Bars:     map[string][]model.Candle{"A": breakoutBars(70)},
	}
	tg := &captureSink{name: "telegram"}
	d, console, rec := newDriver(src, strategy.NewEngine(strategy.DefaultParams(), nil), tg)

	res := d.ScanOnce(context.Background())
	assert.Equal(t, model.CycleSuccess, res.Status)
	assert.Equal(t, 1, res.Candidates)
	assert.Equal(t, 1, res.Evaluated)
	assert.Equal(t, 1, res.Alerts)

	require.Len(t, tg.got, 1)
	assert.Contains(t, tg.got[0], "<b>SYMA</b>  (signals: ema_cross, rsi_reclaim)")
	assert.Contains(t, tg.got[0], "Mcap ROC(5): 0.00%")
	require.Len(t, console.got, 1)
	assert.Equal(t, tg.got[0], console.got[0])

	s := rec.Snapshot()
	assert.Equal(t, 1, s.Alerts)
	assert.Equal(t, 1, s.RuleHits["ema_cross"])
}

func TestScanOnce_ShortSeriesSkippedWithoutEvaluation(t *testing.T) {
	src := &collector.MockSource{
		PairList: []model.Pair{pair("A", time.Minute, 50000)},
		Bars:     map[string][]model.Candle{"A": breakoutBars(59)},
	}
	eval := &countingEvaluator{inner: strategy.NewEngine(strategy.DefaultParams(), nil)}
	d, console, _ := newDriver(src, eval)

	res := d.ScanOnce(context.Background())
	assert.Equal(t, model.CycleSuccess, res.Status)
	assert.Equal(t, 1, res.Skipped)
	assert.Zero(t, eval.calls)
	assert.Empty(t, console.got)
}

func TestScanOnce_LowLiquidityRejected(t *testing.T) {
	src := &collector.MockSource{
		PairList: []model.Pair{pair("A", time.Minute, 29999)},
		Bars:     map[string][]model.Candle{"A": breakoutBars(70)},
	}
	d, console, _ := newDriver(src, strategy.NewEngine(strategy.DefaultParams(), nil))

	res := d.ScanOnce(context.Background())
	assert.Equal(t, 1, res.Rejected)
	assert.Zero(t, res.Alerts)
	assert.Empty(t, console.got)
}

func TestScanOnce_CandidateFailureFailsCycle(t *testing.T) {
	src := &collector.MockSource{PairsErr: errors.New("503")}
	d, _, _ := newDriver(src, strategy.NewEngine(strategy.DefaultParams(), nil))

	res := d.ScanOnce(context.Background())
	assert.Equal(t, model.CycleFailed, res.Status)
	assert.Empty(t, src.CandleCalls)
	require.Len(t, res.Reasons, 1)
	assert.Contains(t, res.Reasons[0], "503")
}

func TestScanOnce_SinkFailureIsPartial(t *testing.T) {
	src := &collector.MockSource{
		PairList: []model.Pair{pair("A", time.Minute, 50000), pair("B", 2*time.Minute, 50000)},
		Bars:     map[string][]model.Candle{"A": breakoutBars(70), "B": breakoutBars(70)},
	}
	broken := &captureSink{name: "telegram", err: errors.New("chat not found")}
	ok := &captureSink{name: "webhook"}
	d, console, _ := newDriver(src, strategy.NewEngine(strategy.DefaultParams(), nil), broken, ok)

	res := d.ScanOnce(context.Background())
	assert.Equal(t, model.CyclePartial, res.Status)
	assert.Equal(t, 2, res.Alerts, "a failing sink does not stop the cycle")
	assert.Len(t, console.got, 2)
	assert.Len(t, broken.got, 2)
	assert.Len(t, ok.got, 2)
}

func TestScanOnce_NewestPairsFirst(t *testing.T) {
	src := &collector.MockSource{
		PairList: []model.Pair{
			pair("old", time.Hour, 50000),
			pair("newest", time.Second, 50000),
			pair("mid", time.Minute, 50000),
			pair("", 0, 50000),
		},
	}
	d, _, _ := newDriver(src, strategy.NewEngine(strategy.DefaultParams(), nil))
	d.opts.PairsPerScan = 3

	res := d.ScanOnce(context.Background())
	assert.Equal(t, 3, res.Candidates)
	// the empty address is the newest pair and is skipped without a fetch
	assert.Equal(t, []string{"newest", "mid"}, src.CandleCalls)
	assert.Equal(t, 3, res.Skipped)
}

func TestScanOnce_SeriesErrorAndPanicAreIsolated(t *testing.T) {
	src := &collector.MockSource{
		PairList:  []model.Pair{pair("A", time.Minute, 50000), pair("B", 2*time.Minute, 50000)},
		Bars:      map[string][]model.Candle{"B": breakoutBars(70)},
		CandleErr: map[string]error{"A": errors.New("timeout")},
	}
	eval := &countingEvaluator{panic: true}
	d, _, _ := newDriver(src, eval)

	res := d.ScanOnce(context.Background())
	assert.Equal(t, model.CyclePartial, res.Status)
	assert.Equal(t, []string{"A", "B"}, src.CandleCalls)
	assert.Equal(t, 1, eval.calls)
	assert.Len(t, res.Reasons, 2)
}

func TestRun_BacksOffAfterFailures(t *testing.T) {
	src := &collector.MockSource{PairsErr: errors.New("down")}
	d, _, rec := newDriver(src, strategy.NewEngine(strategy.DefaultParams(), nil))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var waits []time.Duration
	d.sleep = func(_ context.Context, w time.Duration) error {
		waits = append(waits, w)
		switch len(waits) {
		case 4:
			src.PairsErr = nil
		case 6:
			cancel()
			return context.Canceled
		}
		return nil
	}

	err := d.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []time.Duration{
		30 * time.Second, 60 * time.Second, 2 * time.Minute, 2 * time.Minute,
		30 * time.Second, 30 * time.Second,
	}, waits)
	assert.Equal(t, 4, rec.Snapshot().Cycles[model.CycleFailed])
	assert.Equal(t, 2, rec.Snapshot().Cycles[model.CycleSuccess])
}

func TestRun_StopsOnCancel(t *testing.T) {
	src := &collector.MockSource{}
	d, _, _ := newDriver(src, strategy.NewEngine(strategy.DefaultParams(), nil))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, d.Run(ctx), context.Canceled)
}
