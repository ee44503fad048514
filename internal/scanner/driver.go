package scanner

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"DexSentinel/internal/collector"
	"DexSentinel/internal/model"
	"DexSentinel/internal/notifier"
	"DexSentinel/internal/recorder"
	"DexSentinel/internal/strategy"
)

// Options controls one scan cycle and the wait between cycles.
type Options struct {
	PairsPerScan int
	Lookback     int
	MinBars      int
	Interval     time.Duration
	MaxBackoff   time.Duration
}

// Evaluator decides whether a pair produces an alert.
type Evaluator interface {
	Evaluate(es *model.EnrichedSeries) strategy.Evaluation
}

// Deps are the collaborators of a Driver.
type Deps struct {
	Candidates collector.CandidateSource
	Series     collector.SeriesSource
	Evaluator  Evaluator
	Console    notifier.Sink   // always written, tags stripped
	Sinks      []notifier.Sink // best-effort
	Recorder   recorder.Recorder
	Logger     *zap.Logger
}

// Driver runs scan cycles sequentially.
type Driver struct {
	opts Options
	deps Deps
	log  *zap.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewDriver creates a Driver. Nil recorder and logger are replaced with no-ops.
func NewDriver(opts Options, deps Deps) *Driver {
	if deps.Recorder == nil {
		deps.Recorder = recorder.NewNoopRecorder()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Driver{
		opts:  opts,
		deps:  deps,
		log:   deps.Logger,
		now:   time.Now,
		sleep: sleepContext,
	}
}

// ScanOnce runs a single cycle over the newest candidate pairs.
func (d *Driver) ScanOnce(ctx context.Context) model.CycleResult {
	res := model.NewCycleResult(d.now())

	pairs, err := d.deps.Candidates.Pairs(ctx)
	if err != nil {
		d.log.Error("fetch candidates", zap.String("source", d.deps.Candidates.Name()), zap.Error(err))
		res.Fail(fmt.Sprintf("candidates: %v", err))
		res.FinishedAt = d.now()
		return *res
	}

	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].CreatedAt.After(pairs[j].CreatedAt) })
	if d.opts.PairsPerScan > 0 && len(pairs) > d.opts.PairsPerScan {
		pairs = pairs[:d.opts.PairsPerScan]
	}
	res.Candidates = len(pairs)

	for _, pair := range pairs {
		if ctx.Err() != nil {
			res.Partial("cancelled")
			break
		}
		d.scanPair(ctx, pair, res)
	}

	res.FinishedAt = d.now()
	return *res
}

func (d *Driver) scanPair(ctx context.Context, pair model.Pair, res *model.CycleResult) {
	if pair.Address == "" {
		res.Skipped++
		return
	}
	log := d.log.With(zap.String("symbol", pair.Symbol), zap.String("address", pair.Address))

	bars, err := d.deps.Series.Candles(ctx, pair.Address, d.opts.Lookback)
	if err != nil {
		log.Warn("fetch candles", zap.Error(err))
		res.Skipped++
		res.Partial(fmt.Sprintf("candles %s: %v", pair.Address, err))
		return
	}
	if len(bars) < d.opts.MinBars {
		log.Debug("not enough history", zap.Int("bars", len(bars)))
		res.Skipped++
		return
	}

	ev, err := d.evaluate(collector.Enrich(pair, bars))
	if err != nil {
		log.Error("evaluate pair", zap.Error(err))
		res.Partial(fmt.Sprintf("evaluate %s: %v", pair.Address, err))
		return
	}
	if !ev.Guard.Admitted {
		res.Rejected++
		return
	}
	res.Evaluated++
	if err := d.deps.Recorder.RecordRuleHits(ev.Passing); err != nil {
		log.Warn("record rule hits", zap.Error(err))
	}
	if ev.Alert == nil {
		return
	}

	res.Alerts++
	d.dispatch(ctx, ev.Alert, res)
	if err := d.deps.Recorder.RecordAlert(ev.Alert); err != nil {
		log.Warn("record alert", zap.Error(err))
	}
}

// evaluate runs the evaluator, converting a panic into an error.
func (d *Driver) evaluate(es *model.EnrichedSeries) (ev strategy.Evaluation, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return d.deps.Evaluator.Evaluate(es), nil
}

// dispatch writes the alert to the console and every sink. Sink failures are
// logged and mark the cycle partial.
func (d *Driver) dispatch(ctx context.Context, a *model.Alert, res *model.CycleResult) {
	text := notifier.FormatAlert(a)
	d.log.Info("alert", zap.String("symbol", a.Symbol), zap.Strings("rules", a.Rules))

	if d.deps.Console != nil {
		if err := d.deps.Console.Send(ctx, text); err != nil {
			d.log.Warn("console write", zap.Error(err))
		}
	}
	for _, s := range d.deps.Sinks {
		if err := s.Send(ctx, text); err != nil {
			d.log.Error("alert delivery failed", zap.String("sink", s.Name()), zap.String("symbol", a.Symbol), zap.Error(err))
			res.Partial(fmt.Sprintf("sink %s: %v", s.Name(), err))
		}
	}
}

// RunOnce runs one cycle and records it.
func (d *Driver) RunOnce(ctx context.Context) model.CycleResult {
	res := d.ScanOnce(ctx)
	if err := d.deps.Recorder.RecordCycle(&res); err != nil {
		d.log.Warn("record cycle", zap.Error(err))
	}
	d.log.Info("cycle finished",
		zap.String("status", string(res.Status)),
		zap.Int("candidates", res.Candidates),
		zap.Int("evaluated", res.Evaluated),
		zap.Int("skipped", res.Skipped),
		zap.Int("rejected", res.Rejected),
		zap.Int("alerts", res.Alerts),
		zap.Duration("took", res.Duration()))
	return res
}

// Run loops cycles until ctx is cancelled. Failed cycles back off
// exponentially up to MaxBackoff; any other outcome resets the backoff.
func (d *Driver) Run(ctx context.Context) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = d.opts.Interval
	b.Multiplier = 2
	b.RandomizationFactor = 0
	if d.opts.MaxBackoff > 0 {
		b.MaxInterval = d.opts.MaxBackoff
	}
	b.Reset()

	for {
		res := d.RunOnce(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		wait := d.nextWait(res.Status, b)
		if res.Status == model.CycleFailed {
			d.log.Warn("cycle failed, backing off", zap.Duration("wait", wait), zap.Strings("reasons", res.Reasons))
		}
		if err := d.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

func (d *Driver) nextWait(status model.CycleStatus, b *backoff.ExponentialBackOff) time.Duration {
	if status != model.CycleFailed {
		b.Reset()
		return d.opts.Interval
	}
	wait := b.NextBackOff()
	if wait < d.opts.Interval {
		wait = d.opts.Interval
	}
	if d.opts.MaxBackoff > 0 && wait > d.opts.MaxBackoff {
		wait = d.opts.MaxBackoff
	}
	return wait
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
