package strategy

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"DexSentinel/internal/calculator"
	"DexSentinel/internal/model"
)

// Evaluation is the full outcome of evaluating one pair.
type Evaluation struct {
	Guard   GuardResult
	Results []model.RuleResult
	Passing []string
	Alert   *model.Alert // nil when fewer than MinSignals rules passed
}

// Engine runs the guard, the rule set and the vote threshold.
type Engine struct {
	params Params
	rules  []Rule
	log    *zap.Logger
	now    func() time.Time
}

// NewEngine creates an Engine with the standard rule set.
func NewEngine(p Params, log *zap.Logger) *Engine {
	return NewEngineWithRules(p, p.Rules(), log)
}

// NewEngineWithRules creates an Engine that evaluates the given rules in order.
func NewEngineWithRules(p Params, rules []Rule, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{params: p, rules: rules, log: log, now: time.Now}
}

// Params returns the engine thresholds.
func (e *Engine) Params() Params { return e.params }

// RuleNames lists the rules in evaluation order.
func (e *Engine) RuleNames() []string {
	names := make([]string, len(e.rules))
	for i, r := range e.rules {
		names[i] = r.Name
	}
	return names
}

// Evaluate applies the guard and, when admitted, every rule. Each passing
// rule is one vote; an alert is built when the votes reach MinSignals.
func (e *Engine) Evaluate(es *model.EnrichedSeries) Evaluation {
	ev := Evaluation{Guard: e.params.Guard(es)}
	if !ev.Guard.Admitted {
		return ev
	}

	ev.Results = make([]model.RuleResult, 0, len(e.rules))
	for _, r := range e.rules {
		res := e.run(r, es)
		ev.Results = append(ev.Results, res)
		if res.Passed {
			ev.Passing = append(ev.Passing, r.Name)
		}
	}

	if len(ev.Passing) >= e.params.MinSignals {
		ev.Alert = e.buildAlert(es, ev.Passing)
	}
	return ev
}

// run evaluates one rule, treating a panic as "did not fire".
func (e *Engine) run(r Rule, es *model.EnrichedSeries) (res model.RuleResult) {
	res = model.RuleResult{Rule: r.Name, Metrics: model.Metrics{}}
	defer func() {
		if rec := recover(); rec != nil {
			e.log.Warn("rule evaluation failed",
				zap.String("rule", r.Name),
				zap.String("symbol", es.Symbol),
				zap.String("panic", fmt.Sprint(rec)))
			res = model.RuleResult{Rule: r.Name, Metrics: model.Metrics{}}
		}
	}()
	passed, metrics := r.Check(es)
	res.Passed = passed
	if metrics != nil {
		res.Metrics = metrics
	}
	return res
}

func (e *Engine) buildAlert(es *model.EnrichedSeries, passing []string) *model.Alert {
	a := &model.Alert{
		Address:   es.Address,
		Symbol:    es.Symbol,
		Rules:     append([]string(nil), passing...),
		Price:     es.Last().Close,
		ROCWindow: e.params.ROCWindow,
		CreatedAt: e.now(),
	}
	if vv, ok := es.VolumeValue.Get(); ok {
		if avg, ready := calculator.RollingMean(vv, e.params.VolumeWindow).Last(); ready {
			a.AvgVolumeValue = model.Some(avg)
		}
	}
	if liq, ok := es.Liquidity.Get(); ok && len(liq) > 0 {
		a.Liquidity = model.Some(liq[len(liq)-1])
	}
	if roc, ok := MarketCapROC(es, e.params.ROCWindow); ok {
		a.MarketCapROC = model.Some(roc)
	}
	return a
}
