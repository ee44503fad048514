package recorder

import (
	"github.com/prometheus/client_golang/prometheus"

	"DexSentinel/internal/model"
)

const namespace = "dexsentinel"

// MetricsRecorder exports scan counters to Prometheus.
type MetricsRecorder struct {
	cycles   *prometheus.CounterVec
	pairs    *prometheus.CounterVec
	alerts   prometheus.Counter
	ruleHits *prometheus.CounterVec
	duration prometheus.Gauge
}

// NewMetricsRecorder creates the collectors and registers them with reg.
func NewMetricsRecorder(reg prometheus.Registerer) *MetricsRecorder {
	m := &MetricsRecorder{
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Scan cycles by final status",
		}, []string{"status"}),
		pairs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pairs_total",
			Help:      "Pairs processed by outcome",
		}, []string{"outcome"}),
		alerts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_total",
			Help:      "Alerts emitted",
		}),
		ruleHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rule_hits_total",
			Help:      "Rule passes on admitted pairs",
		}, []string{"rule"}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Duration of the last scan cycle",
		}),
	}
	reg.MustRegister(m.cycles, m.pairs, m.alerts, m.ruleHits, m.duration)
	return m
}

func (m *MetricsRecorder) RecordCycle(res *model.CycleResult) error {
	m.cycles.WithLabelValues(string(res.Status)).Inc()
	m.pairs.WithLabelValues("evaluated").Add(float64(res.Evaluated))
	m.pairs.WithLabelValues("skipped").Add(float64(res.Skipped))
	m.pairs.WithLabelValues("rejected").Add(float64(res.Rejected))
	m.duration.Set(res.Duration().Seconds())
	return nil
}

func (m *MetricsRecorder) RecordRuleHits(rules []string) error {
	for _, r := range rules {
		m.ruleHits.WithLabelValues(r).Inc()
	}
	return nil
}

func (m *MetricsRecorder) RecordAlert(_ *model.Alert) error {
	m.alerts.Inc()
	return nil
}

func (m *MetricsRecorder) Close() error { return nil }
