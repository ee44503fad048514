package recorder

import (
	"sync"
	"time"

	"DexSentinel/internal/model"
)

const recentAlerts = 20

// Stats is a point-in-time copy of the in-memory counters.
type Stats struct {
	StartedAt    time.Time
	Cycles       map[model.CycleStatus]int
	Evaluated    int
	Skipped      int
	Rejected     int
	Alerts       int
	RuleHits     map[string]int
	LastCycle    *model.CycleResult
	RecentAlerts []model.Alert // newest last
}

// TotalCycles sums cycles across statuses.
func (s Stats) TotalCycles() int {
	n := 0
	for _, c := range s.Cycles {
		n += c
	}
	return n
}

// MemoryRecorder keeps process-lifetime counters in memory. Nothing survives
// a restart.
type MemoryRecorder struct {
	mu    sync.Mutex
	stats Stats
}

// NewMemoryRecorder creates an empty MemoryRecorder.
func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{stats: Stats{
		StartedAt: time.Now(),
		Cycles:    make(map[model.CycleStatus]int),
		RuleHits:  make(map[string]int),
	}}
}

func (m *MemoryRecorder) RecordCycle(res *model.CycleResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.Cycles[res.Status]++
	m.stats.Evaluated += res.Evaluated
	m.stats.Skipped += res.Skipped
	m.stats.Rejected += res.Rejected
	c := *res
	c.Reasons = append([]string(nil), res.Reasons...)
	m.stats.LastCycle = &c
	return nil
}

func (m *MemoryRecorder) RecordRuleHits(rules []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range rules {
		m.stats.RuleHits[r]++
	}
	return nil
}

func (m *MemoryRecorder) RecordAlert(a *model.Alert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.Alerts++
	cp := *a
	cp.Rules = append([]string(nil), a.Rules...)
	m.stats.RecentAlerts = append(m.stats.RecentAlerts, cp)
	if over := len(m.stats.RecentAlerts) - recentAlerts; over > 0 {
		m.stats.RecentAlerts = append([]model.Alert(nil), m.stats.RecentAlerts[over:]...)
	}
	return nil
}

func (m *MemoryRecorder) Close() error { return nil }

// Snapshot returns a copy of the current counters.
func (m *MemoryRecorder) Snapshot() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.stats
	s.Cycles = make(map[model.CycleStatus]int, len(m.stats.Cycles))
	for k, v := range m.stats.Cycles {
		s.Cycles[k] = v
	}
	s.RuleHits = make(map[string]int, len(m.stats.RuleHits))
	for k, v := range m.stats.RuleHits {
		s.RuleHits[k] = v
	}
	s.RecentAlerts = append([]model.Alert(nil), m.stats.RecentAlerts...)
	if m.stats.LastCycle != nil {
		c := *m.stats.LastCycle
		s.LastCycle = &c
	}
	return s
}
