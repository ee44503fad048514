package model

import "time"

// CycleStatus is the outcome of one scan cycle.
type CycleStatus string

const (
	CycleSuccess CycleStatus = "SUCCESS"
	CyclePartial CycleStatus = "PARTIAL"
	CycleFailed  CycleStatus = "FAILED"
)

// CycleResult summarizes one pass over the candidate pairs.
type CycleResult struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Status     CycleStatus
	Candidates int
	Evaluated  int
	Skipped    int
	Rejected   int
	Alerts     int
	Reasons    []string
}

// NewCycleResult starts a successful cycle at the given time.
func NewCycleResult(start time.Time) *CycleResult {
	return &CycleResult{StartedAt: start, Status: CycleSuccess}
}

// Partial records a non-fatal failure. A failed cycle stays failed.
func (r *CycleResult) Partial(reason string) {
	r.Reasons = append(r.Reasons, reason)
	if r.Status == CycleSuccess {
		r.Status = CyclePartial
	}
}

// Fail marks the cycle as aborted.
func (r *CycleResult) Fail(reason string) {
	r.Reasons = append(r.Reasons, reason)
	r.Status = CycleFailed
}

// Duration returns how long the cycle ran.
func (r *CycleResult) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
