package model

import "time"

// Metrics carries auxiliary numbers reported by a rule.
type Metrics map[string]float64

// RuleResult is the outcome of one rule for one pair.
type RuleResult struct {
	Rule    string
	Passed  bool
	Metrics Metrics
}

// Alert is emitted when enough rules pass for a pair. It is never persisted.
type Alert struct {
	Address        string
	Symbol         string
	Rules          []string // passing rules in evaluation order
	Price          float64
	AvgVolumeValue Optional[float64]
	Liquidity      Optional[float64]
	MarketCapROC   Optional[float64] // percent
	ROCWindow      int
	CreatedAt      time.Time
}
