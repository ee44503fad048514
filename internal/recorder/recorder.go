package recorder

import (
	"errors"

	"DexSentinel/internal/model"
)

// Recorder collects scan history for the lifetime of the process.
type Recorder interface {
	RecordCycle(res *model.CycleResult) error
	RecordRuleHits(rules []string) error
	RecordAlert(a *model.Alert) error
	Close() error
}

type multi []Recorder

// Multi fans every call out to all recorders and joins their errors.
func Multi(recs ...Recorder) Recorder {
	out := make(multi, 0, len(recs))
	for _, r := range recs {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

func (m multi) RecordCycle(res *model.CycleResult) error {
	var errs []error
	for _, r := range m {
		errs = append(errs, r.RecordCycle(res))
	}
	return errors.Join(errs...)
}

func (m multi) RecordRuleHits(rules []string) error {
	var errs []error
	for _, r := range m {
		errs = append(errs, r.RecordRuleHits(rules))
	}
	return errors.Join(errs...)
}

func (m multi) RecordAlert(a *model.Alert) error {
	var errs []error
	for _, r := range m {
		errs = append(errs, r.RecordAlert(a))
	}
	return errors.Join(errs...)
}

func (m multi) Close() error {
	var errs []error
	for _, r := range m {
		errs = append(errs, r.Close())
	}
	return errors.Join(errs...)
}
