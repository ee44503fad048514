package recorder

import "DexSentinel/internal/model"

// NoopRecorder discards everything.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordCycle(_ *model.CycleResult) error { return nil }
func (n *NoopRecorder) RecordRuleHits(_ []string) error        { return nil }
func (n *NoopRecorder) RecordAlert(_ *model.Alert) error       { return nil }
func (n *NoopRecorder) Close() error                           { return nil }
