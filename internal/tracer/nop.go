package tracer

import "github.com/setevik/faulttrace/internal/event"

// Nop is the recorder used when diagnostics are disabled. Every report
// succeeds without recording anything, lifecycle and registration calls are
// accepted and ignored, and queries see an empty recorder. Callers are
// written once against Recorder and never branch on whether diagnostics are
// enabled.
type Nop struct{}

var _ Recorder = Nop{}

func (Nop) Init() error   { return nil }
func (Nop) Start() error  { return nil }
func (Nop) Deinit() error { return nil }

func (Nop) ReportError(event.SourceID, event.InstanceID, event.OperationID, event.ConditionID) error {
	return nil
}

func (Nop) ReportRuntimeError(event.SourceID, event.InstanceID, event.OperationID, event.ConditionID) error {
	return nil
}

func (Nop) ReportTransientFault(event.SourceID, event.InstanceID, event.OperationID, event.ConditionID) error {
	return nil
}

func (Nop) RegisterObserver(Observer) error                { return nil }
func (Nop) SetFilter(event.SourceID, event.Severity) error { return nil }
func (Nop) Statistics() (Statistics, error)                { return Statistics{}, nil }
func (Nop) LastError() (event.Record, error)               { return event.Record{}, ErrEmpty }
func (Nop) IterateErrors(func(event.Record)) int           { return 0 }
func (Nop) ClearErrors() error                             { return nil }
func (Nop) VersionInfo() Info                              { return versionInfo() }
