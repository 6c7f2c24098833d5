// Package event defines the core data model for faulttrace diagnostic events.
package event

import (
	"fmt"

	"github.com/google/uuid"
)

// SourceID identifies the reporting module. Project-scoped, 16-bit range.
type SourceID uint16

// InstanceID distinguishes multiple instances of the same source
// (e.g. which of several identical peripherals).
type InstanceID uint8

// OperationID identifies which API of the source raised the condition.
type OperationID uint8

// ConditionID is the source-scoped error or fault code.
type ConditionID uint8

// Severity classifies how serious a diagnosed condition is.
// Values are ordered: Warning < Error < Fatal.
type Severity int

const (
	SevWarning Severity = iota
	SevError
	SevFatal
)

// Valid reports whether s is one of the defined severity levels.
func (s Severity) Valid() bool {
	return s >= SevWarning && s <= SevFatal
}

// Label returns a human-readable label for the severity.
func (s Severity) Label() string {
	switch s {
	case SevWarning:
		return "warning"
	case SevError:
		return "error"
	case SevFatal:
		return "fatal"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

func (s Severity) String() string {
	return s.Label()
}

// ParseSeverity converts a config/scenario string into a Severity.
func ParseSeverity(name string) (Severity, error) {
	switch name {
	case "warning":
		return SevWarning, nil
	case "error":
		return SevError, nil
	case "fatal":
		return SevFatal, nil
	default:
		return 0, fmt.Errorf("unknown severity %q", name)
	}
}

// Class distinguishes the three report operations. Storage and filtering
// treat all classes identically; only statistics accounting differs.
type Class int

const (
	ClassDevelopment Class = iota
	ClassRuntime
	ClassTransient
)

// Label returns a human-readable label for the report class.
func (c Class) Label() string {
	switch c {
	case ClassDevelopment:
		return "development"
	case ClassRuntime:
		return "runtime"
	case ClassTransient:
		return "transient"
	default:
		return fmt.Sprintf("class(%d)", int(c))
	}
}

// Severity returns the severity implied by the report class. Development and
// runtime errors record as errors, transient hardware faults as warnings.
func (c Class) Severity() Severity {
	if c == ClassTransient {
		return SevWarning
	}
	return SevError
}

// Signature identifies one distinct diagnosed condition. The store holds at
// most one record per signature.
type Signature struct {
	Source    SourceID
	Instance  InstanceID
	Operation OperationID
	Condition ConditionID
}

func (s Signature) String() string {
	return fmt.Sprintf("%#04x/%d/%#02x/%#02x",
		uint16(s.Source), s.Instance, uint8(s.Operation), uint8(s.Condition))
}

// Record is one stored diagnosed condition. Timestamp and Occurrences are
// refreshed when the same signature is reported again; everything else is
// fixed when the record enters the store.
type Record struct {
	ID          string
	Signature   Signature
	Severity    Severity
	Timestamp   uint64
	Occurrences uint32
}

// New creates a Record for a signature's first occurrence, with a generated
// UUID and the given monotonic timestamp.
func New(sig Signature, sev Severity, ts uint64) Record {
	return Record{
		ID:          uuid.NewString(),
		Signature:   sig,
		Severity:    sev,
		Timestamp:   ts,
		Occurrences: 1,
	}
}
