package tracer

import (
	"github.com/setevik/faulttrace/internal/event"
	"github.com/setevik/faulttrace/internal/ring"
)

// Statistics is a flat record of monotonically increasing counters, reset
// only by ClearErrors or a full re-initialization.
type Statistics struct {
	// Total counts every accepted (non-suppressed) report.
	Total uint64
	// Unique counts signatures that entered the store for the first time.
	Unique uint64
	// Overflows counts live records evicted by the ring store.
	Overflows uint64

	RuntimeErrors   uint64
	TransientFaults uint64

	Warnings uint64
	Errors   uint64
	Fatals   uint64

	// Suppressed counts reports rejected by the severity filter. Such
	// reports increment nothing else.
	Suppressed uint64
}

// accept folds one accepted report into the counters.
func (s *Statistics) accept(class event.Class, sev event.Severity, out ring.Outcome) {
	s.Total++
	if out.Created {
		s.Unique++
	}
	if out.Evicted {
		s.Overflows++
	}

	switch class {
	case event.ClassRuntime:
		s.RuntimeErrors++
	case event.ClassTransient:
		s.TransientFaults++
	}

	switch sev {
	case event.SevWarning:
		s.Warnings++
	case event.SevError:
		s.Errors++
	case event.SevFatal:
		s.Fatals++
	}
}
