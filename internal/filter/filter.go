// Package filter implements per-source minimum-severity gating.
package filter

import (
	"fmt"

	"github.com/setevik/faulttrace/internal/event"
)

// SourceGlobal is the sentinel source ID that configures the fallback
// threshold applied to every source without an explicit entry.
const SourceGlobal event.SourceID = 0xFFFF

// Table maps source IDs to minimum-severity thresholds. The zero threshold
// (warning) suppresses nothing, so a fresh table reports everything.
// Not safe for concurrent mutation; Set is a setup-time operation.
type Table struct {
	global    event.Severity
	perSource map[event.SourceID]event.Severity
}

// NewTable creates a Table with the report-everything default.
func NewTable() *Table {
	return &Table{
		global:    event.SevWarning,
		perSource: make(map[event.SourceID]event.Severity),
	}
}

// Set records a minimum-severity threshold for one source, or for the global
// fallback when source is SourceGlobal. An explicit per-source entry takes
// precedence over the fallback from then on.
func (t *Table) Set(source event.SourceID, min event.Severity) error {
	if !min.Valid() {
		return fmt.Errorf("setting filter for source %#04x: invalid severity %d", uint16(source), int(min))
	}
	if source == SourceGlobal {
		t.global = min
		return nil
	}
	t.perSource[source] = min
	return nil
}

// Threshold returns the effective minimum severity for a source: its
// explicit entry if one was configured, otherwise the global fallback.
func (t *Table) Threshold(source event.SourceID) event.Severity {
	if min, ok := t.perSource[source]; ok {
		return min
	}
	return t.global
}

// Suppressed reports whether a condition of the given severity from the
// given source falls below the effective threshold.
func (t *Table) Suppressed(source event.SourceID, sev event.Severity) bool {
	return sev < t.Threshold(source)
}

// Reset restores the report-everything default and drops every per-source
// entry.
func (t *Table) Reset() {
	t.global = event.SevWarning
	t.perSource = make(map[event.SourceID]event.Severity)
}
