// Package ring implements the deduplicating fixed-capacity record store.
//
// The store is a plain array with a write cursor and a valid-entry count.
// Reporting a signature already present bumps its occurrence count instead
// of consuming a slot, so one noisy source cannot starve the buffer of
// other distinct conditions. Once full, inserting a new signature evicts
// the oldest slot in write order.
package ring

import (
	"log/slog"

	"github.com/setevik/faulttrace/internal/event"
)

// Store is a fixed-capacity circular collection of event records, holding at
// most one record per signature. It is not safe for concurrent use; callers
// serialize access themselves.
type Store struct {
	slots  []event.Record
	cursor int
	count  int
	// latest is the slot most recently written or bumped, so Latest does
	// not have to re-derive it from the cursor after a bump.
	latest int
}

// Outcome describes what InsertOrBump did to the store.
type Outcome struct {
	// Created is true if a new record entered the store (the signature was
	// not already present).
	Created bool
	// Evicted is true if creating the record overwrote a live entry.
	Evicted bool
}

// NewStore creates a Store with the given capacity. Capacity must be at
// least 1; anything smaller is clamped.
func NewStore(capacity int) *Store {
	if capacity < 1 {
		capacity = 1
	}
	return &Store{slots: make([]event.Record, capacity)}
}

// Cap returns the fixed capacity.
func (s *Store) Cap() int {
	return len(s.slots)
}

// Len returns the number of valid records currently held.
func (s *Store) Len() int {
	return s.count
}

// InsertOrBump records one occurrence of the given signature. A signature
// already in the store has its occurrence count incremented and timestamp
// refreshed; a new signature takes the slot at the write cursor, evicting
// the previous occupant when the store is full. The scan is linear over at
// most Cap() entries; reports are rare events, not a hot path.
func (s *Store) InsertOrBump(sig event.Signature, sev event.Severity, ts uint64) Outcome {
	for i := 0; i < s.count; i++ {
		idx := s.index(i)
		if s.slots[idx].Signature == sig {
			s.slots[idx].Occurrences++
			s.slots[idx].Timestamp = ts
			// Remember the bumped slot so Latest sees it as most recent.
			s.latest = idx
			return Outcome{}
		}
	}

	out := Outcome{Created: true}
	if s.count == len(s.slots) {
		out.Evicted = true
		slog.Debug("ring store full, evicting oldest record",
			"evicted", s.slots[s.cursor].Signature.String(),
			"incoming", sig.String(),
		)
	}

	s.slots[s.cursor] = event.New(sig, sev, ts)
	s.latest = s.cursor
	s.cursor = (s.cursor + 1) % len(s.slots)
	if s.count < len(s.slots) {
		s.count++
	}
	return out
}

// Latest returns the record most recently written or bumped. The second
// return is false when the store is empty.
func (s *Store) Latest() (event.Record, bool) {
	if s.count == 0 {
		return event.Record{}, false
	}
	return s.slots[s.latest], true
}

// Iterate visits every valid record in insertion order, oldest to newest,
// and returns the number visited. The visitor receives a copy; iteration
// never mutates the store.
func (s *Store) Iterate(visit func(event.Record)) int {
	if visit == nil || s.count == 0 {
		return 0
	}

	start := 0
	if s.count == len(s.slots) {
		start = s.cursor
	}
	for i := 0; i < s.count; i++ {
		visit(s.slots[(start+i)%len(s.slots)])
	}
	return s.count
}

// Clear resets the store to empty. Slot contents are zeroed so stale
// records cannot leak through a later inspection of the arena.
func (s *Store) Clear() {
	for i := range s.slots {
		s.slots[i] = event.Record{}
	}
	s.cursor = 0
	s.count = 0
	s.latest = 0
}

// index maps an age offset (0 = oldest) to a slot position.
func (s *Store) index(age int) int {
	start := 0
	if s.count == len(s.slots) {
		start = s.cursor
	}
	return (start + age) % len(s.slots)
}
