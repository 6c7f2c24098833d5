// Package guard provides the bounded-wait mutual exclusion used to protect
// the record store when two execution contexts report concurrently.
//
// A SpinLock never parks the caller: Acquire retries an atomic
// compare-and-swap a bounded number of times with a short busy-wait between
// attempts, and reports failure once the budget is spent. The caller is
// expected to drop the one record it was about to store rather than wait.
// The compare-and-swap and the release store carry acquire/release ordering,
// so the next owner observes a consistent store.
package guard

import (
	"errors"
	"sync/atomic"
)

// ErrContended is returned by Acquire when the retry budget is exhausted
// while another context holds the lock.
var ErrContended = errors.New("guard: lock contended, retry budget exhausted")

// Locker is the mutual-exclusion contract the tracer depends on.
type Locker interface {
	// Acquire takes exclusive ownership or fails with ErrContended.
	Acquire() error
	// Release gives up ownership. Calling Release without holding the
	// lock is a programming error.
	Release()
}

const (
	// DefaultMaxAttempts bounds how many times Acquire retries before
	// giving up.
	DefaultMaxAttempts = 1000
	// DefaultSpin is the length of the busy-wait loop between attempts.
	DefaultSpin = 10
)

// SpinLock is a bounded-wait test-and-set lock.
type SpinLock struct {
	state       atomic.Uint32
	maxAttempts int
	spin        int
}

// NewSpinLock creates a SpinLock with the given retry budget and inter-try
// spin count. Non-positive values fall back to the defaults.
func NewSpinLock(maxAttempts, spin int) *SpinLock {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if spin <= 0 {
		spin = DefaultSpin
	}
	return &SpinLock{maxAttempts: maxAttempts, spin: spin}
}

// Acquire attempts exclusive ownership, retrying up to the configured
// budget. It never blocks indefinitely and never steals the lock from the
// current owner.
func (l *SpinLock) Acquire() error {
	for attempt := 0; attempt < l.maxAttempts; attempt++ {
		if l.state.CompareAndSwap(0, 1) {
			return nil
		}
		for i := 0; i < l.spin; i++ {
			// Spin.
		}
	}
	return ErrContended
}

// Release clears ownership with release ordering.
func (l *SpinLock) Release() {
	l.state.Store(0)
}

// Nop is the Locker used when cross-context protection is disabled; every
// Acquire succeeds immediately.
type Nop struct{}

func (Nop) Acquire() error { return nil }
func (Nop) Release()       {}
