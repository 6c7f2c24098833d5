// Package tracer implements the diagnostic-event recorder: a lifecycle-gated
// front end over the deduplicating ring store, with severity filtering,
// bounded observer fan-out and statistics tracking.
package tracer

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/setevik/faulttrace/internal/config"
	"github.com/setevik/faulttrace/internal/event"
	"github.com/setevik/faulttrace/internal/filter"
	"github.com/setevik/faulttrace/internal/guard"
	"github.com/setevik/faulttrace/internal/ring"
)

var (
	ErrNotInitialized     = errors.New("tracer: not initialized")
	ErrAlreadyInitialized = errors.New("tracer: already initialized")
	ErrAlreadyStarted     = errors.New("tracer: already started")
	ErrNotStarted         = errors.New("tracer: not started")
	ErrNilObserver        = errors.New("tracer: observer is nil")
	ErrRegistryFull       = errors.New("tracer: observer registry full")
	ErrDuplicateObserver  = errors.New("tracer: observer already registered")
	ErrEmpty              = errors.New("tracer: no records stored")
)

// State is the lifecycle state of a Tracer.
type State int

const (
	StateUninit State = iota
	StateInit
	StateStarted
)

func (s State) String() string {
	switch s {
	case StateUninit:
		return "uninitialized"
	case StateInit:
		return "initialized"
	case StateStarted:
		return "started"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Observer is notified once per accepted (non-suppressed) report, after the
// record has been committed to the store. Observers must not block and must
// not report back into the tracer.
type Observer interface {
	Notify(sig event.Signature, sev event.Severity)
}

// ObserverFunc adapts a plain function to the Observer interface.
type ObserverFunc func(sig event.Signature, sev event.Severity)

func (f ObserverFunc) Notify(sig event.Signature, sev event.Severity) {
	f(sig, sev)
}

// Recorder is the operation surface callers program against. The real
// implementation is Tracer; Nop is substituted when diagnostics are
// disabled, so callers never need conditional logic.
type Recorder interface {
	Init() error
	Start() error
	Deinit() error

	ReportError(source event.SourceID, instance event.InstanceID, op event.OperationID, cond event.ConditionID) error
	ReportRuntimeError(source event.SourceID, instance event.InstanceID, op event.OperationID, cond event.ConditionID) error
	ReportTransientFault(source event.SourceID, instance event.InstanceID, op event.OperationID, fault event.ConditionID) error

	RegisterObserver(obs Observer) error
	SetFilter(source event.SourceID, min event.Severity) error

	Statistics() (Statistics, error)
	LastError() (event.Record, error)
	IterateErrors(visit func(event.Record)) int
	ClearErrors() error

	VersionInfo() Info
}

// Tracer is the real recorder. Create one per test or one per process; all
// state lives in the value, there is no hidden package-level state.
type Tracer struct {
	state State

	store     *ring.Store
	filters   *filter.Table
	observers []Observer
	stats     Statistics

	lock  guard.Locker
	clock Clock

	capacity     int
	maxObservers int
	strict       bool

	globalMin event.Severity
	sourceMin map[event.SourceID]event.Severity

	log *slog.Logger
}

var _ Recorder = (*Tracer)(nil)

// New creates a Tracer in the uninitialized state from the given config.
// A nil clock selects the monotonic millisecond clock.
func New(cfg *config.Config, clock Clock) (*Tracer, error) {
	globalMin, err := cfg.GlobalThreshold()
	if err != nil {
		return nil, fmt.Errorf("creating tracer: %w", err)
	}
	sourceMin, err := cfg.SourceThresholds()
	if err != nil {
		return nil, fmt.Errorf("creating tracer: %w", err)
	}

	if clock == nil {
		clock = NewMonotonicClock()
	}

	var lock guard.Locker = guard.Nop{}
	if cfg.Guard.Enabled {
		lock = guard.NewSpinLock(cfg.Guard.MaxAttempts, cfg.Guard.Spin)
	}

	return &Tracer{
		state:        StateUninit,
		lock:         lock,
		clock:        clock,
		capacity:     cfg.Buffer.Capacity,
		maxObservers: cfg.Callbacks.Max,
		strict:       cfg.Callbacks.Strict,
		globalMin:    globalMin,
		sourceMin:    sourceMin,
		log:          slog.Default(),
	}, nil
}

// FromConfig returns the recorder selected by the config: a real Tracer, or
// the no-op variant when diagnostics are disabled.
func FromConfig(cfg *config.Config, clock Clock) (Recorder, error) {
	if !cfg.Tracer.Enabled {
		return Nop{}, nil
	}
	return New(cfg, clock)
}

// State returns the current lifecycle state.
func (t *Tracer) State() State {
	return t.state
}

// Init sets up the store, filters and statistics. Calling Init on an already
// initialized tracer is a no-op reporting ErrAlreadyInitialized; live data is
// never re-zeroed by accident.
func (t *Tracer) Init() error {
	if t.state != StateUninit {
		return ErrAlreadyInitialized
	}

	t.store = ring.NewStore(t.capacity)
	t.filters = filter.NewTable()
	t.observers = nil
	t.stats = Statistics{}

	// Seed the filter table from config. The defaults mean "report
	// everything".
	_ = t.filters.Set(filter.SourceGlobal, t.globalMin)
	for src, min := range t.sourceMin {
		_ = t.filters.Set(src, min)
	}

	t.state = StateInit
	t.log.Debug("tracer initialized", "capacity", t.capacity, "max_observers", t.maxObservers)
	return nil
}

// Start activates reporting. Only a started tracer accepts reports.
func (t *Tracer) Start() error {
	switch t.state {
	case StateUninit:
		return ErrNotInitialized
	case StateStarted:
		return ErrAlreadyStarted
	}
	t.state = StateStarted
	t.log.Debug("tracer started")
	return nil
}

// Deinit tears the tracer down completely, including filters and observers.
// Intended for tests and simulation runs only.
func (t *Tracer) Deinit() error {
	if t.state == StateUninit {
		return nil
	}
	t.store = nil
	t.filters = nil
	t.observers = nil
	t.stats = Statistics{}
	t.state = StateUninit
	t.log.Debug("tracer deinitialized")
	return nil
}

// ReportError records a development error (invalid parameter class).
func (t *Tracer) ReportError(source event.SourceID, instance event.InstanceID, op event.OperationID, cond event.ConditionID) error {
	return t.report(event.ClassDevelopment, event.Signature{
		Source: source, Instance: instance, Operation: op, Condition: cond,
	})
}

// ReportRuntimeError records an error that occurred during normal operation.
func (t *Tracer) ReportRuntimeError(source event.SourceID, instance event.InstanceID, op event.OperationID, cond event.ConditionID) error {
	return t.report(event.ClassRuntime, event.Signature{
		Source: source, Instance: instance, Operation: op, Condition: cond,
	})
}

// ReportTransientFault records a transient hardware fault.
func (t *Tracer) ReportTransientFault(source event.SourceID, instance event.InstanceID, op event.OperationID, fault event.ConditionID) error {
	return t.report(event.ClassTransient, event.Signature{
		Source: source, Instance: instance, Operation: op, Condition: fault,
	})
}

// report is the single pipeline behind the three report classes: lifecycle
// gate, severity filter, guarded store/statistics mutation, then observer
// fan-out outside the lock.
func (t *Tracer) report(class event.Class, sig event.Signature) error {
	if t.state != StateStarted {
		return ErrNotStarted
	}

	sev := class.Severity()

	if t.filters.Suppressed(sig.Source, sev) {
		// The caller is never told its diagnostic was dropped by a
		// filter; only the counter records it.
		if err := t.lock.Acquire(); err == nil {
			t.stats.Suppressed++
			t.lock.Release()
		}
		return nil
	}

	if err := t.lock.Acquire(); err != nil {
		// Contended: drop this one record rather than wait or break
		// exclusivity.
		t.log.Debug("record dropped, store contended", "signature", sig.String())
		return fmt.Errorf("recording %s: %w", sig, err)
	}

	out := t.store.InsertOrBump(sig, sev, t.clock.Now())
	t.stats.accept(class, sev, out)

	t.lock.Release()

	for _, obs := range t.observers {
		obs.Notify(sig, sev)
	}
	return nil
}

// RegisterObserver appends an observer to the bounded registry. Dispatch
// order is registration order. Registration is a setup-time operation and is
// not safe to call concurrently with reporting.
func (t *Tracer) RegisterObserver(obs Observer) error {
	if obs == nil {
		return ErrNilObserver
	}
	if t.state == StateUninit {
		return ErrNotInitialized
	}
	if len(t.observers) >= t.maxObservers {
		return ErrRegistryFull
	}
	if t.strict {
		for _, existing := range t.observers {
			if sameObserver(existing, obs) {
				return ErrDuplicateObserver
			}
		}
	}
	t.observers = append(t.observers, obs)
	return nil
}

// sameObserver reports whether two observers are the same handle. Func-typed
// observers are compared by code pointer; interface equality would panic on
// them.
func sameObserver(a, b Observer) bool {
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if ra.Kind() == reflect.Func || rb.Kind() == reflect.Func {
		return ra.Kind() == rb.Kind() && ra.Pointer() == rb.Pointer()
	}
	if ra.Type() != rb.Type() || !ra.Type().Comparable() {
		return false
	}
	return a == b
}

// SetFilter records a minimum-severity threshold for one source, or for
// every source without an explicit entry when source is
// filter.SourceGlobal. Setup-time operation.
func (t *Tracer) SetFilter(source event.SourceID, min event.Severity) error {
	if t.state == StateUninit {
		return ErrNotInitialized
	}
	return t.filters.Set(source, min)
}

// Statistics returns a copied snapshot of the counters; callers never see a
// partially updated state.
func (t *Tracer) Statistics() (Statistics, error) {
	if t.state == StateUninit {
		return Statistics{}, ErrNotInitialized
	}
	if err := t.lock.Acquire(); err != nil {
		return Statistics{}, fmt.Errorf("reading statistics: %w", err)
	}
	snap := t.stats
	t.lock.Release()
	return snap, nil
}

// LastError returns the record most recently written or bumped.
func (t *Tracer) LastError() (event.Record, error) {
	if t.state == StateUninit {
		return event.Record{}, ErrNotInitialized
	}
	if err := t.lock.Acquire(); err != nil {
		return event.Record{}, fmt.Errorf("reading last error: %w", err)
	}
	rec, ok := t.store.Latest()
	t.lock.Release()
	if !ok {
		return event.Record{}, ErrEmpty
	}
	return rec, nil
}

// IterateErrors visits every stored record, oldest to newest, and returns
// the number visited. Not meant to run concurrently with active reporting.
func (t *Tracer) IterateErrors(visit func(event.Record)) int {
	if t.state == StateUninit {
		return 0
	}
	return t.store.Iterate(visit)
}

// ClearErrors empties the store and resets statistics. Filters and
// observers are configuration, not captured state, and are preserved.
func (t *Tracer) ClearErrors() error {
	if t.state == StateUninit {
		return ErrNotInitialized
	}
	if err := t.lock.Acquire(); err != nil {
		return fmt.Errorf("clearing records: %w", err)
	}
	t.store.Clear()
	t.stats = Statistics{}
	t.lock.Release()
	return nil
}
