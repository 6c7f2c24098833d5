package guard

import (
	"errors"
	"testing"

	"golang.org/x/sync/errgroup"
)

func TestAcquireRelease(t *testing.T) {
	l := NewSpinLock(0, 0)

	if err := l.Acquire(); err != nil {
		t.Fatalf("Acquire on free lock: %v", err)
	}
	l.Release()
	if err := l.Acquire(); err != nil {
		t.Fatalf("Acquire after Release: %v", err)
	}
	l.Release()
}

func TestAcquireContended(t *testing.T) {
	l := NewSpinLock(50, 1)

	if err := l.Acquire(); err != nil {
		t.Fatalf("first Acquire: %v", err)
	}

	// Second acquisition must fail once the budget is spent, never force
	// its way in.
	err := l.Acquire()
	if !errors.Is(err, ErrContended) {
		t.Fatalf("contended Acquire: got %v, want ErrContended", err)
	}

	l.Release()
	if err := l.Acquire(); err != nil {
		t.Fatalf("Acquire after owner released: %v", err)
	}
	l.Release()
}

func TestMutualExclusion(t *testing.T) {
	l := NewSpinLock(DefaultMaxAttempts, DefaultSpin)

	var counter int
	var g errgroup.Group
	for w := 0; w < 4; w++ {
		g.Go(func() error {
			for i := 0; i < 1000; i++ {
				// Retry on contention; the budget bounds one attempt,
				// not the test.
				for l.Acquire() != nil {
				}
				counter++
				l.Release()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	if counter != 4000 {
		t.Errorf("counter = %d, want 4000", counter)
	}
}

func TestNop(t *testing.T) {
	var l Nop
	if err := l.Acquire(); err != nil {
		t.Errorf("Nop.Acquire: %v", err)
	}
	l.Release()
}
