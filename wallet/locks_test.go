package wallet

import (
	"sync"
	"testing"

	"github.com/google/uuid"
)

func TestLockUnlock(t *testing.T) {
	r := NewLockRegistry()
	id := uuid.New()

	set := OutputSet{"out-1", "out-2"}
	if err := r.Lock(set, id); err != nil {
		t.Fatal(err)
	}
	if r.LockedCount() != 2 {
		t.Errorf("expected 2 locked outputs, got %d", r.LockedCount())
	}

	owner, ok := r.Owner("out-1")
	if !ok || owner != id {
		t.Errorf("unexpected owner: %v %v", owner, ok)
	}

	r.Unlock(set)
	if r.LockedCount() != 0 {
		t.Errorf("expected 0 locked outputs, got %d", r.LockedCount())
	}
}

func TestLockAllOrNothing(t *testing.T) {
	r := NewLockRegistry()

	if err := r.Lock(OutputSet{"out-2"}, uuid.New()); err != nil {
		t.Fatal(err)
	}
	err := r.Lock(OutputSet{"out-1", "out-2"}, uuid.New())
	if err != ErrOutputLocked {
		t.Fatalf("expected ErrOutputLocked, got %v", err)
	}
	// The failed lock must not have taken out-1.
	if _, ok := r.Owner("out-1"); ok {
		t.Errorf("failed lock left out-1 locked")
	}
}

func TestConcurrentLockSingleWinner(t *testing.T) {
	r := NewLockRegistry()
	set := OutputSet{"out-1"}

	const n = 16
	var wg sync.WaitGroup
	wins := make(chan struct{}, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := r.Lock(set, uuid.New()); err == nil {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	var count int
	for range wins {
		count++
	}
	if count != 1 {
		t.Errorf("expected exactly one winner, got %d", count)
	}
}
