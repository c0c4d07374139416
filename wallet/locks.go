package wallet

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

var ErrOutputLocked = errors.New("output already locked by another proposal")

// LockRegistry enforces mutual exclusion of fund locks across concurrent
// proposals. Each lock records the slate that owns it, so a stale lock can be
// traced back to its transaction.
type LockRegistry struct {
	mu     sync.Mutex
	locked map[string]uuid.UUID
}

func NewLockRegistry() *LockRegistry {
	return &LockRegistry{
		locked: make(map[string]uuid.UUID),
	}
}

// Lock acquires every output in the set or none of them.
func (r *LockRegistry) Lock(set OutputSet, slateID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, out := range set {
		if _, ok := r.locked[out]; ok {
			return ErrOutputLocked
		}
	}
	for _, out := range set {
		r.locked[out] = slateID
	}
	return nil
}

// Unlock releases the outputs in the set. Unlocking an output that is not
// locked is a no-op.
func (r *LockRegistry) Unlock(set OutputSet) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, out := range set {
		delete(r.locked, out)
	}
}

// Owner returns the slate holding the lock on an output, if any.
func (r *LockRegistry) Owner(output string) (uuid.UUID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.locked[output]
	return id, ok
}

// LockedCount returns the number of outputs currently locked.
func (r *LockRegistry) LockedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.locked)
}
