package lifecycle

import "sync"

// lotLocks serializes transitions per lot so the read-validate-write sequence
// on Lot.status cannot interleave between two concurrent stage submissions.
// Entries are never removed; the table is bounded by the number of lots seen
// by this process.
var lotLocks = struct {
	mu sync.Mutex
	m  map[uint]*sync.Mutex
}{m: make(map[uint]*sync.Mutex)}

// lockLot acquires the exclusive critical section for the given lot and
// returns the unlock function.
func lockLot(lotID uint) func() {
	lotLocks.mu.Lock()
	l, ok := lotLocks.m[lotID]
	if !ok {
		l = &sync.Mutex{}
		lotLocks.m[lotID] = l
	}
	lotLocks.mu.Unlock()

	l.Lock()
	return l.Unlock
}
