package ledger

import (
	"sync"

	"maitred/internal/models"
)

// LockRegistry maps each of the seven weekday names to its exclusivity lock.
// One lock per weekday, never per table or per file region; holding the lock
// serializes every read and write on that day's ledger, admin operations
// included.
type LockRegistry struct {
	locks map[string]*sync.Mutex
}

// NewLockRegistry builds the seven-day registry once at startup.
func NewLockRegistry() *LockRegistry {
	locks := make(map[string]*sync.Mutex, 7)
	for _, day := range models.Weekdays() {
		locks[day] = &sync.Mutex{}
	}
	return &LockRegistry{locks: locks}
}

// LockFor returns the lock for a canonical lowercase day name. Any other
// string misses, which callers must translate to an invalid-day outcome.
func (r *LockRegistry) LockFor(day string) (*sync.Mutex, bool) {
	mu, ok := r.locks[day]
	return mu, ok
}
