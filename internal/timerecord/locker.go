package timerecord

import "sync"

type lockKey struct {
	employeeID int64
	eventID    int64
}

type refMutex struct {
	mu   sync.Mutex
	refs int
}

// KeyedLocker serializes work per (employee, event) inside one process.
// Entries are dropped once nobody holds or waits on them.
type KeyedLocker struct {
	mu    sync.Mutex
	locks map[lockKey]*refMutex
}

func NewKeyedLocker() *KeyedLocker {
	return &KeyedLocker{locks: make(map[lockKey]*refMutex)}
}

// Lock blocks until the key is free and returns its unlock func.
func (k *KeyedLocker) Lock(employeeID, eventID int64) func() {
	key := lockKey{employeeID: employeeID, eventID: eventID}

	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.mu.Lock()

	return func() {
		m.mu.Unlock()

		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

// Len reports how many keys are currently tracked.
func (k *KeyedLocker) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
