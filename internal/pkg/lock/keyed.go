package lock

import "sync"

// Keyed hands out a mutex per string key. It serializes the
// read-check-write sequences around punch appends and weekly assignment
// inserts for the same employee slot, and nothing wider.
type Keyed struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

func NewKeyed() *Keyed {
	return &Keyed{locks: make(map[string]*entry)}
}

// Lock acquires the mutex for key, blocking until it is available.
func (k *Keyed) Lock(key string) {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &entry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
}

// Unlock releases the mutex for key and drops it once nobody waits on it.
func (k *Keyed) Unlock(key string) {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		k.mu.Unlock()
		panic("lock: unlock of unheld key " + key)
	}
	e.refs--
	if e.refs == 0 {
		delete(k.locks, key)
	}
	k.mu.Unlock()

	e.mu.Unlock()
}
