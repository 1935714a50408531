package locking

import "sync"

// KeyedMutex serializes work per key. The ledger uses it to guard the
// read-check-write cycle on a single account's credit; operations on
// different accounts proceed independently.
//
// Mutexes are never evicted. The key space is bounded by the number of
// accounts touched by one process, which is fine for this service.
type KeyedMutex struct {
	mus sync.Map
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{}
}

// Lock acquires the mutex for key and returns the matching unlock func.
func (k *KeyedMutex) Lock(key int64) func() {
	v, _ := k.mus.LoadOrStore(key, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
