package service

import "sync"

// keyedMutex serializes work per string key. Webhook deliveries for the same
// Shopify id may arrive concurrently (duplicate or out-of-order redelivery),
// and the reconciliation sequence is a lookup followed by a write; without a
// serialization point two deliveries can interleave and lose an update.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*keyedLock)}
}

// Lock acquires the mutex for key and returns the release function.
// Entries are removed once the last holder releases, so the map stays
// bounded by the number of in-flight keys.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyedLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.Lock()

	return func() {
		l.Unlock()

		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
