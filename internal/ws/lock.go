package ws

import "sync"

// keyedMutex serializes append+broadcast per conversation key while leaving
// independent keys fully parallel. Entries are refcounted away once the last
// holder releases, so idle keys do not pile up.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex { return &keyedMutex{locks: make(map[string]*keyLock)} }

func (k *keyedMutex) Lock(key string) {
	k.mu.Lock()
	l := k.locks[key]
	if l == nil {
		l = &keyLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()
	l.mu.Lock()
}

func (k *keyedMutex) Unlock(key string) {
	k.mu.Lock()
	l := k.locks[key]
	l.refs--
	if l.refs == 0 { delete(k.locks, key) }
	k.mu.Unlock()
	l.mu.Unlock()
}
