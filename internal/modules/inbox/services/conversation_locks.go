package services

import "sync"

// conversationLocks serializes read-modify-write cycles per key within this process.
// Entries are dropped once nobody holds or waits for them.
type conversationLocks struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

func newConversationLocks() *conversationLocks {
	return &conversationLocks{locks: make(map[string]*keyLock)}
}

// lock blocks until key is free and returns the matching unlock
func (l *conversationLocks) lock(key string) func() {
	l.mu.Lock()
	k, ok := l.locks[key]
	if !ok {
		k = &keyLock{}
		l.locks[key] = k
	}
	k.refs++
	l.mu.Unlock()

	k.mu.Lock()
	return func() {
		k.mu.Unlock()

		l.mu.Lock()
		k.refs--
		if k.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}
}

// Lock order is always phone before id.

func (l *conversationLocks) byPhone(number string) func() { return l.lock("phone:" + number) }
func (l *conversationLocks) byID(id string) func()        { return l.lock("id:" + id) }

func (l *conversationLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
