package orchestrate

import "sync"

// conversationLocks tracks which conversations have a search in flight.
// A conversation key is held for the full span of one run; a second run for
// the same key is rejected rather than queued.
type conversationLocks struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
}

func newConversationLocks() *conversationLocks {
	return &conversationLocks{inFlight: make(map[string]struct{})}
}

// tryAcquire claims the key. Returns false when the key is already held.
func (l *conversationLocks) tryAcquire(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, held := l.inFlight[key]; held {
		return false
	}
	l.inFlight[key] = struct{}{}
	return true
}

// release frees the key. Safe to call for a key that is not held.
func (l *conversationLocks) release(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.inFlight, key)
}
