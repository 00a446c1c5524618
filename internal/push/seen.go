package push

import (
	"sync"
	"time"
)

// seenSet suppresses duplicate notification IDs. Entries self-expire
// after a fixed TTL. The set lives as long as its worker; a worker
// restart resets it.
type seenSet struct {
	mu  sync.Mutex
	ids map[string]struct{}
	ttl time.Duration
}

func newSeenSet(ttl time.Duration) *seenSet {
	return &seenSet{ids: make(map[string]struct{}), ttl: ttl}
}

// Insert adds id and returns true, or returns false when id is already
// present. A successful insert schedules removal after the TTL.
func (s *seenSet) Insert(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.ids[id]; dup {
		return false
	}
	s.ids[id] = struct{}{}
	time.AfterFunc(s.ttl, func() {
		s.mu.Lock()
		delete(s.ids, id)
		s.mu.Unlock()
	})
	return true
}

// Len returns the number of live entries.
func (s *seenSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}
