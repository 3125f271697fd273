// Package session keeps one chat.Service per conversation for the
// long-running surfaces.
package session

import (
	"sync"
	"time"

	"clima/internal/chat"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Factory builds the service for a new session id.
type Factory func(id string) *chat.Service

// Store is a bounded, expiring map of session id to chat.Service. A session
// idle longer than the TTL, or evicted by size, starts over with an empty
// context slot.
type Store struct {
	mu      sync.Mutex
	cache   *expirable.LRU[string, *chat.Service]
	factory Factory
}

func NewStore(size int, ttl time.Duration, factory Factory) *Store {
	return &Store{
		cache:   expirable.NewLRU[string, *chat.Service](size, nil, ttl),
		factory: factory,
	}
}

// Get returns the session's service, creating it on first use. Every call
// restarts the session's TTL.
func (s *Store) Get(id string) *chat.Service {
	s.mu.Lock()
	defer s.mu.Unlock()

	svc, ok := s.cache.Get(id)
	if !ok {
		svc = s.factory(id)
	}
	s.cache.Add(id, svc)
	return svc
}

// Reset drops the session. It reports whether the session existed.
func (s *Store) Reset(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	svc, ok := s.cache.Peek(id)
	if ok {
		svc.Clear()
		s.cache.Remove(id)
	}
	return ok
}

func (s *Store) Len() int {
	return s.cache.Len()
}
