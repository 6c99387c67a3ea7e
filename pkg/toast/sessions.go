package toast

import (
	"sync"
	"time"
)

// Sessions keeps one Hub per visitor session so a toast raised by one
// visitor's action is only shown on that visitor's streams.
type Sessions struct {
	ttl  time.Duration
	opts []Option

	mu     sync.Mutex
	hubs   map[string]*Hub
	closed bool
}

// NewSessions returns an empty registry whose hubs share ttl and opts.
func NewSessions(ttl time.Duration, opts ...Option) *Sessions {
	return &Sessions{ttl: ttl, opts: opts, hubs: make(map[string]*Hub)}
}

// For returns the hub of sessionID, creating it on first use. After Close
// it returns a closed hub that delivers nothing.
func (s *Sessions) For(sessionID string) *Hub {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hub(sessionID)
}

// Subscribe opens a subscriber on the hub of sessionID. The hub cannot be
// swept between lookup and subscription.
func (s *Sessions) Subscribe(sessionID string) (*Hub, *Subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := s.hub(sessionID)
	return h, h.Subscribe()
}

// hub requires s.mu.
func (s *Sessions) hub(sessionID string) *Hub {
	if h, ok := s.hubs[sessionID]; ok {
		return h
	}
	h := NewHub(s.ttl, s.opts...)
	if s.closed {
		h.Close()
		return h
	}
	s.hubs[sessionID] = h
	return h
}

// Publish is For(sessionID).Publish(message, severity).
func (s *Sessions) Publish(sessionID, message string, severity Severity) uint64 {
	return s.For(sessionID).Publish(message, severity)
}

// Len returns the number of live hubs.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.hubs)
}

// Sweep closes and forgets hubs nobody is listening to and returns how many
// were dropped.
func (s *Sessions) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, h := range s.hubs {
		if h.Subscribers() == 0 {
			h.Close()
			delete(s.hubs, id)
			n++
		}
	}
	return n
}

// Close closes every hub.
func (s *Sessions) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	for id, h := range s.hubs {
		h.Close()
		delete(s.hubs, id)
	}
}
