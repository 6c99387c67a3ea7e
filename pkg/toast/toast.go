// Package toast is a publish/subscribe queue of short-lived notifications.
//
// A Hub is created once at boot and closed on shutdown. Each Subscriber (an
// open notification stream, a mounted view) keeps its own visible list and
// its own expiry timers, so dismissing or unsubscribing on one never touches
// another.
//
//	hub := toast.NewHub(3 * time.Second)
//	defer hub.Close()
//
//	sub := hub.Subscribe()
//	defer sub.Unsubscribe()
//
//	id := hub.Publish("Produit ajouté au panier", toast.Success)
//	sub.Dismiss(id)
package toast

import (
	"sync"
	"time"
)

// Severity classifies a toast.
type Severity string

const (
	Success Severity = "success"
	Error   Severity = "error"
	Info    Severity = "info"
)

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	switch s {
	case Success, Error, Info:
		return true
	}
	return false
}

// Toast is one notification as seen by a subscriber.
type Toast struct {
	ID        uint64    `json:"id"`
	Message   string    `json:"message"`
	Severity  Severity  `json:"severity"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// EventKind tells a stream consumer what happened to a toast.
type EventKind string

const (
	Added   EventKind = "added"
	Removed EventKind = "removed"
)

// Event is emitted on Subscriber.Events for every change to its list.
type Event struct {
	Kind  EventKind `json:"kind"`
	Toast Toast     `json:"toast"`
}

// Timer is the subset of *time.Timer the hub needs.
type Timer interface {
	Stop() bool
}

// Option customises a Hub.
type Option func(*Hub)

// WithClock replaces the wall clock and timer factory. Used by tests.
func WithClock(now func() time.Time, after func(time.Duration, func()) Timer) Option {
	return func(h *Hub) {
		h.now = now
		h.after = after
	}
}

// WithBuffer sets the per-subscriber event buffer. Events beyond it are
// dropped; Visible stays authoritative.
func WithBuffer(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.buffer = n
		}
	}
}

// ─── Hub ──────────────────────────────────────────────────────────────────────

// Hub assigns ids and fans toasts out to subscribers.
type Hub struct {
	mu      sync.Mutex
	ttl     time.Duration
	lastID  uint64
	lastSub uint64
	subs    map[uint64]*Subscriber
	closed  bool

	buffer int
	now    func() time.Time
	after  func(time.Duration, func()) Timer
}

// NewHub returns a Hub whose toasts expire ttl after publication.
func NewHub(ttl time.Duration, opts ...Option) *Hub {
	if ttl <= 0 {
		ttl = 3 * time.Second
	}
	h := &Hub{
		ttl:    ttl,
		subs:   make(map[uint64]*Subscriber),
		buffer: 64,
		now:    time.Now,
		after: func(d time.Duration, f func()) Timer {
			return time.AfterFunc(d, f)
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// TTL returns the expiry delay.
func (h *Hub) TTL() time.Duration { return h.ttl }

// Publish delivers a toast to every current subscriber and returns its id.
// Ids strictly increase for the life of the hub. After Close, Publish still
// returns a fresh id but delivers nothing.
func (h *Hub) Publish(message string, severity Severity) uint64 {
	if !severity.Valid() {
		severity = Info
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.lastID++
	now := h.now()
	t := Toast{
		ID:        h.lastID,
		Message:   message,
		Severity:  severity,
		CreatedAt: now,
		ExpiresAt: now.Add(h.ttl),
	}
	if h.closed {
		return t.ID
	}

	// Delivery happens under h.mu so every subscriber sees ids in order.
	for _, s := range h.subs {
		s.deliver(t)
	}
	return t.ID
}

// Subscribe registers a new subscriber with an empty visible list.
func (h *Hub) Subscribe() *Subscriber {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.lastSub++
	s := &Subscriber{
		id:     h.lastSub,
		hub:    h,
		timers: make(map[uint64]Timer),
		events: make(chan Event, h.buffer),
	}
	if h.closed {
		s.shutdown()
		return s
	}
	h.subs[s.id] = s
	return s
}

// Subscriber returns a live subscriber by id.
func (h *Hub) Subscriber(id uint64) (*Subscriber, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.subs[id]
	return s, ok
}

// Subscribers returns the number of live subscribers.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close unsubscribes everyone and stops all pending timers.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for id, s := range h.subs {
		s.shutdown()
		delete(h.subs, id)
	}
}

// ─── Subscriber ───────────────────────────────────────────────────────────────

// Subscriber owns one visible list.
type Subscriber struct {
	id  uint64
	hub *Hub

	mu      sync.Mutex
	visible []Toast
	timers  map[uint64]Timer
	events  chan Event
	closed  bool
}

// ID identifies the subscriber within its hub.
func (s *Subscriber) ID() uint64 { return s.id }

// Events streams additions and removals. The channel is closed on
// Unsubscribe.
func (s *Subscriber) Events() <-chan Event { return s.events }

// Visible returns a copy of the current list, oldest first.
func (s *Subscriber) Visible() []Toast {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Toast, len(s.visible))
	copy(out, s.visible)
	return out
}

// Dismiss removes id and cancels its timer. It reports whether anything was
// removed; repeated calls and calls after expiry return false.
func (s *Subscriber) Dismiss(id uint64) bool {
	return s.remove(id)
}

// Unsubscribe stops delivery to s and cancels its timers. Other subscribers
// are unaffected. Safe to call more than once.
func (s *Subscriber) Unsubscribe() {
	h := s.hub
	h.mu.Lock()
	delete(h.subs, s.id)
	h.mu.Unlock()

	s.shutdown()
}

func (s *Subscriber) deliver(t Toast) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.visible = append(s.visible, t)
	s.timers[t.ID] = s.hub.after(s.hub.ttl, func() { s.remove(t.ID) })
	s.emit(Event{Kind: Added, Toast: t})
}

func (s *Subscriber) remove(id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	for i, t := range s.visible {
		if t.ID != id {
			continue
		}
		s.visible = append(s.visible[:i], s.visible[i+1:]...)
		if timer, ok := s.timers[id]; ok {
			timer.Stop()
			delete(s.timers, id)
		}
		s.emit(Event{Kind: Removed, Toast: t})
		return true
	}
	return false
}

// emit must be called with s.mu held.
func (s *Subscriber) emit(ev Event) {
	select {
	case s.events <- ev:
	default:
	}
}

func (s *Subscriber) shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
	s.visible = nil
	close(s.events)
}
