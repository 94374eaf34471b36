// Package events provides an in-process event bus for agent turn activity.
package events

import (
	"sync"
	"sync/atomic"
	"time"
)

// EventType represents the type of event.
type EventType string

const (
	EventTurnStarted   EventType = "turn.started"
	EventTurnCompleted EventType = "turn.completed"
	EventTurnFailed    EventType = "turn.failed"

	EventToolCalled    EventType = "tool.called"
	EventToolCompleted EventType = "tool.completed"

	// EventToolRecovered is emitted when a tool call was recovered from
	// free text instead of the provider's structured tool-call channel.
	EventToolRecovered EventType = "tool.recovered"
)

// Event is a single notification published on the bus.
type Event struct {
	Seq       uint64
	Type      EventType
	Timestamp time.Time
	Payload   Payload
}

// Subscriber receives events. Handlers run synchronously on the publishing
// goroutine, in subscription order, so they must not block.
type Subscriber func(Event)

type subscription struct {
	eventTypes []EventType
	handler    Subscriber
}

// Bus fans events out to subscribers and keeps a short history.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[int]*subscription
	order       []int
	nextID      int
	seq         atomic.Uint64
	history     *RingBuffer
}

// NewBus creates a bus that retains the last historySize events.
func NewBus(historySize int) *Bus {
	if historySize <= 0 {
		historySize = 64
	}
	return &Bus{
		subscribers: make(map[int]*subscription),
		history:     NewRingBuffer(historySize),
	}
}

// Publish delivers a payload to every matching subscriber. A nil bus is a
// no-op, so components can publish unconditionally.
func (b *Bus) Publish(p Payload) {
	if b == nil {
		return
	}
	evt := Event{
		Seq:       b.seq.Add(1),
		Type:      p.EventType(),
		Timestamp: time.Now(),
		Payload:   p,
	}
	b.history.Add(evt)

	b.mu.RLock()
	handlers := make([]Subscriber, 0, len(b.order))
	for _, id := range b.order {
		sub := b.subscribers[id]
		if matches(sub, evt.Type) {
			handlers = append(handlers, sub.handler)
		}
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(evt)
	}
}

func matches(sub *subscription, t EventType) bool {
	if len(sub.eventTypes) == 0 {
		return true
	}
	for _, et := range sub.eventTypes {
		if et == t {
			return true
		}
	}
	return false
}

// Subscribe registers a handler for specific event types (all types when
// none are given). Returns an unsubscribe function.
func (b *Bus) Subscribe(handler Subscriber, eventTypes ...EventType) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.subscribers[id] = &subscription{eventTypes: eventTypes, handler: handler}
	b.order = append(b.order, id)

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subscribers, id)
		for i, v := range b.order {
			if v == id {
				b.order = append(b.order[:i], b.order[i+1:]...)
				break
			}
		}
	}
}

// History returns up to limit recent events, oldest first.
func (b *Bus) History(limit int) []Event {
	return b.history.Get(limit)
}

// RingBuffer is a circular buffer for storing recent events.
type RingBuffer struct {
	mu     sync.RWMutex
	events []Event
	size   int
	pos    int
	count  int
}

// NewRingBuffer creates a new ring buffer.
func NewRingBuffer(size int) *RingBuffer {
	return &RingBuffer{
		events: make([]Event, size),
		size:   size,
	}
}

func (r *RingBuffer) Add(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events[r.pos] = event
	r.pos = (r.pos + 1) % r.size
	if r.count < r.size {
		r.count++
	}
}

func (r *RingBuffer) Get(n int) []Event {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if n > r.count {
		n = r.count
	}
	if n <= 0 {
		return nil
	}

	result := make([]Event, n)
	start := (r.pos - n + r.size) % r.size
	for i := 0; i < n; i++ {
		result[i] = r.events[(start+i)%r.size]
	}
	return result
}
