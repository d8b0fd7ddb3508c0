package events

import (
	"sync"
)

// EventType names an in-process event
type EventType string

const (
	// FilterConsensusList carries a *score.Filter, or nil to reset the list
	FilterConsensusList EventType = "filterConsensusList"
	// FilterPartiesTable carries a *stats.RowFilter, or nil to reset the table
	FilterPartiesTable EventType = "filterPartiesTable"
	// SelectionChanged fires after the active model or year changed
	SelectionChanged EventType = "selectionChanged"

	wildcard EventType = "*"
)

// Event is a published message
type Event struct {
	Type    EventType
	Payload any
}

// Handler processes one event
type Handler func(Event)

type subscription struct {
	id      uint64
	handler Handler
}

// Bus delivers events synchronously: every handler has run by the time
// Publish returns.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[EventType][]subscription
	nextID      uint64
}

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{
		subscribers: make(map[EventType][]subscription),
	}
}

// Subscribe registers h for the given event types, or for all events when none
// are given. The returned func removes the subscription.
func (b *Bus) Subscribe(h Handler, eventTypes ...EventType) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(eventTypes) == 0 {
		eventTypes = []EventType{wildcard}
	}

	b.nextID++
	id := b.nextID
	for _, eventType := range eventTypes {
		b.subscribers[eventType] = append(b.subscribers[eventType], subscription{id: id, handler: h})
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			for _, eventType := range eventTypes {
				b.remove(eventType, id)
			}
		})
	}
}

// Publish runs the handlers subscribed to the event's type, then the wildcard
// handlers, in subscription order. Handlers may publish or subscribe.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subscribers[event.Type])+len(b.subscribers[wildcard]))
	for _, s := range b.subscribers[event.Type] {
		handlers = append(handlers, s.handler)
	}
	if event.Type != wildcard {
		for _, s := range b.subscribers[wildcard] {
			handlers = append(handlers, s.handler)
		}
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(event)
	}
}

func (b *Bus) count(eventType EventType) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[eventType])
}

func (b *Bus) remove(eventType EventType, id uint64) {
	subs := b.subscribers[eventType]
	for i, s := range subs {
		if s.id == id {
			b.subscribers[eventType] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(b.subscribers[eventType]) == 0 {
		delete(b.subscribers, eventType)
	}
}
