// Package events provides the in-process publish-subscribe bus used for
// session, catalog and flipbook change notifications.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/example/catalog-flipbook/internal/logger"
)

// All subscribes a handler to every event name.
const All = "*"

// Event is the base interface all events must implement.
type Event interface {
	// EventName returns a unique identifier for the event type.
	EventName() string
	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time
}

// BaseEvent provides common fields for all events.
type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

// OccurredAt returns when the event occurred.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// NewBaseEvent creates a new base event with the current timestamp.
func NewBaseEvent() BaseEvent {
	return BaseEvent{Timestamp: time.Now()}
}

// Handler processes events.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc is an adapter to allow ordinary functions to be used as handlers.
type HandlerFunc func(ctx context.Context, event Event) error

// Handle calls the underlying function.
func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Publisher is the write side of the bus.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

type subscription struct {
	id      uint64
	name    string
	handler Handler
}

// InMemoryBus delivers events synchronously, in subscription order.
type InMemoryBus struct {
	mu     sync.RWMutex
	subs   []subscription
	nextID uint64
	log    *logger.Logger
}

// NewInMemoryBus creates a new in-memory event bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return &InMemoryBus{log: log.Component("EventBus")}
}

// Subscribe registers a handler for eventName (or All) and returns a function
// that removes it.
func (b *InMemoryBus) Subscribe(eventName string, handler Handler) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, name: eventName, handler: handler})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			for i, s := range b.subs {
				if s.id == id {
					b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Publish sends event to every matching handler. Handler errors are logged
// and never stop delivery to the remaining handlers.
func (b *InMemoryBus) Publish(ctx context.Context, event Event) {
	b.mu.RLock()
	targets := make([]subscription, 0, len(b.subs))
	for _, s := range b.subs {
		if s.name == All || s.name == event.EventName() {
			targets = append(targets, s)
		}
	}
	b.mu.RUnlock()

	for _, s := range targets {
		if err := s.handler.Handle(ctx, event); err != nil {
			b.log.Warn("event handler failed", "event", event.EventName(), "error", err)
		}
	}
}

var _ Publisher = (*InMemoryBus)(nil)
