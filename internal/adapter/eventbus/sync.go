// Package eventbus provides implementations of the EventBus interface.
// This package contains the synchronous event bus and the resize source built on it.
package eventbus

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/tejashwikalptaru/beatscope/internal/domain"
	"github.com/tejashwikalptaru/beatscope/internal/ports"
)

// SyncEventBus is a synchronous implementation of the EventBus interface.
// Events are delivered on the publisher's goroutine. Typed handlers run first,
// then wildcard handlers, each group in subscription order.
//
// Thread-safety: This implementation is thread-safe. Handlers are called
// without holding the bus lock, so a handler may subscribe, unsubscribe or
// publish.
type SyncEventBus struct {
	logger *slog.Logger

	mu       sync.RWMutex
	handlers []subscription
	closed   bool
}

// a subscription is one registered handler. An empty topic matches every event.
type subscription struct {
	id      domain.SubscriptionID
	topic   domain.EventType
	handler domain.EventHandler
}

func (s subscription) wildcard() bool { return s.topic == "" }

// NewSyncEventBus creates a new synchronous event bus.
func NewSyncEventBus() *SyncEventBus {
	return &SyncEventBus{logger: slog.New(slog.DiscardHandler)}
}

// SetLogger sets the logger for this event bus.
func (bus *SyncEventBus) SetLogger(logger *slog.Logger) {
	if logger == nil {
		return
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.logger = logger
}

// Publish delivers event to its typed subscribers and then to wildcard
// subscribers. Publishing on a closed bus or publishing nil does nothing.
//
// A panicking handler is logged and does not stop delivery to the others.
func (bus *SyncEventBus) Publish(event domain.Event) {
	if event == nil {
		return
	}

	bus.mu.RLock()
	if bus.closed {
		bus.mu.RUnlock()
		return
	}
	topic := event.Type()
	typed := make([]domain.EventHandler, 0, len(bus.handlers))
	var wild []domain.EventHandler
	for _, sub := range bus.handlers {
		switch {
		case sub.wildcard():
			wild = append(wild, sub.handler)
		case sub.topic == topic:
			typed = append(typed, sub.handler)
		}
	}
	logger := bus.logger
	bus.mu.RUnlock()

	for _, h := range append(typed, wild...) {
		bus.deliver(logger, h, event)
	}
}

func (bus *SyncEventBus) deliver(logger *slog.Logger, handler domain.EventHandler, event domain.Event) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("event handler panicked",
				slog.Any("panic", r),
				slog.String("event_type", string(event.Type())))
		}
	}()
	handler(event)
}

// Subscribe registers a handler for events of the given type.
// It panics on a nil handler, an empty type or a closed bus.
func (bus *SyncEventBus) Subscribe(eventType domain.EventType, handler domain.EventHandler) domain.SubscriptionID {
	if eventType == "" {
		panic("event type cannot be empty")
	}
	return bus.add(eventType, handler)
}

// SubscribeAll registers a handler that receives every event.
func (bus *SyncEventBus) SubscribeAll(handler domain.EventHandler) domain.SubscriptionID {
	return bus.add("", handler)
}

func (bus *SyncEventBus) add(topic domain.EventType, handler domain.EventHandler) domain.SubscriptionID {
	if handler == nil {
		panic("event handler cannot be nil")
	}

	bus.mu.Lock()
	defer bus.mu.Unlock()
	if bus.closed {
		panic("cannot subscribe to closed event bus")
	}

	id := domain.SubscriptionID(uuid.NewString())
	bus.handlers = append(bus.handlers, subscription{id: id, topic: topic, handler: handler})
	bus.logger.Debug("subscribed",
		slog.String("subscription_id", string(id)),
		slog.String("event_type", string(topic)))
	return id
}

// Unsubscribe removes a subscription. Unknown IDs are ignored.
func (bus *SyncEventBus) Unsubscribe(id domain.SubscriptionID) {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	for i, sub := range bus.handlers {
		if sub.id == id {
			// Keep delivery order.
			bus.handlers = append(bus.handlers[:i], bus.handlers[i+1:]...)
			return
		}
	}
}

// HasSubscribers reports whether publishing eventType would reach any handler.
func (bus *SyncEventBus) HasSubscribers(eventType domain.EventType) bool {
	bus.mu.RLock()
	defer bus.mu.RUnlock()

	for _, sub := range bus.handlers {
		if sub.wildcard() || sub.topic == eventType {
			return true
		}
	}
	return false
}

// Close drops every subscription. Later publishes are ignored.
// Closing twice returns domain.ErrBusClosed.
func (bus *SyncEventBus) Close() error {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	if bus.closed {
		return domain.ErrBusClosed
	}
	bus.closed = true
	bus.handlers = nil
	return nil
}

// SubscriberCount returns the number of active subscriptions.
func (bus *SyncEventBus) SubscriberCount() int {
	bus.mu.RLock()
	defer bus.mu.RUnlock()
	return len(bus.handlers)
}

var _ ports.EventBus = (*SyncEventBus)(nil)
