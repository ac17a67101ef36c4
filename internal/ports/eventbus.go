package ports

import (
	"github.com/tejashwikalptaru/beatscope/internal/domain"
)

// EventBus carries feature and layout events between the feed, the host
// layout and the presenter, so none of them hold references to each other.
//
//	id := bus.Subscribe(domain.EventSnapshotUpdated, func(event domain.Event) {
//	    e := event.(domain.SnapshotUpdatedEvent)
//	    component.SetAudioFeatureSnapshot(e.Snapshot)
//	})
//	defer bus.Unsubscribe(id)
//
// Thread-safety: Implementations must be thread-safe.
type EventBus interface {
	// Publish delivers event to every matching subscriber. Handlers should
	// return quickly; a snapshot handler runs once per feed update.
	Publish(event domain.Event)

	// Subscribe registers handler for one event type. Registering the same
	// handler twice yields two subscriptions.
	Subscribe(eventType domain.EventType, handler domain.EventHandler) domain.SubscriptionID

	// Unsubscribe removes a subscription. Unknown IDs are ignored.
	Unsubscribe(id domain.SubscriptionID)

	// SubscribeAll registers a handler for every event type.
	SubscribeAll(handler domain.EventHandler) domain.SubscriptionID

	// HasSubscribers reports whether publishing eventType would reach a handler.
	HasSubscribers(eventType domain.EventType) bool

	// Close drops all subscriptions. Later publishes are ignored.
	Close() error
}
