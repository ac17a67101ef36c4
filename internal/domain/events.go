// Package domain defines events for the event-driven host around the visualizer.
// Events decouple the feature producer and the layout system from the widget.
package domain

import (
	"time"
)

// Event is the base interface for all events in the system.
// All events must implement this interface to be published via the event bus.
type Event interface {
	// Type returns the event type identifier
	Type() EventType

	// Timestamp returns when the event occurred
	Timestamp() time.Time
}

// EventType is a string identifier for different event types.
type EventType string

// Event type constants define all possible events in the system.
const (
	// Feature events
	EventSnapshotUpdated EventType = "snapshot.updated"
	EventSourceStopped   EventType = "source.stopped"

	// Layout events
	EventContainerResized EventType = "container.resized"

	// Lifecycle events
	EventViewMounted   EventType = "view.mounted"
	EventViewUnmounted EventType = "view.unmounted"
)

// EventHandler is a function that handles events.
type EventHandler func(event Event)

// SubscriptionID uniquely identifies an event subscription.
type SubscriptionID string

// baseEvent provides common event functionality.
// All concrete events should embed this struct.
type baseEvent struct {
	timestamp time.Time
}

// Timestamp returns when the event occurred.
func (e baseEvent) Timestamp() time.Time {
	return e.timestamp
}

// newBaseEvent creates a new base event with the current timestamp.
func newBaseEvent() baseEvent {
	return baseEvent{timestamp: time.Now()}
}

// SnapshotUpdatedEvent is published whenever the feature source produces a snapshot.
type SnapshotUpdatedEvent struct {
	baseEvent
	Snapshot AudioFeatureSnapshot
	Sequence uint64
}

// Type returns the event type.
func (e SnapshotUpdatedEvent) Type() EventType {
	return EventSnapshotUpdated
}

// NewSnapshotUpdatedEvent creates a new SnapshotUpdatedEvent.
func NewSnapshotUpdatedEvent(snapshot AudioFeatureSnapshot, sequence uint64) SnapshotUpdatedEvent {
	return SnapshotUpdatedEvent{
		baseEvent: newBaseEvent(),
		Snapshot:  snapshot,
		Sequence:  sequence,
	}
}

// SourceStoppedEvent is published when the feature source stops producing.
type SourceStoppedEvent struct {
	baseEvent
	Err error // nil on a clean stop
}

// Type returns the event type.
func (e SourceStoppedEvent) Type() EventType {
	return EventSourceStopped
}

// NewSourceStoppedEvent creates a new SourceStoppedEvent.
func NewSourceStoppedEvent(err error) SourceStoppedEvent {
	return SourceStoppedEvent{
		baseEvent: newBaseEvent(),
		Err:       err,
	}
}

// ContainerResizedEvent is published by the layout system when the widget box changes.
type ContainerResizedEvent struct {
	baseEvent
	Box              BoxSize
	DevicePixelRatio float64
}

// Type returns the event type.
func (e ContainerResizedEvent) Type() EventType {
	return EventContainerResized
}

// NewContainerResizedEvent creates a new ContainerResizedEvent.
func NewContainerResizedEvent(box BoxSize, devicePixelRatio float64) ContainerResizedEvent {
	return ContainerResizedEvent{
		baseEvent:        newBaseEvent(),
		Box:              box,
		DevicePixelRatio: devicePixelRatio,
	}
}

// ViewMountedEvent is published by the host after the visualizer is mounted.
type ViewMountedEvent struct {
	baseEvent
	ViewID string
}

// Type returns the event type.
func (e ViewMountedEvent) Type() EventType {
	return EventViewMounted
}

// NewViewMountedEvent creates a new ViewMountedEvent.
func NewViewMountedEvent(viewID string) ViewMountedEvent {
	return ViewMountedEvent{
		baseEvent: newBaseEvent(),
		ViewID:    viewID,
	}
}

// ViewUnmountedEvent is published by the host after the visualizer is unmounted.
type ViewUnmountedEvent struct {
	baseEvent
	ViewID string
}

// Type returns the event type.
func (e ViewUnmountedEvent) Type() EventType {
	return EventViewUnmounted
}

// NewViewUnmountedEvent creates a new ViewUnmountedEvent.
func NewViewUnmountedEvent(viewID string) ViewUnmountedEvent {
	return ViewUnmountedEvent{
		baseEvent: newBaseEvent(),
		ViewID:    viewID,
	}
}
