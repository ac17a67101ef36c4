package eventbus

import (
	"github.com/tejashwikalptaru/beatscope/internal/domain"
	"github.com/tejashwikalptaru/beatscope/internal/ports"
)

// ResizeSource adapts an EventBus to ports.ResizeSource. Layout code publishes
// domain.ContainerResizedEvent and every subscriber receives the new box.
type ResizeSource struct {
	bus ports.EventBus
}

// NewResizeSource creates a resize source backed by bus.
func NewResizeSource(bus ports.EventBus) *ResizeSource {
	return &ResizeSource{bus: bus}
}

// Subscribe implements ports.ResizeSource.
func (r *ResizeSource) Subscribe(handler ports.ResizeHandler) domain.SubscriptionID {
	if handler == nil {
		panic("resize handler cannot be nil")
	}
	return r.bus.Subscribe(domain.EventContainerResized, func(event domain.Event) {
		e, ok := event.(domain.ContainerResizedEvent)
		if !ok {
			return
		}
		handler(e.Box, e.DevicePixelRatio)
	})
}

// Unsubscribe implements ports.ResizeSource.
func (r *ResizeSource) Unsubscribe(id domain.SubscriptionID) {
	r.bus.Unsubscribe(id)
}

// Notify publishes a resize to every subscriber.
func (r *ResizeSource) Notify(box domain.BoxSize, devicePixelRatio float64) {
	r.bus.Publish(domain.NewContainerResizedEvent(box, devicePixelRatio))
}

var _ ports.ResizeSource = (*ResizeSource)(nil)
