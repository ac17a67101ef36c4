package eventbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/beatscope/internal/domain"
)

func TestResizeSource_DeliversBoxAndRatio(t *testing.T) {
	bus := NewSyncEventBus()
	defer bus.Close()
	source := NewResizeSource(bus)

	var gotBox domain.BoxSize
	var gotRatio float64
	id := source.Subscribe(func(box domain.BoxSize, ratio float64) {
		gotBox, gotRatio = box, ratio
	})
	require.NotEmpty(t, id)

	source.Notify(domain.NewBoxSize(640, 360), 1.5)

	assert.Equal(t, domain.NewBoxSize(640, 360), gotBox)
	assert.Equal(t, 1.5, gotRatio)
}

func TestResizeSource_SeesEventsPublishedOnBus(t *testing.T) {
	bus := NewSyncEventBus()
	defer bus.Close()
	source := NewResizeSource(bus)

	calls := 0
	source.Subscribe(func(domain.BoxSize, float64) { calls++ })

	bus.Publish(domain.NewContainerResizedEvent(domain.NewBoxSize(1, 1), 1))
	bus.Publish(snapshotEvent(1))

	assert.Equal(t, 1, calls)
}

func TestResizeSource_Unsubscribe(t *testing.T) {
	bus := NewSyncEventBus()
	defer bus.Close()
	source := NewResizeSource(bus)

	calls := 0
	id := source.Subscribe(func(domain.BoxSize, float64) { calls++ })
	source.Unsubscribe(id)
	source.Notify(domain.NewBoxSize(10, 10), 1)

	assert.Zero(t, calls)
	assert.Equal(t, 0, bus.SubscriberCount())
	assert.Panics(t, func() { source.Subscribe(nil) })
}
