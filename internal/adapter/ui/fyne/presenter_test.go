package fyne

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/beatscope/internal/adapter/canvas/mock"
	"github.com/tejashwikalptaru/beatscope/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/beatscope/internal/adapter/feed"
	"github.com/tejashwikalptaru/beatscope/internal/adapter/scheduler"
	"github.com/tejashwikalptaru/beatscope/internal/domain"
	"github.com/tejashwikalptaru/beatscope/internal/logger"
	"github.com/tejashwikalptaru/beatscope/internal/testutil"
	"github.com/tejashwikalptaru/beatscope/internal/visualizer"
)

type fakeView struct {
	mu       sync.Mutex
	statuses []string
}

func (v *fakeView) SetStatus(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.statuses = append(v.statuses, text)
}

func (v *fakeView) Last() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.statuses) == 0 {
		return ""
	}
	return v.statuses[len(v.statuses)-1]
}

func (v *fakeView) Count() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.statuses)
}

type presenterHarness struct {
	bus       *eventbus.SyncEventBus
	canvas    *mock.Canvas
	indicator *mock.Indicator
	sched     *scheduler.Manual
	vis       *visualizer.Component
	view      *fakeView
	presenter *Presenter
}

func newPresenterHarness() *presenterHarness {
	h := &presenterHarness{
		bus:       eventbus.NewSyncEventBus(),
		canvas:    mock.NewCanvas(),
		indicator: mock.NewIndicator(),
		sched:     scheduler.NewManual(),
		view:      &fakeView{},
	}
	h.vis = visualizer.New(visualizer.Options{
		Canvas:       h.canvas,
		Scheduler:    h.sched,
		ResizeSource: eventbus.NewResizeSource(h.bus),
		Indicator:    h.indicator,
		Logger:       logger.NewTestLogger(),
	})
	h.presenter = NewPresenter(logger.NewTestLogger(), h.bus, h.vis, h.view)
	return h
}

func TestPresenter_InitialStatus(t *testing.T) {
	h := newPresenterHarness()
	assert.Equal(t, "Waiting for audio features", h.view.Last())
}

func TestPresenter_MountPublishesLifecycleEvents(t *testing.T) {
	h := newPresenterHarness()

	var events []domain.EventType
	h.bus.SubscribeAll(func(e domain.Event) { events = append(events, e.Type()) })

	h.presenter.Mount(domain.NewBoxSize(300, 150), 2)
	h.presenter.Mount(domain.NewBoxSize(300, 150), 2)
	require.True(t, h.vis.Mounted())
	assert.Equal(t, 600, h.vis.Surface().WidthPx)

	h.presenter.Unmount()
	h.presenter.Unmount()

	assert.Equal(t, []domain.EventType{domain.EventViewMounted, domain.EventViewUnmounted}, events)
}

func TestPresenter_ForwardsSnapshots(t *testing.T) {
	h := newPresenterHarness()
	h.presenter.Mount(domain.NewBoxSize(200, 100), 1)

	h.bus.Publish(domain.NewSnapshotUpdatedEvent(domain.AudioFeatureSnapshot{
		BandEnergies: []float64{0.5, 0.25},
		IsBeat:       true,
		Tempo:        128,
	}, 1))

	assert.Equal(t, uint64(1), h.vis.Stats().Snapshots)
	frame, ok := h.canvas.LastFrame()
	require.True(t, ok)
	assert.Len(t, frame.Rects, 2)
	assert.True(t, h.indicator.Visible())
	assert.Equal(t, "Live, 128 BPM", h.view.Last())
}

func TestPresenter_StatusOnlyChangesWithTempo(t *testing.T) {
	h := newPresenterHarness()
	h.presenter.Mount(domain.NewBoxSize(200, 100), 1)
	before := h.view.Count()

	for i := range 5 {
		h.bus.Publish(domain.NewSnapshotUpdatedEvent(domain.AudioFeatureSnapshot{Tempo: 120}, uint64(i)))
	}
	assert.Equal(t, before+1, h.view.Count())

	h.bus.Publish(domain.NewSnapshotUpdatedEvent(domain.AudioFeatureSnapshot{}, 6))
	assert.Equal(t, "Live, tempo unknown", h.view.Last())
}

func TestPresenter_SourceStopped(t *testing.T) {
	h := newPresenterHarness()
	h.presenter.Mount(domain.NewBoxSize(200, 100), 1)
	h.bus.Publish(domain.NewSnapshotUpdatedEvent(domain.AudioFeatureSnapshot{BandEnergies: []float64{1}, IsBeat: true}, 1))

	h.bus.Publish(domain.NewSourceStoppedEvent(errors.New("device lost")))

	assert.Contains(t, h.view.Last(), "device lost")
	assert.False(t, h.indicator.Visible())
	frame, _ := h.canvas.LastFrame()
	assert.Empty(t, frame.Rects, "bars are cleared")

	h.bus.Publish(domain.NewSourceStoppedEvent(nil))
	assert.Equal(t, "Feed stopped", h.view.Last())
}

func TestPresenter_ResizeThroughBus(t *testing.T) {
	h := newPresenterHarness()
	h.presenter.Mount(domain.NewBoxSize(200, 100), 1)

	h.bus.Publish(domain.NewContainerResizedEvent(domain.NewBoxSize(400, 200), 2))
	h.sched.Step(time.Now())

	w, ht, scale := h.canvas.Size()
	assert.Equal(t, 800, w)
	assert.Equal(t, 400, ht)
	assert.Equal(t, 2.0, scale)
}

func TestPresenter_Shutdown(t *testing.T) {
	h := newPresenterHarness()
	h.presenter.Mount(domain.NewBoxSize(200, 100), 1)

	h.presenter.Shutdown()
	h.presenter.Shutdown()

	assert.False(t, h.vis.Mounted())
	assert.Equal(t, 0, h.sched.Pending())
	assert.False(t, h.bus.HasSubscribers(domain.EventSnapshotUpdated))
	assert.False(t, h.bus.HasSubscribers(domain.EventContainerResized))
}

func TestPresenter_LoadTempoFile(t *testing.T) {
	dir := t.TempDir()
	write := func(name string, data []byte) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, data, 0o600))
		return path
	}
	tagged := write("tagged.mp3", testutil.ID3v23("TBPM", "96"))
	untagged := write("untagged.mp3", testutil.ID3v23("TIT2", "Song"))
	garbage := write("garbage.mp3", testutil.ID3v23("TBPM", "fast"))

	tests := []struct {
		name      string
		path      string
		wantTempo float64
		wantText  string
	}{
		{"applies tag", tagged, 96, "Tempo from tagged.mp3: 96 BPM"},
		{"no tag", untagged, feed.DefaultTempo, "No tempo tag in untagged.mp3"},
		{"bad tag", garbage, feed.DefaultTempo, "Could not read tempo from garbage.mp3"},
		{"missing file", filepath.Join(dir, "missing.mp3"), feed.DefaultTempo, "Could not read tempo from missing.mp3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newPresenterHarness()
			source := feed.NewSynthetic(feed.DefaultSyntheticConfig(), logger.NewTestLogger())
			h.presenter.SetTempoController(source)

			h.presenter.LoadTempoFile(tt.path)

			assert.Equal(t, tt.wantTempo, source.Tempo())
			assert.Equal(t, tt.wantText, h.view.Last())
		})
	}
}

func TestPresenter_LoadTempoFileWithoutController(t *testing.T) {
	h := newPresenterHarness()
	before := h.view.Count()

	assert.NotPanics(t, func() { h.presenter.LoadTempoFile("/nowhere.mp3") })
	assert.Equal(t, before, h.view.Count())
}
