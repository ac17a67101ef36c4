// Package fyne provides Fyne UI adapter implementations.
// This package hosts the visualizer in a Fyne window.
package fyne

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/tejashwikalptaru/beatscope/internal/adapter/feed"
	"github.com/tejashwikalptaru/beatscope/internal/domain"
	"github.com/tejashwikalptaru/beatscope/internal/ports"
	"github.com/tejashwikalptaru/beatscope/internal/visualizer"
)

// UIView defines the interface for UI updates outside the visualizer itself.
type UIView interface {
	SetStatus(text string)
}

// Presenter connects the event bus to the visualizer component and the window.
//
// Responsibilities:
// - Forward snapshot events to the visualizer
// - Mount and unmount the visualizer with the window lifecycle
// - Keep the status line in sync with the feed
// - Apply tempo tags read from audio files to the feed
//
// Thread-safety: All operations are thread-safe.
type Presenter struct {
	logger *slog.Logger
	bus    ports.EventBus
	vis    *visualizer.Component
	view   UIView
	tempo  ports.TempoController

	mu        sync.Mutex
	subs      []domain.SubscriptionID
	tempoText string
	stopped   bool

	shutdownOnce sync.Once
}

// NewPresenter creates a presenter and subscribes it to the bus.
func NewPresenter(
	logger *slog.Logger,
	bus ports.EventBus,
	vis *visualizer.Component,
	view UIView,
) *Presenter {
	p := &Presenter{
		logger: logger.With(slog.String("component", "presenter")),
		bus:    bus,
		vis:    vis,
		view:   view,
	}
	p.subscribeToEvents()
	p.view.SetStatus("Waiting for audio features")
	return p
}

func (p *Presenter) subscribeToEvents() {
	subscriptions := []struct {
		eventType domain.EventType
		handler   domain.EventHandler
	}{
		{domain.EventSnapshotUpdated, p.onSnapshotUpdated},
		{domain.EventSourceStopped, p.onSourceStopped},
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, s := range subscriptions {
		p.subs = append(p.subs, p.bus.Subscribe(s.eventType, s.handler))
	}
}

// SetTempoController connects the feed whose tempo LoadTempoFile changes.
// This must be called before the window is shown.
func (p *Presenter) SetTempoController(tempo ports.TempoController) {
	p.tempo = tempo
}

// LoadTempoFile reads the BPM tag of an audio file and applies it to the feed.
// The outcome is reported on the status line.
func (p *Presenter) LoadTempoFile(path string) {
	if p.tempo == nil {
		p.logger.Warn("no tempo controller, ignoring tempo file", slog.String("path", path))
		return
	}

	name := filepath.Base(path)
	bpm, err := feed.ReadTempoTag(path)
	if err == nil {
		err = p.tempo.SetTempo(bpm)
	}
	switch {
	case errors.Is(err, domain.ErrNoTempoTag):
		p.view.SetStatus(fmt.Sprintf("No tempo tag in %s", name))
		return
	case err != nil:
		p.logger.Warn("failed to load tempo file", slog.String("path", path), slog.Any("error", err))
		p.view.SetStatus(fmt.Sprintf("Could not read tempo from %s", name))
		return
	}

	p.logger.Info("tempo loaded from file", slog.String("path", path), slog.Float64("tempo", bpm))
	p.view.SetStatus(fmt.Sprintf("Tempo from %s: %s", name, domain.TempoLabel(bpm)))
}

// Mount attaches the visualizer with the given initial geometry.
func (p *Presenter) Mount(box domain.BoxSize, devicePixelRatio float64) {
	p.vis.NotifyContainerResized(box, devicePixelRatio)
	if p.vis.Mounted() {
		return
	}
	p.vis.Mount()
	p.logger.Debug("visualizer mounted", slog.String("box", box.String()))
	p.bus.Publish(domain.NewViewMountedEvent(p.vis.ID()))
}

// Unmount detaches the visualizer. It does nothing if it is not mounted.
func (p *Presenter) Unmount() {
	if !p.vis.Mounted() {
		return
	}
	p.vis.Unmount()
	p.logger.Debug("visualizer unmounted")
	p.bus.Publish(domain.NewViewUnmountedEvent(p.vis.ID()))
}

// Shutdown unsubscribes from the bus and unmounts the visualizer.
func (p *Presenter) Shutdown() {
	p.shutdownOnce.Do(func() {
		p.mu.Lock()
		subs := p.subs
		p.subs = nil
		p.mu.Unlock()

		for _, id := range subs {
			p.bus.Unsubscribe(id)
		}
		p.Unmount()
	})
}

// Event handlers

func (p *Presenter) onSnapshotUpdated(event domain.Event) {
	e, ok := event.(domain.SnapshotUpdatedEvent)
	if !ok {
		return
	}
	p.vis.SetAudioFeatureSnapshot(e.Snapshot)

	text := domain.TempoLabel(e.Snapshot.Tempo)
	p.mu.Lock()
	changed := text != p.tempoText || p.stopped
	p.tempoText = text
	p.stopped = false
	p.mu.Unlock()

	if changed {
		p.view.SetStatus(statusLine(text))
	}
}

func (p *Presenter) onSourceStopped(event domain.Event) {
	e, ok := event.(domain.SourceStoppedEvent)
	if !ok {
		return
	}

	p.mu.Lock()
	p.stopped = true
	p.mu.Unlock()

	// Clear the bars; the loop keeps running on an empty snapshot.
	p.vis.SetAudioFeatureSnapshot(domain.AudioFeatureSnapshot{})

	if e.Err != nil {
		p.logger.Warn("feature source stopped with error", slog.Any("error", e.Err))
		p.view.SetStatus(fmt.Sprintf("Feed failed: %v", e.Err))
		return
	}
	p.view.SetStatus("Feed stopped")
}

func statusLine(tempoText string) string {
	if tempoText == "" {
		return "Live, tempo unknown"
	}
	return "Live, " + tempoText
}
