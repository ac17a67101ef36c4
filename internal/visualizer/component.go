// Package visualizer is the render core of beatscope: it turns the latest audio
// feature snapshot into frames on a density-correct surface.
//
// A Component owns a Surface (backing-store sizing) and a Loop (continuous
// per-frame redraws). Snapshots are pushed with last-value-wins semantics and
// also trigger an immediate redraw while mounted.
package visualizer

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tejashwikalptaru/beatscope/internal/domain"
	"github.com/tejashwikalptaru/beatscope/internal/ports"
)

// Options configures a Component. Canvas and Scheduler are required.
type Options struct {
	Canvas    ports.Canvas
	Scheduler ports.FrameScheduler

	// ResizeSource, if set, is subscribed on mount and unsubscribed on unmount.
	ResizeSource ports.ResizeSource

	// Indicator, if set, follows the beat flag of every drawn snapshot.
	Indicator ports.BeatIndicator

	Logger *slog.Logger
}

// Stats counts component activity.
type Stats struct {
	Snapshots    uint64 // snapshots pushed
	Frames       uint64 // frames drawn, from either path
	TickFrames   uint64 // frames drawn by the loop
	PushFrames   uint64 // frames drawn immediately on snapshot push
	SkippedDraws uint64 // frames skipped because the surface had no area
	Resizes      uint64 // resize notifications received
}

// Component is the visualizer widget core.
//
// Thread-safety: all methods are safe for concurrent use. Surface
// reconfiguration and drawing are serialized, so a frame never observes a
// half-updated surface.
type Component struct {
	id           string
	logger       *slog.Logger
	canvas       ports.Canvas
	scheduler    ports.FrameScheduler
	resizeSource ports.ResizeSource
	indicator    ports.BeatIndicator

	mu        sync.Mutex
	surface   *Surface
	snapshot  *domain.AudioFeatureSnapshot
	box       domain.BoxSize
	ratio     float64
	mounted   bool
	loop      *Loop
	resizeSub domain.SubscriptionID
	stats     Stats
}

// New creates an unmounted component.
func New(opts Options) *Component {
	if opts.Canvas == nil {
		panic("visualizer: canvas cannot be nil")
	}
	if opts.Scheduler == nil {
		panic("visualizer: scheduler cannot be nil")
	}

	id := uuid.NewString()
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Component{
		id:           id,
		logger:       logger.With(slog.String("visualizer_id", id)),
		canvas:       opts.Canvas,
		scheduler:    opts.Scheduler,
		resizeSource: opts.ResizeSource,
		indicator:    opts.Indicator,
		surface:      NewSurface(opts.Canvas),
		ratio:        1,
	}
}

// ID returns the unique instance identifier.
func (c *Component) ID() string {
	return c.id
}

// Mount configures the surface from the last known geometry, subscribes to the
// resize source and starts the render loop. Mounting twice is a no-op.
func (c *Component) Mount() {
	c.mu.Lock()
	if c.mounted {
		c.mu.Unlock()
		return
	}
	c.mounted = true
	state := c.surface.Configure(c.box, c.ratio)

	loop := NewLoop(c.scheduler, nil)
	loop.draw = func(now time.Time) { c.onFrame(loop, now) }
	c.loop = loop
	loop.Start()
	c.mu.Unlock()

	c.logger.Debug("visualizer mounted",
		slog.Int("width_px", state.WidthPx),
		slog.Int("height_px", state.HeightPx),
		slog.Float64("scale", state.ScaleFactor))

	if c.resizeSource == nil {
		return
	}

	// Subscribe outside the lock: a source may deliver synchronously.
	id := c.resizeSource.Subscribe(c.NotifyContainerResized)

	c.mu.Lock()
	keep := c.mounted && c.loop == loop && c.resizeSub == ""
	if keep {
		c.resizeSub = id
	}
	c.mu.Unlock()

	if !keep {
		c.resizeSource.Unsubscribe(id)
	}
}

// Unmount stops the loop, withdraws the pending frame, unsubscribes from the
// resize source and releases the surface. No drawing happens afterwards.
func (c *Component) Unmount() {
	c.mu.Lock()
	if !c.mounted {
		c.mu.Unlock()
		return
	}
	c.mounted = false
	if c.loop != nil {
		c.loop.Stop()
	}
	c.surface.Release()
	if c.indicator != nil {
		c.indicator.SetBeatVisible(false)
	}
	sub := c.resizeSub
	c.resizeSub = ""
	c.mu.Unlock()

	if sub != "" && c.resizeSource != nil {
		c.resizeSource.Unsubscribe(sub)
	}

	c.logger.Debug("visualizer unmounted")
}

// SetAudioFeatureSnapshot replaces the current snapshot. While mounted it
// draws a frame immediately instead of waiting for the next tick.
func (c *Component) SetAudioFeatureSnapshot(snapshot domain.AudioFeatureSnapshot) {
	s := snapshot.Clone()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.snapshot = &s
	c.stats.Snapshots++
	if !c.mounted {
		return
	}
	if c.drawLocked() {
		c.stats.PushFrames++
	}
}

// NotifyContainerResized records the new container box and pixel ratio and,
// while mounted, reconfigures the surface.
func (c *Component) NotifyContainerResized(box domain.BoxSize, devicePixelRatio float64) {
	c.mu.Lock()
	c.box = box
	c.ratio = devicePixelRatio
	c.stats.Resizes++
	if !c.mounted {
		c.mu.Unlock()
		return
	}
	state := c.surface.Configure(box, devicePixelRatio)
	c.mu.Unlock()

	c.logger.Debug("surface configured",
		slog.String("box", box.String()),
		slog.Int("width_px", state.WidthPx),
		slog.Int("height_px", state.HeightPx),
		slog.Float64("scale", state.ScaleFactor))
}

// Mounted reports whether the component is mounted.
func (c *Component) Mounted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mounted
}

// LoopState returns the state of the most recent render loop.
// It is Idle before the first mount and Cancelled after an unmount.
func (c *Component) LoopState() domain.LoopState {
	c.mu.Lock()
	loop := c.loop
	c.mu.Unlock()

	if loop == nil {
		return domain.LoopIdle
	}
	return loop.State()
}

// Surface returns the current surface state.
func (c *Component) Surface() domain.SurfaceState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.surface.State()
}

// Stats returns a copy of the activity counters.
func (c *Component) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

func (c *Component) onFrame(loop *Loop, _ time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.mounted || c.loop != loop {
		return
	}
	if c.drawLocked() {
		c.stats.TickFrames++
	}
}

// drawLocked draws one frame. c.mu must be held.
func (c *Component) drawLocked() bool {
	res := DrawFrame(c.canvas, c.surface.State(), c.snapshot)
	if c.indicator != nil {
		c.indicator.SetBeatVisible(res.BeatVisible)
	}
	if res.Skipped {
		c.stats.SkippedDraws++
		return false
	}
	c.stats.Frames++
	return true
}
