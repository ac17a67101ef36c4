// Package mock provides recording implementations of the drawing ports.
// These are used for testing the render core without rasterizing pixels.
package mock

import (
	"sync"

	"github.com/tejashwikalptaru/beatscope/internal/ports"
)

// OpKind identifies a recorded canvas call.
type OpKind string

// Recorded canvas operations.
const (
	OpConfigure OpKind = "configure"
	OpClear     OpKind = "clear"
	OpRect      OpKind = "rounded_rect"
	OpText      OpKind = "text"
	OpPresent   OpKind = "present"
)

// Op is one recorded canvas call. Only the fields relevant to Kind are set.
type Op struct {
	Kind OpKind

	// Configure
	WidthPx, HeightPx int
	Scale             float64

	// FillRoundedRect
	Rect  ports.Rect
	Radii ports.CornerRadii
	Fill  ports.LinearGradient
	Glow  *ports.Glow

	// FillText
	Text  string
	X, Y  float64
	Style ports.TextStyle
}

// Frame groups the drawing calls between a Clear and the following Present.
type Frame struct {
	Rects []Op
	Texts []Op
}

// Canvas records every call made to it.
//
// Thread-safety: This implementation is thread-safe.
type Canvas struct {
	mu       sync.Mutex
	ops      []Op
	widthPx  int
	heightPx int
	scale    float64
	frames   []Frame
	current  *Frame
}

// NewCanvas creates an empty recording canvas.
func NewCanvas() *Canvas {
	return &Canvas{scale: 1}
}

// Configure implements ports.Canvas.
func (c *Canvas) Configure(widthPx, heightPx int, scale float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.widthPx, c.heightPx, c.scale = widthPx, heightPx, scale
	c.ops = append(c.ops, Op{Kind: OpConfigure, WidthPx: widthPx, HeightPx: heightPx, Scale: scale})
}

// Clear implements ports.Canvas.
func (c *Canvas) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ops = append(c.ops, Op{Kind: OpClear})
	c.current = &Frame{}
}

// FillRoundedRect implements ports.Canvas.
func (c *Canvas) FillRoundedRect(r ports.Rect, radii ports.CornerRadii, fill ports.LinearGradient, glow *ports.Glow) {
	c.mu.Lock()
	defer c.mu.Unlock()
	op := Op{Kind: OpRect, Rect: r, Radii: radii, Fill: fill, Glow: glow}
	c.ops = append(c.ops, op)
	if c.current != nil {
		c.current.Rects = append(c.current.Rects, op)
	}
}

// FillText implements ports.Canvas.
func (c *Canvas) FillText(text string, x, y float64, style ports.TextStyle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	op := Op{Kind: OpText, Text: text, X: x, Y: y, Style: style}
	c.ops = append(c.ops, op)
	if c.current != nil {
		c.current.Texts = append(c.current.Texts, op)
	}
}

// Present implements ports.Canvas.
func (c *Canvas) Present() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ops = append(c.ops, Op{Kind: OpPresent})
	if c.current != nil {
		c.frames = append(c.frames, *c.current)
		c.current = nil
	}
}

// Ops returns a copy of all recorded operations.
func (c *Canvas) Ops() []Op {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Op, len(c.ops))
	copy(out, c.ops)
	return out
}

// Count returns how many operations of kind were recorded.
func (c *Canvas) Count(kind OpKind) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, op := range c.ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}

// Frames returns the completed frames in drawing order.
func (c *Canvas) Frames() []Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Frame, len(c.frames))
	copy(out, c.frames)
	return out
}

// LastFrame returns the most recent completed frame.
func (c *Canvas) LastFrame() (Frame, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.frames) == 0 {
		return Frame{}, false
	}
	return c.frames[len(c.frames)-1], true
}

// Size returns the backing-store size and scale from the last Configure.
func (c *Canvas) Size() (widthPx, heightPx int, scale float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.widthPx, c.heightPx, c.scale
}

// Reset forgets every recorded operation but keeps the configured size.
func (c *Canvas) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ops = nil
	c.frames = nil
	c.current = nil
}

// Indicator records beat indicator visibility changes.
//
// Thread-safety: This implementation is thread-safe.
type Indicator struct {
	mu      sync.Mutex
	visible bool
	history []bool
}

// NewIndicator creates a hidden indicator.
func NewIndicator() *Indicator {
	return &Indicator{}
}

// SetBeatVisible implements ports.BeatIndicator.
func (i *Indicator) SetBeatVisible(visible bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.visible = visible
	i.history = append(i.history, visible)
}

// Visible returns the current visibility.
func (i *Indicator) Visible() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.visible
}

// History returns every visibility value set, in order.
func (i *Indicator) History() []bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	out := make([]bool, len(i.history))
	copy(out, i.history)
	return out
}

// Verify interface implementation at compile time.
var (
	_ ports.Canvas        = (*Canvas)(nil)
	_ ports.BeatIndicator = (*Indicator)(nil)
)
