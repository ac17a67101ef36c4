// Package domain contains core models and logic with no external dependencies.
// This package defines the fundamental values exchanged with the beatscope visualizer.
package domain

import (
	"fmt"
	"math"
)

// AudioFeatureSnapshot is one update of audio features produced by an external
// integration. It is treated as an immutable value: the visualizer only reads it.
type AudioFeatureSnapshot struct {
	// BandEnergies holds one normalized magnitude per frequency band.
	// The length may change between snapshots and may be zero.
	BandEnergies []float64

	// IsBeat is true only for snapshots coincident with a detected pulse.
	IsBeat bool

	// Tempo is the beats-per-minute estimate. Zero means unknown.
	Tempo float64

	// BassEnergy, MidEnergy and HighEnergy summarize three broad bands.
	// They only drive coloring and are independent of BandEnergies.
	BassEnergy float64
	MidEnergy  float64
	HighEnergy float64
}

// Clone returns a copy that shares no memory with s.
func (s AudioFeatureSnapshot) Clone() AudioFeatureSnapshot {
	out := s
	if s.BandEnergies != nil {
		out.BandEnergies = make([]float64, len(s.BandEnergies))
		copy(out.BandEnergies, s.BandEnergies)
	}
	return out
}

// BoxSize is a container layout box in CSS pixels.
type BoxSize struct {
	Width  float64
	Height float64
}

// NewBoxSize creates a box of the given CSS size.
func NewBoxSize(width, height float64) BoxSize {
	return BoxSize{Width: width, Height: height}
}

// IsEmpty reports whether the box has no drawable area.
func (b BoxSize) IsEmpty() bool {
	return !(b.Width > 0) || !(b.Height > 0)
}

// String implements fmt.Stringer.
func (b BoxSize) String() string {
	return fmt.Sprintf("%gx%g", b.Width, b.Height)
}

// SurfaceState describes the backing store of the drawing surface.
type SurfaceState struct {
	// WidthPx and HeightPx are the backing-store dimensions in device pixels.
	WidthPx  int
	HeightPx int

	// ScaleFactor is the device pixel ratio applied to every draw call.
	ScaleFactor float64

	// LayoutWidth and LayoutHeight are the CSS-pixel box the state was built from.
	LayoutWidth  float64
	LayoutHeight float64
}

// IsZero reports whether drawing into the surface would be a no-op.
func (s SurfaceState) IsZero() bool {
	return s.WidthPx <= 0 || s.HeightPx <= 0
}

// LoopState is the state of a render loop.
type LoopState int

// Render loop states.
const (
	LoopIdle LoopState = iota
	LoopScheduled
	LoopDrawing
	LoopCancelled
)

// String implements fmt.Stringer.
func (s LoopState) String() string {
	switch s {
	case LoopIdle:
		return "idle"
	case LoopScheduled:
		return "scheduled"
	case LoopDrawing:
		return "drawing"
	case LoopCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("LoopState(%d)", int(s))
	}
}

// BarGeometry is the CSS-pixel rectangle of one drawn bar.
type BarGeometry struct {
	Band   int
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// FrameResult reports what a single frame drew.
type FrameResult struct {
	// Skipped is true when the surface had no area and nothing was touched.
	Skipped bool

	// Bars lists the bars that were actually drawn, in band order.
	Bars []BarGeometry

	// Glow is true when the bars were drawn with the beat halo.
	Glow bool

	// TempoText is the tempo label drawn, or empty when none was drawn.
	TempoText string

	// BeatVisible is the indicator visibility after this frame.
	BeatVisible bool
}

// TempoLabel returns the text drawn for a tempo, or "" when no text must be drawn.
func TempoLabel(tempo float64) string {
	if math.IsNaN(tempo) || math.IsInf(tempo, 0) || tempo <= 0 {
		return ""
	}
	bpm := int(math.Round(tempo))
	if bpm <= 0 {
		return ""
	}
	return fmt.Sprintf("%d BPM", bpm)
}
