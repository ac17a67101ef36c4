// Package ports define interfaces for dependency inversion.
// These interfaces keep the render core independent of any drawing toolkit.
package ports

import (
	"image/color"
)

// Rect is an axis-aligned rectangle in CSS pixels.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// CornerRadii holds per-corner radii in CSS pixels.
type CornerRadii struct {
	TopLeft, TopRight, BottomRight, BottomLeft float64
}

// TopRounded returns radii that round only the two top corners.
func TopRounded(r float64) CornerRadii {
	return CornerRadii{TopLeft: r, TopRight: r}
}

// ColorStop is one stop of a gradient. Offset is in [0,1].
type ColorStop struct {
	Offset float64
	Color  color.NRGBA
}

// LinearGradient is a vertical gradient running from Y0 (offset 0) to Y1 (offset 1).
type LinearGradient struct {
	Y0, Y1 float64
	Stops  []ColorStop
}

// Glow describes a soft halo drawn around a shape.
type Glow struct {
	Blur  float64 // halo radius in CSS pixels
	Color color.NRGBA
}

// TextAlign controls which edge of the text sits at the anchor point.
type TextAlign int

// Supported text alignments.
const (
	AlignLeft TextAlign = iota
	AlignRight
)

// TextStyle configures FillText.
type TextStyle struct {
	Size  float64 // font size in CSS pixels
	Color color.NRGBA
	Align TextAlign
}

// Canvas is a 2D drawing surface with a device-pixel backing store.
// All coordinates passed to drawing methods are CSS pixels; the canvas applies
// the scale given to Configure.
//
// Implementations are not required to be thread-safe. The visualizer never
// calls a canvas from two goroutines at once.
type Canvas interface {
	// Configure resizes the backing store to widthPx x heightPx device pixels
	// and sets the CSS-to-device scale. Zero dimensions are valid.
	Configure(widthPx, heightPx int, scale float64)

	// Clear erases the entire backing store.
	Clear()

	// FillRoundedRect fills r with the gradient. A nil glow draws no halo.
	FillRoundedRect(r Rect, radii CornerRadii, fill LinearGradient, glow *Glow)

	// FillText draws a single line of text with its baseline at y.
	FillText(text string, x, y float64, style TextStyle)

	// Present marks the end of a frame.
	Present()
}

// BeatIndicator is the small marker whose visibility tracks the beat flag.
type BeatIndicator interface {
	SetBeatVisible(visible bool)
}
