package visualizer

import (
	"math"

	"github.com/tejashwikalptaru/beatscope/internal/domain"
	"github.com/tejashwikalptaru/beatscope/internal/ports"
)

// Surface keeps a canvas backing store matched to the container box and the
// device pixel ratio, so drawing can use CSS pixels and stay sharp.
//
// Surface is not thread-safe; Component serializes access to it.
type Surface struct {
	canvas     ports.Canvas
	state      domain.SurfaceState
	configured bool
}

// NewSurface creates an unconfigured surface over canvas.
func NewSurface(canvas ports.Canvas) *Surface {
	return &Surface{canvas: canvas}
}

// Configure sizes the backing store to box x devicePixelRatio device pixels,
// rounded to integers, and sets the canvas scale to devicePixelRatio.
//
// Repeating a call with the same inputs recomputes the same state and leaves
// the backing store untouched. An empty box yields a zero-size surface.
func (s *Surface) Configure(box domain.BoxSize, devicePixelRatio float64) domain.SurfaceState {
	state := computeSurfaceState(box, devicePixelRatio)
	if s.configured && state == s.state {
		return s.state
	}

	s.canvas.Configure(state.WidthPx, state.HeightPx, state.ScaleFactor)
	s.state = state
	s.configured = true
	return s.state
}

// State returns the current surface state.
func (s *Surface) State() domain.SurfaceState {
	return s.state
}

// Release drops the backing store. The next Configure rebuilds it.
func (s *Surface) Release() {
	if !s.configured {
		return
	}
	s.canvas.Configure(0, 0, 1)
	s.state = domain.SurfaceState{}
	s.configured = false
}

func computeSurfaceState(box domain.BoxSize, devicePixelRatio float64) domain.SurfaceState {
	ratio := devicePixelRatio
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) || ratio <= 0 {
		ratio = 1
	}

	width := sanitizeLength(box.Width)
	height := sanitizeLength(box.Height)

	return domain.SurfaceState{
		WidthPx:      int(math.Round(width * ratio)),
		HeightPx:     int(math.Round(height * ratio)),
		ScaleFactor:  ratio,
		LayoutWidth:  width,
		LayoutHeight: height,
	}
}

func sanitizeLength(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
