// Package widgets provides custom Fyne widgets for the Beatscope application.
package widgets

import (
	"image"
	"image/color"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"github.com/tejashwikalptaru/beatscope/internal/domain"
	"github.com/tejashwikalptaru/beatscope/internal/ports"
)

const (
	indicatorSize   = 12
	indicatorInset  = 10
	indicatorFadeMs = 120
)

var (
	indicatorOn  = color.NRGBA{R: 0xff, G: 0x40, B: 0x60, A: 0xff}
	indicatorOff = color.NRGBA{R: 0xff, G: 0x40, B: 0x60, A: 0x00}
)

// PulseView hosts the visualizer inside a Fyne layout.
//
// It shows frames presented by the raster canvas and owns the beat indicator:
// a small dot that lights on a beat and fades out briefly when the beat
// ends. Size and canvas scale changes are reported together, with the scale
// as the device pixel ratio. A scale change alone arrives as a refresh, so the
// renderer checks for it there as well as on layout.
type PulseView struct {
	widget.BaseWidget

	raster    *canvas.Raster
	indicator *canvas.Circle

	mu       sync.RWMutex
	frame    image.Image
	visible  bool
	fade     *fyne.Animation
	onResize func(box domain.BoxSize, devicePixelRatio float64)

	// last reported box and ratio
	lastBox   domain.BoxSize
	lastScale float64
}

// NewPulseView creates an empty view.
func NewPulseView() *PulseView {
	v := &PulseView{}
	v.raster = canvas.NewRaster(v.generate)
	v.raster.ScaleMode = canvas.ImageScalePixels
	v.indicator = canvas.NewCircle(indicatorOff)
	v.ExtendBaseWidget(v)
	return v
}

// CreateRenderer implements fyne.Widget.
func (v *PulseView) CreateRenderer() fyne.WidgetRenderer {
	return &pulseRenderer{view: v}
}

// MinSize lets the view shrink to nothing; the surface handles zero sizes.
func (v *PulseView) MinSize() fyne.Size {
	return fyne.NewSize(0, 0)
}

// SetOnResize registers the resize callback. It is called with the current
// size right away if the view already has one.
func (v *PulseView) SetOnResize(fn func(box domain.BoxSize, devicePixelRatio float64)) {
	box, dpr := v.Box()

	v.mu.Lock()
	v.onResize = fn
	v.lastBox, v.lastScale = box, dpr
	v.mu.Unlock()

	if fn != nil && !box.IsEmpty() {
		fn(box, dpr)
	}
}

// Resize resizes the widget and reports the new box.
func (v *PulseView) Resize(size fyne.Size) {
	v.BaseWidget.Resize(size)
	v.reportChanges()
}

// reportChanges calls the resize callback if the box or the canvas scale
// differs from what was last reported.
func (v *PulseView) reportChanges() {
	box, dpr := v.Box()

	v.mu.Lock()
	if box == v.lastBox && dpr == v.lastScale {
		v.mu.Unlock()
		return
	}
	v.lastBox, v.lastScale = box, dpr
	fn := v.onResize
	v.mu.Unlock()

	if fn != nil {
		fn(box, dpr)
	}
}

// Box returns the current layout box and the scale of the canvas showing the view.
func (v *PulseView) Box() (domain.BoxSize, float64) {
	size := v.Size()
	return domain.NewBoxSize(float64(size.Width), float64(size.Height)), v.scale()
}

func (v *PulseView) scale() float64 {
	app := fyne.CurrentApp()
	if app == nil {
		return 1
	}
	c := app.Driver().CanvasForObject(v)
	if c == nil || c.Scale() <= 0 {
		return 1
	}
	return float64(c.Scale())
}

// SetFrame shows a presented frame. It is safe to call from any goroutine.
func (v *PulseView) SetFrame(img image.Image) {
	v.mu.Lock()
	v.frame = img
	v.mu.Unlock()

	fyne.Do(v.raster.Refresh)
}

// Frame returns the frame currently shown, or nil.
func (v *PulseView) Frame() image.Image {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.frame
}

func (v *PulseView) generate(_, _ int) image.Image {
	v.mu.RLock()
	frame := v.frame
	v.mu.RUnlock()
	if frame == nil {
		blank := image.NewRGBA(image.Rect(0, 0, 1, 1))
		blank.Set(0, 0, color.Black)
		return blank
	}
	return frame
}

// SetBeatVisible implements ports.BeatIndicator. Showing is immediate; hiding
// fades out over a few frames.
func (v *PulseView) SetBeatVisible(visible bool) {
	v.mu.Lock()
	if v.visible == visible {
		v.mu.Unlock()
		return
	}
	v.visible = visible
	prev := v.fade
	v.fade = nil
	if !visible {
		v.fade = canvas.NewColorRGBAAnimation(indicatorOn, indicatorOff,
			indicatorFadeMs*time.Millisecond, func(c color.Color) {
				v.indicator.FillColor = c
				v.indicator.Refresh()
			})
	}
	fade := v.fade
	v.mu.Unlock()

	fyne.Do(func() {
		if prev != nil {
			prev.Stop()
		}
		if fade != nil {
			fade.Start()
			return
		}
		v.indicator.FillColor = indicatorOn
		v.indicator.Refresh()
	})
}

// BeatVisible reports the logical indicator state, ignoring any fade in progress.
func (v *PulseView) BeatVisible() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.visible
}

type pulseRenderer struct {
	view *PulseView
}

func (r *pulseRenderer) Layout(size fyne.Size) {
	r.view.raster.Resize(size)
	r.view.raster.Move(fyne.NewPos(0, 0))
	r.view.indicator.Resize(fyne.NewSize(indicatorSize, indicatorSize))
	r.view.indicator.Move(fyne.NewPos(indicatorInset, indicatorInset))
	r.view.reportChanges()
}

func (r *pulseRenderer) MinSize() fyne.Size {
	return r.view.MinSize()
}

func (r *pulseRenderer) Refresh() {
	r.view.reportChanges()
	r.view.raster.Refresh()
	r.view.indicator.Refresh()
}

func (r *pulseRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.view.raster, r.view.indicator}
}

func (r *pulseRenderer) Destroy() {}

var _ ports.BeatIndicator = (*PulseView)(nil)
