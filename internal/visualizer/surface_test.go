package visualizer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/beatscope/internal/adapter/canvas/mock"
	"github.com/tejashwikalptaru/beatscope/internal/domain"
)

func TestSurface_ConfigureScalesByPixelRatio(t *testing.T) {
	canvas := mock.NewCanvas()
	surface := NewSurface(canvas)

	state := surface.Configure(domain.NewBoxSize(400, 200), 2)

	assert.Equal(t, 800, state.WidthPx)
	assert.Equal(t, 400, state.HeightPx)
	assert.Equal(t, 2.0, state.ScaleFactor)
	assert.Equal(t, 400.0, state.LayoutWidth)
	assert.Equal(t, 200.0, state.LayoutHeight)

	w, h, scale := canvas.Size()
	assert.Equal(t, 800, w)
	assert.Equal(t, 400, h)
	assert.Equal(t, 2.0, scale)
}

func TestSurface_ConfigureRoundsToDevicePixels(t *testing.T) {
	surface := NewSurface(mock.NewCanvas())

	state := surface.Configure(domain.NewBoxSize(100.3, 50.5), 1.5)

	assert.Equal(t, int(math.Round(100.3*1.5)), state.WidthPx)
	assert.Equal(t, int(math.Round(50.5*1.5)), state.HeightPx)
}

func TestSurface_ConfigureIsIdempotent(t *testing.T) {
	canvas := mock.NewCanvas()
	surface := NewSurface(canvas)

	first := surface.Configure(domain.NewBoxSize(320, 240), 1.25)
	second := surface.Configure(domain.NewBoxSize(320, 240), 1.25)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, canvas.Count(mock.OpConfigure), "backing store must not be rebuilt for identical inputs")

	snapshot := &domain.AudioFeatureSnapshot{BandEnergies: []float64{0.2, 0.9}, Tempo: 90}
	DrawFrame(canvas, first, snapshot)
	frameA, _ := canvas.LastFrame()
	surface.Configure(domain.NewBoxSize(320, 240), 1.25)
	DrawFrame(canvas, surface.State(), snapshot)
	frameB, _ := canvas.LastFrame()
	assert.Equal(t, frameA, frameB)
}

func TestSurface_ConfigureRebuildsOnChange(t *testing.T) {
	canvas := mock.NewCanvas()
	surface := NewSurface(canvas)

	surface.Configure(domain.NewBoxSize(320, 240), 1)
	surface.Configure(domain.NewBoxSize(320, 240), 2)
	surface.Configure(domain.NewBoxSize(640, 240), 2)

	assert.Equal(t, 3, canvas.Count(mock.OpConfigure))
	assert.Equal(t, 1280, surface.State().WidthPx)
}

func TestSurface_ZeroSizeContainer(t *testing.T) {
	surface := NewSurface(mock.NewCanvas())

	state := surface.Configure(domain.BoxSize{}, 2)

	assert.True(t, state.IsZero())
	assert.Equal(t, 0, state.WidthPx)
	assert.Equal(t, 0, state.HeightPx)
}

func TestSurface_InvalidInputs(t *testing.T) {
	tests := []struct {
		name   string
		box    domain.BoxSize
		ratio  float64
		wantW  int
		wantH  int
		wantSF float64
	}{
		{"zero ratio falls back to one", domain.NewBoxSize(10, 20), 0, 10, 20, 1},
		{"negative ratio falls back to one", domain.NewBoxSize(10, 20), -3, 10, 20, 1},
		{"NaN ratio falls back to one", domain.NewBoxSize(10, 20), math.NaN(), 10, 20, 1},
		{"negative box is empty", domain.NewBoxSize(-10, 20), 2, 0, 40, 2},
		{"NaN box is empty", domain.NewBoxSize(math.NaN(), math.NaN()), 2, 0, 0, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := NewSurface(mock.NewCanvas()).Configure(tt.box, tt.ratio)
			assert.Equal(t, tt.wantW, state.WidthPx)
			assert.Equal(t, tt.wantH, state.HeightPx)
			assert.Equal(t, tt.wantSF, state.ScaleFactor)
		})
	}
}

func TestSurface_Release(t *testing.T) {
	canvas := mock.NewCanvas()
	surface := NewSurface(canvas)

	surface.Configure(domain.NewBoxSize(100, 100), 2)
	surface.Release()

	assert.True(t, surface.State().IsZero())
	w, h, _ := canvas.Size()
	assert.Equal(t, 0, w)
	assert.Equal(t, 0, h)

	// Releasing twice does not touch the canvas again.
	before := canvas.Count(mock.OpConfigure)
	surface.Release()
	require.Equal(t, before, canvas.Count(mock.OpConfigure))

	// The same geometry is rebuilt after a release.
	state := surface.Configure(domain.NewBoxSize(100, 100), 2)
	assert.Equal(t, 200, state.WidthPx)
}
