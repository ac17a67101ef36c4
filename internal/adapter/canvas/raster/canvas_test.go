package raster

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/beatscope/internal/ports"
)

var (
	red  = color.NRGBA{R: 255, A: 255}
	blue = color.NRGBA{B: 255, A: 255}
)

func newCanvas(t *testing.T, opts ...Option) *Canvas {
	t.Helper()
	c, err := New(opts...)
	require.NoError(t, err)
	return c
}

func solid(c color.NRGBA) ports.LinearGradient {
	return ports.LinearGradient{Y0: 0, Y1: 1, Stops: []ports.ColorStop{{Offset: 0, Color: c}}}
}

func rgba(img image.Image, x, y int) color.RGBA {
	return color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
}

func TestCanvas_ConfigureAllocatesDevicePixels(t *testing.T) {
	c := newCanvas(t)
	c.Configure(80, 40, 2)
	c.Clear()
	c.Present()

	assert.Equal(t, image.Rect(0, 0, 80, 40), c.Image().Bounds())
	assert.Equal(t, uint64(1), c.Presented())
}

func TestCanvas_ZeroSizeIsNoop(t *testing.T) {
	c := newCanvas(t)
	c.Configure(0, 0, 1)

	assert.NotPanics(t, func() {
		c.Clear()
		c.FillRoundedRect(ports.Rect{Width: 10, Height: 10}, ports.CornerRadii{}, solid(red), nil)
		c.FillText("120 BPM", 5, 5, ports.TextStyle{Size: 14, Color: red})
		c.Present()
	})
	assert.True(t, c.Image().Bounds().Empty())
	assert.Equal(t, uint64(0), c.Presented())
}

func TestCanvas_ClearUsesBackground(t *testing.T) {
	bg := color.NRGBA{R: 10, G: 20, B: 30, A: 255}
	c := newCanvas(t, WithBackground(bg))
	c.Configure(4, 4, 1)
	c.Clear()
	c.Present()

	assert.Equal(t, color.RGBA{R: 10, G: 20, B: 30, A: 255}, rgba(c.Image(), 2, 2))
}

func TestCanvas_FillRoundedRectScales(t *testing.T) {
	c := newCanvas(t)
	c.Configure(100, 100, 2)
	c.Clear()
	c.FillRoundedRect(ports.Rect{X: 10, Y: 10, Width: 20, Height: 20}, ports.CornerRadii{}, solid(red), nil)
	c.Present()
	img := c.Image()

	// CSS (10,10)-(30,30) covers device (20,20)-(60,60).
	assert.Equal(t, color.RGBA{R: 255, A: 255}, rgba(img, 40, 40))
	assert.Equal(t, color.RGBA{R: 255, A: 255}, rgba(img, 21, 58))
	assert.Equal(t, color.RGBA{A: 255}, rgba(img, 15, 40))
	assert.Equal(t, color.RGBA{A: 255}, rgba(img, 65, 40))
}

func TestCanvas_TopCornersAreRounded(t *testing.T) {
	c := newCanvas(t)
	c.Configure(40, 40, 1)
	c.Clear()
	c.FillRoundedRect(ports.Rect{X: 0, Y: 0, Width: 40, Height: 40}, ports.TopRounded(10), solid(red), nil)
	c.Present()
	img := c.Image()

	assert.Equal(t, color.RGBA{A: 255}, rgba(img, 0, 0), "top-left corner is cut")
	assert.Equal(t, color.RGBA{A: 255}, rgba(img, 39, 0), "top-right corner is cut")
	assert.Equal(t, color.RGBA{R: 255, A: 255}, rgba(img, 0, 39), "bottom corners stay square")
	assert.Equal(t, color.RGBA{R: 255, A: 255}, rgba(img, 39, 39))
}

func TestCanvas_VerticalGradient(t *testing.T) {
	c := newCanvas(t)
	c.Configure(10, 100, 1)
	c.Clear()
	c.FillRoundedRect(ports.Rect{Width: 10, Height: 100}, ports.CornerRadii{}, ports.LinearGradient{
		Y0: 100,
		Y1: 0,
		Stops: []ports.ColorStop{
			{Offset: 0, Color: red},
			{Offset: 1, Color: blue},
		},
	}, nil)
	c.Present()
	img := c.Image()

	bottom := rgba(img, 5, 99)
	top := rgba(img, 5, 0)
	assert.Greater(t, bottom.R, bottom.B, "offset 0 sits at the bottom")
	assert.Greater(t, top.B, top.R, "offset 1 sits at the top")
}

func TestCanvas_RectAboveSurfaceIsClipped(t *testing.T) {
	c := newCanvas(t)
	c.Configure(20, 20, 1)
	c.Clear()

	require.NotPanics(t, func() {
		c.FillRoundedRect(ports.Rect{X: 5, Y: -20, Width: 10, Height: 40}, ports.TopRounded(4), solid(red), nil)
	})
	c.Present()

	assert.Equal(t, color.RGBA{R: 255, A: 255}, rgba(c.Image(), 10, 0))
}

func TestCanvas_GlowSpillsOutsideShape(t *testing.T) {
	plain := newCanvas(t)
	glowing := newCanvas(t)
	for _, c := range []*Canvas{plain, glowing} {
		c.Configure(60, 60, 1)
		c.Clear()
	}

	rect := ports.Rect{X: 20, Y: 20, Width: 20, Height: 20}
	plain.FillRoundedRect(rect, ports.CornerRadii{}, solid(red), nil)
	glowing.FillRoundedRect(rect, ports.CornerRadii{}, solid(red), &ports.Glow{
		Blur:  10,
		Color: color.NRGBA{R: 255, G: 255, B: 255, A: 204},
	})
	plain.Present()
	glowing.Present()

	assert.Equal(t, color.RGBA{A: 255}, rgba(plain.Image(), 15, 30))
	halo := rgba(glowing.Image(), 15, 30)
	assert.Greater(t, halo.G, uint8(0), "halo lightens pixels next to the bar")
	assert.Equal(t, color.RGBA{R: 255, A: 255}, rgba(glowing.Image(), 30, 30), "bar is drawn over its halo")
}

func TestCanvas_FillTextAlignment(t *testing.T) {
	c := newCanvas(t)
	c.Configure(200, 40, 1)
	c.Clear()
	c.FillText("128 BPM", 190, 24, ports.TextStyle{Size: 14, Color: color.NRGBA{R: 255, G: 255, B: 255, A: 255}, Align: ports.AlignRight})
	c.Present()
	img := c.Image()

	var leftInk, rightInk int
	for y := 0; y < 40; y++ {
		for x := 0; x < 200; x++ {
			if rgba(img, x, y).R == 0 {
				continue
			}
			if x < 100 {
				leftInk++
			} else {
				rightInk++
			}
			assert.LessOrEqual(t, x, 192, "right-aligned text ends at the anchor")
		}
	}
	assert.Zero(t, leftInk)
	assert.Positive(t, rightInk)
}

func TestCanvas_PresentPublishesSnapshot(t *testing.T) {
	var hooked []image.Image
	c := newCanvas(t, WithPresentHook(func(img image.Image) { hooked = append(hooked, img) }))
	c.Configure(10, 10, 1)

	c.Clear()
	c.FillRoundedRect(ports.Rect{Width: 10, Height: 10}, ports.CornerRadii{}, solid(red), nil)
	c.Present()
	first := c.Image()

	c.Clear()
	c.FillRoundedRect(ports.Rect{Width: 10, Height: 10}, ports.CornerRadii{}, solid(blue), nil)

	assert.Equal(t, color.RGBA{R: 255, A: 255}, rgba(first, 5, 5), "front image is not drawn into")

	c.Present()
	require.Len(t, hooked, 2)
	assert.Equal(t, color.RGBA{B: 255, A: 255}, rgba(hooked[1], 5, 5))
}

func TestCanvas_PresentRotatesBuffers(t *testing.T) {
	c := newCanvas(t)
	c.Configure(16, 16, 1)

	var fronts []image.Image
	for _, col := range []color.NRGBA{red, blue, red, blue} {
		c.Clear()
		c.FillRoundedRect(ports.Rect{Width: 16, Height: 16}, ports.CornerRadii{}, solid(col), nil)
		c.Present()
		fronts = append(fronts, c.Image())
	}

	assert.NotSame(t, fronts[0], fronts[1])
	assert.NotSame(t, fronts[1], fronts[2])
	assert.NotSame(t, fronts[0], fronts[2])
	assert.Same(t, fronts[0], fronts[3], "buffers are reused every third present")
	assert.Equal(t, color.RGBA{R: 255, A: 255}, rgba(fronts[2], 8, 8), "previous front is kept for a frame")

	allocs := testing.AllocsPerRun(100, c.Present)
	assert.Zero(t, allocs, "present does not allocate")
}

func TestCanvas_SnapshotIsACopy(t *testing.T) {
	c := newCanvas(t)
	assert.True(t, c.Snapshot().Bounds().Empty())

	c.Configure(8, 8, 1)
	c.Clear()
	c.FillRoundedRect(ports.Rect{Width: 8, Height: 8}, ports.CornerRadii{}, solid(red), nil)
	c.Present()
	snap := c.Snapshot()

	for i := 0; i < 3; i++ {
		c.Clear()
		c.FillRoundedRect(ports.Rect{Width: 8, Height: 8}, ports.CornerRadii{}, solid(blue), nil)
		c.Present()
	}

	assert.Equal(t, color.RGBA{R: 255, A: 255}, rgba(snap, 4, 4))
	assert.Equal(t, color.RGBA{B: 255, A: 255}, rgba(c.Image(), 4, 4))
}

func TestCanvas_EncodePNG(t *testing.T) {
	c := newCanvas(t)

	var buf bytes.Buffer
	assert.Error(t, c.EncodePNG(&buf), "nothing presented yet")

	c.Configure(8, 6, 1)
	c.Clear()
	c.Present()
	require.NoError(t, c.EncodePNG(&buf))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 8, 6), img.Bounds())
}

func TestColorAt(t *testing.T) {
	stops := []ports.ColorStop{
		{Offset: 0, Color: color.NRGBA{R: 0, A: 255}},
		{Offset: 1, Color: color.NRGBA{R: 200, A: 255}},
	}

	assert.Equal(t, uint8(0), colorAt(stops, -1).R)
	assert.Equal(t, uint8(100), colorAt(stops, 0.5).R)
	assert.Equal(t, uint8(200), colorAt(stops, 2).R)
}
