// Package raster implements ports.Canvas on an in-memory RGBA image.
//
// Shapes are filled with golang.org/x/image/vector and text is drawn with the
// Go Mono face from golang.org/x/image/font/gofont. The canvas rotates three
// buffers: drawing goes to the back buffer, Present publishes it as the front
// image that hosts display or encode, and the previous front stays untouched
// for one more frame while a host may still be uploading it.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/tejashwikalptaru/beatscope/internal/ports"
)

// glowLayers is the number of expanded halos stacked to fake a blur.
const glowLayers = 4

// Option configures a Canvas.
type Option func(*Canvas)

// WithBackground sets the color Clear fills with. The default is opaque black.
func WithBackground(bg color.NRGBA) Option {
	return func(c *Canvas) { c.background = bg }
}

// WithPresentHook registers fn to run after every Present with the new front
// image. fn runs on the drawing goroutine and must not call back into the canvas.
func WithPresentHook(fn func(image.Image)) Option {
	return func(c *Canvas) { c.onPresent = fn }
}

// Canvas is a software-rendered ports.Canvas.
//
// Thread-safety: all methods are safe for concurrent use. Image may be called
// from a render goroutine while another goroutine draws.
type Canvas struct {
	mu         sync.Mutex
	back       *image.RGBA
	front      *image.RGBA
	spare      *image.RGBA
	scale      float64
	background color.NRGBA
	onPresent  func(image.Image)
	presented  uint64

	font  *opentype.Font
	faces map[int]font.Face
}

// New creates a canvas with an empty backing store.
func New(opts ...Option) (*Canvas, error) {
	f, err := opentype.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	c := &Canvas{
		scale:      1,
		background: color.NRGBA{A: 0xff},
		font:       f,
		faces:      make(map[int]font.Face),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Configure implements ports.Canvas.
func (c *Canvas) Configure(widthPx, heightPx int, scale float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		scale = 1
	}
	c.scale = scale

	if widthPx <= 0 || heightPx <= 0 {
		c.back, c.front, c.spare = nil, nil, nil
		return
	}
	bounds := image.Rect(0, 0, widthPx, heightPx)
	c.back = image.NewRGBA(bounds)
	c.front = image.NewRGBA(bounds)
	c.spare = image.NewRGBA(bounds)
}

// Clear implements ports.Canvas.
func (c *Canvas) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.back == nil {
		return
	}
	draw.Draw(c.back, c.back.Bounds(), image.NewUniform(c.background), image.Point{}, draw.Src)
}

// FillRoundedRect implements ports.Canvas.
func (c *Canvas) FillRoundedRect(r ports.Rect, radii ports.CornerRadii, fill ports.LinearGradient, glow *ports.Glow) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.back == nil || r.Width <= 0 || r.Height <= 0 {
		return
	}

	s := c.scale
	dev := ports.Rect{X: r.X * s, Y: r.Y * s, Width: r.Width * s, Height: r.Height * s}
	devRadii := ports.CornerRadii{
		TopLeft:     radii.TopLeft * s,
		TopRight:    radii.TopRight * s,
		BottomRight: radii.BottomRight * s,
		BottomLeft:  radii.BottomLeft * s,
	}

	if glow != nil && glow.Blur > 0 && glow.Color.A > 0 {
		c.fillGlow(dev, devRadii, glow.Blur*s, glow.Color)
	}

	c.fillPath(dev, devRadii, &gradient{
		y0:    fill.Y0 * s,
		y1:    fill.Y1 * s,
		stops: fill.Stops,
	})
}

// fillGlow stacks translucent halos of growing spread behind a shape.
func (c *Canvas) fillGlow(dev ports.Rect, radii ports.CornerRadii, blur float64, col color.NRGBA) {
	layer := col
	layer.A = uint8(math.Max(1, float64(col.A)/(glowLayers*2)))
	src := image.NewUniform(layer)

	for i := glowLayers; i >= 1; i-- {
		spread := blur * float64(i) / glowLayers
		c.fillPath(ports.Rect{
			X:      dev.X - spread,
			Y:      dev.Y - spread,
			Width:  dev.Width + 2*spread,
			Height: dev.Height + 2*spread,
		}, ports.CornerRadii{
			TopLeft:     radii.TopLeft + spread,
			TopRight:    radii.TopRight + spread,
			BottomRight: radii.BottomRight + spread,
			BottomLeft:  radii.BottomLeft + spread,
		}, src)
	}
}

// fillPath rasterizes a rounded rectangle given in device pixels.
func (c *Canvas) fillPath(dev ports.Rect, radii ports.CornerRadii, src image.Image) {
	bounds := image.Rect(
		int(math.Floor(dev.X)),
		int(math.Floor(dev.Y)),
		int(math.Ceil(dev.X+dev.Width)),
		int(math.Ceil(dev.Y+dev.Height)),
	).Intersect(c.back.Bounds())
	if bounds.Empty() {
		return
	}

	z := vector.NewRasterizer(bounds.Dx(), bounds.Dy())
	roundedRectPath(z,
		dev.X-float64(bounds.Min.X),
		dev.Y-float64(bounds.Min.Y),
		dev.Width, dev.Height, radii)
	z.Draw(c.back, bounds, src, bounds.Min)
}

func roundedRectPath(z *vector.Rasterizer, x, y, w, h float64, radii ports.CornerRadii) {
	limit := math.Min(w, h) / 2
	tl := clampRadius(radii.TopLeft, limit)
	tr := clampRadius(radii.TopRight, limit)
	br := clampRadius(radii.BottomRight, limit)
	bl := clampRadius(radii.BottomLeft, limit)

	f := func(v float64) float32 { return float32(v) }

	z.MoveTo(f(x+tl), f(y))
	z.LineTo(f(x+w-tr), f(y))
	z.QuadTo(f(x+w), f(y), f(x+w), f(y+tr))
	z.LineTo(f(x+w), f(y+h-br))
	z.QuadTo(f(x+w), f(y+h), f(x+w-br), f(y+h))
	z.LineTo(f(x+bl), f(y+h))
	z.QuadTo(f(x), f(y+h), f(x), f(y+h-bl))
	z.LineTo(f(x), f(y+tl))
	z.QuadTo(f(x), f(y), f(x+tl), f(y))
	z.ClosePath()
}

func clampRadius(r, limit float64) float64 {
	if r <= 0 || math.IsNaN(r) {
		return 0
	}
	return math.Min(r, limit)
}

// FillText implements ports.Canvas.
func (c *Canvas) FillText(text string, x, y float64, style ports.TextStyle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.back == nil || text == "" || style.Size <= 0 {
		return
	}

	face, err := c.faceFor(style.Size * c.scale)
	if err != nil {
		return
	}

	dot := fixed.Point26_6{
		X: fixed.Int26_6(math.Round(x * c.scale * 64)),
		Y: fixed.Int26_6(math.Round(y * c.scale * 64)),
	}
	if style.Align == ports.AlignRight {
		dot.X -= font.MeasureString(face, text)
	}

	d := &font.Drawer{
		Dst:  c.back,
		Src:  image.NewUniform(style.Color),
		Face: face,
		Dot:  dot,
	}
	d.DrawString(text)
}

// faceFor returns a cached face for a device-pixel size.
func (c *Canvas) faceFor(sizePx float64) (font.Face, error) {
	key := int(math.Round(sizePx))
	if key < 1 {
		key = 1
	}
	if face, ok := c.faces[key]; ok {
		return face, nil
	}
	face, err := opentype.NewFace(c.font, &opentype.FaceOptions{
		Size:    float64(key),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create face: %w", err)
	}
	c.faces[key] = face
	return face, nil
}

// Present implements ports.Canvas. The next back buffer still holds the frame
// from two presents ago; Clear before drawing over it.
func (c *Canvas) Present() {
	c.mu.Lock()
	if c.back == nil {
		c.mu.Unlock()
		return
	}
	c.front, c.back, c.spare = c.back, c.spare, c.front
	c.presented++
	front, hook := c.front, c.onPresent
	c.mu.Unlock()

	if hook != nil {
		hook(front)
	}
}

// Image returns the most recently presented frame. The image is reused as a
// back buffer two presents later, so callers that keep it longer should use
// Snapshot. An unconfigured canvas returns an empty image.
func (c *Canvas) Image() image.Image {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.front == nil {
		return image.NewRGBA(image.Rectangle{})
	}
	return c.front
}

// Presented returns how many frames have been presented.
func (c *Canvas) Presented() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.presented
}

// Snapshot returns a copy of the most recently presented frame.
func (c *Canvas) Snapshot() *image.RGBA {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.front == nil {
		return image.NewRGBA(image.Rectangle{})
	}
	img := image.NewRGBA(c.front.Bounds())
	copy(img.Pix, c.front.Pix)
	return img
}

// EncodePNG writes the most recently presented frame as a PNG. Drawing may
// continue while it encodes.
func (c *Canvas) EncodePNG(w io.Writer) error {
	img := c.Snapshot()
	if img.Bounds().Empty() {
		return fmt.Errorf("encode png: no frame has been presented")
	}
	return png.Encode(w, img)
}

// gradient is an unbounded image whose color varies along y only.
type gradient struct {
	y0, y1 float64
	stops  []ports.ColorStop
}

func (g *gradient) ColorModel() color.Model { return color.NRGBAModel }

func (g *gradient) Bounds() image.Rectangle {
	return image.Rect(-1e9, -1e9, 1e9, 1e9)
}

func (g *gradient) At(_, y int) color.Color {
	if len(g.stops) == 0 {
		return color.NRGBA{}
	}
	t := 0.0
	if span := g.y1 - g.y0; span != 0 {
		t = (float64(y) + 0.5 - g.y0) / span
	}
	return colorAt(g.stops, t)
}

// colorAt interpolates stops at offset t. Offsets outside the stops extend the
// nearest stop.
func colorAt(stops []ports.ColorStop, t float64) color.NRGBA {
	if t <= stops[0].Offset {
		return stops[0].Color
	}
	for i := 1; i < len(stops); i++ {
		a, b := stops[i-1], stops[i]
		if t > b.Offset {
			continue
		}
		span := b.Offset - a.Offset
		if span <= 0 {
			return b.Color
		}
		return mix(a.Color, b.Color, (t-a.Offset)/span)
	}
	return stops[len(stops)-1].Color
}

func mix(a, b color.NRGBA, t float64) color.NRGBA {
	ch := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}
	return color.NRGBA{R: ch(a.R, b.R), G: ch(a.G, b.G), B: ch(a.B, b.B), A: ch(a.A, b.A)}
}

var _ ports.Canvas = (*Canvas)(nil)
