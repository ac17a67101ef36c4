package visualizer

import (
	"image/color"
	"math"
)

// Energy-to-color sweep endpoints.
const (
	coldHue        = 240.0 // degrees, energy 0
	hotHue         = 0.0   // degrees, energy 1
	coldSaturation = 0.8
	hotSaturation  = 1.0
	coldLightness  = 0.4
	hotLightness   = 0.6
)

// HSL is a color in hue/saturation/lightness form.
// H is in degrees, S and L are fractions in [0,1].
type HSL struct {
	H, S, L float64
}

// EnergyHSL maps an energy to a color: dim blue at 0, bright red at 1.
// The mapping is linear and not clamped; NRGBA wraps the hue and clamps S and L.
func EnergyHSL(e float64) HSL {
	return HSL{
		H: lerp(coldHue, hotHue, e),
		S: lerp(coldSaturation, hotSaturation, e),
		L: lerp(coldLightness, hotLightness, e),
	}
}

// EnergyColor is EnergyHSL converted to an opaque RGB color.
func EnergyColor(e float64) color.NRGBA {
	return EnergyHSL(e).NRGBA()
}

// NRGBA converts c to an opaque 8-bit color.
func (c HSL) NRGBA() color.NRGBA {
	h := math.Mod(c.H, 360)
	if math.IsNaN(h) {
		h = 0
	}
	if h < 0 {
		h += 360
	}

	r, g, b := HSLToRGB(h/360, clamp01(c.S), clamp01(c.L))
	return color.NRGBA{R: to8(r), G: to8(g), B: to8(b), A: 255}
}

// HSLToRGB converts HSL to RGB (h, s, l in 0-1 range).
func HSLToRGB(h, s, l float64) (r, g, b float64) {
	if s == 0 {
		return l, l, l
	}

	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q

	r = hueToRGB(p, q, h+1.0/3.0)
	g = hueToRGB(p, q, h)
	b = hueToRGB(p, q, h-1.0/3.0)

	return r, g, b
}

// hueToRGB is a helper for HSL to RGB conversion.
func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t += 1
	}
	if t > 1 {
		t -= 1
	}
	if t < 1.0/6.0 {
		return p + (q-p)*6*t
	}
	if t < 0.5 {
		return q
	}
	if t < 2.0/3.0 {
		return p + (q-p)*(2.0/3.0-t)*6
	}
	return p
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

func to8(v float64) uint8 {
	return uint8(math.Round(clamp01(v) * 255))
}
