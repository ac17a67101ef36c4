package visualizer

import (
	"image/color"
	"math"

	"github.com/tejashwikalptaru/beatscope/internal/domain"
	"github.com/tejashwikalptaru/beatscope/internal/ports"
)

const (
	barHeightRatio  = 0.8 // tallest bar at energy 1, as a fraction of surface height
	barGap          = 2.0 // CSS px between bars
	barCornerRadius = 4.0

	glowBlur = 15.0

	tempoFontSize = 14.0
	tempoMargin   = 10.0
	tempoBaseline = 24.0
)

var (
	glowColor  = color.NRGBA{R: 255, G: 255, B: 255, A: 204}
	tempoColor = color.NRGBA{R: 255, G: 255, B: 255, A: 230}
)

// DrawFrame repaints the whole surface from snapshot and returns what it drew.
//
// A zero-size surface is left untouched. A nil snapshot clears the surface and
// draws nothing else. Band energies are not clamped: bars whose height is not
// positive are skipped, and there is no upper bound.
func DrawFrame(canvas ports.Canvas, surface domain.SurfaceState, snapshot *domain.AudioFeatureSnapshot) domain.FrameResult {
	res := domain.FrameResult{BeatVisible: snapshot != nil && snapshot.IsBeat}

	if surface.IsZero() {
		res.Skipped = true
		return res
	}

	canvas.Clear()
	if snapshot == nil {
		canvas.Present()
		return res
	}

	width := surface.LayoutWidth
	height := surface.LayoutHeight

	if n := len(snapshot.BandEnergies); n > 0 {
		fill := BarGradient(snapshot, height)

		var glow *ports.Glow
		if snapshot.IsBeat {
			glow = &ports.Glow{Blur: glowBlur, Color: glowColor}
		}

		slot := width / float64(n)
		gap := math.Min(barGap, slot/4)
		barWidth := slot - gap

		for i, e := range snapshot.BandEnergies {
			h := e * barHeightRatio * height
			if math.IsNaN(h) || math.IsInf(h, 0) || h <= 0 {
				continue
			}

			bar := domain.BarGeometry{
				Band:   i,
				X:      float64(i)*slot + gap/2,
				Y:      height - h,
				Width:  barWidth,
				Height: h,
			}
			radius := math.Min(barCornerRadius, math.Min(barWidth/2, h))

			canvas.FillRoundedRect(
				ports.Rect{X: bar.X, Y: bar.Y, Width: bar.Width, Height: bar.Height},
				ports.TopRounded(radius),
				fill,
				glow,
			)
			res.Bars = append(res.Bars, bar)
		}
		res.Glow = glow != nil && len(res.Bars) > 0
	}

	if label := domain.TempoLabel(snapshot.Tempo); label != "" {
		canvas.FillText(label, width-tempoMargin, tempoBaseline, ports.TextStyle{
			Size:  tempoFontSize,
			Color: tempoColor,
			Align: ports.AlignRight,
		})
		res.TempoText = label
	}

	canvas.Present()
	return res
}

// BarGradient is the full-height fill shared by all bars: bass color at the
// bottom, mid in the middle, high at the top.
func BarGradient(snapshot *domain.AudioFeatureSnapshot, height float64) ports.LinearGradient {
	return ports.LinearGradient{
		Y0: height,
		Y1: 0,
		Stops: []ports.ColorStop{
			{Offset: 0, Color: EnergyColor(snapshot.BassEnergy)},
			{Offset: 0.5, Color: EnergyColor(snapshot.MidEnergy)},
			{Offset: 1, Color: EnergyColor(snapshot.HighEnergy)},
		},
	}
}
