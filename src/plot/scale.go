package plot

import (
	"math"

	"github.com/IzmdI/rawstore-plots/src/series"
)

// Headroom stretches the value domain above the tallest bar.
const Headroom = 1.1

// BandPadding is the inner and outer padding of the time-bucket scale, as a fraction of the step.
const BandPadding = 0.3

// Margins surround the plot area inside a chart region.
type Margins struct {
	Top, Right, Bottom, Left float64
}

// DefaultMargins leave room for rotated time labels below and the axis title on the left.
func DefaultMargins() Margins { return Margins{Top: 60, Right: 80, Bottom: 100, Left: 80} }

// DefaultChartHeight is the pixel height of one chart region.
const DefaultChartHeight = 500

// Viewport is the inner plot area in pixels.
type Viewport struct {
	Width, Height float64
}

// Inner subtracts the margins from a region size. Negative results are clamped to zero.
func (m Margins) Inner(width, height float64) Viewport {
	return Viewport{
		Width:  math.Max(0, width-m.Left-m.Right),
		Height: math.Max(0, height-m.Top-m.Bottom),
	}
}

// BandScale maps record positions to equally sized horizontal slots. Labels are kept per
// position, so repeated labels still get their own band.
type BandScale struct {
	labels    []string
	start     float64
	step      float64
	bandwidth float64
}

// NewBandScale spreads len(labels) bands over [r0, r1] with the given padding on both sides
// and between bands, centring the bands inside the range.
func NewBandScale(labels []string, r0, r1, padding float64) BandScale {
	n := float64(len(labels))
	step := (r1 - r0) / math.Max(1, n-padding+2*padding)
	start := r0 + (r1-r0-step*(n-padding))*0.5
	return BandScale{
		labels:    append([]string(nil), labels...),
		start:     start,
		step:      step,
		bandwidth: step * (1 - padding),
	}
}

// Len is the number of bands.
func (b BandScale) Len() int { return len(b.labels) }

// Pos is the left edge of band i.
func (b BandScale) Pos(i int) float64 { return b.start + b.step*float64(i) }

// Center is the middle of band i.
func (b BandScale) Center(i int) float64 { return b.Pos(i) + b.bandwidth/2 }

func (b BandScale) Bandwidth() float64 { return b.bandwidth }
func (b BandScale) Step() float64      { return b.step }

// Label is the category of band i.
func (b BandScale) Label(i int) string {
	if i < 0 || i >= len(b.labels) {
		return ""
	}
	return b.labels[i]
}

// LinearScale maps a value domain onto a pixel range.
type LinearScale struct {
	D0, D1 float64
	R0, R1 float64
}

// Map converts v to a pixel coordinate. A collapsed domain maps everything to R0, which for
// the inverted y range is the baseline, so all bars get zero height.
func (s LinearScale) Map(v float64) float64 {
	if s.D1 == s.D0 {
		return s.R0
	}
	return s.R0 + (v-s.D0)/(s.D1-s.D0)*(s.R1-s.R0)
}

// Ticks returns at most n round values inside the domain.
func (s LinearScale) Ticks(n int) []float64 { return NiceTicks(s.D0, s.D1, n) }

// Scales is the coordinate mapping of one chart.
type Scales struct {
	X        BandScale
	Y        LinearScale
	Viewport Viewport
}

// BuildScales derives the time-bucket and value scales for spec over the inner viewport.
// It is a pure function of its inputs.
func BuildScales(records []series.Record, spec ChartSpec, vp Viewport) Scales {
	labels := make([]string, len(records))
	for i, r := range records {
		labels[i] = r.TimeLabel
	}
	return Scales{
		X:        NewBandScale(labels, 0, vp.Width, BandPadding),
		Y:        LinearScale{D0: 0, D1: Headroom * spec.MaxValue(records), R0: vp.Height, R1: 0},
		Viewport: vp,
	}
}
