package plot

import (
	"time"

	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/IzmdI/rawstore-plots/src/locale"
	"github.com/IzmdI/rawstore-plots/src/logger"
	"github.com/IzmdI/rawstore-plots/src/series"
)

var log = logger.Component("plot")

// Shape classes, used by tests and by surfaces that style per class.
const (
	ClassGrid      = "grid"
	ClassAxis      = "axis"
	ClassTick      = "tick"
	ClassTickLabel = "tick-label"
	ClassBar       = "bar"
	ClassTitle     = "axis-title"
)

var (
	gridColor  = drawing.Color{R: 224, G: 224, B: 224, A: 255}
	axisColor  = drawing.Color{R: 51, G: 51, B: 51, A: 255}
	labelColor = drawing.Color{R: 51, G: 51, B: 51, A: 255}
)

const (
	tickSize      = 6
	tickPadding   = 3
	labelFontSize = 10
	titleFontSize = 13
	xLabelAngle   = -45
)

// ChartRenderer draws one metric-pair chart. It keeps no state between calls.
type ChartRenderer struct {
	Spec    ChartSpec
	Margins Margins
	Format  locale.Formatter
}

// Layout computes the scales for a region of width x height pixels.
func (c ChartRenderer) Layout(records []series.Record, width, height float64) Scales {
	return BuildScales(records, c.Spec, c.Margins.Inner(width, height))
}

// Render clears s and draws the full chart: gridlines, both axes, paired bars and the
// rotated axis title. records must be non-empty.
func (c ChartRenderer) Render(s DrawSurface, records []series.Record, sc Scales) {
	defer log.TimeTrack(time.Now(), "render "+c.Spec.Name)
	s.Clear()
	s.SetOrigin(c.Margins.Left, c.Margins.Top)

	innerW, innerH := sc.Viewport.Width, sc.Viewport.Height
	ticks := sc.Y.Ticks(MaxYTicks)

	for _, v := range ticks {
		y := sc.Y.Map(v)
		s.AppendShape(Shape{Kind: ShapeLine, Class: ClassGrid, X: 0, Y: y, X2: innerW, Y2: y, Stroke: gridColor, StrokeWidth: 1})
	}

	// x axis along the baseline, one tick per band
	s.AppendShape(Shape{Kind: ShapeLine, Class: ClassAxis, X: 0, Y: innerH, X2: innerW, Y2: innerH, Stroke: axisColor, StrokeWidth: 1})
	for i := 0; i < sc.X.Len(); i++ {
		x := sc.X.Center(i)
		s.AppendShape(Shape{Kind: ShapeLine, Class: ClassTick, X: x, Y: innerH, X2: x, Y2: innerH + tickSize, Stroke: axisColor, StrokeWidth: 1})
		s.AppendShape(Shape{
			Kind:     ShapeText,
			Class:    ClassTickLabel,
			X:        x - 0.8*labelFontSize*0.7071,
			Y:        innerH + tickSize + tickPadding + labelFontSize,
			Text:     sc.X.Label(i),
			Rotation: xLabelAngle,
			Anchor:   AnchorEnd,
			FontSize: labelFontSize,
			Fill:     labelColor,
		})
	}

	s.AppendShape(Shape{Kind: ShapeLine, Class: ClassAxis, X: 0, Y: 0, X2: 0, Y2: innerH, Stroke: axisColor, StrokeWidth: 1})
	for _, v := range ticks {
		y := sc.Y.Map(v)
		s.AppendShape(Shape{Kind: ShapeLine, Class: ClassTick, X: -tickSize, Y: y, X2: 0, Y2: y, Stroke: axisColor, StrokeWidth: 1})
		s.AppendShape(Shape{
			Kind:     ShapeText,
			Class:    ClassTickLabel,
			X:        -tickSize - tickPadding,
			Y:        y + 0.32*labelFontSize,
			Text:     c.Format.Number(v),
			Anchor:   AnchorEnd,
			FontSize: labelFontSize,
			Fill:     labelColor,
		})
	}

	half := sc.X.Bandwidth() / 2
	for _, side := range []struct {
		field  Field
		offset float64
	}{{c.Spec.Primary, 0}, {c.Spec.Secondary, half}} {
		color := c.Spec.Color(side.field)
		for i, r := range records {
			top := sc.Y.Map(side.field.Value(r))
			s.AppendShape(Shape{
				Kind:  ShapeRect,
				Class: ClassBar + " " + string(side.field),
				X:     sc.X.Pos(i) + side.offset,
				Y:     top,
				W:     half,
				H:     innerH - top,
				Fill:  color,
				Bar:   &BarRef{Index: i, Field: side.field},
			})
		}
	}

	s.AppendShape(Shape{
		Kind:     ShapeText,
		Class:    ClassTitle,
		X:        -c.Margins.Left + titleFontSize,
		Y:        innerH / 2,
		Text:     c.Spec.AxisTitle,
		Rotation: -90,
		Anchor:   AnchorMiddle,
		FontSize: titleFontSize,
		Bold:     true,
		Fill:     labelColor,
	})
}

// RenderScene lays out and draws records into a fresh Scene of the given size.
func (c ChartRenderer) RenderScene(records []series.Record, width, height int) (*Scene, Scales) {
	scene := NewScene(width, height)
	sc := c.Layout(records, float64(width), float64(height))
	c.Render(scene, records, sc)
	return scene, sc
}
