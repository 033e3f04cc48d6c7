package plot

import (
	"image"
	"io"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Scene is a retained DrawSurface: it keeps the shapes of the last render so the chart can
// be re-rasterised under a new zoom transform and hit-tested without another layout pass.
type Scene struct {
	Width, Height int
	Background    drawing.Color

	originX, originY float64
	transform        Transform
	shapes           []Shape
}

// NewScene returns an empty scene of the given pixel size with a white background.
func NewScene(width, height int) *Scene {
	return &Scene{Width: width, Height: height, Background: drawing.ColorWhite, transform: Identity}
}

func (s *Scene) Clear() {
	s.shapes = s.shapes[:0]
	s.transform = Identity
	s.originX, s.originY = 0, 0
}

func (s *Scene) SetOrigin(x, y float64)   { s.originX, s.originY = x, y }
func (s *Scene) AppendShape(sh Shape)     { s.shapes = append(s.shapes, sh) }
func (s *Scene) SetTransform(t Transform) { s.transform = t }

// Transform is the zoom transform currently applied to the content group.
func (s *Scene) Transform() Transform { return s.transform }

// Origin is the content group offset inside the region.
func (s *Scene) Origin() (float64, float64) { return s.originX, s.originY }

// Shapes returns the retained shapes in draw order.
func (s *Scene) Shapes() []Shape { return s.shapes }

// ToContent maps a region pixel to content coordinates, undoing origin and zoom.
func (s *Scene) ToContent(x, y float64) (float64, float64) {
	return s.transform.Invert(x-s.originX, y-s.originY)
}

// HitTest returns the topmost bar under the region pixel (x, y).
func (s *Scene) HitTest(x, y float64) (BarRef, bool) {
	cx, cy := s.ToContent(x, y)
	for i := len(s.shapes) - 1; i >= 0; i-- {
		sh := s.shapes[i]
		if sh.Bar != nil && sh.Contains(cx, cy) {
			return *sh.Bar, true
		}
	}
	return BarRef{}, false
}

// Draw paints the scene onto a go-chart renderer.
func (s *Scene) Draw(r chart.Renderer) error {
	font, err := chart.GetDefaultFont()
	if err != nil {
		return err
	}
	r.SetDPI(72) // font sizes are in pixels
	r.SetFont(font)

	if s.Background.A > 0 {
		r.ResetStyle()
		r.SetFillColor(s.Background)
		r.MoveTo(0, 0)
		r.LineTo(s.Width, 0)
		r.LineTo(s.Width, s.Height)
		r.LineTo(0, s.Height)
		r.Close()
		r.Fill()
	}
	for _, sh := range s.shapes {
		s.drawShape(r, sh)
	}
	return nil
}

func (s *Scene) view(x, y float64) (int, int) {
	vx, vy := s.transform.Apply(x, y)
	return int(math.Round(vx + s.originX)), int(math.Round(vy + s.originY))
}

func (s *Scene) drawShape(r chart.Renderer, sh Shape) {
	k := s.transform.K
	r.ResetStyle()
	switch sh.Kind {
	case ShapeRect:
		x0, y0 := s.view(sh.X, sh.Y)
		x1, y1 := s.view(sh.X+sh.W, sh.Y+sh.H)
		if x1 == x0 || y1 == y0 {
			return
		}
		r.MoveTo(x0, y0)
		r.LineTo(x1, y0)
		r.LineTo(x1, y1)
		r.LineTo(x0, y1)
		r.Close()
		switch {
		case sh.Fill.A > 0 && sh.Stroke.A > 0:
			r.SetFillColor(sh.Fill)
			r.SetStrokeColor(sh.Stroke)
			r.SetStrokeWidth(math.Max(sh.StrokeWidth*k, 0.5))
			r.FillStroke()
		case sh.Fill.A > 0:
			r.SetFillColor(sh.Fill)
			r.Fill()
		case sh.Stroke.A > 0:
			r.SetStrokeColor(sh.Stroke)
			r.SetStrokeWidth(math.Max(sh.StrokeWidth*k, 0.5))
			r.Stroke()
		}
	case ShapeLine:
		if sh.Stroke.A == 0 {
			return
		}
		x0, y0 := s.view(sh.X, sh.Y)
		x1, y1 := s.view(sh.X2, sh.Y2)
		r.SetStrokeColor(sh.Stroke)
		r.SetStrokeWidth(math.Max(sh.StrokeWidth*k, 0.5))
		r.MoveTo(x0, y0)
		r.LineTo(x1, y1)
		r.Stroke()
	case ShapeText:
		if sh.Text == "" {
			return
		}
		size := sh.FontSize
		if size <= 0 {
			size = 10
		}
		col := sh.Fill
		if col.A == 0 {
			col = drawing.ColorBlack
		}
		r.SetFontColor(col)
		r.SetFontSize(size * k)
		box := r.MeasureText(sh.Text)
		width := float64(box.Width())
		shift := 0.0
		switch sh.Anchor {
		case AnchorMiddle:
			shift = width / 2
		case AnchorEnd:
			shift = width
		}
		vx, vy := s.transform.Apply(sh.X, sh.Y)
		vx += s.originX
		vy += s.originY
		theta := chart.DegreesToRadians(sh.Rotation)
		vx -= shift * math.Cos(theta)
		vy -= shift * math.Sin(theta)
		passes := 1
		if sh.Bold {
			// go-chart ships a single face; overdraw one pixel along the baseline to embolden
			passes = 2
		}
		for p := 0; p < passes; p++ {
			px := vx + float64(p)*math.Cos(theta)
			py := vy + float64(p)*math.Sin(theta)
			// the raster renderer accumulates rotation per Text call, so reset around each one
			if sh.Rotation != 0 {
				r.SetTextRotation(theta)
			}
			r.Text(sh.Text, int(math.Round(px)), int(math.Round(py)))
			if sh.Rotation != 0 {
				r.ClearTextRotation()
			}
		}
	}
}

// Image rasterises the scene.
func (s *Scene) Image() (image.Image, error) {
	collector := &chart.ImageWriter{}
	if err := s.write(chart.PNG, collector); err != nil {
		return nil, err
	}
	return collector.Image()
}

// WritePNG encodes the rasterised scene as PNG.
func (s *Scene) WritePNG(w io.Writer) error {
	return s.write(chart.PNG, w)
}

// WriteSVG encodes the scene as SVG.
func (s *Scene) WriteSVG(w io.Writer) error {
	return s.write(chart.SVG, w)
}

func (s *Scene) write(provider chart.RendererProvider, w io.Writer) error {
	r, err := provider(s.Width, s.Height)
	if err != nil {
		return err
	}
	if err := s.Draw(r); err != nil {
		return err
	}
	return r.Save(w)
}
