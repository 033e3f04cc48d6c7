package plot

import (
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ShapeKind selects how a Shape is drawn.
type ShapeKind int

const (
	ShapeRect ShapeKind = iota
	ShapeLine
	ShapeText
)

// Anchor aligns text to its anchor point along the (possibly rotated) baseline.
type Anchor int

const (
	AnchorStart Anchor = iota
	AnchorMiddle
	AnchorEnd
)

// BarRef identifies the record and field a bar represents.
type BarRef struct {
	Index int
	Field Field
}

// Shape is one primitive in content coordinates (origin at the top-left of the plot area).
//
//	rect: X, Y, W, H
//	line: X, Y to X2, Y2
//	text: anchor point X, Y on the baseline; Rotation in degrees, negative is counter-clockwise
type Shape struct {
	Kind        ShapeKind
	Class       string
	X, Y        float64
	W, H        float64
	X2, Y2      float64
	Text        string
	Rotation    float64
	Anchor      Anchor
	FontSize    float64
	Bold        bool
	Fill        drawing.Color
	Stroke      drawing.Color
	StrokeWidth float64
	Bar         *BarRef // set on hoverable bars
}

// Contains reports whether a content-space point lies inside a rect shape.
func (s Shape) Contains(x, y float64) bool {
	if s.Kind != ShapeRect {
		return false
	}
	return x >= s.X && x <= s.X+s.W && y >= s.Y && y <= s.Y+s.H
}

// Transform is a uniform scale followed by a translation: p' = p*K + (X, Y).
type Transform struct {
	K, X, Y float64
}

// Identity is the untransformed view.
var Identity = Transform{K: 1}

// Apply maps a content point to view coordinates.
func (t Transform) Apply(x, y float64) (float64, float64) {
	return x*t.K + t.X, y*t.K + t.Y
}

// Invert maps a view point back to content coordinates.
func (t Transform) Invert(x, y float64) (float64, float64) {
	k := t.K
	if k == 0 {
		k = 1
	}
	return (x - t.X) / k, (y - t.Y) / k
}

// IsIdentity reports whether t leaves points unchanged.
func (t Transform) IsIdentity() bool { return t.K == 1 && t.X == 0 && t.Y == 0 }

// DrawSurface is the externally owned attachment point a chart renders into. The content
// group sits at the origin; the zoom transform applies to the content group only.
type DrawSurface interface {
	Clear()
	SetOrigin(x, y float64)
	AppendShape(Shape)
	SetTransform(Transform)
}
