package plot

import "github.com/IzmdI/rawstore-plots/src/series"

// BarAt finds the bar under the content point (cx, cy), using the same geometry Render
// draws. Points on the padding between bands or above a bar miss.
func (sc Scales) BarAt(records []series.Record, spec ChartSpec, cx, cy float64) (BarRef, bool) {
	step := sc.X.Step()
	if step <= 0 || len(records) == 0 || cy > sc.Viewport.Height {
		return BarRef{}, false
	}
	i := int((cx - sc.X.Pos(0)) / step)
	if cx < sc.X.Pos(0) || i >= len(records) {
		return BarRef{}, false
	}
	off := cx - sc.X.Pos(i)
	half := sc.X.Bandwidth() / 2
	var f Field
	switch {
	case off <= half:
		f = spec.Primary
	case off <= 2*half:
		f = spec.Secondary
	default:
		return BarRef{}, false
	}
	if cy < sc.Y.Map(f.Value(records[i])) {
		return BarRef{}, false
	}
	return BarRef{Index: i, Field: f}, true
}
