package plot

import (
	"math"
	"time"
)

// Zoom limits and button factors.
const (
	MinScale      = 0.5
	MaxScale      = 10.0
	ZoomInFactor  = 1.5
	ZoomOutFactor = 0.5
)

// DefaultZoomDuration is the length of programmatic zoom animations.
const DefaultZoomDuration = 300 * time.Millisecond

// wheelStep converts wheel delta units to a log2 scale change.
const wheelStep = 0.002

// ZoomState is the serialisable zoom of one chart.
type ZoomState struct {
	Scale      float64
	TranslateX float64
	TranslateY float64
	IsZoomed   bool
}

// Transform converts the state to a content transform.
func (z ZoomState) Transform() Transform {
	k := z.Scale
	if k == 0 {
		k = 1
	}
	return Transform{K: k, X: z.TranslateX, Y: z.TranslateY}
}

// Animator drives a time-based transition, calling tick with progress in (0, 1]. The final
// call always has progress 1. The returned func stops the transition early.
type Animator interface {
	Animate(d time.Duration, tick func(progress float64)) (cancel func())
}

// InstantAnimator jumps straight to the end.
type InstantAnimator struct{}

func (InstantAnimator) Animate(_ time.Duration, tick func(float64)) func() {
	tick(1)
	return func() {}
}

// ZoomController owns the pan/zoom transform of one chart. The translate extent equals the
// viewport, so content can never be dragged out of view. Coordinates passed to gesture
// methods are relative to the content origin. Not safe for concurrent use; drive it from
// the UI goroutine.
type ZoomController struct {
	Animator Animator
	Duration time.Duration

	width, height float64
	onChange      func(Transform)

	target  Transform // committed state
	current Transform // displayed state
	zoomed  bool
	cancel  func()
}

// NewZoomController binds a controller to a width x height viewport. onChange receives every
// displayed transform, including animation frames.
func NewZoomController(width, height float64, onChange func(Transform)) *ZoomController {
	return &ZoomController{
		Animator: InstantAnimator{},
		Duration: DefaultZoomDuration,
		width:    width,
		height:   height,
		onChange: onChange,
		target:   Identity,
		current:  Identity,
	}
}

// State is the committed zoom, which is where a running animation ends.
func (z *ZoomController) State() ZoomState {
	return ZoomState{Scale: z.target.K, TranslateX: z.target.X, TranslateY: z.target.Y, IsZoomed: z.zoomed}
}

// Current is the transform on screen.
func (z *ZoomController) Current() Transform { return z.current }

func (z *ZoomController) IsZoomed() bool { return z.zoomed }

// ZoomIn scales by 1.5 around the viewport centre, animated.
func (z *ZoomController) ZoomIn() { z.ScaleBy(ZoomInFactor) }

// ZoomOut scales by 0.5 around the viewport centre, animated.
func (z *ZoomController) ZoomOut() { z.ScaleBy(ZoomOutFactor) }

// ScaleBy multiplies the committed scale by factor around the viewport centre, animated.
func (z *ZoomController) ScaleBy(factor float64) {
	next := z.scaleAround(z.target, z.width/2, z.height/2, z.target.K*factor)
	z.zoomed = true
	z.animateTo(next)
}

// Reset animates back to the identity transform and clears the zoomed flag.
func (z *ZoomController) Reset() {
	z.zoomed = false
	z.animateTo(Identity)
}

// Pan moves the content by the pointer delta.
func (z *ZoomController) Pan(dx, dy float64) {
	base := z.interrupt()
	z.apply(z.constrain(Transform{K: base.K, X: base.X + dx, Y: base.Y + dy}))
}

// Wheel zooms around the pointer; negative deltaY zooms in.
func (z *ZoomController) Wheel(px, py, deltaY float64) {
	z.Pinch(px, py, math.Pow(2, -deltaY*wheelStep))
}

// Pinch scales by factor around the gesture centre.
func (z *ZoomController) Pinch(px, py, factor float64) {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return
	}
	base := z.interrupt()
	z.apply(z.scaleAround(base, px, py, base.K*factor))
}

// Restore applies a saved state immediately, clamped to the current viewport.
func (z *ZoomController) Restore(st ZoomState) {
	z.stop()
	t := Identity
	if st.IsZoomed {
		t = z.constrain(Transform{K: clampScale(st.Transform().K), X: st.TranslateX, Y: st.TranslateY})
	}
	z.zoomed = st.IsZoomed
	z.target = t
	z.show(t)
}

// Stop ends a running animation without another frame. The committed state stays where the
// animation was heading. Call it before discarding a controller whose surface lives on.
func (z *ZoomController) Stop() { z.stop() }

// Gestures take over from a running animation at the displayed transform.
func (z *ZoomController) interrupt() Transform {
	if z.cancel != nil {
		z.stop()
		z.target = z.current
	}
	return z.target
}

func (z *ZoomController) apply(t Transform) {
	z.zoomed = true
	z.target = t
	z.show(t)
}

func (z *ZoomController) stop() {
	if z.cancel != nil {
		c := z.cancel
		z.cancel = nil
		c()
	}
}

func (z *ZoomController) animateTo(t Transform) {
	z.stop()
	from := z.current
	z.target = t
	animator := z.Animator
	if animator == nil || z.Duration <= 0 {
		animator = InstantAnimator{}
	}
	done := false
	cancel := animator.Animate(z.Duration, func(p float64) {
		if done {
			return
		}
		if p >= 1 {
			done = true
			z.cancel = nil
			z.show(t)
			return
		}
		e := easeCubicInOut(p)
		z.show(Transform{
			K: from.K + (t.K-from.K)*e,
			X: from.X + (t.X-from.X)*e,
			Y: from.Y + (t.Y-from.Y)*e,
		})
	})
	if !done {
		z.cancel = func() {
			done = true
			cancel()
		}
	}
}

func (z *ZoomController) show(t Transform) {
	z.current = t
	if z.onChange != nil {
		z.onChange(t)
	}
}

// scaleAround scales t to k while keeping the content point under (px, py) fixed.
func (z *ZoomController) scaleAround(t Transform, px, py, k float64) Transform {
	k = clampScale(k)
	cx, cy := t.Invert(px, py)
	return z.constrain(Transform{K: k, X: px - cx*k, Y: py - cy*k})
}

// constrain keeps the viewport inside the translate extent, centring content that is
// smaller than the viewport.
func (z *ZoomController) constrain(t Transform) Transform {
	dx0 := (0-t.X)/t.K - 0
	dx1 := (z.width-t.X)/t.K - z.width
	dy0 := (0-t.Y)/t.K - 0
	dy1 := (z.height-t.Y)/t.K - z.height
	return Transform{
		K: t.K,
		X: t.X + t.K*clampOffset(dx0, dx1),
		Y: t.Y + t.K*clampOffset(dy0, dy1),
	}
}

func clampOffset(d0, d1 float64) float64 {
	if d1 > d0 {
		return (d0 + d1) / 2
	}
	if m := math.Min(0, d0); m != 0 {
		return m
	}
	return math.Max(0, d1)
}

func clampScale(k float64) float64 {
	if math.IsNaN(k) {
		return 1
	}
	return math.Max(MinScale, math.Min(MaxScale, k))
}

func easeCubicInOut(t float64) float64 {
	t *= 2
	if t <= 1 {
		return t * t * t / 2
	}
	t -= 2
	return (t*t*t + 2) / 2
}
