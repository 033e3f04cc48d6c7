package main

import (
	"image"
	"image/color"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"github.com/IzmdI/rawstore-plots/cmd/fioviewer/uihelpers"
	"github.com/IzmdI/rawstore-plots/src/plot"
)

// wheelDeltaScale converts fyne scroll units to browser-like wheel delta units.
const wheelDeltaScale = 10

// chartRegion is the on-screen part of one chart: the rasterised scene, the input
// overlay stacked on it and the legend row.
type chartRegion struct {
	img     *canvas.Image
	overlay *chartOverlay
	legend  *fyne.Container
}

func (r *chartRegion) object() fyne.CanvasObject {
	return container.NewVBox(r.legend, container.NewStack(r.img, r.overlay))
}

// fyneHost shows the dashboard in a window. Scenes are re-rasterised on every
// invalidation, including zoom animation frames.
type fyneHost struct {
	*sceneHost
	regions map[string]*chartRegion
	summary *widget.Label
	tip     *tooltipLayer
}

func newFyneHost(state *uiState, width, height int, regions []string) *fyneHost {
	h := &fyneHost{
		sceneHost: newSceneHost(width, height),
		regions:   map[string]*chartRegion{},
		summary:   widget.NewLabel("Loading…"),
		tip:       newTooltipLayer(),
	}
	for _, name := range regions {
		img := canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, width, height)))
		img.FillMode = canvas.ImageFillContain
		img.SetMinSize(fyne.NewSize(float32(width), float32(height)))
		h.regions[name] = &chartRegion{
			img:     img,
			overlay: newChartOverlay(state, name),
			legend:  container.NewHBox(),
		}
	}
	return h
}

func (h *fyneHost) Invalidate(region string) {
	r, s := h.regions[region], h.scene(region)
	if r == nil || s == nil {
		return
	}
	img, err := s.Image()
	if err != nil {
		log.Errorf("rasterise %s: %v", region, err)
		return
	}
	r.img.Image = img
	r.img.SetMinSize(fyne.NewSize(float32(s.Width), float32(s.Height)))
	r.img.Refresh()
}

func (h *fyneHost) SetLegend(region string, items []plot.LegendItem) {
	h.sceneHost.SetLegend(region, items)
	r := h.regions[region]
	if r == nil {
		return
	}
	objs := make([]fyne.CanvasObject, 0, len(items)*2)
	for _, it := range items {
		sw := canvas.NewRectangle(it.Color)
		sw.SetMinSize(fyne.NewSize(14, 14))
		objs = append(objs, container.NewCenter(sw), widget.NewLabel(it.Label))
	}
	r.legend.Objects = objs
	r.legend.Refresh()
}

func (h *fyneHost) SetSummary(text string, isError bool) {
	h.sceneHost.SetSummary(text, isError)
	if isError {
		h.summary.Importance = widget.DangerImportance
	} else {
		h.summary.Importance = widget.MediumImportance
	}
	h.summary.SetText(text)
}

func (h *fyneHost) Tooltip() plot.TooltipPanel { return h.tip }

// chartImage is the image currently displayed for region, used by PNG export.
func (h *fyneHost) chartImage(region string) image.Image {
	if r := h.regions[region]; r != nil {
		return r.img.Image
	}
	return nil
}

// chartOverlay is a transparent widget over a chart image that turns pointer input into
// dashboard hover, pan and wheel-zoom calls in image pixels.
type chartOverlay struct {
	widget.BaseWidget
	state  *uiState
	region string
}

func newChartOverlay(state *uiState, region string) *chartOverlay {
	o := &chartOverlay{state: state, region: region}
	o.ExtendBaseWidget(o)
	return o
}

func (o *chartOverlay) CreateRenderer() fyne.WidgetRenderer {
	// full hit area for hover events
	bg := canvas.NewRectangle(color.Transparent)
	return widget.NewSimpleRenderer(bg)
}

// toImage maps a position inside the overlay to chart image pixels.
func (o *chartOverlay) toImage(pos fyne.Position) (float64, float64, float32, bool) {
	s := o.state.host.scene(o.region)
	if s == nil {
		return 0, 0, 1, false
	}
	sz := o.Size()
	_, _, _, _, scale := uihelpers.ComputeContainRect(float32(s.Width), float32(s.Height), sz.Width, sz.Height)
	x, y, ok := uihelpers.ViewToImage(pos.X, pos.Y, float32(s.Width), float32(s.Height), sz.Width, sz.Height)
	return x, y, scale, ok
}

func (o *chartOverlay) hover(ev *desktop.MouseEvent) {
	d := o.state.dash
	if d == nil {
		return
	}
	x, y, _, ok := o.toImage(ev.Position)
	if !ok {
		d.Leave(o.region)
		return
	}
	d.Hover(o.region, x, y, float64(ev.AbsolutePosition.X), float64(ev.AbsolutePosition.Y))
}

func (o *chartOverlay) MouseIn(ev *desktop.MouseEvent)    { o.hover(ev) }
func (o *chartOverlay) MouseMoved(ev *desktop.MouseEvent) { o.hover(ev) }

func (o *chartOverlay) MouseOut() {
	if d := o.state.dash; d != nil {
		d.Leave(o.region)
	}
}

func (o *chartOverlay) Dragged(ev *fyne.DragEvent) {
	d := o.state.dash
	if d == nil {
		return
	}
	_, _, scale, _ := o.toImage(ev.Position)
	if scale <= 0 {
		scale = 1
	}
	d.Leave(o.region)
	d.Pan(o.region, float64(ev.Dragged.DX/scale), float64(ev.Dragged.DY/scale))
}

func (o *chartOverlay) DragEnd() {}

func (o *chartOverlay) Scrolled(ev *fyne.ScrollEvent) {
	d := o.state.dash
	if d == nil {
		return
	}
	x, y, _, ok := o.toImage(ev.Position)
	if !ok {
		return
	}
	d.Wheel(o.region, x, y, float64(-ev.Scrolled.DY*wheelDeltaScale))
}

var (
	_ desktop.Hoverable = (*chartOverlay)(nil)
	_ fyne.Draggable    = (*chartOverlay)(nil)
	_ fyne.Scrollable   = (*chartOverlay)(nil)
)

// tooltipLayer is the single info panel. It lives in a layout-free container stacked over
// the whole window content and holds no interactive objects, so the overlays below keep
// receiving pointer events while it is shown.
type tooltipLayer struct {
	box  *fyne.Container
	bg   *canvas.Rectangle
	text *widget.Label
}

func newTooltipLayer() *tooltipLayer {
	t := &tooltipLayer{
		bg:   canvas.NewRectangle(color.NRGBA{R: 255, G: 255, B: 255, A: 235}),
		text: widget.NewLabel(""),
	}
	t.bg.StrokeColor = color.NRGBA{R: 160, G: 160, B: 160, A: 255}
	t.bg.StrokeWidth = 1
	t.bg.CornerRadius = 4
	t.box = container.NewWithoutLayout(t.bg, t.text)
	t.box.Hide()
	return t
}

// Show places the panel with its top-left corner at window position (x, y). The position is
// never adjusted, so the panel keeps its fixed offset from the pointer even near an edge.
func (t *tooltipLayer) Show(c plot.TooltipContent, x, y float64) {
	t.text.SetText(c.String())
	sz := t.text.MinSize()
	pos := fyne.NewPos(float32(x), float32(y))
	if app := fyne.CurrentApp(); app != nil {
		pos = pos.Subtract(app.Driver().AbsolutePositionForObject(t.box))
	}
	t.bg.Move(pos)
	t.bg.Resize(sz)
	t.text.Move(pos)
	t.text.Resize(sz)
	t.box.Show()
	t.box.Refresh()
}

func (t *tooltipLayer) Hide() { t.box.Hide() }

// fyneAnimator runs zoom transitions on fyne's animation loop, which ticks on the UI
// goroutine and always ends with progress 1.
type fyneAnimator struct{}

func (fyneAnimator) Animate(d time.Duration, tick func(float64)) func() {
	a := fyne.NewAnimation(d, func(p float32) { tick(float64(p)) })
	a.Curve = fyne.AnimationLinear
	a.Start()
	return a.Stop
}
