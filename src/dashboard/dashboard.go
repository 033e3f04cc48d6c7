// Package dashboard wires the loader, both charts and their interaction controllers to a
// host that owns the actual drawing regions.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/IzmdI/rawstore-plots/src/locale"
	"github.com/IzmdI/rawstore-plots/src/logger"
	"github.com/IzmdI/rawstore-plots/src/metrics"
	"github.com/IzmdI/rawstore-plots/src/plot"
	"github.com/IzmdI/rawstore-plots/src/series"
)

var log = logger.Component("dashboard")

// State of the dashboard lifecycle.
type State int

const (
	StateLoading State = iota
	StateRendered
	StateResizing
	StateError
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateRendered:
		return "rendered"
	case StateResizing:
		return "resizing"
	case StateError:
		return "error"
	case StateClosed:
		return "closed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Host owns the attachment points: one surface per chart region plus the legend, summary
// and tooltip areas. All calls happen on the UI goroutine.
type Host interface {
	Surface(region string) plot.DrawSurface
	RegionSize(region string) (width, height float64)
	// Invalidate tells the host a region's surface changed and must be repainted.
	Invalidate(region string)
	SetLegend(region string, items []plot.LegendItem)
	SetSummary(text string, isError bool)
	Tooltip() plot.TooltipPanel
}

// Options configure a Dashboard. Zero values pick the defaults noted per field.
type Options struct {
	Specs             []plot.ChartSpec // default: IOPS then latency with default colors
	Margins           plot.Margins     // default: plot.DefaultMargins
	Format            locale.Formatter
	Animator          plot.Animator // default: instant
	AnimationDuration time.Duration // default: plot.DefaultZoomDuration
	ResizeDebounce    time.Duration // 0 rebuilds on every resize event
	PreserveZoom      bool
	Scheduler         Scheduler // required when ResizeDebounce > 0
	Metrics           *metrics.Metrics
}

type chartView struct {
	spec     plot.ChartSpec
	renderer plot.ChartRenderer
	surface  plot.DrawSurface
	scales   plot.Scales
	zoom     *plot.ZoomController
	hovered  *plot.BarRef
}

// Dashboard is the orchestration state machine. It is single-threaded: drive it from the
// UI goroutine only.
type Dashboard struct {
	host    Host
	opts    Options
	state   State
	records []series.Record
	err     error

	charts  []*chartView
	tooltip *plot.TooltipController
	saved   map[string]plot.ZoomState
	resize  *debouncer
}

// New creates a dashboard in the Loading state.
func New(host Host, opts Options) *Dashboard {
	if len(opts.Specs) == 0 {
		opts.Specs = plot.DefaultSpecs(nil)
	}
	if opts.Margins == (plot.Margins{}) {
		opts.Margins = plot.DefaultMargins()
	}
	if opts.AnimationDuration == 0 {
		opts.AnimationDuration = plot.DefaultZoomDuration
	}
	if opts.Animator == nil {
		opts.Animator = plot.InstantAnimator{}
	}
	d := &Dashboard{
		host:    host,
		opts:    opts,
		state:   StateLoading,
		tooltip: plot.NewTooltipController(host.Tooltip(), opts.Format),
		saved:   map[string]plot.ZoomState{},
	}
	d.resize = newDebouncer(opts.Scheduler, opts.ResizeDebounce, d.rebuild)
	return d
}

func (d *Dashboard) State() State             { return d.state }
func (d *Dashboard) Err() error               { return d.err }
func (d *Dashboard) Records() []series.Record { return d.records }

// Load fetches and parses src, then builds the charts or reports the failure.
func (d *Dashboard) Load(ctx context.Context, loader *series.Loader, src series.Source) error {
	records, err := loader.Load(ctx, src)
	d.Apply(records, err)
	return err
}

// Apply finishes a load performed elsewhere, e.g. on a worker goroutine.
func (d *Dashboard) Apply(records []series.Record, err error) {
	if d.state != StateLoading {
		log.Warnf("ignoring load result in state %s", d.state)
		return
	}
	if err == nil && len(records) == 0 {
		err = &series.EmptyDatasetError{Source: "dataset"}
	}
	if err != nil {
		d.fail(err)
		return
	}
	d.records = records
	d.opts.Metrics.LoadFinished("ok", len(records))
	d.build()
	d.state = StateRendered
	last := records[len(records)-1]
	d.host.SetSummary(fmt.Sprintf("Records: %d | Last update: %s", len(records), d.opts.Format.Time(last.Time)), false)
	log.Infof("rendered %d records", len(records))
}

func (d *Dashboard) fail(err error) {
	d.err = err
	d.state = StateError
	outcome := "unavailable"
	if errors.Is(err, series.ErrEmptyDataset) {
		outcome = "empty"
	}
	d.opts.Metrics.LoadFinished(outcome, 0)
	log.Errorf("load failed: %v", err)
	d.host.SetSummary("Failed to load data: "+err.Error(), true)
}

// Resize reports a viewport change. Rebuilds are coalesced on the trailing edge and always
// use the size the host reports when the rebuild runs.
func (d *Dashboard) Resize() {
	if d.state != StateRendered && d.state != StateResizing {
		return
	}
	d.state = StateResizing
	d.resize.trigger()
}

// Close abandons the dashboard. A pending rebuild and running zoom animations stop, and later
// load results, resizes and gestures are ignored, so a successor can take over the host.
func (d *Dashboard) Close() {
	if d.state == StateClosed {
		return
	}
	d.resize.cancel()
	d.stopZoom()
	d.tooltip.Leave()
	d.charts = nil
	d.state = StateClosed
}

func (d *Dashboard) stopZoom() {
	for _, c := range d.charts {
		c.zoom.Stop()
	}
}

func (d *Dashboard) rebuild() {
	if d.state != StateResizing {
		return
	}
	if d.opts.PreserveZoom {
		for _, c := range d.charts {
			d.saved[c.spec.Name] = c.zoom.State()
		}
	}
	d.build()
	d.state = StateRendered
}

// build renders every chart from the retained records and wires fresh zoom controllers.
func (d *Dashboard) build() {
	// Old controllers share the surfaces; a late animation frame would overwrite the new chart.
	d.stopZoom()
	d.tooltip.Leave()
	d.charts = d.charts[:0]
	for _, spec := range d.opts.Specs {
		start := time.Now()
		c := &chartView{
			spec:     spec,
			renderer: plot.ChartRenderer{Spec: spec, Margins: d.opts.Margins, Format: d.opts.Format},
			surface:  d.host.Surface(spec.Name),
		}
		w, h := d.host.RegionSize(spec.Name)
		c.scales = c.renderer.Layout(d.records, w, h)
		c.renderer.Render(c.surface, d.records, c.scales)

		name := spec.Name
		surface := c.surface
		c.zoom = plot.NewZoomController(c.scales.Viewport.Width, c.scales.Viewport.Height, func(t plot.Transform) {
			surface.SetTransform(t)
			d.host.Invalidate(name)
		})
		c.zoom.Animator = d.opts.Animator
		c.zoom.Duration = d.opts.AnimationDuration
		if st, ok := d.saved[name]; ok && d.opts.PreserveZoom {
			c.zoom.Restore(st)
		}
		d.host.SetLegend(name, spec.Legend())
		d.host.Invalidate(name)
		d.charts = append(d.charts, c)
		d.opts.Metrics.ObserveRender(name, time.Since(start))
	}
	d.opts.Metrics.Rebuilt()
}

func (d *Dashboard) chart(region string) *chartView {
	for _, c := range d.charts {
		if c.spec.Name == region {
			return c
		}
	}
	return nil
}

// Zoom returns the controller of a chart region, or nil before the first build.
func (d *Dashboard) Zoom(region string) *plot.ZoomController {
	if c := d.chart(region); c != nil {
		return c.zoom
	}
	return nil
}

// ZoomIn, ZoomOut and ResetZoom are the shared buttons; each applies to every chart
// through its own controller.
func (d *Dashboard) ZoomIn()    { d.eachZoom("in", (*plot.ZoomController).ZoomIn) }
func (d *Dashboard) ZoomOut()   { d.eachZoom("out", (*plot.ZoomController).ZoomOut) }
func (d *Dashboard) ResetZoom() { d.eachZoom("reset", (*plot.ZoomController).Reset) }

func (d *Dashboard) eachZoom(action string, fn func(*plot.ZoomController)) {
	for _, c := range d.charts {
		fn(c.zoom)
	}
	d.opts.Metrics.ZoomAction(action)
}

// Pan, Wheel and Pinch forward gestures in region pixels to the region's controller.
func (d *Dashboard) Pan(region string, dx, dy float64) {
	if c := d.chart(region); c != nil {
		c.zoom.Pan(dx, dy)
	}
}

func (d *Dashboard) Wheel(region string, x, y, deltaY float64) {
	if c := d.chart(region); c != nil {
		cx, cy := d.local(x, y)
		c.zoom.Wheel(cx, cy, deltaY)
	}
}

func (d *Dashboard) Pinch(region string, x, y, factor float64) {
	if c := d.chart(region); c != nil {
		cx, cy := d.local(x, y)
		c.zoom.Pinch(cx, cy, factor)
	}
}

func (d *Dashboard) local(x, y float64) (float64, float64) {
	return x - d.opts.Margins.Left, y - d.opts.Margins.Top
}

// Hover updates the tooltip for the pointer at (x, y) in region pixels; (pageX, pageY) is
// the same point in window coordinates, where the panel is placed.
func (d *Dashboard) Hover(region string, x, y, pageX, pageY float64) {
	c := d.chart(region)
	if c == nil {
		return
	}
	lx, ly := d.local(x, y)
	cx, cy := c.zoom.Current().Invert(lx, ly)
	ref, ok := c.scales.BarAt(d.records, c.spec, cx, cy)
	if !ok {
		d.Leave(region)
		return
	}
	if c.hovered != nil && *c.hovered == ref {
		return
	}
	c.hovered = &ref
	d.tooltip.Enter(d.records[ref.Index], ref.Field, c.spec.Unit, pageX, pageY)
}

// Leave hides the tooltip when the pointer exits a bar or the region.
func (d *Dashboard) Leave(region string) {
	c := d.chart(region)
	if c == nil || c.hovered == nil {
		return
	}
	c.hovered = nil
	d.tooltip.Leave()
}
