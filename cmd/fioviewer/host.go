package main

import (
	"github.com/IzmdI/rawstore-plots/src/plot"
)

// sceneHost is the toolkit-free dashboard.Host: one retained plot.Scene per chart region,
// all regions sharing the current chart size. The desktop host embeds it; screenshots mode
// uses it directly.
type sceneHost struct {
	width, height int

	scenes     map[string]*plot.Scene
	legends    map[string][]plot.LegendItem
	summary    string
	summaryErr bool

	// onInvalidate, if set, is told which region changed.
	onInvalidate func(region string, scene *plot.Scene)
}

func newSceneHost(width, height int) *sceneHost {
	return &sceneHost{
		width:   width,
		height:  height,
		scenes:  map[string]*plot.Scene{},
		legends: map[string][]plot.LegendItem{},
	}
}

// setWidth changes the size used by the next rebuild. Existing scenes keep their size
// until then so in-flight zoom frames still rasterise consistently.
func (h *sceneHost) setWidth(w int) { h.width = w }

// sized returns the region's scene resized to the current chart size.
func (h *sceneHost) sized(region string) *plot.Scene {
	s, ok := h.scenes[region]
	if !ok {
		s = plot.NewScene(h.width, h.height)
		h.scenes[region] = s
	}
	s.Width, s.Height = h.width, h.height
	return s
}

func (h *sceneHost) Surface(region string) plot.DrawSurface { return h.sized(region) }

func (h *sceneHost) RegionSize(region string) (float64, float64) {
	s := h.sized(region)
	return float64(s.Width), float64(s.Height)
}

func (h *sceneHost) Invalidate(region string) {
	if h.onInvalidate == nil {
		return
	}
	if s, ok := h.scenes[region]; ok {
		h.onInvalidate(region, s)
	}
}

func (h *sceneHost) SetLegend(region string, items []plot.LegendItem) { h.legends[region] = items }

func (h *sceneHost) SetSummary(text string, isError bool) {
	h.summary, h.summaryErr = text, isError
}

// Tooltip has no panel without a window.
func (h *sceneHost) Tooltip() plot.TooltipPanel { return nil }

// scene returns the retained scene of a region, or nil before the first build.
func (h *sceneHost) scene(region string) *plot.Scene { return h.scenes[region] }
