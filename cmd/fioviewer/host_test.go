package main

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"testing"

	"github.com/IzmdI/rawstore-plots/src/dashboard"
	"github.com/IzmdI/rawstore-plots/src/locale"
	"github.com/IzmdI/rawstore-plots/src/plot"
	"github.com/IzmdI/rawstore-plots/src/series"
)

func TestSceneHost_SizesOnRebuildOnly(t *testing.T) {
	h := newSceneHost(800, 500)
	s := h.Surface(plot.RegionIOPS).(*plot.Scene)
	if s.Width != 800 || s.Height != 500 {
		t.Fatalf("scene size %dx%d", s.Width, s.Height)
	}
	h.setWidth(1000)
	if s.Width != 800 {
		t.Fatalf("scene resized before rebuild: %d", s.Width)
	}
	w, hh := h.RegionSize(plot.RegionIOPS)
	if w != 1000 || hh != 500 || s.Width != 1000 {
		t.Fatalf("region size %vx%v scene %d", w, hh, s.Width)
	}
	if h.scene(plot.RegionLatency) != nil {
		t.Fatalf("unexpected latency scene before use")
	}
	if h.Tooltip() != nil {
		t.Fatalf("headless host has no tooltip panel")
	}
}

func TestSceneHost_DrivesDashboard(t *testing.T) {
	h := newSceneHost(800, 500)
	invalidated := map[string]int{}
	h.onInvalidate = func(region string, s *plot.Scene) {
		invalidated[region]++
		if len(s.Shapes()) == 0 {
			t.Fatalf("%s invalidated with empty scene", region)
		}
	}
	format := locale.New(nil)
	d := dashboard.New(h, dashboard.Options{Format: format})
	src := series.FileSource{Path: writeSummary(t, 3)}
	if err := d.Load(context.Background(), series.NewLoader(format), src); err != nil {
		t.Fatalf("load: %v", err)
	}
	if !strings.HasPrefix(h.summary, "Records: 3 | Last update: ") || h.summaryErr {
		t.Fatalf("summary %q err=%v", h.summary, h.summaryErr)
	}
	if invalidated[plot.RegionIOPS] == 0 || invalidated[plot.RegionLatency] == 0 {
		t.Fatalf("regions not invalidated: %v", invalidated)
	}
	if got := len(h.legends[plot.RegionLatency]); got != 2 {
		t.Fatalf("latency legend items %d", got)
	}

	before := invalidated[plot.RegionIOPS]
	d.ZoomIn()
	if invalidated[plot.RegionIOPS] <= before {
		t.Fatalf("zoom did not repaint")
	}
	if tr := h.scene(plot.RegionIOPS).Transform(); tr.K != plot.ZoomInFactor {
		t.Fatalf("scene transform %+v", tr)
	}
}

func TestExportBaseName(t *testing.T) {
	if got := exportBaseName(plot.RegionIOPS); got != "iops_grouped" {
		t.Fatalf("iops: %q", got)
	}
	if got := exportBaseName(plot.RegionLatency); got != "latency_grouped" {
		t.Fatalf("latency: %q", got)
	}
}

func TestStampLegend_DrawsSwatches(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 400, 100))
	draw.Draw(src, src.Bounds(), image.White, image.Point{}, draw.Src)
	items := plot.IOPSSpec(nil).Legend()
	out := stampLegend(src, items)
	if out.Bounds() != src.Bounds() {
		t.Fatalf("bounds changed: %v", out.Bounds())
	}
	c := items[0].Color
	// swatches sit right-aligned: the first starts at 400 - total - 8
	if got := out.RGBAAt(195, 20); got != (color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}) {
		t.Fatalf("swatch pixel %v want %v", got, c)
	}
	if got := src.RGBAAt(195, 20); got != (color.RGBA{255, 255, 255, 255}) {
		t.Fatalf("source image modified: %v", got)
	}
}

func TestComposeSummary_StacksCharts(t *testing.T) {
	red := image.NewRGBA(image.Rect(0, 0, 300, 100))
	draw.Draw(red, red.Bounds(), image.NewUniform(color.RGBA{R: 255, A: 255}), image.Point{}, draw.Src)
	blue := image.NewRGBA(image.Rect(0, 0, 200, 80))
	draw.Draw(blue, blue.Bounds(), image.NewUniform(color.RGBA{B: 255, A: 255}), image.Point{}, draw.Src)

	out := composeSummary("FIO Performance Summary (2 measurements)", []image.Image{red, blue})
	if out.Bounds().Dx() != 300 || out.Bounds().Dy() != summaryTitleHeight+180 {
		t.Fatalf("summary bounds %v", out.Bounds())
	}
	if got := out.RGBAAt(10, summaryTitleHeight+5); got.R != 255 || got.B != 0 {
		t.Fatalf("first chart pixel %v", got)
	}
	if got := out.RGBAAt(10, summaryTitleHeight+105); got.B != 255 || got.R != 0 {
		t.Fatalf("second chart pixel %v", got)
	}
	if got := out.RGBAAt(250, summaryTitleHeight+105); got != (color.RGBA{255, 255, 255, 255}) {
		t.Fatalf("padding pixel %v", got)
	}
	var dark bool
	for x := 0; x < 300 && !dark; x++ {
		for y := 0; y < summaryTitleHeight; y++ {
			if out.RGBAAt(x, y).R < 128 {
				dark = true
				break
			}
		}
	}
	if !dark {
		t.Fatalf("title not drawn")
	}
}
