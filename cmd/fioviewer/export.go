package main

import (
	"image"
	"image/color"
	"image/draw"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/IzmdI/rawstore-plots/src/plot"
)

const (
	summaryTitleHeight = 40
	legendSwatch       = 12
	legendGap          = 16
)

// exportBaseName maps a chart region to its file name stem: iops-chart -> iops_grouped.
func exportBaseName(region string) string {
	return strings.TrimSuffix(region, "-chart") + "_grouped"
}

// stampLegend copies img and draws the legend swatches right-aligned in the top margin.
func stampLegend(img image.Image, items []plot.LegendItem) *image.RGBA {
	b := img.Bounds()
	rgba := image.NewRGBA(b)
	draw.Draw(rgba, b, img, b.Min, draw.Src)
	if len(items) == 0 {
		return rgba
	}
	dr := &font.Drawer{Dst: rgba, Src: image.NewUniform(color.Black), Face: basicfont.Face7x13}
	total := 0
	for _, it := range items {
		total += legendSwatch + 6 + dr.MeasureString(it.Label).Ceil() + legendGap
	}
	x := b.Max.X - total - 8
	if x < b.Min.X {
		x = b.Min.X
	}
	y := b.Min.Y + 24
	for _, it := range items {
		sw := image.Rect(x, y-legendSwatch+2, x+legendSwatch, y+2)
		draw.Draw(rgba, sw, image.NewUniform(it.Color), image.Point{}, draw.Src)
		x += legendSwatch + 6
		dr.Dot = fixed.P(x, y)
		dr.DrawString(it.Label)
		x += dr.MeasureString(it.Label).Ceil() + legendGap
	}
	return rgba
}

// composeSummary stacks charts vertically under a centred title line.
func composeSummary(title string, charts []image.Image) *image.RGBA {
	w, h := 0, summaryTitleHeight
	for _, c := range charts {
		if dx := c.Bounds().Dx(); dx > w {
			w = dx
		}
		h += c.Bounds().Dy()
	}
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(out, out.Bounds(), image.White, image.Point{}, draw.Src)

	dr := &font.Drawer{Dst: out, Src: image.NewUniform(color.Black), Face: basicfont.Face7x13}
	tw := dr.MeasureString(title).Ceil()
	dr.Dot = fixed.P((w-tw)/2, summaryTitleHeight/2+basicfont.Face7x13.Ascent/2)
	dr.DrawString(title)

	y := summaryTitleHeight
	for _, c := range charts {
		b := c.Bounds()
		draw.Draw(out, image.Rect(0, y, b.Dx(), y+b.Dy()), c, b.Min, draw.Src)
		y += b.Dy()
	}
	return out
}
