package uihelpers

import "path/filepath"

// MinChartWidth keeps both charts readable on narrow windows.
const MinChartWidth = 640

// ComputeChartWidth derives the chart pixel width from the canvas width: ~95% of the
// available width minus room for the scrollbar, never below MinChartWidth.
func ComputeChartWidth(canvasW float32) int {
	w := int(canvasW*0.95) - 12
	if w < MinChartWidth {
		w = MinChartWidth
	}
	return w
}

// ComputeContainRect returns where an imgW x imgH image lands inside a viewW x viewH box
// when scaled to fit while keeping its aspect ratio (canvas.ImageFillContain), plus the
// applied scale.
func ComputeContainRect(imgW, imgH, viewW, viewH float32) (x, y, w, h, scale float32) {
	if imgW <= 0 || imgH <= 0 || viewW <= 0 || viewH <= 0 {
		return 0, 0, viewW, viewH, 1
	}
	sx := viewW / imgW
	sy := viewH / imgH
	scale = sx
	if sy < sx {
		scale = sy
	}
	w = imgW * scale
	h = imgH * scale
	x = (viewW - w) / 2
	y = (viewH - h) / 2
	return x, y, w, h, scale
}

// ViewToImage maps a point of the view box to image pixels. ok is false when the point
// falls in the letterbox around the image.
func ViewToImage(px, py, imgW, imgH, viewW, viewH float32) (ix, iy float64, ok bool) {
	x, y, w, h, scale := ComputeContainRect(imgW, imgH, viewW, viewH)
	if px < x || py < y || px > x+w || py > y+h {
		return 0, 0, false
	}
	return float64((px - x) / scale), float64((py - y) / scale), true
}

// TruncatePath shortens p to about n characters, keeping the file name.
func TruncatePath(p string, n int) string {
	if len(p) <= n {
		return p
	}
	base := filepath.Base(p)
	if len(base)+4 >= n {
		return "..." + base
	}
	dir := filepath.Dir(p)
	left := n - len(base) - 4
	if len(dir) > left {
		dir = dir[:left]
	}
	return dir + "/..." + base
}
