package plot

import (
	"fmt"
	"strings"

	"github.com/IzmdI/rawstore-plots/src/locale"
	"github.com/IzmdI/rawstore-plots/src/series"
)

// Tooltip offset from the pointer, in pixels.
const (
	TooltipOffsetX = 15
	TooltipOffsetY = -15
)

// TooltipContent is the text of the info panel.
type TooltipContent struct {
	Heading string
	Lines   []string
}

func (c TooltipContent) String() string {
	return c.Heading + "\n" + strings.Join(c.Lines, "\n")
}

// TooltipPanel is the single shared info panel owned by the host.
type TooltipPanel interface {
	Show(content TooltipContent, x, y float64)
	Hide()
}

// BuildTooltip renders the panel text for field f of r.
func BuildTooltip(r series.Record, f Field, unit string, format locale.Formatter) TooltipContent {
	lines := []string{
		fmt.Sprintf("%s: %s %s", f.Label(), format.Number(f.Value(r)), unit),
		fmt.Sprintf("Timestamp: %d", r.Timestamp),
	}
	if r.Commit != "" {
		lines = append(lines, "Commit: "+r.Commit)
	}
	return TooltipContent{Heading: r.TimeLabel, Lines: lines}
}

// TooltipController retargets one panel as the pointer enters and leaves bars.
type TooltipController struct {
	panel   TooltipPanel
	format  locale.Formatter
	visible bool
	target  BarRef
}

func NewTooltipController(panel TooltipPanel, format locale.Formatter) *TooltipController {
	return &TooltipController{panel: panel, format: format}
}

// Enter shows the panel for field f of r; (x, y) is the pointer in window coordinates.
func (t *TooltipController) Enter(r series.Record, f Field, unit string, x, y float64) {
	if t.panel == nil {
		return
	}
	t.visible = true
	t.target = BarRef{Index: r.Index, Field: f}
	t.panel.Show(BuildTooltip(r, f, unit, t.format), x+TooltipOffsetX, y+TooltipOffsetY)
}

// Leave hides the panel.
func (t *TooltipController) Leave() {
	if t.panel == nil || !t.visible {
		return
	}
	t.visible = false
	t.panel.Hide()
}

// Visible reports whether the panel is shown and for which bar.
func (t *TooltipController) Visible() (BarRef, bool) { return t.target, t.visible }
