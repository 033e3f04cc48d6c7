// Package plot lays out and draws the paired-bar benchmark charts and owns the per-chart
// interaction state (zoom transform, tooltip retargeting). Drawing goes through the
// DrawSurface capability; Scene is the retained implementation rasterised with go-chart.
package plot

import (
	"fmt"
	"strings"

	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/IzmdI/rawstore-plots/src/series"
)

// Field names one numeric column of a record.
type Field string

const (
	FieldReadIOPS       Field = "read_iops"
	FieldWriteIOPS      Field = "write_iops"
	FieldReadLatencyNs  Field = "read_latency_ns"
	FieldWriteLatencyNs Field = "write_latency_ns"
)

// Fields lists every chartable field.
var Fields = []Field{FieldReadIOPS, FieldWriteIOPS, FieldReadLatencyNs, FieldWriteLatencyNs}

// ParseField accepts the wire names above.
func ParseField(s string) (Field, error) {
	f := Field(strings.TrimSpace(s))
	for _, known := range Fields {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown field %q", s)
}

// Label is the human readable name shown in legends and tooltips.
func (f Field) Label() string {
	switch f {
	case FieldReadIOPS:
		return "read iops"
	case FieldWriteIOPS:
		return "write iops"
	case FieldReadLatencyNs:
		return "read latency"
	case FieldWriteLatencyNs:
		return "write latency"
	}
	return strings.ReplaceAll(string(f), "_", " ")
}

// Value extracts the field from r.
func (f Field) Value(r series.Record) float64 {
	switch f {
	case FieldReadIOPS:
		return r.ReadIOPS
	case FieldWriteIOPS:
		return r.WriteIOPS
	case FieldReadLatencyNs:
		return r.ReadLatencyNs
	case FieldWriteLatencyNs:
		return r.WriteLatencyNs
	}
	return 0
}

// DefaultColors are the bar colors per field.
func DefaultColors() map[Field]drawing.Color {
	return map[Field]drawing.Color{
		FieldReadIOPS:       drawing.ColorFromHex("1f77b4"),
		FieldWriteIOPS:      drawing.ColorFromHex("d62728"),
		FieldReadLatencyNs:  drawing.ColorFromHex("2ca02c"),
		FieldWriteLatencyNs: drawing.ColorFromHex("ff7f0e"),
	}
}

// Region names of the two charts.
const (
	RegionIOPS    = "iops-chart"
	RegionLatency = "latency-chart"
)

// ChartSpec declares one metric-pair chart.
type ChartSpec struct {
	Name           string // region the chart renders into
	Primary        Field  // left half of each band
	Secondary      Field  // right half of each band
	PrimaryColor   drawing.Color
	SecondaryColor drawing.Color
	AxisTitle      string
	Unit           string // tooltip suffix
}

// IOPSSpec is the read/write throughput chart.
func IOPSSpec(colors map[Field]drawing.Color) ChartSpec {
	return newSpec(RegionIOPS, FieldReadIOPS, FieldWriteIOPS, "IOPS", "IOPS", colors)
}

// LatencySpec is the read/write latency chart.
func LatencySpec(colors map[Field]drawing.Color) ChartSpec {
	return newSpec(RegionLatency, FieldReadLatencyNs, FieldWriteLatencyNs, "Latency (ns)", "ns", colors)
}

// DefaultSpecs returns both charts in display order.
func DefaultSpecs(colors map[Field]drawing.Color) []ChartSpec {
	return []ChartSpec{IOPSSpec(colors), LatencySpec(colors)}
}

func newSpec(name string, primary, secondary Field, title, unit string, colors map[Field]drawing.Color) ChartSpec {
	def := DefaultColors()
	pick := func(f Field) drawing.Color {
		if c, ok := colors[f]; ok {
			return c
		}
		return def[f]
	}
	return ChartSpec{
		Name:           name,
		Primary:        primary,
		Secondary:      secondary,
		PrimaryColor:   pick(primary),
		SecondaryColor: pick(secondary),
		AxisTitle:      title,
		Unit:           unit,
	}
}

// Color returns the configured color of f, or black when f is not part of the chart.
func (s ChartSpec) Color(f Field) drawing.Color {
	switch f {
	case s.Primary:
		return s.PrimaryColor
	case s.Secondary:
		return s.SecondaryColor
	}
	return drawing.ColorBlack
}

// MaxValue is the largest primary or secondary value across records.
func (s ChartSpec) MaxValue(records []series.Record) float64 {
	max := 0.0
	for _, r := range records {
		if v := s.Primary.Value(r); v > max {
			max = v
		}
		if v := s.Secondary.Value(r); v > max {
			max = v
		}
	}
	return max
}

// LegendItem is one swatch of a chart legend.
type LegendItem struct {
	Field Field
	Label string
	Color drawing.Color
}

// Legend lists the chart's fields in bar order.
func (s ChartSpec) Legend() []LegendItem {
	return []LegendItem{
		{Field: s.Primary, Label: s.Primary.Label(), Color: s.PrimaryColor},
		{Field: s.Secondary, Label: s.Secondary.Label(), Color: s.SecondaryColor},
	}
}
