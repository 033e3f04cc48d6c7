package main

import (
	"errors"
	"fmt"
	"image"
	_ "image/png" // register PNG decoder
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/IzmdI/rawstore-plots/src/config"
	"github.com/IzmdI/rawstore-plots/src/series"
)

// writeSummary writes n valid fio summary lines and returns the file path.
func writeSummary(t *testing.T, n int) string {
	t.Helper()
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, `{"timestamp":%d,"commit":"c%d","read_iops":%d,"write_iops":%d,"read_latency_ns":%d,"write_latency_ns":%d}`+"\n",
			1700000000+i*60, i, 1000+i*10, 500+i*5, 200000+i, 400000+i)
	}
	p := filepath.Join(t.TempDir(), "fio_summary.jsonl")
	if err := os.WriteFile(p, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write summary: %v", err)
	}
	return p
}

func decodePNG(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return img
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Locale.Timezone = "UTC"
	return cfg
}

func TestScreenshots_WritesChartsAndSummary(t *testing.T) {
	src := writeSummary(t, 4)
	out := t.TempDir()
	cfg := testConfig()
	if err := RunScreenshotsMode(cfg, src, out, 900, false, nil); err != nil {
		t.Fatalf("screenshots: %v", err)
	}
	for _, name := range []string{"iops_grouped.png", "latency_grouped.png"} {
		img := decodePNG(t, filepath.Join(out, name))
		if img.Bounds().Dx() != 900 || img.Bounds().Dy() != cfg.Chart.Height {
			t.Fatalf("%s size %v, want 900x%d", name, img.Bounds().Size(), cfg.Chart.Height)
		}
	}
	sum := decodePNG(t, filepath.Join(out, summaryFileName))
	wantH := summaryTitleHeight + 2*cfg.Chart.Height
	if sum.Bounds().Dx() != 900 || sum.Bounds().Dy() != wantH {
		t.Fatalf("summary size %v, want 900x%d", sum.Bounds().Size(), wantH)
	}
	if _, err := os.Stat(filepath.Join(out, "iops_grouped.svg")); !os.IsNotExist(err) {
		t.Fatalf("svg written without -svg: %v", err)
	}
}

func TestScreenshots_DefaultWidthAndSVG(t *testing.T) {
	src := writeSummary(t, 2)
	out := t.TempDir()
	if err := RunScreenshotsMode(testConfig(), src, out, 0, true, nil); err != nil {
		t.Fatalf("screenshots: %v", err)
	}
	img := decodePNG(t, filepath.Join(out, "latency_grouped.png"))
	if img.Bounds().Dx() != defaultScreenshotWidth {
		t.Fatalf("width %d want %d", img.Bounds().Dx(), defaultScreenshotWidth)
	}
	for _, name := range []string{"iops_grouped.svg", "latency_grouped.svg"} {
		raw, err := os.ReadFile(filepath.Join(out, name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if !strings.Contains(string(raw), "<svg") {
			t.Fatalf("%s is not SVG: %.60q", name, raw)
		}
	}
}

func TestScreenshots_MissingSource(t *testing.T) {
	out := t.TempDir()
	err := RunScreenshotsMode(testConfig(), filepath.Join(out, "nope.jsonl"), out, 800, false, nil)
	if !errors.Is(err, series.ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(out, summaryFileName)); !os.IsNotExist(statErr) {
		t.Fatalf("summary written on failure")
	}
}

func TestScreenshots_EmptyDataset(t *testing.T) {
	p := filepath.Join(t.TempDir(), "empty.jsonl")
	if err := os.WriteFile(p, []byte("\n{bad json}\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	err := RunScreenshotsMode(testConfig(), p, t.TempDir(), 800, false, nil)
	if !errors.Is(err, series.ErrEmptyDataset) {
		t.Fatalf("expected ErrEmptyDataset, got %v", err)
	}
}
