package main

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/IzmdI/rawstore-plots/src/config"
	"github.com/IzmdI/rawstore-plots/src/dashboard"
	"github.com/IzmdI/rawstore-plots/src/metrics"
	"github.com/IzmdI/rawstore-plots/src/plot"
	"github.com/IzmdI/rawstore-plots/src/series"
)

// defaultScreenshotWidth is the chart width used by -screenshots unless -width is given.
const defaultScreenshotWidth = 1400

// summaryFileName is the stacked overview written next to the per-chart images.
const summaryFileName = "fio_summary.png"

// RunScreenshotsMode loads source, renders every chart at width and writes them as PNGs
// (and SVGs with withSVG) under outDir, plus a stacked summary image. It runs headlessly
// without creating a UI window.
func RunScreenshotsMode(cfg *config.Config, source, outDir string, width int, withSVG bool, m *metrics.Metrics) error {
	defer log.TimeTrack(time.Now(), "screenshots")
	if width <= 0 {
		width = defaultScreenshotWidth
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create out dir: %w", err)
	}
	format, err := cfg.Formatter()
	if err != nil {
		return err
	}
	loader := newLoader(format, m)
	src := series.NewSource(source, httpClient(cfg))

	host := newSceneHost(width, cfg.Chart.Height)
	opts := dashboardOptions(cfg, format, m)
	dash := dashboard.New(host, opts)
	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.Timeout)
	defer cancel()
	if err := dash.Load(ctx, loader, src); err != nil {
		return err
	}

	var charts []image.Image
	for _, spec := range opts.Specs {
		scene := host.scene(spec.Name)
		if scene == nil {
			continue
		}
		img, err := scene.Image()
		if err != nil {
			return fmt.Errorf("render %s: %w", spec.Name, err)
		}
		stamped := stampLegend(img, host.legends[spec.Name])
		base := exportBaseName(spec.Name)
		if err := writePNG(filepath.Join(outDir, base+".png"), stamped); err != nil {
			return err
		}
		if withSVG {
			if err := writeSVG(filepath.Join(outDir, base+".svg"), scene); err != nil {
				return err
			}
		}
		charts = append(charts, stamped)
	}
	title := fmt.Sprintf("FIO Performance Summary (%d measurements)", len(dash.Records()))
	if err := writePNG(filepath.Join(outDir, summaryFileName), composeSummary(title, charts)); err != nil {
		return err
	}
	log.Infof("screenshots: wrote %d charts to %s", len(charts), outDir)
	return nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("png encode %s: %w", path, err)
	}
	return f.Close()
}

func writeSVG(path string, scene *plot.Scene) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := scene.WriteSVG(f); err != nil {
		f.Close()
		return fmt.Errorf("svg encode %s: %w", path, err)
	}
	return f.Close()
}
