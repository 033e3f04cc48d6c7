// Command fioviewer is a desktop dashboard for fio summary series: grouped read/write bar
// charts for IOPS and latency with hover tooltips, pan and zoom. With -screenshots it
// renders the charts to image files instead of opening a window.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image/png"
	"net/http"
	"os"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/IzmdI/rawstore-plots/cmd/fioviewer/uihelpers"
	"github.com/IzmdI/rawstore-plots/src/config"
	"github.com/IzmdI/rawstore-plots/src/dashboard"
	"github.com/IzmdI/rawstore-plots/src/locale"
	"github.com/IzmdI/rawstore-plots/src/logger"
	"github.com/IzmdI/rawstore-plots/src/metrics"
	"github.com/IzmdI/rawstore-plots/src/plot"
	"github.com/IzmdI/rawstore-plots/src/series"
)

var log = logger.Component("viewer")

const maxRecentFiles = 10

type uiState struct {
	app    fyne.App
	window fyne.Window

	cfg     *config.Config
	format  locale.Formatter
	metrics *metrics.Metrics
	loader  *series.Loader
	client  *http.Client

	source    string
	fileLabel *widget.Label
	host      *fyneHost
	dash      *dashboard.Dashboard
	cancel    context.CancelFunc
}

func main() {
	var (
		configFlag      string
		fileFlag        string
		logLevelFlag    string
		screenshotsFlag string
		svgFlag         bool
		widthFlag       int
		metricsFlag     string
	)
	flag.StringVar(&configFlag, "config", "", "Path to YAML config")
	flag.StringVar(&fileFlag, "file", "", "Dataset path or http(s) URL (fio_summary.jsonl)")
	flag.StringVar(&logLevelFlag, "log-level", "", "Log level: debug|info|warn|error")
	flag.StringVar(&screenshotsFlag, "screenshots", "", "Write chart images to this directory and exit")
	flag.BoolVar(&svgFlag, "svg", false, "With -screenshots, also write SVG charts")
	flag.IntVar(&widthFlag, "width", 0, "With -screenshots, chart width in pixels (default 1400)")
	flag.StringVar(&metricsFlag, "metrics-addr", "", "Serve Prometheus metrics on this address")
	flag.Parse()

	cfg := config.Default()
	if configFlag != "" {
		c, err := config.Load(configFlag)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		cfg = c
	}
	if logLevelFlag != "" {
		if !logger.ValidLevel(logLevelFlag) {
			fmt.Fprintf(os.Stderr, "invalid -log-level %q\n", logLevelFlag)
			os.Exit(2)
		}
		cfg.LogLevel = logLevelFlag
	}
	if metricsFlag != "" {
		cfg.Metrics.Addr = metricsFlag
	}
	logger.SetLogLevel(cfg.LogLevel)

	m := metrics.New(prometheus.DefaultRegisterer)
	if srv := m.Serve(cfg.Metrics.Addr); srv != nil {
		defer srv.Close()
	}

	if screenshotsFlag != "" {
		source := cfg.Source
		if fileFlag != "" {
			source = fileFlag
		}
		if err := RunScreenshotsMode(cfg, source, screenshotsFlag, widthFlag, svgFlag, m); err != nil {
			log.Errorf("screenshots: %v", err)
			os.Exit(1)
		}
		return
	}

	format, err := cfg.Formatter()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	a := app.NewWithID("com.rawstore.fioviewer")
	w := a.NewWindow("FIO Dashboard")
	w.Resize(fyne.NewSize(float32(cfg.Window.Width), float32(cfg.Window.Height)))

	state := &uiState{
		app:     a,
		window:  w,
		cfg:     cfg,
		format:  format,
		metrics: m,
		loader:  newLoader(format, m),
		client:  httpClient(cfg),
		source:  pickSource(a.Preferences(), cfg, fileFlag, configFlag != ""),
	}
	specs := plot.DefaultSpecs(cfg.ChartColors())
	names := make([]string, len(specs))
	for i, s := range specs {
		names[i] = s.Name
	}
	state.host = newFyneHost(state, uihelpers.ComputeChartWidth(float32(cfg.Window.Width)), cfg.Chart.Height, names)
	state.fileLabel = widget.NewLabel(uihelpers.TruncatePath(state.source, 60))

	top := container.NewHBox(
		widget.NewButton("Open…", func() { openFileDialog(state) }),
		widget.NewButton("Reload", func() { loadAll(state) }),
		widget.NewButtonWithIcon("", theme.ZoomInIcon(), func() { zoomAll(state, (*dashboard.Dashboard).ZoomIn) }),
		widget.NewButtonWithIcon("", theme.ZoomOutIcon(), func() { zoomAll(state, (*dashboard.Dashboard).ZoomOut) }),
		widget.NewButton("Reset Zoom", func() { zoomAll(state, (*dashboard.Dashboard).ResetZoom) }),
		widget.NewLabel("File:"), state.fileLabel,
	)
	chartsColumn := container.NewVBox(state.host.summary)
	for i, name := range names {
		if i > 0 {
			chartsColumn.Add(widget.NewSeparator())
		}
		chartsColumn.Add(state.host.regions[name].object())
	}
	chartsScroll := container.NewVScroll(chartsColumn)
	content := container.NewBorder(top, nil, nil, nil, chartsScroll)
	w.SetContent(container.NewStack(content, state.host.tip.box))

	// Rebuild charts when the window width changes so they scale with it
	if w.Canvas() != nil {
		prevW := int(w.Canvas().Size().Width)
		done := make(chan struct{})
		w.SetOnClosed(func() {
			savePrefs(state)
			if state.cancel != nil {
				state.cancel()
			}
			close(done)
		})
		go func() {
			t := time.NewTicker(300 * time.Millisecond)
			defer t.Stop()
			for {
				select {
				case <-done:
					return
				case <-t.C:
					c := w.Canvas()
					if c == nil {
						continue
					}
					curW := int(c.Size().Width)
					if curW != prevW {
						prevW = curW
						fyne.Do(func() { resizeCharts(state, float32(curW)) })
					}
				}
			}
		}()
	}

	buildMenus(state)
	loadAll(state)
	w.ShowAndRun()
}

func newLoader(format locale.Formatter, m *metrics.Metrics) *series.Loader {
	l := series.NewLoader(format)
	l.OnWarning = func(series.ParseWarning) { m.LineDropped() }
	return l
}

func httpClient(cfg *config.Config) *http.Client {
	return &http.Client{Timeout: cfg.HTTP.Timeout}
}

// dashboardOptions maps the configuration onto dashboard options shared by the window and
// screenshots mode. Callers add the animator and scheduler they can drive.
func dashboardOptions(cfg *config.Config, format locale.Formatter, m *metrics.Metrics) dashboard.Options {
	return dashboard.Options{
		Specs:             plot.DefaultSpecs(cfg.ChartColors()),
		Margins:           cfg.Margins(),
		Format:            format,
		AnimationDuration: cfg.AnimationDuration(),
		PreserveZoom:      cfg.Chart.PreserveZoomOnResize,
		Metrics:           m,
	}
}

// pickSource resolves the dataset location: -file, then an explicit config file, then the
// last file opened in the viewer, then the built-in default.
func pickSource(prefs fyne.Preferences, cfg *config.Config, fileFlag string, fromConfig bool) string {
	switch {
	case fileFlag != "":
		return fileFlag
	case fromConfig:
		return cfg.Source
	}
	if last := prefs.StringWithFallback("lastFile", ""); last != "" {
		return last
	}
	return cfg.Source
}

// loadAll starts a fresh dashboard and loads the current source on a worker goroutine.
// A newer load supersedes an older one still in flight.
func loadAll(state *uiState) {
	if state.cancel != nil {
		state.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	state.cancel = cancel
	if state.dash != nil {
		state.dash.Close()
	}

	opts := dashboardOptions(state.cfg, state.format, state.metrics)
	if state.cfg.Chart.AnimationMS > 0 {
		opts.Animator = fyneAnimator{}
	}
	opts.ResizeDebounce = state.cfg.ResizeDebounce()
	opts.Scheduler = dashboard.TimerScheduler{Do: fyne.Do}
	state.host.tip.Hide()
	state.host.SetSummary("Loading…", false)
	dash := dashboard.New(state.host, opts)
	state.dash = dash

	src := series.NewSource(state.source, state.client)
	loader := state.loader
	go func() {
		records, err := loader.Load(ctx, src)
		if errors.Is(err, context.Canceled) {
			return
		}
		fyne.Do(func() {
			if state.dash != dash {
				return
			}
			dash.Apply(records, err)
		})
	}()
}

func resizeCharts(state *uiState, canvasW float32) {
	state.host.setWidth(uihelpers.ComputeChartWidth(canvasW))
	if state.dash != nil {
		state.dash.Resize()
	}
}

func zoomAll(state *uiState, fn func(*dashboard.Dashboard)) {
	if state.dash != nil {
		state.host.tip.Hide()
		fn(state.dash)
	}
}

func setSource(state *uiState, source string) {
	state.source = source
	state.fileLabel.SetText(uihelpers.TruncatePath(source, 60))
	addRecentFile(state.app.Preferences(), source)
	savePrefs(state)
	buildMenus(state)
	loadAll(state)
}

// menus and dialogs
func buildMenus(state *uiState) {
	if state == nil || state.window == nil || state.app == nil {
		return
	}
	var items []*fyne.MenuItem
	for _, f := range recentFiles(state.app.Preferences()) {
		f := f
		items = append(items, fyne.NewMenuItem(uihelpers.TruncatePath(f, 60), func() { setSource(state, f) }))
	}
	clearRecent := fyne.NewMenuItem("Clear Recent", func() {
		state.app.Preferences().SetString("recentFiles", "")
		buildMenus(state)
	})
	recentMenu := fyne.NewMenu("Open Recent", append(items, clearRecent)...)

	var exports []*fyne.MenuItem
	for _, spec := range plot.DefaultSpecs(nil) {
		region := spec.Name
		exports = append(exports, fyne.NewMenuItem("Export "+spec.AxisTitle+" Chart…", func() {
			exportChartPNG(state, region, exportBaseName(region)+".png")
		}))
	}
	fileItems := []*fyne.MenuItem{
		fyne.NewMenuItem("Open…", func() { openFileDialog(state) }),
		fyne.NewMenuItem("Open URL…", func() { openURLDialog(state) }),
		fyne.NewMenuItem("Reload", func() { loadAll(state) }),
		fyne.NewMenuItemSeparator(),
	}
	fileItems = append(fileItems, exports...)
	fileItems = append(fileItems,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() { state.window.Close() }),
	)
	fileMenu := fyne.NewMenu("File", fileItems...)
	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", func() { zoomAll(state, (*dashboard.Dashboard).ZoomIn) }),
		fyne.NewMenuItem("Zoom Out", func() { zoomAll(state, (*dashboard.Dashboard).ZoomOut) }),
		fyne.NewMenuItem("Reset Zoom", func() { zoomAll(state, (*dashboard.Dashboard).ResetZoom) }),
	)
	state.window.SetMainMenu(fyne.NewMainMenu(fileMenu, recentMenu, viewMenu))

	canv := state.window.Canvas()
	if canv == nil {
		return
	}
	for _, mod := range []fyne.KeyModifier{fyne.KeyModifierSuper, fyne.KeyModifierControl} {
		canv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyO, Modifier: mod}, func(fyne.Shortcut) { openFileDialog(state) })
		canv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyR, Modifier: mod}, func(fyne.Shortcut) { loadAll(state) })
		canv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyW, Modifier: mod}, func(fyne.Shortcut) { state.window.Close() })
		canv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyEqual, Modifier: mod}, func(fyne.Shortcut) { zoomAll(state, (*dashboard.Dashboard).ZoomIn) })
		canv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyMinus, Modifier: mod}, func(fyne.Shortcut) { zoomAll(state, (*dashboard.Dashboard).ZoomOut) })
		canv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.Key0, Modifier: mod}, func(fyne.Shortcut) { zoomAll(state, (*dashboard.Dashboard).ResetZoom) })
	}
}

func openFileDialog(state *uiState) {
	d := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil || rc == nil {
			return
		}
		defer rc.Close()
		setSource(state, rc.URI().Path())
	}, state.window)
	d.Show()
}

func openURLDialog(state *uiState) {
	entry := widget.NewEntry()
	entry.SetPlaceHolder("https://host/fio_summary.jsonl")
	if strings.HasPrefix(strings.ToLower(state.source), "http") {
		entry.SetText(state.source)
	}
	dialog.ShowForm("Open URL", "Open", "Cancel", []*widget.FormItem{widget.NewFormItem("URL", entry)}, func(ok bool) {
		if !ok || strings.TrimSpace(entry.Text) == "" {
			return
		}
		setSource(state, strings.TrimSpace(entry.Text))
	}, state.window)
}

// export PNG
func exportChartPNG(state *uiState, region, defaultName string) {
	img := state.host.chartImage(region)
	if state.dash == nil || state.dash.State() != dashboard.StateRendered || img == nil {
		dialog.ShowInformation("Export", "No chart to export.", state.window)
		return
	}
	stamped := stampLegend(img, state.host.legends[region])
	fs := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
		if err != nil || wc == nil {
			return
		}
		defer wc.Close()
		if err := png.Encode(wc, stamped); err != nil {
			dialog.ShowError(err, state.window)
		}
	}, state.window)
	fs.SetFileName(defaultName)
	fs.Show()
}

// recent files helpers
func recentFiles(prefs fyne.Preferences) []string {
	raw := prefs.StringWithFallback("recentFiles", "")
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, "\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		if strings.Contains(p, "://") {
			out = append(out, p)
			continue
		}
		if _, err := os.Stat(p); err == nil {
			out = append(out, p)
		}
	}
	return out
}

func addRecentFile(prefs fyne.Preferences, path string) {
	filtered := []string{path}
	for _, f := range recentFiles(prefs) {
		if f != path && len(filtered) < maxRecentFiles {
			filtered = append(filtered, f)
		}
	}
	prefs.SetString("recentFiles", strings.Join(filtered, "\n"))
}

// prefs
func savePrefs(state *uiState) {
	if state == nil || state.app == nil {
		return
	}
	state.app.Preferences().SetString("lastFile", state.source)
}
