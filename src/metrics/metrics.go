// Package metrics exposes load and render counters of the dashboard to Prometheus.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/IzmdI/rawstore-plots/src/logger"
)

var log = logger.Component("metrics")

// Metrics is safe to use through a nil pointer; every method is then a no-op.
type Metrics struct {
	loads       *prometheus.CounterVec
	records     prometheus.Gauge
	dropped     prometheus.Counter
	rebuilds    prometheus.Counter
	renderTime  *prometheus.HistogramVec
	zoomActions *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New registers the collectors with reg. A nil reg uses a private registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fioviewer_loads_total",
			Help: "Dataset loads by outcome (ok, unavailable, empty).",
		}, []string{"outcome"}),
		records: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fioviewer_records",
			Help: "Records in the currently loaded dataset.",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fioviewer_dropped_lines_total",
			Help: "Malformed input lines skipped by the loader.",
		}),
		rebuilds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fioviewer_rebuilds_total",
			Help: "Full chart rebuilds, including the initial build.",
		}),
		renderTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fioviewer_render_seconds",
			Help:    "Time to lay out and draw one chart.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		}, []string{"chart"}),
		zoomActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fioviewer_zoom_actions_total",
			Help: "Zoom button presses by action (in, out, reset).",
		}, []string{"action"}),
	}
	reg.MustRegister(m.loads, m.records, m.dropped, m.rebuilds, m.renderTime, m.zoomActions)
	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	}
	return m
}

func (m *Metrics) LoadFinished(outcome string, records int) {
	if m == nil {
		return
	}
	m.loads.WithLabelValues(outcome).Inc()
	if outcome == "ok" {
		m.records.Set(float64(records))
	}
}

func (m *Metrics) LineDropped() {
	if m == nil {
		return
	}
	m.dropped.Inc()
}

func (m *Metrics) Rebuilt() {
	if m == nil {
		return
	}
	m.rebuilds.Inc()
}

func (m *Metrics) ObserveRender(chart string, d time.Duration) {
	if m == nil {
		return
	}
	m.renderTime.WithLabelValues(chart).Observe(d.Seconds())
}

func (m *Metrics) ZoomAction(action string) {
	if m == nil {
		return
	}
	m.zoomActions.WithLabelValues(action).Inc()
}

// Handler serves the registry the metrics were registered with.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Serve starts a /metrics listener on addr in the background. The returned server can be
// shut down by the caller; an empty addr returns nil.
func (m *Metrics) Serve(addr string) *http.Server {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("server exited: %v", err)
		}
	}()
	log.Infof("listening on %s", addr)
	return srv
}
