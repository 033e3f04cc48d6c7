package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsRecord(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.LoadFinished("ok", 12)
	m.LoadFinished("empty", 0)
	m.LineDropped()
	m.LineDropped()
	m.Rebuilt()
	m.ZoomAction("in")
	m.ObserveRender("iops-chart", 3*time.Millisecond)

	if got := testutil.ToFloat64(m.loads.WithLabelValues("ok")); got != 1 {
		t.Fatalf("expected 1 ok load, got %v", got)
	}
	if got := testutil.ToFloat64(m.records); got != 12 {
		t.Fatalf("expected records gauge 12, got %v", got)
	}
	if got := testutil.ToFloat64(m.dropped); got != 2 {
		t.Fatalf("expected 2 dropped lines, got %v", got)
	}
	if got := testutil.ToFloat64(m.rebuilds); got != 1 {
		t.Fatalf("expected 1 rebuild, got %v", got)
	}
	if got := testutil.ToFloat64(m.zoomActions.WithLabelValues("in")); got != 1 {
		t.Fatalf("expected 1 zoom-in, got %v", got)
	}
	if n := testutil.CollectAndCount(m.renderTime); n != 1 {
		t.Fatalf("expected one histogram series, got %d", n)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.LoadFinished("ok", 1)
	m.LineDropped()
	m.Rebuilt()
	m.ZoomAction("reset")
	m.ObserveRender("x", time.Second)
	if m.Serve("") != nil {
		t.Fatalf("empty addr should not start a server")
	}
}

func TestHandlerServesRegistry(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.Rebuilt()
	srv := httptest.NewServer(m.Handler())
	defer srv.Close()
	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "fioviewer_rebuilds_total 1") {
		t.Fatalf("metrics output missing rebuild counter:\n%s", body)
	}
}
