package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestCollectorRecordsPipelineCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}

	collector.ObserveReceived()
	collector.ObserveReceived()
	collector.ObserveOutcome(OutcomeSent)
	collector.ObserveOutcome(OutcomeSkipped)
	collector.ObserveCompactFallback()
	collector.ObservePayload(12)
	collector.ObservePayload(250)

	if got := testutil.ToFloat64(collector.CotMessages); got != 2 {
		t.Fatalf("cot_messages_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(collector.MeshMessages.WithLabelValues(OutcomeSent)); got != 1 {
		t.Fatalf("mesh_messages_total{sent} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.MeshMessages.WithLabelValues(OutcomeSkipped)); got != 1 {
		t.Fatalf("mesh_messages_total{skipped} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.CompactFallbacks); got != 1 {
		t.Fatalf("compact_fallbacks_total = %v, want 1", got)
	}
	if count := histogramSampleCount(t, reg, "mesh_payload_bytes"); count != 2 {
		t.Fatalf("mesh_payload_bytes sample_count = %d, want 2", count)
	}
}

func TestCollectorNilSafety(t *testing.T) {
	var collector *Collector
	collector.ObserveReceived()
	collector.ObserveOutcome(OutcomeFailed)
	collector.ObservePayload(1)
	collector.ObserveCompactFallback()
}

func TestCollectorDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewCollector(reg); err != nil {
		t.Fatalf("first NewCollector: %v", err)
	}
	if _, err := NewCollector(reg); err != nil {
		t.Fatalf("second NewCollector against same registry: %v", err)
	}
}

func TestMetricsHandlerExposesGatewayMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}
	collector.ObserveReceived()
	collector.ObserveOutcome(OutcomeSent)
	collector.ObservePayload(42)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("/metrics status = %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	for _, metric := range []string{
		"cot_messages_total",
		"mesh_messages_total",
		"compact_fallbacks_total",
		"mesh_payload_bytes",
	} {
		if !strings.Contains(body, metric) {
			t.Fatalf("expected %q in /metrics output", metric)
		}
	}
}

func histogramSampleCount(t *testing.T, gatherer prometheus.Gatherer, name string) uint64 {
	t.Helper()

	metrics, err := gatherer.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range metrics {
		if mf.GetName() != name || mf.GetType() != dto.MetricType_HISTOGRAM {
			continue
		}
		for _, m := range mf.Metric {
			if h := m.GetHistogram(); h != nil {
				return h.GetSampleCount()
			}
		}
	}
	return 0
}
