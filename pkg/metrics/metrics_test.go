package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestHTTPMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	m.Observe("POST", "/api/v1/sales", "200", 120*time.Millisecond)
	m.Observe("POST", "/api/v1/sales", "200", 80*time.Millisecond)

	got := testutil.ToFloat64(m.requests.WithLabelValues("POST", "/api/v1/sales", "200"))
	if got != 2 {
		t.Fatalf("expected 2 requests, got %f", got)
	}
}

func TestInventoryMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewInventoryMetrics(reg)

	m.IncMutation("PURCHASE")
	m.IncMutation("PURCHASE")
	m.IncMutation("SALE")
	m.ObserveSale(3)

	if got := testutil.ToFloat64(m.mutations.WithLabelValues("PURCHASE")); got != 2 {
		t.Fatalf("expected 2 purchases, got %f", got)
	}
	if got := testutil.ToFloat64(m.sales); got != 1 {
		t.Fatalf("expected 1 sale, got %f", got)
	}
}

func TestNilRegistererIsInert(t *testing.T) {
	m := NewInventoryMetrics(nil)
	m.IncMutation("SALE")
	m.ObserveSale(1)

	h := NewHTTPMetrics(nil)
	h.Observe("GET", "/health/live", "200", time.Millisecond)
}
