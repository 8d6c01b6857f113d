package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics records request counts and latency per route.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewHTTPMetrics registers the HTTP metrics on the provided registerer.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	if reg == nil {
		return &HTTPMetrics{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Handled HTTP requests.",
	}, []string{"method", "route", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
	reg.MustRegister(requests, duration)
	return &HTTPMetrics{requests: requests, duration: duration}
}

// Observe records one handled request.
func (h *HTTPMetrics) Observe(method, route, status string, elapsed time.Duration) {
	if h == nil || h.requests == nil {
		return
	}
	h.requests.WithLabelValues(method, normalizeLabel(route), status).Inc()
	h.duration.WithLabelValues(method, normalizeLabel(route)).Observe(elapsed.Seconds())
}

// InventoryMetrics counts ledger activity by mutation kind.
type InventoryMetrics struct {
	mutations *prometheus.CounterVec
	sales     prometheus.Counter
	saleItems prometheus.Histogram
}

// NewInventoryMetrics registers the inventory metrics on the provided registerer.
func NewInventoryMetrics(reg prometheus.Registerer) *InventoryMetrics {
	if reg == nil {
		return &InventoryMetrics{}
	}
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_mutations_total",
		Help: "Committed stock mutations by transaction type.",
	}, []string{"type"})
	sales := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sales_processed_total",
		Help: "Completed point-of-sale checkouts.",
	})
	saleItems := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sale_line_items",
		Help:    "Line items per completed sale.",
		Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
	})
	reg.MustRegister(mutations, sales, saleItems)
	return &InventoryMetrics{mutations: mutations, sales: sales, saleItems: saleItems}
}

// IncMutation counts one committed stock mutation of the given type.
func (m *InventoryMetrics) IncMutation(transactionType string) {
	if m == nil || m.mutations == nil {
		return
	}
	m.mutations.WithLabelValues(normalizeLabel(transactionType)).Inc()
}

// ObserveSale counts one completed sale with its line item count.
func (m *InventoryMetrics) ObserveSale(itemCount int) {
	if m == nil || m.sales == nil {
		return
	}
	m.sales.Inc()
	m.saleItems.Observe(float64(itemCount))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
