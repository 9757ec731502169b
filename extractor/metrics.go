package extractor

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the pipeline.
type Metrics struct {
	Registry         *prometheus.Registry
	VendorRunsTotal  *prometheus.CounterVec
	ProductsTotal    *prometheus.CounterVec
	SkippedTotal     *prometheus.CounterVec
	FieldMissesTotal *prometheus.CounterVec
	ImageBytesTotal  prometheus.Counter
	ImageErrorsTotal prometheus.Counter
	RenderDuration   prometheus.Histogram
	ActiveVendorRuns prometheus.Gauge
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	vendorRuns := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "extractor_vendor_runs_total",
			Help: "Vendor runs by final state.",
		},
		[]string{"vendor", "state"},
	)
	products := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "extractor_products_total",
			Help: "Products processed by outcome (created, updated, skipped).",
		},
		[]string{"vendor", "outcome"},
	)
	skipped := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "extractor_products_skipped_total",
			Help: "Skipped products by reason.",
		},
		[]string{"reason"},
	)
	fieldMisses := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "extractor_field_misses_total",
			Help: "Fields left empty because every strategy was exhausted.",
		},
		[]string{"vendor", "field"},
	)
	imageBytes := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "extractor_image_bytes_total",
			Help: "Encoded bytes of accepted product images.",
		},
	)
	imageErrors := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "extractor_image_errors_total",
			Help: "Image candidates rejected after download.",
		},
	)
	renderDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "extractor_page_render_duration_seconds",
			Help:    "Time to load and render one page.",
			Buckets: prometheus.DefBuckets,
		},
	)
	active := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "extractor_active_vendor_runs",
			Help: "Vendor runs currently in progress.",
		},
	)

	registry.MustRegister(vendorRuns, products, skipped, fieldMisses, imageBytes, imageErrors, renderDuration, active)

	return &Metrics{
		Registry:         registry,
		VendorRunsTotal:  vendorRuns,
		ProductsTotal:    products,
		SkippedTotal:     skipped,
		FieldMissesTotal: fieldMisses,
		ImageBytesTotal:  imageBytes,
		ImageErrorsTotal: imageErrors,
		RenderDuration:   renderDuration,
		ActiveVendorRuns: active,
	}
}

// IncVendorRun counts a finished vendor run.
func (m *Metrics) IncVendorRun(vendor string, state State) {
	if m == nil {
		return
	}
	m.VendorRunsTotal.WithLabelValues(vendor, string(state)).Inc()
}

// IncProduct counts a product outcome.
func (m *Metrics) IncProduct(vendor, outcome string) {
	if m == nil {
		return
	}
	m.ProductsTotal.WithLabelValues(vendor, outcome).Inc()
}

// IncSkipped counts a skipped product for a reason label.
func (m *Metrics) IncSkipped(reason string) {
	if m == nil {
		return
	}
	m.SkippedTotal.WithLabelValues(reason).Inc()
}

// IncFieldMiss counts a selector miss.
func (m *Metrics) IncFieldMiss(vendor, field string) {
	if m == nil {
		return
	}
	m.FieldMissesTotal.WithLabelValues(vendor, field).Inc()
}

// AddImageBytes records the size of an accepted image.
func (m *Metrics) AddImageBytes(n int) {
	if m == nil {
		return
	}
	m.ImageBytesTotal.Add(float64(n))
}

// AddImageErrors records rejected image candidates.
func (m *Metrics) AddImageErrors(n int) {
	if m == nil {
		return
	}
	m.ImageErrorsTotal.Add(float64(n))
}

// ObserveRender records a page render duration.
func (m *Metrics) ObserveRender(d time.Duration) {
	if m == nil {
		return
	}
	m.RenderDuration.Observe(d.Seconds())
}

// VendorRunStarted and VendorRunFinished track in-progress runs.
func (m *Metrics) VendorRunStarted() {
	if m == nil {
		return
	}
	m.ActiveVendorRuns.Inc()
}

func (m *Metrics) VendorRunFinished() {
	if m == nil {
		return
	}
	m.ActiveVendorRuns.Dec()
}
