package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds the Prometheus counters and histograms of one CLI run. A run is short
// lived, so the registry is written to a node_exporter textfile instead of being scraped.
type Metrics struct {
	registry *prometheus.Registry

	DownloadAttempts *prometheus.CounterVec // labels: product, outcome={success,retry,failure,skipped}
	DownloadDuration prometheus.Histogram
	ListingRequests  *prometheus.CounterVec // labels: source={bucket,cache,shared}
	ImagesRendered   *prometheus.CounterVec // labels: kind={single_band,band_difference,ndvi}
	CropWarnings     prometheus.Counter
}

// NewMetrics creates the run metrics together with the Go runtime collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	return newMetrics(reg)
}

// NewMetricsForTesting creates Metrics on a bare registry.
func NewMetricsForTesting() *Metrics {
	return newMetrics(prometheus.NewRegistry())
}

func newMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: reg,
		DownloadAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "goes_abi",
			Name:      "download_attempts_total",
			Help:      "Download attempts by product and outcome.",
		}, []string{"product", "outcome"}),
		DownloadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "goes_abi",
			Name:      "download_duration_seconds",
			Help:      "Duration of one fetch including region crop.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80, 160},
		}),
		ListingRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "goes_abi",
			Name:      "listing_requests_total",
			Help:      "Bucket prefix listings by where the answer came from.",
		}, []string{"source"}),
		ImagesRendered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "goes_abi",
			Name:      "images_rendered_total",
			Help:      "PNG images written by kind.",
		}, []string{"kind"}),
		CropWarnings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "goes_abi",
			Name:      "crop_degenerate_total",
			Help:      "Domain crops skipped because no pixel fell inside the domain.",
		}),
	}
	reg.MustRegister(m.DownloadAttempts, m.DownloadDuration, m.ListingRequests, m.ImagesRendered, m.CropWarnings)
	return m
}

// Gatherer exposes the registry, mainly for tests.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile dumps all metrics in the text exposition format. An empty path is a no-op.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
