package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "wildfire_dashboard"

// Metrics holds the Prometheus counters, histograms, and gauges for the dashboard.
type Metrics struct {
	// Table store metrics.
	TableLoads      *prometheus.CounterVec   // labels: source
	TableLoadErrors *prometheus.CounterVec   // labels: source
	TableCache      *prometheus.CounterVec   // labels: result={hit,miss}
	TableLoadTime   *prometheus.HistogramVec // labels: source
	StoreReady      prometheus.Gauge

	// Render metrics.
	ChartsRendered     *prometheus.CounterVec // labels: chart
	ChartErrors        *prometheus.CounterVec // labels: chart
	PageRenderDuration *prometheus.HistogramVec
	SnapshotsPublished *prometheus.CounterVec // labels: outcome={success,error}
}

// NewMetrics creates and registers all dashboard metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.TableLoads,
		m.TableLoadErrors,
		m.TableCache,
		m.TableLoadTime,
		m.StoreReady,
		m.ChartsRendered,
		m.ChartErrors,
		m.PageRenderDuration,
		m.SnapshotsPublished,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, so tests can
// build as many as they need without "already registered" panics.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		TableLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "table_loads_total",
			Help:      "Source tables parsed from disk.",
		}, []string{"source"}),
		TableLoadErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "table_load_errors_total",
			Help:      "Source tables that failed to load.",
		}, []string{"source"}),
		TableCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "table_cache_total",
			Help:      "Table cache lookups by result.",
		}, []string{"result"}),
		TableLoadTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "table_load_duration_seconds",
			Help:      "Time spent parsing a source table.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"source"}),
		StoreReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "store_ready",
			Help:      "1 once every registered source has loaded, 0 otherwise.",
		}),
		ChartsRendered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "charts_rendered_total",
			Help:      "Chart specs built, placeholders included.",
		}, []string{"chart"}),
		ChartErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chart_errors_total",
			Help:      "Charts that failed to build.",
		}, []string{"chart"}),
		PageRenderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "page_render_duration_seconds",
			Help:      "Duration of a full page render.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"page"}),
		SnapshotsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_published_total",
			Help:      "Page snapshots sent to the snapshot topic by outcome.",
		}, []string{"outcome"}),
	}
}
