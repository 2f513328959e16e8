package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/contextsuite/catalogd/internal/catalog"
	"github.com/contextsuite/catalogd/internal/model"
)

// Metrics records refresh outcomes and cache fill level. Each server carries
// its own registry so multiple instances can coexist in one process.
type Metrics struct {
	registry  *prometheus.Registry
	syncTotal *prometheus.CounterVec
	syncDur   prometheus.Histogram
}

// NewMetrics registers catalog metrics against a fresh registry. Cache size
// is sampled from the service at scrape time.
func NewMetrics(svc *catalog.Service) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{registry: reg}

	m.syncTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "catalog",
		Name:      "sync_total",
		Help:      "Number of catalog refreshes by source and outcome",
	}, []string{"source", "status"})
	m.syncDur = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "catalog",
		Name:      "sync_duration_seconds",
		Help:      "Time spent refreshing the catalog",
	})
	cacheSize := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "catalog",
		Name:      "cache_entries",
		Help:      "Number of live cache entries",
	}, func() float64 {
		return float64(svc.CacheStatus().Size)
	})

	reg.MustRegister(m.syncTotal, m.syncDur, cacheSize)
	return m
}

// Observe records one refresh outcome.
func (m *Metrics) Observe(result *model.SyncResult) {
	if result == nil {
		return
	}
	status := "success"
	if !result.Success {
		status = "failure"
	}
	m.syncTotal.WithLabelValues(string(result.Source), status).Inc()
	m.syncDur.Observe(result.Duration.Seconds())
}

// Handler returns the scrape endpoint for this server's registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
