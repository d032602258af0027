package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	PagesLoaded          prometheus.Counter
	PageLoadFailures     prometheus.Counter
	RecordsAccumulated   prometheus.Gauge
	Recomputes           prometheus.Counter
	RecomputesSuperseded prometheus.Counter
	RecomputeTime        prometheus.Histogram
	SortTime             *prometheus.HistogramVec
	SearchTime           *prometheus.HistogramVec
	ErrorsCount          *prometheus.CounterVec
}

// NewMetrics creates new prometheus metrics
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		PagesLoaded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pages_loaded_total",
			Help:      "The total number of record pages loaded from the store",
		}),
		PageLoadFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "page_load_failures_total",
			Help:      "The total number of failed page loads",
		}),
		RecordsAccumulated: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "records_accumulated",
			Help:      "Records currently accumulated in the browsing session",
		}),
		Recomputes: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recomputes_total",
			Help:      "The total number of recompute passes started",
		}),
		RecomputesSuperseded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recomputes_superseded_total",
			Help:      "Recompute passes cancelled or outrun by a newer pass",
		}),
		RecomputeTime: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recompute_time_seconds",
			Help:      "Time taken by full recompute passes",
			Buckets:   prometheus.DefBuckets,
		}),
		SortTime: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sort_time_seconds",
			Help:      "Time taken by sort runs",
			Buckets:   prometheus.DefBuckets,
		}, []string{"algorithm"}),
		SearchTime: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_time_seconds",
			Help:      "Time taken by search runs",
			Buckets:   prometheus.DefBuckets,
		}, []string{"algorithm"}),
		ErrorsCount: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
	}
}
