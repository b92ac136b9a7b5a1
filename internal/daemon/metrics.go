package daemon

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type metrics struct {
	registry    *prometheus.Registry
	simulations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter
	wontPayoff  *prometheus.CounterVec
	snapshots   *prometheus.CounterVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		simulations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "debtplan",
			Name:      "simulations_total",
			Help:      "Payoff simulations run, by strategy.",
		}, []string{"strategy"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "debtplan",
			Name:      "request_duration_seconds",
			Help:      "Time to answer plan and compare requests.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"endpoint"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "debtplan",
			Name:      "cache_hits_total",
			Help:      "Responses served from the result cache.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "debtplan",
			Name:      "cache_misses_total",
			Help:      "Requests that had to be simulated.",
		}),
		wontPayoff: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "debtplan",
			Name:      "wont_payoff_total",
			Help:      "Simulations that ended without retiring every debt.",
		}, []string{"strategy"}),
		snapshots: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "debtplan",
			Name:      "snapshots_total",
			Help:      "Scheduled projection snapshots, by result.",
		}, []string{"result"}),
	}
	m.registry.MustRegister(
		m.simulations, m.duration, m.cacheHits, m.cacheMisses, m.wontPayoff, m.snapshots,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *metrics) observeSchedule(strategy string, wont bool) {
	m.simulations.WithLabelValues(strategy).Inc()
	if wont {
		m.wontPayoff.WithLabelValues(strategy).Inc()
	}
}
