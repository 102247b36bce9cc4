package pool

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	managerPrometheusMetrics sync.Once

	managerDescriptorsUsed = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "buildbarn",
			Subsystem: "fdpool",
			Name:      "descriptors_used",
			Help:      "Number of file descriptors currently open through the pool.",
		})
	managerDescriptorsLimit = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "buildbarn",
			Subsystem: "fdpool",
			Name:      "descriptors_limit",
			Help:      "Maximum number of file descriptors the pool may have open at once.",
		})
	managerOpensTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "buildbarn",
			Subsystem: "fdpool",
			Name:      "opens_total",
			Help:      "Total number of times a descriptor was successfully opened.",
		})
	managerClosesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "buildbarn",
			Subsystem: "fdpool",
			Name:      "closes_total",
			Help:      "Total number of times a descriptor was closed.",
		})
	managerEvictionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "buildbarn",
			Subsystem: "fdpool",
			Name:      "evictions_total",
			Help:      "Total number of times a descriptor was closed to make room for a new one.",
		})
	managerLimitReachedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "buildbarn",
			Subsystem: "fdpool",
			Name:      "limit_reached_total",
			Help:      "Total number of times Open() failed because the limit was reached and no descriptor could be evicted.",
		})
)

// registerManagerMetrics registers the package's Prometheus metrics
// exactly once, regardless of how many Manager instances are created
// in this process.
func registerManagerMetrics() {
	managerPrometheusMetrics.Do(func() {
		prometheus.MustRegister(managerDescriptorsUsed)
		prometheus.MustRegister(managerDescriptorsLimit)
		prometheus.MustRegister(managerOpensTotal)
		prometheus.MustRegister(managerClosesTotal)
		prometheus.MustRegister(managerEvictionsTotal)
		prometheus.MustRegister(managerLimitReachedTotal)
	})
}
