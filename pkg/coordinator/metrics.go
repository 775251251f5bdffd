package coordinator

import (
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	queueDepth prometheus.Gauge
	synced     prometheus.Counter
	failed     prometheus.Counter
	online     prometheus.Gauge
}

func newMetrics() *metrics {
	return &metrics{
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sync_queue_depth",
			Help: "Number of remote writes that are queued or in flight.",
		}),
		synced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sync_operations_synced_total",
			Help: "How many remote writes succeeded.",
		}),
		failed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sync_operations_failed_total",
			Help: "How many remote writes failed after exhausting their attempts.",
		}),
		online: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sync_online",
			Help: "1 if the remote store is reachable, 0 otherwise.",
		}),
	}
}

func (m *metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{m.queueDepth, m.synced, m.failed, m.online}
}
