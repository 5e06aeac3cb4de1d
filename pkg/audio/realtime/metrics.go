package realtime

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus throughput metrics for the ingestion ring.
// Registration is process-wide, so all processors share one metrics set.
type Metrics struct {
	enqueuedChunks prometheus.Counter
	dequeuedChunks prometheus.Counter
	droppedChunks  prometheus.Counter
	queueDepth     prometheus.Gauge
	queueLatency   prometheus.Histogram
}

var (
	metricsOnce   sync.Once
	sharedMetrics *Metrics
)

// newMetrics registers the metrics on first use and returns the shared set
func newMetrics() *Metrics {
	metricsOnce.Do(func() {
		sharedMetrics = &Metrics{
			enqueuedChunks: promauto.NewCounter(prometheus.CounterOpts{
				Name: "gamecalls_realtime_chunks_enqueued_total",
				Help: "Total number of audio chunks accepted into the ring buffer",
			}),
			dequeuedChunks: promauto.NewCounter(prometheus.CounterOpts{
				Name: "gamecalls_realtime_chunks_dequeued_total",
				Help: "Total number of audio chunks handed to the consumer",
			}),
			droppedChunks: promauto.NewCounter(prometheus.CounterOpts{
				Name: "gamecalls_realtime_chunks_dropped_total",
				Help: "Total number of audio chunks dropped because the ring was full",
			}),
			queueDepth: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "gamecalls_realtime_queue_depth",
				Help: "Number of chunks currently waiting in the ring buffer",
			}),
			queueLatency: promauto.NewHistogram(prometheus.HistogramOpts{
				Name:    "gamecalls_realtime_queue_latency_seconds",
				Help:    "Time chunks spend in the ring between enqueue and dequeue",
				Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
			}),
		}
	})
	return sharedMetrics
}
