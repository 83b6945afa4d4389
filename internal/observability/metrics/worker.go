package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	tagTotal    *prometheus.CounterVec
	tagDuration *prometheus.HistogramVec
	tagInFlight prometheus.Gauge
	queueLag    *prometheus.HistogramVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	tagTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "noteground",
			Subsystem: "worker",
			Name:      "tag_extraction_total",
			Help:      "Total tag extraction runs by status.",
		},
		[]string{"service", "status"},
	)
	tagDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "noteground",
			Subsystem: "worker",
			Name:      "tag_extraction_duration_seconds",
			Help:      "Tag extraction duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	tagInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "noteground",
			Subsystem: "worker",
			Name:      "tag_extraction_in_flight",
			Help:      "Number of in-flight tag extraction runs.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	queueLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "noteground",
			Subsystem: "worker",
			Name:      "queue_lag_seconds",
			Help:      "Delay between note creation and tag extraction start.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service"},
	)

	registry.MustRegister(tagTotal, tagDuration, tagInFlight, queueLag)

	return &WorkerMetrics{
		registry:    registry,
		tagTotal:    tagTotal,
		tagDuration: tagDuration,
		tagInFlight: tagInFlight,
		queueLag:    queueLag,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartExtraction() {
	m.tagInFlight.Inc()
}

func (m *WorkerMetrics) FinishExtraction(service string, duration time.Duration, err error) {
	m.tagInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.tagTotal.WithLabelValues(service, status).Inc()
	m.tagDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

func (m *WorkerMetrics) ObserveQueueLag(service string, lag time.Duration) {
	if lag < 0 {
		return
	}
	m.queueLag.WithLabelValues(service).Observe(lag.Seconds())
}
