package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/course-viewer/internal/dto"
)

// Mutation outcomes recorded by ObserveCourseMutation.
const (
	OutcomeApplied = "applied"
	OutcomeIgnored = "ignored"
)

// MetricsService encapsulates Prometheus instrumentation and provides lightweight snapshots for API consumption.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	mutations       *prometheus.CounterVec
	courses         prometheus.Gauge
	subscribers     prometheus.Gauge
	published       *prometheus.CounterVec

	requestCount         uint64
	requestDurationTotal uint64
	appliedCount         uint64
	ignoredCount         uint64
	courseCount          int64
	subscriberCount      int64
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "course_mutations_total",
		Help: "Course store mutations by operation and outcome",
	}, []string{"operation", "outcome"})

	courses := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "courses_total",
		Help: "Number of courses currently held by the store",
	})

	subscribers := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "course_stream_subscribers",
		Help: "Live snapshot stream connections",
	})

	published := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "course_snapshots_published_total",
		Help: "Snapshots forwarded to the external event channel",
	}, []string{"result"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, mutations, courses, subscribers, published, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		mutations:       mutations,
		courses:         courses,
		subscribers:     subscribers,
		published:       published,
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// ObserveCourseMutation counts a store mutation and refreshes the course gauge.
func (m *MetricsService) ObserveCourseMutation(operation string, applied bool, courses int) {
	if m == nil {
		return
	}
	outcome := OutcomeIgnored
	if applied {
		outcome = OutcomeApplied
		atomic.AddUint64(&m.appliedCount, 1)
	} else {
		atomic.AddUint64(&m.ignoredCount, 1)
	}
	m.mutations.WithLabelValues(operation, outcome).Inc()
	m.SetCourseCount(courses)
}

// SetCourseCount updates the course gauge.
func (m *MetricsService) SetCourseCount(n int) {
	if m == nil {
		return
	}
	m.courses.Set(float64(n))
	atomic.StoreInt64(&m.courseCount, int64(n))
}

// StreamOpened tracks a new live subscriber.
func (m *MetricsService) StreamOpened() {
	if m == nil {
		return
	}
	m.subscribers.Inc()
	atomic.AddInt64(&m.subscriberCount, 1)
}

// StreamClosed tracks a subscriber going away.
func (m *MetricsService) StreamClosed() {
	if m == nil {
		return
	}
	m.subscribers.Dec()
	atomic.AddInt64(&m.subscriberCount, -1)
}

// ObservePublish records the result of forwarding a snapshot.
func (m *MetricsService) ObservePublish(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.published.WithLabelValues(result).Inc()
}

// Snapshot returns aggregated metrics suitable for the stats endpoint.
func (m *MetricsService) Snapshot() dto.MetricsSummary {
	if m == nil {
		return dto.MetricsSummary{}
	}
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	return dto.MetricsSummary{
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		MutationsApplied:         atomic.LoadUint64(&m.appliedCount),
		MutationsIgnored:         atomic.LoadUint64(&m.ignoredCount),
		Courses:                  int(atomic.LoadInt64(&m.courseCount)),
		Subscribers:              int(atomic.LoadInt64(&m.subscriberCount)),
		Goroutines:               runtime.NumGoroutine(),
	}
}
