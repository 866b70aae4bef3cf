package metrics

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pltsmonitor/backend/services/telemetry-service/internal/hub"
)

// HubStats is what the hub exposes for scraping.
type HubStats interface {
	Stats() hub.Stats
}

// Metrics holds the service collectors on a private registry.
type Metrics struct {
	registry          *prometheus.Registry
	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	ingestTotal       *prometheus.CounterVec
}

// New registers collectors, including gauges read from h on every scrape.
func New(h HubStats) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "plts_http_requests_total",
			Help: "Total count of HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "plts_http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		ingestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "plts_readings_ingested_total",
			Help: "Reading pair submissions by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpDuration,
		m.ingestTotal,
	)

	if h != nil {
		reg.MustRegister(
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Name: "plts_tracker_subscribers",
				Help: "Connected real-time tracker viewers.",
			}, func() float64 { return float64(h.Stats().Subscribers) }),
			prometheus.NewCounterFunc(prometheus.CounterOpts{
				Name: "plts_tracker_published_total",
				Help: "Tracker samples published to the hub.",
			}, func() float64 { return float64(h.Stats().Published) }),
			prometheus.NewCounterFunc(prometheus.CounterOpts{
				Name: "plts_tracker_dropped_total",
				Help: "Tracker samples dropped from full subscriber queues.",
			}, func() float64 { return float64(h.Stats().Dropped) }),
		)
	}
	return m
}

// ObserveIngest implements service.IngestRecorder.
func (m *Metrics) ObserveIngest(result string) {
	m.ingestTotal.WithLabelValues(result).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Instrument records count and latency for route.
func (m *Metrics) Instrument(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		m.httpRequestsTotal.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

// Hijack keeps websocket upgrades working behind Instrument.
func (s *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := s.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("metrics: response writer does not support hijacking")
	}
	s.status = http.StatusSwitchingProtocols
	return hj.Hijack()
}
