package observability

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics stores Prometheus collectors used by the API and the batch lifecycle engine.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal     *prometheus.CounterVec
	httpRequestDuration   *prometheus.HistogramVec
	batchTransitionsTotal *prometheus.CounterVec
	batchRejectionsTotal  *prometheus.CounterVec
	storeConflictsTotal   *prometheus.CounterVec
	statsCacheLookups     *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "survey_batches",
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests processed by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "survey_batches",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds by method and path.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		batchTransitionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "survey_batches",
				Name:      "batch_transitions_total",
				Help:      "Committed batch status transitions by source and target status.",
			},
			[]string{"from", "to"},
		),
		batchRejectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "survey_batches",
				Name:      "batch_rejections_total",
				Help:      "Rejected batch mutations grouped by error code.",
			},
			[]string{"code"},
		),
		storeConflictsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "survey_batches",
				Name:      "batch_store_conflicts_total",
				Help:      "Writes rejected by a database constraint after passing service checks.",
			},
			[]string{"constraint"},
		),
		statsCacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "survey_batches",
				Name:      "stats_cache_lookups_total",
				Help:      "Statistics cache lookups grouped by result.",
			},
			[]string{"result"},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.batchTransitionsTotal,
		m.batchRejectionsTotal,
		m.storeConflictsTotal,
		m.statsCacheLookups,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) HTTPMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		path := routePath(c)
		// Avoid self-scrape noise for request counters.
		if path == "/metrics" {
			return err
		}

		m.recordHTTPRequest(c.Method(), path, statusFromResult(c, err), time.Since(start))
		return err
	}
}

func (m *Metrics) IncTransition(from string, to string) {
	if m == nil {
		return
	}
	m.batchTransitionsTotal.WithLabelValues(normalizeLabel(from), normalizeLabel(to)).Inc()
}

func (m *Metrics) IncRejection(code string) {
	if m == nil {
		return
	}
	m.batchRejectionsTotal.WithLabelValues(strings.ToUpper(normalizeLabel(code))).Inc()
}

func (m *Metrics) IncStoreConflict(constraint string) {
	if m == nil {
		return
	}
	m.storeConflictsTotal.WithLabelValues(normalizeLabel(constraint)).Inc()
}

func (m *Metrics) IncCacheHit() {
	if m == nil {
		return
	}
	m.statsCacheLookups.WithLabelValues("hit").Inc()
}

func (m *Metrics) IncCacheMiss() {
	if m == nil {
		return
	}
	m.statsCacheLookups.WithLabelValues("miss").Inc()
}

func (m *Metrics) recordHTTPRequest(method string, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}

	methodLabel := strings.ToUpper(strings.TrimSpace(method))
	if methodLabel == "" {
		methodLabel = "UNKNOWN"
	}
	pathLabel := strings.TrimSpace(path)
	if pathLabel == "" {
		pathLabel = "unmatched"
	}

	m.httpRequestsTotal.WithLabelValues(methodLabel, pathLabel, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(methodLabel, pathLabel).Observe(duration.Seconds())
}

func routePath(c *fiber.Ctx) string {
	if c == nil {
		return "unmatched"
	}

	if route := c.Route(); route != nil {
		if path := strings.TrimSpace(route.Path); path != "" {
			return path
		}
	}
	return "unmatched"
}

func statusFromResult(c *fiber.Ctx, err error) int {
	if err != nil {
		if fiberErr, ok := err.(*fiber.Error); ok {
			return fiberErr.Code
		}
		return fiber.StatusInternalServerError
	}

	if c == nil {
		return fiber.StatusOK
	}

	status := c.Response().StatusCode()
	if status == 0 {
		return fiber.StatusOK
	}
	return status
}

func normalizeLabel(value string) string {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return "unknown"
	}
	return normalized
}
