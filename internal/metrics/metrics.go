package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "disaster",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "disaster",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	capacityUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "disaster",
			Subsystem: "resource",
			Name:      "capacity_updates_total",
			Help:      "Total number of capacity update attempts",
		},
		[]string{"result"},
	)

	nearbyQueryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "disaster",
			Subsystem: "proximity",
			Name:      "query_duration_seconds",
			Help:      "Duration of nearby resource scans in seconds",
			Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
	)

	nearbyCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "disaster",
			Subsystem: "proximity",
			Name:      "scanned_resources",
			Help:      "Number of resources scanned per nearby query",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	authorizationDenied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "disaster",
			Subsystem: "policy",
			Name:      "denied_total",
			Help:      "Total number of operations refused by the access policy",
		},
		[]string{"action", "role"},
	)

	cacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "disaster",
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Resource cache lookups by outcome",
		},
		[]string{"outcome"},
	)
)

// GinMiddleware собирает метрики HTTP-запросов
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler отдает метрики в формате Prometheus
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

// RecordCapacityUpdate учитывает исход обновления вместимости
func RecordCapacityUpdate(result string) {
	capacityUpdatesTotal.WithLabelValues(result).Inc()
}

// ObserveNearbyQuery учитывает длительность и размер сканирования
func ObserveNearbyQuery(d time.Duration, scanned int) {
	nearbyQueryDuration.Observe(d.Seconds())
	nearbyCandidates.Observe(float64(scanned))
}

func RecordAuthorizationDenied(action, role string) {
	if role == "" {
		role = "anonymous"
	}
	authorizationDenied.WithLabelValues(action, role).Inc()
}

func RecordCacheHit() {
	cacheLookups.WithLabelValues("hit").Inc()
}

func RecordCacheMiss() {
	cacheLookups.WithLabelValues("miss").Inc()
}
