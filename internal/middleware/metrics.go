package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RedisErrors counts Redis errors by operation type.
var RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "myblog_redis_errors_total",
	Help: "Total number of Redis errors by operation type",
}, []string{"operation"})

// PageCacheHits counts page cache hits and misses per cached endpoint.
var PageCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "myblog_page_cache_requests_total",
	Help: "Page cache lookups by endpoint and outcome",
}, []string{"endpoint", "outcome"})

// InitMetrics creates the Prometheus middleware for the given service name.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware wires the Prometheus middleware into the request chain.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
