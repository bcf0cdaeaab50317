package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Счётчики работы грида. Исход сохранения: ok / error.
var (
	GridSaves = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resplan_grid_saves_total",
		Help: "Dispatched grid cell saves by outcome.",
	}, []string{"outcome"})

	GridBatchAborts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "resplan_grid_batch_aborts_total",
		Help: "Sequential batch saves aborted by a failing cell.",
	})

	GridRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "resplan_grid_retries_total",
		Help: "Retry rounds over failed cells.",
	})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resplan_http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "resplan_http_request_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// HTTPMiddleware считает запросы по шаблону маршрута, а не по сырому пути,
// чтобы не раздувать кардинальность метрик.
func HTTPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
