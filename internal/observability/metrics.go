package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messaging_http_requests_total",
			Help: "Total number of HTTP requests processed by the messaging service.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "messaging_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	wsActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "messaging_ws_active_connections",
			Help: "Number of active websocket connections.",
		},
	)
	wsFramesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messaging_ws_frames_total",
			Help: "Total number of websocket frames, by action and outcome.",
		},
		[]string{"action", "outcome"},
	)
	deliveryOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messaging_delivery_outcomes_total",
			Help: "Resolved message statuses, by status.",
		},
		[]string{"status"},
	)
	fallbackNotificationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "messaging_fallback_notifications_total",
			Help: "Total number of fallback notifications created.",
		},
	)
	reportedErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "messaging_reported_errors_total",
			Help: "Total number of errors handed to the error reporter.",
		},
	)
	amqpPublishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "messaging_amqp_publish_errors_total",
			Help: "Total number of AMQP publish errors.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		wsActiveConnections,
		wsFramesTotal,
		deliveryOutcomesTotal,
		fallbackNotificationsTotal,
		reportedErrorsTotal,
		amqpPublishErrorsTotal,
	)
}

func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func IncWSActive() {
	wsActiveConnections.Inc()
}

func DecWSActive() {
	wsActiveConnections.Dec()
}

func IncWSFrame(action, outcome string) {
	wsFramesTotal.WithLabelValues(action, outcome).Inc()
}

func IncDeliveryOutcome(status string) {
	deliveryOutcomesTotal.WithLabelValues(status).Inc()
}

func IncFallbackNotification() {
	fallbackNotificationsTotal.Inc()
}

func IncReportedError() {
	reportedErrorsTotal.Inc()
}

func IncAMQPPublishError() {
	amqpPublishErrorsTotal.Inc()
}
