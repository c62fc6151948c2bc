package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "microblog_http_requests_total",
			Help: "Total number of HTTP requests processed.",
		},
		[]string{"service", "method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "microblog_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "route"},
	)
	friendsClientRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "microblog_friends_client_requests_total",
			Help: "Calls made to the friends service, by operation and outcome.",
		},
		[]string{"op", "outcome"},
	)
	friendListChangesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "microblog_friend_list_changes_total",
			Help: "Friend list mutations applied by the friends service.",
		},
		[]string{"op"},
	)
	tweetsPostedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "microblog_tweets_posted_total",
			Help: "Total number of tweets stored.",
		},
	)
	wsActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "microblog_ws_active_connections",
			Help: "Number of active live timeline websocket connections.",
		},
	)
	wsEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "microblog_ws_events_total",
			Help: "Total number of websocket events.",
		},
		[]string{"event"},
	)
	amqpPublishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "microblog_amqp_publish_errors_total",
			Help: "Total number of AMQP publish errors.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		friendsClientRequestsTotal,
		friendListChangesTotal,
		tweetsPostedTotal,
		wsActiveConnections,
		wsEventsTotal,
		amqpPublishErrorsTotal,
	)
}

// HTTPMetricsMiddleware records request counts and latencies per route.
func HTTPMetricsMiddleware(service string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()

		httpRequestsTotal.WithLabelValues(service, c.Request.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(service, route).Observe(time.Since(start).Seconds())
	}
}

// MetricsHandler exposes the default registry.
func MetricsHandler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

func IncFriendsClientRequest(op, outcome string) {
	friendsClientRequestsTotal.WithLabelValues(op, outcome).Inc()
}

func IncFriendListChange(op string) {
	friendListChangesTotal.WithLabelValues(op).Inc()
}

func IncTweetPosted() {
	tweetsPostedTotal.Inc()
}

func IncWSActive() {
	wsActiveConnections.Inc()
}

func DecWSActive() {
	wsActiveConnections.Dec()
}

func IncWSEvent(event string) {
	wsEventsTotal.WithLabelValues(event).Inc()
}

func IncAMQPPublishError() {
	amqpPublishErrorsTotal.Inc()
}
