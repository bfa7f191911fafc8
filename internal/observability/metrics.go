package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce            sync.Once
	httpRequestsTotal       *prometheus.CounterVec
	httpLatencySeconds      *prometheus.HistogramVec
	postsCreatedTotal       prometheus.Counter
	commentsCreatedTotal    prometheus.Counter
	notificationsSentTotal  *prometheus.CounterVec
	reportsResolvedTotal    prometheus.Counter
	otpIssuedTotal          prometheus.Counter
	moderationDecisionsTotal *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used across the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		postsCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "posts_created_total",
			Help: "Total number of posts submitted.",
		})

		commentsCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "comments_created_total",
			Help: "Total number of comments submitted.",
		})

		notificationsSentTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_sent_total",
			Help: "Total number of notifications persisted, by trigger.",
		}, []string{"trigger"})

		reportsResolvedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reports_resolved_total",
			Help: "Total number of reports batch-resolved by moderators.",
		})

		otpIssuedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "otp_issued_total",
			Help: "Total number of one-time codes issued.",
		})

		moderationDecisionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "moderation_decisions_total",
			Help: "Total number of moderation transitions, by target and verdict.",
		}, []string{"target", "verdict"})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			postsCreatedTotal,
			commentsCreatedTotal,
			notificationsSentTotal,
			reportsResolvedTotal,
			otpIssuedTotal,
			moderationDecisionsTotal,
		)
	})
}

// HTTPRequests exposes the counter for served requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the request latency histogram.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// PostsCreated exposes the post creation counter.
func PostsCreated() prometheus.Counter {
	RegisterMetrics()
	return postsCreatedTotal
}

// CommentsCreated exposes the comment creation counter.
func CommentsCreated() prometheus.Counter {
	RegisterMetrics()
	return commentsCreatedTotal
}

// NotificationsSent exposes the notification fan-out counter.
func NotificationsSent() *prometheus.CounterVec {
	RegisterMetrics()
	return notificationsSentTotal
}

// ReportsResolved exposes the report resolution counter.
func ReportsResolved() prometheus.Counter {
	RegisterMetrics()
	return reportsResolvedTotal
}

// OTPIssued exposes the one-time code counter.
func OTPIssued() prometheus.Counter {
	RegisterMetrics()
	return otpIssuedTotal
}

// ModerationDecisions exposes the moderation transition counter.
func ModerationDecisions() *prometheus.CounterVec {
	RegisterMetrics()
	return moderationDecisionsTotal
}
