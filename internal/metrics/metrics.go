package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameHTTPRequestsInFlight,
			Help: HelpTextHTTPRequestsInFlight,
		},
	)
)

// Ingestion Metrics
var (
	CyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameCyclesTotal,
			Help: HelpTextCyclesTotal,
		},
		[]string{LabelOutcome},
	)

	MentionsHandled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameMentionsHandled,
			Help: HelpTextMentionsHandled,
		},
	)

	RepliesPosted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameRepliesPosted,
			Help: HelpTextRepliesPosted,
		},
	)

	ReplyFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameReplyFailures,
			Help: HelpTextReplyFailures,
		},
	)
)

// Platform Client Metrics
var (
	RateLimitHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameRateLimitHits,
			Help: HelpTextRateLimitHits,
		},
	)

	TokenRefreshes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameTokenRefreshes,
			Help: HelpTextTokenRefreshes,
		},
	)
)
