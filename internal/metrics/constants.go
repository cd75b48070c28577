package metrics

// ============================================================================
// Metric Names
// ============================================================================

// HTTP metric names
const (
	MetricNameHTTPRequestsTotal    = "http_requests_total"
	MetricNameHTTPRequestDuration  = "http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "http_requests_in_flight"
)

// Ingestion metric names
const (
	MetricNameCyclesTotal     = "ingestion_cycles_total"
	MetricNameMentionsHandled = "mentions_handled_total"
	MetricNameRepliesPosted   = "replies_posted_total"
	MetricNameReplyFailures   = "reply_failures_total"
)

// Platform client metric names
const (
	MetricNameRateLimitHits  = "platform_rate_limit_hits_total"
	MetricNameTokenRefreshes = "platform_token_refreshes_total"
)

// ============================================================================
// Metric Help Text
// ============================================================================

// HTTP metric help text
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Current number of HTTP requests being served"
)

// Ingestion metric help text
const (
	HelpTextCyclesTotal     = "Total number of ingestion cycles by outcome"
	HelpTextMentionsHandled = "Total number of mentions processed to completion"
	HelpTextRepliesPosted   = "Total number of replies posted"
	HelpTextReplyFailures   = "Total number of reply attempts that failed"
)

// Platform client metric help text
const (
	HelpTextRateLimitHits  = "Total number of 429 responses from the platform"
	HelpTextTokenRefreshes = "Total number of successful token refreshes"
)

// ============================================================================
// Label Names and Values
// ============================================================================

const (
	LabelMethod  = "method"
	LabelPath    = "path"
	LabelStatus  = "status"
	LabelOutcome = "outcome"
)

// Cycle outcome label values
const (
	OutcomeCompleted   = "completed"
	OutcomeBackoff     = "backoff"
	OutcomeCooldown    = "cooldown"
	OutcomeRateLimited = "rate_limited"
	OutcomeError       = "error"
)

// Histogram buckets
var HTTPLatencyBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}
