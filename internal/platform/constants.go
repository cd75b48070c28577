package platform

import "time"

// Request policy
const (
	// ExpirySkew refreshes tokens slightly before their real deadline so the
	// common case avoids a wasted 401 round trip.
	ExpirySkew = 2 * time.Minute

	// RateLimitRetryBudget is how many 429 waits the client absorbs locally
	// before surfacing RateLimitedError to the caller.
	RateLimitRetryBudget = 2

	// DefaultRateLimitWait applies when a 429 carries no usable headers.
	DefaultRateLimitWait = 60 * time.Second

	// MaxJitter is added to every computed wait to avoid thundering-herd
	// retries across concurrent callers.
	MaxJitter = 3 * time.Second

	RequestTimeout  = 15 * time.Second
	MaxResponseSize = 1 << 20
)

// Rate limit response headers, in priority order
const (
	HeaderRetryAfter     = "Retry-After"
	HeaderRateLimitReset = "X-Rate-Limit-Reset"
)

// API paths
const (
	PathSelf     = "/users/me"
	PathMentions = "/mentions"
	PathPosts    = "/posts"
)

// Pagination
const (
	MentionsPageSize = 50
)

// Log messages
const (
	LogMsgProactiveRefresh = "Access token near expiry, refreshing"
	LogMsgReactiveRefresh  = "Got 401, refreshing and retrying once"
	LogMsgRateLimited      = "Rate limited, backing off"
	LogMsgRateLimitBudget  = "Rate limit retry budget exhausted"
)
