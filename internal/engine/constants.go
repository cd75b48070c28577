package engine

// Cycle bounds
const (
	// MaxFetchPages caps pagination follow-up per cycle so a large backlog
	// cannot produce an unbounded cycle.
	MaxFetchPages = 5

	// DefaultBatchSize is the deliberate per-cycle reply cap. Independent of
	// rate-limit responses: aggressive reply volume risks provider-side abuse
	// flags even under the nominal limit.
	DefaultBatchSize = 2

	// RecentReplyCacheSize bounds the LRU of recently processed mention ids.
	// A second line of defense against double replies when the provider
	// returns overlapping pages across cycles.
	RecentReplyCacheSize = 512
)

// Log messages
const (
	LogMsgCycleStart        = "Ingestion cycle starting"
	LogMsgCycleDone         = "Ingestion cycle finished"
	LogMsgBackoffActive     = "Backoff window active, skipping cycle"
	LogMsgCooldownActive    = "Manual trigger cooldown active"
	LogMsgSelfSkip          = "Skipping self-authored mention"
	LogMsgReplyPosted       = "Reply posted"
	LogMsgReplyFailed       = "Reply failed, will retry next cycle"
	LogMsgRateLimitAbort    = "Rate limited, persisting backoff and aborting cycle"
	LogMsgFetchFailed       = "Mention fetch failed"
	LogMsgAuthTerminal      = "Authentication terminal, automatic cycles suspended"
	LogMsgDuplicateSkip     = "Mention already replied to, advancing past it"
	LogMsgCheckpointPersist = "Checkpoint persisted"
)
