package config

import "time"

// Service defaults
const (
	DefaultServiceName = "mention-bot"
)

// Platform endpoint defaults
const (
	DefaultAuthorizeURL = "https://platform.example.com/oauth2/authorize"
	DefaultTokenURL     = "https://api.platform.example.com/oauth2/token"
	DefaultAPIBaseURL   = "https://api.platform.example.com/v1"
	DefaultScopes       = "read.mentions write.posts offline.access"
)

// Ingestion defaults
const (
	DefaultPollInterval   = 3 * time.Minute
	DefaultBatchSize      = 2
	DefaultManualCooldown = time.Minute
)
