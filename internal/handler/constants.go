package handler

// Log messages
const (
	LogMsgAuthBeginFailed    = "Failed to start authorization flow"
	LogMsgAuthDenied         = "Authorization denied at provider"
	LogMsgAuthCallbackFailed = "Authorization callback rejected"
	LogMsgAuthCompleted      = "Authorization completed, credentials stored"
	LogMsgVaultSaveFailed    = "Failed to store credentials"
	LogMsgProbeFailed        = "Credential probe failed"
	LogMsgResetFailed        = "Reset failed"
	LogMsgResetDone          = "Reset completed"
	LogMsgTriggerFailed      = "Manual trigger failed"
	LogMsgStatusFailed       = "Failed to read ingestion status"
)

// Error messages specific to the authorization flow
const (
	ErrMsgAuthDenied = "Authorization was denied at the provider."
)
