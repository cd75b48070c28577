package bootstrap

import "time"

// Shutdown timing
const (
	// ShutdownTimeout allows an in-flight cycle to finish posting and persist
	// its checkpoint before the process exits.
	ShutdownTimeout = 30 * time.Second
)

// Log messages
const (
	LogMsgShuttingDown         = "Shutting down"
	LogMsgServerForcedShutdown = "Server forced shutdown"
	LogMsgStopped              = "Shutdown complete"
)
