package scheduler

// Log messages
const (
	LogMsgTick            = "Scheduler tick"
	LogMsgTickSkippedBusy = "Tick skipped, cycle already running"
	LogMsgTickSkippedAuth = "Tick skipped, authentication requires operator action"
	LogMsgManualStarted   = "Manual cycle accepted"
	LogMsgStopped         = "Scheduler stopped"
)
