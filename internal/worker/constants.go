package worker

// Pool defaults
const (
	DefaultWorkers   = 1
	DefaultQueueSize = 4
)

// Log messages
const (
	LogMsgWorkerJobFailed = "Worker job failed"
	LogMsgQueueFull       = "Worker queue full, job rejected"
)
