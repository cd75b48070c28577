package bootstrap

import (
	"context"
	"log/slog"

	"github.com/osse101/MentionBot_Go/internal/scheduler"
	"github.com/osse101/MentionBot_Go/internal/server"
	"github.com/osse101/MentionBot_Go/internal/worker"
)

// ShutdownComponents holds all components that need graceful shutdown.
type ShutdownComponents struct {
	Server    *server.Server
	Scheduler *scheduler.Scheduler
	Pool      *worker.Pool
}

// GracefulShutdown stops components in dependency order:
// 1. HTTP server (stop accepting new requests, including manual triggers)
// 2. Scheduler (stop queueing new cycles)
// 3. Worker pool (drain, letting an in-flight cycle finish and persist)
//
// Errors during shutdown are logged but do not stop the shutdown sequence.
func GracefulShutdown(ctx context.Context, components ShutdownComponents) {
	slog.Info(LogMsgShuttingDown)

	if err := components.Server.Stop(ctx); err != nil {
		slog.Error(LogMsgServerForcedShutdown, "error", err)
	}

	components.Scheduler.Stop()
	components.Pool.Stop()

	slog.Info(LogMsgStopped)
}
