package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/osse101/MentionBot_Go/internal/domain"
	"github.com/osse101/MentionBot_Go/internal/engine"
	"github.com/osse101/MentionBot_Go/internal/logger"
	"github.com/osse101/MentionBot_Go/internal/worker"
)

// Scheduler drives the ingestion engine on a fixed interval and accepts
// fire-and-forget manual triggers. Both paths funnel through the engine's
// single-flight guard, so at most one cycle runs per process.
type Scheduler struct {
	engine   *engine.Engine
	pool     *worker.Pool
	interval time.Duration
	quit     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates a scheduler. The pool must be started by the caller.
func New(eng *engine.Engine, pool *worker.Pool, interval time.Duration) *Scheduler {
	return &Scheduler{
		engine:   eng,
		pool:     pool,
		interval: interval,
		quit:     make(chan struct{}),
	}
}

// Start begins interval ticking. Stop halts future ticks without affecting
// an in-flight cycle.
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.tick()
			case <-s.quit:
				return
			}
		}
	}()
}

func (s *Scheduler) tick() {
	log := logger.FromContext(context.Background())

	// A dead refresh token makes automatic retries pointless; stop burning
	// cycles until an operator re-authorizes.
	if s.engine.AuthTerminal() {
		log.Warn(LogMsgTickSkippedAuth)
		return
	}

	if !s.engine.TryReserve() {
		log.Info(LogMsgTickSkippedBusy)
		return
	}

	log.Debug(LogMsgTick)
	accepted := s.pool.TryEnqueue(worker.JobFunc(func(ctx context.Context) error {
		_, err := s.engine.RunReserved(ctx, engine.TriggerScheduled)
		return err
	}))
	if !accepted {
		s.engine.Release()
	}
}

// TriggerManual starts a cycle in the background and returns immediately.
// Returns ErrRunnerBusy when a cycle is already in flight - the caller
// observes acceptance, never completion.
func (s *Scheduler) TriggerManual(ctx context.Context) error {
	if !s.engine.TryReserve() {
		return domain.ErrRunnerBusy
	}

	requestID, _ := logger.RequestIDFromContext(ctx)
	accepted := s.pool.TryEnqueue(worker.JobFunc(func(jobCtx context.Context) error {
		if requestID != "" {
			jobCtx = logger.WithRequestID(jobCtx, requestID)
		}
		_, err := s.engine.RunReserved(jobCtx, engine.TriggerManual)
		return err
	}))
	if !accepted {
		s.engine.Release()
		return domain.ErrRunnerBusy
	}

	logger.FromContext(ctx).Info(LogMsgManualStarted)
	return nil
}

// Stop stops future ticks and waits for the tick loop to exit.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.quit)
	})
	s.wg.Wait()
	logger.FromContext(context.Background()).Info(LogMsgStopped)
}
