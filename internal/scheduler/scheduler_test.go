package scheduler_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/MentionBot_Go/internal/checkpoint"
	"github.com/osse101/MentionBot_Go/internal/domain"
	"github.com/osse101/MentionBot_Go/internal/engine"
	"github.com/osse101/MentionBot_Go/internal/platform"
	"github.com/osse101/MentionBot_Go/internal/scheduler"
	"github.com/osse101/MentionBot_Go/internal/worker"
)

// idleAPI serves an identity and an empty feed.
type idleAPI struct{}

func (idleAPI) Self(_ context.Context) (platform.Account, error) {
	return platform.Account{ID: "bot"}, nil
}

func (idleAPI) MentionsSince(_ context.Context, _, _ string) (platform.MentionsPage, error) {
	return platform.MentionsPage{}, nil
}

func (idleAPI) PostReply(_ context.Context, _, _ string) (string, error) {
	return "reply-1", nil
}

func newTestEngine(t *testing.T) (*engine.Engine, *checkpoint.Store) {
	t.Helper()
	store := checkpoint.NewStore(t.TempDir())
	eng, err := engine.New(store, idleAPI{}, engine.NewTemplateComposer(""), 2, 0)
	require.NoError(t, err)
	return eng, store
}

func TestTriggerManual_RunsCycle(t *testing.T) {
	eng, store := newTestEngine(t)

	pool := worker.NewPool(1, 1)
	pool.Start()
	defer pool.Stop()

	sched := scheduler.New(eng, pool, time.Hour)
	defer sched.Stop()

	require.NoError(t, sched.TriggerManual(context.Background()))

	// The cycle runs in the background; completion shows up in the checkpoint.
	assert.Eventually(t, func() bool {
		cp, err := store.Load()
		return err == nil && cp.LastRunAt != nil
	}, 2*time.Second, 10*time.Millisecond)
}

func TestTriggerManual_BusyWhileCycleReserved(t *testing.T) {
	eng, _ := newTestEngine(t)

	pool := worker.NewPool(1, 1)
	pool.Start()
	defer pool.Stop()

	sched := scheduler.New(eng, pool, time.Hour)
	defer sched.Stop()

	require.True(t, eng.TryReserve())
	defer eng.Release()

	err := sched.TriggerManual(context.Background())
	assert.ErrorIs(t, err, domain.ErrRunnerBusy)
}

func TestTriggerManual_QueueFullReleasesReservation(t *testing.T) {
	eng, _ := newTestEngine(t)

	// Unstarted pool with a full queue: the enqueue must fail and the
	// single-flight reservation must be handed back.
	pool := worker.NewPool(1, 1)
	require.True(t, pool.TryEnqueue(worker.JobFunc(func(_ context.Context) error { return nil })))

	sched := scheduler.New(eng, pool, time.Hour)

	err := sched.TriggerManual(context.Background())
	assert.ErrorIs(t, err, domain.ErrRunnerBusy)
	assert.False(t, eng.Running(), "reservation released after failed enqueue")
}

func TestScheduler_TicksRunCycles(t *testing.T) {
	eng, store := newTestEngine(t)

	pool := worker.NewPool(1, 1)
	pool.Start()
	defer pool.Stop()

	sched := scheduler.New(eng, pool, 20*time.Millisecond)
	sched.Start()
	defer sched.Stop()

	assert.Eventually(t, func() bool {
		cp, err := store.Load()
		return err == nil && cp.LastRunAt != nil
	}, 2*time.Second, 10*time.Millisecond)
}
