package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/osse101/MentionBot_Go/internal/checkpoint"
	"github.com/osse101/MentionBot_Go/internal/domain"
	"github.com/osse101/MentionBot_Go/internal/logger"
	"github.com/osse101/MentionBot_Go/internal/metrics"
	"github.com/osse101/MentionBot_Go/internal/platform"
)

// PlatformAPI is the slice of the rate-limited client the engine consumes.
type PlatformAPI interface {
	Self(ctx context.Context) (platform.Account, error)
	MentionsSince(ctx context.Context, sinceID, pageToken string) (platform.MentionsPage, error)
	PostReply(ctx context.Context, text, parentID string) (string, error)
}

// Trigger identifies how a cycle was started.
type Trigger string

const (
	TriggerScheduled Trigger = "scheduled"
	TriggerManual    Trigger = "manual"
)

// Report summarizes one cycle for callers and the status surface.
type Report struct {
	Outcome         string        `json:"outcome"`
	Handled         int           `json:"handled"`
	Wait            time.Duration `json:"wait,omitempty"`
	LastProcessedID string        `json:"last_processed_id,omitempty"`
}

// Status is the engine's view for the control surface.
type Status struct {
	LastProcessedID string     `json:"last_processed_id"`
	BackoffDeadline *time.Time `json:"backoff_deadline,omitempty"`
	LastRunAt       *time.Time `json:"last_run_at,omitempty"`
	Running         bool       `json:"running"`
	AuthTerminal    bool       `json:"auth_terminal"`
}

// Engine owns the poll/reply loop. One cycle: gate on backoff and cooldown,
// fetch mentions past the checkpoint, reply to a bounded batch oldest-first,
// and advance the checkpoint only past items whose outcome is confirmed.
type Engine struct {
	store    *checkpoint.Store
	client   PlatformAPI
	composer ReplyComposer

	batchSize      int
	manualCooldown time.Duration

	// Single-flight guard: at most one cycle per process, scheduled or manual.
	running atomic.Bool

	// Set when a refresh token is rejected. Automatic scheduling must stop
	// rather than keep retrying against a dead refresh token.
	authTerminal atomic.Bool

	// Ids recently confirmed processed. Catches provider pages that overlap
	// the cursor across cycles.
	recent *lru.Cache[string, struct{}]

	now func() time.Time
}

// New creates an Engine. batchSize <= 0 falls back to DefaultBatchSize.
func New(store *checkpoint.Store, client PlatformAPI, composer ReplyComposer, batchSize int, manualCooldown time.Duration) (*Engine, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	recent, err := lru.New[string, struct{}](RecentReplyCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create reply cache: %w", err)
	}
	return &Engine{
		store:          store,
		client:         client,
		composer:       composer,
		batchSize:      batchSize,
		manualCooldown: manualCooldown,
		recent:         recent,
		now:            time.Now,
	}, nil
}

// TryReserve claims the single-flight slot without blocking.
// Callers that get true must follow with RunReserved.
func (e *Engine) TryReserve() bool {
	return e.running.CompareAndSwap(false, true)
}

// Release frees a reservation that will not be run (enqueue failed).
func (e *Engine) Release() {
	e.running.Store(false)
}

// Run executes one cycle under the single-flight guard, returning
// ErrRunnerBusy immediately if another cycle is in flight.
func (e *Engine) Run(ctx context.Context, trigger Trigger) (Report, error) {
	if !e.TryReserve() {
		return Report{}, domain.ErrRunnerBusy
	}
	return e.RunReserved(ctx, trigger)
}

// RunReserved executes one cycle for a caller that already holds the
// reservation, releasing it on exit.
func (e *Engine) RunReserved(ctx context.Context, trigger Trigger) (Report, error) {
	defer e.running.Store(false)
	return e.cycle(ctx, trigger)
}

// Running reports whether a cycle is currently in flight.
func (e *Engine) Running() bool {
	return e.running.Load()
}

// AuthTerminal reports whether automated scheduling is suspended pending
// human re-authorization.
func (e *Engine) AuthTerminal() bool {
	return e.authTerminal.Load()
}

// ClearAuthTerminal re-enables automatic scheduling after re-authorization.
func (e *Engine) ClearAuthTerminal() {
	e.authTerminal.Store(false)
}

// Status reads the persisted checkpoint plus in-memory flags.
func (e *Engine) Status() (Status, error) {
	cp, err := e.store.Load()
	if err != nil {
		return Status{}, err
	}
	return Status{
		LastProcessedID: cp.LastProcessedID,
		BackoffDeadline: cp.BackoffDeadline,
		LastRunAt:       cp.LastRunAt,
		Running:         e.Running(),
		AuthTerminal:    e.AuthTerminal(),
	}, nil
}

func (e *Engine) cycle(ctx context.Context, trigger Trigger) (Report, error) {
	log := logger.FromContext(ctx).With("trigger", string(trigger))
	now := e.now()

	cp, err := e.store.Load()
	if err != nil {
		metrics.CyclesTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return Report{}, err
	}

	if active, remaining := cp.InBackoff(now); active {
		log.Info(LogMsgBackoffActive, "remaining", remaining)
		metrics.CyclesTotal.WithLabelValues(metrics.OutcomeBackoff).Inc()
		return Report{Outcome: metrics.OutcomeBackoff, Wait: remaining, LastProcessedID: cp.LastProcessedID}, nil
	}

	// Cooldown only gates manual triggers. A human mashing a "run now"
	// control must not amplify rate-limit pressure.
	if trigger == TriggerManual && cp.LastRunAt != nil {
		if elapsed := now.Sub(*cp.LastRunAt); elapsed < e.manualCooldown {
			remaining := e.manualCooldown - elapsed
			log.Info(LogMsgCooldownActive, "remaining", remaining)
			metrics.CyclesTotal.WithLabelValues(metrics.OutcomeCooldown).Inc()
			return Report{Outcome: metrics.OutcomeCooldown, Wait: remaining, LastProcessedID: cp.LastProcessedID}, nil
		}
	}

	log.Info(LogMsgCycleStart, "last_processed_id", cp.LastProcessedID)

	if cp.SelfID == "" {
		account, err := e.client.Self(ctx)
		if err != nil {
			return e.abort(log, cp, err)
		}
		cp.SelfID = account.ID
	}

	mentions, err := e.fetchAll(ctx, cp.LastProcessedID)
	if err != nil {
		return e.abort(log, cp, err)
	}

	// Oldest first: replies go out in emission order and the cursor only
	// ever advances past items seen in order.
	sort.Slice(mentions, func(i, j int) bool {
		return domain.CompareMentionIDs(mentions[i].ID, mentions[j].ID) < 0
	})

	batch := e.selectBatch(mentions, cp.LastProcessedID)

	handled := 0
	cursorHeld := false
	var rateLimit *domain.RateLimitedError

	for _, mention := range batch {
		itemLog := log.With("mention_id", mention.ID)

		if mention.AuthorID == cp.SelfID {
			// Confirmed skippable. Advance without replying to prevent
			// self-reply loops.
			itemLog.Info(LogMsgSelfSkip)
			if !cursorHeld {
				cp.LastProcessedID = mention.ID
			}
			handled++
			continue
		}

		if e.recent.Contains(mention.ID) {
			itemLog.Info(LogMsgDuplicateSkip)
			if !cursorHeld {
				cp.LastProcessedID = mention.ID
			}
			continue
		}

		_, err := e.client.PostReply(ctx, e.composer.Compose(mention), mention.ID)
		if err != nil {
			var rl domain.RateLimitedError
			if errors.As(err, &rl) {
				// Do not advance past this item: it must be retried next
				// cycle once the backoff window closes.
				itemLog.Warn(LogMsgRateLimitAbort, "resume_at", rl.ResumeAt)
				rateLimit = &rl
				break
			}
			if errors.Is(err, domain.ErrAuthenticationExpired) || errors.Is(err, domain.ErrRefreshFailed) {
				return e.abort(log, cp, err)
			}
			// A single bad item must not block unrelated items, but the
			// cursor stops here so it is retried next cycle. Items handled
			// after it land in the recent cache, which suppresses duplicate
			// replies when the retry cycle re-walks them.
			itemLog.Error(LogMsgReplyFailed, "error", err)
			metrics.ReplyFailures.Inc()
			cursorHeld = true
			continue
		}

		itemLog.Info(LogMsgReplyPosted)
		metrics.RepliesPosted.Inc()
		e.recent.Add(mention.ID, struct{}{})
		if !cursorHeld {
			cp.LastProcessedID = mention.ID
		}
		handled++
	}

	outcome := metrics.OutcomeCompleted
	report := Report{Handled: handled}
	if rateLimit != nil {
		outcome = metrics.OutcomeRateLimited
		deadline := rateLimit.ResumeAt
		cp.BackoffDeadline = &deadline
		report.Wait = deadline.Sub(now)
	} else {
		cp.BackoffDeadline = nil
	}

	// Persist unconditionally, even for zero handled: "no new items" cycles
	// still record liveness.
	runAt := e.now()
	cp.LastRunAt = &runAt
	if err := e.store.Save(cp); err != nil {
		metrics.CyclesTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return Report{}, err
	}

	report.Outcome = outcome
	report.LastProcessedID = cp.LastProcessedID
	metrics.CyclesTotal.WithLabelValues(outcome).Inc()
	metrics.MentionsHandled.Add(float64(handled))
	log.Info(LogMsgCycleDone, "outcome", outcome, "handled", handled, "last_processed_id", cp.LastProcessedID)
	return report, nil
}

// fetchAll follows pagination up to MaxFetchPages, collecting mentions newer
// than sinceID.
func (e *Engine) fetchAll(ctx context.Context, sinceID string) ([]domain.Mention, error) {
	var all []domain.Mention
	pageToken := ""
	for page := 0; page < MaxFetchPages; page++ {
		result, err := e.client.MentionsSince(ctx, sinceID, pageToken)
		if err != nil {
			return nil, err
		}
		all = append(all, result.Items...)
		if result.NextToken == "" {
			break
		}
		pageToken = result.NextToken
	}
	return all, nil
}

// selectBatch drops anything at or below the cursor, then takes the bounded
// oldest prefix.
func (e *Engine) selectBatch(mentions []domain.Mention, lastProcessedID string) []domain.Mention {
	fresh := mentions[:0:0]
	for _, m := range mentions {
		if lastProcessedID != "" && domain.CompareMentionIDs(m.ID, lastProcessedID) <= 0 {
			continue
		}
		fresh = append(fresh, m)
	}
	if len(fresh) > e.batchSize {
		fresh = fresh[:e.batchSize]
	}
	return fresh
}

// abort handles the AbortedByRateLimit and AbortedByError exits: persist what
// is safe to persist, never advance the cursor past unknown outcomes.
func (e *Engine) abort(log *slog.Logger, cp checkpoint.Checkpoint, err error) (Report, error) {
	now := e.now()

	var rl domain.RateLimitedError
	if errors.As(err, &rl) {
		deadline := rl.ResumeAt
		cp.BackoffDeadline = &deadline
		cp.LastRunAt = &now
		if saveErr := e.store.Save(cp); saveErr != nil {
			log.Error(LogMsgFetchFailed, "error", saveErr)
		}
		log.Warn(LogMsgRateLimitAbort, "resume_at", rl.ResumeAt)
		metrics.CyclesTotal.WithLabelValues(metrics.OutcomeRateLimited).Inc()
		return Report{Outcome: metrics.OutcomeRateLimited, Wait: deadline.Sub(now), LastProcessedID: cp.LastProcessedID}, nil
	}

	if errors.Is(err, domain.ErrAuthenticationExpired) || errors.Is(err, domain.ErrRefreshFailed) {
		e.authTerminal.Store(true)
		log.Error(LogMsgAuthTerminal, "error", err)
	} else {
		log.Error(LogMsgFetchFailed, "error", err)
	}

	cp.LastRunAt = &now
	if saveErr := e.store.Save(cp); saveErr != nil {
		log.Error(LogMsgFetchFailed, "error", saveErr)
	}
	metrics.CyclesTotal.WithLabelValues(metrics.OutcomeError).Inc()
	return Report{Outcome: metrics.OutcomeError, LastProcessedID: cp.LastProcessedID}, err
}
