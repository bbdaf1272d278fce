package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/helpdesk-kit/helpdesk/internal/domain"
	"github.com/helpdesk-kit/helpdesk/internal/events"
	"github.com/helpdesk-kit/helpdesk/internal/observability"
	"github.com/helpdesk-kit/helpdesk/internal/repository"
)

// Locker guards a sweep across processes. release is only meaningful when
// acquired is true.
type Locker interface {
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, acquired bool, err error)
}

// EscalationFailure records a ticket the sweep could not escalate.
type EscalationFailure struct {
	TicketID string
	Err      error
}

// EscalationResult summarises one sweep.
type EscalationResult struct {
	Escalated []string
	Failures  []EscalationFailure
	// Skipped is set when another process held the sweep lock.
	Skipped bool
}

// Count returns the number of tickets escalated.
func (r EscalationResult) Count() int {
	return len(r.Escalated)
}

// EscalationJob moves open tickets past their SLA deadline to escalated.
type EscalationJob struct {
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
	locker     Locker
	lockKey    string
	lockTTL    time.Duration
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// EscalationDependencies bundles collaborators for the job. Locker may be nil.
type EscalationDependencies struct {
	TicketRepo repository.TicketRepository
	Dispatcher events.Dispatcher
	Locker     Locker
	LockKey    string
	LockTTL    time.Duration
	Logger     *zap.Logger
	Metrics    *observability.Metrics
}

// NewEscalationJob constructs the job.
func NewEscalationJob(deps EscalationDependencies) *EscalationJob {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	lockKey := deps.LockKey
	if lockKey == "" {
		lockKey = "helpdesk:sla-sweep"
	}
	lockTTL := deps.LockTTL
	if lockTTL <= 0 {
		lockTTL = 5 * time.Minute
	}
	return &EscalationJob{
		tickets:    deps.TicketRepo,
		dispatcher: deps.Dispatcher,
		locker:     deps.Locker,
		lockKey:    lockKey,
		lockTTL:    lockTTL,
		logger:     logger,
		metrics:    deps.Metrics,
	}
}

// Run escalates every ticket in an open status whose sla_due is before now.
// Each ticket's status change and audit comment commit together; a failing
// ticket is recorded and the sweep moves on. Only a failure to select
// candidates is returned as an error.
func (j *EscalationJob) Run(ctx context.Context, now time.Time) (EscalationResult, error) {
	var result EscalationResult

	release, ok := j.lock(ctx)
	if !ok {
		result.Skipped = true
		j.logger.Info("sla sweep skipped; lock held elsewhere")
		return result, nil
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			j.logger.Warn("release sla sweep lock", zap.Error(err))
		}
	}()

	due, err := j.tickets.List(ctx, repository.TicketFilter{
		Statuses:     domain.OpenStatuses(),
		SLADueBefore: &now,
	})
	if err != nil {
		return result, fmt.Errorf("select overdue tickets: %w", err)
	}

	for i := range due {
		if err := ctx.Err(); err != nil {
			j.metrics.RecordSweep(result.Count(), len(result.Failures))
			return result, err
		}
		ticket := &due[i]
		if err := j.escalate(ctx, ticket, now); err != nil {
			j.logger.Error("escalate ticket",
				zap.String("ticket_id", ticket.ID),
				zap.Error(err))
			result.Failures = append(result.Failures, EscalationFailure{TicketID: ticket.ID, Err: err})
			continue
		}
		result.Escalated = append(result.Escalated, ticket.ID)
	}

	j.metrics.RecordSweep(result.Count(), len(result.Failures))
	j.logger.Info("sla sweep finished",
		zap.Int("escalated", result.Count()),
		zap.Int("failed", len(result.Failures)))
	return result, nil
}

func (j *EscalationJob) escalate(ctx context.Context, ticket *domain.Ticket, now time.Time) error {
	oldStatus := ticket.Status
	ticket.Status = domain.TicketStatusEscalated
	comment := domain.NewEscalationComment(ticket.ID, now)

	if err := j.tickets.UpdateWithComment(ctx, ticket, comment); err != nil {
		return err
	}

	if j.dispatcher != nil {
		event := events.NewEvent(events.EventTicketEscalated, ticket.ID, nil, now,
			events.TicketEscalatedPayload{
				OldStatus: oldStatus,
				SLADue:    ticket.SLADue,
				CommentID: comment.ID,
			})
		if err := j.dispatcher.Publish(ctx, event); err != nil {
			j.logger.Warn("publish event failed",
				zap.String("event", string(event.Type)),
				zap.String("ticket_id", ticket.ID),
				zap.Error(err))
		}
	}
	return nil
}

// lock returns false only when another holder owns the lock. An unreachable
// lock backend degrades to an unlocked sweep.
func (j *EscalationJob) lock(ctx context.Context) (func(context.Context) error, bool) {
	noop := func(context.Context) error { return nil }
	if j.locker == nil {
		return noop, true
	}
	release, acquired, err := j.locker.AcquireLock(ctx, j.lockKey, j.lockTTL)
	if err != nil {
		j.logger.Warn("sla sweep lock unavailable; continuing unlocked", zap.Error(err))
		return noop, true
	}
	if !acquired {
		return noop, false
	}
	return release, true
}
