package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helpdesk-kit/helpdesk/internal/domain"
	"github.com/helpdesk-kit/helpdesk/internal/events"
	"github.com/helpdesk-kit/helpdesk/internal/observability"
	"github.com/helpdesk-kit/helpdesk/internal/repository"
)

type fakeLocker struct {
	held     bool
	err      error
	released int
}

func (l *fakeLocker) AcquireLock(context.Context, string, time.Duration) (func(context.Context) error, bool, error) {
	if l.err != nil {
		return nil, false, l.err
	}
	if l.held {
		return nil, false, nil
	}
	l.held = true
	return func(context.Context) error {
		l.held = false
		l.released++
		return nil
	}, true, nil
}

// flakyTickets fails UpdateWithComment for selected ids.
type flakyTickets struct {
	repository.TicketRepository
	failFor map[string]bool
	listErr error
}

func (r *flakyTickets) UpdateWithComment(ctx context.Context, ticket *domain.Ticket, comment *domain.Comment) error {
	if r.failFor[ticket.ID] {
		return errors.New("connection reset")
	}
	return r.TicketRepository.UpdateWithComment(ctx, ticket, comment)
}

func (r *flakyTickets) List(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.TicketRepository.List(ctx, filter)
}

func (f *fixture) escalationJob(tickets repository.TicketRepository, locker Locker, metrics *observability.Metrics) *EscalationJob {
	return NewEscalationJob(EscalationDependencies{
		TicketRepo: tickets,
		Dispatcher: f.dispatcher,
		Locker:     locker,
		Metrics:    metrics,
	})
}

func TestEscalation_UrgentTicketScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.createTicket(t, domain.TicketPriorityUrgent)
	require.Equal(t, t0.Add(8*time.Hour), *ticket.SLADue)

	job := f.escalationJob(f.store.Tickets(), nil, nil)

	f.clock.Set(t0.Add(9 * time.Hour))
	result, err := job.Run(ctx, t0.Add(9*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []string{ticket.ID}, result.Escalated)
	assert.Empty(t, result.Failures)

	stored, err := f.store.Tickets().GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusEscalated, stored.Status)
	assert.Equal(t, t0.Add(9*time.Hour), stored.UpdatedAt)

	comments, err := f.store.Comments().ListByTicket(ctx, ticket.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.True(t, comments[0].IsInternal)
	assert.Nil(t, comments[0].AuthorID)
	assert.Equal(t, "Ticket auto-escalated due to SLA breach at 2026-04-06 18:00", comments[0].Body)

	result, err = job.Run(ctx, t0.Add(10*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, result.Count())

	comments, err = f.store.Comments().ListByTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Len(t, comments, 1)
	assert.Len(t, f.recorded.ofType(events.EventTicketEscalated), 1)
}

func TestEscalation_SelectsOnlyOpenOverdue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := t0.Add(100 * time.Hour)
	past := t0
	future := now.Add(time.Hour)

	overdueNew := f.insertTicket(t, domain.TicketStatusNew, &past)
	overdueWaiting := f.insertTicket(t, domain.TicketStatusWaiting, &past)
	f.insertTicket(t, domain.TicketStatusResolved, &past)
	f.insertTicket(t, domain.TicketStatusEscalated, &past)
	f.insertTicket(t, domain.TicketStatusInProgress, &future)
	f.insertTicket(t, domain.TicketStatusNew, nil)
	exactlyDue := f.insertTicket(t, domain.TicketStatusNew, timePtr(now))

	result, err := f.escalationJob(f.store.Tickets(), nil, nil).Run(ctx, now)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{overdueNew.ID, overdueWaiting.ID}, result.Escalated)

	stored, err := f.store.Tickets().GetByID(ctx, exactlyDue.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusNew, stored.Status)
}

func TestEscalation_ContinuesPastFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	past := t0
	bad := f.insertTicket(t, domain.TicketStatusNew, &past)
	good := f.insertTicket(t, domain.TicketStatusInProgress, &past)

	repo := &flakyTickets{TicketRepository: f.store.Tickets(), failFor: map[string]bool{bad.ID: true}}
	metrics := observability.NewMetrics()
	result, err := f.escalationJob(repo, nil, metrics).Run(ctx, t0.Add(time.Hour))
	require.NoError(t, err)

	assert.Equal(t, []string{good.ID}, result.Escalated)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, bad.ID, result.Failures[0].TicketID)

	stored, err := f.store.Tickets().GetByID(ctx, bad.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusNew, stored.Status)
	comments, err := f.store.Comments().ListByTicket(ctx, bad.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)

	snap := metrics.Snapshot()
	assert.Equal(t, int64(1), snap.Escalations)
	assert.Equal(t, int64(1), snap.EscalationFailures)
}

func TestEscalation_QueryFailureIsFatal(t *testing.T) {
	f := newFixture(t)
	repo := &flakyTickets{TicketRepository: f.store.Tickets(), listErr: errors.New("db down")}
	_, err := f.escalationJob(repo, nil, nil).Run(context.Background(), t0)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "db down"))
}

func TestEscalation_Locking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	past := t0
	ticket := f.insertTicket(t, domain.TicketStatusNew, &past)

	t.Run("held lock skips the sweep", func(t *testing.T) {
		locker := &fakeLocker{held: true}
		result, err := f.escalationJob(f.store.Tickets(), locker, nil).Run(ctx, t0.Add(time.Hour))
		require.NoError(t, err)
		assert.True(t, result.Skipped)
		assert.Zero(t, result.Count())
	})

	t.Run("unreachable lock backend sweeps unlocked", func(t *testing.T) {
		locker := &fakeLocker{err: errors.New("dial tcp: refused")}
		result, err := f.escalationJob(f.store.Tickets(), locker, nil).Run(ctx, t0.Add(time.Hour))
		require.NoError(t, err)
		assert.False(t, result.Skipped)
		assert.Equal(t, []string{ticket.ID}, result.Escalated)
	})

	t.Run("acquired lock is released", func(t *testing.T) {
		locker := &fakeLocker{}
		_, err := f.escalationJob(f.store.Tickets(), locker, nil).Run(ctx, t0.Add(time.Hour))
		require.NoError(t, err)
		assert.False(t, locker.held)
		assert.Equal(t, 1, locker.released)
	})
}
