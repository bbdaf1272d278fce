package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helpdesk-kit/helpdesk/internal/domain"
)

func TestDashboard_EmptyStore(t *testing.T) {
	f := newFixture(t)
	stats, err := NewDashboardService(f.store.Tickets()).Compute(context.Background(), t0)
	require.NoError(t, err)

	assert.Zero(t, stats.Total)
	assert.Empty(t, stats.ByStatus)
	assert.Empty(t, stats.ByPriority)
	assert.Nil(t, stats.SLARate)
}

func TestDashboard_Aggregates(t *testing.T) {
	f := newFixture(t)
	now := t0.Add(24 * time.Hour)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	f.insertTicket(t, domain.TicketStatusNew, &past)          // breached
	f.insertTicket(t, domain.TicketStatusInProgress, &future) // ok
	f.insertTicket(t, domain.TicketStatusWaiting, &future)    // ok
	f.insertTicket(t, domain.TicketStatusResolved, &past)     // closed, ok
	f.insertTicket(t, domain.TicketStatusEscalated, &past)    // closed, ok
	f.insertTicket(t, domain.TicketStatusNew, nil)            // legacy, untracked

	stats, err := NewDashboardService(f.store.Tickets()).Compute(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, 6, stats.Total)
	assert.Equal(t, 4, stats.OpenCount)
	assert.Equal(t, 1, stats.ResolvedCount)
	assert.Equal(t, 1, stats.EscalatedCount)
	assert.Equal(t, 5, stats.WithSLACount)
	assert.Equal(t, 1, stats.BreachedCount)
	assert.Equal(t, 4, stats.SLAOKCount)
	require.NotNil(t, stats.SLARate)
	assert.Equal(t, 80.0, *stats.SLARate)

	assert.Equal(t, []domain.CountRow{
		{Key: "escalated", Label: "Escalated", Count: 1},
		{Key: "in_progress", Label: "In Progress", Count: 1},
		{Key: "new", Label: "New", Count: 2},
		{Key: "resolved", Label: "Resolved", Count: 1},
		{Key: "waiting", Label: "Waiting on User", Count: 1},
	}, stats.ByStatus)
	assert.Equal(t, []domain.CountRow{{Key: "medium", Label: "Medium", Count: 6}}, stats.ByPriority)
}

func TestSLARate_Rounding(t *testing.T) {
	assert.Nil(t, slaRate(0, 0))
	assert.Equal(t, 66.7, *slaRate(2, 3))
	assert.Equal(t, 33.3, *slaRate(1, 3))
	assert.Equal(t, 0.0, *slaRate(0, 7))
	assert.Equal(t, 100.0, *slaRate(7, 7))
	assert.Equal(t, 14.3, *slaRate(1, 7))

	// exact binary halves go to the even digit
	assert.Equal(t, 6.2, *slaRate(1, 16))
	assert.Equal(t, 18.8, *slaRate(3, 16))
	assert.Equal(t, 1.2, *slaRate(1, 80))
	assert.Equal(t, 56.2, *slaRate(9, 16))
}
