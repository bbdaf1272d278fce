package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helpdesk-kit/helpdesk/internal/domain"
	"github.com/helpdesk-kit/helpdesk/internal/events"
	"github.com/helpdesk-kit/helpdesk/internal/repository"
	apperrors "github.com/helpdesk-kit/helpdesk/pkg/util/errorutil"
)

func TestCreateTicket_SLADeadlinePerPriority(t *testing.T) {
	cases := []struct {
		priority domain.TicketPriority
		window   time.Duration
	}{
		{domain.TicketPriorityLow, 72 * time.Hour},
		{domain.TicketPriorityMedium, 48 * time.Hour},
		{domain.TicketPriorityHigh, 24 * time.Hour},
		{domain.TicketPriorityUrgent, 8 * time.Hour},
		{"", 48 * time.Hour},
	}
	for _, tc := range cases {
		t.Run(string(tc.priority), func(t *testing.T) {
			f := newFixture(t)
			ticket := f.createTicket(t, tc.priority)

			require.NotNil(t, ticket.SLADue)
			assert.Equal(t, t0.Add(tc.window), *ticket.SLADue)
			assert.Equal(t, domain.TicketStatusNew, ticket.Status)
			assert.NotEmpty(t, ticket.ID)
		})
	}
}

func TestCreateTicket_PublishesEvent(t *testing.T) {
	f := newFixture(t)
	ticket := f.createTicket(t, domain.TicketPriorityHigh)

	created := f.recorded.ofType(events.EventTicketCreated)
	require.Len(t, created, 1)
	assert.Equal(t, ticket.ID, created[0].TicketID)
}

func TestCreateTicket_ValidationLeavesNoWrites(t *testing.T) {
	f := newFixture(t)
	svc := f.ticketService()

	_, err := svc.CreateTicket(context.Background(), TicketCreateInput{Title: "   ", Description: "x"})
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
	assert.Contains(t, domainErr.Details, "title")

	_, err = svc.CreateTicket(context.Background(), TicketCreateInput{Title: "ok", Description: "x", Priority: "critical"})
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)

	_, err = svc.CreateTicket(context.Background(), TicketCreateInput{Title: "ok", Description: "x", RequesterEmail: strPtr("nope")})
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)

	count, err := f.store.Tickets().Count(context.Background(), repository.TicketFilter{})
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, f.recorded.ofType(events.EventTicketCreated))
}

func TestUpdateTicket_KeepsDeadlineAndFillsLegacy(t *testing.T) {
	f := newFixture(t)
	svc := f.ticketService()
	ticket := f.createTicket(t, domain.TicketPriorityUrgent)
	due := *ticket.SLADue

	f.clock.Set(t0.Add(2 * time.Hour))
	updated, err := svc.UpdateTicket(context.Background(), ticket.ID, nil, TicketUpdateInput{
		Priority: priorityPtr(domain.TicketPriorityLow),
	})
	require.NoError(t, err)
	assert.Equal(t, due, *updated.SLADue)

	legacy := f.insertTicket(t, domain.TicketStatusNew, nil)
	updated, err = svc.UpdateTicket(context.Background(), legacy.ID, nil, TicketUpdateInput{})
	require.NoError(t, err)
	require.NotNil(t, updated.SLADue)
	assert.Equal(t, t0.Add(2*time.Hour+48*time.Hour), *updated.SLADue)
}

func TestUpdateTicket_StatusChangeEvent(t *testing.T) {
	f := newFixture(t)
	svc := f.ticketService()
	ticket := f.createTicket(t, domain.TicketPriorityMedium)
	agent := &domain.User{Username: "agent", Email: "agent@example.com", IsStaff: true}
	require.NoError(t, f.store.Users().Create(context.Background(), agent))

	updated, err := svc.UpdateTicket(context.Background(), ticket.ID, agent, TicketUpdateInput{
		Status:     statusPtr(domain.TicketStatusInProgress),
		AssignedTo: &agent.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, updated.Status)
	require.NotNil(t, updated.AssignedTo)
	assert.Equal(t, agent.ID, *updated.AssignedTo)

	changed := f.recorded.ofType(events.EventTicketStatusChanged)
	require.Len(t, changed, 1)
	require.NotNil(t, changed[0].ActorID)
	assert.Equal(t, agent.ID, *changed[0].ActorID)

	_, err = svc.UpdateTicket(context.Background(), ticket.ID, agent, TicketUpdateInput{Unassign: true})
	require.NoError(t, err)
	assert.Len(t, f.recorded.ofType(events.EventTicketStatusChanged), 1)

	stored, err := f.store.Tickets().GetByID(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.AssignedTo)
}

func TestUpdateTicket_Errors(t *testing.T) {
	f := newFixture(t)
	svc := f.ticketService()

	_, err := svc.UpdateTicket(context.Background(), "2b1c6f0e-8d7e-4f5a-9a1b-000000000000", nil, TicketUpdateInput{})
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)

	ticket := f.createTicket(t, domain.TicketPriorityMedium)
	_, err = svc.UpdateTicket(context.Background(), ticket.ID, nil, TicketUpdateInput{Status: statusPtr("closed")})
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestComments_OrderAndVisibility(t *testing.T) {
	f := newFixture(t)
	svc := f.ticketService()
	ctx := context.Background()
	ticket := f.createTicket(t, domain.TicketPriorityMedium)
	staff := &domain.User{Username: "lead", Email: "lead@example.com", IsStaff: true}
	require.NoError(t, f.store.Users().Create(ctx, staff))

	_, err := svc.AddComment(ctx, ticket.ID, nil, CommentInput{Body: "still broken"})
	require.NoError(t, err)
	f.clock.Set(t0.Add(time.Minute))
	_, err = svc.AddComment(ctx, ticket.ID, staff, CommentInput{Body: "checking logs", IsInternal: true})
	require.NoError(t, err)
	f.clock.Set(t0.Add(2 * time.Minute))
	reply, err := svc.AddComment(ctx, ticket.ID, staff, CommentInput{Body: "fixed"})
	require.NoError(t, err)
	require.NotNil(t, reply.AuthorID)

	_, all, err := svc.GetTicket(ctx, ticket.ID, true)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"still broken", "checking logs", "fixed"}, []string{all[0].Body, all[1].Body, all[2].Body})
	assert.Nil(t, all[0].AuthorID)

	_, public, err := svc.GetTicket(ctx, ticket.ID, false)
	require.NoError(t, err)
	assert.Len(t, public, 2)

	assert.Len(t, f.recorded.ofType(events.EventCommentAdded), 3)
}

func TestAddComment_Rejections(t *testing.T) {
	f := newFixture(t)
	svc := f.ticketService()
	ctx := context.Background()
	ticket := f.createTicket(t, domain.TicketPriorityMedium)

	_, err := svc.AddComment(ctx, ticket.ID, nil, CommentInput{Body: "  "})
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)

	_, err = svc.AddComment(ctx, ticket.ID, &domain.User{ID: "u"}, CommentInput{Body: "secret", IsInternal: true})
	assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)

	_, err = svc.AddComment(ctx, "missing", nil, CommentInput{Body: "hi"})
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)

	_, comments, err := svc.GetTicket(ctx, ticket.ID, true)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestListTickets_FiltersAndPaging(t *testing.T) {
	f := newFixture(t)
	svc := f.ticketService()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		f.clock.Set(t0.Add(time.Duration(i) * time.Minute))
		f.createTicket(t, domain.TicketPriorityHigh)
	}
	f.clock.Set(t0.Add(time.Hour))
	_, err := svc.CreateTicket(ctx, TicketCreateInput{Title: "VPN drops", Description: "every hour", Priority: domain.TicketPriorityLow})
	require.NoError(t, err)

	page, total, err := svc.ListTickets(ctx, TicketListFilter{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	require.Len(t, page, 2)
	assert.Equal(t, "VPN drops", page[0].Title)

	found, total, err := svc.ListTickets(ctx, TicketListFilter{Search: "vpn"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, found, 1)

	high, total, err := svc.ListTickets(ctx, TicketListFilter{Priorities: []domain.TicketPriority{domain.TicketPriorityHigh}})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, high, 3)
}

func statusPtr(s domain.TicketStatus) *domain.TicketStatus { return &s }

func priorityPtr(p domain.TicketPriority) *domain.TicketPriority { return &p }
