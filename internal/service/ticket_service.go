package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/helpdesk-kit/helpdesk/internal/domain"
	"github.com/helpdesk-kit/helpdesk/internal/events"
	"github.com/helpdesk-kit/helpdesk/internal/repository"
	apperrors "github.com/helpdesk-kit/helpdesk/pkg/util/errorutil"
	"github.com/helpdesk-kit/helpdesk/pkg/util/validation"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	comments   repository.CommentRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	CommentRepo repository.CommentRepository
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
	Clock       func() time.Time
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title          string                `json:"title" validate:"required,max=200"`
	Description    string                `json:"description" validate:"required"`
	Priority       domain.TicketPriority `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	RequesterEmail *string               `json:"requester_email" validate:"omitempty,email,max=254"`
}

// TicketUpdateInput carries the agent-editable fields. Nil means unchanged.
type TicketUpdateInput struct {
	Status     *domain.TicketStatus   `json:"status" validate:"omitempty,oneof=new in_progress waiting resolved escalated"`
	Priority   *domain.TicketPriority `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	AssignedTo *string                `json:"assigned_to" validate:"omitempty,uuid"`
	// Unassign clears AssignedTo and wins over it.
	Unassign bool `json:"unassign"`
}

// TicketListFilter describes listing filters.
type TicketListFilter struct {
	Statuses   []domain.TicketStatus
	Priorities []domain.TicketPriority
	Search     string
	Limit      int
	Offset     int
}

// CommentInput describes a new comment.
type CommentInput struct {
	Body       string `json:"body" validate:"required"`
	IsInternal bool   `json:"is_internal"`
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		comments:   deps.CommentRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        clockOrDefault(deps.Clock),
	}
}

// CreateTicket validates and stores a new ticket with its SLA deadline.
func (s *TicketService) CreateTicket(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.RequesterEmail = trimOptional(input.RequesterEmail)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	ticket := &domain.Ticket{
		Title:          input.Title,
		Description:    input.Description,
		Priority:       input.Priority,
		RequesterEmail: input.RequesterEmail,
	}
	ticket.ApplyDefaults()
	now := s.now()
	ticket.ApplySLADefault(now)

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}
	s.logger.Info("ticket created",
		zap.String("ticket_id", ticket.ID),
		zap.String("priority", string(ticket.Priority)))
	s.publishEvent(ctx, events.NewEvent(events.EventTicketCreated, ticket.ID, nil, now,
		events.TicketCreatedPayload{
			Priority: ticket.Priority,
			Title:    ticket.Title,
			SLADue:   ticket.SLADue,
		}))
	return ticket, nil
}

// ListTickets returns a page of tickets newest first plus the total match count.
func (s *TicketService) ListTickets(ctx context.Context, filter TicketListFilter) ([]domain.Ticket, int, error) {
	repoFilter := repository.TicketFilter{
		Statuses:   filter.Statuses,
		Priorities: filter.Priorities,
		Limit:      clampPageSize(filter.Limit),
		Offset:     filter.Offset,
	}
	if term := strings.TrimSpace(filter.Search); term != "" {
		repoFilter.SearchTerm = &term
	}
	if repoFilter.Offset < 0 {
		repoFilter.Offset = 0
	}

	tickets, err := s.tickets.List(ctx, repoFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.tickets.Count(ctx, repoFilter)
	if err != nil {
		return nil, 0, err
	}
	return tickets, total, nil
}

// GetTicket loads a ticket and its thread, oldest comment first. Internal
// comments are dropped unless includeInternal is set.
func (s *TicketService) GetTicket(ctx context.Context, id string, includeInternal bool) (*domain.Ticket, []domain.Comment, error) {
	ticket, err := s.loadTicket(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	comments, err := s.comments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, nil, err
	}
	if !includeInternal {
		visible := make([]domain.Comment, 0, len(comments))
		for _, c := range comments {
			if !c.IsInternal {
				visible = append(visible, c)
			}
		}
		comments = visible
	}
	return ticket, comments, nil
}

// UpdateTicket applies agent edits. The SLA deadline is kept as stored and
// only filled in for legacy tickets that never had one.
func (s *TicketService) UpdateTicket(ctx context.Context, id string, actor *domain.User, input TicketUpdateInput) (*domain.Ticket, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	ticket, err := s.loadTicket(ctx, id)
	if err != nil {
		return nil, err
	}

	oldStatus := ticket.Status
	if input.Status != nil {
		ticket.Status = *input.Status
	}
	if input.Priority != nil {
		ticket.Priority = *input.Priority
	}
	if input.Unassign {
		ticket.AssignedTo = nil
	} else if input.AssignedTo != nil {
		assignee := *input.AssignedTo
		ticket.AssignedTo = &assignee
	}
	now := s.now()
	ticket.ApplySLADefault(now)

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}
	if ticket.Status != oldStatus {
		s.logger.Info("ticket status changed",
			zap.String("ticket_id", ticket.ID),
			zap.String("from", string(oldStatus)),
			zap.String("to", string(ticket.Status)))
		s.publishEvent(ctx, events.NewEvent(events.EventTicketStatusChanged, ticket.ID, actorID(actor), now,
			events.TicketStatusChangedPayload{
				OldStatus: oldStatus,
				NewStatus: ticket.Status,
			}))
	}
	return ticket, nil
}

// AddComment appends a comment to a ticket. author is nil for anonymous
// callers; only staff may post internal comments.
func (s *TicketService) AddComment(ctx context.Context, ticketID string, author *domain.User, input CommentInput) (*domain.Comment, error) {
	input.Body = strings.TrimSpace(input.Body)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	if input.IsInternal && (author == nil || !author.IsStaff) {
		return nil, apperrors.NewForbidden("only staff can post internal comments")
	}
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	comment := &domain.Comment{
		TicketID:   ticket.ID,
		AuthorID:   actorID(author),
		Body:       input.Body,
		IsInternal: input.IsInternal,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.NewEvent(events.EventCommentAdded, ticket.ID, comment.AuthorID, s.now(),
		events.CommentAddedPayload{
			CommentID:   comment.ID,
			IsInternal:  comment.IsInternal,
			BodyPreview: stringPreview(comment.Body, 120),
		}))
	return comment, nil
}

func (s *TicketService) loadTicket(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"id": id})
		}
		return nil, err
	}
	return ticket, nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish event failed",
			zap.String("event", string(event.Type)),
			zap.String("ticket_id", event.TicketID),
			zap.Error(err))
	}
}

func actorID(user *domain.User) *string {
	if user == nil {
		return nil
	}
	id := user.ID
	return &id
}

func clampPageSize(limit int) int {
	if limit <= 0 {
		return defaultPageSize
	}
	if limit > maxPageSize {
		return maxPageSize
	}
	return limit
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func clockOrDefault(clock func() time.Time) func() time.Time {
	if clock == nil {
		return time.Now
	}
	return clock
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}
