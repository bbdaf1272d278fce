package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/helpdesk-kit/helpdesk/internal/domain"
	"github.com/helpdesk-kit/helpdesk/internal/repository"
)

type ticketRepo struct{ s *Store }

func (r *ticketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.checkAssignee(ticket.AssignedTo); err != nil {
		return err
	}
	now := r.s.now()
	ticket.ID = newID()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	r.s.tickets[ticket.ID] = &ticketRow{seq: r.s.nextSeq(), ticket: cloneTicket(*ticket)}
	return nil
}

func (r *ticketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.updateTicket(ticket)
}

func (r *ticketRepo) UpdateWithComment(_ context.Context, ticket *domain.Ticket, comment *domain.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.tickets[ticket.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	before := row.ticket
	if err := r.s.updateTicket(ticket); err != nil {
		return err
	}
	if err := r.s.insertComment(comment); err != nil {
		row.ticket = before
		return err
	}
	return nil
}

func (s *Store) updateTicket(ticket *domain.Ticket) error {
	row, ok := s.tickets[ticket.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if err := s.checkAssignee(ticket.AssignedTo); err != nil {
		return err
	}
	ticket.CreatedAt = row.ticket.CreatedAt
	ticket.UpdatedAt = s.now()
	row.ticket = cloneTicket(*ticket)
	return nil
}

func (s *Store) checkAssignee(userID *string) error {
	if userID == nil {
		return nil
	}
	if _, ok := s.users[*userID]; !ok {
		return foreignKeyViolation("tickets_assigned_to_fkey")
	}
	return nil
}

func (r *ticketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	ticket := cloneTicket(row.ticket)
	return &ticket, nil
}

func (r *ticketRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.tickets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.tickets, id)
	for commentID, row := range r.s.comments {
		if row.comment.TicketID == id {
			delete(r.s.comments, commentID)
		}
	}
	return nil
}

func (r *ticketRepo) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rows := r.s.matchTickets(filter)
	sortNewestFirst(rows,
		func(row *ticketRow) time.Time { return row.ticket.CreatedAt },
		func(row *ticketRow) int64 { return row.seq })
	rows = page(rows, filter.Limit, filter.Offset)

	result := make([]domain.Ticket, 0, len(rows))
	for _, row := range rows {
		result = append(result, cloneTicket(row.ticket))
	}
	return result, nil
}

func (r *ticketRepo) Count(_ context.Context, filter repository.TicketFilter) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.matchTickets(filter)), nil
}

func (r *ticketRepo) GroupCount(_ context.Context, field repository.TicketGroupField) ([]repository.GroupCount, error) {
	if !field.Valid() {
		return nil, errors.New("unsupported group field: " + string(field))
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	counts := map[string]int{}
	for _, row := range r.s.tickets {
		key := string(row.ticket.Status)
		if field == repository.TicketGroupByPriority {
			key = string(row.ticket.Priority)
		}
		counts[key]++
	}
	result := make([]repository.GroupCount, 0, len(counts))
	for key, count := range counts {
		result = append(result, repository.GroupCount{Key: key, Count: count})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	return result, nil
}

func (s *Store) matchTickets(filter repository.TicketFilter) []*ticketRow {
	var rows []*ticketRow
	for _, row := range s.tickets {
		if ticketMatches(&row.ticket, filter) {
			rows = append(rows, row)
		}
	}
	return rows
}

func ticketMatches(t *domain.Ticket, f repository.TicketFilter) bool {
	if len(f.Statuses) > 0 && !containsStatus(f.Statuses, t.Status) {
		return false
	}
	if len(f.ExcludeStatuses) > 0 && containsStatus(f.ExcludeStatuses, t.Status) {
		return false
	}
	if len(f.Priorities) > 0 && !containsPriority(f.Priorities, t.Priority) {
		return false
	}
	if f.AssignedTo != nil && (t.AssignedTo == nil || *t.AssignedTo != *f.AssignedTo) {
		return false
	}
	if f.HasSLA != nil && (t.SLADue != nil) != *f.HasSLA {
		return false
	}
	// NULL < x is never true in SQL
	if f.SLADueBefore != nil && (t.SLADue == nil || !t.SLADue.Before(*f.SLADueBefore)) {
		return false
	}
	if f.SearchTerm != nil && strings.TrimSpace(*f.SearchTerm) != "" {
		if !containsFold(t.Title, *f.SearchTerm) && !containsFold(t.Description, *f.SearchTerm) {
			return false
		}
	}
	return true
}

func containsStatus(list []domain.TicketStatus, s domain.TicketStatus) bool {
	for _, candidate := range list {
		if candidate == s {
			return true
		}
	}
	return false
}

func containsPriority(list []domain.TicketPriority, p domain.TicketPriority) bool {
	for _, candidate := range list {
		if candidate == p {
			return true
		}
	}
	return false
}

func cloneTicket(t domain.Ticket) domain.Ticket {
	t.AssignedTo = cloneString(t.AssignedTo)
	t.RequesterEmail = cloneString(t.RequesterEmail)
	if t.SLADue != nil {
		due := *t.SLADue
		t.SLADue = &due
	}
	return t
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
