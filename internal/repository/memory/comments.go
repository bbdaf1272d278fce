package memory

import (
	"context"
	"sort"

	"github.com/helpdesk-kit/helpdesk/internal/domain"
)

type commentRepo struct{ s *Store }

func (r *commentRepo) Create(_ context.Context, comment *domain.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.insertComment(comment)
}

func (s *Store) insertComment(comment *domain.Comment) error {
	if _, ok := s.tickets[comment.TicketID]; !ok {
		return foreignKeyViolation("comments_ticket_id_fkey")
	}
	if comment.AuthorID != nil {
		if _, ok := s.users[*comment.AuthorID]; !ok {
			return foreignKeyViolation("comments_author_id_fkey")
		}
	}
	comment.ID = newID()
	comment.CreatedAt = s.now()
	stored := *comment
	stored.AuthorID = cloneString(comment.AuthorID)
	s.comments[comment.ID] = &commentRow{seq: s.nextSeq(), comment: stored}
	return nil
}

func (r *commentRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var rows []*commentRow
	for _, row := range r.s.comments {
		if row.comment.TicketID == ticketID {
			rows = append(rows, row)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		ci, cj := rows[i].comment.CreatedAt, rows[j].comment.CreatedAt
		if !ci.Equal(cj) {
			return ci.Before(cj)
		}
		return rows[i].seq < rows[j].seq
	})

	result := make([]domain.Comment, 0, len(rows))
	for _, row := range rows {
		comment := row.comment
		comment.AuthorID = cloneString(row.comment.AuthorID)
		result = append(result, comment)
	}
	return result, nil
}
