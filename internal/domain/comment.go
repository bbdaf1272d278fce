package domain

import (
	"fmt"
	"time"
)

// EscalationCommentLayout formats the breach time in escalation notes.
const EscalationCommentLayout = "2006-01-02 15:04"

// Comment is a note on a ticket thread. Internal comments are agent-only.
type Comment struct {
	ID         string
	TicketID   string
	AuthorID   *string
	Body       string
	IsInternal bool
	CreatedAt  time.Time
}

// NewEscalationComment builds the internal audit note appended when the SLA
// sweep escalates a ticket.
func NewEscalationComment(ticketID string, now time.Time) *Comment {
	return &Comment{
		TicketID:   ticketID,
		Body:       fmt.Sprintf("Ticket auto-escalated due to SLA breach at %s", now.UTC().Format(EscalationCommentLayout)),
		IsInternal: true,
	}
}
