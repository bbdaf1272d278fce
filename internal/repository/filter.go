package repository

import (
	"fmt"
	"strings"
	"time"

	"github.com/helpdesk-kit/helpdesk/internal/domain"
)

// TicketFilter selects tickets. Zero values mean "no constraint"; a zero
// Limit returns every match.
type TicketFilter struct {
	Statuses        []domain.TicketStatus
	ExcludeStatuses []domain.TicketStatus
	Priorities      []domain.TicketPriority
	AssignedTo      *string
	HasSLA          *bool
	SLADueBefore    *time.Time
	SearchTerm      *string
	Limit           int
	Offset          int
}

// TicketGroupField names a column tickets can be grouped by.
type TicketGroupField string

const (
	TicketGroupByStatus   TicketGroupField = "status"
	TicketGroupByPriority TicketGroupField = "priority"
)

// Valid reports whether the field is safe to interpolate into SQL.
func (f TicketGroupField) Valid() bool {
	return f == TicketGroupByStatus || f == TicketGroupByPriority
}

// GroupCount is one row of a grouped count.
type GroupCount struct {
	Key   string
	Count int
}

// KBArticleFilter selects knowledge-base articles.
type KBArticleFilter struct {
	PublishedOnly bool
	// TitleContains matches titles only; Query matches title or content.
	TitleContains string
	Query         string
	Limit         int
}

// whereBuilder accumulates AND-ed clauses with positional arguments.
type whereBuilder struct {
	clauses []string
	args    []any
}

func (b *whereBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

func (b *whereBuilder) add(clause string) {
	b.clauses = append(b.clauses, clause)
}

func (b *whereBuilder) in(column string, values []string, negate bool) {
	if len(values) == 0 {
		return
	}
	placeholders := make([]string, len(values))
	for i, v := range values {
		placeholders[i] = b.arg(v)
	}
	op := "IN"
	if negate {
		op = "NOT IN"
	}
	b.add(fmt.Sprintf("%s %s (%s)", column, op, strings.Join(placeholders, ",")))
}

func (b *whereBuilder) sql() string {
	if len(b.clauses) == 0 {
		return "1=1"
	}
	return strings.Join(b.clauses, " AND ")
}

func (f TicketFilter) where() (string, []any) {
	b := &whereBuilder{}
	b.in("status", statusStrings(f.Statuses), false)
	b.in("status", statusStrings(f.ExcludeStatuses), true)
	b.in("priority", priorityStrings(f.Priorities), false)
	if f.AssignedTo != nil {
		b.add("assigned_to=" + b.arg(*f.AssignedTo))
	}
	if f.HasSLA != nil {
		if *f.HasSLA {
			b.add("sla_due IS NOT NULL")
		} else {
			b.add("sla_due IS NULL")
		}
	}
	if f.SLADueBefore != nil {
		b.add("sla_due < " + b.arg(*f.SLADueBefore))
	}
	if f.SearchTerm != nil && strings.TrimSpace(*f.SearchTerm) != "" {
		p := b.arg(likePattern(*f.SearchTerm))
		b.add(fmt.Sprintf(`(LOWER(title) LIKE %s ESCAPE '\' OR LOWER(description) LIKE %s ESCAPE '\')`, p, p))
	}
	return b.sql(), b.args
}

func (f KBArticleFilter) where() (string, []any) {
	b := &whereBuilder{}
	if f.PublishedOnly {
		b.add("a.is_published = TRUE")
	}
	if strings.TrimSpace(f.TitleContains) != "" {
		b.add(`LOWER(a.title) LIKE ` + b.arg(likePattern(f.TitleContains)) + ` ESCAPE '\'`)
	}
	if strings.TrimSpace(f.Query) != "" {
		p := b.arg(likePattern(f.Query))
		b.add(fmt.Sprintf(`(LOWER(a.title) LIKE %s ESCAPE '\' OR LOWER(a.content) LIKE %s ESCAPE '\')`, p, p))
	}
	return b.sql(), b.args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern builds a case-insensitive substring pattern with LIKE
// metacharacters in term matched literally.
func likePattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(term))) + "%"
}

func statusStrings(statuses []domain.TicketStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func priorityStrings(priorities []domain.TicketPriority) []string {
	out := make([]string, len(priorities))
	for i, p := range priorities {
		out[i] = string(p)
	}
	return out
}

func limitOffset(limit, offset int) string {
	if limit <= 0 {
		return ""
	}
	if offset < 0 {
		offset = 0
	}
	return fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)
}
