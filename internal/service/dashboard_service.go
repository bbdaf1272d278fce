package service

import (
	"context"
	"strconv"
	"time"

	"github.com/helpdesk-kit/helpdesk/internal/domain"
	"github.com/helpdesk-kit/helpdesk/internal/repository"
)

// DashboardService aggregates ticket counts and SLA compliance.
type DashboardService struct {
	tickets repository.TicketRepository
}

// NewDashboardService constructs the service.
func NewDashboardService(tickets repository.TicketRepository) *DashboardService {
	return &DashboardService{tickets: tickets}
}

// Compute builds the dashboard snapshot as of now. It only reads.
func (s *DashboardService) Compute(ctx context.Context, now time.Time) (*domain.DashboardStats, error) {
	stats := &domain.DashboardStats{}
	hasSLA := true

	counts := []struct {
		dst    *int
		filter repository.TicketFilter
	}{
		{&stats.Total, repository.TicketFilter{}},
		{&stats.OpenCount, repository.TicketFilter{ExcludeStatuses: domain.ClosedStatuses()}},
		{&stats.ResolvedCount, repository.TicketFilter{Statuses: []domain.TicketStatus{domain.TicketStatusResolved}}},
		{&stats.EscalatedCount, repository.TicketFilter{Statuses: []domain.TicketStatus{domain.TicketStatusEscalated}}},
		{&stats.WithSLACount, repository.TicketFilter{HasSLA: &hasSLA}},
		{&stats.BreachedCount, repository.TicketFilter{
			ExcludeStatuses: domain.ClosedStatuses(),
			HasSLA:          &hasSLA,
			SLADueBefore:    &now,
		}},
	}
	for _, c := range counts {
		n, err := s.tickets.Count(ctx, c.filter)
		if err != nil {
			return nil, err
		}
		*c.dst = n
	}

	var err error
	if stats.ByStatus, err = s.groupRows(ctx, repository.TicketGroupByStatus, domain.StatusLabel); err != nil {
		return nil, err
	}
	if stats.ByPriority, err = s.groupRows(ctx, repository.TicketGroupByPriority, domain.PriorityLabel); err != nil {
		return nil, err
	}

	stats.SLAOKCount = stats.WithSLACount - stats.BreachedCount
	if stats.SLAOKCount < 0 {
		stats.SLAOKCount = 0
	}
	stats.SLARate = slaRate(stats.SLAOKCount, stats.WithSLACount)
	return stats, nil
}

func (s *DashboardService) groupRows(ctx context.Context, field repository.TicketGroupField, label func(string) string) ([]domain.CountRow, error) {
	groups, err := s.tickets.GroupCount(ctx, field)
	if err != nil {
		return nil, err
	}
	rows := make([]domain.CountRow, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, domain.CountRow{Key: g.Key, Label: label(g.Key), Count: g.Count})
	}
	return rows, nil
}

// slaRate is the share of SLA-tracked tickets not breached, as a percentage
// rounded to one decimal. Nil when nothing is tracked. Rounding works on the
// exact binary value, so a true tie such as 6.25 goes to the even digit.
func slaRate(ok, with int) *float64 {
	if with == 0 {
		return nil
	}
	pct := float64(ok) / float64(with) * 100
	rate, err := strconv.ParseFloat(strconv.FormatFloat(pct, 'f', 1, 64), 64)
	if err != nil {
		rate = pct
	}
	return &rate
}
