package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk-kit/helpdesk/internal/api/dto"
	"github.com/helpdesk-kit/helpdesk/internal/domain"
	"github.com/helpdesk-kit/helpdesk/internal/service"
)

// DashboardHandler serves the ticket overview.
type DashboardHandler struct {
	service *service.DashboardService
	now     func() time.Time
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(dashboard *service.DashboardService, now func() time.Time) *DashboardHandler {
	if now == nil {
		now = time.Now
	}
	return &DashboardHandler{service: dashboard, now: now}
}

// Get GET /dashboard.
func (h *DashboardHandler) Get(c *fiber.Ctx) error {
	stats, err := h.service.Compute(c.UserContext(), h.now())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.DashboardResponse{
		Total:          stats.Total,
		OpenCount:      stats.OpenCount,
		ResolvedCount:  stats.ResolvedCount,
		EscalatedCount: stats.EscalatedCount,
		ByStatus:       countRows(stats.ByStatus),
		ByPriority:     countRows(stats.ByPriority),
		WithSLACount:   stats.WithSLACount,
		BreachedCount:  stats.BreachedCount,
		SLAOKCount:     stats.SLAOKCount,
		SLARate:        stats.SLARate,
	}})
}

func countRows(rows []domain.CountRow) []dto.CountRowResponse {
	out := make([]dto.CountRowResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, dto.CountRowResponse{Key: row.Key, Label: row.Label, Count: row.Count})
	}
	return out
}
