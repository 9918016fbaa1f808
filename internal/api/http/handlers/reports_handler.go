package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/atendehq/helpdesk/internal/auth"
	"github.com/atendehq/helpdesk/internal/service"
	apperrors "github.com/atendehq/helpdesk/pkg/util"
)

// ReportsHandler serves dashboard aggregates.
type ReportsHandler struct {
	service *service.ReportService
}

// NewReportsHandler constructs handler.
func NewReportsHandler(reportService *service.ReportService) *ReportsHandler {
	return &ReportsHandler{service: reportService}
}

// Dashboard GET /reports/dashboard.
func (h *ReportsHandler) Dashboard(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	report, err := h.service.Dashboard(c.UserContext(), actor, parseInt(c.Query("days"), 30))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": report})
}
