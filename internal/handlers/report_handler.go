package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/mock-interview/internal/services"
)

type ReportHandler struct {
	interviews services.InterviewService
	timeout    time.Duration
}

// NewReportHandler bounds report assembly by timeout when it is positive.
func NewReportHandler(interviews services.InterviewService, timeout time.Duration) *ReportHandler {
	return &ReportHandler{
		interviews: interviews,
		timeout:    timeout,
	}
}

// HandleGetReport handles GET /sessions/:id/report
func (h *ReportHandler) HandleGetReport(c *fiber.Ctx) error {
	ctx := c.UserContext()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	report, err := h.interviews.GetReport(ctx, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(report)
}
