package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/mock-interview/internal/session"
)

type HealthHandler struct {
	store      session.Store
	aiProvider string
}

func NewHealthHandler(store session.Store, aiProvider string) *HealthHandler {
	return &HealthHandler{store: store, aiProvider: aiProvider}
}

// HandleHealth handles GET /health
func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":          "healthy",
		"time":            time.Now(),
		"active_sessions": h.store.Len(),
		"ai_provider":     h.aiProvider,
	})
}

// RegisterRoutes mounts the interview API on router.
func RegisterRoutes(
	router fiber.Router,
	sessions *SessionHandler,
	answers *AnswerHandler,
	reports *ReportHandler,
	health *HealthHandler,
) {
	router.Get("/health", health.HandleHealth)

	router.Post("/sessions", sessions.HandleStart)
	router.Get("/sessions/:id", sessions.HandleGetSession)
	router.Get("/sessions/:id/question", sessions.HandleGetQuestion)
	router.Post("/sessions/:id/answers", answers.HandleSubmit)
	router.Get("/sessions/:id/report", reports.HandleGetReport)
}
