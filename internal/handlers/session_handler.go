package handlers

import (
	"fmt"
	"io"
	"mime/multipart"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/mock-interview/internal/models"
	"alfredoptarigan/mock-interview/internal/services"
)

type SessionHandler struct {
	interviews  services.InterviewService
	validator   *validator.Validate
	maxFileSize int64
}

func NewSessionHandler(interviews services.InterviewService, maxFileSize int64) *SessionHandler {
	return &SessionHandler{
		interviews:  interviews,
		validator:   newValidator(),
		maxFileSize: maxFileSize,
	}
}

// HandleStart handles POST /sessions
func (h *SessionHandler) HandleStart(c *fiber.Ctx) error {
	var req models.StartSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
			"code":  fiber.StatusBadRequest,
		})
	}

	if err := h.validator.Struct(req); err != nil {
		return respondError(c, validationError(err))
	}

	file, err := c.FormFile("resume")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "resume file is required",
			"code":  fiber.StatusBadRequest,
		})
	}

	if h.maxFileSize > 0 && file.Size > h.maxFileSize {
		return respondError(c, fmt.Errorf("%w: max size %d bytes", models.ErrFileTooLarge, h.maxFileSize))
	}

	data, err := readFormFile(file)
	if err != nil {
		return respondError(c, err)
	}

	result, err := h.interviews.StartSession(c.UserContext(), services.StartRequest{
		Resume:        data,
		FileName:      file.Filename,
		Role:          req.Role,
		QuestionCount: req.QuestionCount,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(models.StartSessionResponse{
		SessionID:      result.SessionID,
		Role:           result.Role,
		TotalQuestions: result.TotalQuestions,
		Question:       &result.Question,
		Profile:        &result.Profile,
	})
}

// HandleGetSession handles GET /sessions/:id
func (h *SessionHandler) HandleGetSession(c *fiber.Ctx) error {
	snap, err := h.interviews.Snapshot(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(models.SessionStateResponse{
		SessionID:      snap.ID,
		Role:           snap.Role,
		State:          string(snap.State),
		CurrentIndex:   snap.CurrentIndex,
		TotalQuestions: len(snap.Questions),
		Questions:      snap.Questions,
		Evaluations:    snap.Evaluations,
	})
}

// HandleGetQuestion handles GET /sessions/:id/question
func (h *SessionHandler) HandleGetQuestion(c *fiber.Ctx) error {
	view, err := h.interviews.CurrentQuestion(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(models.QuestionResponse{
		Question:       view.Question,
		QuestionNumber: view.QuestionNumber,
		TotalQuestions: view.TotalQuestions,
		Progress:       view.Progress,
		Completed:      view.Completed,
	})
}

func readFormFile(file *multipart.FileHeader) ([]byte, error) {
	f, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	return data, nil
}
