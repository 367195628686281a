package handlers

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/mock-interview/internal/models"
	"alfredoptarigan/mock-interview/internal/services"
)

const defaultAudioMIMEType = "audio/webm"

type AnswerHandler struct {
	interviews services.InterviewService
	validator  *validator.Validate
}

func NewAnswerHandler(interviews services.InterviewService) *AnswerHandler {
	return &AnswerHandler{
		interviews: interviews,
		validator:  newValidator(),
	}
}

// HandleSubmit handles POST /sessions/:id/answers. The answer is either a JSON
// body or a multipart "audio" recording that gets transcribed first.
func (h *AnswerHandler) HandleSubmit(c *fiber.Ctx) error {
	id := c.Params("id")

	var (
		result *services.SubmitResult
		err    error
	)
	if strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm) {
		result, err = h.submitAudio(c, id)
	} else {
		result, err = h.submitText(c, id)
	}
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(models.SubmitAnswerResponse{
		Evaluation:   result.Evaluation,
		NextQuestion: result.NextQuestion,
		Completed:    result.Completed,
		Transcript:   result.Transcript,
	})
}

func (h *AnswerHandler) submitText(c *fiber.Ctx, id string) (*services.SubmitResult, error) {
	var req models.SubmitAnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid request payload")
	}

	if err := h.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}

	return h.interviews.SubmitAnswer(c.UserContext(), id, req.Answer)
}

func (h *AnswerHandler) submitAudio(c *fiber.Ctx, id string) (*services.SubmitResult, error) {
	file, err := c.FormFile("audio")
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "audio file is required")
	}

	data, err := readFormFile(file)
	if err != nil {
		return nil, err
	}

	mimeType := file.Header.Get(fiber.HeaderContentType)
	if mimeType == "" || mimeType == fiber.MIMEOctetStream {
		mimeType = defaultAudioMIMEType
	}

	return h.interviews.SubmitAudioAnswer(c.UserContext(), id, data, mimeType)
}
