package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"alfredoptarigan/mock-interview/internal/config"
	"alfredoptarigan/mock-interview/internal/logger"
	"alfredoptarigan/mock-interview/internal/models"
)

const skillPlaceholder = "{skill}"

// QuestionBank produces the fixed question sequence of a new session.
type QuestionBank interface {
	Generate(ctx context.Context, role string, profile models.ResumeProfile, count int) ([]models.Question, error)
}

type questionBank struct {
	llm           LLMClient
	catalog       *config.Catalog
	promptBuilder *PromptBuilder
	opts          CallOptions
	logger        *zap.Logger
}

// NewQuestionBank builds a generator that prefers llm and fills any shortfall
// from the catalog. llm may be nil.
func NewQuestionBank(llm LLMClient, catalog *config.Catalog, opts CallOptions, log *zap.Logger) QuestionBank {
	if log == nil {
		log = zap.NewNop()
	}
	return &questionBank{
		llm:           llm,
		catalog:       catalog,
		promptBuilder: NewPromptBuilder(),
		opts:          opts,
		logger:        log,
	}
}

type aiQuestion struct {
	Question  string `json:"question"`
	Dimension string `json:"dimension"`
}

// Generate implements QuestionBank. The result holds at most count questions
// with unique text; it is shorter only when every source is exhausted.
func (b *questionBank) Generate(ctx context.Context, role string, profile models.ResumeProfile, count int) ([]models.Question, error) {
	if count <= 0 {
		return nil, models.ErrInvalidCount
	}

	set := newQuestionSet(count)

	if b.llm != nil {
		candidates, err := b.fromAI(ctx, role, profile, count)
		if err != nil {
			logger.WithCommonFields(b.logger, b.llm.Provider(), b.llm.Model()).Warn("AI question generation failed, using question bank",
				zap.String("role", role),
				zap.Error(err),
			)
		}
		for _, c := range candidates {
			if set.full() {
				break
			}
			dimension, _ := models.ParseDimension(c.Dimension)
			set.add(c.Question, dimension)
		}
	}

	if !set.full() {
		for _, tmpl := range b.fallback(role, profile) {
			if set.full() {
				break
			}
			set.add(tmpl.Text, tmpl.Dimension)
		}
	}

	if !set.full() {
		b.logger.Info("question bank exhausted",
			zap.String("role", role),
			zap.Int("requested", count),
			zap.Int("generated", len(set.questions)),
		)
	}

	return set.questions, nil
}

func (b *questionBank) fromAI(ctx context.Context, role string, profile models.ResumeProfile, count int) ([]aiQuestion, error) {
	if b.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.opts.Timeout)
		defer cancel()
	}

	prompt := b.promptBuilder.BuildQuestionPrompt(role, profile, count)
	response, err := GenerateTextWithRetry(ctx, b.llm, prompt, 0.7, b.opts.Retry, b.logger)
	if err != nil {
		return nil, err
	}

	payload := extractJSON(response)
	if err := validateJSON(questionsSchema, payload); err != nil {
		return nil, err
	}

	var questions []aiQuestion
	if err := json.Unmarshal([]byte(payload), &questions); err != nil {
		return nil, fmt.Errorf("failed to parse questions response: %w", err)
	}
	return questions, nil
}

// fallback expands the role's catalog templates. The first pass cycles through
// the candidate's skills one template at a time; later entries pair every
// skill template with every skill.
func (b *questionBank) fallback(role string, profile models.ResumeProfile) []models.Question {
	templates := b.catalog.Role(role).Questions
	skills := profile.Skills

	var out []models.Question
	cursor := 0
	for _, tmpl := range templates {
		dimension, _ := models.ParseDimension(tmpl.Dimension)
		text := tmpl.Text
		if strings.Contains(text, skillPlaceholder) {
			skill := "your main technology stack"
			if len(skills) > 0 {
				skill = skills[cursor%len(skills)]
				cursor++
			}
			text = strings.ReplaceAll(text, skillPlaceholder, skill)
		}
		out = append(out, models.Question{Text: text, Dimension: dimension})
	}

	for _, tmpl := range templates {
		if !strings.Contains(tmpl.Text, skillPlaceholder) {
			continue
		}
		dimension, _ := models.ParseDimension(tmpl.Dimension)
		for _, skill := range skills {
			out = append(out, models.Question{
				Text:      strings.ReplaceAll(tmpl.Text, skillPlaceholder, skill),
				Dimension: dimension,
			})
		}
	}

	return out
}

type questionSet struct {
	limit     int
	seen      map[string]struct{}
	questions []models.Question
}

func newQuestionSet(limit int) *questionSet {
	return &questionSet{
		limit:     limit,
		seen:      make(map[string]struct{}, limit),
		questions: make([]models.Question, 0, limit),
	}
}

func (s *questionSet) full() bool {
	return len(s.questions) >= s.limit
}

// add appends a question unless its normalized text was seen before. Unknown
// dimensions are assigned round-robin over the taxonomy.
func (s *questionSet) add(text string, dimension models.Dimension) bool {
	text = strings.TrimSpace(text)
	key := normalizeQuestion(text)
	if key == "" || s.full() {
		return false
	}
	if _, dup := s.seen[key]; dup {
		return false
	}

	if !dimension.Valid() {
		dims := models.Dimensions()
		dimension = dims[len(s.questions)%len(dims)]
	}

	s.seen[key] = struct{}{}
	s.questions = append(s.questions, models.Question{
		Index:     len(s.questions),
		Text:      text,
		Dimension: dimension,
	})
	return true
}

func normalizeQuestion(text string) string {
	text = strings.ToLower(strings.Join(strings.Fields(text), " "))
	return strings.TrimRight(text, "?.! ")
}
