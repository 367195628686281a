package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"alfredoptarigan/mock-interview/internal/logger"
	"alfredoptarigan/mock-interview/internal/models"
)

const placeholderFeedback = "No detailed feedback was provided for this answer."

// AnswerEvaluator scores a single answer. It always produces an evaluation:
// any AI failure degrades to the heuristic scorer.
type AnswerEvaluator interface {
	Evaluate(ctx context.Context, question models.Question, answer, role string) models.Evaluation
}

// ContextRetriever supplies rubric text relevant to a query.
type ContextRetriever interface {
	Retrieve(ctx context.Context, query string) (string, error)
}

type answerEvaluator struct {
	llm           LLMClient
	rubrics       ContextRetriever
	heuristic     *HeuristicScorer
	promptBuilder *PromptBuilder
	opts          CallOptions
	logger        *zap.Logger
}

// NewAnswerEvaluator builds an evaluator. llm and rubrics may be nil.
func NewAnswerEvaluator(
	llm LLMClient,
	rubrics ContextRetriever,
	heuristic *HeuristicScorer,
	opts CallOptions,
	log *zap.Logger,
) AnswerEvaluator {
	if log == nil {
		log = zap.NewNop()
	}
	return &answerEvaluator{
		llm:           llm,
		rubrics:       rubrics,
		heuristic:     heuristic,
		promptBuilder: NewPromptBuilder(),
		opts:          opts,
		logger:        log,
	}
}

type aiEvaluation struct {
	Score        float64  `json:"score"`
	Feedback     *string  `json:"feedback"`
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
}

// Evaluate implements AnswerEvaluator.
func (e *answerEvaluator) Evaluate(ctx context.Context, question models.Question, answer, role string) models.Evaluation {
	if e.llm == nil {
		return e.heuristic.Score(question, answer, role)
	}

	if e.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
	}

	evaluation, err := e.evaluateWithAI(ctx, question, answer, role)
	if err != nil {
		logger.WithCommonFields(e.logger, e.llm.Provider(), e.llm.Model()).Warn("AI evaluation failed, using heuristic score",
			zap.Int("question_index", question.Index),
			zap.Error(err),
		)
		return e.heuristic.Score(question, answer, role)
	}
	return evaluation
}

func (e *answerEvaluator) evaluateWithAI(ctx context.Context, question models.Question, answer, role string) (models.Evaluation, error) {
	rubric := ""
	if e.rubrics != nil {
		text, err := e.rubrics.Retrieve(ctx, e.promptBuilder.BuildRubricQuery(question, role))
		if err != nil {
			e.logger.Debug("rubric retrieval failed", zap.Error(err))
		} else {
			rubric = text
		}
	}

	prompt := e.promptBuilder.BuildEvaluationPrompt(question, answer, role, rubric)
	response, err := GenerateTextWithRetry(ctx, e.llm, prompt, 0.3, e.opts.Retry, e.logger)
	if err != nil {
		return models.Evaluation{}, err
	}

	e.logger.Debug("evaluation response received",
		zap.String("response", logger.TruncateForLog(response, 300)),
	)

	return parseEvaluation(response, question, e.llm.Provider())
}

// parseEvaluation validates a model response and normalizes it into an Evaluation.
func parseEvaluation(response string, question models.Question, provider string) (models.Evaluation, error) {
	payload := extractJSON(response)
	if err := validateJSON(evaluationSchema, payload); err != nil {
		return models.Evaluation{}, err
	}

	var result aiEvaluation
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return models.Evaluation{}, fmt.Errorf("failed to parse evaluation response: %w", err)
	}

	feedback := placeholderFeedback
	if result.Feedback != nil && strings.TrimSpace(*result.Feedback) != "" {
		feedback = strings.TrimSpace(*result.Feedback)
	}

	return models.Evaluation{
		QuestionIndex: question.Index,
		Dimension:     question.Dimension,
		Score:         clampScore(result.Score),
		Feedback:      feedback,
		Strengths:     cleanList(result.Strengths),
		Improvements:  cleanList(result.Improvements),
		Provenance:    models.ProvenanceAI,
		Provider:      provider,
		EvaluatedAt:   time.Now(),
	}, nil
}

func clampScore(score float64) int {
	return int(math.Round(math.Max(0, math.Min(100, score))))
}

func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

type rubricRetriever struct {
	embedder Embedder
	kb       KnowledgeBase
	limit    int
}

// Embedder turns text into a vector for knowledge base queries.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// NewRubricRetriever looks up rubric chunks in the knowledge base.
func NewRubricRetriever(embedder Embedder, kb KnowledgeBase, limit int) ContextRetriever {
	if limit <= 0 {
		limit = 3
	}
	return &rubricRetriever{embedder: embedder, kb: kb, limit: limit}
}

// Retrieve implements ContextRetriever.
func (r *rubricRetriever) Retrieve(ctx context.Context, query string) (string, error) {
	embedding, err := r.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return "", fmt.Errorf("failed to generate query embedding: %w", err)
	}

	results, err := r.kb.SearchSimilar(ctx, embedding, DocTypeRubric, r.limit)
	if err != nil {
		return "", err
	}

	return FormatRAGContext(results), nil
}
