package services

import (
	"fmt"
	"strings"

	"alfredoptarigan/mock-interview/internal/models"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildQuestionPrompt asks for count questions tailored to the role and resume.
func (pb *PromptBuilder) BuildQuestionPrompt(role string, profile models.ResumeProfile, count int) string {
	skills := "not specified"
	if len(profile.Skills) > 0 {
		skills = strings.Join(profile.Skills, ", ")
	}

	dimensions := make([]string, 0, len(models.Dimensions()))
	for _, d := range models.Dimensions() {
		dimensions = append(dimensions, d.Key())
	}

	return fmt.Sprintf(`You are a senior interviewer preparing a mock interview for a %s position.

CANDIDATE PROFILE:
- Skills: %s
- Experience: %d years

Write exactly %d distinct interview questions. Mix technical depth with behavioral
questions and spread them across these dimensions: %s.

Return ONLY a JSON array in the following format:
[
  {"question": "<question text>", "dimension": "<one of the dimensions above>"}
]`,
		role, skills, profile.ExperienceYears, count, strings.Join(dimensions, ", "))
}

// BuildEvaluationPrompt asks for a 0-100 score of one answer.
func (pb *PromptBuilder) BuildEvaluationPrompt(question models.Question, answer, role, rubricContext string) string {
	if strings.TrimSpace(rubricContext) == "" {
		rubricContext = "No rubric available. Use your judgement as a top-tier interviewer."
	}

	return fmt.Sprintf(`You are an expert interviewer evaluating a candidate for a %s position.

SCORING RUBRIC:
%s

QUESTION (%s):
%s

CANDIDATE ANSWER:
%s

Score the answer from 0 to 100 for depth, correctness, structure and relevance to the question.

Return your response in the following JSON format:
{
  "score": <number 0-100>,
  "feedback": "<2-4 sentences of specific feedback>",
  "strengths": ["<strength>"],
  "improvements": ["<concrete improvement>"]
}`,
		role, rubricContext, question.Dimension, question.Text, answer)
}

// BuildRubricQuery is the retrieval query for rubric chunks relevant to a question.
func (pb *PromptBuilder) BuildRubricQuery(question models.Question, role string) string {
	return fmt.Sprintf("Evaluation criteria for %s answers in a %s interview: %s",
		strings.ToLower(string(question.Dimension)), role, question.Text)
}

// FormatRAGContext joins retrieved chunks into a prompt section.
func FormatRAGContext(results []SearchResult) string {
	if len(results) == 0 {
		return ""
	}

	var parts []string
	for i, result := range results {
		parts = append(parts, fmt.Sprintf("--- Context %d (Score: %.2f) ---\n%s",
			i+1, result.Score, strings.TrimSpace(result.Text)))
	}

	return strings.Join(parts, "\n\n")
}
