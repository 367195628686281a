package services

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"alfredoptarigan/mock-interview/internal/config"
	"alfredoptarigan/mock-interview/internal/models"
)

const (
	heuristicBase          = 10
	heuristicMaxLength     = 40
	heuristicMaxRole       = 25
	heuristicMaxDimension  = 35
	heuristicPointsPerTerm = 5
	heuristicCeiling       = 85
)

// HeuristicScorer scores answers without a language model. It is deterministic
// and never awards more than heuristicCeiling.
type HeuristicScorer struct {
	catalog *config.Catalog
	now     func() time.Time
}

func NewHeuristicScorer(catalog *config.Catalog) *HeuristicScorer {
	return &HeuristicScorer{catalog: catalog, now: time.Now}
}

func (h *HeuristicScorer) Score(question models.Question, answer, role string) models.Evaluation {
	text := strings.ToLower(answer)
	words := len(strings.Fields(answer))

	lengthPoints := min(heuristicMaxLength, words/3)

	roleTerms := matchedTerms(text, h.catalog.Role(role).Keywords)
	rolePoints := min(heuristicMaxRole, len(roleTerms)*heuristicPointsPerTerm)

	dimensionTerms := matchedTerms(text, h.catalog.KeywordsFor(question.Dimension))
	dimensionPoints := min(heuristicMaxDimension, len(dimensionTerms)*heuristicPointsPerTerm)

	score := min(heuristicCeiling, heuristicBase+lengthPoints+rolePoints+dimensionPoints)

	strengths := []string{}
	improvements := []string{}

	switch {
	case words >= 120:
		strengths = append(strengths, "Detailed, well-developed answer")
	case words < 40:
		improvements = append(improvements, "Expand the answer with concrete examples and outcomes")
	}
	if len(roleTerms) > 0 {
		strengths = append(strengths, fmt.Sprintf("Uses relevant terminology (%s)", strings.Join(firstN(roleTerms, 3), ", ")))
	} else {
		improvements = append(improvements, fmt.Sprintf("Connect the answer to the day-to-day work of a %s", role))
	}
	if len(dimensionTerms) > 0 {
		strengths = append(strengths, fmt.Sprintf("Shows %s", strings.ToLower(string(question.Dimension))))
	} else {
		improvements = append(improvements, fmt.Sprintf("Demonstrate %s more explicitly", strings.ToLower(string(question.Dimension))))
	}

	return models.Evaluation{
		QuestionIndex: question.Index,
		Dimension:     question.Dimension,
		Score:         score,
		Feedback:      heuristicFeedback(score),
		Strengths:     strengths,
		Improvements:  improvements,
		Provenance:    models.ProvenanceHeuristic,
		EvaluatedAt:   h.now(),
	}
}

func heuristicFeedback(score int) string {
	switch {
	case score >= 70:
		return "Solid answer with good structure and relevant detail. Add measurable outcomes to make it stand out."
	case score >= 50:
		return "Reasonable answer that covers the basics. Go deeper into trade-offs and specific examples."
	case score >= 30:
		return "The answer is thin. Structure it around the situation, your actions and the result."
	default:
		return "The answer needs significant work. Address the question directly and support it with real experience."
	}
}

// matchedTerms returns the terms of vocabulary present in text as whole words.
func matchedTerms(text string, vocabulary []string) []string {
	var hits []string
	for _, term := range vocabulary {
		term = strings.ToLower(strings.TrimSpace(term))
		if term != "" && containsTerm(text, term) {
			hits = append(hits, term)
		}
	}
	return hits
}

func containsTerm(text, term string) bool {
	return termIndex(text, term) >= 0
}

// termIndex is the byte offset of the first whole-word occurrence of term, or -1.
func termIndex(text, term string) int {
	if term == "" {
		return -1
	}
	for offset := 0; offset < len(text); {
		idx := strings.Index(text[offset:], term)
		if idx < 0 {
			return -1
		}
		start := offset + idx
		if isBoundary(text, start-1) && isBoundary(text, start+len(term)) {
			return start
		}
		offset = start + 1
	}
	return -1
}

func isBoundary(text string, pos int) bool {
	if pos < 0 || pos >= len(text) {
		return true
	}
	r := rune(text[pos])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func firstN(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}
