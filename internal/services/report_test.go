package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/mock-interview/internal/config"
	"alfredoptarigan/mock-interview/internal/models"
	"alfredoptarigan/mock-interview/internal/session"
)

type stubJobSearcher struct {
	matches []models.JobMatch
	err     error
	query   JobQuery
}

func (s *stubJobSearcher) Search(_ context.Context, query JobQuery) ([]models.JobMatch, error) {
	s.query = query
	return s.matches, s.err
}

type scored struct {
	dimension    models.Dimension
	score        int
	improvements []string
}

// completedSession answers every question of a fresh session with the given scores.
func completedSession(t *testing.T, answers ...scored) *session.Session {
	t.Helper()

	questions := make([]models.Question, len(answers))
	for i, a := range answers {
		questions[i] = models.Question{Text: "question", Dimension: a.dimension}
	}

	s, err := session.New("Software Engineer", models.ResumeProfile{Skills: []string{"python", "sql"}, ATSScore: 20}, questions)
	require.NoError(t, err)

	for i, a := range answers {
		_, err := s.Record(i, "answer", models.Evaluation{
			Score:        a.score,
			Improvements: a.improvements,
			Provenance:   models.ProvenanceHeuristic,
		})
		require.NoError(t, err)
	}
	require.True(t, s.IsComplete())
	return s
}

func TestReportAssemblerAssemble(t *testing.T) {
	jobs := &stubJobSearcher{matches: []models.JobMatch{{
		JobPosting: models.JobPosting{Title: "Senior Software Engineer", Company: "TechCorp"},
		MatchScore: 90,
	}}}
	assembler := NewReportAssembler(testCatalog(), jobs, time.Second, 7, nil)

	s := completedSession(t,
		scored{dimension: models.DimensionTechnicalMastery, score: 80},
		scored{dimension: models.DimensionProblemSolving, score: 60},
		scored{dimension: models.DimensionSystemThinking, score: 90},
		scored{dimension: models.DimensionTechnicalMastery, score: 70},
		scored{dimension: models.DimensionSystemThinking, score: 100},
	)

	report, err := assembler.Assemble(context.Background(), s)
	require.NoError(t, err)

	assert.Equal(t, s.ID, report.SessionID)
	assert.Equal(t, 80.0, report.AverageScore)
	assert.Equal(t, "STRONG - Senior Level", report.Readiness.Level)
	assert.Equal(t, 95.0, report.DimensionScores[models.DimensionSystemThinking])
	assert.Equal(t, 75.0, report.DimensionScores[models.DimensionTechnicalMastery])
	assert.Equal(t, "Systems Architecture", report.RecommendedDomain)
	assert.Equal(t, 5, report.TotalQuestions)
	assert.Len(t, report.Evaluations, 5)
	assert.Len(t, report.JobMatches, 1)

	assert.Equal(t, "Systems Architecture", jobs.query.Domain)
	assert.Equal(t, []string{"python", "sql"}, jobs.query.Skills)
	assert.Equal(t, 7, jobs.query.Limit)
}

func TestReportAssemblerGuidance(t *testing.T) {
	assembler := NewReportAssembler(testCatalog(), nil, 0, 0, nil)

	s := completedSession(t,
		scored{dimension: models.DimensionTechnicalMastery, score: 80},
		scored{dimension: models.DimensionProblemSolving, score: 60},
		scored{dimension: models.DimensionSystemThinking, score: 90},
		scored{dimension: models.DimensionTechnicalMastery, score: 70},
		scored{dimension: models.DimensionSystemThinking, score: 100},
	)

	report, err := assembler.Assemble(context.Background(), s)
	require.NoError(t, err)

	assert.Equal(t, []models.Dimension{models.DimensionProblemSolving}, report.WeakAreas)
	assert.Equal(t, []models.Dimension{models.DimensionSystemThinking}, report.StrongAreas)

	g := report.Guidance
	require.NotEmpty(t, g.ActionPlan)
	assert.Equal(t, "Intensive four-week preparation sprint", g.ActionPlan[0].Action)
	assert.Equal(t, "advanced", g.SystemDesign.Level)
	assert.NotEmpty(t, g.SystemDesign.PracticeProblems)
	assert.Equal(t, "Daily", g.MockInterviews.Frequency)
	assert.Equal(t, "6-8 weeks", g.Roadmap.Timeline)
	assert.Equal(t, "Near Ready", g.Roadmap.Readiness)

	require.Len(t, g.Resources, 1)
	assert.Equal(t, models.DimensionProblemSolving, g.Resources[0].Dimension)
	assert.NotEmpty(t, g.Resources[0].Items)
}

func TestReportAssemblerGuidanceWithoutWeakAreas(t *testing.T) {
	catalog := testCatalog()
	assembler := NewReportAssembler(catalog, nil, 0, 0, nil)

	s := completedSession(t,
		scored{dimension: models.DimensionCommunication, score: 95},
		scored{dimension: models.DimensionLeadership, score: 90},
		scored{dimension: models.DimensionInnovation, score: 90},
	)

	report, err := assembler.Assemble(context.Background(), s)
	require.NoError(t, err)

	assert.NotNil(t, report.WeakAreas)
	assert.Empty(t, report.WeakAreas)
	assert.Equal(t, []models.Dimension{
		models.DimensionCommunication,
		models.DimensionInnovation,
		models.DimensionLeadership,
	}, report.StrongAreas)

	// The weakest dimension still gets study material; ties go to taxonomy order.
	require.Len(t, report.Guidance.Resources, 1)
	assert.Equal(t, models.DimensionInnovation, report.Guidance.Resources[0].Dimension)
	assert.Equal(t, "Interview Ready", report.Guidance.Roadmap.Readiness)

	// Mutating the report must not leak into the shared catalog.
	report.Guidance.Resources[0].Items[0].Title = "changed"
	report.Guidance.ActionPlan[0].Action = "changed"
	assert.NotEqual(t, "changed", catalog.ResourcesFor(models.DimensionInnovation)[0].Title)
	assert.NotEqual(t, "changed", config.BandFor(catalog.Guidance.ActionPlans, report.AverageScore).Steps[0].Action)
}

func TestClassifyAreas(t *testing.T) {
	tests := []struct {
		score  float64
		weak   bool
		strong bool
	}{
		{score: 0, weak: true},
		{score: 69.99, weak: true},
		{score: 70},
		{score: 79.99},
		{score: 80, strong: true},
		{score: 100, strong: true},
	}

	for _, tt := range tests {
		weak, strong := classifyAreas(map[models.Dimension]float64{models.DimensionLeadership: tt.score}, 70, 80)
		assert.Equal(t, tt.weak, len(weak) == 1, "weak at %.2f", tt.score)
		assert.Equal(t, tt.strong, len(strong) == 1, "strong at %.2f", tt.score)
	}

	weak, strong := classifyAreas(nil, 70, 80)
	assert.NotNil(t, weak)
	assert.NotNil(t, strong)
	assert.Empty(t, weak)
	assert.Empty(t, strong)
}

func TestReportAssemblerBreaksTiesByTaxonomyOrder(t *testing.T) {
	assembler := NewReportAssembler(testCatalog(), nil, 0, 0, nil)

	s := completedSession(t,
		scored{dimension: models.DimensionLeadership, score: 70},
		scored{dimension: models.DimensionCommunication, score: 70},
	)

	report, err := assembler.Assemble(context.Background(), s)
	require.NoError(t, err)

	assert.Equal(t, "Developer Relations", report.RecommendedDomain)
}

func TestReportAssemblerJobSearchFailure(t *testing.T) {
	for name, jobs := range map[string]JobSearcher{
		"nil searcher":   nil,
		"search error":   &stubJobSearcher{err: models.ErrUpstreamUnavailable},
		"nil result set": &stubJobSearcher{},
	} {
		t.Run(name, func(t *testing.T) {
			assembler := NewReportAssembler(testCatalog(), jobs, time.Second, 10, nil)

			report, err := assembler.Assemble(context.Background(), completedSession(t, scored{dimension: models.DimensionInnovation, score: 50}))
			require.NoError(t, err)

			assert.NotNil(t, report.JobMatches)
			assert.Empty(t, report.JobMatches)
		})
	}
}

func TestReportAssemblerRejectsIncompleteSession(t *testing.T) {
	s, err := session.New("Software Engineer", models.ResumeProfile{}, []models.Question{
		{Text: "one", Dimension: models.DimensionCommunication},
		{Text: "two", Dimension: models.DimensionLeadership},
	})
	require.NoError(t, err)
	_, err = s.Record(0, "answer", models.Evaluation{Score: 50})
	require.NoError(t, err)

	_, err = NewReportAssembler(testCatalog(), nil, 0, 0, nil).Assemble(context.Background(), s)

	assert.ErrorIs(t, err, models.ErrIncompleteSession)
	assert.ErrorIs(t, err, models.ErrState)
}

func TestTopImprovements(t *testing.T) {
	evaluations := []models.Evaluation{
		{Improvements: []string{"Add metrics", "Be concise"}},
		{Improvements: []string{"Mention trade-offs", "add metrics"}},
		{Improvements: []string{"Mention trade-offs", "Add metrics", "  "}},
		{Improvements: []string{"Use STAR", "Show ownership", "Name tools"}},
	}

	got := topImprovements(evaluations, 5)

	assert.Equal(t, []string{"Add metrics", "Mention trade-offs", "Be concise", "Use STAR", "Show ownership"}, got)
	assert.Empty(t, topImprovements(nil, 5))
}

func TestReadinessFor(t *testing.T) {
	tests := []struct {
		average float64
		level   string
	}{
		{average: 100, level: "EXCEPTIONAL - Senior+ Level"},
		{average: 90, level: "EXCEPTIONAL - Senior+ Level"},
		{average: 89.99, level: "STRONG - Senior Level"},
		{average: 70, level: "GOOD - Mid-Senior Level"},
		{average: 60, level: "DEVELOPING - Mid Level"},
		{average: 59.5, level: "FOUNDATION BUILDING NEEDED"},
		{average: 0, level: "FOUNDATION BUILDING NEEDED"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.level, ReadinessFor(tt.average).Level, "average %.2f", tt.average)
	}
}
