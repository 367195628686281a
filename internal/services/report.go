package services

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"alfredoptarigan/mock-interview/internal/config"
	"alfredoptarigan/mock-interview/internal/logger"
	"alfredoptarigan/mock-interview/internal/models"
	"alfredoptarigan/mock-interview/internal/session"
)

const maxImprovementAreas = 5

// ReportAssembler derives the final report from a completed session.
type ReportAssembler interface {
	Assemble(ctx context.Context, s *session.Session) (*models.Report, error)
}

type reportAssembler struct {
	catalog    *config.Catalog
	jobs       JobSearcher
	jobTimeout time.Duration
	jobLimit   int
	logger     *zap.Logger
	now        func() time.Time
}

// NewReportAssembler builds an assembler. jobs may be nil, in which case the
// report carries no job matches.
func NewReportAssembler(catalog *config.Catalog, jobs JobSearcher, jobTimeout time.Duration, jobLimit int, log *zap.Logger) ReportAssembler {
	if log == nil {
		log = zap.NewNop()
	}
	return &reportAssembler{
		catalog:    catalog,
		jobs:       jobs,
		jobTimeout: jobTimeout,
		jobLimit:   jobLimit,
		logger:     log,
		now:        time.Now,
	}
}

// Assemble implements ReportAssembler.
func (r *reportAssembler) Assemble(ctx context.Context, s *session.Session) (*models.Report, error) {
	if !s.IsComplete() {
		return nil, models.ErrIncompleteSession
	}

	snap := s.Snapshot()
	if len(snap.Evaluations) == 0 {
		return nil, models.ErrNoEvaluations
	}

	total := 0
	for _, e := range snap.Evaluations {
		total += e.Score
	}
	average := roundTo(float64(total)/float64(len(snap.Evaluations)), 2)

	dimensionScores := dimensionAverages(snap.Evaluations)
	best := strongestDimension(dimensionScores)
	domain := r.catalog.DomainFor(best)
	weak, strong := classifyAreas(dimensionScores, r.catalog.Guidance.WeakBelow, r.catalog.Guidance.StrongFrom)

	return &models.Report{
		SessionID:         snap.ID,
		Role:              snap.Role,
		AverageScore:      average,
		RecommendedDomain: domain,
		DimensionScores:   dimensionScores,
		Readiness:         ReadinessFor(average),
		ImprovementAreas:  topImprovements(snap.Evaluations, maxImprovementAreas),
		WeakAreas:         weak,
		StrongAreas:       strong,
		Guidance:          buildGuidance(r.catalog, average, dimensionScores, weak),
		Evaluations:       snap.Evaluations,
		JobMatches:        r.matchJobs(ctx, snap.ID, snap.Role, domain, s.Profile),
		TotalQuestions:    len(snap.Questions),
		DurationMinutes:   roundTo(s.Duration().Minutes(), 1),
		GeneratedAt:       r.now(),
	}, nil
}

// matchJobs never fails: a broken job search yields an empty list.
func (r *reportAssembler) matchJobs(ctx context.Context, sessionID, role, domain string, profile models.ResumeProfile) []models.JobMatch {
	if r.jobs == nil {
		return []models.JobMatch{}
	}

	if r.jobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.jobTimeout)
		defer cancel()
	}

	matches, err := r.jobs.Search(ctx, JobQuery{
		Role:     role,
		Domain:   domain,
		Skills:   profile.Skills,
		ATSScore: profile.ATSScore,
		Limit:    r.jobLimit,
	})
	if err != nil {
		r.logger.Warn("job search failed, report has no job matches",
			logger.Session(sessionID),
			zap.Error(err),
		)
		return []models.JobMatch{}
	}
	if matches == nil {
		return []models.JobMatch{}
	}
	return matches
}

func dimensionAverages(evaluations []models.Evaluation) map[models.Dimension]float64 {
	sums := make(map[models.Dimension]int)
	counts := make(map[models.Dimension]int)
	for _, e := range evaluations {
		sums[e.Dimension] += e.Score
		counts[e.Dimension]++
	}

	out := make(map[models.Dimension]float64, len(sums))
	for d, sum := range sums {
		out[d] = roundTo(float64(sum)/float64(counts[d]), 2)
	}
	return out
}

// strongestDimension picks the highest mean. Ties go to the dimension that
// comes first in the taxonomy.
func strongestDimension(scores map[models.Dimension]float64) models.Dimension {
	best := models.DimensionTechnicalMastery
	bestScore := math.Inf(-1)
	for _, d := range models.Dimensions() {
		score, ok := scores[d]
		if !ok {
			continue
		}
		if score > bestScore {
			best, bestScore = d, score
		}
	}
	return best
}

// topImprovements ranks improvement suggestions by how often they recur.
func topImprovements(evaluations []models.Evaluation, limit int) []string {
	type entry struct {
		text  string
		count int
		order int
	}

	index := make(map[string]*entry)
	var entries []*entry
	for _, e := range evaluations {
		for _, item := range e.Improvements {
			item = strings.TrimSpace(item)
			key := strings.ToLower(item)
			if key == "" {
				continue
			}
			if existing, ok := index[key]; ok {
				existing.count++
				continue
			}
			en := &entry{text: item, count: 1, order: len(entries)}
			index[key] = en
			entries = append(entries, en)
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].order < entries[j].order
	})

	out := make([]string, 0, min(limit, len(entries)))
	for _, en := range entries {
		if len(out) == limit {
			break
		}
		out = append(out, en.text)
	}
	return out
}

// ReadinessFor maps an average score to a readiness band.
func ReadinessFor(average float64) models.Readiness {
	switch {
	case average >= 90:
		return models.Readiness{
			Level:           "EXCEPTIONAL - Senior+ Level",
			Summary:         "Ready for Staff/Principal roles",
			Timeline:        "Apply immediately",
			RecommendedRole: "Senior Software Architect",
			Confidence:      "Extremely High",
		}
	case average >= 80:
		return models.Readiness{
			Level:           "STRONG - Senior Level",
			Summary:         "Ready for Senior roles",
			Timeline:        "2-4 weeks prep",
			RecommendedRole: "Senior Software Engineer",
			Confidence:      "High",
		}
	case average >= 70:
		return models.Readiness{
			Level:           "GOOD - Mid-Senior Level",
			Summary:         "Ready for Mid-Senior roles",
			Timeline:        "6-8 weeks intensive prep",
			RecommendedRole: "Software Engineer",
			Confidence:      "Medium-High",
		}
	case average >= 60:
		return models.Readiness{
			Level:           "DEVELOPING - Mid Level",
			Summary:         "Possible Mid level with prep",
			Timeline:        "3-6 months preparation",
			RecommendedRole: "Software Engineer",
			Confidence:      "Medium",
		}
	default:
		return models.Readiness{
			Level:           "FOUNDATION BUILDING NEEDED",
			Summary:         "Not ready for top-tier roles",
			Timeline:        "6-12 months intensive development",
			RecommendedRole: "Build fundamentals first",
			Confidence:      "Low",
		}
	}
}

func roundTo(value float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(value*factor) / factor
}
