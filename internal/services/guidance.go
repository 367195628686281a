package services

import (
	"slices"

	"alfredoptarigan/mock-interview/internal/config"
	"alfredoptarigan/mock-interview/internal/models"
)

// classifyAreas splits dimension averages into weak and strong areas, both in
// taxonomy order. Dimensions that were not asked about are in neither list.
func classifyAreas(scores map[models.Dimension]float64, weakBelow, strongFrom float64) (weak, strong []models.Dimension) {
	weak = make([]models.Dimension, 0)
	strong = make([]models.Dimension, 0)
	for _, d := range models.Dimensions() {
		score, ok := scores[d]
		if !ok {
			continue
		}
		switch {
		case score < weakBelow:
			weak = append(weak, d)
		case score >= strongFrom:
			strong = append(strong, d)
		}
	}
	return weak, strong
}

// weakestDimension is the lowest mean, ties going to the earlier dimension.
func weakestDimension(scores map[models.Dimension]float64) (models.Dimension, bool) {
	var (
		worst models.Dimension
		found bool
	)
	for _, d := range models.Dimensions() {
		score, ok := scores[d]
		if !ok {
			continue
		}
		if !found || score < scores[worst] {
			worst, found = d, true
		}
	}
	return worst, found
}

// buildGuidance picks the banded plan for the average and study resources for
// the weak areas. With no weak area the weakest dimension gets resources.
func buildGuidance(catalog *config.Catalog, average float64, scores map[models.Dimension]float64, weak []models.Dimension) models.Guidance {
	g := catalog.Guidance

	focus := weak
	if len(focus) == 0 {
		if d, ok := weakestDimension(scores); ok {
			focus = []models.Dimension{d}
		}
	}

	resources := make([]models.DimensionResources, 0, len(focus))
	for _, d := range focus {
		items := catalog.ResourcesFor(d)
		if len(items) == 0 {
			continue
		}
		resources = append(resources, models.DimensionResources{Dimension: d, Items: slices.Clone(items)})
	}

	design := config.BandFor(g.SystemDesign, average)
	design.Topics = slices.Clone(design.Topics)
	design.PracticeProblems = slices.Clone(design.PracticeProblems)

	roadmap := config.BandFor(g.Roadmaps, average)
	roadmap.Milestones = slices.Clone(roadmap.Milestones)

	actions := slices.Clone(config.BandFor(g.ActionPlans, average).Steps)
	if actions == nil {
		actions = []models.ActionItem{}
	}

	return models.Guidance{
		ActionPlan:     actions,
		Resources:      resources,
		SystemDesign:   design,
		MockInterviews: config.BandFor(g.MockInterviews, average),
		Roadmap:        roadmap,
	}
}
