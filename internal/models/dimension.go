package models

import "strings"

// Dimension is one of the fixed evaluation categories a question is tagged with.
type Dimension string

const (
	DimensionTechnicalMastery Dimension = "Technical Mastery"
	DimensionProblemSolving   Dimension = "Problem Solving"
	DimensionCommunication    Dimension = "Communication"
	DimensionInnovation       Dimension = "Innovation"
	DimensionLeadership       Dimension = "Leadership"
	DimensionSystemThinking   Dimension = "System Thinking"
)

var dimensionOrder = []Dimension{
	DimensionTechnicalMastery,
	DimensionProblemSolving,
	DimensionCommunication,
	DimensionInnovation,
	DimensionLeadership,
	DimensionSystemThinking,
}

// Dimensions returns the taxonomy in its fixed order. Tie-breaks rely on this order.
func Dimensions() []Dimension {
	out := make([]Dimension, len(dimensionOrder))
	copy(out, dimensionOrder)
	return out
}

// Rank returns the position of d in the fixed taxonomy, or -1 when d is unknown.
func (d Dimension) Rank() int {
	for i, candidate := range dimensionOrder {
		if candidate == d {
			return i
		}
	}
	return -1
}

func (d Dimension) Valid() bool {
	return d.Rank() >= 0
}

// Key is the snake_case form used in prompts, yaml and JSON payloads.
func (d Dimension) Key() string {
	return strings.ReplaceAll(strings.ToLower(string(d)), " ", "_")
}

// ParseDimension accepts the display name or the snake_case key in any case.
func ParseDimension(raw string) (Dimension, bool) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = strings.ReplaceAll(normalized, "_", " ")
	normalized = strings.ReplaceAll(normalized, "-", " ")
	normalized = strings.Join(strings.Fields(normalized), " ")

	for _, d := range dimensionOrder {
		if strings.ToLower(string(d)) == normalized {
			return d, true
		}
	}
	return "", false
}
