package models

import "time"

// JobPosting is a single posting returned by a job-search provider.
type JobPosting struct {
	ID          string `json:"id,omitempty" mapstructure:"id" yaml:"id"`
	Title       string `json:"title" mapstructure:"title" yaml:"title"`
	Company     string `json:"company" mapstructure:"company" yaml:"company"`
	Location    string `json:"location" mapstructure:"location" yaml:"location"`
	SalaryRange string `json:"salary_range,omitempty" mapstructure:"salary_range" yaml:"salary_range"`
	ApplyURL    string `json:"apply_url" mapstructure:"apply_url" yaml:"apply_url"`
	Description string `json:"description,omitempty" mapstructure:"description" yaml:"description"`
	Source      string `json:"source" mapstructure:"source" yaml:"source"`
}

// JobMatch is a posting with its computed match score (0-100).
type JobMatch struct {
	JobPosting
	MatchScore int `json:"match_score"`
}

// Readiness is the overall band a candidate falls into by average score.
type Readiness struct {
	Level           string `json:"level"`
	Summary         string `json:"summary"`
	Timeline        string `json:"timeline"`
	RecommendedRole string `json:"recommended_role"`
	Confidence      string `json:"confidence"`
}

// Report is derived from a completed session; it is archived but never mutated.
type Report struct {
	SessionID         string                `json:"session_id"`
	Role              string                `json:"role"`
	AverageScore      float64               `json:"average_score"`
	RecommendedDomain string                `json:"recommended_domain"`
	DimensionScores   map[Dimension]float64 `json:"dimension_scores"`
	Readiness         Readiness             `json:"readiness"`
	ImprovementAreas  []string              `json:"improvement_areas"`
	WeakAreas         []Dimension           `json:"weak_areas"`
	StrongAreas       []Dimension           `json:"strong_areas"`
	Guidance          Guidance              `json:"guidance"`
	Evaluations       []Evaluation          `json:"evaluations"`
	JobMatches        []JobMatch            `json:"job_matches"`
	TotalQuestions    int                   `json:"total_questions"`
	DurationMinutes   float64               `json:"duration_minutes"`
	GeneratedAt       time.Time             `json:"generated_at"`
}

// Guidance is the preparation plan derived from the interview scores.
type Guidance struct {
	ActionPlan     []ActionItem         `json:"action_plan"`
	Resources      []DimensionResources `json:"resources"`
	SystemDesign   SystemDesignTrack    `json:"system_design"`
	MockInterviews MockInterviewPlan    `json:"mock_interviews"`
	Roadmap        Roadmap              `json:"roadmap"`
}

type ActionItem struct {
	Priority string `json:"priority" yaml:"priority"`
	Action   string `json:"action" yaml:"action"`
	Timeline string `json:"timeline" yaml:"timeline"`
	Details  string `json:"details,omitempty" yaml:"details"`
}

// LearningResource is a course, book or practice venue. Kind is free-form.
type LearningResource struct {
	Kind  string `json:"kind" yaml:"kind"`
	Title string `json:"title" yaml:"title"`
}

type DimensionResources struct {
	Dimension Dimension          `json:"dimension"`
	Items     []LearningResource `json:"items"`
}

type SystemDesignTrack struct {
	Level            string   `json:"level" yaml:"level"`
	Topics           []string `json:"topics" yaml:"topics"`
	PracticeProblems []string `json:"practice_problems" yaml:"practice_problems"`
}

type MockInterviewPlan struct {
	Frequency string `json:"frequency" yaml:"frequency"`
	Duration  string `json:"duration" yaml:"duration"`
	Focus     string `json:"focus" yaml:"focus"`
}

type Roadmap struct {
	Timeline   string   `json:"timeline" yaml:"timeline"`
	Readiness  string   `json:"readiness" yaml:"readiness"`
	Milestones []string `json:"milestones" yaml:"milestones"`
}
