package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Provenance tells which path produced an evaluation.
type Provenance string

const (
	ProvenanceAI        Provenance = "ai"
	ProvenanceHeuristic Provenance = "heuristic"
)

// Evaluation is the scored result of one answer. It is never mutated after creation.
type Evaluation struct {
	QuestionIndex int        `json:"question_index"`
	Dimension     Dimension  `json:"dimension"`
	Score         int        `json:"score"`
	Feedback      string     `json:"feedback"`
	Strengths     []string   `json:"strengths"`
	Improvements  []string   `json:"improvements"`
	Provenance    Provenance `json:"provenance"`
	Provider      string     `json:"provider,omitempty"`
	EvaluatedAt   time.Time  `json:"evaluated_at"`
}

func (e Evaluation) IsFallback() bool {
	return e.Provenance == ProvenanceHeuristic
}

// AnswerRecord persists one submitted answer together with its evaluation.
type AnswerRecord struct {
	ID            uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	InterviewID   uuid.UUID                   `gorm:"type:uuid;not null;index;uniqueIndex:idx_answer_position,priority:1" json:"interview_id"`
	QuestionIndex int                         `gorm:"not null;uniqueIndex:idx_answer_position,priority:2" json:"question_index"`
	Question      string                      `gorm:"type:text" json:"question"`
	Dimension     string                      `gorm:"type:text" json:"dimension"`
	Answer        string                      `gorm:"type:text" json:"answer"`
	Score         int                         `json:"score"`
	Feedback      string                      `gorm:"type:text" json:"feedback"`
	Strengths     datatypes.JSONSlice[string] `json:"strengths"`
	Improvements  datatypes.JSONSlice[string] `json:"improvements"`
	Provenance    string                      `gorm:"type:text" json:"provenance"`
	Provider      string                      `gorm:"type:text" json:"provider"`
	CreatedAt     time.Time                   `json:"created_at"`
}

func (AnswerRecord) TableName() string {
	return "interview_answers"
}

func (r *AnswerRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
