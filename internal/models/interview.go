package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type InterviewStatus string

const (
	InterviewStatusInProgress InterviewStatus = "in_progress"
	InterviewStatusCompleted  InterviewStatus = "completed"
	InterviewStatusAbandoned  InterviewStatus = "abandoned"
)

// InterviewRecord is the archived form of an interview session.
type InterviewRecord struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Role           string          `gorm:"type:text;not null" json:"role"`
	ResumeID       *uuid.UUID      `gorm:"type:uuid" json:"resume_id,omitempty"`
	Status         InterviewStatus `gorm:"type:text;not null;default:'in_progress'" json:"status"`
	TotalQuestions int             `json:"total_questions"`
	Questions      datatypes.JSON  `json:"questions"`
	AverageScore   *float64        `json:"average_score,omitempty"`
	Report         datatypes.JSON  `json:"report,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`

	Answers []AnswerRecord `gorm:"foreignKey:InterviewID" json:"answers,omitempty"`
}

func (InterviewRecord) TableName() string {
	return "interviews"
}

func (r *InterviewRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
