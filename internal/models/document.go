package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ResumeDocument records an uploaded resume and the profile extracted from it.
type ResumeDocument struct {
	ID               uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	Filename         string                      `gorm:"type:text" json:"filename"`
	OriginalFileName string                      `gorm:"type:text" json:"original_filename"`
	FileType         string                      `gorm:"type:text" json:"file_type"`
	FilePath         string                      `gorm:"type:text" json:"file_path"`
	Skills           datatypes.JSONSlice[string] `json:"skills"`
	ExperienceYears  int                         `json:"experience_years"`
	ATSScore         int                         `json:"ats_score"`
	CreatedAt        time.Time                   `json:"created_at"`
	UpdatedAt        time.Time                   `json:"updated_at"`
}

func (ResumeDocument) TableName() string {
	return "resume_documents"
}

func (r *ResumeDocument) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
