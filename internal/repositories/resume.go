package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/mock-interview/internal/models"
)

type ResumeRepository interface {
	Create(document *models.ResumeDocument) error
	FindByID(id uuid.UUID) (*models.ResumeDocument, error)
}

type resumeRepository struct {
	db *gorm.DB
}

func NewResumeRepository(db *gorm.DB) ResumeRepository {
	return &resumeRepository{db: db}
}

// Create implements ResumeRepository.
func (r *resumeRepository) Create(document *models.ResumeDocument) error {
	if err := r.db.Create(document).Error; err != nil {
		return fmt.Errorf("failed to create resume document: %w", err)
	}

	return nil
}

// FindByID implements ResumeRepository.
func (r *resumeRepository) FindByID(id uuid.UUID) (*models.ResumeDocument, error) {
	var doc models.ResumeDocument
	if err := r.db.Where("id = ?", id).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: resume document %s", models.ErrNotFound, id)
		}

		return nil, fmt.Errorf("failed to find resume document: %w", err)
	}

	return &doc, nil
}
