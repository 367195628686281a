package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"alfredoptarigan/mock-interview/internal/models"
)

// InterviewRepository archives sessions, their answers and final reports.
type InterviewRepository interface {
	Create(interview *models.InterviewRecord) error
	FindByID(id uuid.UUID) (*models.InterviewRecord, error)
	AppendAnswer(answer *models.AnswerRecord) error
	SaveReport(id uuid.UUID, report *models.Report) error
	FindReport(id uuid.UUID) (*models.Report, error)
	MarkAbandoned(ids []uuid.UUID) (int64, error)
}

type interviewRepository struct {
	db *gorm.DB
}

func NewInterviewRepository(db *gorm.DB) InterviewRepository {
	return &interviewRepository{db: db}
}

func (r *interviewRepository) Create(interview *models.InterviewRecord) error {
	if err := r.db.Create(interview).Error; err != nil {
		return fmt.Errorf("failed to create interview: %w", err)
	}
	return nil
}

func (r *interviewRepository) FindByID(id uuid.UUID) (*models.InterviewRecord, error) {
	var interview models.InterviewRecord
	err := r.db.
		Preload("Answers", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_index ASC")
		}).
		Where("id = ?", id).
		First(&interview).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: interview %s", models.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find interview: %w", err)
	}
	return &interview, nil
}

// AppendAnswer stores an answer once; a second write for the same question is ignored.
func (r *interviewRepository) AppendAnswer(answer *models.AnswerRecord) error {
	err := r.db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "interview_id"}, {Name: "question_index"}},
			DoNothing: true,
		}).
		Create(answer).Error
	if err != nil {
		return fmt.Errorf("failed to append answer: %w", err)
	}
	return nil
}

func (r *interviewRepository) SaveReport(id uuid.UUID, report *models.Report) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	result := r.db.Model(&models.InterviewRecord{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        models.InterviewStatusCompleted,
			"average_score": report.AverageScore,
			"report":        datatypes.JSON(payload),
			"updated_at":    time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to save report: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: interview %s", models.ErrNotFound, id)
	}

	return nil
}

func (r *interviewRepository) FindReport(id uuid.UUID) (*models.Report, error) {
	var interview models.InterviewRecord
	err := r.db.Select("id", "report").Where("id = ?", id).First(&interview).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: interview %s", models.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find report: %w", err)
	}

	if len(interview.Report) == 0 || string(interview.Report) == "null" {
		return nil, fmt.Errorf("%w: report for interview %s", models.ErrNotFound, id)
	}

	var report models.Report
	if err := json.Unmarshal(interview.Report, &report); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	return &report, nil
}

// MarkAbandoned flags interviews that were still in progress when they were
// dropped from memory. Completed interviews are left alone.
func (r *interviewRepository) MarkAbandoned(ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	result := r.db.Model(&models.InterviewRecord{}).
		Where("id IN ? AND status = ?", ids, models.InterviewStatusInProgress).
		Updates(map[string]interface{}{
			"status":     models.InterviewStatusAbandoned,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark interviews abandoned: %w", result.Error)
	}
	return result.RowsAffected, nil
}
