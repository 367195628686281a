package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"alfredoptarigan/mock-interview/internal/config"
	"alfredoptarigan/mock-interview/internal/models"
	"alfredoptarigan/mock-interview/internal/repositories"
	"alfredoptarigan/mock-interview/internal/session"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "services.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func newInterviewRecord(t *testing.T, repo repositories.InterviewRepository, id uuid.UUID) {
	t.Helper()
	require.NoError(t, repo.Create(&models.InterviewRecord{
		ID:             id,
		Role:           "Software Engineer",
		Status:         models.InterviewStatusInProgress,
		TotalQuestions: 3,
	}))
}

func TestArchiverPersistsQueuedAnswersOnStop(t *testing.T) {
	repo := repositories.NewInterviewRepository(newTestDB(t))
	id := uuid.New()
	newInterviewRecord(t, repo, id)

	archiver := NewArchiver(repo, session.NewMemoryStore(), ArchiverOptions{Concurrency: 1, QueueSize: 10}, nil)
	archiver.Start(context.Background())

	for i := 0; i < 3; i++ {
		archiver.EnqueueAnswer(&models.AnswerRecord{
			InterviewID:   id,
			QuestionIndex: i,
			Answer:        "answer",
			Score:         60 + i,
		})
	}
	// a replayed submission for the same position is ignored
	archiver.EnqueueAnswer(&models.AnswerRecord{InterviewID: id, QuestionIndex: 0, Score: 1})

	archiver.Stop()
	archiver.Stop()

	record, err := repo.FindByID(id)
	require.NoError(t, err)
	require.Len(t, record.Answers, 3)
	for i, answer := range record.Answers {
		assert.Equal(t, i, answer.QuestionIndex)
	}
}

func TestArchiverEnqueueNeverBlocks(t *testing.T) {
	repo := repositories.NewInterviewRepository(newTestDB(t))
	archiver := NewArchiver(repo, session.NewMemoryStore(), ArchiverOptions{Concurrency: 1, QueueSize: 1}, nil)
	id := uuid.New()

	// not started, so nothing drains the queue
	assert.True(t, archiver.EnqueueAnswer(&models.AnswerRecord{InterviewID: id, QuestionIndex: 0}))

	done := make(chan bool, 1)
	go func() { done <- archiver.EnqueueAnswer(&models.AnswerRecord{InterviewID: id, QuestionIndex: 1}) }()

	select {
	case accepted := <-done:
		assert.False(t, accepted)
	case <-time.After(2 * time.Second):
		t.Fatal("EnqueueAnswer blocked on a full queue")
	}

	archiver.Stop()
	assert.False(t, archiver.EnqueueAnswer(&models.AnswerRecord{InterviewID: id, QuestionIndex: 2}))
}

func TestArchiverSweepMarksIdleInterviewsAbandoned(t *testing.T) {
	repo := repositories.NewInterviewRepository(newTestDB(t))
	store := session.NewMemoryStore()

	s, err := session.New("Software Engineer", models.ResumeProfile{}, []models.Question{{Text: "q", Dimension: models.DimensionLeadership}})
	require.NoError(t, err)
	require.NoError(t, store.Put(s))
	newInterviewRecord(t, repo, uuid.MustParse(s.ID))

	archiver := NewArchiver(repo, store, ArchiverOptions{IdleTTL: time.Millisecond}, nil)
	time.Sleep(10 * time.Millisecond)

	evicted := archiver.Sweep()

	assert.Equal(t, []string{s.ID}, evicted)
	assert.Equal(t, 0, store.Len())

	record, err := repo.FindByID(uuid.MustParse(s.ID))
	require.NoError(t, err)
	assert.Equal(t, models.InterviewStatusAbandoned, record.Status)

	assert.Empty(t, archiver.Sweep())
}

func TestNopArchiver(t *testing.T) {
	store := session.NewMemoryStore()
	s, err := session.New("Software Engineer", models.ResumeProfile{}, []models.Question{{Text: "q", Dimension: models.DimensionLeadership}})
	require.NoError(t, err)
	require.NoError(t, store.Put(s))

	archiver := NewNopArchiver(store, time.Hour)
	archiver.Start(context.Background())
	assert.False(t, archiver.EnqueueAnswer(&models.AnswerRecord{}))

	assert.Empty(t, archiver.Sweep())
	assert.Equal(t, 1, store.Len())
	archiver.Stop()
}
