package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/mock-interview/internal/models"
)

func sampleQuestions(n int) []models.Question {
	dims := models.Dimensions()
	out := make([]models.Question, n)
	for i := range out {
		out[i] = models.Question{
			Index:     99,
			Text:      "question " + string(rune('a'+i)),
			Dimension: dims[i%len(dims)],
		}
	}
	return out
}

func TestNewRejectsEmptyQuestions(t *testing.T) {
	_, err := New("Backend Developer", models.ResumeProfile{}, nil)
	require.ErrorIs(t, err, models.ErrNoQuestions)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestNewReindexesQuestions(t *testing.T) {
	s, err := New("Backend Developer", models.ResumeProfile{}, sampleQuestions(3))
	require.NoError(t, err)

	assert.NotEmpty(t, s.ID)
	assert.Equal(t, StateCreated, s.State())
	for i, q := range s.Questions() {
		assert.Equal(t, i, q.Index)
	}
}

func TestRecordAdvancesUntilComplete(t *testing.T) {
	s, err := New("Data Scientist", models.ResumeProfile{}, sampleQuestions(3))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		q, err := s.CurrentQuestion()
		require.NoError(t, err)
		assert.Equal(t, i, q.Index)

		next, err := s.Record(q.Index, "answer", models.Evaluation{Score: 70})
		require.NoError(t, err)
		assert.Equal(t, i+1, s.CurrentIndex())
		assert.Len(t, s.Evaluations(), i+1)

		if i < 2 {
			require.NotNil(t, next)
			assert.Equal(t, i+1, next.Index)
			assert.Equal(t, StateInProgress, s.State())
		} else {
			assert.Nil(t, next)
		}
	}

	assert.True(t, s.IsComplete())
	assert.Equal(t, StateComplete, s.State())

	_, err = s.CurrentQuestion()
	assert.ErrorIs(t, err, models.ErrOutOfRange)
	assert.ErrorIs(t, err, models.ErrState)
}

func TestRecordStampsQuestionIdentity(t *testing.T) {
	s, err := New("Data Scientist", models.ResumeProfile{}, sampleQuestions(2))
	require.NoError(t, err)

	_, err = s.Record(0, "answer", models.Evaluation{QuestionIndex: 7, Dimension: models.DimensionLeadership, Score: 50})
	require.NoError(t, err)

	ev := s.Evaluations()[0]
	assert.Equal(t, 0, ev.QuestionIndex)
	assert.Equal(t, models.DimensionTechnicalMastery, ev.Dimension)
}

func TestRecordRejectsStaleIndex(t *testing.T) {
	s, err := New("Data Scientist", models.ResumeProfile{}, sampleQuestions(2))
	require.NoError(t, err)

	_, err = s.Record(1, "answer", models.Evaluation{Score: 50})
	require.ErrorIs(t, err, models.ErrStaleSubmission)
	assert.Equal(t, 0, s.CurrentIndex())
	assert.Empty(t, s.Evaluations())
}

func TestRecordRejectsCompletedSession(t *testing.T) {
	s, err := New("Data Scientist", models.ResumeProfile{}, sampleQuestions(1))
	require.NoError(t, err)

	_, err = s.Record(0, "answer", models.Evaluation{Score: 50})
	require.NoError(t, err)

	_, err = s.Record(1, "again", models.Evaluation{Score: 50})
	require.ErrorIs(t, err, models.ErrSessionComplete)
	assert.Len(t, s.Evaluations(), 1)
}

func TestSnapshotIsACopy(t *testing.T) {
	s, err := New("Data Scientist", models.ResumeProfile{}, sampleQuestions(2))
	require.NoError(t, err)
	_, err = s.Record(0, "first answer", models.Evaluation{Score: 40})
	require.NoError(t, err)

	snap := s.Snapshot()
	assert.Equal(t, StateInProgress, snap.State)
	assert.Equal(t, 1, snap.CurrentIndex)
	require.Len(t, snap.Evaluations, 1)
	assert.Equal(t, []string{"first answer"}, snap.Answers)

	snap.Evaluations[0].Score = 0
	snap.Questions[0].Text = "mutated"
	assert.Equal(t, 40, s.Evaluations()[0].Score)
	assert.NotEqual(t, "mutated", s.Questions()[0].Text)
}

func TestDurationStopsAtLastAnswer(t *testing.T) {
	s, err := New("Backend Developer", models.ResumeProfile{}, sampleQuestions(2))
	require.NoError(t, err)

	clock := s.CreatedAt
	s.now = func() time.Time { return clock }

	clock = clock.Add(10 * time.Minute)
	assert.Equal(t, 10*time.Minute, s.Duration())

	_, err = s.Record(0, "first", models.Evaluation{Score: 60})
	require.NoError(t, err)
	clock = clock.Add(15 * time.Minute)
	_, err = s.Record(1, "second", models.Evaluation{Score: 70})
	require.NoError(t, err)

	clock = clock.Add(2 * time.Hour)
	s.Touch()

	assert.Equal(t, 25*time.Minute, s.Duration())
	snap := s.Snapshot()
	assert.Equal(t, s.CreatedAt.Add(25*time.Minute), snap.CompletedAt)
	assert.True(t, snap.LastActivity.After(snap.CompletedAt))
}
