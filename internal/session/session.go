// Package session holds the interview state machine and the per-key locked store
// that serializes submissions for a single session.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/mock-interview/internal/models"
)

type State string

const (
	StateCreated    State = "created"
	StateInProgress State = "in_progress"
	StateComplete   State = "complete"
)

// Session is one candidate's interview attempt. Questions are fixed at creation;
// evaluations only grow through Record, one per question, in order.
type Session struct {
	ID        string
	Role      string
	Profile   models.ResumeProfile
	ResumeID  string
	CreatedAt time.Time

	mu           sync.RWMutex
	questions    []models.Question
	currentIndex int
	evaluations  []models.Evaluation
	answers      []string
	lastActivity time.Time
	completedAt  time.Time
	now          func() time.Time
}

// Snapshot is a consistent copy of a session's progress.
type Snapshot struct {
	ID           string
	Role         string
	State        State
	CurrentIndex int
	Questions    []models.Question
	Evaluations  []models.Evaluation
	Answers      []string
	CreatedAt    time.Time
	LastActivity time.Time
	CompletedAt  time.Time
}

// New creates a session with a fresh id. The question slice is copied and
// re-indexed so that Index always matches the position in the sequence.
func New(role string, profile models.ResumeProfile, questions []models.Question) (*Session, error) {
	if len(questions) == 0 {
		return nil, models.ErrNoQuestions
	}

	fixed := make([]models.Question, len(questions))
	for i, q := range questions {
		q.Index = i
		fixed[i] = q
	}

	now := time.Now()
	return &Session{
		ID:           uuid.New().String(),
		Role:         role,
		Profile:      profile,
		CreatedAt:    now,
		questions:    fixed,
		evaluations:  make([]models.Evaluation, 0, len(fixed)),
		answers:      make([]string, 0, len(fixed)),
		lastActivity: now,
		now:          time.Now,
	}, nil
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() State {
	switch {
	case s.currentIndex >= len(s.questions):
		return StateComplete
	case s.currentIndex == 0:
		return StateCreated
	default:
		return StateInProgress
	}
}

func (s *Session) IsComplete() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentIndex == len(s.questions)
}

// CurrentQuestion returns the question awaiting an answer.
func (s *Session) CurrentQuestion() (models.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.currentIndex >= len(s.questions) {
		return models.Question{}, models.ErrOutOfRange
	}
	return s.questions[s.currentIndex], nil
}

func (s *Session) CurrentIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentIndex
}

func (s *Session) TotalQuestions() int {
	return len(s.questions)
}

// Questions returns a copy of the question sequence.
func (s *Session) Questions() []models.Question {
	out := make([]models.Question, len(s.questions))
	copy(out, s.questions)
	return out
}

// Evaluations returns a copy of the evaluation history.
func (s *Session) Evaluations() []models.Evaluation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Evaluation, len(s.evaluations))
	copy(out, s.evaluations)
	return out
}

// Record appends the evaluation of the answer given to questionIndex and advances
// the session by one. It returns the next question, or nil once the session is
// complete. A mismatched index leaves the session untouched.
func (s *Session) Record(questionIndex int, answer string, evaluation models.Evaluation) (*models.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.currentIndex >= len(s.questions) {
		return nil, models.ErrSessionComplete
	}
	if questionIndex != s.currentIndex {
		return nil, fmt.Errorf("%w: got question %d, current is %d", models.ErrStaleSubmission, questionIndex, s.currentIndex)
	}

	evaluation.QuestionIndex = questionIndex
	evaluation.Dimension = s.questions[questionIndex].Dimension
	s.evaluations = append(s.evaluations, evaluation)
	s.answers = append(s.answers, answer)
	s.currentIndex++
	s.lastActivity = s.now()

	if s.currentIndex == len(s.questions) {
		s.completedAt = s.lastActivity
		return nil, nil
	}
	next := s.questions[s.currentIndex]
	return &next, nil
}

// Duration is the time from creation to the last answer, or to now while the
// interview is still running. Activity after completion does not count.
func (s *Session) Duration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.completedAt.IsZero() {
		return s.now().Sub(s.CreatedAt)
	}
	return s.completedAt.Sub(s.CreatedAt)
}

// Touch marks the session as active without changing its progress.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastActivity = s.now()
	s.mu.Unlock()
}

func (s *Session) LastActivity() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActivity
}

func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	evaluations := make([]models.Evaluation, len(s.evaluations))
	copy(evaluations, s.evaluations)
	answers := make([]string, len(s.answers))
	copy(answers, s.answers)

	return Snapshot{
		ID:           s.ID,
		Role:         s.Role,
		State:        s.stateLocked(),
		CurrentIndex: s.currentIndex,
		Questions:    s.Questions(),
		Evaluations:  evaluations,
		Answers:      answers,
		CreatedAt:    s.CreatedAt,
		LastActivity: s.lastActivity,
		CompletedAt:  s.completedAt,
	}
}
