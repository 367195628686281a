package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"alfredoptarigan/mock-interview/internal/logger"
	"alfredoptarigan/mock-interview/internal/models"
	"alfredoptarigan/mock-interview/internal/repositories"
	"alfredoptarigan/mock-interview/internal/session"
)

type StartRequest struct {
	Resume        []byte
	FileName      string
	Role          string
	QuestionCount int
}

type StartResult struct {
	SessionID      string
	Role           string
	TotalQuestions int
	Question       models.Question
	Profile        models.ResumeProfile
}

type QuestionView struct {
	Question       *models.Question
	QuestionNumber int
	TotalQuestions int
	Progress       float64
	Completed      bool
}

type SubmitResult struct {
	Evaluation   models.Evaluation
	NextQuestion *models.Question
	Completed    bool
	Transcript   string
}

// InterviewService runs mock interviews end to end: it builds a session from
// a resume, evaluates answers one at a time and assembles the final report.
type InterviewService interface {
	StartSession(ctx context.Context, req StartRequest) (*StartResult, error)
	CurrentQuestion(id string) (*QuestionView, error)
	SubmitAnswer(ctx context.Context, id, text string) (*SubmitResult, error)
	SubmitAudioAnswer(ctx context.Context, id string, audio []byte, mimeType string) (*SubmitResult, error)
	GetReport(ctx context.Context, id string) (*models.Report, error)
	Snapshot(id string) (*session.Snapshot, error)
}

// Transcriber turns a spoken answer into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
}

// InterviewOptions tune the service. Zero values fall back to defaults.
type InterviewOptions struct {
	QuestionCount     int
	TranscribeTimeout time.Duration
}

// Persistence groups the optional archive collaborators. Any field may be nil.
type Persistence struct {
	Interviews repositories.InterviewRepository
	Resumes    repositories.ResumeRepository
	Storage    StorageService
	Archiver   Archiver
}

type interviewService struct {
	store         session.Store
	parser        ResumeParser
	questions     QuestionBank
	evaluator     AnswerEvaluator
	reports       ReportAssembler
	transcriber   Transcriber
	persistence   Persistence
	opts          InterviewOptions
	logger        *zap.Logger
}

func NewInterviewService(
	store session.Store,
	parser ResumeParser,
	questions QuestionBank,
	evaluator AnswerEvaluator,
	reports ReportAssembler,
	transcriber Transcriber,
	persistence Persistence,
	opts InterviewOptions,
	log *zap.Logger,
) InterviewService {
	if opts.QuestionCount <= 0 {
		opts.QuestionCount = 5
	}
	if opts.TranscribeTimeout <= 0 {
		opts.TranscribeTimeout = 30 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &interviewService{
		store:         store,
		parser:        parser,
		questions:     questions,
		evaluator:     evaluator,
		reports:       reports,
		transcriber:   transcriber,
		persistence:   persistence,
		opts:          opts,
		logger:        log,
	}
}

// StartSession implements InterviewService.
func (s *interviewService) StartSession(ctx context.Context, req StartRequest) (*StartResult, error) {
	role := strings.TrimSpace(req.Role)
	if role == "" {
		return nil, models.ErrEmptyRole
	}

	count := req.QuestionCount
	if count == 0 {
		count = s.opts.QuestionCount
	}
	if count < 0 {
		return nil, models.ErrInvalidCount
	}

	fileType, err := DetectFileType(req.FileName)
	if err != nil {
		return nil, err
	}

	profile, err := s.parser.ExtractProfile(req.Resume, fileType)
	if err != nil {
		return nil, err
	}

	questions, err := s.questions.Generate(ctx, role, *profile, count)
	if err != nil {
		return nil, err
	}

	sess, err := session.New(role, *profile, questions)
	if err != nil {
		return nil, err
	}

	s.archiveStart(sess, req)

	if err := s.store.Put(sess); err != nil {
		return nil, err
	}

	first, err := sess.CurrentQuestion()
	if err != nil {
		return nil, err
	}

	s.logger.Info("interview started",
		logger.Session(sess.ID),
		zap.String("role", role),
		zap.Int("questions", sess.TotalQuestions()),
		zap.Strings("skills", profile.Skills),
	)

	return &StartResult{
		SessionID:      sess.ID,
		Role:           role,
		TotalQuestions: sess.TotalQuestions(),
		Question:       first,
		Profile:        *profile,
	}, nil
}

// archiveStart records the upload and the new interview. Failures are logged
// and never block the interview itself.
func (s *interviewService) archiveStart(sess *session.Session, req StartRequest) {
	p := s.persistence
	log := s.logger.With(logger.Session(sess.ID))

	var resumeID *uuid.UUID
	if p.Resumes != nil {
		doc := &models.ResumeDocument{
			OriginalFileName: req.FileName,
			FileType:         sess.Profile.FileType,
			Skills:           datatypes.JSONSlice[string](sess.Profile.Skills),
			ExperienceYears:  sess.Profile.ExperienceYears,
			ATSScore:         sess.Profile.ATSScore,
		}
		if p.Storage != nil {
			filename, path, err := p.Storage.Save(req.Resume, req.FileName)
			if err != nil {
				log.Warn("failed to store resume file", zap.Error(err))
			} else {
				doc.Filename, doc.FilePath = filename, path
			}
		}
		if err := p.Resumes.Create(doc); err != nil {
			log.Warn("failed to archive resume", zap.Error(err))
			if doc.Filename != "" {
				if err := p.Storage.DeleteFile(doc.Filename); err != nil {
					log.Warn("failed to remove orphaned resume file", zap.Error(err))
				}
			}
		} else {
			resumeID = &doc.ID
			sess.ResumeID = doc.ID.String()
		}
	}

	if p.Interviews == nil {
		return
	}

	questions, err := json.Marshal(sess.Questions())
	if err != nil {
		log.Warn("failed to encode questions", zap.Error(err))
		return
	}

	record := &models.InterviewRecord{
		ID:             uuid.MustParse(sess.ID),
		Role:           sess.Role,
		ResumeID:       resumeID,
		Status:         models.InterviewStatusInProgress,
		TotalQuestions: sess.TotalQuestions(),
		Questions:      datatypes.JSON(questions),
	}
	if err := p.Interviews.Create(record); err != nil {
		log.Warn("failed to archive interview", zap.Error(err))
	}
}

// CurrentQuestion implements InterviewService.
func (s *interviewService) CurrentQuestion(id string) (*QuestionView, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	sess.Touch()

	total := sess.TotalQuestions()
	q, err := sess.CurrentQuestion()
	if errors.Is(err, models.ErrOutOfRange) {
		return &QuestionView{TotalQuestions: total, Progress: 100, Completed: true}, nil
	}
	if err != nil {
		return nil, err
	}

	return &QuestionView{
		Question:       &q,
		QuestionNumber: q.Index + 1,
		TotalQuestions: total,
		Progress:       roundTo(float64(q.Index)/float64(total)*100, 1),
	}, nil
}

// SubmitAnswer implements InterviewService. At most one submission per session
// is evaluated at a time; the session only changes once the evaluation exists.
func (s *interviewService) SubmitAnswer(ctx context.Context, id, text string) (*SubmitResult, error) {
	result, record, err := s.submit(ctx, id, text)
	if err != nil {
		return nil, err
	}

	// Archiving happens outside the submission lock.
	if s.persistence.Archiver != nil {
		s.persistence.Archiver.EnqueueAnswer(record)
	}
	return result, nil
}

func (s *interviewService) submit(ctx context.Context, id, text string) (*SubmitResult, *models.AnswerRecord, error) {
	unlock, err := s.store.Lock(id)
	if err != nil {
		return nil, nil, err
	}
	defer unlock()

	sess, err := s.store.Get(id)
	if err != nil {
		return nil, nil, err
	}

	question, err := sess.CurrentQuestion()
	if errors.Is(err, models.ErrOutOfRange) {
		return nil, nil, models.ErrSessionComplete
	}
	if err != nil {
		return nil, nil, err
	}

	answer := strings.TrimSpace(text)
	if answer == "" {
		return nil, nil, models.ErrEmptyAnswer
	}

	evaluation := s.evaluator.Evaluate(ctx, question, answer, sess.Role)

	next, err := sess.Record(question.Index, answer, evaluation)
	if err != nil {
		return nil, nil, err
	}
	recorded := sess.Evaluations()[question.Index]

	s.logger.Info("answer evaluated",
		logger.Session(sess.ID),
		zap.Int("question_index", question.Index),
		zap.Int("score", recorded.Score),
		zap.String("provenance", string(recorded.Provenance)),
	)

	return &SubmitResult{
		Evaluation:   recorded,
		NextQuestion: next,
		Completed:    next == nil,
	}, answerRecord(sess.ID, question, answer, recorded), nil
}

// SubmitAudioAnswer implements InterviewService.
func (s *interviewService) SubmitAudioAnswer(ctx context.Context, id string, audio []byte, mimeType string) (*SubmitResult, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	if sess.IsComplete() {
		return nil, models.ErrSessionComplete
	}
	if len(audio) == 0 {
		return nil, models.ErrEmptyAnswer
	}
	if s.transcriber == nil {
		return nil, fmt.Errorf("%w: transcription is not configured", models.ErrUpstreamUnavailable)
	}

	tctx, cancel := context.WithTimeout(ctx, s.opts.TranscribeTimeout)
	transcript, err := s.transcriber.Transcribe(tctx, audio, mimeType)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("%w: transcription failed: %v", models.ErrUpstreamUnavailable, err)
	}

	result, err := s.SubmitAnswer(ctx, id, transcript)
	if err != nil {
		return nil, err
	}
	result.Transcript = strings.TrimSpace(transcript)
	return result, nil
}

// GetReport implements InterviewService. A live session is assembled, archived
// and evicted; afterwards the archived copy is served.
func (s *interviewService) GetReport(ctx context.Context, id string) (*models.Report, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			if report, ok := s.archivedReport(id); ok {
				return report, nil
			}
		}
		return nil, err
	}

	report, err := s.reports.Assemble(ctx, sess)
	if err != nil {
		return nil, err
	}

	if s.persistence.Interviews == nil {
		return report, nil
	}

	if err := s.persistence.Interviews.SaveReport(uuid.MustParse(sess.ID), report); err != nil {
		s.logger.Error("failed to archive report, keeping session in memory",
			logger.Session(sess.ID),
			zap.Error(err),
		)
		return report, nil
	}

	s.store.Evict(sess.ID)
	s.logger.Info("interview completed",
		logger.Session(sess.ID),
		zap.Float64("average_score", report.AverageScore),
		zap.String("recommended_domain", report.RecommendedDomain),
	)
	return report, nil
}

func (s *interviewService) archivedReport(id string) (*models.Report, bool) {
	if s.persistence.Interviews == nil {
		return nil, false
	}
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, false
	}
	report, err := s.persistence.Interviews.FindReport(uid)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			s.logger.Warn("failed to load archived report", logger.Session(id), zap.Error(err))
		}
		return nil, false
	}
	return report, true
}

// Snapshot implements InterviewService.
func (s *interviewService) Snapshot(id string) (*session.Snapshot, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	snap := sess.Snapshot()
	return &snap, nil
}

func answerRecord(sessionID string, question models.Question, answer string, evaluation models.Evaluation) *models.AnswerRecord {
	return &models.AnswerRecord{
		InterviewID:   uuid.MustParse(sessionID),
		QuestionIndex: question.Index,
		Question:      question.Text,
		Dimension:     string(question.Dimension),
		Answer:        answer,
		Score:         evaluation.Score,
		Feedback:      evaluation.Feedback,
		Strengths:     datatypes.JSONSlice[string](evaluation.Strengths),
		Improvements:  datatypes.JSONSlice[string](evaluation.Improvements),
		Provenance:    string(evaluation.Provenance),
		Provider:      evaluation.Provider,
		CreatedAt:     evaluation.EvaluatedAt,
	}
}
