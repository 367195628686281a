package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/mock-interview/internal/models"
	"alfredoptarigan/mock-interview/internal/repositories"
	"alfredoptarigan/mock-interview/internal/session"
)

type stubTranscriber struct {
	text string
	err  error
}

func (s stubTranscriber) Transcribe(context.Context, []byte, string) (string, error) {
	return s.text, s.err
}

// hangingTranscriber never answers on its own; it returns once ctx is done.
type hangingTranscriber struct{}

func (hangingTranscriber) Transcribe(ctx context.Context, _ []byte, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

// gatedArchiver holds the first enqueued answer until release is closed.
type gatedArchiver struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
	mu      sync.Mutex
	queued  []int
}

func newGatedArchiver() *gatedArchiver {
	return &gatedArchiver{entered: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedArchiver) Start(context.Context) {}
func (g *gatedArchiver) Stop()                 {}
func (g *gatedArchiver) Sweep() []string       { return nil }

func (g *gatedArchiver) EnqueueAnswer(answer *models.AnswerRecord) bool {
	first := false
	g.once.Do(func() { first = true })
	if first {
		close(g.entered)
		<-g.release
	}
	g.mu.Lock()
	g.queued = append(g.queued, answer.QuestionIndex)
	g.mu.Unlock()
	return true
}

type harness struct {
	svc        InterviewService
	store      session.Store
	interviews repositories.InterviewRepository
	archiver   Archiver
}

type harnessOptions struct {
	bankLLM           LLMClient
	evalLLM           LLMClient
	transcriber       Transcriber
	transcribeTimeout time.Duration
	archiver          Archiver
	withDB            bool
}

func newHarness(t *testing.T, opts harnessOptions) *harness {
	t.Helper()

	catalog := testCatalog()
	store := session.NewMemoryStore()
	jobs := NewMultiJobSearcher(NewMatchScorer(catalog.MatchWeights), nil, NewSyntheticJobProvider(catalog))

	h := &harness{store: store}
	persistence := Persistence{Archiver: opts.archiver}
	if opts.withDB {
		db := newTestDB(t)
		h.interviews = repositories.NewInterviewRepository(db)
		h.archiver = NewArchiver(h.interviews, store, ArchiverOptions{Concurrency: 1, QueueSize: 20}, nil)
		h.archiver.Start(context.Background())
		t.Cleanup(h.archiver.Stop)

		persistence = Persistence{
			Interviews: h.interviews,
			Resumes:    repositories.NewResumeRepository(db),
			Storage:    NewStorageService(t.TempDir()),
			Archiver:   h.archiver,
		}
	}

	h.svc = NewInterviewService(
		store,
		NewResumeParser(catalog, 1<<20),
		NewQuestionBank(opts.bankLLM, catalog, CallOptions{}, nil),
		NewAnswerEvaluator(opts.evalLLM, nil, NewHeuristicScorer(catalog), CallOptions{Timeout: time.Second}, nil),
		NewReportAssembler(catalog, jobs, time.Second, 10, nil),
		opts.transcriber,
		persistence,
		InterviewOptions{QuestionCount: 5, TranscribeTimeout: opts.transcribeTimeout},
		nil,
	)
	return h
}

func (h *harness) start(t *testing.T, role string) *StartResult {
	t.Helper()

	result, err := h.svc.StartSession(context.Background(), StartRequest{
		Resume:   docxBytes(t, "Jane Doe", "Software developer with 4 years of Python and SQL."),
		FileName: "jane.docx",
		Role:     role,
	})
	require.NoError(t, err)
	return result
}

func TestInterviewServiceEndToEnd(t *testing.T) {
	h := newHarness(t, harnessOptions{withDB: true})
	ctx := context.Background()

	started := h.start(t, "Software Engineer")

	assert.Equal(t, 5, started.TotalQuestions)
	assert.Equal(t, 0, started.Question.Index)
	assert.Equal(t, []string{"python", "sql"}, started.Profile.Skills)
	assert.Equal(t, 4, started.Profile.ExperienceYears)

	for i := 0; i < started.TotalQuestions; i++ {
		view, err := h.svc.CurrentQuestion(started.SessionID)
		require.NoError(t, err)
		require.False(t, view.Completed)
		assert.Equal(t, i+1, view.QuestionNumber)
		assert.Equal(t, float64(i*20), view.Progress)

		result, err := h.svc.SubmitAnswer(ctx, started.SessionID,
			fmt.Sprintf("First I would measure the system, then design a fallback because reliability matters (%d).", i))
		require.NoError(t, err)

		assert.Equal(t, i, result.Evaluation.QuestionIndex)
		assert.Equal(t, models.ProvenanceHeuristic, result.Evaluation.Provenance)
		if i < started.TotalQuestions-1 {
			require.NotNil(t, result.NextQuestion)
			assert.Equal(t, i+1, result.NextQuestion.Index)
			assert.False(t, result.Completed)
		} else {
			assert.Nil(t, result.NextQuestion)
			assert.True(t, result.Completed)
		}
	}

	view, err := h.svc.CurrentQuestion(started.SessionID)
	require.NoError(t, err)
	assert.True(t, view.Completed)
	assert.Equal(t, 100.0, view.Progress)

	_, err = h.svc.SubmitAnswer(ctx, started.SessionID, "one more")
	assert.ErrorIs(t, err, models.ErrSessionComplete)

	report, err := h.svc.GetReport(ctx, started.SessionID)
	require.NoError(t, err)
	assert.Equal(t, started.SessionID, report.SessionID)
	assert.Len(t, report.Evaluations, 5)
	assert.Greater(t, report.AverageScore, 0.0)
	assert.NotEmpty(t, report.JobMatches)
	assert.Equal(t, 0, h.store.Len())

	archived, err := h.svc.GetReport(ctx, started.SessionID)
	require.NoError(t, err)
	assert.Equal(t, report.AverageScore, archived.AverageScore)
	assert.Equal(t, report.RecommendedDomain, archived.RecommendedDomain)

	h.archiver.Stop()
	record, err := h.interviews.FindByID(uuid.MustParse(started.SessionID))
	require.NoError(t, err)
	assert.Equal(t, models.InterviewStatusCompleted, record.Status)
	assert.NotNil(t, record.ResumeID)
	assert.Len(t, record.Answers, 5)
}

func TestInterviewServiceUsesAIEvaluation(t *testing.T) {
	llm := staticLLM(`{"score": 80, "feedback": "Clear and structured.", "strengths": ["structure"], "improvements": ["add numbers"]}`)
	h := newHarness(t, harnessOptions{bankLLM: llm, evalLLM: llm})

	started := h.start(t, "Backend Developer")
	assert.Equal(t, 5, started.TotalQuestions)

	result, err := h.svc.SubmitAnswer(context.Background(), started.SessionID, "I would add an idempotency key.")
	require.NoError(t, err)

	assert.Equal(t, 80, result.Evaluation.Score)
	assert.Equal(t, models.ProvenanceAI, result.Evaluation.Provenance)
	assert.Equal(t, "fake", result.Evaluation.Provider)
}

func TestInterviewServiceStartValidation(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	resume := docxBytes(t, "Python developer")

	tests := []struct {
		name string
		req  StartRequest
		err  error
	}{
		{name: "blank role", req: StartRequest{Resume: resume, FileName: "cv.docx", Role: "  "}, err: models.ErrEmptyRole},
		{name: "negative count", req: StartRequest{Resume: resume, FileName: "cv.docx", Role: "Software Engineer", QuestionCount: -1}, err: models.ErrInvalidCount},
		{name: "unsupported format", req: StartRequest{Resume: resume, FileName: "cv.txt", Role: "Software Engineer"}, err: models.ErrUnsupportedFormat},
		{name: "empty document", req: StartRequest{Resume: docxBytes(t), FileName: "cv.docx", Role: "Software Engineer"}, err: models.ErrEmptyDocument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.svc.StartSession(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.err)
			assert.ErrorIs(t, err, models.ErrValidation)
		})
	}
	assert.Equal(t, 0, h.store.Len())
}

func TestInterviewServiceHonoursQuestionCount(t *testing.T) {
	h := newHarness(t, harnessOptions{})

	result, err := h.svc.StartSession(context.Background(), StartRequest{
		Resume:        docxBytes(t, "Python developer"),
		FileName:      "cv.docx",
		Role:          "Software Engineer",
		QuestionCount: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalQuestions)
}

func TestInterviewServiceRejectsEmptyAnswer(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	started := h.start(t, "Software Engineer")

	_, err := h.svc.SubmitAnswer(context.Background(), started.SessionID, " \n\t ")
	assert.ErrorIs(t, err, models.ErrEmptyAnswer)

	snap, err := h.svc.Snapshot(started.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 0, snap.CurrentIndex)
	assert.Empty(t, snap.Evaluations)
}

func TestInterviewServiceUnknownSession(t *testing.T) {
	h := newHarness(t, harnessOptions{withDB: true})
	ctx := context.Background()
	id := uuid.NewString()

	_, err := h.svc.CurrentQuestion(id)
	assert.ErrorIs(t, err, models.ErrSessionNotFound)

	_, err = h.svc.SubmitAnswer(ctx, id, "answer")
	assert.ErrorIs(t, err, models.ErrSessionNotFound)

	_, err = h.svc.GetReport(ctx, id)
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = h.svc.GetReport(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = h.svc.Snapshot(id)
	assert.ErrorIs(t, err, models.ErrSessionNotFound)
}

func TestInterviewServiceReportRequiresCompletion(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	started := h.start(t, "Software Engineer")

	_, err := h.svc.GetReport(context.Background(), started.SessionID)

	assert.ErrorIs(t, err, models.ErrIncompleteSession)
	assert.Equal(t, 1, h.store.Len())
}

func TestInterviewServiceKeepsSessionWithoutArchive(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	ctx := context.Background()

	result, err := h.svc.StartSession(ctx, StartRequest{
		Resume:        docxBytes(t, "Python developer"),
		FileName:      "cv.docx",
		Role:          "Software Engineer",
		QuestionCount: 1,
	})
	require.NoError(t, err)
	_, err = h.svc.SubmitAnswer(ctx, result.SessionID, "answer")
	require.NoError(t, err)

	_, err = h.svc.GetReport(ctx, result.SessionID)
	require.NoError(t, err)

	assert.Equal(t, 1, h.store.Len())
}

func TestInterviewServiceSerializesSubmissions(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once

	evalLLM := &fakeLLM{respond: func(context.Context, int) (string, error) {
		once.Do(func() { close(entered) })
		<-release
		return `{"score": 70}`, nil
	}}
	h := newHarness(t, harnessOptions{evalLLM: evalLLM})
	started := h.start(t, "Software Engineer")

	type outcome struct {
		result *SubmitResult
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := h.svc.SubmitAnswer(context.Background(), started.SessionID, "first")
		done <- outcome{result, err}
	}()

	<-entered
	_, err := h.svc.SubmitAnswer(context.Background(), started.SessionID, "second")
	assert.ErrorIs(t, err, models.ErrSubmissionInProgress)
	assert.ErrorIs(t, err, models.ErrState)

	close(release)
	first := <-done
	require.NoError(t, first.err)
	assert.Equal(t, 0, first.result.Evaluation.QuestionIndex)

	snap, err := h.svc.Snapshot(started.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.CurrentIndex)
	assert.Equal(t, []string{"first"}, snap.Answers)
}

func TestInterviewServiceArchivesOutsideSubmissionLock(t *testing.T) {
	archiver := newGatedArchiver()
	h := newHarness(t, harnessOptions{archiver: archiver})
	started := h.start(t, "Software Engineer")

	done := make(chan error, 1)
	go func() {
		_, err := h.svc.SubmitAnswer(context.Background(), started.SessionID, "first")
		done <- err
	}()
	<-archiver.entered

	// the first submission is stuck archiving, yet the session accepts the next answer
	result, err := h.svc.SubmitAnswer(context.Background(), started.SessionID, "second")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Evaluation.QuestionIndex)

	close(archiver.release)
	require.NoError(t, <-done)

	archiver.mu.Lock()
	defer archiver.mu.Unlock()
	assert.ElementsMatch(t, []int{0, 1}, archiver.queued)
}

func TestInterviewServiceAudioAnswers(t *testing.T) {
	ctx := context.Background()

	t.Run("transcribes and evaluates", func(t *testing.T) {
		h := newHarness(t, harnessOptions{transcriber: stubTranscriber{text: "  I would profile the hot path first.  "}})
		started := h.start(t, "Software Engineer")

		result, err := h.svc.SubmitAudioAnswer(ctx, started.SessionID, []byte("RIFF"), "audio/wav")
		require.NoError(t, err)

		assert.Equal(t, "I would profile the hot path first.", result.Transcript)
		assert.Equal(t, 0, result.Evaluation.QuestionIndex)
	})

	t.Run("no transcriber", func(t *testing.T) {
		h := newHarness(t, harnessOptions{})
		started := h.start(t, "Software Engineer")

		_, err := h.svc.SubmitAudioAnswer(ctx, started.SessionID, []byte("RIFF"), "audio/wav")
		assert.ErrorIs(t, err, models.ErrUpstreamUnavailable)
	})

	t.Run("transcription failure", func(t *testing.T) {
		h := newHarness(t, harnessOptions{transcriber: stubTranscriber{err: errUpstream}})
		started := h.start(t, "Software Engineer")

		_, err := h.svc.SubmitAudioAnswer(ctx, started.SessionID, []byte("RIFF"), "audio/wav")
		assert.ErrorIs(t, err, models.ErrUpstreamUnavailable)
	})

	t.Run("hanging transcriber times out", func(t *testing.T) {
		h := newHarness(t, harnessOptions{transcriber: hangingTranscriber{}, transcribeTimeout: 50 * time.Millisecond})
		started := h.start(t, "Software Engineer")

		begin := time.Now()
		_, err := h.svc.SubmitAudioAnswer(ctx, started.SessionID, []byte("RIFF"), "audio/wav")

		assert.ErrorIs(t, err, models.ErrUpstreamUnavailable)
		assert.Less(t, time.Since(begin), 5*time.Second)

		snap, err := h.svc.Snapshot(started.SessionID)
		require.NoError(t, err)
		assert.Equal(t, 0, snap.CurrentIndex)
	})

	t.Run("silent recording", func(t *testing.T) {
		h := newHarness(t, harnessOptions{transcriber: stubTranscriber{text: "   "}})
		started := h.start(t, "Software Engineer")

		_, err := h.svc.SubmitAudioAnswer(ctx, started.SessionID, []byte("RIFF"), "audio/wav")
		assert.ErrorIs(t, err, models.ErrEmptyAnswer)

		_, err = h.svc.SubmitAudioAnswer(ctx, started.SessionID, nil, "audio/wav")
		assert.ErrorIs(t, err, models.ErrEmptyAnswer)
	})
}
