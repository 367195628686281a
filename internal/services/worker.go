package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/mock-interview/internal/logger"
	"alfredoptarigan/mock-interview/internal/models"
	"alfredoptarigan/mock-interview/internal/repositories"
	"alfredoptarigan/mock-interview/internal/session"
)

// Archiver persists answers in the background and sweeps idle sessions out of
// the in-memory store.
type Archiver interface {
	Start(ctx context.Context)
	Stop()
	EnqueueAnswer(answer *models.AnswerRecord) bool
	Sweep() []string
}

type ArchiverOptions struct {
	Concurrency   int
	QueueSize     int
	IdleTTL       time.Duration
	SweepInterval time.Duration
}

type archiver struct {
	repo     repositories.InterviewRepository
	store    session.Store
	opts     ArchiverOptions
	jobQueue chan *models.AnswerRecord
	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

func NewArchiver(
	repo repositories.InterviewRepository,
	store session.Store,
	opts ArchiverOptions,
	log *zap.Logger,
) Archiver {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 100
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &archiver{
		repo:     repo,
		store:    store,
		opts:     opts,
		jobQueue: make(chan *models.AnswerRecord, opts.QueueSize),
		stopChan: make(chan struct{}),
		logger:   log,
	}
}

// Start implements Archiver.
func (a *archiver) Start(ctx context.Context) {
	a.logger.Info("starting archiver", zap.Int("workers", a.opts.Concurrency))

	for i := 0; i < a.opts.Concurrency; i++ {
		a.wg.Add(1)
		go a.processJobs(ctx, i+1)
	}

	if a.opts.SweepInterval > 0 && a.opts.IdleTTL > 0 {
		a.wg.Add(1)
		go a.sweepIdleSessions(ctx)
	}
}

// Stop implements Archiver. Queued answers are written before it returns.
func (a *archiver) Stop() {
	a.stopOnce.Do(func() {
		a.logger.Info("stopping archiver")
		close(a.stopChan)
		a.wg.Wait()
		a.logger.Info("archiver stopped")
	})
}

// EnqueueAnswer implements Archiver. It never blocks: when the archiver is
// stopped or the queue is full the answer is dropped and false is returned.
func (a *archiver) EnqueueAnswer(answer *models.AnswerRecord) bool {
	select {
	case <-a.stopChan:
		a.dropped("archiver stopped, answer not persisted", answer)
		return false
	default:
	}

	select {
	case a.jobQueue <- answer:
		return true
	default:
		a.dropped("archive queue full, answer not persisted", answer)
		return false
	}
}

func (a *archiver) dropped(msg string, answer *models.AnswerRecord) {
	a.logger.Warn(msg,
		logger.Session(answer.InterviewID.String()),
		zap.Int("question_index", answer.QuestionIndex),
		zap.Int("queue_size", a.opts.QueueSize),
	)
}

func (a *archiver) processJobs(ctx context.Context, workerID int) {
	defer a.wg.Done()

	for {
		select {
		case <-a.stopChan:
			a.drain(workerID)
			return
		case <-ctx.Done():
			return
		case answer := <-a.jobQueue:
			a.persist(workerID, answer)
		}
	}
}

func (a *archiver) drain(workerID int) {
	for {
		select {
		case answer := <-a.jobQueue:
			a.persist(workerID, answer)
		default:
			return
		}
	}
}

func (a *archiver) persist(workerID int, answer *models.AnswerRecord) {
	if err := a.repo.AppendAnswer(answer); err != nil {
		a.logger.Error("failed to archive answer",
			zap.Int("worker", workerID),
			logger.Session(answer.InterviewID.String()),
			zap.Int("question_index", answer.QuestionIndex),
			zap.Error(err),
		)
	}
}

func (a *archiver) sweepIdleSessions(ctx context.Context) {
	defer a.wg.Done()
	ticker := time.NewTicker(a.opts.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-a.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.Sweep()
		}
	}
}

// Sweep implements Archiver. It evicts idle sessions and marks the unfinished
// ones as abandoned.
func (a *archiver) Sweep() []string {
	evicted := a.store.EvictIdle(a.opts.IdleTTL)
	if len(evicted) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(evicted))
	for _, raw := range evicted {
		if id, err := uuid.Parse(raw); err == nil {
			ids = append(ids, id)
		}
	}

	abandoned, err := a.repo.MarkAbandoned(ids)
	if err != nil {
		a.logger.Warn("failed to mark idle interviews abandoned", zap.Error(err))
	}

	a.logger.Info("evicted idle sessions",
		zap.Int("evicted", len(evicted)),
		zap.Int64("abandoned", abandoned),
	)
	return evicted
}

type nopArchiver struct {
	store   session.Store
	idleTTL time.Duration
}

// NewNopArchiver discards answers. Sweep still evicts idle sessions.
func NewNopArchiver(store session.Store, idleTTL time.Duration) Archiver {
	return &nopArchiver{store: store, idleTTL: idleTTL}
}

func (n *nopArchiver) Start(context.Context)                   {}
func (n *nopArchiver) Stop()                                   {}
func (n *nopArchiver) EnqueueAnswer(*models.AnswerRecord) bool { return false }

func (n *nopArchiver) Sweep() []string {
	if n.store == nil {
		return nil
	}
	return n.store.EvictIdle(n.idleTTL)
}
