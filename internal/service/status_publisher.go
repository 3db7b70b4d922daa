package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/vogiaan1904/draftqueue/config"
	repo "github.com/vogiaan1904/draftqueue/internal/repository/redis"
	"github.com/vogiaan1904/draftqueue/pkg/logger"
)

var (
	ErrPublisherRunning    = errors.New("status publisher is already running")
	ErrPublisherNotRunning = errors.New("status publisher is not running")
)

// StatusPublisher periodically stores the queue status snapshot in Redis so
// other instances and dashboards can read it without calling the service.
type StatusPublisher interface {
	Start(ctx context.Context) error
	Stop() error
	PublishNow(ctx context.Context) error
	GetStatus() PublisherStatus
}

type PublisherStatus struct {
	IsRunning      bool      `json:"is_running"`
	StartedAt      time.Time `json:"started_at,omitempty"`
	LastPublished  time.Time `json:"last_published,omitempty"`
	PublishedCount int64     `json:"published_count"`
	ErrorCount     int64     `json:"error_count"`
}

type statusPublisher struct {
	svc    DraftQueueService
	repo   repo.StatusRepository
	logger logger.Logger

	interval        time.Duration
	publishTimeout  time.Duration
	shutdownTimeout time.Duration

	mu        sync.RWMutex
	isRunning bool
	startedAt time.Time
	stopCh    chan struct{}
	ticker    *time.Ticker
	wg        sync.WaitGroup

	lastPublished  time.Time
	publishedCount int64
	errorCount     int64
}

func NewStatusPublisher(
	svc DraftQueueService,
	repo repo.StatusRepository,
	logger logger.Logger,
	cfg config.StatusConfig,
) StatusPublisher {
	return &statusPublisher{
		svc:             svc,
		repo:            repo,
		logger:          logger,
		interval:        cfg.PublishInterval,
		publishTimeout:  5 * time.Second,
		shutdownTimeout: 10 * time.Second,
	}
}

func (sp *statusPublisher) Start(ctx context.Context) error {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	if sp.isRunning {
		return ErrPublisherRunning
	}

	sp.logger.Info(ctx, "Starting status publisher", "interval", sp.interval)

	sp.isRunning = true
	sp.startedAt = time.Now()
	sp.stopCh = make(chan struct{})
	sp.ticker = time.NewTicker(sp.interval)

	sp.wg.Add(1)
	go sp.publishLoop(ctx, sp.ticker, sp.stopCh)

	return nil
}

func (sp *statusPublisher) Stop() error {
	sp.mu.Lock()
	if !sp.isRunning {
		sp.mu.Unlock()
		return ErrPublisherNotRunning
	}

	close(sp.stopCh)
	sp.ticker.Stop()
	sp.isRunning = false
	sp.mu.Unlock()

	done := make(chan struct{})
	go func() {
		sp.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		sp.logger.Info(context.Background(), "Status publisher stopped gracefully")
	case <-time.After(sp.shutdownTimeout):
		sp.logger.Warn(context.Background(), "Status publisher shutdown timeout exceeded")
	}

	return nil
}

func (sp *statusPublisher) publishLoop(ctx context.Context, ticker *time.Ticker, stopCh <-chan struct{}) {
	defer sp.wg.Done()

	for {
		select {
		case <-ctx.Done():
			sp.logger.Info(ctx, "Status publisher stopped due to context cancellation")
			return
		case <-stopCh:
			return
		case <-ticker.C:
			if err := sp.PublishNow(ctx); err != nil {
				sp.logger.Warnf(ctx, "service.statusPublisher.publishLoop: %v", err)
			}
		}
	}
}

func (sp *statusPublisher) PublishNow(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, sp.publishTimeout)
	defer cancel()

	st, err := sp.svc.GetQueueStatus(ctx)
	if err == nil {
		err = sp.repo.SaveSnapshot(ctx, st)
	}

	sp.mu.Lock()
	defer sp.mu.Unlock()

	if err != nil {
		sp.errorCount++
		return err
	}
	sp.publishedCount++
	sp.lastPublished = time.Now()
	return nil
}

func (sp *statusPublisher) GetStatus() PublisherStatus {
	sp.mu.RLock()
	defer sp.mu.RUnlock()

	return PublisherStatus{
		IsRunning:      sp.isRunning,
		StartedAt:      sp.startedAt,
		LastPublished:  sp.lastPublished,
		PublishedCount: sp.publishedCount,
		ErrorCount:     sp.errorCount,
	}
}
