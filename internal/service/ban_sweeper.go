package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/subculture-collective/clipper-sub007/pkg/jobs"
)

type expiredBanStore interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// BanSweeper periodically clears mirror rows for timeouts that have lapsed
// upstream. Expiry sweep never touches the platform; it only reconciles the
// local copy.
type BanSweeper struct {
	repo     expiredBanStore
	interval time.Duration
	queue    *jobs.Queue
	logger   *zap.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// NewBanSweeper constructs the sweeper.
func NewBanSweeper(repo expiredBanStore, interval time.Duration, logger *zap.Logger) *BanSweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	s := &BanSweeper{repo: repo, interval: interval, logger: logger}
	s.queue = jobs.NewQueue("ban-expiry-sweep", s.handleSweep, jobs.QueueConfig{
		Workers:    1,
		MaxRetries: 2,
		RetryDelay: 30 * time.Second,
		Logger:     logger,
	})
	return s
}

// Start launches the queue workers and the ticker that feeds them.
func (s *BanSweeper) Start(ctx context.Context) {
	if s.cancel != nil {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.queue.Start(ctx)

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				job := jobs.Job{ID: uuid.NewString(), Type: "sweep_expired_bans"}
				if err := s.queue.Enqueue(job); err != nil {
					s.logger.Warn("failed to enqueue ban sweep", zap.Error(err))
				}
			}
		}
	}()
}

// Stop halts the ticker and drains the queue workers.
func (s *BanSweeper) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.queue.Stop()
	s.cancel = nil
}

func (s *BanSweeper) handleSweep(ctx context.Context, _ jobs.Job) error {
	deleted, err := s.repo.DeleteExpired(ctx, time.Now().UTC())
	if err != nil {
		return err
	}
	if deleted > 0 {
		s.logger.Info("swept expired ban records", zap.Int64("deleted", deleted))
	}
	return nil
}
