package session

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"blogdesk/internal/repository"
)

const defaultSweepInterval = time.Hour

// Sweeper purges expired sessions in the background.
type Sweeper struct {
	sessions repository.SessionRepository
	interval time.Duration
	logger   logrus.FieldLogger
	now      func() time.Time

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

func NewSweeper(sessions repository.SessionRepository, interval time.Duration, logger logrus.FieldLogger) *Sweeper {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Sweeper{
		sessions: sessions,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
}

// Start runs a sweep immediately and then once per interval until ctx is done
// or Shutdown is called.
func (s *Sweeper) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			if _, err := s.Sweep(ctx); err != nil && ctx.Err() == nil {
				s.logger.WithError(err).Warn("session sweep failed")
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
	s.logger.Infof("session sweeper started, interval: %s", s.interval)
}

func (s *Sweeper) Shutdown() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.logger.Info("session sweeper stopped")
}

// Sweep deletes every session that has expired by now.
func (s *Sweeper) Sweep(ctx context.Context) (int64, error) {
	n, err := s.sessions.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.WithField("count", n).Debug("expired sessions removed")
	}
	return n, nil
}
