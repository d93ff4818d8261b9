package scheduler

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"lending-service/internal/service"
)

// Scheduler runs the non-performing loan scan on a fixed interval
type Scheduler struct {
	npl    service.NPLService
	logger *logrus.Logger
	ticker *time.Ticker
	done   chan struct{}
}

// NewScheduler creates a new Scheduler
func NewScheduler(npl service.NPLService, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		npl:    npl,
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Start begins the periodic scan. One scan also runs immediately so a
// restarted service never waits a full interval to catch up.
func (s *Scheduler) Start(interval time.Duration) {
	s.ticker = time.NewTicker(interval)

	go func() {
		s.runOnce()
		for {
			select {
			case <-s.ticker.C:
				s.runOnce()
			case <-s.done:
				return
			}
		}
	}()

	s.logger.Infof("Scheduler started with interval %s", interval)
}

// Stop terminates the periodic scan
func (s *Scheduler) Stop() {
	if s.ticker != nil {
		s.ticker.Stop()
	}
	close(s.done)
	s.logger.Info("Scheduler stopped")
}

func (s *Scheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	flagged, err := s.npl.Run(ctx)
	if err != nil {
		s.logger.Errorf("Scheduled NPL scan failed: %v", err)
		return
	}
	s.logger.Infof("Scheduled NPL scan flagged %d borrowers", flagged)
}
