package scheduler

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Refresher is the job the scheduler runs on every tick.
// *catalog.Service satisfies it.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Scheduler periodically regenerates the listing catalog
type Scheduler struct {
	refresher Refresher
	interval  time.Duration
	logger    *logrus.Logger
	stopChan  chan struct{}
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	jobMutex  sync.Mutex // Ensures sequential job execution
	startOnce sync.Once
	stopOnce  sync.Once
	runs      int
}

// NewScheduler creates a new scheduler. A non-positive interval disables it.
func NewScheduler(refresher Refresher, interval time.Duration, logger *logrus.Logger) *Scheduler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
		logger.SetLevel(logrus.InfoLevel)
	}

	return &Scheduler{
		refresher: refresher,
		interval:  interval,
		logger:    logger,
		stopChan:  make(chan struct{}),
	}
}

// Enabled reports whether Start will run anything
func (s *Scheduler) Enabled() bool {
	return s.interval > 0
}

// Start begins the scheduled refreshes
func (s *Scheduler) Start() {
	if !s.Enabled() {
		s.logger.Debug("Catalog refresh disabled")
		return
	}
	s.startOnce.Do(func() {
		ctx, cancel := context.WithCancel(context.Background())
		s.cancel = cancel
		s.wg.Add(1)
		go s.runScheduler(ctx)
	})
}

func (s *Scheduler) runScheduler(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.WithField("interval", s.interval).Info("Catalog refresh scheduled")

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.runRefresh(ctx)
		}
	}
}

func (s *Scheduler) runRefresh(ctx context.Context) {
	s.jobMutex.Lock()
	defer s.jobMutex.Unlock()

	start := time.Now()
	s.runs++
	if err := s.refresher.Refresh(ctx); err != nil {
		s.logger.WithError(err).WithField("run", s.runs).Error("Scheduled catalog refresh failed")
		return
	}
	s.logger.WithFields(logrus.Fields{
		"run":      s.runs,
		"duration": time.Since(start),
	}).Info("Scheduled catalog refresh completed")
}

// Runs returns how many refreshes have been attempted
func (s *Scheduler) Runs() int {
	s.jobMutex.Lock()
	defer s.jobMutex.Unlock()
	return s.runs
}

// Stop gracefully stops the scheduler, aborting a refresh in progress
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
		if s.cancel != nil {
			s.cancel()
		}
	})
	s.wg.Wait()
}
